// Package analysis provides post-processing over finished solves.
//
// [RelaxationTime] extracts the time at which a normalized correlator
// first decays below a threshold:
//
//	tau, err := analysis.RelaxationTime(series.Times(), series.Component(0),
//	    analysis.DefaultThreshold, analysis.InterpLog)
//
// A correlator that never crosses the threshold yields +Inf; one that
// starts below it yields 0. Callers must interpret both sentinels.
package analysis
