// Package viz renders correlator decay curves as terminal plots.
//
// Solver output lives on a geometric time grid spanning many decades,
// so curves are resampled onto log-spaced times before plotting; a
// linear x-axis would collapse all the interesting structure into the
// first column.
package viz
