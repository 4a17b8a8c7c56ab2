package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/glasskit/mctsim/internal/solver"
)

type PlotOptions struct {
	Width   int
	Height  int
	Points  int
	Caption string
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Width: 80, Height: 10, Points: 160}
}

// LogResample picks sample values at geometrically spaced times between
// the first positive time and the last one, nearest sample wins. Fewer
// than two positive times means there is nothing to space and the values
// come back as they are.
func LogResample(times, values []float64, n int) []float64 {
	first := -1
	for i, t := range times {
		if t > 0 {
			first = i
			break
		}
	}
	if first < 0 || first == len(times)-1 || n < 2 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}

	lo := math.Log(times[first])
	hi := math.Log(times[len(times)-1])
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		target := math.Exp(lo + float64(i)*(hi-lo)/float64(n-1))
		j := sort.SearchFloat64s(times, target)
		if j >= len(times) {
			j = len(times) - 1
		}
		if j > first && target-times[j-1] < times[j]-target {
			j--
		}
		out[i] = values[j]
	}
	return out
}

// PlotSeries renders every correlator component of a solve, one graph
// per component, on a log-spaced time axis.
func PlotSeries(series *solver.Series, opts PlotOptions) string {
	if series == nil || series.Len() < 2 {
		return ""
	}

	times := series.Times()
	dim := len(series.F(0).Flatten())

	var out strings.Builder
	for j := 0; j < dim; j++ {
		caption := opts.Caption
		if caption == "" {
			caption = fmt.Sprintf("F(t), log t axis: %.1e .. %.1e", times[1], times[len(times)-1])
		}
		if dim > 1 {
			caption = fmt.Sprintf("component %d, %s", j, caption)
		}

		data := LogResample(times, series.Component(j), opts.Points)
		graph := asciigraph.Plot(data,
			asciigraph.Height(opts.Height),
			asciigraph.Width(opts.Width),
			asciigraph.Caption(caption),
		)
		out.WriteString(graph)
		out.WriteString("\n")
		if j < dim-1 {
			out.WriteString("\n")
		}
	}
	return out.String()
}

// PlotColumns renders stored run columns the same way PlotSeries renders
// a live solve.
func PlotColumns(times []float64, columns [][]float64, opts PlotOptions) string {
	if len(times) < 2 || len(columns) == 0 {
		return ""
	}

	var out strings.Builder
	for j, col := range columns {
		caption := opts.Caption
		if caption == "" {
			caption = fmt.Sprintf("F(t), log t axis: %.1e .. %.1e", times[1], times[len(times)-1])
		}
		if len(columns) > 1 {
			caption = fmt.Sprintf("component %d, %s", j, caption)
		}

		data := LogResample(times, col, opts.Points)
		graph := asciigraph.Plot(data,
			asciigraph.Height(opts.Height),
			asciigraph.Width(opts.Width),
			asciigraph.Caption(caption),
		)
		out.WriteString(graph)
		out.WriteString("\n")
		if j < len(columns)-1 {
			out.WriteString("\n")
		}
	}
	return out.String()
}
