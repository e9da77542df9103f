// Package viz provides chart-producing routines over caravel DataFrames:
// merging yearly series, moving-average line charts, yearly bar counts,
// and categorical pie charts with small-category bucketing.
package viz

// PlotOptions configures chart rendering.
type PlotOptions struct {
	Title      string
	XLabel     string
	YLabel     string
	Width      string // CSS width, e.g. "900px"
	Height     string // CSS height, e.g. "500px"
	OutputPath string // HTML file to write (default derived from title)
	Open       bool   // Open the rendered chart in the default viewer
}

// DefaultPlotOptions returns default plot options
func DefaultPlotOptions() PlotOptions {
	return PlotOptions{
		Width:  "900px",
		Height: "500px",
	}
}
