package viz

import (
	"fmt"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/caravel-data/caravel"
)

// DefaultWindow is the default moving-average window size
const DefaultWindow = 20

// MovingAverageFrame returns a copy of df with each named column
// replaced by its trailing moving average over the given window. The
// input frame is left untouched. Positions before a full window are
// null; a window larger than the row count leaves a column entirely
// null, which is not an error.
func MovingAverageFrame(df *caravel.DataFrame, columns []string, window int) (*caravel.DataFrame, error) {
	if window <= 0 {
		return nil, fmt.Errorf("window must be positive, got %d", window)
	}

	result := df
	for _, name := range columns {
		col := df.ColumnByName(name)
		if col == nil {
			return nil, fmt.Errorf("column '%s' not found", name)
		}
		smoothed, err := col.RollingMean(window)
		if err != nil {
			return nil, fmt.Errorf("column '%s': %w", name, err)
		}
		result, err = result.WithColumn(smoothed)
		if err != nil {
			return nil, fmt.Errorf("column '%s': %w", name, err)
		}
	}
	return result, nil
}

// PlotMovingAverages computes trailing moving averages for the named
// columns and renders them as one line per column against the frame's
// "year" column (row position when absent).
func PlotMovingAverages(df *caravel.DataFrame, columns []string, window int, o PlotOptions) error {
	smoothed, err := MovingAverageFrame(df, columns, window)
	if err != nil {
		return err
	}

	xLabels := axisLabels(smoothed)

	line := charts.NewLine()
	line.SetGlobalOptions(globalChartOptions(o)...)
	line.SetXAxis(xLabels)

	for _, name := range columns {
		col := smoothed.ColumnByName(name)
		points := make([]opts.LineData, col.Len())
		for i := 0; i < col.Len(); i++ {
			if v, ok := col.GetFloat64(i); ok {
				points[i] = opts.LineData{Value: v}
			} else {
				// echarts renders "-" as a gap
				points[i] = opts.LineData{Value: "-"}
			}
		}
		line.AddSeries(name, points)
	}

	return renderChart(line, o)
}

// axisLabels returns the "year" column as strings, or row positions
// when the frame has no year column.
func axisLabels(df *caravel.DataFrame) []string {
	labels := make([]string, df.Height())
	yearCol := df.ColumnByName("year")
	for i := range labels {
		if yearCol != nil {
			if y, ok := yearCol.GetInt64(i); ok {
				labels[i] = strconv.FormatInt(y, 10)
				continue
			}
		}
		labels[i] = strconv.Itoa(i)
	}
	return labels
}
