package viz

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"golang.org/x/text/encoding/charmap"

	"github.com/caravel-data/caravel"
)

// DefaultCutoffYear is the default exclusive lower bound for yearly counts
const DefaultCutoffYear = 1999

// YearlyCountOptions configures yearly record counting.
type YearlyCountOptions struct {
	// DateColumn holds the date strings (default "Date of Death").
	DateColumn string

	// Layout is the Go reference layout the dates are parsed with.
	Layout string

	// CutoffYear keeps only rows with year strictly greater than it
	// (default 1999).
	CutoffYear int64

	// SkipInvalidDates drops rows whose date does not match the layout
	// instead of failing the whole call.
	SkipInvalidDates bool
}

// DefaultYearlyCountOptions returns default yearly count options
func DefaultYearlyCountOptions(layout string) YearlyCountOptions {
	return YearlyCountOptions{
		DateColumn: "Date of Death",
		Layout:     layout,
		CutoffYear: DefaultCutoffYear,
	}
}

// YearlyCounts parses the date column, derives the death year, keeps
// rows with year strictly greater than the cutoff, and counts rows per
// year. The result has the year column and a "count" column, sorted by
// ascending year. An unparsable date fails the call unless
// SkipInvalidDates is set; null date rows are always dropped.
func YearlyCounts(df *caravel.DataFrame, opt YearlyCountOptions) (*caravel.DataFrame, error) {
	if opt.DateColumn == "" {
		opt.DateColumn = "Date of Death"
	}
	dateCol := df.ColumnByName(opt.DateColumn)
	if dateCol == nil {
		return nil, fmt.Errorf("column '%s' not found", opt.DateColumn)
	}
	if dateCol.DType() != caravel.String {
		return nil, fmt.Errorf("column '%s' must be String, got %s", opt.DateColumn, dateCol.DType())
	}

	n := dateCol.Len()
	years := make([]int64, n)
	valid := make([]bool, n)
	skipped := 0
	for i := 0; i < n; i++ {
		raw, ok := dateCol.GetString(i)
		if !ok {
			continue
		}
		t, err := time.Parse(opt.Layout, raw)
		if err != nil {
			if opt.SkipInvalidDates {
				skipped++
				continue
			}
			return nil, fmt.Errorf("row %d: cannot parse date '%s' with layout '%s': %w", i, raw, opt.Layout, err)
		}
		years[i] = int64(t.Year())
		valid[i] = true
	}
	if skipped > 0 {
		slog.Warn("skipped rows with invalid dates", "column", opt.DateColumn, "skipped", skipped)
	}

	yearSeries := caravel.NewSeriesInt64WithNulls("Year of Death", years, valid)
	yearFrame, err := caravel.NewDataFrame(yearSeries)
	if err != nil {
		return nil, err
	}

	kept, err := yearFrame.Filter(yearSeries.GtInt64(opt.CutoffYear))
	if err != nil {
		return nil, err
	}

	grouped, err := kept.GroupBy("Year of Death")
	if err != nil {
		return nil, err
	}
	counts, err := grouped.Count()
	if err != nil {
		return nil, err
	}

	return counts.Sort("Year of Death", true)
}

// PlotYearlyCounts reads a Latin-1 encoded CSV file, counts records per
// death year after the cutoff, and renders the counts as a bar chart
// with one bar per year in ascending order.
func PlotYearlyCounts(path string, opt YearlyCountOptions, o PlotOptions) error {
	readOpts := caravel.DefaultCSVReadOptions()
	readOpts.Encoding = charmap.ISO8859_1

	df, err := caravel.ReadCSV(path, readOpts)
	if err != nil {
		return err
	}

	counts, err := YearlyCounts(df, opt)
	if err != nil {
		return err
	}

	yearCol := counts.ColumnByName("Year of Death")
	countCol := counts.ColumnByName("count")

	labels := make([]string, counts.Height())
	bars := make([]opts.BarData, counts.Height())
	for i := 0; i < counts.Height(); i++ {
		year, _ := yearCol.GetInt64(i)
		count, _ := countCol.GetInt64(i)
		labels[i] = strconv.FormatInt(year, 10)
		bars[i] = opts.BarData{Value: count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(globalChartOptions(o)...)
	bar.SetXAxis(labels)
	bar.AddSeries("count", bars)

	return renderChart(bar, o)
}
