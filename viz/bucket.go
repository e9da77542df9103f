package viz

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"golang.org/x/text/encoding/charmap"

	"github.com/caravel-data/caravel"
)

// DefaultBucketThreshold is the default relative-frequency threshold
// below which a category folds into the Other bucket
const DefaultBucketThreshold = 0.03

// OtherLabel is the sentinel bucket for rare categories
const OtherLabel = "Other"

// DefaultCategoryColumn is the column bucketed by PlotCategoryShares
const DefaultCategoryColumn = "Marital Status"

// BucketCategories counts the distinct values of the named column,
// folds every category whose share of the total is strictly below
// threshold into OtherLabel, and recounts. The result has the category
// column and a "count" column whose values sum to the number of
// counted rows. When every category is below the threshold the result
// is a single Other row.
func BucketCategories(df *caravel.DataFrame, column string, threshold float64) (*caravel.DataFrame, error) {
	col := df.ColumnByName(column)
	if col == nil {
		return nil, fmt.Errorf("column '%s' not found", column)
	}
	if col.DType() != caravel.String {
		return nil, fmt.Errorf("column '%s' must be String, got %s", column, col.DType())
	}

	grouped, err := df.GroupBy(column)
	if err != nil {
		return nil, err
	}
	counts, err := grouped.Count()
	if err != nil {
		return nil, err
	}

	countCol := counts.ColumnByName("count")
	var total int64
	for _, c := range countCol.Int64() {
		total += c
	}
	if total == 0 {
		return counts, nil
	}

	// Categories below the threshold fold into the Other bucket
	rare := make(map[string]bool)
	labelCol := counts.ColumnByName(column)
	for i := 0; i < counts.Height(); i++ {
		label, _ := labelCol.GetString(i)
		count, _ := countCol.GetInt64(i)
		if float64(count)/float64(total) < threshold {
			rare[label] = true
		}
	}

	if len(rare) == 0 {
		return counts, nil
	}

	relabeled := make([]string, col.Len())
	relabeledValid := make([]bool, col.Len())
	for i := 0; i < col.Len(); i++ {
		label, ok := col.GetString(i)
		if !ok {
			continue
		}
		relabeledValid[i] = true
		if rare[label] {
			relabeled[i] = OtherLabel
		} else {
			relabeled[i] = label
		}
	}

	relabeledFrame, err := caravel.NewDataFrame(caravel.NewSeriesStringWithNulls(column, relabeled, relabeledValid))
	if err != nil {
		return nil, err
	}
	regrouped, err := relabeledFrame.GroupBy(column)
	if err != nil {
		return nil, err
	}
	return regrouped.Count()
}

// PlotCategoryShares reads a Latin-1 encoded CSV file, buckets the
// rare values of the category column, and renders the counts as a pie
// chart with percentage labels.
func PlotCategoryShares(path, column string, threshold float64, o PlotOptions) error {
	readOpts := caravel.DefaultCSVReadOptions()
	readOpts.Encoding = charmap.ISO8859_1

	df, err := caravel.ReadCSV(path, readOpts)
	if err != nil {
		return err
	}

	shares, err := BucketCategories(df, column, threshold)
	if err != nil {
		return err
	}

	labelCol := shares.ColumnByName(column)
	countCol := shares.ColumnByName("count")

	slices := make([]opts.PieData, shares.Height())
	for i := 0; i < shares.Height(); i++ {
		label, _ := labelCol.GetString(i)
		count, _ := countCol.GetInt64(i)
		slices[i] = opts.PieData{Name: label, Value: count}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithInitializationOpts(opts.Initialization{
			Width:  o.Width,
			Height: o.Height,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	pie.AddSeries(column, slices).SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
	)

	return renderChart(pie, o)
}
