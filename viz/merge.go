package viz

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caravel-data/caravel"
)

// Source names one yearly series: where to read it from and what to
// call its value column in the merged output.
type Source struct {
	Location string // URL (http/https) or local file path
	Column   string // Target name for the source's "ann" column
}

// climate summary files carry 5 preamble lines before the header
const yearlyPreambleLines = 5

// MergeYearly reads each source as a whitespace-delimited table, keeps
// its "year" and "ann" columns, renames "ann" to the source's target
// column, and folds the tables with successive inner joins on "year"
// in input order. The result holds only years present in every source.
// Any source that fails to fetch or parse aborts the whole merge.
func MergeYearly(ctx context.Context, sources []Source) (*caravel.DataFrame, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources given")
	}

	var merged *caravel.DataFrame
	for _, src := range sources {
		df, err := loadYearly(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Location, err)
		}
		slog.Debug("loaded yearly source",
			"location", src.Location, "column", src.Column, "rows", df.Height())

		if merged == nil {
			merged = df
			continue
		}
		merged, err = merged.Join(df, caravel.On("year"))
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Location, err)
		}
	}

	slog.Debug("merged yearly sources", "sources", len(sources), "rows", merged.Height())
	return merged, nil
}

func loadYearly(ctx context.Context, src Source) (*caravel.DataFrame, error) {
	opts := caravel.DefaultTableReadOptions()
	opts.SkipRows = yearlyPreambleLines

	var df *caravel.DataFrame
	var err error
	if isURL(src.Location) {
		df, err = caravel.ReadTableFromURL(ctx, src.Location, opts)
	} else {
		df, err = caravel.ReadTable(src.Location, opts)
	}
	if err != nil {
		return nil, err
	}

	df, err = df.Select("year", "ann")
	if err != nil {
		return nil, err
	}
	return df.Rename("ann", src.Column)
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
