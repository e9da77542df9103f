// Package main provides the caravel CLI for fetching, merging, and
// charting yearly climate and unclaimed-estates data.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/caravel-data/caravel/viz"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitRuntimeError = 1
)

var (
	// Global flags
	verbose bool
	quiet   bool

	// Run command flags
	window     int
	threshold  float64
	dateFormat string
	estates    string
	outDir     string
	noOpen     bool

	// Merge command flags
	exportFormat string
	outputPath   string

	// Build information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
)

// defaultSources are the UK mean-temperature series merged by default.
var defaultSources = []viz.Source{
	{Location: "https://www.metoffice.gov.uk/pub/data/weather/uk/climate/datasets/Tmean/date/England.txt", Column: "england"},
	{Location: "https://www.metoffice.gov.uk/pub/data/weather/uk/climate/datasets/Tmean/date/Wales.txt", Column: "wales"},
	{Location: "https://www.metoffice.gov.uk/pub/data/weather/uk/climate/datasets/Tmean/date/Scotland.txt", Column: "scotland"},
	{Location: "https://www.metoffice.gov.uk/pub/data/weather/uk/climate/datasets/Tmean/date/Northern_Ireland.txt", Column: "northern"},
}

var plotColumns = []string{"england", "scotland", "wales", "northern"}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitRuntimeError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "caravel",
	Short: "Caravel - Yearly climate and estates data charting",
	Long: `Caravel merges yearly temperature series from the Met Office,
charts their moving averages, and charts unclaimed-estates records by
death year and marital status.

Examples:
  # Produce all three charts
  caravel run

  # Merge the temperature series and export as parquet
  caravel merge --export parquet --output tmean.parquet`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		} else if quiet {
			level = slog.LevelError
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Produce all three charts",
	Long: `Fetch the four Met Office yearly mean-temperature series, merge
them on year, and chart their moving averages. Then read the local
unclaimed-estates CSV and chart record counts per death year and the
marital status distribution.

Charts are written as HTML files and opened in the default viewer
unless --no-open is given.`,
	RunE: runAll,
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge the yearly series and export the table",
	Long: `Fetch the four Met Office yearly mean-temperature series, merge
them on year with successive inner joins, and export the merged table.

Formats: csv, json, parquet, arrow. With no --output the table is
printed instead.`,
	RunE: runMerge,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")

	runCmd.Flags().IntVar(&window, "window", viz.DefaultWindow, "Moving average window in years")
	runCmd.Flags().Float64Var(&threshold, "threshold", viz.DefaultBucketThreshold, "Relative frequency below which categories fold into Other")
	runCmd.Flags().StringVar(&dateFormat, "date-format", "02/01/2006", "Reference layout for the Date of Death column")
	runCmd.Flags().StringVar(&estates, "estates", "UnclaimedEstatesList.csv", "Path to the unclaimed estates CSV")
	runCmd.Flags().StringVar(&outDir, "out-dir", ".", "Directory the chart HTML files are written to")
	runCmd.Flags().BoolVar(&noOpen, "no-open", false, "Do not open charts in the default viewer")

	mergeCmd.Flags().StringVar(&exportFormat, "export", "csv", "Export format: csv, json, parquet, arrow")
	mergeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(versionCmd)
}

func runAll(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	ctx := context.Background()

	merged, err := viz.MergeYearly(ctx, defaultSources)
	if err != nil {
		slog.Error("merge failed", "error", err)
		return err
	}
	slog.Info("merged temperature series", "rows", merged.Height())

	err = viz.PlotMovingAverages(merged, plotColumns, window, viz.PlotOptions{
		Title:      "Rising Temperature",
		XLabel:     "Year",
		YLabel:     "Mean Temperature",
		Width:      "900px",
		Height:     "500px",
		OutputPath: filepath.Join(outDir, "rising_temperature.html"),
		Open:       !noOpen,
	})
	if err != nil {
		slog.Error("moving average chart failed", "error", err)
		return err
	}

	err = viz.PlotYearlyCounts(estates, viz.YearlyCountOptions{
		DateColumn: "Date of Death",
		Layout:     dateFormat,
		CutoffYear: viz.DefaultCutoffYear,
	}, viz.PlotOptions{
		Title:      "Unclaimed House since 2000",
		XLabel:     "Unclaimed Year",
		YLabel:     "Count",
		Width:      "900px",
		Height:     "500px",
		OutputPath: filepath.Join(outDir, "unclaimed_by_year.html"),
		Open:       !noOpen,
	})
	if err != nil {
		slog.Error("yearly count chart failed", "error", err)
		return err
	}

	err = viz.PlotCategoryShares(estates, viz.DefaultCategoryColumn, threshold, viz.PlotOptions{
		Title:      "Distribution of Marital Status",
		Width:      "700px",
		Height:     "700px",
		OutputPath: filepath.Join(outDir, "marital_status.html"),
		Open:       !noOpen,
	})
	if err != nil {
		slog.Error("marital status chart failed", "error", err)
		return err
	}

	slog.Info("all charts rendered", "dir", outDir)
	return nil
}

func runMerge(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	ctx := context.Background()

	merged, err := viz.MergeYearly(ctx, defaultSources)
	if err != nil {
		slog.Error("merge failed", "error", err)
		return err
	}

	if outputPath == "" {
		fmt.Println(merged)
		return nil
	}

	switch exportFormat {
	case "csv":
		err = merged.WriteCSV(outputPath)
	case "json":
		err = merged.WriteJSON(outputPath)
	case "parquet":
		err = merged.WriteParquet(outputPath)
	case "arrow":
		err = merged.WriteIPC(outputPath)
	default:
		err = fmt.Errorf("unknown export format: %s", exportFormat)
	}
	if err != nil {
		slog.Error("export failed", "format", exportFormat, "error", err)
		return err
	}

	slog.Info("exported merged table", "format", exportFormat, "path", outputPath, "rows", merged.Height())
	return nil
}
