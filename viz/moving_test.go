package viz

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caravel-data/caravel"
)

func TestMovingAverageFrame(t *testing.T) {
	df, _ := caravel.NewDataFrame(
		caravel.NewSeriesInt64("year", []int64{2000, 2001, 2002, 2003, 2004}),
		caravel.NewSeriesFloat64("england", []float64{1, 2, 3, 4, 5}),
	)

	out, err := MovingAverageFrame(df, []string{"england"}, 2)
	if err != nil {
		t.Fatalf("failed to compute moving averages: %v", err)
	}

	col := out.ColumnByName("england")
	if col.IsValid(0) {
		t.Error("position before a full window should be null")
	}
	expected := []float64{1.5, 2.5, 3.5, 4.5}
	for i, want := range expected {
		if v, ok := col.GetFloat64(i + 1); !ok || v != want {
			t.Errorf("england[%d] = %v, want %v", i+1, v, want)
		}
	}
}

func TestMovingAverageFrameConstantSeries(t *testing.T) {
	df, _ := caravel.NewDataFrame(
		caravel.NewSeriesFloat64("temp", []float64{7, 7, 7, 7, 7, 7}),
	)

	out, err := MovingAverageFrame(df, []string{"temp"}, 4)
	if err != nil {
		t.Fatalf("failed to compute moving averages: %v", err)
	}

	col := out.ColumnByName("temp")
	for i := 3; i < col.Len(); i++ {
		if v, ok := col.GetFloat64(i); !ok || v != 7 {
			t.Errorf("temp[%d] = %v, want 7", i, v)
		}
	}
}

func TestMovingAverageFrameNoMutation(t *testing.T) {
	raw := []float64{1, 2, 3, 4, 5}
	df, _ := caravel.NewDataFrame(
		caravel.NewSeriesFloat64("england", raw),
	)

	if _, err := MovingAverageFrame(df, []string{"england"}, 2); err != nil {
		t.Fatalf("failed to compute moving averages: %v", err)
	}

	col := df.ColumnByName("england")
	for i, want := range raw {
		if v, ok := col.GetFloat64(i); !ok || v != want {
			t.Errorf("input frame changed: england[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestMovingAverageFrameWindowLargerThanFrame(t *testing.T) {
	df, _ := caravel.NewDataFrame(
		caravel.NewSeriesFloat64("temp", []float64{1, 2, 3}),
	)

	out, err := MovingAverageFrame(df, []string{"temp"}, 10)
	if err != nil {
		t.Fatalf("oversized window should not error: %v", err)
	}

	col := out.ColumnByName("temp")
	for i := 0; i < col.Len(); i++ {
		if col.IsValid(i) {
			t.Errorf("temp[%d] should be null with an oversized window", i)
		}
	}
}

func TestMovingAverageFrameErrors(t *testing.T) {
	df, _ := caravel.NewDataFrame(
		caravel.NewSeriesFloat64("temp", []float64{1, 2, 3}),
	)

	if _, err := MovingAverageFrame(df, []string{"missing"}, 2); err == nil {
		t.Error("expected error for missing column")
	}
	if _, err := MovingAverageFrame(df, []string{"temp"}, 0); err == nil {
		t.Error("expected error for zero window")
	}
}

func TestPlotMovingAveragesWritesHTML(t *testing.T) {
	df, _ := caravel.NewDataFrame(
		caravel.NewSeriesInt64("year", []int64{2000, 2001, 2002, 2003}),
		caravel.NewSeriesFloat64("england", []float64{9.1, 9.3, 9.5, 9.7}),
	)

	path := filepath.Join(t.TempDir(), "chart.html")
	o := DefaultPlotOptions()
	o.Title = "Rising Temperature"
	o.OutputPath = path

	if err := PlotMovingAverages(df, []string{"england"}, 2, o); err != nil {
		t.Fatalf("failed to plot: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("chart file not written: %v", err)
	}
	if !strings.Contains(string(data), "Rising Temperature") {
		t.Error("chart file missing the title")
	}
}

func TestOutputPathFromTitle(t *testing.T) {
	o := PlotOptions{Title: "Rising Temperature"}
	if got := outputPath(o); got != "rising_temperature.html" {
		t.Errorf("outputPath = %s, want rising_temperature.html", got)
	}

	o = PlotOptions{}
	if got := outputPath(o); got != "chart.html" {
		t.Errorf("outputPath = %s, want chart.html", got)
	}

	o = PlotOptions{OutputPath: "out/custom.html"}
	if got := outputPath(o); got != "out/custom.html" {
		t.Errorf("outputPath = %s, want out/custom.html", got)
	}
}
