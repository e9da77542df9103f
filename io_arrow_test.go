package caravel

import (
	"bytes"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

func TestToArrowRoundTrip(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesInt64("year", []int64{2000, 2001, 2002}),
		NewSeriesFloat64("temp", []float64{9.34, 9.18, 9.74}),
		NewSeriesString("region", []string{"england", "wales", "scotland"}),
		NewSeriesBool("wet", []bool{true, false, true}),
	)

	record, err := df.ToArrow(memory.DefaultAllocator)
	if err != nil {
		t.Fatalf("failed to convert to arrow: %v", err)
	}
	defer record.Release()

	if record.NumRows() != 3 || record.NumCols() != 4 {
		t.Fatalf("record shape (%d, %d), want (3, 4)", record.NumRows(), record.NumCols())
	}

	back, err := NewDataFrameFromArrow(record)
	if err != nil {
		t.Fatalf("failed to convert from arrow: %v", err)
	}

	expectedTemps := []float64{9.34, 9.18, 9.74}
	tempCol := back.ColumnByName("temp")
	for i, want := range expectedTemps {
		if v, _ := tempCol.GetFloat64(i); v != want {
			t.Errorf("temp[%d] = %v, want %v", i, v, want)
		}
	}
	if v, _ := back.ColumnByName("region").GetString(2); v != "scotland" {
		t.Errorf("region[2] = %s, want scotland", v)
	}
}

func TestToArrowNulls(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesFloat64WithNulls("temp", []float64{9.34, 0, 9.74}, []bool{true, false, true}),
	)

	record, err := df.ToArrow(memory.DefaultAllocator)
	if err != nil {
		t.Fatalf("failed to convert to arrow: %v", err)
	}
	defer record.Release()

	if record.Column(0).NullN() != 1 {
		t.Errorf("arrow null count = %d, want 1", record.Column(0).NullN())
	}

	back, err := NewDataFrameFromArrow(record)
	if err != nil {
		t.Fatalf("failed to convert from arrow: %v", err)
	}

	col := back.ColumnByName("temp")
	if col.IsValid(1) {
		t.Error("null should survive the round trip")
	}
	if !col.IsValid(0) || !col.IsValid(2) {
		t.Error("valid values should survive the round trip")
	}
}

func TestIPCRoundTrip(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesInt64("year", []int64{2000, 2001}),
		NewSeriesFloat64("temp", []float64{9.5, 9.25}),
	)

	var buf bytes.Buffer
	if err := df.WriteIPCToWriter(&buf); err != nil {
		t.Fatalf("failed to write IPC stream: %v", err)
	}

	back, err := ReadIPCFromReader(&buf)
	if err != nil {
		t.Fatalf("failed to read IPC stream: %v", err)
	}

	if back.Height() != 2 || back.Width() != 2 {
		t.Fatalf("round trip shape (%d, %d), want (2, 2)", back.Height(), back.Width())
	}
	if v, _ := back.ColumnByName("year").GetInt64(1); v != 2001 {
		t.Errorf("year[1] = %d, want 2001", v)
	}
	if v, _ := back.ColumnByName("temp").GetFloat64(0); v != 9.5 {
		t.Errorf("temp[0] = %v, want 9.5", v)
	}
}
