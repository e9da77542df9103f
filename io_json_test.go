package caravel

import (
	"bytes"
	"strings"
	"testing"
)

func TestReadJSONRecords(t *testing.T) {
	data := `[
		{"year": 2000, "temp": 9.34, "region": "england"},
		{"year": 2001, "temp": 9.18, "region": "wales"},
		{"year": 2002, "temp": 9.74, "region": "scotland"}
	]`

	df, err := ReadJSONFromReader(strings.NewReader(data))
	if err != nil {
		t.Fatalf("failed to read JSON: %v", err)
	}

	if df.Height() != 3 {
		t.Fatalf("got %d rows, want 3", df.Height())
	}
	if df.ColumnByName("year").DType() != Int64 {
		t.Errorf("year dtype = %s, want Int64", df.ColumnByName("year").DType())
	}
	if df.ColumnByName("temp").DType() != Float64 {
		t.Errorf("temp dtype = %s, want Float64", df.ColumnByName("temp").DType())
	}
	if df.ColumnByName("region").DType() != String {
		t.Errorf("region dtype = %s, want String", df.ColumnByName("region").DType())
	}

	if v, _ := df.ColumnByName("temp").GetFloat64(2); v != 9.74 {
		t.Errorf("temp[2] = %v, want 9.74", v)
	}
}

func TestReadJSONMissingFields(t *testing.T) {
	data := `[
		{"year": 2000, "temp": 9.34},
		{"year": 2001}
	]`

	df, err := ReadJSONFromReader(strings.NewReader(data))
	if err != nil {
		t.Fatalf("failed to read JSON: %v", err)
	}

	tempCol := df.ColumnByName("temp")
	if tempCol == nil {
		t.Fatal("missing 'temp' column")
	}
	if tempCol.IsValid(1) {
		t.Error("absent field should read as null")
	}
}

func TestWriteJSONRecordsRoundTrip(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesInt64("year", []int64{2000, 2001}),
		NewSeriesFloat64("temp", []float64{9.5, 9.25}),
	)

	var buf bytes.Buffer
	if err := df.WriteJSONToWriter(&buf); err != nil {
		t.Fatalf("failed to write JSON: %v", err)
	}

	back, err := ReadJSONFromReader(&buf)
	if err != nil {
		t.Fatalf("failed to read JSON back: %v", err)
	}

	if back.Height() != 2 {
		t.Fatalf("round trip got %d rows, want 2", back.Height())
	}
	if v, _ := back.ColumnByName("year").GetInt64(0); v != 2000 {
		t.Errorf("year[0] = %d, want 2000", v)
	}
	if v, _ := back.ColumnByName("temp").GetFloat64(1); v != 9.25 {
		t.Errorf("temp[1] = %v, want 9.25", v)
	}
}

func TestWriteJSONColumns(t *testing.T) {
	df, _ := NewDataFrame(
		NewSeriesInt64("a", []int64{1, 2}),
		NewSeriesString("b", []string{"x", "y"}),
	)

	var buf bytes.Buffer
	opts := DefaultJSONWriteOptions()
	opts.Format = JSONColumns

	if err := df.WriteJSONToWriter(&buf, opts); err != nil {
		t.Fatalf("failed to write JSON: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"a":[1,2]`) {
		t.Errorf("column layout missing 'a' array: %s", out)
	}
	if !strings.Contains(out, `"b":["x","y"]`) {
		t.Errorf("column layout missing 'b' array: %s", out)
	}
}
