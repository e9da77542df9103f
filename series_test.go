package caravel

import (
	"math"
	"testing"
)

func TestNewSeriesFloat64(t *testing.T) {
	s := NewSeriesFloat64("values", []float64{1.5, 2.5, 3.5})

	if s.Name() != "values" {
		t.Errorf("expected name 'values', got '%s'", s.Name())
	}
	if s.DType() != Float64 {
		t.Errorf("expected Float64, got %s", s.DType())
	}
	if s.Len() != 3 {
		t.Errorf("expected length 3, got %d", s.Len())
	}
	if s.HasNulls() {
		t.Error("expected no nulls")
	}
}

func TestSeriesWithNulls(t *testing.T) {
	s := NewSeriesFloat64WithNulls("values", []float64{1, 0, 3}, []bool{true, false, true})

	if !s.HasNulls() {
		t.Error("expected nulls")
	}
	if s.NullCount() != 1 {
		t.Errorf("expected 1 null, got %d", s.NullCount())
	}
	if s.IsValid(1) {
		t.Error("row 1 should be null")
	}
	if s.Get(1) != nil {
		t.Errorf("expected nil for null row, got %v", s.Get(1))
	}
	if v, ok := s.GetFloat64(0); !ok || v != 1 {
		t.Errorf("GetFloat64(0) = %v, %v, want 1, true", v, ok)
	}
	if _, ok := s.GetFloat64(1); ok {
		t.Error("GetFloat64(1) should report null")
	}
}

func TestSeriesWithNullsLengthMismatch(t *testing.T) {
	s := NewSeriesFloat64WithNulls("values", []float64{1, 2}, []bool{true})
	if s != nil {
		t.Error("expected nil series for mask length mismatch")
	}
}

func TestSeriesFilter(t *testing.T) {
	s := NewSeriesInt64("n", []int64{10, 20, 30, 40})
	filtered := s.Filter([]bool{true, false, true, false})

	if filtered.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", filtered.Len())
	}
	expected := []int64{10, 30}
	for i, exp := range expected {
		if got := filtered.Int64()[i]; got != exp {
			t.Errorf("filtered[%d] = %d, want %d", i, got, exp)
		}
	}
}

func TestSeriesComparisonMasks(t *testing.T) {
	s := NewSeriesInt64("year", []int64{1998, 1999, 2000, 2001})

	mask := s.GtInt64(1999)
	expected := []bool{false, false, true, true}
	for i, exp := range expected {
		if mask[i] != exp {
			t.Errorf("GtInt64 mask[%d] = %v, want %v", i, mask[i], exp)
		}
	}
	if CountMask(mask) != 2 {
		t.Errorf("CountMask = %d, want 2", CountMask(mask))
	}
}

func TestSeriesTypedComparisonMasks(t *testing.T) {
	years := NewSeriesInt64("year", []int64{1998, 1999, 2000, 2001})

	ge := years.GeInt64(1999)
	expectedGe := []bool{false, true, true, true}
	for i, exp := range expectedGe {
		if ge[i] != exp {
			t.Errorf("GeInt64 mask[%d] = %v, want %v", i, ge[i], exp)
		}
	}

	eq := years.EqInt64(2000)
	expectedEq := []bool{false, false, true, false}
	for i, exp := range expectedEq {
		if eq[i] != exp {
			t.Errorf("EqInt64 mask[%d] = %v, want %v", i, eq[i], exp)
		}
	}

	temps := NewSeriesFloat64("temp", []float64{9.1, 9.5, 10.2})
	gt := temps.GtFloat64(9.4)
	expectedGt := []bool{false, true, true}
	for i, exp := range expectedGt {
		if gt[i] != exp {
			t.Errorf("GtFloat64 mask[%d] = %v, want %v", i, gt[i], exp)
		}
	}

	status := NewSeriesStringWithNulls("status",
		[]string{"Single", "", "Single"}, []bool{true, false, true})
	eqs := status.EqString("Single")
	expectedEqs := []bool{true, false, true}
	for i, exp := range expectedEqs {
		if eqs[i] != exp {
			t.Errorf("EqString mask[%d] = %v, want %v", i, eqs[i], exp)
		}
	}
	if status.EqString("")[1] {
		t.Error("null row should compare false even against the zero value")
	}
}

func TestSeriesStringWithNulls(t *testing.T) {
	s := NewSeriesStringWithNulls("status", []string{"a", "", "c"}, []bool{true, false, true})
	if s.NullCount() != 1 {
		t.Errorf("NullCount = %d, want 1", s.NullCount())
	}
	if _, ok := s.GetString(1); ok {
		t.Error("null row should not read as valid")
	}
	if v, ok := s.GetString(2); !ok || v != "c" {
		t.Errorf("GetString(2) = %q (%v), want c", v, ok)
	}
	if NewSeriesStringWithNulls("bad", []string{"a"}, []bool{true, false}) != nil {
		t.Error("mask length mismatch should return nil")
	}
}

func TestSeriesComparisonNullRows(t *testing.T) {
	s := NewSeriesInt64WithNulls("year", []int64{2005, 0, 2010}, []bool{true, false, true})

	mask := s.GtInt64(1999)
	if mask[1] {
		t.Error("null row should compare false")
	}
	if CountMask(mask) != 2 {
		t.Errorf("CountMask = %d, want 2", CountMask(mask))
	}
}

func TestSeriesAggregates(t *testing.T) {
	s := NewSeriesFloat64("v", []float64{1, 2, 3, 4})

	if s.Sum() != 10 {
		t.Errorf("Sum = %v, want 10", s.Sum())
	}
	if s.Mean() != 2.5 {
		t.Errorf("Mean = %v, want 2.5", s.Mean())
	}
	if s.Min() != 1 {
		t.Errorf("Min = %v, want 1", s.Min())
	}
	if s.Max() != 4 {
		t.Errorf("Max = %v, want 4", s.Max())
	}
}

func TestSeriesAggregatesSkipNulls(t *testing.T) {
	s := NewSeriesFloat64WithNulls("v", []float64{1, 100, 3}, []bool{true, false, true})

	if s.Sum() != 4 {
		t.Errorf("Sum = %v, want 4", s.Sum())
	}
	if s.Mean() != 2 {
		t.Errorf("Mean = %v, want 2", s.Mean())
	}
}

func TestSeriesMeanEmpty(t *testing.T) {
	s := NewSeriesFloat64("v", nil)
	if !math.IsNaN(s.Mean()) {
		t.Errorf("Mean of empty series = %v, want NaN", s.Mean())
	}
}

func TestSeriesArgsort(t *testing.T) {
	s := NewSeriesInt64("n", []int64{3, 1, 2})

	indices := s.Argsort(true)
	expected := []int{1, 2, 0}
	for i, exp := range expected {
		if indices[i] != exp {
			t.Errorf("Argsort[%d] = %d, want %d", i, indices[i], exp)
		}
	}

	descending := s.Argsort(false)
	expectedDesc := []int{0, 2, 1}
	for i, exp := range expectedDesc {
		if descending[i] != exp {
			t.Errorf("Argsort desc[%d] = %d, want %d", i, descending[i], exp)
		}
	}
}

func TestSeriesArgsortNullsLast(t *testing.T) {
	s := NewSeriesInt64WithNulls("n", []int64{3, 0, 1}, []bool{true, false, true})

	indices := s.Argsort(true)
	if indices[len(indices)-1] != 1 {
		t.Errorf("null row should sort last, got order %v", indices)
	}
}

func TestSeriesSlice(t *testing.T) {
	s := NewSeriesString("s", []string{"a", "b", "c", "d"})

	sliced := s.Slice(1, 3)
	if sliced.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", sliced.Len())
	}
	if v, _ := sliced.GetString(0); v != "b" {
		t.Errorf("sliced[0] = %s, want b", v)
	}

	clamped := s.Slice(2, 10)
	if clamped.Len() != 2 {
		t.Errorf("clamped slice length = %d, want 2", clamped.Len())
	}
}

func TestSeriesRenameSharesData(t *testing.T) {
	s := NewSeriesFloat64("old", []float64{1, 2})
	renamed := s.Rename("new")

	if renamed.Name() != "new" {
		t.Errorf("expected name 'new', got '%s'", renamed.Name())
	}
	if s.Name() != "old" {
		t.Errorf("original name changed to '%s'", s.Name())
	}
	if &renamed.Float64()[0] != &s.Float64()[0] {
		t.Error("rename should share backing data")
	}
}
