package caravel

import (
	"fmt"
)

// DataFrame is an ordered collection of equally sized Series.
type DataFrame struct {
	columns []*Series
	height  int
}

// NewDataFrame creates a DataFrame from the given Series.
// All Series must have the same length and unique names.
func NewDataFrame(series ...*Series) (*DataFrame, error) {
	df := &DataFrame{}

	seen := make(map[string]bool, len(series))
	for _, s := range series {
		if s == nil {
			return nil, fmt.Errorf("nil series")
		}
		if seen[s.Name()] {
			return nil, fmt.Errorf("duplicate column name '%s'", s.Name())
		}
		seen[s.Name()] = true

		if len(df.columns) == 0 {
			df.height = s.Len()
		} else if s.Len() != df.height {
			return nil, fmt.Errorf("column '%s' has length %d, expected %d", s.Name(), s.Len(), df.height)
		}
		df.columns = append(df.columns, s)
	}

	return df, nil
}

// Height returns the number of rows
func (df *DataFrame) Height() int {
	return df.height
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.columns)
}

// Column returns the Series at the given position, or nil if out of range
func (df *DataFrame) Column(i int) *Series {
	if i < 0 || i >= len(df.columns) {
		return nil
	}
	return df.columns[i]
}

// ColumnByName returns the Series with the given name, or nil if not found
func (df *DataFrame) ColumnByName(name string) *Series {
	for _, col := range df.columns {
		if col.Name() == name {
			return col
		}
	}
	return nil
}

// Columns returns the column names in order
func (df *DataFrame) Columns() []string {
	names := make([]string, len(df.columns))
	for i, col := range df.columns {
		names[i] = col.Name()
	}
	return names
}

// HasColumn returns true if a column with the given name exists
func (df *DataFrame) HasColumn(name string) bool {
	return df.ColumnByName(name) != nil
}

// Select returns a new DataFrame with only the named columns, in the
// given order. Unknown columns are an error.
func (df *DataFrame) Select(names ...string) (*DataFrame, error) {
	selected := make([]*Series, 0, len(names))
	for _, name := range names {
		col := df.ColumnByName(name)
		if col == nil {
			return nil, fmt.Errorf("column '%s' not found", name)
		}
		selected = append(selected, col)
	}
	return NewDataFrame(selected...)
}

// Drop returns a new DataFrame without the named columns
func (df *DataFrame) Drop(names ...string) (*DataFrame, error) {
	dropSet := make(map[string]bool, len(names))
	for _, name := range names {
		dropSet[name] = true
	}

	kept := make([]*Series, 0, len(df.columns))
	for _, col := range df.columns {
		if !dropSet[col.Name()] {
			kept = append(kept, col)
		}
	}
	return NewDataFrame(kept...)
}

// Rename returns a new DataFrame with one column renamed.
// Renaming a missing column is an error.
func (df *DataFrame) Rename(oldName, newName string) (*DataFrame, error) {
	if df.ColumnByName(oldName) == nil {
		return nil, fmt.Errorf("column '%s' not found", oldName)
	}
	if oldName != newName && df.ColumnByName(newName) != nil {
		return nil, fmt.Errorf("column '%s' already exists", newName)
	}

	renamed := make([]*Series, len(df.columns))
	for i, col := range df.columns {
		if col.Name() == oldName {
			renamed[i] = col.Rename(newName)
		} else {
			renamed[i] = col
		}
	}
	return NewDataFrame(renamed...)
}

// WithColumn returns a new DataFrame with the Series added, or replaced
// if a column with the same name exists. The length must match unless
// the DataFrame is empty.
func (df *DataFrame) WithColumn(series *Series) (*DataFrame, error) {
	if series == nil {
		return nil, fmt.Errorf("nil series")
	}
	if len(df.columns) > 0 && series.Len() != df.height {
		return nil, fmt.Errorf("column '%s' has length %d, expected %d", series.Name(), series.Len(), df.height)
	}

	cols := make([]*Series, 0, len(df.columns)+1)
	replaced := false
	for _, col := range df.columns {
		if col.Name() == series.Name() {
			cols = append(cols, series)
			replaced = true
		} else {
			cols = append(cols, col)
		}
	}
	if !replaced {
		cols = append(cols, series)
	}
	return NewDataFrame(cols...)
}

// Filter returns a new DataFrame with rows where mask is true.
// The mask length must match the DataFrame height.
func (df *DataFrame) Filter(mask []bool) (*DataFrame, error) {
	if len(mask) != df.height {
		return nil, fmt.Errorf("mask length %d does not match height %d", len(mask), df.height)
	}

	filtered := make([]*Series, len(df.columns))
	for i, col := range df.columns {
		filtered[i] = col.Filter(mask)
	}
	return NewDataFrame(filtered...)
}

// Sort returns a new DataFrame sorted by the named column.
// The sort is stable; null rows sort last.
func (df *DataFrame) Sort(column string, ascending bool) (*DataFrame, error) {
	sortCol := df.ColumnByName(column)
	if sortCol == nil {
		return nil, fmt.Errorf("column '%s' not found", column)
	}

	indices := sortCol.Argsort(ascending)
	sorted := make([]*Series, len(df.columns))
	for i, col := range df.columns {
		sorted[i] = col.gather(indices)
	}
	return NewDataFrame(sorted...)
}

// Head returns a new DataFrame with the first n rows
func (df *DataFrame) Head(n int) (*DataFrame, error) {
	return df.Slice(0, n)
}

// Tail returns a new DataFrame with the last n rows
func (df *DataFrame) Tail(n int) (*DataFrame, error) {
	return df.Slice(df.height-n, df.height)
}

// Slice returns a new DataFrame with rows from start to end (exclusive).
// Out-of-range bounds are clamped.
func (df *DataFrame) Slice(start, end int) (*DataFrame, error) {
	sliced := make([]*Series, len(df.columns))
	for i, col := range df.columns {
		sliced[i] = col.Slice(start, end)
	}
	return NewDataFrame(sliced...)
}

// VStack stacks other below df, producing a new DataFrame.
// Both frames must have the same columns in the same order with
// matching dtypes.
func (df *DataFrame) VStack(other *DataFrame) (*DataFrame, error) {
	if df.Width() != other.Width() {
		return nil, fmt.Errorf("cannot stack frames with %d and %d columns", df.Width(), other.Width())
	}
	stacked := make([]*Series, len(df.columns))
	for i, col := range df.columns {
		otherCol := other.columns[i]
		if col.Name() != otherCol.Name() {
			return nil, fmt.Errorf("column %d name mismatch: '%s' vs '%s'", i, col.Name(), otherCol.Name())
		}
		if col.DType() != otherCol.DType() {
			return nil, fmt.Errorf("column '%s' dtype mismatch: %s vs %s", col.Name(), col.DType(), otherCol.DType())
		}
		stacked[i] = col.concat(otherCol)
	}
	return NewDataFrame(stacked...)
}

// String renders the DataFrame using the global display configuration
func (df *DataFrame) String() string {
	return df.StringWithConfig(GetDisplayConfig())
}
