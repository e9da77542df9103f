package caravel

import "fmt"

// GroupBy represents a groupby operation on a DataFrame.
// It holds a reference to the source DataFrame and the grouping column.
type GroupBy struct {
	df        *DataFrame
	byColumns []string
}

// GroupBy creates a groupby object for the specified columns.
// Currently supports single-column grouping on Int64 or String keys.
func (df *DataFrame) GroupBy(columns ...string) (*GroupBy, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("groupby requires at least one column")
	}
	for _, col := range columns {
		if df.ColumnByName(col) == nil {
			return nil, fmt.Errorf("column '%s' not found", col)
		}
	}
	return &GroupBy{df: df, byColumns: columns}, nil
}

// groupKeys assigns each row to a group and returns the group id per row
// plus the row index of each group's first occurrence. Groups appear in
// first-seen order. Null key rows are skipped (group id -1).
func (g *GroupBy) groupKeys() ([]int, []int, error) {
	if len(g.byColumns) != 1 {
		return nil, nil, fmt.Errorf("only single-column groupby is supported")
	}
	keyCol := g.df.ColumnByName(g.byColumns[0])

	height := g.df.Height()
	groupOf := make([]int, height)
	var firstRow []int

	switch keyCol.DType() {
	case Int64:
		seen := make(map[int64]int)
		data := keyCol.Int64()
		for i := 0; i < height; i++ {
			if !keyCol.IsValid(i) {
				groupOf[i] = -1
				continue
			}
			id, ok := seen[data[i]]
			if !ok {
				id = len(firstRow)
				seen[data[i]] = id
				firstRow = append(firstRow, i)
			}
			groupOf[i] = id
		}
	case String:
		seen := make(map[string]int)
		data := keyCol.Strings()
		for i := 0; i < height; i++ {
			if !keyCol.IsValid(i) {
				groupOf[i] = -1
				continue
			}
			id, ok := seen[data[i]]
			if !ok {
				id = len(firstRow)
				seen[data[i]] = id
				firstRow = append(firstRow, i)
			}
			groupOf[i] = id
		}
	default:
		return nil, nil, fmt.Errorf("unsupported groupby key type: %s", keyCol.DType())
	}

	return groupOf, firstRow, nil
}

// Count computes the number of rows for each group.
// Returns a new DataFrame with group keys and a "count" column.
func (g *GroupBy) Count() (*DataFrame, error) {
	groupOf, firstRow, err := g.groupKeys()
	if err != nil {
		return nil, err
	}

	counts := make([]int64, len(firstRow))
	for _, id := range groupOf {
		if id >= 0 {
			counts[id]++
		}
	}

	keySeries := g.df.ColumnByName(g.byColumns[0]).gather(firstRow)
	return NewDataFrame(keySeries, NewSeriesInt64("count", counts))
}

// Sum computes the sum of the specified Float64 column for each group.
// Returns a new DataFrame with group keys and a "<column>_sum" column.
func (g *GroupBy) Sum(column string) (*DataFrame, error) {
	return g.aggFloat64(column, "_sum", func(sum float64, n int64) float64 {
		return sum
	})
}

// Mean computes the mean of the specified Float64 column for each group.
// Returns a new DataFrame with group keys and a "<column>_mean" column.
func (g *GroupBy) Mean(column string) (*DataFrame, error) {
	return g.aggFloat64(column, "_mean", func(sum float64, n int64) float64 {
		if n == 0 {
			return 0
		}
		return sum / float64(n)
	})
}

func (g *GroupBy) aggFloat64(column, suffix string, finalize func(sum float64, n int64) float64) (*DataFrame, error) {
	valCol := g.df.ColumnByName(column)
	if valCol == nil {
		return nil, fmt.Errorf("column '%s' not found", column)
	}
	if valCol.DType() != Float64 {
		return nil, fmt.Errorf("aggregation column '%s' must be Float64, got %s", column, valCol.DType())
	}

	groupOf, firstRow, err := g.groupKeys()
	if err != nil {
		return nil, err
	}

	sums := make([]float64, len(firstRow))
	counts := make([]int64, len(firstRow))
	data := valCol.Float64()
	for i, id := range groupOf {
		if id < 0 || !valCol.IsValid(i) {
			continue
		}
		sums[id] += data[i]
		counts[id]++
	}

	out := make([]float64, len(firstRow))
	for id := range out {
		out[id] = finalize(sums[id], counts[id])
	}

	keySeries := g.df.ColumnByName(g.byColumns[0]).gather(firstRow)
	return NewDataFrame(keySeries, NewSeriesFloat64(column+suffix, out))
}
