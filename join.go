package caravel

import (
	"fmt"
	"strconv"
	"sync"
)

// JoinType represents the type of join operation
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
)

// JoinOptions configures join behavior
type JoinOptions struct {
	on      []string // Columns to join on (same name in both DataFrames)
	leftOn  []string // Left DataFrame join columns
	rightOn []string // Right DataFrame join columns
	suffix  string   // Suffix for duplicate column names (default "_right")
	how     JoinType
}

// On creates join options for joining on columns with the same name
func On(columns ...string) JoinOptions {
	return JoinOptions{
		on:     columns,
		suffix: "_right",
		how:    InnerJoin,
	}
}

// LeftOn creates join options with different column names for left and right
func LeftOn(columns ...string) JoinOptions {
	return JoinOptions{
		leftOn: columns,
		suffix: "_right",
		how:    InnerJoin,
	}
}

// RightOn specifies right DataFrame columns for the join
func (o JoinOptions) RightOn(columns ...string) JoinOptions {
	o.rightOn = columns
	return o
}

// WithSuffix sets the suffix for duplicate column names
func (o JoinOptions) WithSuffix(suffix string) JoinOptions {
	o.suffix = suffix
	return o
}

// Join performs an inner join with another DataFrame.
// Only rows whose keys exist in both frames appear in the result.
func (df *DataFrame) Join(other *DataFrame, opts JoinOptions) (*DataFrame, error) {
	opts.how = InnerJoin
	return df.joinWith(other, opts)
}

// LeftJoin performs a left join with another DataFrame.
// Unmatched left rows keep null values for right columns.
func (df *DataFrame) LeftJoin(other *DataFrame, opts JoinOptions) (*DataFrame, error) {
	opts.how = LeftJoin
	return df.joinWith(other, opts)
}

func (df *DataFrame) joinWith(other *DataFrame, opts JoinOptions) (*DataFrame, error) {
	leftCols, rightCols, err := resolveJoinColumns(df, other, opts)
	if err != nil {
		return nil, err
	}

	outputCols, mapping := resolveOutputColumns(df, other, leftCols, rightCols, opts.suffix)

	leftKeyCols := make([]*Series, len(leftCols))
	for i, name := range leftCols {
		leftKeyCols[i] = df.ColumnByName(name)
	}
	rightKeyCols := make([]*Series, len(rightCols))
	for i, name := range rightCols {
		rightKeyCols[i] = other.ColumnByName(name)
	}

	rightIndex := buildHashIndex(other, rightKeyCols)

	switch opts.how {
	case InnerJoin:
		return performInnerJoin(df, other, leftKeyCols, rightKeyCols, rightIndex, outputCols, mapping)
	case LeftJoin:
		return performLeftJoin(df, other, leftKeyCols, rightKeyCols, rightIndex, outputCols, mapping)
	default:
		return nil, fmt.Errorf("unknown join type: %d", opts.how)
	}
}

func resolveJoinColumns(left, right *DataFrame, opts JoinOptions) ([]string, []string, error) {
	var leftCols, rightCols []string

	switch {
	case len(opts.on) > 0:
		for _, col := range opts.on {
			if left.ColumnByName(col) == nil {
				return nil, nil, fmt.Errorf("column '%s' not found in left DataFrame", col)
			}
			if right.ColumnByName(col) == nil {
				return nil, nil, fmt.Errorf("column '%s' not found in right DataFrame", col)
			}
		}
		leftCols = opts.on
		rightCols = opts.on

	case len(opts.leftOn) > 0 && len(opts.rightOn) > 0:
		if len(opts.leftOn) != len(opts.rightOn) {
			return nil, nil, fmt.Errorf("leftOn and rightOn must have same length")
		}
		for _, col := range opts.leftOn {
			if left.ColumnByName(col) == nil {
				return nil, nil, fmt.Errorf("column '%s' not found in left DataFrame", col)
			}
		}
		for _, col := range opts.rightOn {
			if right.ColumnByName(col) == nil {
				return nil, nil, fmt.Errorf("column '%s' not found in right DataFrame", col)
			}
		}
		leftCols = opts.leftOn
		rightCols = opts.rightOn

	default:
		return nil, nil, fmt.Errorf("must specify On or both LeftOn and RightOn")
	}

	for i := range leftCols {
		lt := left.ColumnByName(leftCols[i]).DType()
		rt := right.ColumnByName(rightCols[i]).DType()
		if lt != rt {
			return nil, nil, fmt.Errorf("join key dtype mismatch: left '%s' is %s, right '%s' is %s",
				leftCols[i], lt, rightCols[i], rt)
		}
	}

	return leftCols, rightCols, nil
}

// hashIndex maps key hashes to row indices
type hashIndex struct {
	index map[uint64][]int
}

func buildHashIndex(df *DataFrame, keyCols []*Series) *hashIndex {
	idx := &hashIndex{index: make(map[uint64][]int)}

	height := df.Height()
	if height == 0 {
		return idx
	}

	hashes := computeJoinKeyHashes(keyCols, height)

	if globalConfig.shouldParallelize(height) {
		phi := NewPartitionedHashIndex(0)
		phi.BuildParallel(hashes)
		for p := 0; p < phi.numParts; p++ {
			for hash, rows := range phi.partitions[p] {
				idx.index[hash] = rows
			}
		}
		return idx
	}

	for rowIdx := 0; rowIdx < height; rowIdx++ {
		hash := hashes[rowIdx]
		idx.index[hash] = append(idx.index[hash], rowIdx)
	}
	return idx
}

// computeJoinKeyHashes computes one hash per row over the key columns
func computeJoinKeyHashes(cols []*Series, height int) []uint64 {
	if len(cols) == 0 || height == 0 {
		return nil
	}

	hashes := make([]uint64, height)
	hashColumn(cols[0], hashes)

	if len(cols) > 1 {
		tempHashes := make([]uint64, height)
		for i := 1; i < len(cols); i++ {
			hashColumn(cols[i], tempHashes)
			for j := range hashes {
				hashes[j] = combineHash(hashes[j], tempHashes[j])
			}
		}
	}
	return hashes
}

func combineHash(a, b uint64) uint64 {
	// boost-style hash combine
	return a ^ (b + 0x9e3779b97f4a7c15 + (a << 6) + (a >> 2))
}

func hashColumn(col *Series, outHashes []uint64) {
	switch col.DType() {
	case Int64:
		for i, v := range col.Int64() {
			outHashes[i] = fnvHashUint64(uint64(v))
		}
	case Float64:
		for i, v := range col.Float64() {
			outHashes[i] = fnvHashString(strconv.FormatFloat(v, 'g', -1, 64))
		}
	case String:
		for i, v := range col.Strings() {
			outHashes[i] = fnvHashString(v)
		}
	case Bool:
		for i, v := range col.Bool() {
			if v {
				outHashes[i] = 1
			} else {
				outHashes[i] = 0
			}
		}
	}
}

// fnvHashString computes an FNV-1a hash for a string
func fnvHashString(s string) uint64 {
	const fnvOffset = uint64(0xcbf29ce484222325)
	const fnvPrime = uint64(0x100000001b3)

	h := fnvOffset
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime
	}
	return h
}

// fnvHashUint64 computes an FNV-1a hash over the 8 bytes of v
func fnvHashUint64(v uint64) uint64 {
	const fnvOffset = uint64(0xcbf29ce484222325)
	const fnvPrime = uint64(0x100000001b3)

	h := fnvOffset
	for i := 0; i < 8; i++ {
		h ^= (v >> (8 * i)) & 0xff
		h *= fnvPrime
	}
	return h
}

// colMapping tracks how to build output columns
type colMapping struct {
	fromLeft bool
	srcCol   int
}

func resolveOutputColumns(left, right *DataFrame, leftKeys, rightKeys []string, suffix string) ([]string, []colMapping) {
	var outputCols []string
	var mapping []colMapping

	leftColSet := make(map[string]bool)
	for _, name := range left.Columns() {
		leftColSet[name] = true
	}

	for i, name := range left.Columns() {
		outputCols = append(outputCols, name)
		mapping = append(mapping, colMapping{fromLeft: true, srcCol: i})
	}

	for i, name := range right.Columns() {
		// Skip right join keys that share a name with the left key: the
		// left copy already carries the value.
		skip := false
		for j, rk := range rightKeys {
			if name == rk && leftKeys[j] == rk {
				skip = true
				break
			}
		}
		if skip {
			continue
		}

		outputName := name
		if leftColSet[name] {
			outputName = name + suffix
		}
		outputCols = append(outputCols, outputName)
		mapping = append(mapping, colMapping{fromLeft: false, srcCol: i})
	}

	return outputCols, mapping
}

// JoinMatch represents a matching pair of row indices
type JoinMatch struct {
	LeftIdx  int
	RightIdx int
}

func performInnerJoin(left, right *DataFrame, leftKeyCols, rightKeyCols []*Series, rightIndex *hashIndex, outputCols []string, mapping []colMapping) (*DataFrame, error) {
	leftHeight := left.Height()
	leftHashes := computeJoinKeyHashes(leftKeyCols, leftHeight)

	if globalConfig.shouldParallelize(leftHeight) {
		matches := collectMatchesParallel(leftHeight, leftHashes, func(leftRow int, out []JoinMatch) []JoinMatch {
			if rightRows, ok := rightIndex.index[leftHashes[leftRow]]; ok {
				for _, rightRow := range rightRows {
					if keysMatch(leftKeyCols, leftRow, rightKeyCols, rightRow) {
						out = append(out, JoinMatch{leftRow, rightRow})
					}
				}
			}
			return out
		})
		return buildJoinResult(left, right, outputCols, mapping, matches)
	}

	var matches []JoinMatch
	for leftRow := 0; leftRow < leftHeight; leftRow++ {
		if rightRows, ok := rightIndex.index[leftHashes[leftRow]]; ok {
			for _, rightRow := range rightRows {
				if keysMatch(leftKeyCols, leftRow, rightKeyCols, rightRow) {
					matches = append(matches, JoinMatch{leftRow, rightRow})
				}
			}
		}
	}
	return buildJoinResult(left, right, outputCols, mapping, matches)
}

func performLeftJoin(left, right *DataFrame, leftKeyCols, rightKeyCols []*Series, rightIndex *hashIndex, outputCols []string, mapping []colMapping) (*DataFrame, error) {
	leftHeight := left.Height()
	leftHashes := computeJoinKeyHashes(leftKeyCols, leftHeight)

	collect := func(leftRow int, out []JoinMatch) []JoinMatch {
		matched := false
		if rightRows, ok := rightIndex.index[leftHashes[leftRow]]; ok {
			for _, rightRow := range rightRows {
				if keysMatch(leftKeyCols, leftRow, rightKeyCols, rightRow) {
					out = append(out, JoinMatch{leftRow, rightRow})
					matched = true
				}
			}
		}
		if !matched {
			out = append(out, JoinMatch{leftRow, -1})
		}
		return out
	}

	if globalConfig.shouldParallelize(leftHeight) {
		matches := collectMatchesParallel(leftHeight, leftHashes, collect)
		return buildJoinResult(left, right, outputCols, mapping, matches)
	}

	var matches []JoinMatch
	for leftRow := 0; leftRow < leftHeight; leftRow++ {
		matches = collect(leftRow, matches)
	}
	return buildJoinResult(left, right, outputCols, mapping, matches)
}

// collectMatchesParallel probes left rows with morsel-based work-stealing.
// Worker results are concatenated in worker claim order, then left-index
// order is restored by the stable ordering of morsel claims.
func collectMatchesParallel(leftHeight int, leftHashes []uint64, probe func(leftRow int, out []JoinMatch) []JoinMatch) []JoinMatch {
	cfg := globalConfig
	numWorkers := cfg.numWorkers()
	morselIter := NewMorselIterator(leftHeight, cfg.MorselSize)

	type morselResult struct {
		start   int
		matches []JoinMatch
	}

	resultsCh := make(chan morselResult, numWorkers)
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				morsel := morselIter.Next()
				if morsel == nil {
					return
				}
				var matches []JoinMatch
				for leftRow := morsel.Start; leftRow < morsel.End; leftRow++ {
					matches = probe(leftRow, matches)
				}
				resultsCh <- morselResult{start: morsel.Start, matches: matches}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	var results []morselResult
	for r := range resultsCh {
		results = append(results, r)
	}

	// Keep output in left row order
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].start < results[j-1].start; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}

	var matches []JoinMatch
	for _, r := range results {
		matches = append(matches, r.matches...)
	}
	return matches
}

func keysMatch(leftCols []*Series, leftRow int, rightCols []*Series, rightRow int) bool {
	for i := range leftCols {
		if !valuesEqual(leftCols[i], leftRow, rightCols[i], rightRow) {
			return false
		}
	}
	return true
}

// valuesEqual compares key values at specific rows without boxing.
// Key dtypes are validated up front in resolveJoinColumns.
func valuesEqual(left *Series, leftRow int, right *Series, rightRow int) bool {
	if !left.IsValid(leftRow) || !right.IsValid(rightRow) {
		return false
	}

	switch left.DType() {
	case Float64:
		return left.Float64()[leftRow] == right.Float64()[rightRow]
	case Int64:
		return left.Int64()[leftRow] == right.Int64()[rightRow]
	case String:
		return left.Strings()[leftRow] == right.Strings()[rightRow]
	case Bool:
		return left.Bool()[leftRow] == right.Bool()[rightRow]
	default:
		return false
	}
}

func buildJoinResult(left, right *DataFrame, outputCols []string, mapping []colMapping, matches []JoinMatch) (*DataFrame, error) {
	leftIndices := make([]int, len(matches))
	rightIndices := make([]int, len(matches))
	for i, m := range matches {
		leftIndices[i] = m.LeftIdx
		rightIndices[i] = m.RightIdx
	}

	resultCols := ParallelBuildColumns(len(outputCols), func(colIdx int) *Series {
		m := mapping[colIdx]
		if m.fromLeft {
			return left.Column(m.srcCol).gather(leftIndices).Rename(outputCols[colIdx])
		}
		return right.Column(m.srcCol).gather(rightIndices).Rename(outputCols[colIdx])
	})

	return NewDataFrame(resultCols...)
}
