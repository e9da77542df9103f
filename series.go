package caravel

import (
	"fmt"
	"math"
	"sort"
)

// Series is a named column of values with a single data type.
// A nil validity mask means every value is valid.
type Series struct {
	name  string
	dtype DType

	f64Data  []float64
	i64Data  []int64
	strData  []string
	boolData []bool

	valid []bool
}

// NewSeriesFloat64 creates a Series from a slice of float64 values
func NewSeriesFloat64(name string, data []float64) *Series {
	return &Series{name: name, dtype: Float64, f64Data: data}
}

// NewSeriesInt64 creates a Series from a slice of int64 values
func NewSeriesInt64(name string, data []int64) *Series {
	return &Series{name: name, dtype: Int64, i64Data: data}
}

// NewSeriesString creates a Series from a slice of string values
func NewSeriesString(name string, data []string) *Series {
	return &Series{name: name, dtype: String, strData: data}
}

// NewSeriesBool creates a Series from a slice of bool values
func NewSeriesBool(name string, data []bool) *Series {
	return &Series{name: name, dtype: Bool, boolData: data}
}

// NewSeriesFloat64WithNulls creates a float64 Series with a validity mask.
// valid[i] == false marks row i as null. The mask length must match the data.
func NewSeriesFloat64WithNulls(name string, data []float64, valid []bool) *Series {
	if valid != nil && len(valid) != len(data) {
		return nil
	}
	return &Series{name: name, dtype: Float64, f64Data: data, valid: valid}
}

// NewSeriesInt64WithNulls creates an int64 Series with a validity mask.
func NewSeriesInt64WithNulls(name string, data []int64, valid []bool) *Series {
	if valid != nil && len(valid) != len(data) {
		return nil
	}
	return &Series{name: name, dtype: Int64, i64Data: data, valid: valid}
}

// NewSeriesStringWithNulls creates a string Series with a validity mask.
func NewSeriesStringWithNulls(name string, data []string, valid []bool) *Series {
	if valid != nil && len(valid) != len(data) {
		return nil
	}
	return &Series{name: name, dtype: String, strData: data, valid: valid}
}

// concat appends other's values to s, producing a new Series.
// The dtypes must match.
func (s *Series) concat(other *Series) *Series {
	out := &Series{name: s.name, dtype: s.dtype}
	switch s.dtype {
	case Float64:
		out.f64Data = append(append([]float64{}, s.f64Data...), other.f64Data...)
	case Int64:
		out.i64Data = append(append([]int64{}, s.i64Data...), other.i64Data...)
	case String:
		out.strData = append(append([]string{}, s.strData...), other.strData...)
	case Bool:
		out.boolData = append(append([]bool{}, s.boolData...), other.boolData...)
	}
	if s.valid != nil || other.valid != nil {
		valid := make([]bool, s.Len()+other.Len())
		for i := 0; i < s.Len(); i++ {
			valid[i] = s.IsValid(i)
		}
		for i := 0; i < other.Len(); i++ {
			valid[s.Len()+i] = other.IsValid(i)
		}
		out.valid = valid
	}
	return out
}

// Name returns the name of the Series
func (s *Series) Name() string {
	return s.name
}

// DType returns the data type of the Series
func (s *Series) DType() DType {
	return s.dtype
}

// Len returns the number of elements in the Series
func (s *Series) Len() int {
	switch s.dtype {
	case Float64:
		return len(s.f64Data)
	case Int64:
		return len(s.i64Data)
	case String:
		return len(s.strData)
	case Bool:
		return len(s.boolData)
	default:
		return 0
	}
}

// IsValid returns true if the value at index is not null
func (s *Series) IsValid(index int) bool {
	if s.valid == nil {
		return true
	}
	if index < 0 || index >= len(s.valid) {
		return false
	}
	return s.valid[index]
}

// HasNulls returns true if the Series contains any null values
func (s *Series) HasNulls() bool {
	for _, v := range s.valid {
		if !v {
			return true
		}
	}
	return false
}

// NullCount returns the number of null values
func (s *Series) NullCount() int {
	count := 0
	for _, v := range s.valid {
		if !v {
			count++
		}
	}
	return count
}

// Get returns the value at the given index, or nil for null values.
func (s *Series) Get(index int) interface{} {
	if index < 0 || index >= s.Len() {
		return nil
	}
	if !s.IsValid(index) {
		return nil
	}
	switch s.dtype {
	case Float64:
		return s.f64Data[index]
	case Int64:
		return s.i64Data[index]
	case String:
		return s.strData[index]
	case Bool:
		return s.boolData[index]
	default:
		return nil
	}
}

// Float64 returns the raw float64 backing slice (valid for Float64 dtype)
func (s *Series) Float64() []float64 {
	return s.f64Data
}

// Int64 returns the raw int64 backing slice (valid for Int64 dtype)
func (s *Series) Int64() []int64 {
	return s.i64Data
}

// Strings returns the raw string backing slice (valid for String dtype)
func (s *Series) Strings() []string {
	return s.strData
}

// Bool returns the raw bool backing slice (valid for Bool dtype)
func (s *Series) Bool() []bool {
	return s.boolData
}

// GetFloat64 returns the float64 value at index and whether it is valid
func (s *Series) GetFloat64(index int) (float64, bool) {
	if s.dtype != Float64 || index < 0 || index >= len(s.f64Data) {
		return 0, false
	}
	return s.f64Data[index], s.IsValid(index)
}

// GetInt64 returns the int64 value at index and whether it is valid
func (s *Series) GetInt64(index int) (int64, bool) {
	if s.dtype != Int64 || index < 0 || index >= len(s.i64Data) {
		return 0, false
	}
	return s.i64Data[index], s.IsValid(index)
}

// GetString returns the string value at index and whether it is valid
func (s *Series) GetString(index int) (string, bool) {
	if s.dtype != String || index < 0 || index >= len(s.strData) {
		return "", false
	}
	return s.strData[index], s.IsValid(index)
}

// Rename returns a copy of the Series with a new name.
// The backing data is shared, not copied.
func (s *Series) Rename(name string) *Series {
	clone := *s
	clone.name = name
	return &clone
}

// Slice returns a new Series with rows from start to end (exclusive)
func (s *Series) Slice(start, end int) *Series {
	n := s.Len()
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start >= end {
		start, end = 0, 0
	}

	result := &Series{name: s.name, dtype: s.dtype}
	switch s.dtype {
	case Float64:
		result.f64Data = s.f64Data[start:end]
	case Int64:
		result.i64Data = s.i64Data[start:end]
	case String:
		result.strData = s.strData[start:end]
	case Bool:
		result.boolData = s.boolData[start:end]
	}
	if s.valid != nil {
		result.valid = s.valid[start:end]
	}
	return result
}

// Head returns the first n elements
func (s *Series) Head(n int) *Series {
	return s.Slice(0, n)
}

// Tail returns the last n elements
func (s *Series) Tail(n int) *Series {
	return s.Slice(s.Len()-n, s.Len())
}

// Filter returns a new Series with elements where mask is true.
// The mask length must match the Series length.
func (s *Series) Filter(mask []bool) *Series {
	if len(mask) != s.Len() {
		return nil
	}

	count := 0
	for _, m := range mask {
		if m {
			count++
		}
	}

	result := &Series{name: s.name, dtype: s.dtype}
	if s.valid != nil {
		result.valid = make([]bool, 0, count)
	}

	appendRow := func(i int) {
		switch s.dtype {
		case Float64:
			result.f64Data = append(result.f64Data, s.f64Data[i])
		case Int64:
			result.i64Data = append(result.i64Data, s.i64Data[i])
		case String:
			result.strData = append(result.strData, s.strData[i])
		case Bool:
			result.boolData = append(result.boolData, s.boolData[i])
		}
		if s.valid != nil {
			result.valid = append(result.valid, s.valid[i])
		}
	}

	switch s.dtype {
	case Float64:
		result.f64Data = make([]float64, 0, count)
	case Int64:
		result.i64Data = make([]int64, 0, count)
	case String:
		result.strData = make([]string, 0, count)
	case Bool:
		result.boolData = make([]bool, 0, count)
	}

	for i, m := range mask {
		if m {
			appendRow(i)
		}
	}
	return result
}

// ============================================================================
// Comparison Masks
// ============================================================================

// GtInt64 returns a mask where true indicates value > threshold.
// Null rows compare false.
func (s *Series) GtInt64(threshold int64) []bool {
	mask := make([]bool, len(s.i64Data))
	for i, v := range s.i64Data {
		mask[i] = v > threshold && s.IsValid(i)
	}
	return mask
}

// GeInt64 returns a mask where true indicates value >= threshold
func (s *Series) GeInt64(threshold int64) []bool {
	mask := make([]bool, len(s.i64Data))
	for i, v := range s.i64Data {
		mask[i] = v >= threshold && s.IsValid(i)
	}
	return mask
}

// EqInt64 returns a mask where true indicates value == threshold
func (s *Series) EqInt64(value int64) []bool {
	mask := make([]bool, len(s.i64Data))
	for i, v := range s.i64Data {
		mask[i] = v == value && s.IsValid(i)
	}
	return mask
}

// GtFloat64 returns a mask where true indicates value > threshold
func (s *Series) GtFloat64(threshold float64) []bool {
	mask := make([]bool, len(s.f64Data))
	for i, v := range s.f64Data {
		mask[i] = v > threshold && s.IsValid(i)
	}
	return mask
}

// EqString returns a mask where true indicates value == target
func (s *Series) EqString(value string) []bool {
	mask := make([]bool, len(s.strData))
	for i, v := range s.strData {
		mask[i] = v == value && s.IsValid(i)
	}
	return mask
}

// CountMask returns the number of true values in a mask
func CountMask(mask []bool) int {
	count := 0
	for _, m := range mask {
		if m {
			count++
		}
	}
	return count
}

// ============================================================================
// Aggregations
// ============================================================================

// Sum returns the sum of valid values. Int64 series are summed as float64.
func (s *Series) Sum() float64 {
	sum := 0.0
	switch s.dtype {
	case Float64:
		for i, v := range s.f64Data {
			if s.IsValid(i) {
				sum += v
			}
		}
	case Int64:
		for i, v := range s.i64Data {
			if s.IsValid(i) {
				sum += float64(v)
			}
		}
	}
	return sum
}

// Mean returns the arithmetic mean of valid values, or NaN for an empty Series
func (s *Series) Mean() float64 {
	count := 0
	sum := 0.0
	switch s.dtype {
	case Float64:
		for i, v := range s.f64Data {
			if s.IsValid(i) {
				sum += v
				count++
			}
		}
	case Int64:
		for i, v := range s.i64Data {
			if s.IsValid(i) {
				sum += float64(v)
				count++
			}
		}
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// Min returns the minimum valid value, or NaN for an empty Series
func (s *Series) Min() float64 {
	min := math.NaN()
	visit := func(v float64) {
		if math.IsNaN(min) || v < min {
			min = v
		}
	}
	switch s.dtype {
	case Float64:
		for i, v := range s.f64Data {
			if s.IsValid(i) {
				visit(v)
			}
		}
	case Int64:
		for i, v := range s.i64Data {
			if s.IsValid(i) {
				visit(float64(v))
			}
		}
	}
	return min
}

// Max returns the maximum valid value, or NaN for an empty Series
func (s *Series) Max() float64 {
	max := math.NaN()
	visit := func(v float64) {
		if math.IsNaN(max) || v > max {
			max = v
		}
	}
	switch s.dtype {
	case Float64:
		for i, v := range s.f64Data {
			if s.IsValid(i) {
				visit(v)
			}
		}
	case Int64:
		for i, v := range s.i64Data {
			if s.IsValid(i) {
				visit(float64(v))
			}
		}
	}
	return max
}

// Argsort returns indices that would sort the Series.
// Null rows sort last regardless of direction.
func (s *Series) Argsort(ascending bool) []int {
	n := s.Len()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	less := func(a, b int) bool {
		av, bv := s.IsValid(a), s.IsValid(b)
		if av != bv {
			return av
		}
		var cmp int
		switch s.dtype {
		case Float64:
			cmp = compareFloat64(s.f64Data[a], s.f64Data[b])
		case Int64:
			cmp = compareInt64(s.i64Data[a], s.i64Data[b])
		case String:
			cmp = compareString(s.strData[a], s.strData[b])
		case Bool:
			cmp = compareBool(s.boolData[a], s.boolData[b])
		}
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	}

	// Stable so that ties keep their original row order.
	sort.SliceStable(indices, func(i, j int) bool {
		return less(indices[i], indices[j])
	})
	return indices
}

func compareFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case !a && b:
		return -1
	case a && !b:
		return 1
	default:
		return 0
	}
}

// gather builds a new Series by taking rows at the given indices.
// Index -1 produces a null row (used by left joins).
func (s *Series) gather(indices []int) *Series {
	n := len(indices)
	result := &Series{name: s.name, dtype: s.dtype}

	needValid := s.valid != nil
	for _, idx := range indices {
		if idx < 0 {
			needValid = true
			break
		}
	}
	if needValid {
		result.valid = make([]bool, n)
	}

	switch s.dtype {
	case Float64:
		result.f64Data = make([]float64, n)
		for i, idx := range indices {
			if idx >= 0 {
				result.f64Data[i] = s.f64Data[idx]
			}
		}
	case Int64:
		result.i64Data = make([]int64, n)
		for i, idx := range indices {
			if idx >= 0 {
				result.i64Data[i] = s.i64Data[idx]
			}
		}
	case String:
		result.strData = make([]string, n)
		for i, idx := range indices {
			if idx >= 0 {
				result.strData[i] = s.strData[idx]
			}
		}
	case Bool:
		result.boolData = make([]bool, n)
		for i, idx := range indices {
			if idx >= 0 {
				result.boolData[i] = s.boolData[idx]
			}
		}
	}

	if result.valid != nil {
		for i, idx := range indices {
			result.valid[i] = idx >= 0 && s.IsValid(idx)
		}
	}
	return result
}

// String returns a short representation for debugging
func (s *Series) String() string {
	return fmt.Sprintf("Series: '%s' (%s) length=%d", s.name, s.dtype, s.Len())
}
