package caravel

import "fmt"

// DType represents the data type of a Series
type DType uint8

const (
	Float64 DType = iota
	Int64
	String
	Bool
)

// String returns the string representation of the DType
func (d DType) String() string {
	switch d {
	case Float64:
		return "Float64"
	case Int64:
		return "Int64"
	case String:
		return "String"
	case Bool:
		return "Bool"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(d))
	}
}

// IsNumeric returns true for numeric data types
func (d DType) IsNumeric() bool {
	return d == Float64 || d == Int64
}
