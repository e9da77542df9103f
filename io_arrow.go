package caravel

import (
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ToArrow exports a DataFrame to an Arrow Record.
// The caller is responsible for calling Release() on the returned Record.
func (df *DataFrame) ToArrow(mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	fields := make([]arrow.Field, df.Width())
	for i, col := range df.columns {
		arrowType, err := dtypeToArrowType(col.DType())
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name(), err)
		}
		fields[i] = arrow.Field{Name: col.Name(), Type: arrowType, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	arrays := make([]arrow.Array, df.Width())
	for i, col := range df.columns {
		arr, err := seriesToArrowArray(col, mem)
		if err != nil {
			for j := 0; j < i; j++ {
				arrays[j].Release()
			}
			return nil, fmt.Errorf("column %s: %w", col.Name(), err)
		}
		arrays[i] = arr
	}

	record := array.NewRecord(schema, arrays, int64(df.Height()))

	// Record retains the arrays
	for _, arr := range arrays {
		arr.Release()
	}

	return record, nil
}

func dtypeToArrowType(dtype DType) (arrow.DataType, error) {
	switch dtype {
	case Float64:
		return arrow.PrimitiveTypes.Float64, nil
	case Int64:
		return arrow.PrimitiveTypes.Int64, nil
	case Bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case String:
		return arrow.BinaryTypes.String, nil
	default:
		return nil, fmt.Errorf("unsupported dtype: %s", dtype)
	}
}

// validityMask returns per-row validity for the arrow builders,
// or nil when the series has no nulls.
func validityMask(s *Series) []bool {
	if !s.HasNulls() {
		return nil
	}
	valid := make([]bool, s.Len())
	for i := range valid {
		valid[i] = s.IsValid(i)
	}
	return valid
}

func seriesToArrowArray(s *Series, mem memory.Allocator) (arrow.Array, error) {
	switch s.DType() {
	case Float64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		builder.AppendValues(s.Float64(), validityMask(s))
		return builder.NewArray(), nil

	case Int64:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		builder.AppendValues(s.Int64(), validityMask(s))
		return builder.NewArray(), nil

	case Bool:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		builder.AppendValues(s.Bool(), validityMask(s))
		return builder.NewArray(), nil

	case String:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		builder.AppendValues(s.Strings(), validityMask(s))
		return builder.NewArray(), nil

	default:
		return nil, fmt.Errorf("unsupported dtype for Arrow export: %s", s.DType())
	}
}

// NewDataFrameFromArrow creates a DataFrame from an Arrow Record.
func NewDataFrameFromArrow(record arrow.Record) (*DataFrame, error) {
	if record == nil {
		return nil, fmt.Errorf("record is nil")
	}

	schema := record.Schema()
	numCols := int(record.NumCols())
	series := make([]*Series, numCols)

	for i := 0; i < numCols; i++ {
		field := schema.Field(i)
		col := record.Column(i)

		s, err := arrowArrayToSeries(field.Name, col)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", field.Name, err)
		}
		series[i] = s
	}

	return NewDataFrame(series...)
}

func arrowArrayToSeries(name string, arr arrow.Array) (*Series, error) {
	switch a := arr.(type) {
	case *array.Float64:
		data := make([]float64, a.Len())
		valid := make([]bool, a.Len())
		for i := 0; i < a.Len(); i++ {
			data[i] = a.Value(i)
			valid[i] = a.IsValid(i)
		}
		if a.NullN() == 0 {
			return NewSeriesFloat64(name, data), nil
		}
		return NewSeriesFloat64WithNulls(name, data, valid), nil

	case *array.Int64:
		data := make([]int64, a.Len())
		valid := make([]bool, a.Len())
		for i := 0; i < a.Len(); i++ {
			data[i] = a.Value(i)
			valid[i] = a.IsValid(i)
		}
		if a.NullN() == 0 {
			return NewSeriesInt64(name, data), nil
		}
		return NewSeriesInt64WithNulls(name, data, valid), nil

	case *array.Boolean:
		data := make([]bool, a.Len())
		for i := 0; i < a.Len(); i++ {
			data[i] = a.Value(i)
		}
		return NewSeriesBool(name, data), nil

	case *array.String:
		data := make([]string, a.Len())
		valid := make([]bool, a.Len())
		for i := 0; i < a.Len(); i++ {
			data[i] = a.Value(i)
			valid[i] = a.IsValid(i)
		}
		if a.NullN() == 0 {
			return NewSeriesString(name, data), nil
		}
		return NewSeriesStringWithNulls(name, data, valid), nil

	default:
		return nil, fmt.Errorf("unsupported Arrow array type: %T", arr)
	}
}

// WriteIPC writes a DataFrame to an Arrow IPC stream file
func (df *DataFrame) WriteIPC(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return df.WriteIPCToWriter(f)
}

// WriteIPCToWriter writes a DataFrame as an Arrow IPC stream
func (df *DataFrame) WriteIPCToWriter(w io.Writer) error {
	record, err := df.ToArrow(memory.DefaultAllocator)
	if err != nil {
		return err
	}
	defer record.Release()

	writer := ipc.NewWriter(w, ipc.WithSchema(record.Schema()))
	if err := writer.Write(record); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write record: %w", err)
	}
	return writer.Close()
}

// ReadIPC reads a DataFrame from an Arrow IPC stream file
func ReadIPC(path string) (*DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ReadIPCFromReader(f)
}

// ReadIPCFromReader reads a DataFrame from an Arrow IPC stream.
// Multiple records in the stream are concatenated row-wise.
func ReadIPCFromReader(r io.Reader) (*DataFrame, error) {
	reader, err := ipc.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open IPC stream: %w", err)
	}
	defer reader.Release()

	var result *DataFrame
	for reader.Next() {
		df, err := NewDataFrameFromArrow(reader.Record())
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = df
		} else {
			result, err = result.VStack(df)
			if err != nil {
				return nil, err
			}
		}
	}
	if err := reader.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read IPC stream: %w", err)
	}
	if result == nil {
		return NewDataFrame()
	}
	return result, nil
}
