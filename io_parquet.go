package caravel

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// ParquetReadOptions configures Parquet reading behavior
type ParquetReadOptions struct {
	Columns []string // Only read these columns (nil = all)
	MaxRows int      // Max rows to read (0 = unlimited)
}

// ReadParquet reads a Parquet file into a DataFrame
func ReadParquet(path string, opts ...ParquetReadOptions) (*DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return ReadParquetFromReader(f, stat.Size(), opts...)
}

// colBuilder accumulates values while reading parquet columns
type colBuilder struct {
	dtype    DType
	f64Data  []float64
	i64Data  []int64
	boolData []bool
	strData  []string
	valid    []bool
	hasNulls bool
}

func (b *colBuilder) appendNull() {
	b.hasNulls = true
	switch b.dtype {
	case Float64:
		b.f64Data = append(b.f64Data, 0)
	case Int64:
		b.i64Data = append(b.i64Data, 0)
	case Bool:
		b.boolData = append(b.boolData, false)
	case String:
		b.strData = append(b.strData, "")
	}
	b.valid = append(b.valid, false)
}

func (b *colBuilder) append(val parquet.Value) {
	if val.IsNull() {
		b.appendNull()
		return
	}
	switch b.dtype {
	case Float64:
		b.f64Data = append(b.f64Data, val.Double())
	case Int64:
		b.i64Data = append(b.i64Data, val.Int64())
	case Bool:
		b.boolData = append(b.boolData, val.Boolean())
	case String:
		b.strData = append(b.strData, string(val.ByteArray()))
	}
	b.valid = append(b.valid, true)
}

func (b *colBuilder) build(name string) *Series {
	var valid []bool
	if b.hasNulls {
		valid = b.valid
	}
	switch b.dtype {
	case Float64:
		return NewSeriesFloat64WithNulls(name, b.f64Data, valid)
	case Int64:
		return NewSeriesInt64WithNulls(name, b.i64Data, valid)
	case Bool:
		return NewSeriesBool(name, b.boolData)
	default:
		return NewSeriesStringWithNulls(name, b.strData, valid)
	}
}

// ReadParquetFromReader reads Parquet data from an io.ReaderAt into a DataFrame
func ReadParquetFromReader(r io.ReaderAt, size int64, opts ...ParquetReadOptions) (*DataFrame, error) {
	opt := ParquetReadOptions{}
	if len(opts) > 0 {
		opt = opts[0]
	}

	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	schema := pf.Schema()

	var colNames []string
	if len(opt.Columns) > 0 {
		colNames = opt.Columns
	} else {
		fields := schema.Fields()
		colNames = make([]string, len(fields))
		for i, f := range fields {
			colNames[i] = f.Name()
		}
	}

	colIndexMap := make(map[string]int)
	for i, col := range schema.Columns() {
		if len(col) > 0 {
			colIndexMap[col[0]] = i
		}
	}

	builders := make([]colBuilder, len(colNames))
	colIndices := make([]int, len(colNames))
	for i, name := range colNames {
		idx, ok := colIndexMap[name]
		if !ok {
			return nil, fmt.Errorf("column '%s' not found in parquet file", name)
		}
		colIndices[i] = idx
		builders[i].dtype = parquetFieldDType(schema, name)
	}

	rowCount := 0
	for _, rg := range pf.RowGroups() {
		if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
			break
		}

		rows := rg.Rows()
		rowBuf := make([]parquet.Row, 1000)
		for {
			n, err := rows.ReadRows(rowBuf)
			if err != nil && err != io.EOF {
				rows.Close()
				return nil, fmt.Errorf("failed to read rows: %w", err)
			}
			if n == 0 {
				break
			}

			for _, row := range rowBuf[:n] {
				if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
					break
				}
				for i, colIdx := range colIndices {
					if colIdx < len(row) {
						builders[i].append(row[colIdx])
					} else {
						builders[i].appendNull()
					}
				}
				rowCount++
			}

			if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
				break
			}
		}
		rows.Close()
	}

	columns := make([]*Series, len(colNames))
	for i, name := range colNames {
		columns[i] = builders[i].build(name)
	}

	return NewDataFrame(columns...)
}

func parquetFieldDType(schema *parquet.Schema, name string) DType {
	for _, col := range schema.Fields() {
		if col.Name() != name {
			continue
		}
		t := col.Type()
		if t == nil {
			return String
		}
		switch t.Kind() {
		case parquet.Boolean:
			return Bool
		case parquet.Int32, parquet.Int64:
			return Int64
		case parquet.Float, parquet.Double:
			return Float64
		default:
			return String
		}
	}
	return String
}

// ParquetWriteOptions configures Parquet writing behavior
type ParquetWriteOptions struct {
	Compression string // "snappy", "gzip", "zstd", "none" (default "snappy")
}

// DefaultParquetWriteOptions returns default Parquet writing options
func DefaultParquetWriteOptions() ParquetWriteOptions {
	return ParquetWriteOptions{Compression: "snappy"}
}

// WriteParquet writes a DataFrame to a Parquet file
func (df *DataFrame) WriteParquet(path string, opts ...ParquetWriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return df.WriteParquetToWriter(f, opts...)
}

// WriteParquetToWriter writes a DataFrame to an io.Writer
func (df *DataFrame) WriteParquetToWriter(w io.Writer, opts ...ParquetWriteOptions) error {
	opt := DefaultParquetWriteOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	if df.Width() == 0 || df.Height() == 0 {
		return nil
	}

	group := make(parquet.Group)
	for _, col := range df.columns {
		group[col.Name()] = dtypeToParquetNode(col.DType())
	}
	schema := parquet.NewSchema("dataframe", group)

	writerOpts := []parquet.WriterOption{schema}
	switch opt.Compression {
	case "snappy":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Snappy))
	case "gzip":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Gzip))
	case "zstd":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Zstd))
	}

	pw := parquet.NewWriter(w, writerOpts...)
	defer pw.Close()

	// Group fields come back sorted by name, so row values follow the
	// schema's column order rather than the frame's
	fields := schema.Fields()
	ordered := make([]*Series, len(fields))
	for i, f := range fields {
		ordered[i] = df.ColumnByName(f.Name())
	}

	height := df.Height()
	width := df.Width()
	batchSize := 1000

	rows := make([]parquet.Row, 0, batchSize)
	for i := 0; i < height; i++ {
		row := make(parquet.Row, width)
		for j, col := range ordered {
			row[j] = toParquetValue(col.Get(i), col.DType())
		}
		rows = append(rows, row)

		if len(rows) >= batchSize {
			if _, err := pw.WriteRows(rows); err != nil {
				return fmt.Errorf("failed to write rows at %d: %w", i-len(rows)+1, err)
			}
			rows = rows[:0]
		}
	}

	if len(rows) > 0 {
		if _, err := pw.WriteRows(rows); err != nil {
			return fmt.Errorf("failed to write final rows: %w", err)
		}
	}

	return pw.Close()
}

func dtypeToParquetNode(dtype DType) parquet.Node {
	switch dtype {
	case Float64:
		return parquet.Leaf(parquet.DoubleType)
	case Int64:
		return parquet.Leaf(parquet.Int64Type)
	case Bool:
		return parquet.Leaf(parquet.BooleanType)
	default:
		return parquet.Leaf(parquet.ByteArrayType)
	}
}

func toParquetValue(v interface{}, dtype DType) parquet.Value {
	if v == nil {
		return parquet.NullValue()
	}

	switch dtype {
	case Float64:
		if f, ok := v.(float64); ok {
			return parquet.DoubleValue(f)
		}
	case Int64:
		if i, ok := v.(int64); ok {
			return parquet.Int64Value(i)
		}
	case Bool:
		if b, ok := v.(bool); ok {
			return parquet.BooleanValue(b)
		}
	case String:
		if s, ok := v.(string); ok {
			return parquet.ByteArrayValue([]byte(s))
		}
	}

	return parquet.ByteArrayValue([]byte(fmt.Sprintf("%v", v)))
}
