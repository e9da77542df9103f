package caravel

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// CSVReadOptions configures CSV reading behavior
type CSVReadOptions struct {
	Delimiter   rune              // Field delimiter (default ',')
	HasHeader   bool              // First row is header (default true)
	ColumnNames []string          // Override column names
	ColumnTypes map[string]DType  // Force column types
	InferTypes  bool              // Auto-detect types (default true)
	NullValues  []string          // Strings to treat as null
	SkipRows    int               // Skip first N rows
	MaxRows     int               // Max rows to read (0 = unlimited)
	TrimSpace   bool              // Trim whitespace from values
	Comment     rune              // Comment character (skip lines starting with this)
	Encoding    encoding.Encoding // Source text encoding (nil = UTF-8)
}

// DefaultCSVReadOptions returns default CSV reading options
func DefaultCSVReadOptions() CSVReadOptions {
	return CSVReadOptions{
		Delimiter:  ',',
		HasHeader:  true,
		InferTypes: true,
		NullValues: []string{"", "null", "NULL", "NA", "N/A", "nan", "NaN"},
		TrimSpace:  true,
	}
}

// ReadCSV reads a CSV file into a DataFrame
func ReadCSV(path string, opts ...CSVReadOptions) (*DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ReadCSVFromReader(f, opts...)
}

// ReadCSVFromReader reads CSV data from an io.Reader into a DataFrame
func ReadCSVFromReader(r io.Reader, opts ...CSVReadOptions) (*DataFrame, error) {
	opt := DefaultCSVReadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	if opt.Encoding != nil {
		r = transform.NewReader(r, opt.Encoding.NewDecoder())
	}

	reader := csv.NewReader(r)
	reader.Comma = opt.Delimiter
	if opt.Comment != 0 {
		reader.Comment = opt.Comment
	}
	reader.TrimLeadingSpace = opt.TrimSpace
	reader.FieldsPerRecord = -1

	for i := 0; i < opt.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("failed to skip row %d: %w", i, err)
		}
	}

	var headers []string
	if opt.HasHeader {
		var err error
		headers, err = reader.Read()
		if err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
	} else if len(opt.ColumnNames) > 0 {
		headers = opt.ColumnNames
	}

	var records [][]string
	rowCount := 0
	for {
		if opt.MaxRows > 0 && rowCount >= opt.MaxRows {
			break
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", rowCount, err)
		}

		if headers == nil {
			headers = make([]string, len(record))
			for i := range record {
				headers[i] = fmt.Sprintf("column_%d", i)
			}
		}

		records = append(records, record)
		rowCount++
	}

	if len(records) == 0 {
		if len(headers) == 0 {
			return NewDataFrame()
		}
		columns := make([]*Series, len(headers))
		for i, name := range headers {
			columns[i] = NewSeriesString(name, nil)
		}
		return NewDataFrame(columns...)
	}

	colTypes := make([]DType, len(headers))
	cfg := globalConfig

	if opt.InferTypes {
		if cfg.shouldParallelize(len(records)) && len(headers) > 1 {
			var wg sync.WaitGroup
			for i := range headers {
				wg.Add(1)
				go func(colIdx int) {
					defer wg.Done()
					colTypes[colIdx] = inferColumnType(records, colIdx, opt.NullValues)
				}(i)
			}
			wg.Wait()
		} else {
			for i := range headers {
				colTypes[i] = inferColumnType(records, i, opt.NullValues)
			}
		}
	}

	for name, dtype := range opt.ColumnTypes {
		for i, h := range headers {
			if h == name {
				colTypes[i] = dtype
				break
			}
		}
	}

	columns := make([]*Series, len(headers))
	errors := make([]error, len(headers))

	if cfg.shouldParallelize(len(records)) && len(headers) > 1 {
		var wg sync.WaitGroup
		for i, name := range headers {
			wg.Add(1)
			go func(colIdx int, colName string) {
				defer wg.Done()
				columns[colIdx], errors[colIdx] = buildColumn(colName, colTypes[colIdx], records, colIdx, opt.NullValues)
			}(i, name)
		}
		wg.Wait()
	} else {
		for i, name := range headers {
			columns[i], errors[i] = buildColumn(name, colTypes[i], records, i, opt.NullValues)
		}
	}

	for i, err := range errors {
		if err != nil {
			return nil, fmt.Errorf("failed to build column '%s': %w", headers[i], err)
		}
	}

	return NewDataFrame(columns...)
}

func inferColumnType(records [][]string, colIdx int, nullValues []string) DType {
	hasInt := false
	hasFloat := false
	hasBool := false
	hasString := false

	for _, record := range records {
		if colIdx >= len(record) {
			continue
		}
		val := strings.TrimSpace(record[colIdx])

		if isNull(val, nullValues) {
			continue
		}

		lower := strings.ToLower(val)
		if lower == "true" || lower == "false" {
			hasBool = true
			continue
		}

		if _, err := strconv.ParseInt(val, 10, 64); err == nil {
			hasInt = true
			continue
		}

		if _, err := strconv.ParseFloat(val, 64); err == nil {
			hasFloat = true
			continue
		}

		hasString = true
	}

	// Priority: string > float > int > bool
	if hasString {
		return String
	}
	if hasFloat {
		return Float64
	}
	if hasInt {
		return Int64
	}
	if hasBool {
		return Bool
	}

	return String
}

func buildColumn(name string, dtype DType, records [][]string, colIdx int, nullValues []string) (*Series, error) {
	n := len(records)

	switch dtype {
	case Float64:
		data := make([]float64, n)
		valid := make([]bool, n)
		for i, record := range records {
			val := ""
			if colIdx < len(record) {
				val = strings.TrimSpace(record[colIdx])
			}
			if isNull(val, nullValues) {
				continue
			}
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: cannot parse '%s' as float64", i, val)
			}
			data[i] = f
			valid[i] = true
		}
		return NewSeriesFloat64WithNulls(name, data, valid), nil

	case Int64:
		data := make([]int64, n)
		valid := make([]bool, n)
		for i, record := range records {
			val := ""
			if colIdx < len(record) {
				val = strings.TrimSpace(record[colIdx])
			}
			if isNull(val, nullValues) {
				continue
			}
			v, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: cannot parse '%s' as int64", i, val)
			}
			data[i] = v
			valid[i] = true
		}
		return NewSeriesInt64WithNulls(name, data, valid), nil

	case Bool:
		data := make([]bool, n)
		for i, record := range records {
			if colIdx >= len(record) {
				continue
			}
			lower := strings.ToLower(strings.TrimSpace(record[colIdx]))
			data[i] = lower == "true" || lower == "1" || lower == "yes"
		}
		return NewSeriesBool(name, data), nil

	case String:
		data := make([]string, n)
		valid := make([]bool, n)
		for i, record := range records {
			val := ""
			if colIdx < len(record) {
				val = strings.TrimSpace(record[colIdx])
			}
			if isNull(val, nullValues) {
				continue
			}
			data[i] = val
			valid[i] = true
		}
		return NewSeriesStringWithNulls(name, data, valid), nil

	default:
		return nil, fmt.Errorf("unsupported dtype: %s", dtype)
	}
}

func isNull(val string, nullValues []string) bool {
	for _, nv := range nullValues {
		if val == nv {
			return true
		}
	}
	return false
}

// CSVWriteOptions configures CSV writing behavior
type CSVWriteOptions struct {
	Delimiter   rune   // Field delimiter (default ',')
	WriteHeader bool   // Write header row (default true)
	NullString  string // String to write for null values (default "")
}

// DefaultCSVWriteOptions returns default CSV writing options
func DefaultCSVWriteOptions() CSVWriteOptions {
	return CSVWriteOptions{
		Delimiter:   ',',
		WriteHeader: true,
		NullString:  "",
	}
}

// WriteCSV writes a DataFrame to a CSV file
func (df *DataFrame) WriteCSV(path string, opts ...CSVWriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	return df.WriteCSVToWriter(w, opts...)
}

// WriteCSVToWriter writes a DataFrame to an io.Writer
func (df *DataFrame) WriteCSVToWriter(w io.Writer, opts ...CSVWriteOptions) error {
	opt := DefaultCSVWriteOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	writer := csv.NewWriter(w)
	writer.Comma = opt.Delimiter

	if opt.WriteHeader {
		if err := writer.Write(df.Columns()); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	height := df.Height()
	width := df.Width()

	row := make([]string, width)
	for i := 0; i < height; i++ {
		for j, col := range df.columns {
			val := col.Get(i)
			if val == nil {
				row[j] = opt.NullString
			} else {
				row[j] = formatValue(val)
			}
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
