package caravel

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// JSONFormat specifies the JSON layout
type JSONFormat int

const (
	// JSONRecords is an array of row objects: [{"a":1,"b":2}, {"a":3,"b":4}]
	JSONRecords JSONFormat = iota
	// JSONColumns is an object of column arrays: {"a":[1,3],"b":[2,4]}
	JSONColumns
)

// JSONReadOptions configures JSON reading behavior
type JSONReadOptions struct {
	Format      JSONFormat       // Expected layout
	ColumnTypes map[string]DType // Force column types
}

// DefaultJSONReadOptions returns default JSON reading options
func DefaultJSONReadOptions() JSONReadOptions {
	return JSONReadOptions{Format: JSONRecords}
}

// ReadJSON reads a JSON file into a DataFrame
func ReadJSON(path string, opts ...JSONReadOptions) (*DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ReadJSONFromReader(f, opts...)
}

// ReadJSONFromReader reads JSON data from an io.Reader into a DataFrame
func ReadJSONFromReader(r io.Reader, opts ...JSONReadOptions) (*DataFrame, error) {
	opt := DefaultJSONReadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	if opt.Format != JSONRecords {
		return nil, fmt.Errorf("unsupported JSON read format: %d", opt.Format)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if len(records) == 0 {
		return NewDataFrame()
	}

	// Columns keep first-seen order across records
	var colNames []string
	colSet := make(map[string]bool)
	for _, record := range records {
		for key := range record {
			if !colSet[key] {
				colNames = append(colNames, key)
				colSet[key] = true
			}
		}
	}

	columns := make([]*Series, len(colNames))
	for i, name := range colNames {
		dtype, ok := opt.ColumnTypes[name]
		if !ok {
			dtype = inferJSONType(records, name)
		}
		col, err := buildJSONColumn(name, dtype, records)
		if err != nil {
			return nil, fmt.Errorf("failed to build column '%s': %w", name, err)
		}
		columns[i] = col
	}

	return NewDataFrame(columns...)
}

func inferJSONType(records []map[string]interface{}, name string) DType {
	for _, record := range records {
		val, ok := record[name]
		if !ok || val == nil {
			continue
		}
		switch v := val.(type) {
		case bool:
			return Bool
		case float64:
			if v == float64(int64(v)) {
				return Int64
			}
			return Float64
		default:
			return String
		}
	}
	return String
}

func buildJSONColumn(name string, dtype DType, records []map[string]interface{}) (*Series, error) {
	n := len(records)

	switch dtype {
	case Float64:
		data := make([]float64, n)
		valid := make([]bool, n)
		for i, record := range records {
			if v, ok := record[name].(float64); ok {
				data[i] = v
				valid[i] = true
			}
		}
		return NewSeriesFloat64WithNulls(name, data, valid), nil

	case Int64:
		data := make([]int64, n)
		valid := make([]bool, n)
		for i, record := range records {
			if v, ok := record[name].(float64); ok {
				data[i] = int64(v)
				valid[i] = true
			}
		}
		return NewSeriesInt64WithNulls(name, data, valid), nil

	case Bool:
		data := make([]bool, n)
		for i, record := range records {
			if v, ok := record[name].(bool); ok {
				data[i] = v
			}
		}
		return NewSeriesBool(name, data), nil

	case String:
		data := make([]string, n)
		valid := make([]bool, n)
		for i, record := range records {
			if val, ok := record[name]; ok && val != nil {
				data[i] = fmt.Sprintf("%v", val)
				valid[i] = true
			}
		}
		return NewSeriesStringWithNulls(name, data, valid), nil

	default:
		return nil, fmt.Errorf("unsupported dtype: %s", dtype)
	}
}

// JSONWriteOptions configures JSON writing behavior
type JSONWriteOptions struct {
	Format JSONFormat // Output layout
	Indent string     // Indent string (default "", no indent)
}

// DefaultJSONWriteOptions returns default JSON writing options
func DefaultJSONWriteOptions() JSONWriteOptions {
	return JSONWriteOptions{Format: JSONRecords}
}

// WriteJSON writes a DataFrame to a JSON file
func (df *DataFrame) WriteJSON(path string, opts ...JSONWriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return df.WriteJSONToWriter(f, opts...)
}

// WriteJSONToWriter writes a DataFrame to an io.Writer
func (df *DataFrame) WriteJSONToWriter(w io.Writer, opts ...JSONWriteOptions) error {
	opt := DefaultJSONWriteOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	var data interface{}
	height := df.Height()

	switch opt.Format {
	case JSONRecords:
		records := make([]map[string]interface{}, height)
		for i := 0; i < height; i++ {
			record := make(map[string]interface{})
			for _, col := range df.columns {
				record[col.Name()] = col.Get(i)
			}
			records[i] = record
		}
		data = records

	case JSONColumns:
		colData := make(map[string]interface{})
		for _, col := range df.columns {
			switch col.DType() {
			case Float64:
				colData[col.Name()] = col.Float64()
			case Int64:
				colData[col.Name()] = col.Int64()
			case Bool:
				colData[col.Name()] = col.Bool()
			case String:
				colData[col.Name()] = col.Strings()
			}
		}
		data = colData

	default:
		return fmt.Errorf("unknown JSON format: %d", opt.Format)
	}

	encoder := json.NewEncoder(w)
	if opt.Indent != "" {
		encoder.SetIndent("", opt.Indent)
	}

	return encoder.Encode(data)
}
