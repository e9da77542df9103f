package caravel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// TableReadOptions configures whitespace-delimited table reading.
// Fields are split on any run of spaces or tabs, the way station and
// climate summary files are laid out.
type TableReadOptions struct {
	SkipRows    int      // Skip first N lines before the header
	HasHeader   bool     // First non-skipped line is header (default true)
	ColumnNames []string // Override column names
	MaxRows     int      // Max data rows to read (0 = unlimited)
	NullValues  []string // Strings to treat as null
	InferTypes  bool     // Auto-detect types (default true)
}

// DefaultTableReadOptions returns default table reading options
func DefaultTableReadOptions() TableReadOptions {
	return TableReadOptions{
		HasHeader:  true,
		InferTypes: true,
		NullValues: []string{"", "---", "N/A", "NA", "null"},
	}
}

// ReadTable reads a whitespace-delimited text file into a DataFrame
func ReadTable(path string, opts ...TableReadOptions) (*DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ReadTableFromReader(f, opts...)
}

// ReadTableFromReader reads whitespace-delimited data from an io.Reader
func ReadTableFromReader(r io.Reader, opts ...TableReadOptions) (*DataFrame, error) {
	opt := DefaultTableReadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for i := 0; i < opt.SkipRows; i++ {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("failed to skip line %d: %w", i, err)
			}
			return nil, fmt.Errorf("failed to skip line %d: unexpected end of input", i)
		}
	}

	var headers []string
	if opt.HasHeader {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("failed to read header: %w", err)
			}
			return nil, fmt.Errorf("failed to read header: unexpected end of input")
		}
		headers = strings.Fields(scanner.Text())
	} else if len(opt.ColumnNames) > 0 {
		headers = opt.ColumnNames
	}

	var records [][]string
	for scanner.Scan() {
		if opt.MaxRows > 0 && len(records) >= opt.MaxRows {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if headers == nil {
			headers = make([]string, len(fields))
			for i := range fields {
				headers[i] = fmt.Sprintf("column_%d", i)
			}
		}

		// Pad short rows so ragged trailing columns read as null
		if len(fields) < len(headers) {
			padded := make([]string, len(headers))
			copy(padded, fields)
			fields = padded
		}
		records = append(records, fields[:len(headers)])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
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
	for i := range headers {
		if opt.InferTypes {
			colTypes[i] = inferColumnType(records, i, opt.NullValues)
		} else {
			colTypes[i] = String
		}
	}

	columns := make([]*Series, len(headers))
	for i, name := range headers {
		col, err := buildColumn(name, colTypes[i], records, i, opt.NullValues)
		if err != nil {
			return nil, fmt.Errorf("failed to build column '%s': %w", name, err)
		}
		columns[i] = col
	}

	return NewDataFrame(columns...)
}

var tableHTTPClient = &http.Client{Timeout: 60 * time.Second}

// ReadTableFromURL fetches a whitespace-delimited text file over HTTP
// and reads it into a DataFrame.
func ReadTableFromURL(ctx context.Context, url string, opts ...TableReadOptions) (*DataFrame, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	resp, err := tableHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch %s: status %s", url, resp.Status)
	}

	return ReadTableFromReader(resp.Body, opts...)
}
