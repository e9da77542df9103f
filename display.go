package caravel

import (
	"fmt"
	"strings"
	"sync"
)

// DisplayConfig controls how DataFrames are formatted when printed.
type DisplayConfig struct {
	// MaxRows is the maximum number of rows to display. Larger frames show
	// head and tail rows with an ellipsis row in between. Default: 10.
	MaxRows int

	// MaxColWidth is the maximum width for column content.
	// Values longer than this are truncated with "...". Default: 25.
	MaxColWidth int

	// MinColWidth is the minimum column width for alignment. Default: 8.
	MinColWidth int

	// FloatPrecision is the number of decimal places for float values.
	// Default: 4.
	FloatPrecision int

	// ShowDTypes controls whether to display data types under column names.
	// Default: true.
	ShowDTypes bool

	// ShowShape controls whether to display the shape header. Default: true.
	ShowShape bool

	// TableStyle controls the table border style.
	// Options: "rounded", "ascii". Default: "rounded".
	TableStyle string
}

type tableChars struct {
	topLeft, topRight, bottomLeft, bottomRight string
	horizontal, vertical                       string
	topT, bottomT, leftT, rightT, cross        string
}

var tableStyles = map[string]tableChars{
	"rounded": {
		topLeft: "╭", topRight: "╮", bottomLeft: "╰", bottomRight: "╯",
		horizontal: "─", vertical: "│",
		topT: "┬", bottomT: "┴", leftT: "├", rightT: "┤", cross: "┼",
	},
	"ascii": {
		topLeft: "+", topRight: "+", bottomLeft: "+", bottomRight: "+",
		horizontal: "-", vertical: "|",
		topT: "+", bottomT: "+", leftT: "+", rightT: "+", cross: "+",
	},
}

// DefaultDisplayConfig returns the default display configuration.
func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		MaxRows:        10,
		MaxColWidth:    25,
		MinColWidth:    8,
		FloatPrecision: 4,
		ShowDTypes:     true,
		ShowShape:      true,
		TableStyle:     "rounded",
	}
}

var (
	globalDisplayConfig = DefaultDisplayConfig()
	displayConfigMu     sync.RWMutex
)

// SetDisplayConfig sets the global display configuration.
func SetDisplayConfig(cfg DisplayConfig) {
	displayConfigMu.Lock()
	defer displayConfigMu.Unlock()
	globalDisplayConfig = cfg
}

// GetDisplayConfig returns the current global display configuration.
func GetDisplayConfig() DisplayConfig {
	displayConfigMu.RLock()
	defer displayConfigMu.RUnlock()
	return globalDisplayConfig
}

func formatDisplayValue(val interface{}, cfg DisplayConfig) string {
	var s string
	switch v := val.(type) {
	case nil:
		s = "null"
	case float64:
		s = fmt.Sprintf(fmt.Sprintf("%%.%df", cfg.FloatPrecision), v)
	case string:
		s = v
	case bool:
		if v {
			s = "true"
		} else {
			s = "false"
		}
	default:
		s = fmt.Sprintf("%v", v)
	}
	if len(s) > cfg.MaxColWidth {
		s = s[:cfg.MaxColWidth-3] + "..."
	}
	return s
}

// displayRowIndices picks the rows to render, inserting -1 as an
// ellipsis marker when the frame exceeds MaxRows.
func displayRowIndices(height, maxRows int) []int {
	if height <= maxRows {
		indices := make([]int, height)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}
	headRows := maxRows / 2
	tailRows := maxRows - headRows
	indices := make([]int, 0, maxRows+1)
	for i := 0; i < headRows; i++ {
		indices = append(indices, i)
	}
	indices = append(indices, -1)
	for i := height - tailRows; i < height; i++ {
		indices = append(indices, i)
	}
	return indices
}

func displayColumnWidths(df *DataFrame, cfg DisplayConfig, rowIndices []int) []int {
	widths := make([]int, len(df.columns))
	for i, col := range df.columns {
		widths[i] = len(col.Name())
		if cfg.ShowDTypes && len(col.DType().String()) > widths[i] {
			widths[i] = len(col.DType().String())
		}
		for _, rowIdx := range rowIndices {
			if rowIdx < 0 {
				continue
			}
			if n := len(formatDisplayValue(col.Get(rowIdx), cfg)); n > widths[i] {
				widths[i] = n
			}
		}
		if widths[i] < cfg.MinColWidth {
			widths[i] = cfg.MinColWidth
		}
		if widths[i] > cfg.MaxColWidth {
			widths[i] = cfg.MaxColWidth
		}
	}
	return widths
}

func writeBorder(sb *strings.Builder, widths []int, left, junction, right, fill string) {
	sb.WriteString(left)
	for i, w := range widths {
		if i > 0 {
			sb.WriteString(junction)
		}
		sb.WriteString(strings.Repeat(fill, w+2))
	}
	sb.WriteString(right)
	sb.WriteString("\n")
}

// StringWithConfig formats the DataFrame using the provided configuration.
func (df *DataFrame) StringWithConfig(cfg DisplayConfig) string {
	if df.height == 0 || len(df.columns) == 0 {
		return "DataFrame(empty)"
	}

	chars, ok := tableStyles[cfg.TableStyle]
	if !ok {
		chars = tableStyles["rounded"]
	}

	var sb strings.Builder

	if cfg.ShowShape {
		sb.WriteString(fmt.Sprintf("shape: (%d, %d)\n", df.height, len(df.columns)))
	}

	rowIndices := displayRowIndices(df.height, cfg.MaxRows)
	widths := displayColumnWidths(df, cfg, rowIndices)

	writeBorder(&sb, widths, chars.topLeft, chars.topT, chars.topRight, chars.horizontal)

	// Column names
	sb.WriteString(chars.vertical)
	for i, col := range df.columns {
		name := col.Name()
		if len(name) > widths[i] {
			name = name[:widths[i]-3] + "..."
		}
		sb.WriteString(fmt.Sprintf(" %-*s ", widths[i], name))
		sb.WriteString(chars.vertical)
	}
	sb.WriteString("\n")

	if cfg.ShowDTypes {
		sb.WriteString(chars.vertical)
		for i, col := range df.columns {
			sb.WriteString(fmt.Sprintf(" %-*s ", widths[i], col.DType().String()))
			sb.WriteString(chars.vertical)
		}
		sb.WriteString("\n")
	}

	writeBorder(&sb, widths, chars.leftT, chars.cross, chars.rightT, chars.horizontal)

	for _, rowIdx := range rowIndices {
		sb.WriteString(chars.vertical)
		for i, col := range df.columns {
			if rowIdx == -1 {
				sb.WriteString(fmt.Sprintf(" %*s ", widths[i], "…"))
			} else {
				sb.WriteString(fmt.Sprintf(" %*s ", widths[i], formatDisplayValue(col.Get(rowIdx), cfg)))
			}
			sb.WriteString(chars.vertical)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(chars.bottomLeft)
	for i, w := range widths {
		if i > 0 {
			sb.WriteString(chars.bottomT)
		}
		sb.WriteString(strings.Repeat(chars.horizontal, w+2))
	}
	sb.WriteString(chars.bottomRight)

	return sb.String()
}
