package exporter

import (
	"fmt"
	"strconv"
)

// Format selects the raw data export encoding.
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a data format name from config or flags.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTSV, FormatJSON, FormatYAML:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported data format %q (want tsv, json or yaml)", s)
}

// formatCell renders one table value for tsv and xlsx output. Floats keep
// their full precision; rounding them would corrupt the r-squared columns.
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
