// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tabular serializes heterogeneous records to CSV and reads the
// simple comma-separated text accepted by the coordinate tools.
package tabular

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/geo-converter/pkg/types"
)

// ValueColumn is the header used when every row is a bare scalar.
const ValueColumn = "value"

// ToCSV renders rows as CSV. Rows are usually *types.Record; the header is
// the union of their keys in first-seen order and a row lacking a key gets
// an empty quoted cell. When no row is a record the output is a single
// value column. Every data cell is quoted; nested objects and arrays are
// written as JSON text. Lines are joined with "\n" and there is no trailing
// newline. Empty input yields "".
func ToCSV(rows []any) string {
	if len(rows) == 0 {
		return ""
	}

	var header []string
	seen := make(map[string]bool)
	for _, row := range rows {
		rec, ok := row.(*types.Record)
		if !ok || rec == nil {
			continue
		}
		for _, k := range rec.Keys() {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
	}

	var b strings.Builder
	if len(header) == 0 && !anyRecord(rows) {
		b.WriteString(ValueColumn)
		for _, row := range rows {
			b.WriteByte('\n')
			b.WriteString(quote(Text(row)))
		}
		return b.String()
	}

	for i, h := range header {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(headerField(h))
	}
	for _, row := range rows {
		b.WriteByte('\n')
		rec, _ := row.(*types.Record)
		for i, h := range header {
			if i > 0 {
				b.WriteByte(',')
			}
			v, _ := rec.Get(h)
			b.WriteString(quote(Text(v)))
		}
	}
	return b.String()
}

// RecordsToCSV is ToCSV for a slice of records.
func RecordsToCSV(recs []*types.Record) string {
	rows := make([]any, len(recs))
	for i, r := range recs {
		rows[i] = r
	}
	return ToCSV(rows)
}

func anyRecord(rows []any) bool {
	for _, row := range rows {
		if rec, ok := row.(*types.Record); ok && rec != nil {
			return true
		}
	}
	return false
}

// Text coerces a cell value to its CSV text. nil becomes "".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return FormatNumber(t)
	case int:
		return strconv.Itoa(t)
	case *types.Record:
		if t == nil {
			return ""
		}
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	case []any:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return strings.Trim(string(data), `"`)
	}
}

// FormatNumber prints a float the shortest way that reads back exactly,
// switching to exponent form below 1e-6 and from 1e21 upward.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[0]
		exp = strings.TrimLeft(exp[1:], "0")
		return mant + "e" + string(sign) + exp
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func headerField(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}
