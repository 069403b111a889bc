// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tabular

import (
	"strings"

	"github.com/pdiddy/geo-converter/pkg/types"
)

// Table is the result of ParseCSVSimple.
type Table struct {
	Headers []string
	Rows    []*types.Record
}

// ParseCSVSimple splits text on newlines and commas. It does not understand
// quoting, so a comma inside a quoted field splits the field. Headers and
// values are trimmed; a row with fewer fields than the header gets nil for
// the missing trailing columns, and extra fields are ignored.
func ParseCSVSimple(text string) Table {
	text = strings.TrimSpace(text)
	if text == "" {
		return Table{}
	}
	lines := strings.Split(text, "\n")

	headers := strings.Split(lines[0], ",")
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	rows := make([]*types.Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := strings.Split(line, ",")
		row := types.NewRecord()
		for i, h := range headers {
			if i < len(values) {
				row.Set(h, strings.TrimSpace(values[i]))
			} else {
				row.Set(h, nil)
			}
		}
		rows = append(rows, row)
	}
	return Table{Headers: headers, Rows: rows}
}
