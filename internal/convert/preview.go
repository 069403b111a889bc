// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"github.com/pdiddy/geo-converter/internal/coords"
	"github.com/pdiddy/geo-converter/internal/tabular"
)

// Preview is the parsed table shown before a DMS conversion, with the
// suggested latitude and longitude columns.
type Preview struct {
	Table   tabular.Table
	Mapping coords.ColumnMapping
}

// Preview parses the first file, or the pasted text, for column mapping.
func (c *Converter) Preview(in Inputs) (*Preview, error) {
	text := in.Text
	if len(in.Files) > 0 {
		f := in.Files[0]
		if err := Gate(ModeCoordinates, f.Name, f.mimeType()); err != nil {
			return nil, err
		}
		text = decodeText(f.Data)
	}

	table := tabular.ParseCSVSimple(text)
	if len(table.Headers) == 0 || len(table.Rows) == 0 {
		return nil, coords.ErrNoRows
	}
	return &Preview{Table: table, Mapping: coords.DetectDMSColumns(table.Headers)}, nil
}
