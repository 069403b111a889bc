// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/geo-converter/pkg/types"
)

// Sheet is one worksheet read as records keyed by its header row.
type Sheet struct {
	Name string
	Rows []*types.Record
}

// Workbook reads every worksheet of an XLSX file. The first row of a sheet
// is its header; blank header cells are named __EMPTY, __EMPTY_1, ... and
// repeated names get a _1, _2 suffix. Blank rows are skipped and empty
// cells are left out of their record.
func Workbook(data []byte) ([]Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: "xlsx", Reason: ReasonMalformed, Msg: "invalid spreadsheet", Err: err}
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: sheetRecords(rows)})
	}
	return sheets, nil
}

func sheetRecords(rows [][]string) []*types.Record {
	if len(rows) == 0 {
		return nil
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	header := headerNames(rows[0], width)

	var out []*types.Record
	for _, r := range rows[1:] {
		rec := types.NewRecord()
		for i, cell := range r {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			rec.Set(header[i], cell)
		}
		if rec.Len() > 0 {
			out = append(out, rec)
		}
	}
	return out
}

func headerNames(cells []string, width int) []string {
	names := make([]string, width)
	counts := make(map[string]int)
	empty := 0
	for i := range names {
		h := ""
		if i < len(cells) {
			h = strings.TrimSpace(cells[i])
		}
		if h == "" {
			h = "__EMPTY"
			if empty > 0 {
				h = fmt.Sprintf("__EMPTY_%d", empty)
			}
			empty++
		} else if n := counts[h]; n > 0 {
			counts[h]++
			h = fmt.Sprintf("%s_%d", h, n)
		}
		counts[h]++
		names[i] = h
	}
	return names
}
