// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/pdiddy/geo-converter/internal/export"
	"github.com/pdiddy/geo-converter/pkg/types"
)

// Fallback artifact stems.
const (
	BatchStem = "converted_files"
	TextStem  = "converted_data"
)

// PreviewMessage is shown while a DMS conversion waits for a column mapping.
const PreviewMessage = "Data loaded. Please map the Latitude and Longitude columns below."

// Entry is one output of a batch run, stored in the download archive
// under Name.
type Entry struct {
	Source string
	Name   string
	Ext    string
	Data   []byte
	Rows   int
}

// Outcome records how one input file fared.
type Outcome struct {
	Name string
	Rows int
	Err  error
}

// GeoJSONOutput keeps a parsed GeoJSON document so it can be rendered in
// the chosen format when the artifact is built.
type GeoJSONOutput struct {
	Collection *types.FeatureCollection
	// Properties lists the property keys seen across features, in order.
	Properties []string
	Fields     export.FieldOptions
	Format     Format
}

// Materialize renders the document as csv, gpx, kml or kmz.
func (g *GeoJSONOutput) Materialize(format Format) ([]byte, error) {
	switch format {
	case FormatCSV, "":
		return []byte(export.CSV(g.Collection)), nil
	case FormatGPX:
		s, err := export.GPX(g.Collection, g.Fields)
		return []byte(s), err
	case FormatKML:
		return []byte(export.KML(g.Collection, g.Fields)), nil
	case FormatKMZ:
		return export.KMZ(g.Collection, g.Fields)
	}
	return nil, fmt.Errorf("cannot export GeoJSON as %s", format)
}

// Result is a successful run. A single output lives in CSV with its
// extension in Ext (csv, geojson or txt), or in GeoJSON for GeoJSON mode.
// Multi-output runs fill Entries instead.
type Result struct {
	Mode   Mode
	Format Format

	CSV     string
	Ext     string
	Entries []Entry
	GeoJSON *GeoJSONOutput
	// Text is free text extracted from a PDF.
	Text string

	Rows     int
	Files    int
	Sources  []string
	Outcomes []Outcome

	cleanup bool
}

func (r *Result) setSingle(o output) {
	r.CSV, r.Ext, r.Rows, r.Text = string(o.body), o.ext, o.rows, o.text
	if o.geo != nil {
		o.geo.Format = r.Format
		r.GeoJSON = o.geo
	}
}

// Failed returns the outcomes of files that produced nothing.
func (r *Result) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Message summarizes the run for display.
func (r *Result) Message() string {
	switch {
	case r.cleanup:
		return fmt.Sprintf("Cleanup successful! Found %d rows.", r.Rows)
	case r.Mode == ModePDF:
		var parts []string
		if r.Rows > 0 {
			parts = append(parts, strconv.Itoa(r.Rows)+" table rows")
		}
		if r.Text != "" {
			parts = append(parts, "text content")
		}
		return "Extraction successful! Found " + strings.Join(parts, " and ") + "."
	case r.Mode == ModeGeoJSON:
		return fmt.Sprintf("Conversion successful! Found %d features. Ready to download.", r.Rows)
	case r.Mode == ModeXLSX:
		return fmt.Sprintf("Conversion successful! Found %d total rows across all sheets.", r.Rows)
	case r.Files > 1:
		return fmt.Sprintf("Batch conversion successful! Processed %d files with a total of %d rows.", r.Files, r.Rows)
	}
	return fmt.Sprintf("Conversion successful! Found %d rows.", r.Rows)
}

// Artifact is a downloadable file.
type Artifact struct {
	Name string
	Data []byte
}

// Artifact builds the download. A single input is named after its stem, a
// multi-file run becomes converted_files.zip and pasted text becomes
// converted_data. CSV payloads start with a UTF-8 byte order mark.
func (r *Result) Artifact() (Artifact, error) {
	stem := TextStem
	if len(r.Sources) > 0 {
		stem = Stem(r.Sources[0])
	}

	switch {
	case len(r.Entries) > 0:
		if r.Files > 1 {
			stem = BatchStem
		}
		data, err := r.zip()
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Name: stem + ".zip", Data: data}, nil

	case r.GeoJSON != nil:
		format := r.GeoJSON.Format
		if format == "" {
			format = FormatCSV
		}
		data, err := r.GeoJSON.Materialize(format)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Name: stem + "." + string(format), Data: withBOM(string(format), data)}, nil
	}

	ext := r.Ext
	if ext == "" {
		ext = string(FormatCSV)
	}
	return Artifact{Name: stem + "." + ext, Data: withBOM(ext, []byte(r.CSV))}, nil
}

func (r *Result) zip() ([]byte, error) {
	used := make(map[string]bool, len(r.Entries))
	entries := make([]export.ZipEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		name := e.Name
		ext := "." + e.Ext
		for n := 2; used[name]; n++ {
			name = strings.TrimSuffix(e.Name, ext) + "_" + strconv.Itoa(n) + ext
		}
		used[name] = true
		entries = append(entries, export.ZipEntry{Name: name, Data: withBOM(e.Ext, e.Data)})
	}
	return export.Zip(entries)
}

// entries turns one batch file's output into archive entries.
func (o output) entries(source string, format Format) ([]Entry, error) {
	if len(o.sheets) > 0 {
		return o.sheets, nil
	}
	stem := Stem(source) + "_converted."
	if o.geo != nil {
		if format == "" {
			format = FormatCSV
		}
		data, err := o.geo.Materialize(format)
		if err != nil {
			return nil, err
		}
		return []Entry{{Source: source, Name: stem + string(format), Ext: string(format), Data: data, Rows: o.rows}}, nil
	}
	if len(o.body) == 0 {
		return nil, nil
	}
	return []Entry{{Source: source, Name: stem + o.ext, Ext: o.ext, Data: o.body, Rows: o.rows}}, nil
}

// withBOM prefixes CSV data with a UTF-8 byte order mark.
func withBOM(ext string, data []byte) []byte {
	if ext != string(FormatCSV) {
		return data
	}
	out, _, err := transform.Bytes(unicode.UTF8BOM.NewEncoder(), data)
	if err != nil {
		return data
	}
	return out
}
