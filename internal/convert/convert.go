// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert dispatches a conversion run: it gates input files, routes
// them through the parser, coordinate pipeline, exporter or AI service of
// the active mode, and aggregates per-file outputs into a Result.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/pdiddy/geo-converter/internal/ai"
	"github.com/pdiddy/geo-converter/internal/coords"
	"github.com/pdiddy/geo-converter/internal/export"
	"github.com/pdiddy/geo-converter/internal/parse"
	"github.com/pdiddy/geo-converter/internal/tabular"
	"github.com/pdiddy/geo-converter/pkg/types"
)

var (
	// ErrNothingConverted is returned when no input produced output.
	ErrNothingConverted = errors.New("no data could be converted from the selected file(s)")
	// ErrNoData is returned when pasted text produced no output.
	ErrNoData = errors.New("no data to convert")
	// ErrNoCleaner is returned when a mode needs the cleanup service and none is set.
	ErrNoCleaner = errors.New("no cleanup service configured")
	// ErrNoPDFExtractor is returned for PDF runs without an extractor.
	ErrNoPDFExtractor = errors.New("no PDF extraction service configured")
)

// File is one uploaded input. MIME may be empty; it is then sniffed from Data.
type File struct {
	Name string
	MIME string
	Data []byte
}

func (f File) mimeType() string {
	if f.MIME != "" {
		return f.MIME
	}
	return DetectMIME(f.Data)
}

// Inputs holds the files of a run, or pasted text when Files is empty.
type Inputs struct {
	Files []File
	Text  string
}

// Converter runs conversions. Cleaner and PDF are needed only by the modes
// that call them. Concurrency above 1 converts batch files in parallel; the
// result keeps input order either way.
type Converter struct {
	Cleaner     ai.Cleaner
	PDF         ai.PDFExtractor
	Log         zerolog.Logger
	Concurrency int
}

// output is what one input produced.
type output struct {
	body   []byte
	ext    string
	rows   int
	sheets []Entry
	geo    *GeoJSONOutput
	text   string
}

func (o output) empty() bool {
	return o.rows == 0 && len(o.body) == 0 && len(o.sheets) == 0 && o.geo == nil && o.text == ""
}

type outcome struct {
	out output
	err error
}

// Run converts inputs under session. With several files, or a workbook with
// several non-empty sheets, the result holds one Entry per output; a failing
// file is logged and skipped and the run fails only when nothing converted.
// A single file or pasted text fails on its first error.
func (c *Converter) Run(ctx context.Context, s Session, in Inputs) (*Result, error) {
	if s == nil {
		return nil, errors.New("no session")
	}
	if err := checkSession(s); err != nil {
		return nil, err
	}
	for _, f := range in.Files {
		if err := Gate(s.Mode(), f.Name, f.mimeType()); err != nil {
			return nil, err
		}
	}

	res := &Result{Mode: s.Mode(), Files: len(in.Files), cleanup: usesCleanup(s)}
	if gs, ok := s.(GeoJSONSession); ok {
		res.Format = gs.Format
	}

	if len(in.Files) == 0 {
		out, err := c.process(ctx, s, nil, in.Text)
		if err != nil {
			return nil, err
		}
		if out.empty() {
			return nil, ErrNoData
		}
		res.setSingle(out)
		return res, nil
	}

	for _, f := range in.Files {
		res.Sources = append(res.Sources, f.Name)
	}
	outcomes := c.each(ctx, s, in.Files)

	if len(in.Files) == 1 {
		o := outcomes[0]
		if o.err != nil {
			return nil, o.err
		}
		if o.out.empty() {
			return nil, ErrNothingConverted
		}
		res.Outcomes = []Outcome{{Name: in.Files[0].Name, Rows: o.out.rows}}
		switch len(o.out.sheets) {
		case 0:
			res.setSingle(o.out)
		case 1:
			sheet := o.out.sheets[0]
			res.CSV, res.Ext, res.Rows = string(sheet.Data), sheet.Ext, sheet.Rows
		default:
			res.Entries = o.out.sheets
			res.Rows = o.out.rows
		}
		return res, nil
	}

	for i, o := range outcomes {
		name := in.Files[i].Name
		if o.err != nil {
			c.log().Warn().Str("file", name).Err(o.err).Msg("conversion failed")
			res.Outcomes = append(res.Outcomes, Outcome{Name: name, Err: o.err})
			continue
		}
		entries, err := o.out.entries(name, res.Format)
		if err == nil && len(entries) == 0 {
			err = ErrNothingConverted
		}
		if err != nil {
			c.log().Warn().Str("file", name).Err(err).Msg("conversion failed")
			res.Outcomes = append(res.Outcomes, Outcome{Name: name, Err: err})
			continue
		}
		c.log().Debug().Str("file", name).Int("rows", o.out.rows).Msg("converted")
		res.Entries = append(res.Entries, entries...)
		res.Rows += o.out.rows
		res.Outcomes = append(res.Outcomes, Outcome{Name: name, Rows: o.out.rows})
	}
	if len(res.Entries) == 0 {
		return nil, ErrNothingConverted
	}
	return res, nil
}

func (c *Converter) log() *zerolog.Logger { return &c.Log }

// each converts files in input order, in parallel when Concurrency > 1.
func (c *Converter) each(ctx context.Context, s Session, files []File) []outcome {
	run := func(f *File) outcome {
		out, err := c.process(ctx, s, f, "")
		return outcome{out: out, err: err}
	}
	if c.Concurrency > 1 && len(files) > 1 {
		mapper := iter.Mapper[File, outcome]{MaxGoroutines: c.Concurrency}
		return mapper.Map(files, run)
	}
	outcomes := make([]outcome, len(files))
	for i := range files {
		outcomes[i] = run(&files[i])
	}
	return outcomes
}

func checkSession(s Session) error {
	cs, ok := s.(CoordinatesSession)
	if !ok {
		return nil
	}
	if cs.From == cs.To {
		return coords.ErrSameSystem
	}
	if cs.From == coords.DMS && !cs.Mapping.Complete() {
		return coords.ErrMappingRequired
	}
	return nil
}

// process converts one file, or text when f is nil.
func (c *Converter) process(ctx context.Context, s Session, f *File, text string) (output, error) {
	if f != nil {
		text = decodeText(f.Data)
	}

	switch s := s.(type) {
	case KMLSession:
		return c.kml(ctx, s, f, text)

	case GPXSession:
		if f == nil {
			return output{}, invalid("no GPX file selected")
		}
		points, err := parse.GPX(xmlSource(f.Data))
		if err != nil {
			return output{}, err
		}
		if len(points) == 0 {
			return output{}, invalid("no points found in the GPX file")
		}
		return pointsOutput(points, s.Output)

	case GeoJSONSession:
		if strings.TrimSpace(text) == "" {
			return output{}, invalid("GeoJSON data is empty")
		}
		fc, keys, err := parse.GeoJSON([]byte(text))
		if err != nil {
			return output{}, err
		}
		return output{
			rows: len(fc.Features),
			geo:  &GeoJSONOutput{Collection: fc, Properties: keys, Fields: s.Fields},
		}, nil

	case JSONSession:
		if strings.TrimSpace(text) == "" {
			return output{}, invalid("JSON data is empty")
		}
		rows, err := parse.JSON([]byte(text))
		if err != nil {
			return output{}, err
		}
		return csvOutput(tabular.ToCSV(rows), len(rows)), nil

	case PDFSession:
		if f == nil {
			return output{}, invalid("no PDF file selected")
		}
		return c.pdf(ctx, f.Data)

	case CleanupSession:
		if strings.TrimSpace(text) == "" {
			return output{}, invalid("no data provided for cleanup")
		}
		return c.clean(ctx, text, s.Instructions)

	case XLSXSession:
		if f == nil {
			return output{}, invalid("no XLSX file selected")
		}
		return workbook(f)

	case CoordinatesSession:
		rows, err := coords.Convert(s.From, s.To, tabular.ParseCSVSimple(text), s.Mapping)
		if err != nil {
			return output{}, err
		}
		if len(rows) == 0 {
			return output{}, nil
		}
		return csvOutput(tabular.RecordsToCSV(rows), len(rows)), nil
	}
	return output{}, fmt.Errorf("unsupported session %T", s)
}

func (c *Converter) kml(ctx context.Context, s KMLSession, f *File, text string) (output, error) {
	var doc []byte
	switch {
	case f != nil:
		doc = f.Data
		if strings.EqualFold(filepath.Ext(f.Name), ".kmz") || isZip(f.Data) {
			kml, err := parse.KMZ(f.Data)
			if err != nil {
				return output{}, err
			}
			doc = kml
		}
	case s.UseAI:
		doc = []byte(text)
	default:
		return output{}, invalid("no KML/KMZ file selected")
	}

	if s.UseAI {
		raw := decodeText(doc)
		if strings.TrimSpace(raw) == "" {
			return output{}, invalid("no data provided for AI parser")
		}
		return c.clean(ctx, raw, "")
	}

	points, err := parse.KML(xmlSource(doc))
	if err != nil {
		return output{}, err
	}
	return pointsOutput(points, s.Output)
}

func (c *Converter) clean(ctx context.Context, raw, instructions string) (output, error) {
	if c.Cleaner == nil {
		return output{}, ErrNoCleaner
	}
	res, err := c.Cleaner.Clean(ctx, ai.CleanRequest{RawData: raw, Instructions: instructions})
	if err != nil {
		return output{}, err
	}
	return csvOutput(res.CSVData, countDataLines(res.CSVData)), nil
}

func (c *Converter) pdf(ctx context.Context, data []byte) (output, error) {
	if c.PDF == nil {
		return output{}, ErrNoPDFExtractor
	}
	res, err := c.PDF.ExtractPDF(ctx, ai.PDFRequest{DataURI: ai.EncodeDataURI("application/pdf", data)})
	if err != nil {
		return output{}, err
	}
	out := output{rows: len(res.TableRows), text: res.Text}
	switch {
	case len(res.TableRows) > 0:
		out.body, out.ext = []byte(tabular.ToCSV(res.TableRows)), string(FormatCSV)
	case res.Text != "":
		out.body, out.ext = []byte(res.Text), "txt"
	}
	return out, nil
}

func workbook(f *File) (output, error) {
	sheets, err := parse.Workbook(f.Data)
	if err != nil {
		return output{}, err
	}
	var out output
	stem := Stem(f.Name)
	for _, sh := range sheets {
		if len(sh.Rows) == 0 {
			continue
		}
		out.sheets = append(out.sheets, Entry{
			Source: f.Name,
			Name:   stem + "_" + sh.Name + "_converted.csv",
			Ext:    string(FormatCSV),
			Data:   []byte(tabular.RecordsToCSV(sh.Rows)),
			Rows:   len(sh.Rows),
		})
		out.rows += len(sh.Rows)
	}
	return out, nil
}

func pointsOutput(points []types.GeoPoint, format Format) (output, error) {
	if format == FormatGeoJSON {
		data, err := export.PointsGeoJSON(points)
		if err != nil {
			return output{}, err
		}
		return output{body: data, ext: string(FormatGeoJSON), rows: len(points)}, nil
	}
	return csvOutput(tabular.RecordsToCSV(types.PointRecords(points)), len(points)), nil
}

func csvOutput(csv string, rows int) output {
	return output{body: []byte(csv), ext: string(FormatCSV), rows: rows}
}

// countDataLines counts non-blank lines after the header.
func countDataLines(csv string) int {
	n := 0
	for _, line := range strings.Split(csv, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return n - 1
}

// decodeText returns data as UTF-8 with any byte order mark removed. UTF-16
// input with a BOM is transcoded.
func decodeText(data []byte) string {
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// xmlSource prepares XML for the parsers. Input with a byte order mark is
// transcoded to UTF-8; anything else is passed through untouched so the
// parser can honor the encoding the document declares.
func xmlSource(data []byte) []byte {
	if bytes.HasPrefix(data, []byte{0xef, 0xbb, 0xbf}) ||
		bytes.HasPrefix(data, []byte{0xfe, 0xff}) ||
		bytes.HasPrefix(data, []byte{0xff, 0xfe}) {
		return []byte(decodeText(data))
	}
	return data
}

// Stem strips the directory and last extension from a file name.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
