// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/geo-converter/internal/ai"
	"github.com/pdiddy/geo-converter/internal/coords"
	"github.com/pdiddy/geo-converter/internal/export"
	"github.com/pdiddy/geo-converter/internal/parse"
)

const bom = "\xef\xbb\xbf"

const officeKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Placemark>
      <name>Office</name>
      <Point><coordinates>104.92,11.56,0</coordinates></Point>
    </Placemark>
  </Document>
</kml>`

const parksGeoJSON = `{"type":"FeatureCollection","features":[
  {"type":"Feature","properties":{"title":"Central","kind":"park"},"geometry":{"type":"Point","coordinates":[104.9,11.5]}},
  {"type":"Feature","properties":{"title":"River"},"geometry":{"type":"LineString","coordinates":[[1,2],[3,4]]}}
]}`

// fakeCleaner returns canned CSV and records the request.
type fakeCleaner struct {
	csv string
	err error
	got ai.CleanRequest
}

func (f *fakeCleaner) Clean(_ context.Context, req ai.CleanRequest) (ai.CleanResult, error) {
	f.got = req
	if f.err != nil {
		return ai.CleanResult{}, f.err
	}
	return ai.CleanResult{CSVData: f.csv}, nil
}

// fakeExtractor returns a canned extraction result.
type fakeExtractor struct {
	res ai.PDFResult
	uri string
}

func (f *fakeExtractor) ExtractPDF(_ context.Context, req ai.PDFRequest) (ai.PDFResult, error) {
	f.uri = req.DataURI
	return f.res, nil
}

func jsonFile(name, data string) File {
	return File{Name: name, MIME: "application/json", Data: []byte(data)}
}

func unzip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		out[f.Name] = string(b)
	}
	return out
}

func workbookFile(t *testing.T, name string, sheets map[string][][]any, order ...string) File {
	t.Helper()
	f := excelize.NewFile()
	for i, sheet := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet))
		} else {
			_, err := f.NewSheet(sheet)
			require.NoError(t, err)
		}
		for r, row := range sheets[sheet] {
			row := row
			require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", r+1), &row))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return File{Name: name, Data: buf.Bytes()}
}

func TestRun_BatchSkipsFailingFile(t *testing.T) {
	var logs bytes.Buffer
	c := &Converter{Log: zerolog.New(&logs)}

	res, err := c.Run(context.Background(), JSONSession{}, Inputs{Files: []File{
		jsonFile("a.json", `[{"x":1}]`),
		jsonFile("b.json", `{bad`),
		jsonFile("c.json", `[{"y":2},{"y":3}]`),
	}})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 3, res.Files)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "a_converted.csv", res.Entries[0].Name)
	assert.Equal(t, "c_converted.csv", res.Entries[1].Name)

	failed := res.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "b.json", failed[0].Name)
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), `"file":"b.json"`)

	assert.Equal(t, "Batch conversion successful! Processed 3 files with a total of 3 rows.", res.Message())

	art, err := res.Artifact()
	require.NoError(t, err)
	assert.Equal(t, "converted_files.zip", art.Name)
	files := unzip(t, art.Data)
	require.Len(t, files, 2)
	assert.Equal(t, bom+"x\n\"1\"", files["a_converted.csv"])
	assert.Equal(t, bom+"y\n\"2\"\n\"3\"", files["c_converted.csv"])
}

func TestRun_BatchAllFail(t *testing.T) {
	c := &Converter{Log: zerolog.Nop()}
	_, err := c.Run(context.Background(), JSONSession{}, Inputs{Files: []File{
		jsonFile("a.json", `{bad`),
		jsonFile("b.json", `"text"`),
	}})
	assert.ErrorIs(t, err, ErrNothingConverted)
}

func TestRun_SingleFileAborts(t *testing.T) {
	c := &Converter{Log: zerolog.Nop()}
	_, err := c.Run(context.Background(), JSONSession{}, Inputs{Files: []File{jsonFile("a.json", `{bad`)}})

	var pe *parse.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, err.Error(), "invalid JSON format")
}

func TestRun_ConcurrencyKeepsOrder(t *testing.T) {
	var files []File
	for i := 0; i < 6; i++ {
		files = append(files, jsonFile(fmt.Sprintf("f%d.json", i), fmt.Sprintf(`[{"n":%d}]`, i)))
	}
	c := &Converter{Log: zerolog.Nop(), Concurrency: 3}

	res, err := c.Run(context.Background(), JSONSession{}, Inputs{Files: files})
	require.NoError(t, err)
	require.Len(t, res.Entries, 6)
	for i, e := range res.Entries {
		assert.Equal(t, fmt.Sprintf("f%d_converted.csv", i), e.Name)
		assert.Equal(t, fmt.Sprintf("n\n\"%d\"", i), string(e.Data))
	}
}

func TestGate(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		file    string
		mime    string
		wantErr string
	}{
		{name: "kml", mode: ModeKML, file: "a.kml"},
		{name: "kmz upper case", mode: ModeKML, file: "A.KMZ"},
		{name: "kml rejects text", mode: ModeKML, file: "a.txt", mime: "text/plain", wantErr: "a.txt: please upload only .kml, .kmz files"},
		{name: "geojson accepts json", mode: ModeGeoJSON, file: "a.json"},
		{name: "json rejects geojson", mode: ModeJSON, file: "a.geojson", wantErr: "please upload only .json files"},
		{name: "pdf by mime", mode: ModePDF, file: "scan", mime: "application/pdf"},
		{name: "pdf extension alone", mode: ModePDF, file: "a.pdf", mime: "text/plain", wantErr: "please upload only .pdf files"},
		{name: "xlsx", mode: ModeXLSX, file: "a.xls"},
		{name: "coordinates text mime", mode: ModeCoordinates, file: "points.dat", mime: "text/plain; charset=utf-8"},
		{name: "cleanup rejects binary", mode: ModeCleanup, file: "a.bin", mime: "application/octet-stream", wantErr: "please upload only .csv or .txt files"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Gate(tt.mode, tt.file, tt.mime)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.file, ve.File)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRun_GatesBeforeParsing(t *testing.T) {
	c := &Converter{Log: zerolog.Nop()}
	_, err := c.Run(context.Background(), KMLSession{}, Inputs{Files: []File{
		{Name: "a.kml", Data: []byte(officeKML)},
		{Name: "notes.txt", MIME: "text/plain", Data: []byte("x")},
	}})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "notes.txt", ve.File)
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectMIME([]byte("%PDF-1.4\n%...")))
	assert.True(t, strings.HasPrefix(DetectMIME([]byte("name,lat\nA,1")), "text/"))

	kmz, err := export.Zip([]export.ZipEntry{{Name: "doc.kml", Data: []byte(officeKML)}})
	require.NoError(t, err)
	assert.True(t, isZip(kmz))
	assert.False(t, isZip([]byte(officeKML)))
}

func TestRun_KML(t *testing.T) {
	c := &Converter{Log: zerolog.Nop()}

	res, err := c.Run(context.Background(), KMLSession{Output: FormatCSV}, Inputs{Files: []File{{Name: "office.kml", Data: []byte(officeKML)}}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, "Conversion successful! Found 1 rows.", res.Message())
	assert.Contains(t, res.CSV, `"Office"`)

	art, err := res.Artifact()
	require.NoError(t, err)
	assert.Equal(t, "office.csv", art.Name)
	assert.True(t, bytes.HasPrefix(art.Data, []byte(bom)))
}

func TestRun_KMZ(t *testing.T) {
	kmz, err := export.Zip([]export.ZipEntry{{Name: "doc.kml", Data: []byte(officeKML)}})
	require.NoError(t, err)

	c := &Converter{Log: zerolog.Nop()}
	res, err := c.Run(context.Background(), KMLSession{Output: FormatGeoJSON}, Inputs{Files: []File{{Name: "office.kmz", Data: kmz}}})
	require.NoError(t, err)
	assert.Equal(t, "geojson", res.Ext)
	assert.Contains(t, res.CSV, "FeatureCollection")

	art, err := res.Artifact()
	require.NoError(t, err)
	assert.Equal(t, "office.geojson", art.Name)
	assert.False(t, bytes.HasPrefix(art.Data, []byte(bom)))
}

func TestRun_KMLLatin1(t *testing.T) {
	doc := `<?xml version="1.0" encoding="ISO-8859-1"?>` +
		"<kml><Placemark><name>Caf\xe9</name><coordinates>1,2</coordinates></Placemark></kml>"

	c := &Converter{Log: zerolog.Nop()}
	res, err := c.Run(context.Background(), KMLSession{Output: FormatCSV}, Inputs{Files: []File{{Name: "cafe.kml", MIME: "application/vnd.google-earth.kml+xml", Data: []byte(doc)}}})
	require.NoError(t, err)
	assert.Equal(t, "name,latitude,longitude,type\n\"Café\",\"2\",\"1\",\"Placemark\"", res.CSV)
}

func TestRun_KMLNeedsFile(t *testing.T) {
	c := &Converter{Log: zerolog.Nop()}
	_, err := c.Run(context.Background(), KMLSession{}, Inputs{Text: officeKML})
	assert.EqualError(t, err, "no KML/KMZ file selected")
}

func TestRun_KMLWithAI(t *testing.T) {
	cleaner := &fakeCleaner{csv: "name,lat,lon\nOffice,11.56,104.92\nDepot,11.6,104.9\n"}
	c := &Converter{Cleaner: cleaner, Log: zerolog.Nop()}

	res, err := c.Run(context.Background(), KMLSession{UseAI: true}, Inputs{Files: []File{{Name: "office.kml", Data: []byte(bom + officeKML)}}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, "Cleanup successful! Found 2 rows.", res.Message())
	assert.True(t, strings.HasPrefix(cleaner.got.RawData, "<?xml"))
	assert.Empty(t, cleaner.got.Instructions)
}

func TestRun_GPX(t *testing.T) {
	c := &Converter{Log: zerolog.Nop()}
	doc := `<gpx><wpt lat="11.5" lon="104.9"><name>A</name></wpt></gpx>`

	res, err := c.Run(context.Background(), GPXSession{Output: FormatCSV}, Inputs{Files: []File{{Name: "walk.gpx", Data: []byte(doc)}}})
	require.NoError(t, err)
	assert.Equal(t, "name,latitude,longitude,type\n\"A\",\"11.5\",\"104.9\",\"Waypoint\"", res.CSV)

	mixed := `<gpx><wpt lat="1" lon="2"/><wpt lat="3" lon="4"><name>B</name><ele>5</ele></wpt></gpx>`
	res, err = c.Run(context.Background(), GPXSession{Output: FormatCSV}, Inputs{Files: []File{{Name: "mixed.gpx", Data: []byte(mixed)}}})
	require.NoError(t, err)
	assert.Equal(t, "name,latitude,longitude,elevation,type\n"+
		"\"\",\"1\",\"2\",\"\",\"Waypoint\"\n"+
		"\"B\",\"3\",\"4\",\"5\",\"Waypoint\"", res.CSV)

	_, err = c.Run(context.Background(), GPXSession{}, Inputs{Files: []File{{Name: "empty.gpx", Data: []byte("<gpx></gpx>")}}})
	assert.EqualError(t, err, "no points found in the GPX file")

	_, err = c.Run(context.Background(), GPXSession{}, Inputs{Text: doc})
	assert.EqualError(t, err, "no GPX file selected")
}

func TestRun_GeoJSON(t *testing.T) {
	c := &Converter{Log: zerolog.Nop()}
	session := GeoJSONSession{Fields: export.FieldOptions{Name: "title"}, Format: FormatKML}

	res, err := c.Run(context.Background(), session, Inputs{Files: []File{{Name: "parks.geojson", Data: []byte(parksGeoJSON)}}})
	require.NoError(t, err)
	require.NotNil(t, res.GeoJSON)
	assert.Equal(t, []string{"title", "kind"}, res.GeoJSON.Properties)
	assert.Equal(t, "Conversion successful! Found 2 features. Ready to download.", res.Message())

	art, err := res.Artifact()
	require.NoError(t, err)
	assert.Equal(t, "parks.kml", art.Name)
	assert.Contains(t, string(art.Data), "<name>Central</name>")

	res.GeoJSON.Format = FormatCSV
	art, err = res.Artifact()
	require.NoError(t, err)
	assert.Equal(t, "parks.csv", art.Name)
	assert.True(t, bytes.HasPrefix(art.Data, []byte(bom+"title,kind,longitude,latitude")))

	res.GeoJSON.Format = FormatKMZ
	art, err = res.Artifact()
	require.NoError(t, err)
	assert.Equal(t, "parks.kmz", art.Name)
	assert.Contains(t, unzip(t, art.Data), export.KMZEntry)
}

func TestRun_GeoJSONText(t *testing.T) {
	c := &Converter{Log: zerolog.Nop()}

	res, err := c.Run(context.Background(), GeoJSONSession{Format: FormatGPX}, Inputs{Text: parksGeoJSON})
	require.NoError(t, err)
	art, err := res.Artifact()
	require.NoError(t, err)
	assert.Equal(t, "converted_data.gpx", art.Name)
	assert.Contains(t, string(art.Data), "<gpx")

	_, err = c.Run(context.Background(), GeoJSONSession{}, Inputs{Text: "  "})
	assert.EqualError(t, err, "GeoJSON data is empty")
}

func TestRun_GeoJSONBatch(t *testing.T) {
	c := &Converter{Log: zerolog.Nop()}
	res, err := c.Run(context.Background(), GeoJSONSession{Format: FormatKML}, Inputs{Files: []File{
		{Name: "a.geojson", Data: []byte(parksGeoJSON)},
		{Name: "b.json", Data: []byte(parksGeoJSON)},
	}})
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "a_converted.kml", res.Entries[0].Name)
	assert.Equal(t, "b_converted.kml", res.Entries[1].Name)
	assert.Equal(t, 4, res.Rows)
}

func TestRun_XLSX(t *testing.T) {
	wb := workbookFile(t, "sites.xlsx", map[string][][]any{
		"Offices": {{"name", "lat"}, {"A", 1}, {"B", 2}},
		"Depots":  {{"name"}, {"C"}},
		"Empty":   nil,
	}, "Offices", "Depots", "Empty")

	c := &Converter{Log: zerolog.Nop()}
	res, err := c.Run(context.Background(), XLSXSession{}, Inputs{Files: []File{wb}})
	require.NoError(t, err)

	require.Len(t, res.Entries, 2)
	assert.Equal(t, "sites_Offices_converted.csv", res.Entries[0].Name)
	assert.Equal(t, "sites_Depots_converted.csv", res.Entries[1].Name)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, "Conversion successful! Found 3 total rows across all sheets.", res.Message())

	art, err := res.Artifact()
	require.NoError(t, err)
	assert.Equal(t, "sites.zip", art.Name)
	files := unzip(t, art.Data)
	assert.Equal(t, bom+"name\n\"C\"", files["sites_Depots_converted.csv"])
	assert.Contains(t, files, "sites_Offices_converted.csv")
}

func TestRun_XLSXSingleSheet(t *testing.T) {
	wb := workbookFile(t, "one.xlsx", map[string][][]any{
		"Data": {{"name"}, {"A"}},
	}, "Data")

	c := &Converter{Log: zerolog.Nop()}
	res, err := c.Run(context.Background(), XLSXSession{}, Inputs{Files: []File{wb}})
	require.NoError(t, err)
	assert.Empty(t, res.Entries)

	art, err := res.Artifact()
	require.NoError(t, err)
	assert.Equal(t, "one.csv", art.Name)
	assert.Equal(t, bom+"name\n\"A\"", string(art.Data))
}

func TestRun_Cleanup(t *testing.T) {
	cleaner := &fakeCleaner{csv: "a,b\n1,2\n\n3,4\n"}
	c := &Converter{Cleaner: cleaner, Log: zerolog.Nop()}

	res, err := c.Run(context.Background(), CleanupSession{Instructions: "keep ids"}, Inputs{Text: "node 1 2"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, "keep ids", cleaner.got.Instructions)
	assert.Equal(t, "node 1 2", cleaner.got.RawData)

	art, err := res.Artifact()
	require.NoError(t, err)
	assert.Equal(t, "converted_data.csv", art.Name)
}

func TestRun_CleanupErrors(t *testing.T) {
	ctx := context.Background()

	_, err := (&Converter{}).Run(ctx, CleanupSession{}, Inputs{Text: "x"})
	assert.ErrorIs(t, err, ErrNoCleaner)

	boom := errors.New("boom")
	_, err = (&Converter{Cleaner: &fakeCleaner{err: boom}}).Run(ctx, CleanupSession{}, Inputs{Text: "x"})
	assert.ErrorIs(t, err, boom)

	_, err = (&Converter{Cleaner: &fakeCleaner{}}).Run(ctx, CleanupSession{}, Inputs{Text: " \n"})
	assert.EqualError(t, err, "no data provided for cleanup")
}

func TestRun_PDF(t *testing.T) {
	tests := []struct {
		name    string
		res     ai.PDFResult
		artName string
		message string
	}{
		{
			name:    "tables and text",
			res:     ai.PDFResult{Text: "Header", TableRows: []any{"x", "y"}},
			artName: "report.csv",
			message: "Extraction successful! Found 2 table rows and text content.",
		},
		{
			name:    "text only",
			res:     ai.PDFResult{Text: "Header", TableRows: []any{}},
			artName: "report.txt",
			message: "Extraction successful! Found text content.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := &fakeExtractor{res: tt.res}
			c := &Converter{PDF: ext, Log: zerolog.Nop()}

			res, err := c.Run(context.Background(), PDFSession{}, Inputs{Files: []File{
				{Name: "report.pdf", MIME: "application/pdf", Data: []byte("%PDF-1.4")},
			}})
			require.NoError(t, err)
			assert.Equal(t, tt.message, res.Message())
			assert.True(t, strings.HasPrefix(ext.uri, "data:application/pdf;base64,"))

			art, err := res.Artifact()
			require.NoError(t, err)
			assert.Equal(t, tt.artName, art.Name)
		})
	}
}

func TestRun_Coordinates(t *testing.T) {
	c := &Converter{Log: zerolog.Nop()}
	ctx := context.Background()

	res, err := c.Run(ctx, CoordinatesSession{From: coords.DD, To: coords.UTM}, Inputs{Text: "name,lat,lon\nPP,11.5564,104.9282"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Contains(t, strings.SplitN(res.CSV, "\n", 2)[0], coords.FieldEasting)

	_, err = c.Run(ctx, CoordinatesSession{From: coords.UTM, To: coords.UTM}, Inputs{Text: "x"})
	assert.ErrorIs(t, err, coords.ErrSameSystem)

	_, err = c.Run(ctx, CoordinatesSession{From: coords.DMS, To: coords.DD}, Inputs{Text: "lat,lon\n1,2"})
	assert.ErrorIs(t, err, coords.ErrMappingRequired)

	_, err = c.Run(ctx, CoordinatesSession{From: coords.DD, To: coords.DMS}, Inputs{Text: "lat,lon"})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestPreview(t *testing.T) {
	c := &Converter{}

	p, err := c.Preview(Inputs{Files: []File{{Name: "pts.csv", Data: []byte(bom + "Name,Lat DMS,Lon DMS\nA,x,y\n")}}})
	require.NoError(t, err)
	assert.Equal(t, coords.ColumnMapping{Latitude: "Lat DMS", Longitude: "Lon DMS"}, p.Mapping)
	assert.Equal(t, []string{"Name", "Lat DMS", "Lon DMS"}, p.Table.Headers)
	assert.Len(t, p.Table.Rows, 1)

	_, err = c.Preview(Inputs{Text: "Name,Lat"})
	assert.ErrorIs(t, err, coords.ErrNoRows)

	_, err = c.Preview(Inputs{})
	assert.ErrorIs(t, err, coords.ErrNoRows)
}

func TestMachine(t *testing.T) {
	var m Machine
	assert.Equal(t, StateIdle, m.State())

	require.NoError(t, m.Start())
	require.NoError(t, m.Transition(StatePreview))
	require.NoError(t, m.Start())
	require.NoError(t, m.Finish(errors.New("bad")))
	assert.Equal(t, StateError, m.State())
	require.NoError(t, m.Start())
	require.NoError(t, m.Finish(nil))
	assert.Equal(t, StateSuccess, m.State())

	err := m.Transition(StatePreview)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Contains(t, err.Error(), "success to preview")

	m.Reset()
	assert.ErrorIs(t, m.Transition(StateSuccess), ErrIllegalTransition)
}

func TestNewSession(t *testing.T) {
	for _, mode := range Modes {
		s, err := NewSession(mode)
		require.NoError(t, err, mode)
		assert.Equal(t, mode, s.Mode())
	}

	s, err := NewSession(ModeCoordinates)
	require.NoError(t, err)
	assert.Equal(t, CoordinatesSession{From: coords.DD, To: coords.UTM}, s)

	_, err = NewSession("shapefile")
	assert.Error(t, err)

	m, err := ParseMode(" GeoJSON ")
	require.NoError(t, err)
	assert.Equal(t, ModeGeoJSON, m)

	f, err := ParseFormat("KMZ")
	require.NoError(t, err)
	assert.Equal(t, FormatKMZ, f)
	_, err = ParseFormat("shp")
	assert.Error(t, err)
}

func TestArtifact_DeduplicatesEntries(t *testing.T) {
	res := &Result{Files: 2, Sources: []string{"a/x.json", "b/x.json"}, Entries: []Entry{
		{Name: "x_converted.csv", Ext: "csv", Data: []byte("a")},
		{Name: "x_converted.csv", Ext: "csv", Data: []byte("b")},
	}}
	art, err := res.Artifact()
	require.NoError(t, err)
	files := unzip(t, art.Data)
	assert.Equal(t, bom+"a", files["x_converted.csv"])
	assert.Equal(t, bom+"b", files["x_converted_2.csv"])
}

func TestArtifact_RenamedEntryDoesNotCollide(t *testing.T) {
	res := &Result{Files: 3, Entries: []Entry{
		{Name: "a_converted.csv", Ext: "csv", Data: []byte("1")},
		{Name: "a_converted.csv", Ext: "csv", Data: []byte("2")},
		{Name: "a_converted_2.csv", Ext: "csv", Data: []byte("3")},
	}}
	art, err := res.Artifact()
	require.NoError(t, err)
	files := unzip(t, art.Data)
	require.Len(t, files, 3)
	assert.Equal(t, bom+"1", files["a_converted.csv"])
	assert.Equal(t, bom+"2", files["a_converted_2.csv"])
	assert.Equal(t, bom+"3", files["a_converted_2_2.csv"])
}

func TestReport(t *testing.T) {
	c := &Converter{Log: zerolog.Nop()}
	res, err := c.Run(context.Background(), JSONSession{}, Inputs{Files: []File{
		jsonFile("a.json", `[{"x":1}]`),
		jsonFile("b.json", `{bad`),
	}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, res.Report("converted_files.zip")))
	out := buf.String()
	assert.Contains(t, out, "mode: json")
	assert.Contains(t, out, "status: success")
	assert.Contains(t, out, "artifact: converted_files.zip")
	assert.Contains(t, out, "- name: b.json")
	assert.Contains(t, out, "status: failed")

	buf.Reset()
	require.NoError(t, WriteReport(&buf, FailureReport(ModeGPX, errors.New("no GPX file selected"))))
	assert.Contains(t, buf.String(), "status: error")
	assert.NotContains(t, buf.String(), "files:")
}

func TestDecodeText(t *testing.T) {
	assert.Equal(t, "a,b", decodeText([]byte(bom+"a,b")))
	assert.Equal(t, "hi", decodeText([]byte{0xff, 0xfe, 'h', 0, 'i', 0}))
	assert.Equal(t, "plain", decodeText([]byte("plain")))
}

func TestCountDataLines(t *testing.T) {
	assert.Equal(t, 0, countDataLines(""))
	assert.Equal(t, 0, countDataLines("a,b\n"))
	assert.Equal(t, 2, countDataLines("a,b\n1,2\n\n 3,4 \n"))
}

func TestStem(t *testing.T) {
	assert.Equal(t, "sites", Stem("dir/sites.xlsx"))
	assert.Equal(t, "archive.tar", Stem("archive.tar.gz"))
	assert.Equal(t, "noext", Stem("noext"))
}
