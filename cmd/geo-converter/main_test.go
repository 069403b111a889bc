// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/geo-converter/internal/ai"
	"github.com/pdiddy/geo-converter/internal/convert"
	"github.com/pdiddy/geo-converter/pkg/types"
)

// useMemFs swaps appFs for an in-memory filesystem for the test.
func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	old := appFs
	appFs = fs
	t.Cleanup(func() { appFs = old })
	return fs
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestReadInputs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "data/a.json", []byte(`[1]`), 0o644))

	in, err := readInputs(fs, []string{"data/a.json"}, "ignored", nil)
	require.NoError(t, err)
	require.Len(t, in.Files, 1)
	assert.Equal(t, "a.json", in.Files[0].Name)
	assert.Equal(t, []byte(`[1]`), in.Files[0].Data)
	assert.Empty(t, in.Text)

	in, err = readInputs(fs, nil, "lat,lon", nil)
	require.NoError(t, err)
	assert.Equal(t, "lat,lon", in.Text)

	in, err = readInputs(fs, nil, "-", strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", in.Text)

	_, err = readInputs(fs, []string{"missing.json"}, "", nil)
	assert.ErrorContains(t, err, "reading missing.json")
}

func TestWriteArtifact(t *testing.T) {
	fs := afero.NewMemMapFs()

	path, err := writeArtifact(fs, "out/nested", convert.Artifact{Name: "a.csv", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "out/nested/a.csv", path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	path, err = writeArtifact(fs, "", convert.Artifact{Name: "b.csv"})
	require.NoError(t, err)
	assert.Equal(t, "b.csv", path)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(&buf, "info", "json")
	require.NoError(t, err)
	l.Debug().Msg("hidden")
	l.Info().Str("file", "a.kml").Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"file":"a.kml"`)

	_, err = newLogger(&buf, "loud", "json")
	assert.Error(t, err)
	_, err = newLogger(&buf, "", "xml")
	assert.Error(t, err)
}

func TestNewConverter(t *testing.T) {
	c := newConverter(types.Config{Batch: types.BatchConfig{Concurrency: 4}})
	assert.Nil(t, c.Cleaner)
	assert.Nil(t, c.PDF)
	assert.Equal(t, 4, c.Concurrency)

	c = newConverter(types.Config{AI: types.AIConfig{APIKey: "k"}})
	assert.IsType(t, &ai.ClaudeBackend{}, c.Cleaner)
	assert.IsType(t, &ai.ClaudeBackend{}, c.PDF)

	c = newConverter(types.Config{AI: types.AIConfig{APIKey: "k", PDFBackend: types.PDFBackendText}})
	assert.IsType(t, ai.TextBackend{}, c.PDF)
}

func TestJSONCommand_Batch(t *testing.T) {
	fs := useMemFs(t)
	require.NoError(t, afero.WriteFile(fs, "in/a.json", []byte(`[{"x":1}]`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "in/b.json", []byte(`{bad`), 0o644))

	out, err := runRoot(t, "json", "in/a.json", "in/b.json", "--out", "out", "--report", "report.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Batch conversion successful! Processed 2 files with a total of 1 rows.")
	assert.Contains(t, out, "skipped b.json")

	data, err := afero.ReadFile(fs, "out/converted_files.zip")
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "a_converted.csv", zr.File[0].Name)

	report, err := afero.ReadFile(fs, "report.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(report), "status: failed")
	assert.Contains(t, string(report), "artifact: out/converted_files.zip")
}

func TestCoordsCommand_PromptsForDMSColumns(t *testing.T) {
	fs := useMemFs(t)
	require.NoError(t, afero.WriteFile(fs, "pts.csv",
		[]byte("site,lat_dms,lon_dms\nA,N13° 35' 19.862\",E104° 55' 12\"\n"), 0o644))

	var asked []string
	old := askColumn
	askColumn = func(message string, headers []string, def string) (string, error) {
		asked = append(asked, message+"="+def)
		return def, nil
	}
	t.Cleanup(func() { askColumn = old })

	out, err := runRoot(t, "coords", "pts.csv", "--from", "dms", "--to", "dd", "--out", "out")
	require.NoError(t, err)
	assert.Equal(t, []string{"Latitude column=lat_dms", "Longitude column=lon_dms"}, asked)
	assert.Contains(t, out, convert.PreviewMessage)
	assert.Contains(t, out, "Conversion successful! Found 1 rows.")

	data, err := afero.ReadFile(fs, "out/pts.csv")
	require.NoError(t, err)
	assert.Contains(t, string(data), "decimal_latitude")
}

func TestGeoJSONCommand_RejectsGeoJSONOutput(t *testing.T) {
	useMemFs(t)
	_, err := runRoot(t, "geojson", "--format", "geojson", "--text", "{}")
	assert.ErrorContains(t, err, "not supported")
}

func TestVersion(t *testing.T) {
	out, err := runRoot(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "geo-converter dev\n", out)
}
