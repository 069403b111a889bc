// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ValidationError reports input rejected before any parsing: a file of the
// wrong type or a missing required input.
type ValidationError struct {
	// File is the rejected file name; empty for missing input.
	File string
	// Expected lists the accepted file types when File is set.
	Expected string
	Msg      string
}

func (e *ValidationError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: please upload only %s files", e.File, e.Expected)
	}
	return e.Msg
}

func invalid(msg string) error { return &ValidationError{Msg: msg} }

type gateRule struct {
	exts     []string
	mimes    []string
	textMIME bool
	expected string
}

var gates = map[Mode]gateRule{
	ModeKML:         {exts: []string{".kml", ".kmz"}, expected: ".kml, .kmz"},
	ModeGPX:         {exts: []string{".gpx"}, expected: ".gpx"},
	ModeGeoJSON:     {exts: []string{".geojson", ".json"}, expected: ".geojson, .json"},
	ModeJSON:        {exts: []string{".json"}, expected: ".json"},
	ModePDF:         {mimes: []string{"application/pdf"}, expected: ".pdf"},
	ModeXLSX:        {exts: []string{".xlsx", ".xls"}, expected: ".xlsx, .xls"},
	ModeCleanup:     {exts: []string{".csv", ".txt"}, textMIME: true, expected: ".csv or .txt"},
	ModeCoordinates: {exts: []string{".csv", ".txt"}, textMIME: true, expected: ".csv or .txt"},
}

// Gate checks a file name and MIME type against the types accepted by mode.
// Extensions compare case-insensitively; MIME parameters are ignored.
func Gate(mode Mode, name, mime string) error {
	rule, ok := gates[mode]
	if !ok {
		return fmt.Errorf("unknown mode %q", mode)
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range rule.exts {
		if ext == e {
			return nil
		}
	}
	media := mediaType(mime)
	for _, m := range rule.mimes {
		if media == m {
			return nil
		}
	}
	if rule.textMIME && strings.HasPrefix(media, "text/") {
		return nil
	}
	return &ValidationError{File: name, Expected: rule.expected}
}

// DetectMIME sniffs the content type of data.
func DetectMIME(data []byte) string {
	return mimetype.Detect(data).String()
}

// isZip reports whether data is a zip container, including KMZ.
func isZip(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return true
		}
	}
	return false
}

func mediaType(mime string) string {
	media, _, _ := strings.Cut(mime, ";")
	return strings.ToLower(strings.TrimSpace(media))
}
