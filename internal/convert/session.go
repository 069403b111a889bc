// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"strings"

	"github.com/pdiddy/geo-converter/internal/coords"
	"github.com/pdiddy/geo-converter/internal/export"
)

// Mode selects the conversion performed by a run.
type Mode string

const (
	ModeKML         Mode = "kml"
	ModeGPX         Mode = "gpx"
	ModeGeoJSON     Mode = "geojson"
	ModeJSON        Mode = "json"
	ModePDF         Mode = "pdf"
	ModeCleanup     Mode = "cleanup"
	ModeXLSX        Mode = "xlsx"
	ModeCoordinates Mode = "coordinates"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeKML, ModeGPX, ModeGeoJSON, ModeJSON, ModePDF, ModeCleanup, ModeXLSX, ModeCoordinates}

// ParseMode accepts a mode name in any case.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Format is an output encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatGPX     Format = "gpx"
	FormatKML     Format = "kml"
	FormatKMZ     Format = "kmz"
	FormatGeoJSON Format = "geojson"
)

// ParseFormat accepts csv, gpx, kml, kmz or geojson.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatGPX, FormatKML, FormatKMZ, FormatGeoJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Session carries the options valid for one mode. A fresh value is built
// for every run; each concrete type belongs to exactly one mode.
type Session interface {
	Mode() Mode
}

// KMLSession converts KML or KMZ placemarks. UseAI sends the document text
// to the cleanup service instead of the structural parser. Output is csv
// or geojson.
type KMLSession struct {
	UseAI  bool
	Output Format
}

// GPXSession converts GPX waypoints, track points and route points. Output
// is csv or geojson.
type GPXSession struct {
	Output Format
}

// GeoJSONSession converts a FeatureCollection to Format (csv, gpx, kml or
// kmz) using Fields for labels.
type GeoJSONSession struct {
	Fields export.FieldOptions
	Format Format
}

// JSONSession flattens JSON objects to CSV.
type JSONSession struct{}

// PDFSession extracts text and table rows from a PDF.
type PDFSession struct{}

// CleanupSession sends free text to the cleanup service.
type CleanupSession struct {
	Instructions string
}

// XLSXSession converts every non-empty worksheet to CSV.
type XLSXSession struct{}

// CoordinatesSession converts coordinate columns between systems. Mapping
// is required when From is DMS.
type CoordinatesSession struct {
	From    coords.System
	To      coords.System
	Mapping coords.ColumnMapping
}

func (KMLSession) Mode() Mode         { return ModeKML }
func (GPXSession) Mode() Mode         { return ModeGPX }
func (GeoJSONSession) Mode() Mode     { return ModeGeoJSON }
func (JSONSession) Mode() Mode        { return ModeJSON }
func (PDFSession) Mode() Mode         { return ModePDF }
func (CleanupSession) Mode() Mode     { return ModeCleanup }
func (XLSXSession) Mode() Mode        { return ModeXLSX }
func (CoordinatesSession) Mode() Mode { return ModeCoordinates }

// NewSession returns the default session for mode.
func NewSession(mode Mode) (Session, error) {
	switch mode {
	case ModeKML:
		return KMLSession{Output: FormatCSV}, nil
	case ModeGPX:
		return GPXSession{Output: FormatCSV}, nil
	case ModeGeoJSON:
		return GeoJSONSession{Format: FormatCSV}, nil
	case ModeJSON:
		return JSONSession{}, nil
	case ModePDF:
		return PDFSession{}, nil
	case ModeCleanup:
		return CleanupSession{}, nil
	case ModeXLSX:
		return XLSXSession{}, nil
	case ModeCoordinates:
		return CoordinatesSession{From: coords.DD, To: coords.UTM}, nil
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}

// usesCleanup reports whether the session is served by the cleanup service.
func usesCleanup(s Session) bool {
	switch s := s.(type) {
	case CleanupSession:
		return true
	case KMLSession:
		return s.UseAI
	}
	return false
}
