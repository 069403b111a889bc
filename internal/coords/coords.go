// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package coords applies the geodesy conversions to tabular rows. Each
// conversion copies the input rows and appends result columns; source
// columns are never removed or changed.
package coords

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/geo-converter/internal/geodesy"
	"github.com/pdiddy/geo-converter/internal/tabular"
	"github.com/pdiddy/geo-converter/pkg/types"
)

// System is a coordinate representation.
type System string

const (
	DD  System = "dd"
	DMS System = "dms"
	UTM System = "utm"
)

// ParseSystem accepts dd, dms or utm in any case.
func ParseSystem(s string) (System, error) {
	switch sys := System(strings.ToLower(strings.TrimSpace(s))); sys {
	case DD, DMS, UTM:
		return sys, nil
	}
	return "", fmt.Errorf("unknown coordinate system %q (want dd, dms or utm)", s)
}

// Columns added by the conversions.
const (
	FieldError            = "error"
	FieldDecimalLatitude  = "decimal_latitude"
	FieldDecimalLongitude = "decimal_longitude"
	FieldDMSLatitude      = "dms_latitude"
	FieldDMSLongitude     = "dms_longitude"
	FieldLatitude         = "latitude"
	FieldLongitude        = "longitude"
	FieldEasting          = "easting"
	FieldNorthing         = "northing"
	FieldZone             = "zone"
	FieldHemisphere       = "hemisphere"
)

// Row-level error texts.
const (
	msgInvalidDMS         = "invalid DMS format"
	msgInvalidCoordinates = "invalid coordinates"
	msgInvalidUTM         = "invalid UTM parameters"
)

var (
	// ErrMappingRequired is returned for DMS input without both columns chosen.
	ErrMappingRequired = errors.New("please select both latitude and longitude columns")
	// ErrSameSystem is returned when input and output systems are equal.
	ErrSameSystem = errors.New("input and output coordinate systems must differ")
	// ErrNoRows is returned when the input has a header but no data.
	ErrNoRows = errors.New("could not parse any data from the input")
)

// ColumnMapping names the columns holding DMS latitude and longitude text.
type ColumnMapping struct {
	Latitude  string
	Longitude string
}

// Complete reports whether both columns are set.
func (m ColumnMapping) Complete() bool {
	return m.Latitude != "" && m.Longitude != ""
}

// ColumnError reports required columns that could not be found.
type ColumnError struct {
	Required []string
	Missing  []string
}

func (e *ColumnError) Error() string {
	quoted := make([]string, len(e.Required))
	for i, r := range e.Required {
		quoted[i] = "'" + r + "'"
	}
	var list string
	switch len(quoted) {
	case 1:
		list = quoted[0]
	case 2:
		list = quoted[0] + " and " + quoted[1]
	default:
		list = strings.Join(quoted[:len(quoted)-1], ", ") + ", and " + quoted[len(quoted)-1]
	}
	return fmt.Sprintf("CSV must contain %s headers (missing %s)", list, strings.Join(e.Missing, ", "))
}

// Convert runs one directed conversion over a parsed table. DMS input needs
// a complete mapping; the other inputs find their columns by header name.
func Convert(from, to System, table tabular.Table, mapping ColumnMapping) ([]*types.Record, error) {
	if from == to {
		return nil, ErrSameSystem
	}

	switch from {
	case DMS:
		if !mapping.Complete() {
			return nil, ErrMappingRequired
		}
		if err := requireHeaders(table.Headers, mapping.Latitude, mapping.Longitude); err != nil {
			return nil, err
		}
		switch to {
		case DD:
			return mapRows(table.Rows, func(r *types.Record) { dmsToDD(r, mapping) }), nil
		case UTM:
			return mapRows(table.Rows, func(r *types.Record) { dmsToUTM(r, mapping) }), nil
		}

	case DD:
		cols, err := detect(table.Headers, "lat", "lon")
		if err != nil {
			return nil, err
		}
		switch to {
		case UTM:
			return mapRows(table.Rows, func(r *types.Record) { ddToUTM(r, cols[0], cols[1]) }), nil
		case DMS:
			return mapRows(table.Rows, func(r *types.Record) { ddToDMS(r, cols[0], cols[1]) }), nil
		}

	case UTM:
		cols, err := detect(table.Headers, "easting", "northing", "zone", "hemisphere")
		if err != nil {
			return nil, err
		}
		switch to {
		case DD:
			return mapRows(table.Rows, func(r *types.Record) { utmToDD(r, cols) }), nil
		case DMS:
			return mapRows(table.Rows, func(r *types.Record) { utmToDMS(r, cols) }), nil
		}
	}
	return nil, fmt.Errorf("unsupported conversion %s to %s", from, to)
}

// DetectDMSColumns suggests a mapping from the first headers containing
// "lat" and "lon". Either field is empty when nothing matches.
func DetectDMSColumns(headers []string) ColumnMapping {
	var m ColumnMapping
	if i := findHeader(headers, "lat"); i >= 0 {
		m.Latitude = headers[i]
	}
	if i := findHeader(headers, "lon"); i >= 0 {
		m.Longitude = headers[i]
	}
	return m
}

func mapRows(rows []*types.Record, fn func(*types.Record)) []*types.Record {
	out := make([]*types.Record, len(rows))
	for i, r := range rows {
		c := r.Clone()
		fn(c)
		out[i] = c
	}
	return out
}

func findHeader(headers []string, substr string) int {
	for i, h := range headers {
		if strings.Contains(strings.ToLower(h), substr) {
			return i
		}
	}
	return -1
}

func detect(headers []string, substrs ...string) ([]string, error) {
	cols := make([]string, len(substrs))
	var missing []string
	for i, s := range substrs {
		idx := findHeader(headers, s)
		if idx < 0 {
			missing = append(missing, s)
			continue
		}
		cols[i] = headers[idx]
	}
	if len(missing) > 0 {
		return nil, &ColumnError{Required: substrs, Missing: missing}
	}
	return cols, nil
}

func requireHeaders(headers []string, cols ...string) error {
	var missing []string
	for _, c := range cols {
		found := false
		for _, h := range headers {
			if h == c {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &ColumnError{Required: cols, Missing: missing}
	}
	return nil
}

func cell(r *types.Record, col string) string {
	v, _ := r.Get(col)
	return strings.TrimSpace(tabular.Text(v))
}

func number(r *types.Record, col string) (float64, bool) {
	f, err := strconv.ParseFloat(cell(r, col), 64)
	return f, err == nil
}

func dmsToDD(r *types.Record, m ColumnMapping) {
	lat, okLat := geodesy.DMSToDD(cell(r, m.Latitude))
	lon, okLon := geodesy.DMSToDD(cell(r, m.Longitude))
	if !okLat || !okLon {
		r.Set(FieldDecimalLatitude, nil)
		r.Set(FieldDecimalLongitude, nil)
		r.Set(FieldError, msgInvalidDMS)
		return
	}
	r.Set(FieldDecimalLatitude, lat)
	r.Set(FieldDecimalLongitude, lon)
}

func dmsToUTM(r *types.Record, m ColumnMapping) {
	lat, okLat := geodesy.DMSToDD(cell(r, m.Latitude))
	lon, okLon := geodesy.DMSToDD(cell(r, m.Longitude))
	if !okLat || !okLon {
		r.Set(FieldError, msgInvalidDMS)
		return
	}
	setUTM(r, lat, lon)
}

func ddToUTM(r *types.Record, latCol, lonCol string) {
	lat, okLat := number(r, latCol)
	lon, okLon := number(r, lonCol)
	if !okLat || !okLon {
		r.Set(FieldError, msgInvalidCoordinates)
		return
	}
	setUTM(r, lat, lon)
}

func setUTM(r *types.Record, lat, lon float64) {
	u, err := geodesy.DDToUTM(lat, lon)
	if err != nil {
		r.Set(FieldError, msgInvalidCoordinates)
		return
	}
	r.Set(FieldEasting, u.EastingString())
	r.Set(FieldNorthing, u.NorthingString())
	r.Set(FieldZone, u.Zone)
	r.Set(FieldHemisphere, string(u.Hemisphere))
}

func ddToDMS(r *types.Record, latCol, lonCol string) {
	lat, okLat := number(r, latCol)
	lon, okLon := number(r, lonCol)
	setDMS(r, lat, okLat, lon, okLon)
}

func setDMS(r *types.Record, lat float64, okLat bool, lon float64, okLon bool) {
	var latText, lonText any
	if okLat {
		if s, ok := geodesy.DDToDMS(lat, false); ok {
			latText = s
		}
	}
	if okLon {
		if s, ok := geodesy.DDToDMS(lon, true); ok {
			lonText = s
		}
	}
	r.Set(FieldDMSLatitude, latText)
	r.Set(FieldDMSLongitude, lonText)
	if latText == nil || lonText == nil {
		r.Set(FieldError, msgInvalidCoordinates)
	}
}

// utmInput reads easting, northing, zone and hemisphere from the detected
// columns. The zone accepts a trailing band letter ("48P").
func utmInput(r *types.Record, cols []string) (geodesy.LatLon, error) {
	easting, okE := number(r, cols[0])
	northing, okN := number(r, cols[1])
	zone, okZ := leadingInt(cell(r, cols[2]))
	hemi := strings.ToUpper(cell(r, cols[3]))
	if !okE || !okN || !okZ || hemi == "" {
		return geodesy.LatLon{}, geodesy.ErrInvalidUTM
	}
	return geodesy.UTMToDD(easting, northing, zone, hemi[0])
}

func utmToDD(r *types.Record, cols []string) {
	p, err := utmInput(r, cols)
	if err != nil {
		r.Set(FieldError, msgInvalidUTM)
		return
	}
	r.Set(FieldLatitude, p.LatitudeString())
	r.Set(FieldLongitude, p.LongitudeString())
}

func utmToDMS(r *types.Record, cols []string) {
	p, err := utmInput(r, cols)
	if err != nil {
		r.Set(FieldError, msgInvalidUTM)
		return
	}
	setDMS(r, p.Latitude, true, p.Longitude, true)
}

func leadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	return n, err == nil
}
