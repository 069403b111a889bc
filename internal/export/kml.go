// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders parsed GeoJSON documents as KML, KMZ, GPX or CSV,
// and parsed points as GeoJSON.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pdiddy/geo-converter/internal/tabular"
	"github.com/pdiddy/geo-converter/pkg/types"
)

// FieldOptions names the feature properties used for labels. Empty fields
// fall back to the "name" and "description" properties.
type FieldOptions struct {
	Name        string
	Description string
	Elevation   string
}

// kmlStyle holds one palette entry in KML aabbggrr notation.
type kmlStyle struct {
	Line string
	Poly string
}

// paletteHues are red, green, blue, yellow, cyan and magenta.
var paletteHues = []float64{0, 120, 240, 60, 180, 300}

var kmlStyles = buildStyles()

func buildStyles() []kmlStyle {
	styles := make([]kmlStyle, len(paletteHues))
	for i, h := range paletteHues {
		r, g, b := colorful.Hsv(h, 1, 1).RGB255()
		bgr := fmt.Sprintf("%02x%02x%02x", b, g, r)
		styles[i] = kmlStyle{Line: "ff" + bgr, Poly: "80" + bgr}
	}
	return styles
}

var kmlTmpl = template.Must(template.New("kml").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2" xmlns:gx="http://www.google.com/kml/ext/2.2">
<Document>
{{- range $i, $s := .Styles}}
  <Style id="style{{$i}}">
    <LineStyle>
      <color>{{$s.Line}}</color>
      <width>2</width>
    </LineStyle>
    <PolyStyle>
      <color>{{$s.Poly}}</color>
    </PolyStyle>
    <IconStyle>
      <color>{{$s.Line}}</color>
      <scale>1.1</scale>
      <Icon>
        <href>http://maps.google.com/mapfiles/kml/pushpin/ylw-pushpin.png</href>
      </Icon>
      <hotSpot x="20" y="2" xunits="pixels" yunits="pixels"/>
    </IconStyle>
  </Style>
{{- end}}
{{range .Placemarks}}{{.}}
{{end}}</Document>
</kml>
`))

// KML renders every feature with a geometry as a Placemark. Feature i uses
// style i%6. Polygons keep only their outer ring.
func KML(fc *types.FeatureCollection, opts FieldOptions) string {
	var placemarks []string
	for i, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		name, desc := labels(f, i, opts)
		pm := placemarkKML(f, name, desc, fmt.Sprintf("#style%d", i%len(kmlStyles)), opts.Elevation)
		if pm != "" {
			placemarks = append(placemarks, pm)
		}
	}

	var buf bytes.Buffer
	// The template only ranges over prebuilt strings; it cannot fail.
	_ = kmlTmpl.Execute(&buf, struct {
		Styles     []kmlStyle
		Placemarks []string
	}{kmlStyles, placemarks})
	return buf.String()
}

func placemarkKML(f types.Feature, name, desc, styleURL, elevationField string) string {
	extra, hasExtra := elevationValue(f.Properties, elevationField)
	coords := func(v any) string { return kmlCoordinates(v, extra, hasExtra) }

	var geom string
	c := f.Geometry.Coordinates
	switch f.Geometry.Type {
	case types.GeometryPoint:
		geom = "<Point><coordinates>" + coords(c) + "</coordinates></Point>"
	case types.GeometryLineString:
		geom = "<LineString><coordinates>" + coords(c) + "</coordinates></LineString>"
	case types.GeometryPolygon:
		geom = polygonKML(c, coords)
	case types.GeometryMultiPoint:
		var b strings.Builder
		for _, p := range asList(c) {
			b.WriteString("<Point><coordinates>" + coords(p) + "</coordinates></Point>")
		}
		geom = "<MultiGeometry>" + b.String() + "</MultiGeometry>"
	case types.GeometryMultiLineString:
		var b strings.Builder
		for _, l := range asList(c) {
			b.WriteString("<LineString><coordinates>" + coords(l) + "</coordinates></LineString>")
		}
		geom = "<MultiGeometry>" + b.String() + "</MultiGeometry>"
	case types.GeometryMultiPolygon:
		var b strings.Builder
		for _, p := range asList(c) {
			b.WriteString(polygonKML(p, coords))
		}
		geom = "<MultiGeometry>" + b.String() + "</MultiGeometry>"
	default:
		return ""
	}

	return "<Placemark><name>" + escape(name) + "</name><description>" + escape(desc) +
		"</description><styleUrl>" + styleURL + "</styleUrl>" + geom + "</Placemark>"
}

func polygonKML(rings any, coords func(any) string) string {
	return "<Polygon><outerBoundaryIs><LinearRing><coordinates>" + coords(outerRing(rings)) +
		"</coordinates></LinearRing></outerBoundaryIs></Polygon>"
}

// kmlCoordinates writes a position as "lon,lat[,ele]" and nested arrays as
// space-separated tuples. A 2D position gets elevation appended when set.
func kmlCoordinates(v any, elevation float64, hasElevation bool) string {
	list := asList(v)
	if len(list) > 1 {
		if _, isNum := list[0].(float64); isNum {
			parts := make([]string, 0, len(list)+1)
			for _, c := range list {
				parts = append(parts, tabular.Text(c))
			}
			if hasElevation && len(list) == 2 {
				parts = append(parts, tabular.FormatNumber(elevation))
			}
			return strings.Join(parts, ",")
		}
	}
	parts := make([]string, 0, len(list))
	for _, c := range list {
		if _, nested := c.([]any); nested {
			parts = append(parts, kmlCoordinates(c, elevation, hasElevation))
		} else {
			parts = append(parts, tabular.Text(c))
		}
	}
	return strings.Join(parts, " ")
}

// labels resolves the display name and description of feature i.
func labels(f types.Feature, i int, opts FieldOptions) (name, desc string) {
	props := f.Properties
	nameVal, ok := pick(props, opts.Name, "name")
	if ok {
		name = tabular.Text(nameVal)
	} else {
		name = fmt.Sprintf("Feature %d", i+1)
	}

	descVal, ok := pick(props, opts.Description, "description")
	if !ok {
		return name, ""
	}
	if s, isStr := descVal.(string); isStr {
		return name, s
	}
	data, err := json.MarshalIndent(descVal, "", "  ")
	if err != nil {
		return name, tabular.Text(descVal)
	}
	return name, string(data)
}

// pick returns the first truthy property among field and fallback.
func pick(props *types.Record, field, fallback string) (any, bool) {
	if field != "" {
		if v, ok := props.Get(field); ok && truthy(v) {
			return v, true
		}
	}
	if v, ok := props.Get(fallback); ok && truthy(v) {
		return v, true
	}
	return nil, false
}

// truthy treats nil, "", 0 and false as unset.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0
	case bool:
		return t
	}
	return true
}

// elevationValue reads a numeric elevation property.
func elevationValue(props *types.Record, field string) (float64, bool) {
	if field == "" {
		return 0, false
	}
	v, ok := props.Get(field)
	if !ok || !truthy(v) {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")

func escape(s string) string { return escaper.Replace(s) }
