// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/pdiddy/geo-converter/pkg/types"
)

// Creator is written to the creator attribute of generated GPX files.
const Creator = "Geo-Converter"

// GPX renders points as waypoints and lines or polygon outer rings as
// single-segment tracks. Multi-part geometries get "name - Part k" labels.
func GPX(fc *types.FeatureCollection, opts FieldOptions) (string, error) {
	doc := gpx.GPX{Version: "1.1", Creator: Creator}

	for i, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		name, desc := labels(f, i, opts)
		ele, hasEle := elevationValue(f.Properties, opts.Elevation)
		point := func(v any) (gpx.GPXPoint, bool) { return gpxPoint(v, ele, hasEle) }

		c := f.Geometry.Coordinates
		switch f.Geometry.Type {
		case types.GeometryPoint:
			if p, ok := point(c); ok {
				p.Name, p.Description = name, desc
				doc.Waypoints = append(doc.Waypoints, p)
			}
		case types.GeometryLineString:
			doc.Tracks = append(doc.Tracks, track(name, desc, c, point))
		case types.GeometryPolygon:
			doc.Tracks = append(doc.Tracks, track(name, desc, outerRing(c), point))
		case types.GeometryMultiPoint:
			for k, pos := range asList(c) {
				if p, ok := point(pos); ok {
					p.Name, p.Description = partName(name, k), desc
					doc.Waypoints = append(doc.Waypoints, p)
				}
			}
		case types.GeometryMultiLineString:
			for k, line := range asList(c) {
				doc.Tracks = append(doc.Tracks, track(partName(name, k), desc, line, point))
			}
		case types.GeometryMultiPolygon:
			for k, poly := range asList(c) {
				doc.Tracks = append(doc.Tracks, track(partName(name, k), desc, outerRing(poly), point))
			}
		}
	}

	data, err := doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return "", fmt.Errorf("encoding GPX: %w", err)
	}
	return string(data), nil
}

func track(name, desc string, coords any, point func(any) (gpx.GPXPoint, bool)) gpx.GPXTrack {
	var seg gpx.GPXTrackSegment
	for _, pos := range asList(coords) {
		if p, ok := point(pos); ok {
			seg.Points = append(seg.Points, p)
		}
	}
	return gpx.GPXTrack{Name: name, Description: desc, Segments: []gpx.GPXTrackSegment{seg}}
}

// gpxPoint reads [lon, lat, ele?]. The elevation property wins over the
// third coordinate.
func gpxPoint(v any, ele float64, hasEle bool) (gpx.GPXPoint, bool) {
	pos, ok := types.Position(v)
	if !ok || len(pos) < 2 {
		return gpx.GPXPoint{}, false
	}
	p := gpx.GPXPoint{Point: gpx.Point{Latitude: pos[1], Longitude: pos[0]}}
	switch {
	case hasEle:
		p.Elevation = *gpx.NewNullableFloat64(ele)
	case len(pos) > 2:
		p.Elevation = *gpx.NewNullableFloat64(pos[2])
	}
	return p, true
}

func outerRing(rings any) any {
	if list := asList(rings); len(list) > 0 {
		return list[0]
	}
	return nil
}

func partName(name string, k int) string {
	return fmt.Sprintf("%s - Part %d", name, k+1)
}
