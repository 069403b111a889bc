// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Geometry type names as they appear in GeoJSON.
const (
	GeometryPoint           = "Point"
	GeometryLineString      = "LineString"
	GeometryPolygon         = "Polygon"
	GeometryMultiPoint      = "MultiPoint"
	GeometryMultiLineString = "MultiLineString"
	GeometryMultiPolygon    = "MultiPolygon"
)

// FeatureCollection is a parsed GeoJSON document.
type FeatureCollection struct {
	Features []Feature
}

// Feature is one GeoJSON feature. Geometry is nil for features without one;
// Properties is never nil after parsing.
type Feature struct {
	Geometry   *Geometry
	Properties *Record
}

// Geometry holds a geometry type and its coordinates as decoded JSON:
// a position is []any of float64, deeper geometries nest further.
type Geometry struct {
	Type        string
	Coordinates any
}

// Position converts a decoded position into floats. Non-numeric members
// make ok false.
func Position(v any) (pos []float64, ok bool) {
	arr, isArr := v.([]any)
	if !isArr {
		return nil, false
	}
	pos = make([]float64, 0, len(arr))
	for _, c := range arr {
		f, isNum := c.(float64)
		if !isNum {
			return nil, false
		}
		pos = append(pos, f)
	}
	return pos, true
}

// Positions converts a decoded array of positions.
func Positions(v any) [][]float64 {
	arr, _ := v.([]any)
	var out [][]float64
	for _, p := range arr {
		if pos, ok := Position(p); ok {
			out = append(out, pos)
		}
	}
	return out
}
