// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/pdiddy/geo-converter/internal/tabular"
	"github.com/pdiddy/geo-converter/pkg/types"
)

// CSV flattens features to rows of their properties. Point features also
// get longitude, latitude and, when present, elevation columns.
func CSV(fc *types.FeatureCollection) string {
	rows := make([]any, 0, len(fc.Features))
	for _, f := range fc.Features {
		rows = append(rows, Flatten(f))
	}
	return tabular.ToCSV(rows)
}

// Flatten copies a feature's properties and appends Point coordinates.
func Flatten(f types.Feature) *types.Record {
	r := f.Properties.Clone()
	if f.Geometry == nil || f.Geometry.Type != types.GeometryPoint {
		return r
	}
	pos, ok := types.Position(f.Geometry.Coordinates)
	if !ok || len(pos) < 2 {
		return r
	}
	r.Set("longitude", pos[0])
	r.Set("latitude", pos[1])
	if len(pos) > 2 {
		r.Set("elevation", pos[2])
	}
	return r
}

// PointsGeoJSON renders parsed points as a FeatureCollection of Point
// features carrying the point's fields as properties.
func PointsGeoJSON(points []types.GeoPoint) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, p := range points {
		f := geojson.NewFeature(orb.Point{p.Longitude, p.Latitude})
		if p.Name != "" {
			f.Properties["name"] = p.Name
		}
		if p.Description != "" {
			f.Properties["description"] = p.Description
		}
		if p.Elevation != nil {
			f.Properties["elevation"] = *p.Elevation
		}
		if p.Timestamp != "" {
			f.Properties["timestamp"] = p.Timestamp
		}
		f.Properties["type"] = string(p.Type)
		for _, kv := range p.Extra {
			f.Properties[kv.Key] = kv.Value
		}
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding GeoJSON: %w", err)
	}
	return data, nil
}
