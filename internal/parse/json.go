// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"fmt"

	"github.com/pdiddy/geo-converter/pkg/types"
)

// GeoJSON parses a FeatureCollection and returns it together with every
// property key seen across its features, in first-seen order.
func GeoJSON(data []byte) (*types.FeatureCollection, []string, error) {
	v, err := types.DecodeJSON(data)
	if err != nil {
		return nil, nil, &ParseError{Format: "geojson", Reason: ReasonMalformed, Msg: "invalid GeoJSON format", Err: err}
	}

	top, ok := v.(*types.Record)
	if !ok || top.GetString("type") != "FeatureCollection" {
		return nil, nil, shapeError()
	}
	rawFeatures, _ := top.Get("features")
	list, ok := rawFeatures.([]any)
	if !ok {
		return nil, nil, shapeError()
	}

	fc := &types.FeatureCollection{Features: make([]types.Feature, 0, len(list))}
	var keys []string
	seen := make(map[string]bool)

	for _, raw := range list {
		f := types.Feature{Properties: types.NewRecord()}
		if obj, ok := raw.(*types.Record); ok {
			if props, ok := getRecord(obj, "properties"); ok {
				f.Properties = props
			}
			if geom, ok := getRecord(obj, "geometry"); ok {
				coords, _ := geom.Get("coordinates")
				f.Geometry = &types.Geometry{Type: geom.GetString("type"), Coordinates: coords}
			}
		}
		for _, k := range f.Properties.Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
		fc.Features = append(fc.Features, f)
	}
	return fc, keys, nil
}

func shapeError() error {
	return &ParseError{Format: "geojson", Reason: ReasonShape, Msg: "invalid GeoJSON: must be a FeatureCollection"}
}

func getRecord(r *types.Record, key string) (*types.Record, bool) {
	v, _ := r.Get(key)
	rec, ok := v.(*types.Record)
	return rec, ok && rec != nil
}

// JSON parses generic JSON. A single object becomes a one-element slice;
// an array yields its elements.
func JSON(data []byte) ([]any, error) {
	v, err := types.DecodeJSON(data)
	if err != nil {
		return nil, &ParseError{Format: "json", Reason: ReasonMalformed, Msg: "invalid JSON format", Err: err}
	}
	switch t := v.(type) {
	case []any:
		return t, nil
	case *types.Record:
		return []any{t}, nil
	}
	return nil, &ParseError{
		Format: "json",
		Reason: ReasonShape,
		Msg:    fmt.Sprintf("JSON data must be an array of objects or a single object, got %s", kindOf(v)),
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	}
	return fmt.Sprintf("%T", v)
}
