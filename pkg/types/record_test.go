// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON_KeepsKeyOrder(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"z": 1, "a": {"y": true, "b": null}, "m": [1, "two"]}`))
	require.NoError(t, err)

	rec, ok := v.(*Record)
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a", "m"}, rec.Keys())

	z, _ := rec.Get("z")
	assert.Equal(t, 1.0, z)

	nested, _ := rec.Get("a")
	assert.Equal(t, []string{"y", "b"}, nested.(*Record).Keys())

	arr, _ := rec.Get("m")
	assert.Equal(t, []any{1.0, "two"}, arr)
}

func TestDecodeJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"truncated", `{"a": 1`},
		{"trailing data", `{} {}`},
		{"not json", `hello`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestRecord_MarshalJSON(t *testing.T) {
	r := NewRecord()
	r.Set("b", "x")
	r.Set("a", 2.5)
	inner := NewRecord()
	inner.Set("k", nil)
	r.Set("c", inner)
	r.Set("b", "y")

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"b":"y","a":2.5,"c":{"k":null}}`, string(data))
}

func TestRecord_CloneIsIndependent(t *testing.T) {
	r := NewRecord()
	r.Set("a", "1")
	c := r.Clone()
	c.Set("b", "2")

	assert.Equal(t, []string{"a"}, r.Keys())
	assert.Equal(t, []string{"a", "b"}, c.Keys())
}

func TestGeoPoint_Record(t *testing.T) {
	p := GeoPoint{
		Name:      "Office",
		Longitude: 104.92,
		Latitude:  11.56,
		Elevation: Float(0),
		Type:      PointPlacemark,
	}
	p.Extra.Set("city", "Phnom Penh")

	r := p.Record()
	assert.Equal(t, []string{"name", "latitude", "longitude", "elevation", "type", "city"}, r.Keys())
	ele, ok := r.Get("elevation")
	assert.True(t, ok)
	assert.Equal(t, 0.0, ele)
	assert.Equal(t, "Phnom Penh", r.GetString("city"))
}

func TestPointRecords_SharedLayout(t *testing.T) {
	second := GeoPoint{Name: "B", Latitude: 3, Longitude: 4, Elevation: Float(5), Type: PointWaypoint}
	second.Extra.Set("sym", "Flag")
	recs := PointRecords([]GeoPoint{
		{Latitude: 1, Longitude: 2, Type: PointWaypoint},
		second,
	})

	require.Len(t, recs, 2)
	want := []string{"name", "latitude", "longitude", "elevation", "type"}
	assert.Equal(t, want, recs[0].Keys())
	assert.Equal(t, append(want, "sym"), recs[1].Keys())
	assert.Equal(t, "", recs[0].GetString("name"))
	ele, ok := recs[0].Get("elevation")
	assert.True(t, ok)
	assert.Nil(t, ele)
}

func TestAttrs_SetReplaces(t *testing.T) {
	var a Attrs
	a.Set("k", "1")
	a.Set("j", "2")
	a.Set("k", "3")

	require.Len(t, a, 2)
	v, ok := a.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
}
