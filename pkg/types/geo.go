// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data model shared by the parsers, exporters and
// the conversion orchestrator: geographic points, ordered records, GeoJSON
// documents and configuration.
package types

import (
	"fmt"
	"strconv"
)

// PointType records which source construct produced a GeoPoint.
type PointType string

const (
	PointWaypoint   PointType = "Waypoint"
	PointTrackpoint PointType = "Trackpoint"
	PointRoutepoint PointType = "Routepoint"
	PointPlacemark  PointType = "Placemark"
)

// Attr is one extra key/value pair lifted from source metadata.
type Attr struct {
	Key   string
	Value string
}

// Attrs is an ordered set of extra attributes. Keys are unique.
type Attrs []Attr

// Set replaces the value of an existing key or appends a new pair.
func (a *Attrs) Set(key, value string) {
	for i := range *a {
		if (*a)[i].Key == key {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Attr{Key: key, Value: value})
}

// Get returns the value stored under key.
func (a Attrs) Get(key string) (string, bool) {
	for _, kv := range a {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// GeoPoint is a normalized geographic record produced by the KML and GPX
// parsers. Latitude and Longitude are decimal degrees.
type GeoPoint struct {
	Name        string
	Description string
	Longitude   float64
	Latitude    float64
	// Elevation is in meters; nil when the source carried none.
	Elevation *float64
	Timestamp string
	Type      PointType
	Extra     Attrs
}

// Record flattens the point into a row. Fixed fields come first; empty
// optional fields are left out. Extra attributes follow in source order.
func (p GeoPoint) Record() *Record { return p.record(p.columns()) }

// pointColumns flags which optional fixed columns a row carries.
type pointColumns struct {
	name, description, elevation, timestamp bool
}

func (p GeoPoint) columns() pointColumns {
	return pointColumns{
		name:        p.Name != "",
		description: p.Description != "",
		elevation:   p.Elevation != nil,
		timestamp:   p.Timestamp != "",
	}
}

func (p GeoPoint) record(cols pointColumns) *Record {
	r := NewRecord()
	if cols.name {
		r.Set("name", p.Name)
	}
	if cols.description {
		r.Set("description", p.Description)
	}
	r.Set("latitude", p.Latitude)
	r.Set("longitude", p.Longitude)
	if cols.elevation {
		if p.Elevation != nil {
			r.Set("elevation", *p.Elevation)
		} else {
			r.Set("elevation", nil)
		}
	}
	if cols.timestamp {
		r.Set("timestamp", p.Timestamp)
	}
	r.Set("type", string(p.Type))
	for _, kv := range p.Extra {
		r.Set(kv.Key, kv.Value)
	}
	return r
}

// PointRecords flattens points to rows sharing one column layout: name,
// description, latitude, longitude, elevation, timestamp, type, then the
// union of extra attributes. An optional fixed column is kept when any
// point has it and is blank in the rows that lack it.
func PointRecords(points []GeoPoint) []*Record {
	var cols pointColumns
	for _, p := range points {
		c := p.columns()
		cols.name = cols.name || c.name
		cols.description = cols.description || c.description
		cols.elevation = cols.elevation || c.elevation
		cols.timestamp = cols.timestamp || c.timestamp
	}
	recs := make([]*Record, len(points))
	for i, p := range points {
		recs[i] = p.record(cols)
	}
	return recs
}

// Float returns a pointer to f. Used for optional elevations.
func Float(f float64) *float64 { return &f }

// UTM is a Universal Transverse Mercator position.
type UTM struct {
	Easting    float64
	Northing   float64
	Zone       int
	Hemisphere byte
}

// EastingString formats the easting to millimeter precision.
func (u UTM) EastingString() string { return strconv.FormatFloat(u.Easting, 'f', 3, 64) }

// NorthingString formats the northing to millimeter precision.
func (u UTM) NorthingString() string { return strconv.FormatFloat(u.Northing, 'f', 3, 64) }

func (u UTM) String() string {
	return fmt.Sprintf("%d%c %s %s", u.Zone, u.Hemisphere, u.EastingString(), u.NorthingString())
}
