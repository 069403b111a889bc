// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"strconv"
	"strings"

	"github.com/pdiddy/geo-converter/pkg/types"
)

// gpxKinds lists the GPX point elements in output order.
var gpxKinds = []struct {
	local string
	kind  types.PointType
}{
	{"wpt", types.PointWaypoint},
	{"trkpt", types.PointTrackpoint},
	{"rtept", types.PointRoutepoint},
}

// GPX parses waypoints, then track points, then route points. Elements
// without a usable lat/lon pair are skipped.
func GPX(data []byte) ([]types.GeoPoint, error) {
	doc, err := parseXML(data)
	if err != nil {
		return nil, &ParseError{Format: "gpx", Reason: ReasonMalformed, Msg: "invalid GPX format", Err: err}
	}

	var points []types.GeoPoint
	for _, k := range gpxKinds {
		for _, el := range doc.find(byLocal(k.local)) {
			p, ok := gpxPoint(el, k.kind)
			if ok {
				points = append(points, p)
			}
		}
	}
	return points, nil
}

func gpxPoint(el *node, kind types.PointType) (types.GeoPoint, bool) {
	latText, okLat := el.attr("lat")
	lonText, okLon := el.attr("lon")
	if !okLat || !okLon {
		return types.GeoPoint{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil || !validLat(lat) {
		return types.GeoPoint{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonText), 64)
	if err != nil || !validLon(lon) {
		return types.GeoPoint{}, false
	}

	p := types.GeoPoint{Latitude: lat, Longitude: lon, Type: kind}
	if ele := childText(el, "ele"); ele != "" {
		if f, err := strconv.ParseFloat(ele, 64); err == nil {
			p.Elevation = &f
		}
	}
	p.Name = childText(el, "name")
	p.Description = childText(el, "desc")
	p.Timestamp = childText(el, "time")
	return p, true
}

func childText(el *node, local string) string {
	if c := el.first(byLocal(local)); c != nil {
		return strings.TrimSpace(c.textContent())
	}
	return ""
}
