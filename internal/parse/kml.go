// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse turns source documents (KML, KMZ, GPX, GeoJSON, JSON and
// XLSX) into geographic points or generic records. Parsers are pure: they
// take bytes and return values or a descriptive error.
package parse

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/geo-converter/pkg/types"
)

// KML namespace URIs recognized by the placemark lookup.
const (
	NamespaceOGC    = "http://www.opengis.net/kml/2.2"
	NamespaceGoogle = "http://earth.google.com/kml/2.0"
)

// Strategy identifies how placemarks were located in a KML document.
type Strategy int

const (
	// StrategyNone means no strategy produced anything.
	StrategyNone Strategy = iota
	// StrategyTagName matches elements written exactly as <Placemark>.
	StrategyTagName
	// StrategyLowerCase matches <placemark>.
	StrategyLowerCase
	// StrategyPrefixed matches <kml:Placemark>.
	StrategyPrefixed
	// StrategyOGCNamespace matches Placemark in the OGC KML 2.2 namespace.
	StrategyOGCNamespace
	// StrategyGoogleNamespace matches Placemark in the Google KML 2.0 namespace.
	StrategyGoogleNamespace
	// StrategyCoordinateScan synthesizes points from bare <coordinates>.
	StrategyCoordinateScan
)

var strategyNames = map[Strategy]string{
	StrategyNone:            "none",
	StrategyTagName:         "tag-name",
	StrategyLowerCase:       "lower-case",
	StrategyPrefixed:        "prefixed",
	StrategyOGCNamespace:    "ogc-namespace",
	StrategyGoogleNamespace: "google-namespace",
	StrategyCoordinateScan:  "coordinate-scan",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// placemarkStrategies is the lookup order for Placemark elements.
var placemarkStrategies = []Strategy{
	StrategyTagName,
	StrategyLowerCase,
	StrategyPrefixed,
	StrategyOGCNamespace,
	StrategyGoogleNamespace,
}

// matcher returns the element predicate for a placemark strategy.
func (s Strategy) matcher() func(*node) bool {
	switch s {
	case StrategyTagName:
		return byQualified("Placemark")
	case StrategyLowerCase:
		return byQualified("placemark")
	case StrategyPrefixed:
		return byQualified("kml:Placemark")
	case StrategyOGCNamespace:
		return byNamespace(NamespaceOGC, "Placemark")
	case StrategyGoogleNamespace:
		return byNamespace(NamespaceGoogle, "Placemark")
	}
	return func(*node) bool { return false }
}

// coordinateSelectors is the lookup order used by the coordinate scan.
var coordinateSelectors = []func(*node) bool{
	byQualified("coordinates"),
	byNamespace(NamespaceOGC, "coordinates"),
	byNamespace(NamespaceGoogle, "coordinates"),
}

// KML parses a KML document into placemark points.
func KML(data []byte) ([]types.GeoPoint, error) {
	points, _, err := parseKML(data)
	return points, err
}

// KMLStrategy reports which strategy located the document's points.
func KMLStrategy(data []byte) (Strategy, error) {
	_, s, err := parseKML(data)
	return s, err
}

func parseKML(data []byte) ([]types.GeoPoint, Strategy, error) {
	doc, err := parseXML(data)
	if err != nil {
		return nil, StrategyNone, &ParseError{
			Format: "kml",
			Reason: ReasonMalformed,
			Msg:    "invalid KML format: XML parsing failed",
			Err:    err,
		}
	}

	for _, s := range placemarkStrategies {
		nodes := doc.find(s.matcher())
		if len(nodes) == 0 {
			continue
		}
		points := placemarkPoints(nodes)
		if len(points) == 0 {
			return nil, s, diagnoseEmptyKML(doc)
		}
		return points, s, nil
	}

	points := scanCoordinates(doc)
	if len(points) == 0 {
		return nil, StrategyNone, diagnoseEmptyKML(doc)
	}
	return points, StrategyCoordinateScan, nil
}

// placemarkPoints extracts one point per placemark that has coordinates.
func placemarkPoints(nodes []*node) []types.GeoPoint {
	var points []types.GeoPoint
	for _, pm := range nodes {
		coordNode := placemarkCoordinates(pm)
		if coordNode == nil {
			continue
		}
		lon, lat, ele, ok := firstTuple(coordNode.textContent())
		if !ok {
			continue
		}

		name := ""
		if n := pm.first(byLocal("name")); n != nil {
			name = strings.TrimSpace(n.textContent())
		}
		if name == "" {
			name = fmt.Sprintf("Placemark %d", len(points)+1)
		}

		p := types.GeoPoint{
			Name:      name,
			Longitude: lon,
			Latitude:  lat,
			Elevation: ele,
			Type:      types.PointPlacemark,
		}
		if d := pm.first(byLocal("description")); d != nil {
			applyDescription(&p, d.textContent())
		}
		points = append(points, p)
	}
	return points
}

// placemarkCoordinates finds the coordinates element of a placemark: any
// descendant <coordinates> first, then the first Point, LineString or
// Polygon outer ring.
func placemarkCoordinates(pm *node) *node {
	coords := byLocal("coordinates")
	if c := pm.first(coords); c != nil {
		return c
	}
	if g := pm.first(byLocal("Point")); g != nil {
		return g.first(coords)
	}
	if g := pm.first(byLocal("LineString")); g != nil {
		return g.first(coords)
	}
	if g := pm.first(byLocal("Polygon")); g != nil {
		if outer := g.first(byLocal("outerBoundaryIs")); outer != nil {
			if ring := outer.first(byLocal("LinearRing")); ring != nil {
				return ring.first(coords)
			}
		}
	}
	return nil
}

// scanCoordinates builds points from bare <coordinates> elements, naming
// each after the nearest ancestor that contains a <name>.
func scanCoordinates(doc *node) []types.GeoPoint {
	var nodes []*node
	for _, sel := range coordinateSelectors {
		if nodes = doc.find(sel); len(nodes) > 0 {
			break
		}
	}

	root := doc.root()
	nameSel := func(n *node) bool {
		return n.qualified() == "name" || (n.space == NamespaceOGC && n.local == "name")
	}

	var points []types.GeoPoint
	for _, c := range nodes {
		lon, lat, ele, ok := firstTuple(c.textContent())
		if !ok {
			continue
		}
		name := fmt.Sprintf("Point %d", len(points)+1)
		for anc := c.parent; anc != nil && anc != root && anc.parent != nil; anc = anc.parent {
			if n := anc.first(nameSel); n != nil {
				if text := strings.TrimSpace(n.textContent()); text != "" {
					name = text
					break
				}
			}
		}
		points = append(points, types.GeoPoint{
			Name:      name,
			Longitude: lon,
			Latitude:  lat,
			Elevation: ele,
			Type:      types.PointPlacemark,
		})
	}
	return points
}

var tupleSplit = regexp.MustCompile(`[\s,]+`)

// firstTuple reads the first "lon,lat[,ele]" tuple of a coordinates text.
// A tuple written with spaces after the commas is read from the first line.
func firstTuple(text string) (lon, lat float64, ele *float64, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, 0, nil, false
	}

	fields := strings.Fields(text)
	parts := strings.Split(fields[0], ",")
	if len(parts) < 2 || parts[1] == "" {
		line, _, _ := strings.Cut(text, "\n")
		parts = tupleSplit.Split(strings.TrimSpace(line), -1)
	}
	if len(parts) < 2 {
		return 0, 0, nil, false
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || !validLon(lon) {
		return 0, 0, nil, false
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || !validLat(lat) {
		return 0, 0, nil, false
	}
	if len(parts) > 2 {
		if e, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64); err == nil && !math.IsNaN(e) {
			ele = &e
		}
	}
	return lon, lat, ele, true
}

func validLon(v float64) bool { return !math.IsNaN(v) && v >= -180 && v <= 180 }
func validLat(v float64) bool { return !math.IsNaN(v) && v >= -90 && v <= 90 }

// applyDescription reads a placemark description. HTML containing <td>
// cells is read as key/value pairs into Extra, with any "prefix:" dropped
// from the key. Anything else is kept as the description text.
func applyDescription(p *types.GeoPoint, raw string) {
	if strings.TrimSpace(raw) == "" {
		return
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		p.Description = strings.TrimSpace(raw)
		return
	}
	cells := doc.Find("td")
	if cells.Length() == 0 {
		p.Description = strings.TrimSpace(raw)
		return
	}

	for j := 0; j+1 < cells.Length(); j += 2 {
		keyText := strings.TrimSpace(cells.Eq(j).Text())
		if i := strings.LastIndex(keyText, ":"); i >= 0 {
			keyText = keyText[i+1:]
		}
		key := strings.TrimSpace(keyText)
		if key == "" {
			key = fmt.Sprintf("column_%d", j/2+1)
		}
		p.Extra.Set(key, strings.TrimSpace(cells.Eq(j+1).Text()))
	}
}

// diagnoseEmptyKML explains why a well-formed document produced nothing.
func diagnoseEmptyKML(doc *node) error {
	has := func(local string) bool { return doc.first(byLocal(local)) != nil }

	switch {
	case has("gpx") || has("wpt") || has("trk"):
		return &ParseError{Format: "kml", Reason: ReasonLooksLikeGPX,
			Msg: "this appears to be a GPX file, not a KML file; use the GPX conversion instead"}
	case has("NetworkLink"):
		return &ParseError{Format: "kml", Reason: ReasonNetworkLink,
			Msg: "this KML file contains NetworkLinks which are not supported; use a KML file with direct geographic data"}
	case has("Document") || has("Folder"):
		return &ParseError{Format: "kml", Reason: ReasonNoCoordinates,
			Msg: "KML file structure detected but no valid placemarks or coordinates found; the file might be empty or contain unsupported geometry types"}
	}
	return &ParseError{Format: "kml", Reason: ReasonNoData,
		Msg: "no valid geographic data found in the KML file; make sure it contains Placemarks with coordinate information"}
}
