//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	sampleDir    = "samples"
	sampleOutDir = "samples/out"
)

// sampleFiles are small inputs for trying each subcommand by hand.
var sampleFiles = map[string]string{
	"office.kml": `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Placemark>
      <name>Office</name>
      <description><![CDATA[<table><tr><td>province:city</td><td>Phnom Penh</td></tr></table>]]></description>
      <Point><coordinates>104.92,11.56,0</coordinates></Point>
    </Placemark>
  </Document>
</kml>
`,
	"walk.gpx": `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="samples" xmlns="http://www.topografix.com/GPX/1/1">
  <wpt lat="11.5564" lon="104.9282"><name>Start</name></wpt>
  <trk><trkseg>
    <trkpt lat="11.5570" lon="104.9290"><ele>12</ele></trkpt>
    <trkpt lat="11.5580" lon="104.9300"><ele>14</ele></trkpt>
  </trkseg></trk>
</gpx>
`,
	"parks.geojson": `{"type":"FeatureCollection","features":[
  {"type":"Feature","properties":{"name":"Central","height":"12"},"geometry":{"type":"Point","coordinates":[104.92,11.56]}},
  {"type":"Feature","properties":{"name":"River"},"geometry":{"type":"LineString","coordinates":[[104.9,11.5],[104.95,11.6]]}}
]}
`,
	"points_dd.csv": "name,lat,lon\nPhnom Penh,11.5564,104.9282\nSydney,-33.8688,151.2093\n",
	"points_dms.csv": "name,lat_dms,lon_dms\nPhnom Penh,N11° 33' 23.04\",E104° 55' 41.52\"\n",
}

// Samples writes example inputs to samples/.
func Samples() error {
	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", sampleDir, err)
	}
	for name, content := range sampleFiles {
		path := filepath.Join(sampleDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Println("  ", path)
	}
	return nil
}

// Demo builds the CLI and converts every sample into samples/out/.
func Demo() error {
	mg.Deps(Build, Samples)
	bin := filepath.Join(binDir, binName)
	runs := [][]string{
		{"kml", "samples/office.kml"},
		{"gpx", "samples/walk.gpx", "--format", "geojson"},
		{"geojson", "samples/parks.geojson", "--format", "kml", "--elevation-field", "height"},
		{"coords", "samples/points_dd.csv", "--from", "dd", "--to", "utm"},
		{"coords", "samples/points_dms.csv", "--from", "dms", "--to", "dd", "--prompt=false"},
	}
	for _, args := range runs {
		args = append(args, "--out", sampleOutDir)
		if err := sh.RunV(bin, args...); err != nil {
			return fmt.Errorf("%s %v: %w", bin, args, err)
		}
	}
	return nil
}
