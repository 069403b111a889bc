// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package geodesy converts between decimal degrees, degrees-minutes-seconds
// text and UTM on the WGS84 ellipsoid. Every function is pure.
package geodesy

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/geo-converter/pkg/types"
)

// WGS84 ellipsoid and UTM constants.
const (
	semiMajor  = 6378137.0
	flattening = 1 / 298.257223563
	scale      = 0.9996

	falseEasting  = 500000.0
	falseNorthing = 10000000.0
)

var (
	// ErrInvalidCoordinates is returned for latitudes or longitudes out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrInvalidUTM is returned for unusable UTM parameters.
	ErrInvalidUTM = errors.New("invalid UTM parameters")
)

var (
	e2      = 2*flattening - flattening*flattening
	ePrime2 = e2 / (1 - e2)
)

// LatLon is a decimal-degree position.
type LatLon struct {
	Latitude  float64
	Longitude float64
}

// LatitudeString formats the latitude to six decimals.
func (p LatLon) LatitudeString() string { return strconv.FormatFloat(p.Latitude, 'f', 6, 64) }

// LongitudeString formats the longitude to six decimals.
func (p LatLon) LongitudeString() string { return strconv.FormatFloat(p.Longitude, 'f', 6, 64) }

// Zone returns the UTM zone for a longitude. Longitude 180 belongs to zone 60.
func Zone(lon float64) int {
	z := int(math.Floor((lon+180)/6)) + 1
	if z > 60 {
		z = 60
	}
	return z
}

// centralMeridian returns the zone's central meridian in radians.
func centralMeridian(zone int) float64 {
	return float64(zone*6-183) * math.Pi / 180
}

// DDToUTM projects a decimal-degree position to UTM using the standard
// forward series. Easting and northing are rounded to the millimeter.
func DDToUTM(lat, lon float64) (types.UTM, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return types.UTM{}, ErrInvalidCoordinates
	}

	phi := lat * math.Pi / 180
	lambda := lon * math.Pi / 180
	zone := Zone(lon)
	lambda0 := centralMeridian(zone)

	sinPhi, cosPhi, tanPhi := math.Sin(phi), math.Cos(phi), math.Tan(phi)
	n := semiMajor / math.Sqrt(1-e2*sinPhi*sinPhi)
	t := tanPhi * tanPhi
	c := ePrime2 * cosPhi * cosPhi
	a := (lambda - lambda0) * cosPhi

	m := meridionalArc(phi)

	easting := scale*n*(a+
		(1-t+c)*math.Pow(a, 3)/6+
		(5-18*t+t*t+72*c-58*ePrime2)*math.Pow(a, 5)/120) + falseEasting

	northing := scale * (m + n*tanPhi*(a*a/2+
		(5-t+9*c+4*c*c)*math.Pow(a, 4)/24+
		(61-58*t+t*t+600*c-330*ePrime2)*math.Pow(a, 6)/720))

	hemisphere := byte('N')
	if lat < 0 {
		northing += falseNorthing
		hemisphere = 'S'
	}

	return types.UTM{
		Easting:    round(easting, 3),
		Northing:   round(northing, 3),
		Zone:       zone,
		Hemisphere: hemisphere,
	}, nil
}

// meridionalArc is the distance along the meridian from the equator to phi.
func meridionalArc(phi float64) float64 {
	e4 := e2 * e2
	e6 := e4 * e2
	return semiMajor * ((1-e2/4-3*e4/64-5*e6/256)*phi -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*phi) +
		(15*e4/256+45*e6/1024)*math.Sin(4*phi) -
		(35*e6/3072)*math.Sin(6*phi))
}

// UTMToDD inverts a UTM position with Snyder's footprint-latitude series.
// hemisphere must be 'N' or 'S' (case-insensitive).
func UTMToDD(easting, northing float64, zone int, hemisphere byte) (LatLon, error) {
	if math.IsNaN(easting) || math.IsNaN(northing) {
		return LatLon{}, ErrInvalidUTM
	}
	if zone < 1 || zone > 60 {
		return LatLon{}, fmt.Errorf("%w: zone %d", ErrInvalidUTM, zone)
	}
	switch hemisphere {
	case 'N', 'n':
	case 'S', 's':
		northing -= falseNorthing
	default:
		return LatLon{}, fmt.Errorf("%w: hemisphere %q", ErrInvalidUTM, hemisphere)
	}

	x := easting - falseEasting
	e4 := e2 * e2
	e6 := e4 * e2

	mu := northing / scale / (semiMajor * (1 - e2/4 - 3*e4/64 - 5*e6/256))
	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))

	phi1 := mu +
		(3*e1/2-27*math.Pow(e1, 3)/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*math.Pow(e1, 4)/32)*math.Sin(4*mu) +
		(151*math.Pow(e1, 3)/96)*math.Sin(6*mu) +
		(1097*math.Pow(e1, 4)/512)*math.Sin(8*mu)

	sin1, cos1, tan1 := math.Sin(phi1), math.Cos(phi1), math.Tan(phi1)
	c1 := ePrime2 * cos1 * cos1
	t1 := tan1 * tan1
	n1 := semiMajor / math.Sqrt(1-e2*sin1*sin1)
	r1 := semiMajor * (1 - e2) / math.Pow(1-e2*sin1*sin1, 1.5)
	d := x / (n1 * scale)

	phi := phi1 - (n1*tan1/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ePrime2)*math.Pow(d, 4)/24+
		(61+90*t1+298*c1+45*t1*t1-252*ePrime2-3*c1*c1)*math.Pow(d, 6)/720)

	lambda := centralMeridian(zone) + (d-
		(1+2*t1+c1)*math.Pow(d, 3)/6+
		(5-2*c1+28*t1-3*c1*c1+8*ePrime2+24*t1*t1)*math.Pow(d, 5)/120)/cos1

	return LatLon{
		Latitude:  round(phi*180/math.Pi, 6),
		Longitude: round(lambda*180/math.Pi, 6),
	}, nil
}

var dmsToken = regexp.MustCompile(`[NSEW]|[\d.]+`)

// DMSToDD parses text such as `N13° 35' 19.862"` or `104 55 12 E`.
// The direction letter is required; missing minutes or seconds count as 0.
func DMSToDD(s string) (float64, bool) {
	clean := strings.ToUpper(strings.TrimSpace(s))
	parts := dmsToken.FindAllString(clean, -1)
	if len(parts) < 2 {
		return 0, false
	}

	var direction string
	var nums []float64
	for _, p := range parts {
		switch p {
		case "N", "S", "E", "W":
			if direction == "" {
				direction = p
			}
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		nums = append(nums, f)
	}
	if direction == "" {
		return 0, false
	}

	var d, m, sec float64
	if len(nums) > 0 {
		d = nums[0]
	}
	if len(nums) > 1 {
		m = nums[1]
	}
	if len(nums) > 2 {
		sec = nums[2]
	}

	dd := d + m/60 + sec/3600
	if direction == "S" || direction == "W" {
		dd = -dd
	}
	return dd, true
}

// DDToDMS formats decimal degrees as `D° M' S.sss" X`. isLongitude selects
// E/W rather than N/S.
func DDToDMS(dd float64, isLongitude bool) (string, bool) {
	if math.IsNaN(dd) || math.IsInf(dd, 0) {
		return "", false
	}

	abs := math.Abs(dd)
	deg := math.Floor(abs)
	minutes := (abs - deg) * 60
	m := math.Floor(minutes)
	sec := round((minutes-m)*60, 3)

	// Carry so rounding never prints 60 seconds or 60 minutes.
	if sec >= 60 {
		sec -= 60
		m++
	}
	if m >= 60 {
		m -= 60
		deg++
	}

	var dir byte
	switch {
	case isLongitude && dd >= 0:
		dir = 'E'
	case isLongitude:
		dir = 'W'
	case dd >= 0:
		dir = 'N'
	default:
		dir = 'S'
	}

	return fmt.Sprintf("%d° %d' %s\" %c", int(deg), int(m), strconv.FormatFloat(sec, 'f', 3, 64), dir), true
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
