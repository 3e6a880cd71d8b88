// Package geo provides coordinate types and the datum conversion between
// WGS-84 and GCJ-02, the obfuscated reference frame used by Chinese map
// providers. Downstream code keeps every value in WGS-84 and converts to
// GCJ-02 only at the provider boundary.
package geo

import "math"

// Krasovsky 1940 ellipsoid parameters used by the GCJ-02 obfuscation.
const (
	semiMajorAxis       = 6378245.0
	eccentricitySquared = 0.00669342162296594323
)

// Reference offsets of the distortion series. GCJ-02's correction terms are
// expressed relative to (105°E, 35°N), roughly the center of its domain.
const (
	lngReference = 105.0
	latReference = 35.0
)

// Point is a geographic coordinate in decimal degrees.
// Which reference frame a Point is in is conveyed by context: fields and
// parameters carry WGS-84 values unless their name says GCJ02.
type Point struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// latSeries evaluates the latitude distortion series at a point already
// shifted by the reference offsets.
func latSeries(x, y float64) float64 {
	ret := -100.0 + 2.0*x + 3.0*y + 0.2*y*y + 0.1*x*y + 0.2*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(y*math.Pi) + 40.0*math.Sin(y/3.0*math.Pi)) * 2.0 / 3.0
	ret += (160.0*math.Sin(y/12.0*math.Pi) + 320.0*math.Sin(y*math.Pi/30.0)) * 2.0 / 3.0
	return ret
}

// lngSeries evaluates the longitude distortion series at a point already
// shifted by the reference offsets.
func lngSeries(x, y float64) float64 {
	ret := 300.0 + x + 2.0*y + 0.1*x*x + 0.1*x*y + 0.1*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(x*math.Pi) + 40.0*math.Sin(x/3.0*math.Pi)) * 2.0 / 3.0
	ret += (150.0*math.Sin(x/12.0*math.Pi) + 300.0*math.Sin(x/30.0*math.Pi)) * 2.0 / 3.0
	return ret
}

// offsets computes the GCJ-02 displacement for a point, scaled to degrees by
// the local ellipsoid radii.
func offsets(p Point) (dLng, dLat float64) {
	dLat = latSeries(p.Lng-lngReference, p.Lat-latReference)
	dLng = lngSeries(p.Lng-lngReference, p.Lat-latReference)

	radLat := p.Lat / 180.0 * math.Pi
	magic := math.Sin(radLat)
	magic = 1 - eccentricitySquared*magic*magic
	sqrtMagic := math.Sqrt(magic)

	dLat = (dLat * 180.0) / (semiMajorAxis * (1 - eccentricitySquared) / (magic * sqrtMagic) * math.Pi)
	dLng = (dLng * 180.0) / (semiMajorAxis / sqrtMagic * math.Cos(radLat) * math.Pi)
	return dLng, dLat
}

// WGS84ToGCJ02 converts a WGS-84 coordinate to GCJ-02 by applying the
// distortion offsets directly. The transform is a closed-form approximation
// valid within the provider's national coverage; coordinates outside it are
// computed through without bounds checking.
func WGS84ToGCJ02(p Point) Point {
	dLng, dLat := offsets(p)
	return Point{Lng: p.Lng + dLng, Lat: p.Lat + dLat}
}

// GCJ02ToWGS84 converts a GCJ-02 coordinate back to WGS-84. The offsets are
// evaluated at the GCJ-02 input rather than the unknown WGS-84 original, so
// the result is the reflection of the input through its forward image. This
// linear approximation is not an exact inverse but agrees with the reference
// implementation bit for bit and round-trips within ~1e-6 degrees.
func GCJ02ToWGS84(p Point) Point {
	dLng, dLat := offsets(p)
	return Point{Lng: p.Lng*2 - (p.Lng + dLng), Lat: p.Lat*2 - (p.Lat + dLat)}
}
