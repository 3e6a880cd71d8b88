package amap

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/waypoint-labs/waypoint/internal/geo"
)

// flexString tolerates AMap's habit of encoding absent string fields as
// empty JSON arrays. Any non-string value decodes to "".
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		*s = ""
		return nil
	}
	*s = flexString(v)
	return nil
}

// statusOK is the success value of the top-level "status" field.
const statusOK = "1"

type geocodeResponse struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	Geocodes []struct {
		FormattedAddress string     `json:"formatted_address"`
		Location         string     `json:"location"`
		Province         flexString `json:"province"`
		City             flexString `json:"city"`
		District         flexString `json:"district"`
		Adcode           flexString `json:"adcode"`
	} `json:"geocodes"`
}

type regeoResponse struct {
	Status    string `json:"status"`
	Info      string `json:"info"`
	Regeocode *struct {
		FormattedAddress flexString `json:"formatted_address"`
	} `json:"regeocode"`
}

type drivingResponse struct {
	Status string `json:"status"`
	Info   string `json:"info"`
	Route  *struct {
		Paths []struct {
			Distance string `json:"distance"`
			Duration string `json:"duration"`
			Tolls    string `json:"tolls"`
			Steps    []struct {
				Instruction flexString `json:"instruction"`
				Road        flexString `json:"road"`
				Distance    string     `json:"distance"`
				Duration    string     `json:"duration"`
				Polyline    string     `json:"polyline"`
			} `json:"steps"`
		} `json:"paths"`
	} `json:"route"`
}

type poiResponse struct {
	Status string `json:"status"`
	Info   string `json:"info"`
	POIs   []struct {
		ID           string     `json:"id"`
		Name         string     `json:"name"`
		Type         flexString `json:"type"`
		Typecode     flexString `json:"typecode"`
		Address      flexString `json:"address"`
		Location     string     `json:"location"`
		Tel          flexString `json:"tel"`
		Distance     flexString `json:"distance"`
		BusinessArea flexString `json:"business_area"`
		Photos       []struct {
			URL flexString `json:"url"`
		} `json:"photos"`
		BizExt *struct {
			Rating   flexString `json:"rating"`
			Cost     flexString `json:"cost"`
			OpenTime flexString `json:"opentime"`
		} `json:"biz_ext"`
	} `json:"pois"`
}

// parsePoint decodes AMap's compact "lng,lat" coordinate encoding. The
// result is in whatever frame the provider sent, i.e. GCJ-02.
func parsePoint(s string) (geo.Point, error) {
	lngStr, latStr, ok := strings.Cut(s, ",")
	if !ok {
		return geo.Point{}, fmt.Errorf("coordinate %q: missing separator", s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("coordinate %q: %w", s, err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("coordinate %q: %w", s, err)
	}
	return geo.Point{Lng: lng, Lat: lat}, nil
}

// parsePolyline decodes AMap's ";"-separated polyline encoding and converts
// every vertex to WGS-84. Polylines never leave this package in GCJ-02.
func parsePolyline(s string) ([]geo.Point, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ";")
	points := make([]geo.Point, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		p, err := parsePoint(part)
		if err != nil {
			return nil, err
		}
		points = append(points, geo.GCJ02ToWGS84(p))
	}
	return points, nil
}

// formatPoint encodes a GCJ-02 point as "lng,lat" with the six decimal
// places the provider accepts.
func formatPoint(p geo.Point) string {
	return strconv.FormatFloat(p.Lng, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lat, 'f', 6, 64)
}

// atoiLoose parses provider integer fields, which arrive as strings and are
// occasionally empty.
func atoiLoose(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// atofLoose parses provider decimal fields such as toll amounts.
func atofLoose(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
