package amap

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/waypoint-labs/waypoint/internal/geo"
)

func pointXY(lng, lat float64) geo.Point {
	return geo.Point{Lng: lng, Lat: lat}
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		lng     float64
		lat     float64
		wantErr bool
	}{
		{"simple", "116.3974,39.9087", 116.3974, 39.9087, false},
		{"spaces", " 113.95 , 22.53 ", 113.95, 22.53, false},
		{"missing separator", "116.3974", 0, 0, true},
		{"bad longitude", "abc,39.9", 0, 0, true},
		{"bad latitude", "116.3,xyz", 0, 0, true},
		{"empty", "", 0, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := parsePoint(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", p)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Lng != tc.lng || p.Lat != tc.lat {
				t.Errorf("got (%v, %v), want (%v, %v)", p.Lng, p.Lat, tc.lng, tc.lat)
			}
		})
	}
}

func TestParsePolyline_ConvertsToWGS84(t *testing.T) {
	points, err := parsePolyline("116.404000,39.915000;116.405100,39.916200;116.406300,39.917500")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	// Every vertex must have been shifted off the GCJ-02 wire value.
	if math.Abs(points[0].Lng-116.404) < 1e-4 && math.Abs(points[0].Lat-39.915) < 1e-4 {
		t.Errorf("first vertex not converted: %+v", points[0])
	}

	// Travel order is preserved.
	if points[0].Lat >= points[1].Lat || points[1].Lat >= points[2].Lat {
		t.Errorf("vertex order not preserved: %+v", points)
	}
}

func TestParsePolyline_Malformed(t *testing.T) {
	if _, err := parsePolyline("116.404,39.915;broken"); err == nil {
		t.Fatal("expected error for malformed vertex")
	}
}

func TestParsePolyline_Empty(t *testing.T) {
	points, err := parsePolyline("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Fatalf("expected no points, got %d", len(points))
	}
}

func TestFlexString(t *testing.T) {
	var doc struct {
		Address flexString `json:"address"`
		Tel     flexString `json:"tel"`
		Area    flexString `json:"area"`
	}

	// AMap encodes absent string fields as empty arrays.
	raw := `{"address":"科技园", "tel":[], "area":{"nested":true}}`
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Address != "科技园" {
		t.Errorf("address = %q, want 科技园", doc.Address)
	}
	if doc.Tel != "" {
		t.Errorf("tel = %q, want empty", doc.Tel)
	}
	if doc.Area != "" {
		t.Errorf("area = %q, want empty", doc.Area)
	}
}

func TestFormatPoint(t *testing.T) {
	got := formatPoint(pointXY(113.95371049, 22.5366751))
	if got != "113.953710,22.536675" {
		t.Errorf("formatPoint = %q", got)
	}
}
