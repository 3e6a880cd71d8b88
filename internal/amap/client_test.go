package amap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/waypoint-labs/waypoint/internal/geo"
)

// shenzhenBox is the rough bounding box used to sanity-check resolved
// Shenzhen coordinates.
type boundingBox struct {
	minLng, maxLng, minLat, maxLat float64
}

var shenzhenBox = boundingBox{minLng: 113.8, maxLng: 114.7, minLat: 22.4, maxLat: 22.9}

func (b boundingBox) contains(p geo.Point) bool {
	return p.Lng >= b.minLng && p.Lng <= b.maxLng && p.Lat >= b.minLat && p.Lat <= b.maxLat
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.Nop(),
	})
	return client, server
}

func TestClient_Geocode_Success(t *testing.T) {
	fixture, err := os.ReadFile("testdata/geocode_response.json")
	if err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}

	var gotQuery map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geocode/geo" {
			t.Errorf("expected path /geocode/geo, got %s", r.URL.Path)
		}
		gotQuery = map[string]string{
			"key":     r.URL.Query().Get("key"),
			"address": r.URL.Query().Get("address"),
			"city":    r.URL.Query().Get("city"),
			"output":  r.URL.Query().Get("output"),
		}
		w.Write(fixture)
	}))

	result, err := client.Geocode(context.Background(), "深圳湾科技园", "深圳")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("expected a geocode result")
	}

	if gotQuery["key"] != "test-key" {
		t.Errorf("key = %q", gotQuery["key"])
	}
	if gotQuery["address"] != "深圳湾科技园" {
		t.Errorf("address = %q", gotQuery["address"])
	}
	if gotQuery["city"] != "深圳" {
		t.Errorf("city = %q", gotQuery["city"])
	}
	if gotQuery["output"] != "json" {
		t.Errorf("output = %q", gotQuery["output"])
	}

	if result.FormattedAddress != "广东省深圳市南山区深圳湾科技园" {
		t.Errorf("formatted address = %q", result.FormattedAddress)
	}
	if result.City != "深圳市" || result.Adcode != "440305" {
		t.Errorf("administrative fields: city=%q adcode=%q", result.City, result.Adcode)
	}

	// The WGS-84 location must land inside Shenzhen and differ from the
	// GCJ-02 wire value.
	if !shenzhenBox.contains(result.Location) {
		t.Errorf("location outside Shenzhen: %+v", result.Location)
	}
	if result.Location == result.LocationGCJ02 {
		t.Error("WGS-84 location equals GCJ-02 location; conversion missing")
	}
	if result.LocationGCJ02 != pointXY(113.953710, 22.536675) {
		t.Errorf("GCJ-02 location = %+v", result.LocationGCJ02)
	}
}

func TestClient_Geocode_NoMatch(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"1","info":"OK","geocodes":[]}`))
	}))

	result, err := client.Geocode(context.Background(), "nonexistent-place-xyz", "")
	if err != nil {
		t.Fatalf("no match must not be an error, got %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}
}

func TestClient_Geocode_ProviderError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.Geocode(context.Background(), "深圳湾科技园", "")
	if err == nil {
		t.Fatal("expected error for provider failure")
	}
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestClient_Geocode_MalformedBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))

	_, err := client.Geocode(context.Background(), "深圳湾科技园", "")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestClient_ReverseGeocode(t *testing.T) {
	var gotLocation string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geocode/regeo" {
			t.Errorf("expected path /geocode/regeo, got %s", r.URL.Path)
		}
		gotLocation = r.URL.Query().Get("location")
		w.Write([]byte(`{"status":"1","info":"OK","regeocode":{"formatted_address":"北京市东城区天安门"}}`))
	}))

	wgs := pointXY(116.3974, 39.9087)
	address, err := client.ReverseGeocode(context.Background(), wgs, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if address != "北京市东城区天安门" {
		t.Errorf("address = %q", address)
	}

	// The request must carry the GCJ-02 conversion, not the raw input.
	sent, err := parsePoint(gotLocation)
	if err != nil {
		t.Fatalf("sent location unparseable: %v", err)
	}
	want := geo.WGS84ToGCJ02(wgs)
	if !strings.HasPrefix(gotLocation, formatPoint(want)[:9]) {
		t.Errorf("sent %+v, want approx %+v", sent, want)
	}
}

func TestClient_ReverseGeocode_NoResult(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"0","info":"UNKNOWN_ERROR"}`))
	}))

	address, err := client.ReverseGeocode(context.Background(), pointXY(116.4, 39.9), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if address != "" {
		t.Errorf("expected empty address, got %q", address)
	}
}

func TestClient_PlanDrivingRoute_Success(t *testing.T) {
	drivingBody, err := os.ReadFile("testdata/driving_response.json")
	if err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}
	geocodeBody, err := os.ReadFile("testdata/geocode_response.json")
	if err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}

	var drivingQuery map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/geocode/geo":
			w.Write(geocodeBody)
		case "/direction/driving":
			drivingQuery = map[string]string{
				"strategy":   r.URL.Query().Get("strategy"),
				"extensions": r.URL.Query().Get("extensions"),
				"origin":     r.URL.Query().Get("origin"),
			}
			w.Write(drivingBody)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	route, err := client.PlanDrivingRoute(context.Background(),
		AddressPoint("深圳湾科技园"),
		AddressPoint("龙华区大浪街道"),
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route == nil {
		t.Fatal("expected a route")
	}

	if drivingQuery["strategy"] != "10" {
		t.Errorf("strategy = %q, want 10", drivingQuery["strategy"])
	}
	if drivingQuery["extensions"] != "all" {
		t.Errorf("extensions = %q, want all", drivingQuery["extensions"])
	}

	// First path wins.
	if route.Distance != 25400 || route.Duration != 2520 {
		t.Errorf("distance/duration = %d/%d", route.Distance, route.Duration)
	}
	if route.Tolls != 15 {
		t.Errorf("tolls = %v", route.Tolls)
	}
	if len(route.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(route.Steps))
	}
	if route.Steps[0].Instruction != "向北行驶120米右转" || route.Steps[0].Road != "科苑南路" {
		t.Errorf("first step = %+v", route.Steps[0])
	}

	// Full polyline is the concatenation of step polylines in travel order.
	if len(route.Polyline) != len(route.Steps[0].Polyline)+len(route.Steps[1].Polyline) {
		t.Errorf("polyline length %d != steps total", len(route.Polyline))
	}
	if len(route.Polyline) < 2 {
		t.Errorf("polyline too short: %d", len(route.Polyline))
	}
	if !shenzhenBox.contains(route.Polyline[0]) {
		t.Errorf("polyline start outside Shenzhen: %+v", route.Polyline[0])
	}
	if !shenzhenBox.contains(route.Origin) || !shenzhenBox.contains(route.Destination) {
		t.Errorf("endpoints outside Shenzhen: %+v -> %+v", route.Origin, route.Destination)
	}
}

func TestClient_PlanDrivingRoute_WaypointUnresolved(t *testing.T) {
	geocodeBody, err := os.ReadFile("testdata/geocode_response.json")
	if err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}

	drivingCalled := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/geocode/geo":
			if r.URL.Query().Get("address") == "nonexistent-place-xyz" {
				w.Write([]byte(`{"status":"1","info":"OK","geocodes":[]}`))
				return
			}
			w.Write(geocodeBody)
		case "/direction/driving":
			drivingCalled = true
		}
	}))

	_, err = client.PlanDrivingRoute(context.Background(),
		AddressPoint("深圳湾科技园"),
		AddressPoint("龙华区大浪街道"),
		[]RoutePoint{AddressPoint("nonexistent-place-xyz")},
	)
	if err == nil {
		t.Fatal("expected hard failure for unresolvable waypoint")
	}
	if !errors.Is(err, ErrUnresolvedAddress) {
		t.Errorf("expected ErrUnresolvedAddress, got %v", err)
	}
	if drivingCalled {
		t.Error("driving endpoint must not be called when a waypoint is unresolved")
	}
}

func TestClient_PlanDrivingRoute_NoRoute(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"0","info":"NO_ROUTE"}`))
	}))

	route, err := client.PlanDrivingRoute(context.Background(),
		LocationPoint(pointXY(113.9431, 22.5246)),
		LocationPoint(pointXY(114.0259, 22.6967)),
		nil,
	)
	if err != nil {
		t.Fatalf("no route must not be an error, got %v", err)
	}
	if route != nil {
		t.Fatalf("expected nil route, got %+v", route)
	}
}

func TestClient_SearchPOIAround_Success(t *testing.T) {
	var gotQuery map[string]string
	fixture, err := os.ReadFile("testdata/poi_response.json")
	if err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/place/around" {
			t.Errorf("expected path /place/around, got %s", r.URL.Path)
		}
		gotQuery = map[string]string{
			"keywords": r.URL.Query().Get("keywords"),
			"radius":   r.URL.Query().Get("radius"),
			"offset":   r.URL.Query().Get("offset"),
			"sortrule": r.URL.Query().Get("sortrule"),
			"types":    r.URL.Query().Get("types"),
		}
		w.Write(fixture)
	}))

	pois, err := client.SearchPOIAround(context.Background(), pointXY(113.9431, 22.5246), "餐厅", AroundOptions{
		Types: CategoryRestaurant,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Defaults applied.
	if gotQuery["radius"] != "3000" || gotQuery["offset"] != "20" || gotQuery["sortrule"] != "weight" {
		t.Errorf("defaults not applied: %+v", gotQuery)
	}
	if gotQuery["types"] != CategoryRestaurant {
		t.Errorf("types = %q", gotQuery["types"])
	}

	if len(pois) != 3 {
		t.Fatalf("expected 3 POIs, got %d", len(pois))
	}

	first := pois[0]
	if first.ID != "B02F37VVXC" || first.Rating != "4.6" || first.Cost != "78.00" {
		t.Errorf("first POI = %+v", first)
	}
	if first.Distance != 420 {
		t.Errorf("distance = %d", first.Distance)
	}
	if len(first.Photos) != 2 {
		t.Errorf("photos = %v", first.Photos)
	}
	if !shenzhenBox.contains(first.Location) {
		t.Errorf("location outside Shenzhen: %+v", first.Location)
	}

	// Array-valued empty fields decode to empty strings.
	second := pois[1]
	if second.Address != "" || second.Tel != "" || second.BusinessArea != "" || second.OpeningHours != "" {
		t.Errorf("flex fields not emptied: %+v", second)
	}

	// Missing biz_ext leaves rating empty.
	if pois[2].Rating != "" {
		t.Errorf("third POI rating = %q", pois[2].Rating)
	}
}

func TestClient_SearchPOIAround_Empty(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"1","info":"OK","pois":[]}`))
	}))

	pois, err := client.SearchPOIAround(context.Background(), pointXY(113.9, 22.5), "加油站", AroundOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pois == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(pois) != 0 {
		t.Fatalf("expected no POIs, got %d", len(pois))
	}
}
