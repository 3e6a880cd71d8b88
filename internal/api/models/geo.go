package models

import (
	"github.com/waypoint-labs/waypoint/internal/amap"
	"github.com/waypoint-labs/waypoint/internal/geo"
)

// GeocodeResponse is the body of GET /v1/geo/geocode.
type GeocodeResponse struct {
	Result *amap.GeocodeResult `json:"result"`
}

// ReverseGeocodeResponse is the body of GET /v1/geo/regeo.
type ReverseGeocodeResponse struct {
	Address string `json:"address"`
}

// RouteRequest is the body of POST /v1/routes. Origin and destination may
// be addresses or "lng,lat" coordinate pairs.
type RouteRequest struct {
	SessionID   string   `json:"session_id"`
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Waypoints   []string `json:"waypoints,omitempty"`
}

// RouteResponse wraps a planned route.
type RouteResponse struct {
	SessionID string            `json:"session_id,omitempty"`
	Route     *amap.RouteResult `json:"route"`
}

// POISearchResponse is the body of the POI search endpoints.
type POISearchResponse struct {
	Count int              `json:"count"`
	POIs  []amap.POIResult `json:"pois"`
}

// POIAlongRouteRequest is the body of POST /v1/pois/along-route. Either
// SessionID (using the session's planned route) or Route must be given.
type POIAlongRouteRequest struct {
	SessionID  string      `json:"session_id,omitempty"`
	Route      []geo.Point `json:"route,omitempty"`
	Keywords   string      `json:"keywords"`
	Category   string      `json:"category,omitempty"`
	Radius     int         `json:"radius,omitempty"`
	MaxResults int         `json:"max_results,omitempty"`
}
