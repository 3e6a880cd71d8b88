// Package amap provides a client for the AMap (高德地图) Web Service API:
// geocoding, reverse geocoding, driving directions and POI search.
//
// AMap speaks GCJ-02. Every coordinate sent to the provider is converted from
// WGS-84 at this boundary, and every coordinate returned has already been
// converted back, so callers never see a GCJ-02 value except in the explicit
// *GCJ02 companion fields kept for round-tripping into follow-up requests.
package amap

import (
	"errors"
	"fmt"

	"github.com/waypoint-labs/waypoint/internal/geo"
)

// Sentinel errors for mapping operations.
var (
	// ErrProviderUnavailable indicates the provider could not be reached or
	// returned a non-success HTTP status.
	ErrProviderUnavailable = errors.New("mapping provider unavailable")
	// ErrMalformedResponse indicates the provider returned a payload that
	// does not match the documented schema.
	ErrMalformedResponse = errors.New("malformed provider response")
	// ErrUnresolvedAddress indicates a free-text route endpoint could not be
	// geocoded. Route planning cannot degrade past this.
	ErrUnresolvedAddress = errors.New("address could not be resolved")
)

// Error is a mapping-provider error with operation context.
type Error struct {
	// Op is the client operation that failed (e.g. "geocode").
	Op string

	// Message is a human-readable description, suitable for threading back
	// to the assistant.
	Message string

	// Err is the underlying cause, matchable with errors.Is.
	Err error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("amap: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("amap: %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// GeocodeResult is a resolved address.
type GeocodeResult struct {
	// FormattedAddress is the provider's normalized address string.
	FormattedAddress string `json:"formatted_address"`

	// Location is the resolved coordinate in WGS-84.
	Location geo.Point `json:"location"`

	// LocationGCJ02 is the provider-native coordinate, kept so follow-up
	// provider calls can reuse it without a lossy double conversion.
	LocationGCJ02 geo.Point `json:"location_gcj02"`

	Province string `json:"province"`
	City     string `json:"city"`
	District string `json:"district"`
	Adcode   string `json:"adcode"`
}

// RouteStep is one turn-by-turn segment of a driving route.
type RouteStep struct {
	// Instruction is the human-readable maneuver description.
	Instruction string `json:"instruction"`

	// Road is the road name, empty when the provider omits it.
	Road string `json:"road"`

	// Distance is the segment length in meters.
	Distance int `json:"distance"`

	// Duration is the estimated segment travel time in seconds.
	Duration int `json:"duration"`

	// Polyline is the segment geometry in WGS-84, in travel order.
	Polyline []geo.Point `json:"polyline"`
}

// RouteResult is a planned driving route.
type RouteResult struct {
	// Distance is the total route length in meters.
	Distance int `json:"distance"`

	// Duration is the total estimated travel time in seconds.
	Duration int `json:"duration"`

	// Tolls is the toll cost in yuan; 0 means a toll-free route.
	Tolls float64 `json:"tolls"`

	// Polyline is the full route geometry in WGS-84: the concatenation of
	// all step polylines in travel order.
	Polyline []geo.Point `json:"polyline"`

	// Steps are the turn-by-turn segments in travel order.
	Steps []RouteStep `json:"steps"`

	Origin      geo.Point   `json:"origin"`
	Destination geo.Point   `json:"destination"`
	Waypoints   []geo.Point `json:"waypoints,omitempty"`
}

// POIResult is a point of interest returned by the place search endpoints.
type POIResult struct {
	// ID is the provider's stable POI identifier, unique per POI and used
	// for deduplication across overlapping searches.
	ID string `json:"id"`

	Name     string `json:"name"`
	Type     string `json:"type"`
	Typecode string `json:"typecode"`
	Address  string `json:"address"`

	// Location is the POI coordinate in WGS-84.
	Location geo.Point `json:"location"`

	// LocationGCJ02 is the provider-native coordinate.
	LocationGCJ02 geo.Point `json:"location_gcj02"`

	Tel string `json:"tel,omitempty"`

	// Distance is meters from the query center; present only for
	// around-style searches.
	Distance int `json:"distance,omitempty"`

	// Rating is the provider's decimal rating string, empty when unrated.
	Rating string `json:"rating,omitempty"`

	// Cost is the average spend per person in yuan, as reported.
	Cost string `json:"cost,omitempty"`

	Photos       []string `json:"photos,omitempty"`
	BusinessArea string   `json:"business_area,omitempty"`
	OpeningHours string   `json:"opening_hours,omitempty"`
}

// RoutePoint is a route endpoint given either as free text or as an explicit
// WGS-84 coordinate. Exactly one of the two forms is set.
type RoutePoint struct {
	Address  string
	Location *geo.Point
}

// AddressPoint returns a RoutePoint resolved by geocoding free text.
func AddressPoint(address string) RoutePoint {
	return RoutePoint{Address: address}
}

// LocationPoint returns a RoutePoint at an explicit WGS-84 coordinate.
func LocationPoint(p geo.Point) RoutePoint {
	return RoutePoint{Location: &p}
}

// SortRule controls result ordering for around-style POI searches.
type SortRule string

const (
	// SortByWeight orders by the provider's relevance weighting.
	SortByWeight SortRule = "weight"
	// SortByDistance orders by distance from the query center.
	SortByDistance SortRule = "distance"
)

// AroundOptions configures SearchPOIAround.
type AroundOptions struct {
	// Radius is the search radius in meters (default 3000).
	Radius int

	// Types is an optional comma-separated provider category code filter.
	Types string

	// Limit caps results per page (default 20).
	Limit int

	// Page selects the result page (default 1).
	Page int

	// Sort is the ordering rule (default SortByWeight).
	Sort SortRule

	// CenterIsGCJ02 marks the center as already provider-native; by default
	// the center is WGS-84 and converted before the request.
	CenterIsGCJ02 bool
}

// AlongRouteOptions configures SearchPOIAlongRoute.
type AlongRouteOptions struct {
	// Radius is the search radius around each sample point in meters
	// (default 2000).
	Radius int

	// Types is an optional comma-separated provider category code filter.
	Types string

	// MaxResults caps the merged result set (default 10).
	MaxResults int
}
