// Package handler provides the HTTP handlers for the Waypoint API.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/waypoint-labs/waypoint/internal/amap"
	"github.com/waypoint-labs/waypoint/internal/api/response"
	"github.com/waypoint-labs/waypoint/internal/geo"
	"github.com/waypoint-labs/waypoint/internal/provider/resilience"
)

// writeProviderError maps mapping-provider failures onto problem responses.
func writeProviderError(w http.ResponseWriter, r *http.Request, err error) {
	var amapErr *amap.Error
	detail := "mapping provider request failed"
	if errors.As(err, &amapErr) && amapErr.Message != "" {
		detail = amapErr.Message
	}

	switch {
	case errors.Is(err, amap.ErrUnresolvedAddress):
		response.BadRequest(w, r, detail, nil)
	case errors.Is(err, resilience.ErrCircuitOpen):
		response.ServiceUnavailable(w, r, "mapping provider temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		response.BadGateway(w, r, "mapping provider timed out")
	default:
		response.BadGateway(w, r, detail)
	}
}

// parseLngLat parses a "lng,lat" pair in decimal degrees.
func parseLngLat(s string) (geo.Point, bool) {
	lngStr, latStr, ok := strings.Cut(s, ",")
	if !ok {
		return geo.Point{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return geo.Point{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return geo.Point{}, false
	}
	return geo.Point{Lng: lng, Lat: lat}, true
}

// routePoint interprets free text as a coordinate pair when it parses as
// one, otherwise as an address to geocode.
func routePoint(s string) amap.RoutePoint {
	if p, ok := parseLngLat(s); ok {
		return amap.LocationPoint(p)
	}
	return amap.AddressPoint(s)
}
