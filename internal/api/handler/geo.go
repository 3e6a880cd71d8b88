package handler

import (
	"context"
	"net/http"

	"github.com/waypoint-labs/waypoint/internal/amap"
	"github.com/waypoint-labs/waypoint/internal/api/models"
	"github.com/waypoint-labs/waypoint/internal/api/response"
	"github.com/waypoint-labs/waypoint/internal/geo"
)

// GeoService covers forward and reverse geocoding. *amap.Client satisfies
// it.
type GeoService interface {
	Geocode(ctx context.Context, address, city string) (*amap.GeocodeResult, error)
	ReverseGeocode(ctx context.Context, p geo.Point, gcj02 bool) (string, error)
}

// GeoHandler handles the geocoding endpoints.
type GeoHandler struct {
	maps GeoService
}

// NewGeoHandler creates a GeoHandler.
func NewGeoHandler(maps GeoService) *GeoHandler {
	return &GeoHandler{maps: maps}
}

// Geocode handles GET /v1/geo/geocode. With ?address= it resolves text to
// a coordinate; with ?location=lng,lat it resolves a WGS-84 coordinate to
// an address.
func (h *GeoHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if address := query.Get("address"); address != "" {
		result, err := h.maps.Geocode(r.Context(), address, query.Get("city"))
		if err != nil {
			writeProviderError(w, r, err)
			return
		}
		if result == nil {
			response.NotFound(w, r, "no match for the given address")
			return
		}
		response.JSON(w, r, http.StatusOK, models.GeocodeResponse{Result: result})
		return
	}

	if location := query.Get("location"); location != "" {
		point, ok := parseLngLat(location)
		if !ok {
			response.BadRequest(w, r, "location must be \"lng,lat\"", []models.FieldError{
				{Field: "location", Message: "expected decimal degrees as lng,lat", Code: "invalid"},
			})
			return
		}
		address, err := h.maps.ReverseGeocode(r.Context(), point, false)
		if err != nil {
			writeProviderError(w, r, err)
			return
		}
		if address == "" {
			response.NotFound(w, r, "no address at the given location")
			return
		}
		response.JSON(w, r, http.StatusOK, models.ReverseGeocodeResponse{Address: address})
		return
	}

	response.BadRequest(w, r, "either address or location is required", []models.FieldError{
		{Field: "address", Message: "provide address or location", Code: "required"},
	})
}
