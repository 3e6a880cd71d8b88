package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/waypoint-labs/waypoint/internal/amap"
	"github.com/waypoint-labs/waypoint/internal/api/models"
	"github.com/waypoint-labs/waypoint/internal/api/response"
	"github.com/waypoint-labs/waypoint/internal/geo"
	"github.com/waypoint-labs/waypoint/internal/session"
)

// POIService covers point-of-interest search. *amap.Client satisfies it.
type POIService interface {
	SearchPOIAround(ctx context.Context, center geo.Point, keywords string, opts amap.AroundOptions) ([]amap.POIResult, error)
	SearchPOIAlongRoute(ctx context.Context, route []geo.Point, keywords string, opts amap.AlongRouteOptions) ([]amap.POIResult, error)
}

// POIHandler handles point-of-interest endpoints.
type POIHandler struct {
	maps     POIService
	sessions *session.Store
}

// NewPOIHandler creates a POIHandler.
func NewPOIHandler(maps POIService, sessions *session.Store) *POIHandler {
	return &POIHandler{maps: maps, sessions: sessions}
}

// Around handles GET /v1/pois: keyword search around a WGS-84 center.
func (h *POIHandler) Around(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	keywords := query.Get("keywords")
	if keywords == "" {
		response.BadRequest(w, r, "keywords is required", []models.FieldError{
			{Field: "keywords", Message: "keywords is required", Code: "required"},
		})
		return
	}
	center, ok := parseLngLat(query.Get("location"))
	if !ok {
		response.BadRequest(w, r, "location must be \"lng,lat\"", []models.FieldError{
			{Field: "location", Message: "expected decimal degrees as lng,lat", Code: "invalid"},
		})
		return
	}

	opts := amap.AroundOptions{Types: amap.CategoryCode(query.Get("category"))}
	if radius := query.Get("radius"); radius != "" {
		opts.Radius, _ = strconv.Atoi(radius)
	}
	if limit := query.Get("limit"); limit != "" {
		opts.Limit, _ = strconv.Atoi(limit)
	}
	if query.Get("sort") == "distance" {
		opts.Sort = amap.SortByDistance
	}

	pois, err := h.maps.SearchPOIAround(r.Context(), center, keywords, opts)
	if err != nil {
		writeProviderError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.POISearchResponse{Count: len(pois), POIs: pois})
}

// AlongRoute handles POST /v1/pois/along-route: keyword search along a
// polyline, either passed inline or taken from the session's current route.
func (h *POIHandler) AlongRoute(w http.ResponseWriter, r *http.Request) {
	var req models.POIAlongRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if req.Keywords == "" {
		response.BadRequest(w, r, "keywords is required", []models.FieldError{
			{Field: "keywords", Message: "keywords is required", Code: "required"},
		})
		return
	}

	polyline := req.Route
	if len(polyline) == 0 && req.SessionID != "" {
		if route := h.sessions.Get(req.SessionID).Route(); route != nil {
			polyline = route.Polyline
		}
	}
	if len(polyline) == 0 {
		response.BadRequest(w, r, "no route available: pass route points or a session with a planned route", []models.FieldError{
			{Field: "route", Message: "route or session_id with a planned route is required", Code: "required"},
		})
		return
	}

	pois, err := h.maps.SearchPOIAlongRoute(r.Context(), polyline, req.Keywords, amap.AlongRouteOptions{
		Types:      amap.CategoryCode(req.Category),
		Radius:     req.Radius,
		MaxResults: req.MaxResults,
	})
	if err != nil {
		writeProviderError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.POISearchResponse{Count: len(pois), POIs: pois})
}
