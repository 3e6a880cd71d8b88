package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/waypoint-labs/waypoint/internal/amap"
	"github.com/waypoint-labs/waypoint/internal/api/models"
	"github.com/waypoint-labs/waypoint/internal/api/response"
	"github.com/waypoint-labs/waypoint/internal/session"
)

// RouteService plans driving routes. *amap.Client satisfies it.
type RouteService interface {
	PlanDrivingRoute(ctx context.Context, origin, destination amap.RoutePoint, waypoints []amap.RoutePoint) (*amap.RouteResult, error)
}

// RouteHandler handles route planning endpoints.
type RouteHandler struct {
	maps     RouteService
	sessions *session.Store
}

// NewRouteHandler creates a RouteHandler.
func NewRouteHandler(maps RouteService, sessions *session.Store) *RouteHandler {
	return &RouteHandler{maps: maps, sessions: sessions}
}

// Plan handles POST /v1/routes. Origin, destination and waypoints may be
// addresses or "lng,lat" pairs. When a session ID is given the planned
// route becomes the session's current route.
func (h *RouteHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req models.RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	var fields []models.FieldError
	if req.Origin == "" {
		fields = append(fields, models.FieldError{Field: "origin", Message: "origin is required", Code: "required"})
	}
	if req.Destination == "" {
		fields = append(fields, models.FieldError{Field: "destination", Message: "destination is required", Code: "required"})
	}
	if len(fields) > 0 {
		response.BadRequest(w, r, "missing required fields", fields)
		return
	}

	waypoints := make([]amap.RoutePoint, 0, len(req.Waypoints))
	for _, wp := range req.Waypoints {
		if wp != "" {
			waypoints = append(waypoints, routePoint(wp))
		}
	}

	route, err := h.maps.PlanDrivingRoute(r.Context(), routePoint(req.Origin), routePoint(req.Destination), waypoints)
	if err != nil {
		writeProviderError(w, r, err)
		return
	}
	if route == nil {
		response.NotFound(w, r, "no drivable route between the given points")
		return
	}

	if req.SessionID != "" {
		h.sessions.Get(req.SessionID).SetRoute(route)
	}

	response.JSON(w, r, http.StatusOK, models.RouteResponse{SessionID: req.SessionID, Route: route})
}

// Current handles GET /v1/routes. It returns the session's current route.
func (h *RouteHandler) Current(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		response.BadRequest(w, r, "session_id is required", []models.FieldError{
			{Field: "session_id", Message: "session_id is required", Code: "required"},
		})
		return
	}

	route := h.sessions.Get(sessionID).Route()
	if route == nil {
		response.NotFound(w, r, "no route planned for this session")
		return
	}

	response.JSON(w, r, http.StatusOK, models.RouteResponse{SessionID: sessionID, Route: route})
}
