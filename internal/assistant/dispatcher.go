package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/waypoint-labs/waypoint/internal/amap"
	"github.com/waypoint-labs/waypoint/internal/geo"
	"github.com/waypoint-labs/waypoint/internal/session"
)

// maxRecommendations caps the POI list surfaced to the model.
const maxRecommendations = 5

// MapService is the mapping capability the dispatcher executes tools
// against. *amap.Client satisfies it.
type MapService interface {
	Geocode(ctx context.Context, address, city string) (*amap.GeocodeResult, error)
	PlanDrivingRoute(ctx context.Context, origin, destination amap.RoutePoint, waypoints []amap.RoutePoint) (*amap.RouteResult, error)
	SearchPOIAlongRoute(ctx context.Context, route []geo.Point, keywords string, opts amap.AlongRouteOptions) ([]amap.POIResult, error)
}

// ToolOutcome is the result of executing one tool invocation. Content and
// IsError are threaded back to the model; MapData is accumulated for the
// renderer and never shown to the model.
type ToolOutcome struct {
	Content string
	IsError bool
	MapData MapData
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	Maps    MapService
	Logger  zerolog.Logger
	Metrics *Metrics
}

// Dispatcher executes tool invocations issued by the model. Execution
// failures become error-tagged outcomes; they never escape as Go errors.
type Dispatcher struct {
	maps    MapService
	logger  zerolog.Logger
	metrics *Metrics
}

// NewDispatcher creates a dispatcher over the given mapping service.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		maps:    cfg.Maps,
		logger:  cfg.Logger.With().Str("component", "dispatcher").Logger(),
		metrics: cfg.Metrics,
	}
}

// Execute runs a single named tool against the session state. The tool set
// is closed: an unknown name yields an error-tagged outcome, not a panic or
// a Go error.
func (d *Dispatcher) Execute(ctx context.Context, state *session.State, name string, input json.RawMessage) ToolOutcome {
	var outcome ToolOutcome
	switch name {
	case ToolGeocode:
		outcome = d.geocode(ctx, input)
	case ToolPlanDrivingRoute:
		outcome = d.planDrivingRoute(ctx, state, input)
	case ToolSearchPOIAlongRoute:
		outcome = d.searchPOIAlongRoute(ctx, state, input)
	default:
		outcome = errorOutcome(fmt.Sprintf("未知工具: %s", name))
	}

	d.logger.Debug().
		Str("tool", name).
		Bool("error", outcome.IsError).
		Msg("tool executed")
	if d.metrics != nil {
		d.metrics.RecordToolExecution(ctx, name, outcome.IsError)
	}
	return outcome
}

type geocodeInput struct {
	Address string `json:"address"`
	City    string `json:"city"`
}

func (d *Dispatcher) geocode(ctx context.Context, input json.RawMessage) ToolOutcome {
	var args geocodeInput
	if err := json.Unmarshal(input, &args); err != nil || strings.TrimSpace(args.Address) == "" {
		return errorOutcome("参数错误: 缺少 address")
	}

	result, err := d.maps.Geocode(ctx, args.Address, args.City)
	if err != nil {
		return errorOutcome(toolErrorMessage(err))
	}
	if result == nil {
		return errorOutcome(fmt.Sprintf("无法解析地址: %s，请提供更具体的地址", args.Address))
	}

	payload := map[string]any{
		"address":  result.FormattedAddress,
		"location": result.Location,
		"province": result.Province,
		"city":     result.City,
	}
	marker := Marker{
		ID:       "marker-" + uuid.NewString(),
		Name:     args.Address,
		Location: result.Location,
		Address:  result.FormattedAddress,
		Kind:     MarkerLocation,
	}
	return successOutcome(payload, MapData{Markers: []Marker{marker}})
}

type planDrivingRouteInput struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Waypoints   string `json:"waypoints"`
}

func (d *Dispatcher) planDrivingRoute(ctx context.Context, state *session.State, input json.RawMessage) ToolOutcome {
	var args planDrivingRouteInput
	if err := json.Unmarshal(input, &args); err != nil ||
		strings.TrimSpace(args.Origin) == "" || strings.TrimSpace(args.Destination) == "" {
		return errorOutcome("参数错误: 缺少 origin 或 destination")
	}

	var waypoints []amap.RoutePoint
	for _, wp := range strings.Split(args.Waypoints, ",") {
		if wp = strings.TrimSpace(wp); wp != "" {
			waypoints = append(waypoints, amap.AddressPoint(wp))
		}
	}

	route, err := d.maps.PlanDrivingRoute(ctx,
		amap.AddressPoint(args.Origin), amap.AddressPoint(args.Destination), waypoints)
	if err != nil {
		return errorOutcome(toolErrorMessage(err))
	}
	if route == nil {
		return errorOutcome("路线规划失败，请检查起点和终点是否正确")
	}

	state.SetRoute(route)

	payload := map[string]any{
		"distance":    formatDistance(route.Distance),
		"duration":    formatDuration(route.Duration),
		"tolls":       formatTolls(route.Tolls),
		"steps_count": len(route.Steps),
	}
	return successOutcome(payload, MapData{Route: route})
}

type searchPOIInput struct {
	Keywords string `json:"keywords"`
	Category string `json:"category"`
}

func (d *Dispatcher) searchPOIAlongRoute(ctx context.Context, state *session.State, input json.RawMessage) ToolOutcome {
	var args searchPOIInput
	if err := json.Unmarshal(input, &args); err != nil || strings.TrimSpace(args.Keywords) == "" {
		return errorOutcome("参数错误: 缺少 keywords")
	}

	route := state.Route()
	if route == nil {
		return errorOutcome("请先规划路线，再搜索沿途的兴趣点")
	}

	pois, err := d.maps.SearchPOIAlongRoute(ctx, route.Polyline, args.Keywords, amap.AlongRouteOptions{
		Types:      amap.CategoryCode(args.Category),
		MaxResults: maxRecommendations,
	})
	if err != nil {
		return errorOutcome(toolErrorMessage(err))
	}

	recommendations := make([]map[string]any, 0, len(pois))
	for _, poi := range pois {
		recommendations = append(recommendations, map[string]any{
			"name":    poi.Name,
			"address": poi.Address,
			"rating":  orDefault(poi.Rating, "暂无评分"),
			"cost":    formatCost(poi.Cost),
			"tel":     orDefault(poi.Tel, "暂无电话"),
		})
	}

	payload := map[string]any{
		"count":           len(pois),
		"recommendations": recommendations,
	}
	return successOutcome(payload, MapData{POIs: pois})
}

func successOutcome(payload any, delta MapData) ToolOutcome {
	content, err := json.Marshal(payload)
	if err != nil {
		return errorOutcome("内部错误: 无法序列化工具结果")
	}
	return ToolOutcome{Content: string(content), MapData: delta}
}

func errorOutcome(message string) ToolOutcome {
	return ToolOutcome{Content: message, IsError: true}
}

// toolErrorMessage extracts the localized provider message when available.
func toolErrorMessage(err error) string {
	var amapErr *amap.Error
	if errors.As(err, &amapErr) && amapErr.Message != "" {
		return amapErr.Message
	}
	return err.Error()
}

func formatDistance(meters int) string {
	return fmt.Sprintf("%.1f 公里", float64(meters)/1000)
}

func formatDuration(seconds int) string {
	minutes := (seconds + 30) / 60
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d 分钟", minutes)
}

func formatTolls(tolls float64) string {
	if tolls <= 0 {
		return "无过路费"
	}
	return fmt.Sprintf("%.0f 元", tolls)
}

func formatCost(cost string) string {
	if cost == "" {
		return "暂无价格"
	}
	return fmt.Sprintf("人均 %s 元", cost)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
