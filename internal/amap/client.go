package amap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/waypoint-labs/waypoint/internal/geo"
	"github.com/waypoint-labs/waypoint/internal/provider/resilience"
)

const (
	// ProviderName identifies the mapping provider.
	ProviderName = "amap"

	// DefaultBaseURL is the AMap Web Service API base URL.
	DefaultBaseURL = "https://restapi.amap.com/v3"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is the request budget against the provider. The
	// along-route aggregator fans out several searches per tool call, so the
	// client paces itself instead of relying on caller discipline.
	DefaultRateLimit = rate.Limit(10)

	// DefaultRateBurst is the burst size for the request budget.
	DefaultRateBurst = 5
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the AMap client.
type ClientConfig struct {
	// APIKey is the AMap Web Service key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the AMap API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// RateLimit caps outbound requests per second (optional).
	RateLimit rate.Limit

	// RateBurst is the outbound burst size (optional).
	RateBurst int

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an AMap Web Service API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewClient creates a new AMap client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	limit := cfg.RateLimit
	if limit == 0 {
		limit = DefaultRateLimit
	}
	burst := cfg.RateBurst
	if burst == 0 {
		burst = DefaultRateBurst
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		if cfg.Registry != nil {
			clientCfg.Registry = cfg.Registry
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// get performs a rate-limited GET against an AMap endpoint and decodes the
// JSON body into out. Transport failures and undecodable bodies are errors;
// provider-level status handling is left to the caller.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Op: op, Message: "request canceled while waiting for rate limit", Err: err}
	}

	params.Set("key", c.apiKey)
	params.Set("output", "json")

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &Error{Op: op, Message: "creating request", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Message: "failed to reach mapping provider", Err: ErrProviderUnavailable}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &Error{
			Op:      op,
			Message: fmt.Sprintf("mapping provider returned status %d", resp.StatusCode),
			Err:     ErrProviderUnavailable,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: op, Message: "reading response body", Err: err}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Op: op, Message: "decoding response", Err: ErrMalformedResponse}
	}
	return nil
}

// Geocode resolves a free-text address to a coordinate. A city hint narrows
// resolution; leave it empty for nationwide matching. Returns (nil, nil)
// when the provider has no match.
func (c *Client) Geocode(ctx context.Context, address, city string) (*GeocodeResult, error) {
	params := url.Values{}
	params.Set("address", address)
	if city != "" {
		params.Set("city", city)
	}

	var resp geocodeResponse
	if err := c.get(ctx, "geocode", "/geocode/geo", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != statusOK || len(resp.Geocodes) == 0 {
		c.logger.Debug().Str("address", address).Str("info", resp.Info).Msg("geocode: no match")
		return nil, nil
	}

	// First candidate wins when several match.
	candidate := resp.Geocodes[0]
	gcj, err := parsePoint(candidate.Location)
	if err != nil {
		return nil, &Error{Op: "geocode", Message: err.Error(), Err: ErrMalformedResponse}
	}

	city2 := string(candidate.City)
	if city2 == "" {
		// Municipalities report an empty city; fall back to the province.
		city2 = string(candidate.Province)
	}

	return &GeocodeResult{
		FormattedAddress: candidate.FormattedAddress,
		Location:         geo.GCJ02ToWGS84(gcj),
		LocationGCJ02:    gcj,
		Province:         string(candidate.Province),
		City:             city2,
		District:         string(candidate.District),
		Adcode:           string(candidate.Adcode),
	}, nil
}

// ReverseGeocode resolves a coordinate to a formatted address. The point is
// WGS-84 unless gcj02 is set. Returns ("", nil) when the provider cannot
// describe the location.
func (c *Client) ReverseGeocode(ctx context.Context, p geo.Point, gcj02 bool) (string, error) {
	loc := p
	if !gcj02 {
		loc = geo.WGS84ToGCJ02(p)
	}

	params := url.Values{}
	params.Set("location", formatPoint(loc))

	var resp regeoResponse
	if err := c.get(ctx, "reverse_geocode", "/geocode/regeo", params, &resp); err != nil {
		return "", err
	}
	if resp.Status != statusOK || resp.Regeocode == nil {
		return "", nil
	}
	return string(resp.Regeocode.FormattedAddress), nil
}

// resolve turns a RoutePoint into a GCJ-02 coordinate, geocoding free text
// nationwide. An unresolvable address is a hard failure: a route cannot be
// planned around a missing endpoint.
func (c *Client) resolve(ctx context.Context, kind string, pt RoutePoint) (geo.Point, error) {
	if pt.Location != nil {
		return geo.WGS84ToGCJ02(*pt.Location), nil
	}
	result, err := c.Geocode(ctx, pt.Address, "")
	if err != nil {
		return geo.Point{}, err
	}
	if result == nil {
		return geo.Point{}, &Error{
			Op:      "plan_driving_route",
			Message: fmt.Sprintf("无法解析%s地址: %s", kind, pt.Address),
			Err:     ErrUnresolvedAddress,
		}
	}
	return result.LocationGCJ02, nil
}

// PlanDrivingRoute plans a driving route between two endpoints with optional
// waypoints, using the provider's congestion-avoidance strategy. Returns
// (nil, nil) when the provider finds no route.
func (c *Client) PlanDrivingRoute(ctx context.Context, origin, destination RoutePoint, waypoints []RoutePoint) (*RouteResult, error) {
	originGCJ, err := c.resolve(ctx, "起点", origin)
	if err != nil {
		return nil, err
	}
	destGCJ, err := c.resolve(ctx, "终点", destination)
	if err != nil {
		return nil, err
	}

	waypointGCJ := make([]geo.Point, 0, len(waypoints))
	for _, wp := range waypoints {
		p, err := c.resolve(ctx, "途经点", wp)
		if err != nil {
			return nil, err
		}
		waypointGCJ = append(waypointGCJ, p)
	}

	params := url.Values{}
	params.Set("origin", formatPoint(originGCJ))
	params.Set("destination", formatPoint(destGCJ))
	params.Set("extensions", "all")
	// Strategy 10: avoid congestion.
	params.Set("strategy", "10")
	if len(waypointGCJ) > 0 {
		joined := ""
		for i, p := range waypointGCJ {
			if i > 0 {
				joined += ";"
			}
			joined += formatPoint(p)
		}
		params.Set("waypoints", joined)
	}

	var resp drivingResponse
	if err := c.get(ctx, "plan_driving_route", "/direction/driving", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != statusOK || resp.Route == nil || len(resp.Route.Paths) == 0 {
		c.logger.Debug().Str("info", resp.Info).Msg("driving route: no route")
		return nil, nil
	}

	// First path wins among alternatives.
	path := resp.Route.Paths[0]
	result := &RouteResult{
		Distance:    atoiLoose(path.Distance),
		Duration:    atoiLoose(path.Duration),
		Tolls:       atofLoose(path.Tolls),
		Origin:      geo.GCJ02ToWGS84(originGCJ),
		Destination: geo.GCJ02ToWGS84(destGCJ),
		Steps:       make([]RouteStep, 0, len(path.Steps)),
	}
	for _, p := range waypointGCJ {
		result.Waypoints = append(result.Waypoints, geo.GCJ02ToWGS84(p))
	}

	for _, step := range path.Steps {
		stepLine, err := parsePolyline(step.Polyline)
		if err != nil {
			return nil, &Error{Op: "plan_driving_route", Message: err.Error(), Err: ErrMalformedResponse}
		}
		result.Polyline = append(result.Polyline, stepLine...)
		result.Steps = append(result.Steps, RouteStep{
			Instruction: string(step.Instruction),
			Road:        string(step.Road),
			Distance:    atoiLoose(step.Distance),
			Duration:    atoiLoose(step.Duration),
			Polyline:    stepLine,
		})
	}

	c.logger.Debug().
		Int("distance_m", result.Distance).
		Int("duration_s", result.Duration).
		Int("steps", len(result.Steps)).
		Msg("driving route planned")

	return result, nil
}

// SearchPOIAround searches points of interest around a center. Returns an
// empty slice, never nil-with-error, when the provider finds nothing.
func (c *Client) SearchPOIAround(ctx context.Context, center geo.Point, keywords string, opts AroundOptions) ([]POIResult, error) {
	radius := opts.Radius
	if radius == 0 {
		radius = 3000
	}
	limit := opts.Limit
	if limit == 0 {
		limit = 20
	}
	page := opts.Page
	if page == 0 {
		page = 1
	}
	sortRule := opts.Sort
	if sortRule == "" {
		sortRule = SortByWeight
	}

	loc := center
	if !opts.CenterIsGCJ02 {
		loc = geo.WGS84ToGCJ02(center)
	}

	params := url.Values{}
	params.Set("location", formatPoint(loc))
	params.Set("keywords", keywords)
	params.Set("radius", strconv.Itoa(radius))
	params.Set("offset", strconv.Itoa(limit))
	params.Set("page", strconv.Itoa(page))
	params.Set("sortrule", string(sortRule))
	params.Set("extensions", "all")
	if opts.Types != "" {
		params.Set("types", opts.Types)
	}

	var resp poiResponse
	if err := c.get(ctx, "search_poi_around", "/place/around", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != statusOK || len(resp.POIs) == 0 {
		return []POIResult{}, nil
	}

	results := make([]POIResult, 0, len(resp.POIs))
	for _, poi := range resp.POIs {
		gcj, err := parsePoint(poi.Location)
		if err != nil {
			return nil, &Error{Op: "search_poi_around", Message: err.Error(), Err: ErrMalformedResponse}
		}

		result := POIResult{
			ID:            poi.ID,
			Name:          poi.Name,
			Type:          string(poi.Type),
			Typecode:      string(poi.Typecode),
			Address:       string(poi.Address),
			Location:      geo.GCJ02ToWGS84(gcj),
			LocationGCJ02: gcj,
			Tel:           string(poi.Tel),
			Distance:      atoiLoose(string(poi.Distance)),
			BusinessArea:  string(poi.BusinessArea),
		}
		if poi.BizExt != nil {
			result.Rating = string(poi.BizExt.Rating)
			result.Cost = string(poi.BizExt.Cost)
			result.OpeningHours = string(poi.BizExt.OpenTime)
		}
		for _, photo := range poi.Photos {
			if photo.URL != "" {
				result.Photos = append(result.Photos, string(photo.URL))
			}
		}
		results = append(results, result)
	}
	return results, nil
}
