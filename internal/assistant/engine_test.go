package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/waypoint-labs/waypoint/internal/amap"
	"github.com/waypoint-labs/waypoint/internal/geo"
	"github.com/waypoint-labs/waypoint/internal/session"
)

// scriptedProvider replays a fixed sequence of completions and records the
// requests it received.
type scriptedProvider struct {
	completions []*Completion
	err         error
	requests    []CompletionRequest
}

func (p *scriptedProvider) Complete(_ context.Context, req CompletionRequest) (*Completion, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	if len(p.requests) > len(p.completions) {
		return &Completion{Blocks: []Block{TextBlock("done")}, StopReason: StopEndTurn}, nil
	}
	return p.completions[len(p.requests)-1], nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

func toolUseBlock(id, name, input string) Block {
	return Block{Kind: BlockToolUse, ToolUseID: id, ToolName: name, ToolInput: json.RawMessage(input)}
}

func newTestEngine(provider Provider, maps MapService, maxIterations int) (*Engine, *session.Store) {
	store := session.NewStore(session.StoreConfig{})
	dispatcher := NewDispatcher(DispatcherConfig{Maps: maps, Logger: zerolog.Nop()})
	engine := NewEngine(EngineConfig{
		Provider:      provider,
		Dispatcher:    dispatcher,
		Sessions:      store,
		MaxIterations: maxIterations,
		Logger:        zerolog.Nop(),
	})
	return engine, store
}

func TestConverse_PlainAnswer(t *testing.T) {
	provider := &scriptedProvider{
		completions: []*Completion{
			{Blocks: []Block{TextBlock("深圳今天适合自驾出游。")}, StopReason: StopEndTurn},
		},
	}
	engine, _ := newTestEngine(provider, &fakeMapService{}, 0)

	result, err := engine.Converse(context.Background(), "s1", []Message{
		{Role: RoleUser, Content: "今天适合出游吗"},
	})
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}

	if result.Content != "深圳今天适合自驾出游。" {
		t.Errorf("content = %q", result.Content)
	}
	if !result.MapData.IsEmpty() {
		t.Error("plain answer should carry no map data")
	}
	if len(provider.requests) != 1 {
		t.Errorf("model invocations = %d, want 1", len(provider.requests))
	}

	req := provider.requests[0]
	if req.System != SystemPrompt {
		t.Error("system prompt missing from request")
	}
	if len(req.Tools) != len(Catalog()) {
		t.Errorf("tools = %d, want %d", len(req.Tools), len(Catalog()))
	}
}

func TestConverse_ToolRoundTrip(t *testing.T) {
	route := &amap.RouteResult{Distance: 25400, Duration: 2520, Polyline: []geo.Point{{Lng: 114, Lat: 22.5}}}
	maps := &fakeMapService{routeResult: route}
	provider := &scriptedProvider{
		completions: []*Completion{
			{
				Blocks: []Block{
					TextBlock("好的，我来规划路线。"),
					toolUseBlock("tu_1", ToolPlanDrivingRoute, `{"origin":"深圳湾公园","destination":"东部华侨城"}`),
				},
				StopReason: StopToolUse,
			},
			{Blocks: []Block{TextBlock("路线已规划，全程 25.4 公里。")}, StopReason: StopEndTurn},
		},
	}
	engine, _ := newTestEngine(provider, maps, 0)

	result, err := engine.Converse(context.Background(), "s1", []Message{
		{Role: RoleUser, Content: "帮我规划去东部华侨城的路线"},
	})
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}

	if result.Content != "路线已规划，全程 25.4 公里。" {
		t.Errorf("content = %q", result.Content)
	}
	if result.MapData.Route != route {
		t.Error("route missing from map data")
	}

	// Second invocation carries the tool exchange: original user message,
	// assistant tool use, tool result.
	if len(provider.requests) != 2 {
		t.Fatalf("model invocations = %d, want 2", len(provider.requests))
	}
	turns := provider.requests[1].Turns
	if len(turns) != 3 {
		t.Fatalf("turns = %d, want 3", len(turns))
	}
	if turns[1].Role != RoleAssistant {
		t.Errorf("turn 1 role = %q, want assistant", turns[1].Role)
	}
	resultBlocks := turns[2].Blocks
	if len(resultBlocks) != 1 || resultBlocks[0].Kind != BlockToolResult {
		t.Fatal("expected a single tool-result block")
	}
	if resultBlocks[0].ToolUseID != "tu_1" {
		t.Errorf("tool result id = %q, want tu_1", resultBlocks[0].ToolUseID)
	}
	if resultBlocks[0].IsError {
		t.Errorf("unexpected error result: %s", resultBlocks[0].Result)
	}
}

func TestConverse_ToolResultsPreserveOrder(t *testing.T) {
	provider := &scriptedProvider{
		completions: []*Completion{
			{
				Blocks: []Block{
					toolUseBlock("tu_a", ToolGeocode, `{"address":"甲地"}`),
					toolUseBlock("tu_b", "bogus_tool", `{}`),
					toolUseBlock("tu_c", ToolGeocode, `{"address":"丙地"}`),
				},
				StopReason: StopToolUse,
			},
			{Blocks: []Block{TextBlock("完成")}, StopReason: StopEndTurn},
		},
	}
	maps := &fakeMapService{
		geocodeResult: &amap.GeocodeResult{FormattedAddress: "某地", Location: geo.Point{Lng: 114, Lat: 22.5}},
	}
	engine, _ := newTestEngine(provider, maps, 0)

	if _, err := engine.Converse(context.Background(), "s1", []Message{{Role: RoleUser, Content: "查三个地方"}}); err != nil {
		t.Fatalf("Converse: %v", err)
	}

	results := provider.requests[1].Turns[2].Blocks
	wantIDs := []string{"tu_a", "tu_b", "tu_c"}
	if len(results) != len(wantIDs) {
		t.Fatalf("results = %d, want %d", len(results), len(wantIDs))
	}
	for i, id := range wantIDs {
		if results[i].ToolUseID != id {
			t.Errorf("result %d id = %q, want %q", i, results[i].ToolUseID, id)
		}
	}
	if !results[1].IsError {
		t.Error("bogus tool should produce an error-tagged result, interleaved in order")
	}
	if results[0].IsError || results[2].IsError {
		t.Error("valid tool calls should succeed")
	}
}

func TestConverse_BudgetExhausted(t *testing.T) {
	// The model asks for a tool on every invocation and never answers.
	loop := &Completion{
		Blocks:     []Block{toolUseBlock("tu_n", ToolGeocode, `{"address":"某地"}`)},
		StopReason: StopToolUse,
	}
	provider := &scriptedProvider{completions: []*Completion{loop, loop, loop, loop, loop, loop, loop}}
	maps := &fakeMapService{
		geocodeResult: &amap.GeocodeResult{FormattedAddress: "某地", Location: geo.Point{Lng: 114, Lat: 22.5}},
	}
	engine, _ := newTestEngine(provider, maps, 3)

	result, err := engine.Converse(context.Background(), "s1", []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}

	if result.Content != budgetExhaustedReply {
		t.Errorf("content = %q, want fallback reply", result.Content)
	}
	if len(provider.requests) != 3 {
		t.Errorf("model invocations = %d, want 3", len(provider.requests))
	}
	// Map data gathered before exhaustion is still returned.
	if len(result.MapData.Markers) == 0 {
		t.Error("accumulated map data should survive budget exhaustion")
	}
}

func TestConverse_ProviderError(t *testing.T) {
	wantErr := errors.New("upstream unavailable")
	engine, _ := newTestEngine(&scriptedProvider{err: wantErr}, &fakeMapService{}, 0)

	_, err := engine.Converse(context.Background(), "s1", []Message{{Role: RoleUser, Content: "hi"}})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestConverse_SessionsAreIsolated(t *testing.T) {
	route := &amap.RouteResult{Distance: 1000, Polyline: []geo.Point{{Lng: 114, Lat: 22.5}}}
	maps := &fakeMapService{routeResult: route}
	provider := &scriptedProvider{
		completions: []*Completion{
			{
				Blocks:     []Block{toolUseBlock("tu_1", ToolPlanDrivingRoute, `{"origin":"A","destination":"B"}`)},
				StopReason: StopToolUse,
			},
			{Blocks: []Block{TextBlock("好了")}, StopReason: StopEndTurn},
		},
	}
	engine, store := newTestEngine(provider, maps, 0)

	if _, err := engine.Converse(context.Background(), "alpha", []Message{{Role: RoleUser, Content: "规划路线"}}); err != nil {
		t.Fatalf("Converse: %v", err)
	}

	if store.Get("alpha").Route() != route {
		t.Error("route should be stored for the session that planned it")
	}
	if store.Get("beta").Route() != nil {
		t.Error("route leaked into an unrelated session")
	}
}

func TestConverse_MapDataAccumulatesAcrossIterations(t *testing.T) {
	route := &amap.RouteResult{Distance: 5000, Polyline: []geo.Point{{Lng: 114, Lat: 22.5}}}
	maps := &fakeMapService{
		routeResult: route,
		poiResults:  []amap.POIResult{{ID: "p1", Name: "加油站"}},
	}
	provider := &scriptedProvider{
		completions: []*Completion{
			{
				Blocks:     []Block{toolUseBlock("tu_1", ToolPlanDrivingRoute, `{"origin":"A","destination":"B"}`)},
				StopReason: StopToolUse,
			},
			{
				Blocks:     []Block{toolUseBlock("tu_2", ToolSearchPOIAlongRoute, `{"keywords":"加油站"}`)},
				StopReason: StopToolUse,
			},
			{Blocks: []Block{TextBlock("沿途有 1 个加油站。")}, StopReason: StopEndTurn},
		},
	}
	engine, _ := newTestEngine(provider, maps, 0)

	result, err := engine.Converse(context.Background(), "s1", []Message{{Role: RoleUser, Content: "去B，顺便找加油站"}})
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}

	if result.MapData.Route != route {
		t.Error("route from first iteration missing")
	}
	if len(result.MapData.POIs) != 1 {
		t.Error("pois from second iteration missing")
	}
}
