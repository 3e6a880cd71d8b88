// Package assistant implements the trip-planning chat assistant: the tool
// catalog exposed to the language model, the dispatcher that executes tool
// invocations against the mapping client, and the bounded agentic loop that
// drives a conversation turn to completion.
package assistant

import (
	"context"
	"encoding/json"

	"github.com/waypoint-labs/waypoint/internal/amap"
	"github.com/waypoint-labs/waypoint/internal/geo"
)

// Role identifies the author of a conversation entry.
type Role string

const (
	// RoleUser marks caller-authored entries, including tool results.
	RoleUser Role = "user"
	// RoleAssistant marks model-authored entries.
	RoleAssistant Role = "assistant"
)

// Message is an inbound conversation message as supplied by the HTTP layer.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// BlockKind discriminates the content block variants of the messages
// protocol.
type BlockKind string

const (
	// BlockText is a plain text segment.
	BlockText BlockKind = "text"
	// BlockToolUse is a model request to execute a named tool.
	BlockToolUse BlockKind = "tool_use"
	// BlockToolResult carries the outcome of one tool execution back to the
	// model, correlated by the originating tool-use id.
	BlockToolResult BlockKind = "tool_result"
)

// Block is one content block of a transcript entry.
type Block struct {
	Kind BlockKind

	// Text is set for BlockText.
	Text string

	// ToolUseID correlates a BlockToolUse with its BlockToolResult.
	ToolUseID string

	// ToolName and ToolInput are set for BlockToolUse.
	ToolName  string
	ToolInput json.RawMessage

	// Result and IsError are set for BlockToolResult.
	Result  string
	IsError bool
}

// TextBlock returns a plain text block.
func TextBlock(text string) Block {
	return Block{Kind: BlockText, Text: text}
}

// ToolResultBlock returns a tool-result block for the given tool-use id.
func ToolResultBlock(toolUseID, result string, isError bool) Block {
	return Block{Kind: BlockToolResult, ToolUseID: toolUseID, Result: result, IsError: isError}
}

// Turn is one transcript entry: a role plus its content blocks.
type Turn struct {
	Role   Role
	Blocks []Block
}

// StopReason signals why the model stopped generating.
type StopReason string

const (
	// StopEndTurn means the model finished its answer.
	StopEndTurn StopReason = "end_turn"
	// StopToolUse means the model is waiting for tool results.
	StopToolUse StopReason = "tool_use"
	// StopMaxTokens means generation hit the token budget.
	StopMaxTokens StopReason = "max_tokens"
)

// CompletionRequest is one model invocation: the fixed system instruction,
// the transcript so far and the callable tool catalog.
type CompletionRequest struct {
	System string
	Turns  []Turn
	Tools  []ToolDescriptor
}

// Completion is the model's response to one CompletionRequest.
type Completion struct {
	Blocks     []Block
	StopReason StopReason
}

// ToolUses returns the tool-use blocks of the completion in issued order.
func (c *Completion) ToolUses() []Block {
	var uses []Block
	for _, block := range c.Blocks {
		if block.Kind == BlockToolUse {
			uses = append(uses, block)
		}
	}
	return uses
}

// Text concatenates the completion's text segments.
func (c *Completion) Text() string {
	text := ""
	for _, block := range c.Blocks {
		if block.Kind != BlockText {
			continue
		}
		if text != "" {
			text += "\n"
		}
		text += block.Text
	}
	return text
}

// Provider is a chat completion provider speaking the messages protocol.
type Provider interface {
	// Complete sends one completion request and returns the model response.
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// ParameterSpec describes one tool parameter for the model.
type ParameterSpec struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Enum        []string `json:"enum,omitempty"`
}

// ToolDescriptor describes one callable tool for the model.
type ToolDescriptor struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Parameters  map[string]ParameterSpec `json:"parameters"`
	Required    []string                 `json:"required,omitempty"`
}

// MarkerKind tags what a map marker represents.
type MarkerKind string

const (
	MarkerLocation    MarkerKind = "location"
	MarkerOrigin      MarkerKind = "origin"
	MarkerDestination MarkerKind = "destination"
	MarkerWaypoint    MarkerKind = "waypoint"
)

// Marker is a single point to render on the map, WGS-84 only.
type Marker struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Location geo.Point  `json:"location"`
	Address  string     `json:"address,omitempty"`
	Kind     MarkerKind `json:"kind,omitempty"`
}

// MapData is the geospatial payload accumulated over one turn for the map
// renderer. All coordinates are WGS-84.
type MapData struct {
	Route   *amap.RouteResult `json:"route,omitempty"`
	POIs    []amap.POIResult  `json:"pois,omitempty"`
	Markers []Marker          `json:"markers,omitempty"`
}

// Merge folds a later delta into the accumulated map data. A delta of the
// same kind overwrites what an earlier tool call produced within the turn.
func (m *MapData) Merge(delta MapData) {
	if delta.Route != nil {
		m.Route = delta.Route
	}
	if delta.POIs != nil {
		m.POIs = delta.POIs
	}
	if delta.Markers != nil {
		m.Markers = delta.Markers
	}
}

// IsEmpty reports whether no tool call produced map data this turn.
func (m MapData) IsEmpty() bool {
	return m.Route == nil && m.POIs == nil && m.Markers == nil
}

// ChatResult is the outcome of one conversation turn.
type ChatResult struct {
	// Content is the assistant's final answer.
	Content string `json:"content"`

	// MapData is the accumulated geospatial payload for the renderer.
	MapData MapData `json:"map_data"`
}
