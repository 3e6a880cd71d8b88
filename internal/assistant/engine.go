package assistant

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/waypoint-labs/waypoint/internal/session"
)

// DefaultMaxIterations bounds model invocations per conversation turn.
const DefaultMaxIterations = 5

// budgetExhaustedReply is returned when a turn runs out of iterations
// without the model producing a final answer.
const budgetExhaustedReply = "抱歉，处理超时，请重试。"

// ErrNoProvider is returned when the engine is constructed without a model
// provider.
var ErrNoProvider = errors.New("assistant: no provider configured")

// EngineConfig configures an Engine.
type EngineConfig struct {
	Provider   Provider
	Dispatcher *Dispatcher
	Sessions   *session.Store

	// MaxIterations bounds model invocations per turn. Defaults to
	// DefaultMaxIterations.
	MaxIterations int

	Logger  zerolog.Logger
	Metrics *Metrics
}

// Engine drives one conversation turn to completion: it invokes the model,
// executes any requested tools in order, and repeats until the model
// answers or the iteration budget runs out.
type Engine struct {
	provider      Provider
	dispatcher    *Dispatcher
	sessions      *session.Store
	maxIterations int
	logger        zerolog.Logger
	metrics       *Metrics
}

// NewEngine creates an engine from the given configuration.
func NewEngine(cfg EngineConfig) *Engine {
	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Engine{
		provider:      cfg.Provider,
		dispatcher:    cfg.Dispatcher,
		sessions:      cfg.Sessions,
		maxIterations: maxIterations,
		logger:        cfg.Logger.With().Str("component", "engine").Logger(),
		metrics:       cfg.Metrics,
	}
}

// Converse runs one conversation turn for the given session. The caller
// supplies the full message history including the newest user message; the
// engine folds tool executions into the transcript until the model stops
// requesting tools or the iteration budget is exhausted. Map data produced
// by tool calls accumulates across iterations, later results of the same
// kind overwriting earlier ones.
func (e *Engine) Converse(ctx context.Context, sessionID string, history []Message) (*ChatResult, error) {
	if e.provider == nil {
		return nil, ErrNoProvider
	}

	state := e.sessions.Get(sessionID)
	turns := make([]Turn, 0, len(history))
	for _, msg := range history {
		turns = append(turns, Turn{Role: msg.Role, Blocks: []Block{TextBlock(msg.Content)}})
	}

	var mapData MapData
	for iteration := 1; iteration <= e.maxIterations; iteration++ {
		completion, err := e.provider.Complete(ctx, CompletionRequest{
			System: SystemPrompt,
			Turns:  turns,
			Tools:  Catalog(),
		})
		if err != nil {
			return nil, err
		}

		toolUses := completion.ToolUses()
		if len(toolUses) == 0 || completion.StopReason == StopEndTurn {
			e.logger.Debug().
				Str("session_id", sessionID).
				Int("iterations", iteration).
				Msg("turn complete")
			if e.metrics != nil {
				e.metrics.RecordTurn(ctx, iteration, false)
			}
			return &ChatResult{Content: completion.Text(), MapData: mapData}, nil
		}

		// Tools run sequentially in the order the model issued them;
		// results are correlated positionally by tool-use id.
		results := make([]Block, 0, len(toolUses))
		for _, use := range toolUses {
			outcome := e.dispatcher.Execute(ctx, state, use.ToolName, use.ToolInput)
			mapData.Merge(outcome.MapData)
			results = append(results, ToolResultBlock(use.ToolUseID, outcome.Content, outcome.IsError))
		}

		turns = append(turns,
			Turn{Role: RoleAssistant, Blocks: completion.Blocks},
			Turn{Role: RoleUser, Blocks: results},
		)
	}

	e.logger.Warn().
		Str("session_id", sessionID).
		Int("max_iterations", e.maxIterations).
		Msg("iteration budget exhausted")
	if e.metrics != nil {
		e.metrics.RecordTurn(ctx, e.maxIterations, true)
	}
	return &ChatResult{Content: budgetExhaustedReply, MapData: mapData}, nil
}
