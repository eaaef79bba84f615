package agent

import (
	"context"
	"strings"
	"time"

	dasherr "github.com/abdul-hamid-achik/dashai/internal/errors"
	"github.com/abdul-hamid-achik/dashai/internal/logging"
	"github.com/abdul-hamid-achik/dashai/internal/tools"
	"go.uber.org/multierr"
)

// DispatchResult aggregates the outcome of all tool calls found in one reply.
type DispatchResult struct {
	Confirmation       string // Newline-joined confirmations, in call order
	ShouldRefetchTasks bool
	DidAddRagDoc       bool
	Dispatched         bool // The reply carried a tool-call payload
}

// ToolExecutor parses assistant replies and runs the tool calls they contain.
type ToolExecutor struct {
	tools *tools.Registry
	log   *logging.Logger
}

// NewToolExecutor creates a new ToolExecutor.
func NewToolExecutor(registry *tools.Registry, log *logging.Logger) *ToolExecutor {
	return &ToolExecutor{
		tools: registry,
		log:   logging.Or(log).WithPrefix("tools"),
	}
}

// Dispatch runs every call in reply sequentially and in order. A failing call
// does not stop the batch: its error is collected and the remaining calls
// still run. Projects are refetched once after the loop when at least one
// project-mutating call succeeded. A reply without a tool-call payload
// dispatches nothing and is not an error.
func (te *ToolExecutor) Dispatch(ctx context.Context, reply string, actions tools.Actions) (DispatchResult, error) {
	invocations := ParseToolCalls(reply, te.tools)
	if invocations == nil {
		return DispatchResult{}, nil
	}

	result := DispatchResult{Dispatched: true}
	var (
		lines   []string
		effects tools.Effect
		errs    error
	)

	for _, inv := range invocations {
		switch inv := inv.(type) {
		case UnknownInvocation:
			te.log.Warn("skipping unknown tool", logging.ToolName(inv.ToolName))

		case MalformedInvocation:
			te.log.Warn("tool call has invalid arguments", logging.ToolName(inv.ToolName), logging.Error(inv.Err))
			errs = multierr.Append(errs, inv.Err)

		case ToolInvocation:
			start := time.Now()
			outcome, err := inv.Call.Execute(ctx, actions)
			if err != nil {
				te.log.Error("tool call failed", logging.ToolName(inv.Name()), logging.Error(err), logging.DurationSince(start))
				errs = multierr.Append(errs, dasherr.ToolExecutionFailed(inv.Name(), err))
				continue
			}
			te.log.Info("tool call succeeded", logging.ToolName(inv.Name()), logging.DurationSince(start))
			lines = append(lines, outcome.Confirmation)
			effects |= outcome.Effects
		}
	}

	if effects.Has(tools.EffectProjectsChanged) {
		if err := actions.RefetchProjects(ctx); err != nil {
			te.log.Warn("refetching projects failed", logging.Error(err))
		}
	}

	result.Confirmation = strings.Join(lines, "\n")
	result.ShouldRefetchTasks = effects.Has(tools.EffectTasksChanged)
	result.DidAddRagDoc = effects.Has(tools.EffectDocumentAdded)
	return result, errs
}
