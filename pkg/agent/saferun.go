package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/skyops/irops/pkg/config"
	"github.com/skyops/irops/pkg/models"
)

// Invoker runs one agent invocation. Satisfied by Runner; narrowed so the
// wrapper and orchestrator can be tested with scripted agents.
type Invoker interface {
	Run(ctx context.Context, inv Invocation) (*models.AgentResponse, error)
}

// SafeRunner wraps agent invocations so that nothing escapes: timeouts,
// errors and panics all come back as typed AgentResponses.
type SafeRunner struct {
	invoker  Invoker
	timeouts config.Timeouts
	logger   *slog.Logger
}

func NewSafeRunner(invoker Invoker, timeouts config.Timeouts, logger *slog.Logger) *SafeRunner {
	return &SafeRunner{
		invoker:  invoker,
		timeouts: timeouts,
		logger:   logger.With("component", "safe_runner"),
	}
}

// Run never returns an error and never panics. The returned response always
// has duration_seconds measured around the call.
func (s *SafeRunner) Run(ctx context.Context, inv Invocation) (response *models.AgentResponse) {
	timeout := s.timeouts.AgentTimeout(inv.Agent.IsSafety())
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("agent panicked", "agent", inv.Agent, "phase", inv.Phase, "panic", r)
			response = s.failure(inv, start, models.StatusError, fmt.Sprintf("panic: %v", r), "panic")
		}
		response.DurationSeconds = time.Since(start).Seconds()
	}()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := s.invoker.Run(runCtx, inv)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			s.logger.Warn("agent timed out", "agent", inv.Agent, "phase", inv.Phase, "timeout", timeout)
			resp = s.failure(inv, start, models.StatusTimeout, fmt.Sprintf("agent exceeded %s timeout", timeout), "timeout")
			resp.TimeoutThreshold = timeout.Seconds()
			return resp
		}
		s.logger.Error("agent failed", "agent", inv.Agent, "phase", inv.Phase, "error", err)
		return s.failure(inv, start, models.StatusError, err.Error(), fmt.Sprintf("%T", err))
	}
	if resp == nil {
		// An invoker that returns (nil, nil) would otherwise escape the
		// never-nil contract and crash the deferred duration write.
		s.logger.Error("agent returned no response", "agent", inv.Agent, "phase", inv.Phase)
		return s.failure(inv, start, models.StatusError, "agent returned no response", "nil_response")
	}
	return resp
}

func (s *SafeRunner) failure(inv Invocation, start time.Time, status models.ResponseStatus, message, errorType string) *models.AgentResponse {
	resp := &models.AgentResponse{
		AgentName:        inv.Agent,
		Confidence:       0,
		Status:           status,
		Error:            message,
		ErrorType:        errorType,
		Timestamp:        start.UTC(),
		IsSafetyCritical: inv.Agent.IsSafety(),
	}
	if inv.Agent.IsSafety() {
		resp.BindingConstraints = []string{}
	}
	return resp
}
