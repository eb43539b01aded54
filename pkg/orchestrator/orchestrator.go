// Package orchestrator drives the three-phase decision pipeline: parallel
// initial fan-out of all seven agents, a revision round with peer views, and
// final arbitration.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skyops/irops/pkg/agent"
	"github.com/skyops/irops/pkg/extractor"
	"github.com/skyops/irops/pkg/models"
	"github.com/skyops/irops/pkg/report"
)

// SafeInvoker is the never-fails agent entry point. Satisfied by
// agent.SafeRunner.
type SafeInvoker interface {
	Run(ctx context.Context, inv agent.Invocation) *models.AgentResponse
}

// Arbitrator is the Phase 3 decision stage.
type Arbitrator interface {
	Arbitrate(ctx context.Context, flight *models.FlightInfo, initial, revised *models.Collation) (*models.ArbitratorOutput, error)
}

// FlightExtractor resolves the free-text prompt to flight identity.
type FlightExtractor interface {
	Extract(ctx context.Context, prompt string) (*models.FlightInfo, error)
}

// SafetyHaltError aborts the pipeline when a safety agent fails Phase 1.
type SafetyHaltError struct {
	FailedAgents []models.AgentName
}

func (e *SafetyHaltError) Error() string {
	names := make([]string, len(e.FailedAgents))
	for i, a := range e.FailedAgents {
		names[i] = string(a)
	}
	return fmt.Sprintf("safety halt: safety agent(s) failed in the initial phase: %s", strings.Join(names, ", "))
}

// Orchestrator owns the pipeline. Safe for concurrent use; each Run is an
// independent orchestration.
type Orchestrator struct {
	extractor  FlightExtractor
	invoker    SafeInvoker
	arbitrator Arbitrator
	logger     *slog.Logger
	tracer     trace.Tracer
}

func New(ext FlightExtractor, invoker SafeInvoker, arb Arbitrator, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		extractor:  ext,
		invoker:    invoker,
		arbitrator: arb,
		logger:     logger.With("component", "orchestrator"),
		tracer:     otel.Tracer("irops/orchestrator"),
	}
}

// Run executes the full pipeline for one disruption prompt.
func (o *Orchestrator) Run(ctx context.Context, disruptionID, prompt string) (*models.DisruptionAssessment, error) {
	start := time.Now()
	logger := o.logger.With("disruption_id", disruptionID)

	ctx, span := o.tracer.Start(ctx, "disruption.run",
		trace.WithAttributes(attribute.String("disruption_id", disruptionID)))
	defer span.End()

	flight, err := o.extractor.Extract(ctx, prompt)
	if err != nil {
		var xerr *extractor.ExtractionError
		if errors.As(err, &xerr) {
			logger.Warn("flight-info extraction failed", "kind", xerr.Kind, "error", err)
		}
		return nil, err
	}
	logger.Info("starting orchestration", "flight_number", flight.FlightNumber, "flight_date", flight.Date)

	initial := o.runPhase(ctx, models.PhaseInitial, prompt, flight, nil)
	logger.Info("initial phase complete", "status_counts", initial.CountByStatus())

	if failed := initial.FailedSafetyAgents(); len(failed) > 0 {
		logger.Error("safety agent failure in initial phase", "failed_agents", failed)
		return &models.DisruptionAssessment{
			DisruptionID:     disruptionID,
			FlightInfo:       *flight,
			InitialCollation: initial,
			Status:           models.AssessmentSafetyHalt,
			DurationSeconds:  time.Since(start).Seconds(),
		}, &SafetyHaltError{FailedAgents: failed}
	}

	revised := o.runPhase(ctx, models.PhaseRevision, prompt, flight, initial)
	logger.Info("revision phase complete", "status_counts", revised.CountByStatus())

	arbitration, err := o.arbitrator.Arbitrate(ctx, flight, initial, revised)
	if err != nil {
		return nil, fmt.Errorf("arbitration: %w", err)
	}
	logger.Info("arbitration complete",
		"final_decision", arbitration.FinalDecision,
		"solutions", len(arbitration.SolutionOptions))

	return &models.DisruptionAssessment{
		DisruptionID:     disruptionID,
		FlightInfo:       *flight,
		InitialCollation: initial,
		RevisedCollation: revised,
		Arbitration:      arbitration,
		Report:           report.Build(disruptionID, flight, arbitration),
		Status:           models.AssessmentComplete,
		DurationSeconds:  time.Since(start).Seconds(),
	}, nil
}

// runPhase fans all seven agents out concurrently and blocks until every
// result is materialized. Agents never see each other's output inside a
// phase; revision peer views are snapshots of the prior collation.
func (o *Orchestrator) runPhase(ctx context.Context, phase models.Phase, prompt string, flight *models.FlightInfo, prior *models.Collation) *models.Collation {
	phaseStart := time.Now()
	ctx, span := o.tracer.Start(ctx, "phase."+string(phase))
	defer span.End()
	results := make(chan *models.AgentResponse, len(models.AllAgents))

	var wg sync.WaitGroup
	for _, name := range models.AllAgents {
		inv := agent.Invocation{
			Agent:      name,
			Phase:      phase,
			Prompt:     prompt,
			FlightInfo: flight,
		}
		if phase == models.PhaseRevision && prior != nil {
			inv.PeerViews = agent.BuildPeerViews(prior, name)
			inv.Own = prior.Responses[name]
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- o.invoker.Run(ctx, inv)
		}()
	}
	wg.Wait()
	close(results)

	collation := models.NewCollation(phase)
	for resp := range results {
		collation.Responses[resp.AgentName] = resp
	}
	collation.DurationSeconds = time.Since(phaseStart).Seconds()
	return collation
}
