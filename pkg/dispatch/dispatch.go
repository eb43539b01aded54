// Package dispatch runs accepted requests as background jobs: one goroutine
// per request, bounded by a semaphore, tracked so shutdown can drain
// in-flight work.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/skyops/irops/pkg/extractor"
	"github.com/skyops/irops/pkg/models"
	"github.com/skyops/irops/pkg/orchestrator"
)

// failTimeout bounds the terminal status write after the job context is gone.
const failTimeout = 10 * time.Second

// Pipeline is the full orchestration run for one disruption prompt.
type Pipeline interface {
	Run(ctx context.Context, disruptionID, prompt string) (*models.DisruptionAssessment, error)
}

// ResultStore receives the terminal request state.
type ResultStore interface {
	CompleteRequest(ctx context.Context, requestID, assessmentJSON string, executionTime time.Duration) error
	FailRequest(ctx context.Context, requestID, errorCode, message string) error
}

// SessionRecorder appends the interaction to the conversation session.
type SessionRecorder interface {
	Record(ctx context.Context, ia *models.SessionInteraction) error
}

// Dispatcher owns the background job lifecycle.
type Dispatcher struct {
	pipeline   Pipeline
	results    ResultStore
	sessions   SessionRecorder
	jobTimeout time.Duration
	logger     *slog.Logger

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewDispatcher creates a dispatcher bounding in-flight jobs to maxConcurrent.
func NewDispatcher(pipeline Pipeline, results ResultStore, sessions SessionRecorder, jobTimeout time.Duration, maxConcurrent int, logger *slog.Logger) *Dispatcher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Dispatcher{
		pipeline:   pipeline,
		results:    results,
		sessions:   sessions,
		jobTimeout: jobTimeout,
		logger:     logger.With("component", "dispatch"),
		sem:        make(chan struct{}, maxConcurrent),
	}
}

// Enqueue starts the background job for an accepted request and returns
// immediately. The job outlives the HTTP request that accepted it.
func (d *Dispatcher) Enqueue(rec *models.RequestRecord) {
	d.wg.Add(1)
	go d.run(rec)
}

// Shutdown waits for in-flight jobs to finish or the context to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dispatcher shutdown: %w", ctx.Err())
	}
}

func (d *Dispatcher) run(rec *models.RequestRecord) {
	defer d.wg.Done()
	d.sem <- struct{}{}
	defer func() { <-d.sem }()

	logger := d.logger.With("request_id", rec.RequestID)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("job panicked", "panic", r)
			d.fail(rec, start, models.ErrorCodeInternalError, fmt.Sprintf("internal error: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
	defer cancel()

	assessment, err := d.pipeline.Run(ctx, rec.RequestID, rec.Prompt)
	if err != nil {
		code, message := classify(err)
		logger.Error("job failed", "error_code", code, "error", err)
		d.fail(rec, start, code, message)
		return
	}

	execution := time.Since(start)
	payload, err := json.Marshal(assessment)
	if err != nil {
		logger.Error("marshaling assessment", "error", err)
		d.fail(rec, start, models.ErrorCodeInternalError, "failed to serialize assessment")
		return
	}

	writeCtx, writeCancel := context.WithTimeout(context.Background(), failTimeout)
	defer writeCancel()
	if err := d.results.CompleteRequest(writeCtx, rec.RequestID, string(payload), execution); err != nil {
		logger.Error("storing completed request", "error", err)
		return
	}
	logger.Info("job complete", "duration", execution, "status", assessment.Status)

	d.record(writeCtx, rec, &models.SessionInteraction{
		SessionID:       rec.SessionID,
		RequestID:       rec.RequestID,
		Prompt:          rec.Prompt,
		Response:        assessment.Arbitration.FinalDecision,
		Status:          string(models.RequestComplete),
		ExecutionTimeMS: execution.Milliseconds(),
	})
}

func (d *Dispatcher) fail(rec *models.RequestRecord, start time.Time, code, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), failTimeout)
	defer cancel()

	if err := d.results.FailRequest(ctx, rec.RequestID, code, message); err != nil {
		d.logger.Error("storing failed request", "request_id", rec.RequestID, "error", err)
	}
	d.record(ctx, rec, &models.SessionInteraction{
		SessionID:       rec.SessionID,
		RequestID:       rec.RequestID,
		Prompt:          rec.Prompt,
		Status:          string(models.RequestError),
		ErrorMessage:    message,
		ExecutionTimeMS: time.Since(start).Milliseconds(),
	})
}

func (d *Dispatcher) record(ctx context.Context, rec *models.RequestRecord, ia *models.SessionInteraction) {
	if rec.SessionID == "" {
		return
	}
	if err := d.sessions.Record(ctx, ia); err != nil {
		d.logger.Warn("recording session interaction", "session_id", rec.SessionID, "error", err)
	}
}

// classify maps a pipeline error to the persisted error code and message.
func classify(err error) (code, message string) {
	var halt *orchestrator.SafetyHaltError
	if errors.As(err, &halt) {
		return models.ErrorCodeSafetyHalt, halt.Error()
	}
	var xerr *extractor.ExtractionError
	if errors.As(err, &xerr) {
		return models.ErrorCodeExtractionFail, xerr.Error()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.ErrorCodeTimeout, "processing exceeded the job time budget"
	}
	return models.ErrorCodeProcessingError, err.Error()
}
