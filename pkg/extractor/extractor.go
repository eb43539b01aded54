// Package extractor turns a free-text disruption prompt into validated
// flight identity via schema-constrained structured output.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/skyops/irops/pkg/llm"
	"github.com/skyops/irops/pkg/models"
)

// ExtractionError kinds.
const (
	KindEmptyPrompt = "empty_prompt"
	KindValidation  = "validation"
	KindTimeout     = "timeout"
	KindProvider    = "provider"
)

// ExtractionError reports why a prompt could not be turned into FlightInfo.
type ExtractionError struct {
	Kind    string
	Message string
	Hint    string
}

func (e *ExtractionError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("extraction failed (%s): %s (%s)", e.Kind, e.Message, e.Hint)
	}
	return fmt.Sprintf("extraction failed (%s): %s", e.Kind, e.Message)
}

const recordFlightInfoTool = "record_flight_info"

const flightInfoSchema = `{
	"type": "object",
	"properties": {
		"flight_number": {"type": "string", "description": "IATA flight number exactly as referenced, e.g. EY123"},
		"flight_date": {"type": "string", "description": "Flight date as YYYY-MM-DD, or the literal word today, tomorrow or yesterday when the prompt is relative"},
		"disruption_event": {"type": "string", "description": "One-sentence summary of what happened to the flight"}
	},
	"required": ["flight_number", "flight_date", "disruption_event"]
}`

const systemPrompt = `You extract flight identity from airline disruption reports.
Read the report and record the flight number, the flight date and a one-sentence
summary of the disruption event. If the report uses a relative day, record the
literal word (today, tomorrow or yesterday) and do not guess a calendar date.`

// Extractor is the flight-info extraction stage.
type Extractor struct {
	client  llm.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger

	// now is the orchestrator clock used to resolve relative dates.
	now func() time.Time
}

func New(client llm.Client, model string, timeout time.Duration, logger *slog.Logger) *Extractor {
	return &Extractor{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger.With("component", "extractor"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Extract resolves a prompt to validated FlightInfo. Every failure is an
// *ExtractionError; the empty-prompt check runs before any provider call.
func (e *Extractor) Extract(ctx context.Context, prompt string) (*models.FlightInfo, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, &ExtractionError{Kind: KindEmptyPrompt, Message: "prompt is empty"}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.Complete(ctx, &llm.Request{
		Model:  e.model,
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
		},
		Tools: []llm.ToolDefinition{{
			Name:        recordFlightInfoTool,
			Description: "Record the flight identity found in the disruption report.",
			InputSchema: json.RawMessage(flightInfoSchema),
		}},
		ForceTool: recordFlightInfoTool,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &ExtractionError{Kind: KindTimeout, Message: "flight-info extraction timed out"}
		}
		return nil, &ExtractionError{Kind: KindProvider, Message: err.Error()}
	}

	args, err := resp.StructuredArguments(recordFlightInfoTool)
	if err != nil {
		return nil, &ExtractionError{Kind: KindProvider, Message: err.Error()}
	}

	var recorded struct {
		FlightNumber    string `json:"flight_number"`
		FlightDate      string `json:"flight_date"`
		DisruptionEvent string `json:"disruption_event"`
	}
	if err := json.Unmarshal(args, &recorded); err != nil {
		return nil, &ExtractionError{
			Kind:    KindValidation,
			Message: fmt.Sprintf("structured output is not a flight info object: %v", err),
			Hint:    "expected flight number format and ISO date",
		}
	}
	info := models.FlightInfo{
		FlightNumber:    recorded.FlightNumber,
		Date:            recorded.FlightDate,
		DisruptionEvent: recorded.DisruptionEvent,
	}

	info.Normalize()
	info.Date = resolveRelativeDate(info.Date, e.now())
	if err := info.Validate(); err != nil {
		e.logger.Warn("extracted flight info failed validation",
			"flight_number", info.FlightNumber, "flight_date", info.Date, "error", err)
		return nil, &ExtractionError{
			Kind:    KindValidation,
			Message: err.Error(),
			Hint:    "expected flight number format and ISO date",
		}
	}

	e.logger.Info("flight info extracted",
		"flight_number", info.FlightNumber, "flight_date", info.Date)
	return &info, nil
}

// resolveRelativeDate maps today/tomorrow/yesterday onto the UTC clock.
// Anything else passes through for ISO validation.
func resolveRelativeDate(date string, now time.Time) string {
	switch strings.ToLower(strings.TrimSpace(date)) {
	case "today":
		return now.Format("2006-01-02")
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format("2006-01-02")
	case "yesterday":
		return now.AddDate(0, 0, -1).Format("2006-01-02")
	default:
		return date
	}
}
