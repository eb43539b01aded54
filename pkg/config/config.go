// Package config loads and validates process configuration from the
// environment. All values are frozen at startup; nothing re-reads the
// environment after Load returns.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Tables names the persisted stores. The orchestrator never creates or
// alters tables or indexes; these must exist.
type Tables struct {
	Requests               string
	Sessions               string
	Flights                string
	CrewRoster             string
	CrewMembers            string
	MaintenanceWorkOrders  string
	AircraftAvailability   string
	Bookings               string
	Passengers             string
	Baggage                string
	CargoShipments         string
	CargoFlightAssignments string
	Weather                string
}

// Models holds the Bedrock model identifiers per call site.
type Models struct {
	Agent      string
	Extractor  string
	Arbitrator string
}

// Timeouts groups the per-category execution deadlines.
type Timeouts struct {
	SafetyAgent   time.Duration // per safety-agent invocation
	BusinessAgent time.Duration // per business-agent invocation
	Extractor     time.Duration // flight-info extraction call
	Job           time.Duration // whole background orchestration
	LLMCall       time.Duration // single provider round trip
}

// KnowledgeBase configures the optional arbitration grounding retriever.
type KnowledgeBase struct {
	Enabled         bool
	KnowledgeBaseID string
	MaxRetrievals   int
}

// Config is the full process configuration.
type Config struct {
	HTTPPort  string
	AWSRegion string

	Tables   Tables
	Models   Models
	Timeouts Timeouts
	KB       KnowledgeBase

	// MaxIterations bounds the tool-calling loop per agent invocation.
	MaxIterations int
	// MaxConcurrentJobs bounds in-flight background orchestrations.
	MaxConcurrentJobs int
	// SessionHistoryLimit bounds session history reads.
	SessionHistoryLimit int

	// TraceStdout enables the stdout span exporter.
	TraceStdout bool
}

// Load reads configuration from the environment, applying defaults and
// validating the result.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:  getEnv("HTTP_PORT", "8080"),
		AWSRegion: getEnv("AWS_REGION", "us-east-1"),
		Tables: Tables{
			Requests:               getEnv("TABLE_REQUESTS", "irops_requests"),
			Sessions:               getEnv("TABLE_SESSIONS", "irops_sessions"),
			Flights:                getEnv("TABLE_FLIGHTS", "flights"),
			CrewRoster:             getEnv("TABLE_CREW_ROSTER", "crew_roster"),
			CrewMembers:            getEnv("TABLE_CREW_MEMBERS", "crew_members"),
			MaintenanceWorkOrders:  getEnv("TABLE_WORK_ORDERS", "maintenance_work_orders"),
			AircraftAvailability:   getEnv("TABLE_AIRCRAFT_AVAILABILITY", "aircraft_availability"),
			Bookings:               getEnv("TABLE_BOOKINGS", "bookings"),
			Passengers:             getEnv("TABLE_PASSENGERS", "passengers"),
			Baggage:                getEnv("TABLE_BAGGAGE", "baggage"),
			CargoShipments:         getEnv("TABLE_CARGO_SHIPMENTS", "cargo_shipments"),
			CargoFlightAssignments: getEnv("TABLE_CARGO_ASSIGNMENTS", "cargo_flight_assignments"),
			Weather:                getEnv("TABLE_WEATHER", "weather"),
		},
		Models: Models{
			Agent:      getEnv("MODEL_AGENT", "anthropic.claude-sonnet-4-20250514-v1:0"),
			Extractor:  getEnv("MODEL_EXTRACTOR", "anthropic.claude-3-5-haiku-20241022-v1:0"),
			Arbitrator: getEnv("MODEL_ARBITRATOR", "anthropic.claude-sonnet-4-20250514-v1:0"),
		},
		Timeouts: Timeouts{
			SafetyAgent:   getDuration("TIMEOUT_SAFETY_AGENT", 60*time.Second),
			BusinessAgent: getDuration("TIMEOUT_BUSINESS_AGENT", 45*time.Second),
			Extractor:     getDuration("TIMEOUT_EXTRACTOR", 60*time.Second),
			Job:           getDuration("TIMEOUT_JOB", 10*time.Minute),
			LLMCall:       getDuration("TIMEOUT_LLM_CALL", 90*time.Second),
		},
		KB: KnowledgeBase{
			Enabled:         getBool("KB_ENABLED", false),
			KnowledgeBaseID: os.Getenv("KB_ID"),
			MaxRetrievals:   getInt("KB_MAX_RETRIEVALS", 3),
		},
		MaxIterations:       getInt("AGENT_MAX_ITERATIONS", 8),
		MaxConcurrentJobs:   getInt("MAX_CONCURRENT_JOBS", 10),
		SessionHistoryLimit: getInt("SESSION_HISTORY_LIMIT", 50),
		TraceStdout:         getBool("TRACE_STDOUT", false),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("AGENT_MAX_ITERATIONS must be >= 1, got %d", c.MaxIterations)
	}
	if c.MaxConcurrentJobs < 1 {
		return fmt.Errorf("MAX_CONCURRENT_JOBS must be >= 1, got %d", c.MaxConcurrentJobs)
	}
	if c.Timeouts.SafetyAgent <= 0 || c.Timeouts.BusinessAgent <= 0 {
		return fmt.Errorf("agent timeouts must be positive")
	}
	if c.KB.Enabled && c.KB.KnowledgeBaseID == "" {
		return fmt.Errorf("KB_ENABLED is set but KB_ID is empty")
	}
	return nil
}

// AgentTimeout returns the per-invocation deadline for the given partition.
func (t Timeouts) AgentTimeout(safety bool) time.Duration {
	if safety {
		return t.SafetyAgent
	}
	return t.BusinessAgent
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
