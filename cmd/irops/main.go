// IROPS decision orchestrator server: accepts disruption prompts over HTTP,
// runs the multi-agent assessment pipeline, and serves poll results.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/skyops/irops/pkg/agent"
	"github.com/skyops/irops/pkg/api"
	"github.com/skyops/irops/pkg/arbitrator"
	"github.com/skyops/irops/pkg/config"
	"github.com/skyops/irops/pkg/dispatch"
	"github.com/skyops/irops/pkg/extractor"
	"github.com/skyops/irops/pkg/kb"
	"github.com/skyops/irops/pkg/llm"
	"github.com/skyops/irops/pkg/orchestrator"
	"github.com/skyops/irops/pkg/services"
	"github.com/skyops/irops/pkg/store"
	"github.com/skyops/irops/pkg/tools"
	"github.com/skyops/irops/pkg/version"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configDir := flag.String("config-dir", ".", "Path to configuration directory")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		logger.Warn("could not load .env file, continuing with existing environment",
			"path", envPath, "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Info("starting irops",
		"version", version.Full(),
		"http_port", cfg.HTTPPort,
		"region", cfg.AWSRegion)

	ctx := context.Background()

	// Tracing (stdout exporter for local debugging).
	if cfg.TraceStdout {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			logger.Error("failed to create trace exporter", "error", err)
			os.Exit(1)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		otel.SetTracerProvider(tp)
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				logger.Error("trace provider shutdown", "error", err)
			}
		}()
	}

	// AWS clients. Singletons shared by every component.
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Error("failed to load AWS configuration", "error", err)
		os.Exit(1)
	}
	db := dynamodb.NewFromConfig(awsCfg)
	bedrock := bedrockruntime.NewFromConfig(awsCfg)

	// Operational store and the authorized tool layer over it.
	st := store.New(db, cfg.Tables, logger)
	registry, err := tools.NewRegistry(st)
	if err != nil {
		logger.Error("failed to build tool registry", "error", err)
		os.Exit(1)
	}

	llmClient := llm.NewBedrockClient(bedrock, logger)
	defer llmClient.Close()

	var retriever kb.Retriever
	if cfg.KB.Enabled {
		agentRuntime := bedrockagentruntime.NewFromConfig(awsCfg)
		retriever = kb.NewBedrockRetriever(agentRuntime, cfg.KB.KnowledgeBaseID, logger)
		logger.Info("knowledge base grounding enabled", "kb_id", cfg.KB.KnowledgeBaseID)
	}

	// Pipeline: extraction, seven agents behind the safe runner, arbitration.
	extr := extractor.New(llmClient, cfg.Models.Extractor, cfg.Timeouts.Extractor, logger)
	runner := agent.NewRunner(llmClient, registry, cfg, logger)
	safeRunner := agent.NewSafeRunner(runner, cfg.Timeouts, logger)
	arb := arbitrator.New(llmClient, retriever, cfg, logger)
	orch := orchestrator.New(extr, safeRunner, arb, logger)

	requestService := services.NewRequestService(st)
	sessionService := services.NewSessionService(st, cfg.SessionHistoryLimit)
	dispatcher := dispatch.NewDispatcher(orch, st, sessionService, cfg.Timeouts.Job, cfg.MaxConcurrentJobs, logger)

	server := api.NewServer(requestService, sessionService, dispatcher, logger)
	server.AddHealthCheck("store", func(ctx context.Context) error {
		_, err := st.GetRequest(ctx, "health-probe")
		return err
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.HTTPPort
		logger.Info("http server listening", "addr", addr)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		logger.Error("server error triggered shutdown", "error", err)
	}

	// Stop accepting first, then drain in-flight jobs.
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", "error", err)
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown timeout exceeded, abandoning in-flight jobs", "error", err)
	}

	logger.Info("shutdown complete")
}
