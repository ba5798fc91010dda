package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/zelalem61/personal-chat-bot/graph"
	"github.com/zelalem61/personal-chat-bot/graph/emit"
	"github.com/zelalem61/personal-chat-bot/graph/store"
	"github.com/zelalem61/personal-chat-bot/graph/tool"
	"github.com/zelalem61/personal-chat-bot/internal/chat"
	"github.com/zelalem61/personal-chat-bot/internal/config"
	"github.com/zelalem61/personal-chat-bot/internal/llm"
	"github.com/zelalem61/personal-chat-bot/internal/server"
	"github.com/zelalem61/personal-chat-bot/internal/vector"
)

var traceRuns bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&traceRuns, "trace", false, "record OpenTelemetry spans for workflow runs")
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	client, err := llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.EmbeddingModel)
	if err != nil {
		return fmt.Errorf("openai client: %w", err)
	}
	model := llm.WithRetries(client, 3, time.Second)

	registry := tool.NewRegistry(
		chat.NewEmailTool(cfg.Owner.Name, cfg.Owner.Email),
		chat.NewCalendarTool(cfg.Owner.Name, cfg.Owner.BookingLink),
	)

	openStore := func(ctx context.Context) (vector.Store, error) {
		return vector.NewChromaStore(vector.ChromaConfig{
			Host:       cfg.Chroma.Host,
			Port:       cfg.Chroma.Port,
			Collection: cfg.Chroma.Collection,
		}, logger.Named("chroma")), nil
	}

	compiled, err := chat.BuildGraph(
		chat.NewRouter(model, registry, logger.Named("router")),
		chat.NewRetriever(client, openStore, cfg.RAG.NumDocsToRetrieve, logger.Named("retriever")),
		chat.NewToolExecutor(registry, logger.Named("tools")),
		chat.NewResponder(model, cfg.Owner.Name, llm.NewTokenCounter(cfg.OpenAI.Model), logger.Named("responder")),
	)
	if err != nil {
		return fmt.Errorf("build workflow: %w", err)
	}

	checkpoints, err := buildCheckpointStore(cfg)
	if err != nil {
		return fmt.Errorf("checkpoint store: %w", err)
	}
	defer checkpoints.Close()

	var emitter emit.Emitter = emit.NewLogEmitter(logger.Named("events"))
	var tp *sdktrace.TracerProvider
	if traceRuns {
		tp = sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(spanLogger{logger: logger.Named("trace")}),
		)
		otel.SetTracerProvider(tp)
		emitter = emit.Multi(emitter, emit.NewOTelEmitter(tp.Tracer("chatbot")))
	}

	svc := chat.NewService(compiled, checkpoints, logger.Named("chat"),
		chat.WithEmitter(emitter),
		chat.WithMetrics(graph.NewMetrics(prometheus.DefaultRegisterer)),
	)

	srv := server.New(svc, prometheus.DefaultGatherer, logger.Named("http"))

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", cfg.API.Addr()),
			zap.String("store", cfg.Store.Backend),
			zap.Bool("trace", traceRuns))
		serverErrors <- srv.ListenAndServe(cfg.API.Addr())
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		logger.Info("shutdown started", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		if tp != nil {
			if err := tp.Shutdown(ctx); err != nil {
				logger.Warn("tracer shutdown failed", zap.Error(err))
			}
		}
		logger.Info("shutdown complete")
	}
	return nil
}

// buildCheckpointStore picks the thread checkpoint backend from config.
func buildCheckpointStore(cfg *config.Config) (store.Store[chat.State], error) {
	switch cfg.Store.Backend {
	case "", "memory":
		return store.NewMemStore[chat.State](), nil
	case "sqlite":
		return store.NewSQLiteStore[chat.State](cfg.Store.SQLitePath)
	case "mysql":
		return store.NewMySQLStore[chat.State](cfg.Store.MySQLDSN)
	case "redis":
		return store.NewRedisStore[chat.State](store.RedisOptions{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
			TTL:      cfg.Store.RedisTTL,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// spanLogger is a span processor that logs finished spans. The binary ships
// no OTLP exporter; --trace is for local inspection of run timings.
type spanLogger struct {
	logger *zap.Logger
}

func (p spanLogger) OnStart(ctx context.Context, s sdktrace.ReadWriteSpan) {}

func (p spanLogger) OnEnd(s sdktrace.ReadOnlySpan) {
	p.logger.Info("span",
		zap.String("name", s.Name()),
		zap.Duration("duration", s.EndTime().Sub(s.StartTime())),
	)
}

func (p spanLogger) Shutdown(ctx context.Context) error { return nil }

func (p spanLogger) ForceFlush(ctx context.Context) error { return nil }
