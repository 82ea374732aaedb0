package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"cloudfuze.com/retriever/internal/observability"
	"cloudfuze.com/retriever/internal/retriever/config"
	"cloudfuze.com/retriever/internal/retriever/httpapi"
	"cloudfuze.com/retriever/internal/retriever/prompt"
	"cloudfuze.com/retriever/internal/retriever/registry"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("retrieverd")
	}
}

func run() error {
	if err := godotenv.Load(".env"); err != nil {
		_ = godotenv.Load("example.env")
	}

	cfg, err := config.Load(os.Getenv("RETRIEVER_CONFIG"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	observability.InitLogger(cfg.LogPath, cfg.LogLevel, cfg.Obs.ServiceName)

	// Panics at startup, not at request time, if the prompt template is
	// ever edited without both required slots.
	prompt.MustValidateTemplate()

	baseCtx := context.Background()
	shutdown, err := observability.InitOTel(baseCtx, cfg.Obs)
	if err != nil {
		log.Warn().Err(err).Msg("otel init failed, continuing without observability")
		shutdown = nil
	}
	if shutdown != nil {
		defer func() { _ = shutdown(context.Background()) }()
	}

	reg, err := registry.New(baseCtx, cfg, log.Logger)
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}
	defer reg.Close()

	mux := httpapi.NewMux(reg)
	handler := otelhttp.NewHandler(mux, "retrieverd")

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: handler}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("retrieverd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	// In-flight /ask/stream calls are draining SSE writes against the same
	// ResponseWriter; Shutdown waits for them instead of cutting the
	// connection so a client mid-answer sees a clean done/error frame.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	} else {
		log.Info().Msg("retrieverd stopped")
	}
	return nil
}
