package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/auditdesk/audit-assistant/internal/adapters/agent/dummy"
	"github.com/auditdesk/audit-assistant/internal/adapters/agent/live"
	"github.com/auditdesk/audit-assistant/internal/adapters/csvtable"
	"github.com/auditdesk/audit-assistant/internal/adapters/httpapi"
	"github.com/auditdesk/audit-assistant/internal/adapters/store"
	"github.com/auditdesk/audit-assistant/internal/config"
	"github.com/auditdesk/audit-assistant/internal/pkg/httpserver"
	"github.com/auditdesk/audit-assistant/internal/ports"
	"github.com/auditdesk/audit-assistant/internal/usecase"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid rule catalog")
	}

	// Adapters (infrastructure)
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("cannot open database")
	}
	defer func() { _ = st.Close() }()

	loader := csvtable.NewLoader()
	var agent ports.Agent
	if cfg.LiveAgent {
		agent = live.New(cfg.OpenAIKey, cfg.OpenAIModel, loader)
		log.Info().Str("model", cfg.OpenAIModel).Msg("live agent enabled")
	} else {
		agent = dummy.New(log)
		log.Info().Msg("running with built-in dummy engine")
	}

	// Application service (use cases)
	svc := usecase.NewAuditService(agent, st, cfg.Mode(), catalog, log)

	// HTTP server (interface adapter)
	h := httpapi.New(svc, cfg.UploadDir, log)
	s := httpserver.New(cfg.Addr, h.Routes())

	// Start
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("mode", cfg.Mode()).Msg("audit assistant listening")
		if err := s.Start(); err != nil {
			log.Fatal().Err(err).Msg("http serve error")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	log.Info().Msg("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
