package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"tasks-api/internal/api"
	"tasks-api/internal/config"
	"tasks-api/internal/metrics"
	"tasks-api/pkg/docstore"
	"tasks-api/pkg/task"
)

func main() {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal("config", "err", err)
	}
	logger := newLogger(cfg)
	if cfg.File != "" {
		logger.Info("loaded config", "file", cfg.File)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := docstore.Open(ctx, cfg.DocstoreOptions())
	if err != nil {
		logger.Fatal("open storage", "driver", cfg.Storage.Driver, "err", err)
	}
	m := metrics.New()
	backend = m.InstrumentBackend(backend)
	if c, ok := backend.(io.Closer); ok {
		defer c.Close()
	}

	if cfg.Storage.Init {
		seeded, err := docstore.Ensure(ctx, backend)
		if err != nil {
			logger.Fatal("ensure task document", "err", err)
		}
		if seeded {
			logger.Info("created empty task document", "driver", backend.Driver())
		}
	}

	svc := task.NewService(task.NewDocumentStore(backend))
	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.New(svc, logger, m),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("tasks-api listening", "addr", cfg.Listen, "driver", backend.Driver())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", "err", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}
}

func newLogger(cfg *config.Config) *log.Logger {
	level, err := log.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = log.InfoLevel
	}
	formatter := log.TextFormatter
	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
		Prefix:          "tasks-api",
	})
}
