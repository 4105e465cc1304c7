package main

import (
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/simonjohansson/jobboard/internal/drag"
	"github.com/simonjohansson/jobboard/internal/server"
	"github.com/simonjohansson/jobboard/pkg/boardconfig"
)

const defaultListenAddr = "127.0.0.1:8080"

type runtimeDefaults struct {
	Addr    string
	Backend boardconfig.BackendConfig
}

func loadRuntimeDefaults(home string, getenv func(string) string) (runtimeDefaults, error) {
	cfg, err := boardconfig.LoadOrInit(home)
	if err != nil {
		return runtimeDefaults{}, err
	}
	cfg = boardconfig.ApplyEnv(cfg, getenv)
	return runtimeDefaults{
		Addr:    addrFromServerURL(cfg.ServerURL),
		Backend: cfg.Backend,
	}, nil
}

func addrFromServerURL(serverURL string) string {
	u, err := url.Parse(strings.TrimSpace(serverURL))
	if err != nil || u.Host == "" {
		return defaultListenAddr
	}
	if _, _, err := net.SplitHostPort(u.Host); err == nil {
		return u.Host
	}
	return defaultListenAddr
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("load .env failed", "error", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		logger.Error("resolve home dir failed", "error", err)
		os.Exit(1)
	}
	defaults, err := loadRuntimeDefaults(home, os.Getenv)
	if err != nil {
		logger.Error("load config failed", "error", err)
		os.Exit(1)
	}

	var (
		addr    string
		backend = defaults.Backend
	)
	flag.StringVar(&addr, "addr", defaults.Addr, "server listen address")
	flag.StringVar(&backend.DataDir, "data-dir", backend.DataDir, "directory for the markdown board file")
	flag.StringVar(&backend.SQLitePath, "sqlite-path", backend.SQLitePath, "sqlite projection database path")
	flag.StringVar(&backend.ResumeDBPath, "resume-db-path", backend.ResumeDBPath, "resume catalog database path")
	flag.StringVar(&backend.PostgresURL, "postgres-url", backend.PostgresURL, "optional postgres mirror connection string")
	flag.StringVar(&backend.Timezone, "timezone", backend.Timezone, "IANA timezone for history dates and analytics")
	flag.StringVar(&backend.DragPolicy, "drag-policy", backend.DragPolicy, "drag commit policy: hover or drop")
	flag.Parse()

	policy, err := drag.ParsePolicy(backend.DragPolicy)
	if err != nil {
		logger.Error("invalid drag policy", "error", err)
		os.Exit(1)
	}
	loc, err := backend.Location()
	if err != nil {
		logger.Error("invalid timezone", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(backend.SQLitePath), 0o755); err != nil {
		logger.Error("create sqlite parent dir failed", "error", err)
		os.Exit(1)
	}

	app, err := server.New(server.Options{
		DataDir:      backend.DataDir,
		SQLitePath:   backend.SQLitePath,
		ResumeDBPath: backend.ResumeDBPath,
		PostgresURL:  backend.PostgresURL,
		DragPolicy:   policy,
		Location:     loc,
		Logger:       logger,
	})
	if err != nil {
		logger.Error("init server failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("close server failed", "error", err)
		}
	}()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("starting job board backend", "addr", addr, "data_dir", backend.DataDir, "sqlite_path", backend.SQLitePath, "drag_policy", policy.String())

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", "signal", sig.String())

	if err := httpServer.Close(); err != nil {
		logger.Error("http server close failed", "error", err)
	}
	logger.Info("server stopped")
}
