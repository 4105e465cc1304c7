package jobboard

import (
	"errors"
	"fmt"
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

	"github.com/simonjohansson/jobboard/internal/drag"
	"github.com/simonjohansson/jobboard/internal/server"
	"github.com/simonjohansson/jobboard/pkg/boardconfig"
	"github.com/spf13/cobra"
)

const defaultListenAddr = "127.0.0.1:8080"

type serveOptions struct {
	Addr    string
	Backend boardconfig.BackendConfig
}

var runServeFunc = runServe

func addrFromServerURL(serverURL string) string {
	raw := strings.TrimSpace(serverURL)
	if raw == "" {
		return defaultListenAddr
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return defaultListenAddr
	}

	host := u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr == nil {
		return host
	}

	switch u.Scheme {
	case "https":
		return net.JoinHostPort(host, "443")
	case "http":
		return net.JoinHostPort(host, "80")
	default:
		return defaultListenAddr
	}
}

func newServeCommand(cfg *Config) *cobra.Command {
	var (
		addr    string
		backend boardconfig.BackendConfig
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the job board API server.",
		Long:  "Runs the board API with markdown storage, the sqlite projection, and the resume catalog.",
		Example: strings.TrimSpace(`jobboard serve
jobboard serve --addr 127.0.0.1:8090
jobboard --server-url http://127.0.0.1:9010 serve
jobboard serve --data-dir /tmp/jobboard/board --sqlite-path /tmp/jobboard/projection.db --drag-policy drop`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := serveOptions{Addr: strings.TrimSpace(addr), Backend: cfg.Backend}
			if !cmd.Flags().Changed("addr") {
				opts.Addr = addrFromServerURL(cfg.ServerURL)
			}

			overrides := map[string]*string{
				"data-dir":       &opts.Backend.DataDir,
				"sqlite-path":    &opts.Backend.SQLitePath,
				"resume-db-path": &opts.Backend.ResumeDBPath,
				"postgres-url":   &opts.Backend.PostgresURL,
				"timezone":       &opts.Backend.Timezone,
				"drag-policy":    &opts.Backend.DragPolicy,
			}
			for name, dst := range overrides {
				if cmd.Flags().Changed(name) {
					value, _ := cmd.Flags().GetString(name)
					*dst = strings.TrimSpace(value)
				}
			}

			if opts.Addr == "" {
				return errors.New("--addr cannot be empty")
			}
			if strings.TrimSpace(opts.Backend.DataDir) == "" {
				return errors.New("--data-dir cannot be empty")
			}
			if strings.TrimSpace(opts.Backend.SQLitePath) == "" {
				return errors.New("--sqlite-path cannot be empty")
			}
			if strings.TrimSpace(opts.Backend.ResumeDBPath) == "" {
				return errors.New("--resume-db-path cannot be empty")
			}
			if _, err := drag.ParsePolicy(opts.Backend.DragPolicy); err != nil {
				return err
			}
			if _, err := opts.Backend.Location(); err != nil {
				return err
			}

			return runServeFunc(opts)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "server listen address (defaults to the host of --server-url)")
	cmd.Flags().StringVar(&backend.DataDir, "data-dir", "", "directory for the markdown board file")
	cmd.Flags().StringVar(&backend.SQLitePath, "sqlite-path", "", "sqlite projection database path")
	cmd.Flags().StringVar(&backend.ResumeDBPath, "resume-db-path", "", "resume catalog database path")
	cmd.Flags().StringVar(&backend.PostgresURL, "postgres-url", "", "optional postgres mirror connection string")
	cmd.Flags().StringVar(&backend.Timezone, "timezone", "", "IANA timezone used for history dates and analytics")
	cmd.Flags().StringVar(&backend.DragPolicy, "drag-policy", "", "drag commit policy: hover or drop")
	return cmd
}

func runServe(opts serveOptions) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	return runServeWithSignals(opts, sigCh)
}

func runServeWithSignals(opts serveOptions, sigCh <-chan os.Signal) error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	policy, err := drag.ParsePolicy(opts.Backend.DragPolicy)
	if err != nil {
		return err
	}
	loc, err := opts.Backend.Location()
	if err != nil {
		return err
	}

	for _, dir := range []string{opts.Backend.DataDir, filepath.Dir(opts.Backend.SQLitePath), filepath.Dir(opts.Backend.ResumeDBPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s failed: %w", dir, err)
		}
	}

	app, err := server.New(server.Options{
		DataDir:      opts.Backend.DataDir,
		SQLitePath:   opts.Backend.SQLitePath,
		ResumeDBPath: opts.Backend.ResumeDBPath,
		PostgresURL:  opts.Backend.PostgresURL,
		DragPolicy:   policy,
		Location:     loc,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("init server failed: %w", err)
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			logger.Error("close server failed", "error", closeErr)
		}
	}()

	httpServer := &http.Server{
		Addr:              opts.Addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("starting job board backend",
		"addr", opts.Addr,
		"data_dir", opts.Backend.DataDir,
		"sqlite_path", opts.Backend.SQLitePath,
		"drag_policy", policy.String(),
		"timezone", loc.String(),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if listenErr := httpServer.ListenAndServe(); listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
			serverErrCh <- listenErr
			return
		}
		serverErrCh <- nil
	}()

	select {
	case listenErr := <-serverErrCh:
		if listenErr != nil {
			return fmt.Errorf("listen failed: %w", listenErr)
		}
		return nil
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	if err := httpServer.Close(); err != nil {
		return fmt.Errorf("http server close failed: %w", err)
	}
	if listenErr := <-serverErrCh; listenErr != nil {
		return fmt.Errorf("listen failed after shutdown: %w", listenErr)
	}
	logger.Info("server stopped")
	return nil
}
