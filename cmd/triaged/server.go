package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hcpro/triaged/internal/api"
	"github.com/hcpro/triaged/internal/config"
	"github.com/hcpro/triaged/internal/document"
	"github.com/hcpro/triaged/internal/feature"
	"github.com/hcpro/triaged/internal/intake"
	"github.com/hcpro/triaged/internal/llm"
	"github.com/hcpro/triaged/internal/ranking"
	"github.com/hcpro/triaged/internal/report"
	"github.com/hcpro/triaged/internal/scoring"
	"github.com/hcpro/triaged/internal/session"
	"github.com/hcpro/triaged/internal/storage"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the triaged server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running triaged server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show triaged system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "triaged.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "triaged version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("triaged is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("triaged is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Build collaborators around the shared session store.
	sessions := session.New(cfg.SessionTTL())
	machine := intake.NewMachine(sessions)
	scorer := scoring.NewClient(cfg.Model.BaseURL)
	assistant := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.Model)
	documents := document.NewManager(sessions, document.PDFExtractor{}, assistant)

	var sink report.Sink
	var reportClient *report.Client
	if cfg.Report.BaseURL != "" {
		reportClient = report.NewClient(cfg.Report.BaseURL)
		sink = reportClient
	}

	roster := ranking.DefaultRoster()
	if cfg.Ranking.RosterPath != "" {
		roster, err = ranking.LoadRoster(cfg.Ranking.RosterPath)
		if err != nil {
			return fmt.Errorf("loading roster: %w", err)
		}
	}

	// Probe the external collaborators concurrently. Unreachable backends are
	// a warning at startup, not a refusal to start; requests that need them
	// fail individually.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if !scorer.IsRunning(gctx) {
			printWarning("scoring model not reachable at %s", cfg.Model.BaseURL)
		}
		return nil
	})
	g.Go(func() error {
		if !assistant.IsRunning(gctx) {
			printWarning("assistant model not reachable at %s", cfg.LLM.BaseURL)
		}
		return nil
	})
	if reportClient != nil {
		g.Go(func() error {
			if !reportClient.IsRunning(gctx) {
				printWarning("report backend not reachable at %s", cfg.Report.BaseURL)
			}
			return nil
		})
	}
	g.Wait()

	handler := api.NewHandler(api.Deps{
		Sessions:  sessions,
		Intake:    machine,
		Documents: documents,
		Scorer:    scorer,
		Schema:    feature.DefaultSchema(),
		Roster:    roster,
		TopN:      cfg.Ranking.TopN,
		Reports:   sink,
		Audit:     store,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("triaged listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("triaged is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop triaged (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to triaged (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	// Check server health.
	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	serverUp := false
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			serverUp = true
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	ctx := context.Background()
	if scoring.NewClient(cfg.Model.BaseURL).IsRunning(ctx) {
		printStatus("Scoring model", "running at %s", cfg.Model.BaseURL)
	} else {
		printStatus("Scoring model", "not running")
	}
	if llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.Model).IsRunning(ctx) {
		printStatus("Assistant model", "%s at %s", cfg.LLM.Model, cfg.LLM.BaseURL)
	} else {
		printStatus("Assistant model", "not running")
	}
	if cfg.Report.BaseURL == "" {
		printStatus("Report sink", "disabled")
	} else if report.NewClient(cfg.Report.BaseURL).IsRunning(ctx) {
		printStatus("Report sink", "running at %s", cfg.Report.BaseURL)
	} else {
		printStatus("Report sink", "not running")
	}

	// Show recent triage count if server is running.
	if serverUp {
		apiC := newAPIClient(cfg)
		var list struct {
			Count int `json:"count"`
		}
		if resp, err := apiC.get("/triages?limit=100"); err == nil {
			if decodeJSON(resp, &list) == nil {
				printStatus("Recent triages", "%s", countLabel(list.Count, 100))
			}
		}
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func countLabel(count, limit int) string {
	if count >= limit {
		return fmt.Sprintf("%d+", count)
	}
	return fmt.Sprintf("%d", count)
}
