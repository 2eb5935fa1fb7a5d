// Command studio-server runs the content operations HTTP server: the AI
// script proxy, the weekly report surface, and the observability endpoints.
package main

import (
	"context"
	"errors"
	"expvar"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ipstudio/internal/adapters/reports"
	"ipstudio/internal/adapters/scriptgen"
	"ipstudio/internal/blob"
	"ipstudio/internal/core"
	"ipstudio/plugins/douyin"
	"ipstudio/plugins/wechat"
	"ipstudio/plugins/xiaohongshu"
)

// slogAdapter bridges *slog.Logger to the service logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "studio-server:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("IPSTUDIO_ADDR", ":8080"), "listen address")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	engine := core.DefaultRulesEngine()
	store, err := core.OpenPersistentStore(engine)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blobs, err := blob.Open(ctx)
	if err != nil {
		return fmt.Errorf("open blob storage: %w", err)
	}

	promMetrics, err := core.NewPrometheusMetricsRecorder(nil)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	svc := core.NewService(store,
		core.WithLogger(slogAdapter{l: logger}),
		core.WithMetricsRecorder(promMetrics),
	)
	for _, plugin := range []core.Plugin{douyin.New(), xiaohongshu.New(), wechat.New()} {
		meta, err := svc.InstallPlugin(plugin)
		if err != nil {
			return fmt.Errorf("install plugin %s: %w", plugin.Name(), err)
		}
		logger.Info("plugin installed", "name", meta.Name, "version", meta.Version, "platforms", fmt.Sprint(meta.Platforms))
	}

	aiKey := os.Getenv("IPSTUDIO_AI_API_KEY")
	aiClient := scriptgen.NewClient(scriptgen.ClientConfig{
		Endpoint:   os.Getenv("IPSTUDIO_AI_ENDPOINT"),
		APIKey:     aiKey,
		Model:      os.Getenv("IPSTUDIO_AI_MODEL"),
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	})

	mux := http.NewServeMux()
	mux.Handle("/api/ai/", scriptgen.NewHandler(aiClient, aiKey, slogAdapter{l: logger}))
	mux.Handle("/api/reports", reports.NewHandler(store, reports.NewExporter(store, blobs)))
	mux.Handle("/api/reports/", reports.NewHandler(store, reports.NewExporter(store, blobs)))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/vars", expvar.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", *addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
