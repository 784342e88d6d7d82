package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/launchdash/launchdash/server/internal/api"
	"github.com/launchdash/launchdash/server/internal/auth"
	"github.com/launchdash/launchdash/server/internal/config"
	"github.com/launchdash/launchdash/server/internal/dashboard"
	"github.com/launchdash/launchdash/server/internal/dataset"
	"github.com/launchdash/launchdash/server/internal/metrics"
	"github.com/launchdash/launchdash/server/internal/telemetry"
	"github.com/launchdash/launchdash/server/internal/ws"
)

const sessionPath = "/ws/session"

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP and WebSocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config file; empty uses defaults and LAUNCHDASH_* variables")
	return cmd
}

func serve(parent context.Context, configPath string) error {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("launchdash starting", "config", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		return err
	}
	level.Set(cfg.Log.SlogLevel())

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"grpc_port", cfg.Server.GRPCPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"dataset", cfg.Dataset.Path,
	)

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing)
	if err != nil {
		slog.Error("failed to set up tracing", "err", err)
		return err
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownWait)
		defer scancel()
		if err := shutdownTracing(sctx); err != nil {
			slog.Warn("tracing shutdown", "err", err)
		}
	}()

	ds, err := dataset.Load(cfg.Dataset.Path, columns(cfg.Dataset.Columns))
	if err != nil {
		slog.Error("failed to load dataset", "err", err)
		return err
	}
	slog.Info("dataset loaded",
		"records", ds.Len(),
		"sites", len(ds.Sites()),
		"min_payload", ds.MinPayload(),
		"max_payload", ds.MaxPayload(),
	)

	rec := metrics.New()
	dash, err := dashboard.New(ds, cfg.Dashboard, rec)
	if err != nil {
		slog.Error("failed to build dashboard", "err", err)
		return err
	}

	hub := ws.New(dash.Registry(), rec)
	rec.Gauge(metrics.ActiveSessions, "Open dashboard sessions.", func() float64 { return float64(hub.Count()) })
	rec.Gauge(metrics.DatasetRecords, "Launch records loaded at startup.", func() float64 { return float64(ds.Len()) })

	page, err := api.Page(dash, sessionPath)
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	protect := auth.APIKey(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
	)

	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", protect(api.New(dash, dashboard.Insights(ds, cfg.Dashboard.SliderStep))))
	httpMux.Handle(sessionPath, protect(hub))
	httpMux.Handle("/metrics", rec)
	httpMux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n")) //nolint:errcheck
	})
	httpMux.Handle("/", page)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}

	// gRPC carries only the standard health service.
	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	grpcSrv := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
	if err != nil {
		slog.Error("failed to listen on gRPC port", "port", cfg.Server.GRPCPort, "err", err)
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("gRPC health listening", "port", cfg.Server.GRPCPort)
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	if configPath != "" {
		g.Go(func() error {
			// Only the log level is reloadable; the dataset and layout are fixed
			// for the life of the process.
			return config.Watch(gctx, configPath, func(c *config.Config) {
				level.Set(c.Log.SlogLevel())
				slog.Info("log level changed", "level", c.Log.Level)
			})
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("launchdash shutting down")
		healthSrv.Shutdown()
		grpcSrv.GracefulStop()

		sctx, scancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownWait)
		defer scancel()
		return httpSrv.Shutdown(sctx)
	})

	return g.Wait()
}

func columns(c config.ColumnsConfig) dataset.Columns {
	return dataset.Columns{
		Site:         c.Site,
		PayloadMass:  c.PayloadMass,
		Class:        c.Class,
		BoosterClass: c.BoosterVersionCategory,
	}
}
