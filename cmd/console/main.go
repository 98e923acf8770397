package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/drivesight/console/internal/api"
	"github.com/drivesight/console/internal/config"
	"github.com/drivesight/console/internal/connection"
	"github.com/drivesight/console/internal/database"
	"github.com/drivesight/console/internal/dispatch"
	"github.com/drivesight/console/internal/journal"
	"github.com/drivesight/console/internal/refresh"
	"github.com/drivesight/console/internal/version"
	"github.com/drivesight/console/internal/view"
)

func main() {
	configPath := flag.String("config", "configs/console.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting console",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"rest_url", cfg.Server.RestURL,
		"ws_url", cfg.Server.WSURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Create API client for the pull path
	apiClient := api.NewClient(
		cfg.Server.RestURL,
		cfg.Server.APIKey,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Server.Timeout),
		api.WithRetries(cfg.Server.MaxRetries, time.Second),
	)

	// Render sink. The core is headless; surfaces attach through the
	// view renderer interfaces, and this binary logs what it would draw.
	sink := newLogRenderer(logger)

	views := refresh.Views{
		Alerts:    view.NewAlertsView(cfg.Views.AlertCap, sink, logger),
		Incidents: view.NewIncidentsView(cfg.Refresh.IncidentLimit, sink, logger),
		Heatmap:   view.NewHeatmapView(sink, logger),
		Stats:     view.NewStatsView(sink, logger),
		Cameras:   view.NewCameraRoster(sink, logger),
	}

	scheduler := refresh.NewScheduler(apiClient, views, cfg.Refresh, logger)

	// Event multiplexer: push events fan out to the views.
	mux := dispatch.NewMux(logger)
	mux.Subscribe(connection.EventNewIncident, func(ev connection.EventEnvelope) {
		if ev.NewIncident == nil {
			return
		}
		views.Incidents.ApplyDelta(ev.NewIncident.Incident)
		if ev.NewIncident.Alert != nil {
			views.Alerts.ApplyDelta(*ev.NewIncident.Alert)
		}
	})
	mux.Subscribe(connection.EventAlertUpdate, func(ev connection.EventEnvelope) {
		// The server says alert state changed but not how; re-pull.
		scheduler.RefreshAlerts()
	})
	mux.Subscribe(connection.EventHeatmapUpdate, func(ev connection.EventEnvelope) {
		if ev.Heatmap != nil {
			views.Heatmap.ApplyDelta(ev.Heatmap.Heatmap)
		}
	})
	mux.Subscribe(connection.EventStatsUpdate, func(ev connection.EventEnvelope) {
		if ev.Stats != nil {
			views.Stats.ApplyDelta(*ev.Stats)
		}
	})
	mux.Subscribe(connection.EventConnectionChange, func(ev connection.EventEnvelope) {
		if ev.Connection != nil && ev.Connection.Connected {
			scheduler.RefreshAll()
		}
	})

	// Optional incident journal
	var (
		pool          *pgxpool.Pool
		journalWriter *journal.Writer
	)
	if cfg.Journal.Enabled {
		logger.Info("connecting to journal database",
			"host", cfg.Journal.Database.Host,
			"port", cfg.Journal.Database.Port,
			"database", cfg.Journal.Database.Name,
		)
		pool, err = database.Connect(ctx, cfg.Journal.Database)
		if err != nil {
			logger.Error("failed to connect to journal database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		journalWriter = journal.NewWriter(cfg.Journal, pool, logger)
		if err := journalWriter.Start(ctx); err != nil {
			logger.Error("failed to start incident journal", "error", err)
			os.Exit(1)
		}
		mux.Subscribe(connection.EventNewIncident, journalWriter.Handle)
	}

	// Connection manager: the single push channel.
	manager := connection.NewManager(connection.ManagerConfig{
		WSURL:                cfg.Server.WSURL,
		APIKey:               cfg.Server.APIKey,
		ReconnectDelay:       cfg.Connection.ReconnectDelay,
		MaxReconnectAttempts: cfg.Connection.MaxReconnectAttempts,
		PingTimeout:          cfg.Connection.PingTimeout,
		WriteTimeout:         cfg.Connection.WriteTimeout,
		BufferSize:           cfg.Connection.BufferSize,
	}, mux, logger)
	manager.Announce(connection.TopicAlerts)
	manager.Announce(connection.TopicHeatmap)

	// Health endpoint
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(cfg.Health.Path, manager, mux, scheduler, views, journalWriter),
	}
	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port, "path", cfg.Health.Path)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	// Scheduler first: the manager's first connection_change triggers
	// an on-demand refresh that must find the scheduler running.
	if err := scheduler.Start(ctx); err != nil {
		logger.Error("failed to start refresh scheduler", "error", err)
		os.Exit(1)
	}
	if err := manager.Start(ctx); err != nil {
		logger.Error("failed to start connection manager", "error", err)
		os.Exit(1)
	}

	logger.Info("console running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d%s", cfg.Health.Port, cfg.Health.Path),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	manager.Stop(shutdownCtx)
	scheduler.Stop(shutdownCtx)
	if journalWriter != nil {
		journalWriter.Stop(shutdownCtx)
	}
	healthServer.Shutdown(shutdownCtx)

	logger.Info("console stopped")
}

// createHealthHandler reports connection state, dispatch counters, and
// per-view freshness.
func createHealthHandler(
	path string,
	manager *connection.Manager,
	mux *dispatch.Mux,
	scheduler *refresh.Scheduler,
	views refresh.Views,
	journalWriter *journal.Writer,
) http.Handler {
	httpMux := http.NewServeMux()

	httpMux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		connStats := manager.Stats()
		muxStats := mux.Stats()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		health.Components["connection"] = map[string]any{
			"state":          connStats.State.String(),
			"subscriptions":  connStats.Subscriptions,
			"reconnects":     connStats.Reconnects,
			"frames_decoded": connStats.FramesDecoded,
			"decode_errors":  connStats.DecodeErrors,
		}
		if connStats.State != connection.StateConnected {
			health.Status = "degraded"
		}

		health.Components["dispatch"] = map[string]any{
			"dispatches":       muxStats.Dispatches,
			"handler_failures": muxStats.HandlerFailures,
		}

		stalePulls := views.Alerts.StaleDiscards() +
			views.Incidents.StaleDiscards() +
			views.Heatmap.StaleDiscards() +
			views.Stats.StaleDiscards()
		health.Components["views"] = map[string]any{
			"window_hours":        scheduler.Window(),
			"alerts_updated":      views.Alerts.UpdatedAt(),
			"incidents_updated":   views.Incidents.UpdatedAt(),
			"heatmap_updated":     views.Heatmap.UpdatedAt(),
			"stats_updated":       views.Stats.UpdatedAt(),
			"cameras_loaded":      views.Cameras.Loaded(),
			"stale_pulls_dropped": stalePulls,
		}

		if journalWriter != nil {
			js := journalWriter.Stats()
			health.Components["journal"] = map[string]any{
				"inserts":   js.Inserts,
				"conflicts": js.Conflicts,
				"flushes":   js.Flushes,
				"errors":    js.Errors,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(health)
	})

	httpMux.HandleFunc("/debug/cameras", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		// ?id=N returns one camera with its recent incidents.
		if idParam := r.URL.Query().Get("id"); idParam != "" {
			id, err := strconv.ParseInt(idParam, 10, 64)
			if err != nil {
				http.Error(w, "invalid camera id", http.StatusBadRequest)
				return
			}
			detail, err := scheduler.CameraDetail(r.Context(), id)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			json.NewEncoder(w).Encode(detail)
			return
		}

		cameras := views.Cameras.Cameras()
		json.NewEncoder(w).Encode(map[string]any{
			"count":   len(cameras),
			"cameras": cameras,
		})
	})

	return httpMux
}
