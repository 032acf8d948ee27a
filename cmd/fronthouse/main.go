// Command fronthouse runs the restaurant front-of-house API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/ristora/fronthouse/api/httpapi"
	"github.com/ristora/fronthouse/internal/cache"
	"github.com/ristora/fronthouse/internal/config"
	"github.com/ristora/fronthouse/internal/logging"
	"github.com/ristora/fronthouse/internal/metrics"
	"github.com/ristora/fronthouse/internal/middleware"
	appsync "github.com/ristora/fronthouse/internal/sync"
	"github.com/ristora/fronthouse/services/floor"
	"github.com/ristora/fronthouse/services/inventory"
	"github.com/ristora/fronthouse/services/menu"
	"github.com/ristora/fronthouse/services/orders"
	"github.com/ristora/fronthouse/services/reservations"
	"github.com/ristora/fronthouse/services/staff"
	"github.com/ristora/fronthouse/supabase/client"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New("fronthouse", logging.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
	})

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("server exited")
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *logging.Logger) error {
	apiKey := cfg.Supabase.ServiceKey
	if apiKey == "" {
		apiKey = cfg.Supabase.AnonKey
	}
	db, err := client.NewResilient(client.Config{
		URL:    cfg.Supabase.URL,
		APIKey: apiKey,
	}, client.DefaultRetryConfig(), client.DefaultCircuitBreakerConfig())
	if err != nil {
		return fmt.Errorf("supabase client: %w", err)
	}

	m := metrics.New("fronthouse")
	cc := cache.New()

	floorSvc := floor.New(db, logger)
	ordersSvc := orders.New(db, floorSvc, logger)
	menuSvc := menu.New(db, logger)
	inventorySvc := inventory.New(db, logger)
	reservationsSvc := reservations.New(db, logger)
	staffSvc := staff.New(db, logger)

	services := httpapi.Services{
		Floor:        floorSvc,
		Orders:       ordersSvc,
		Menu:         menuSvc,
		Inventory:    inventorySvc,
		Reservations: reservationsSvc,
		Staff:        staffSvc,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Realtime watcher and the scheduled availability recompute.
	var watcher *appsync.Watcher
	var recomputer *appsync.Recomputer
	if cfg.Realtime.Enabled {
		realtime := client.NewRealtimeClient(cfg.Supabase.URL, cfg.Supabase.AnonKey)
		watcher = appsync.NewWatcher(realtime, watchedCollections(services), cc, m, logger)
		// Only stock and recipe changes feed the availability
		// recompute; menu_items changes do not, since the recompute
		// writes menu_items rows itself.
		recompute := func(ctx context.Context) {
			if err := menuSvc.RecomputeAllAvailability(ctx); err == nil {
				m.RecordRecompute()
			}
		}
		for _, table := range []string{"inventory_items", "inventory_movements", "menu_item_ingredients"} {
			watcher.OnTableChange(table, recompute)
		}
		if err := watcher.Start(ctx); err != nil {
			logger.WithError(err).Warn("realtime watcher unavailable, running without live refresh")
			watcher = nil
		}

		if cfg.Realtime.RecomputeSchedule != "" {
			recomputer = appsync.NewRecomputer(cfg.Realtime.RecomputeSchedule, menuSvc.RecomputeAllAvailability, m, logger)
			if err := recomputer.Start(ctx); err != nil {
				return fmt.Errorf("recompute schedule: %w", err)
			}
		}
	}

	handler := httpapi.NewHandler(services, db.Auth(), cc, logger)

	router := mux.NewRouter()
	router.Use(middleware.Tracing(logger))
	router.Use(middleware.Metrics(m))
	router.Use(middleware.NewCORS(cfg.Server.AllowedOrigins).Handler)
	auth := middleware.NewAuth(middleware.AuthConfig{
		SupabaseURL: cfg.Supabase.URL,
		AnonKey:     cfg.Supabase.AnonKey,
		JWTSecret:   cfg.Supabase.JWTSecret,
	}, logger)
	router.Use(auth.Handler)
	router.Use(middleware.NewRateLimiter(cfg.Server.RequestsPerSecond, cfg.Server.Burst, logger).Handler)

	handler.Routes(router)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(map[string]any{"addr": cfg.Server.Addr}).Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			logger.WithError(err).Warn("realtime disconnect failed")
		}
	}
	if recomputer != nil {
		recomputer.Stop()
	}
	return server.Shutdown(shutdownCtx)
}

// watchedCollections binds each cached collection to its realtime
// channel and fetcher.
func watchedCollections(s httpapi.Services) []appsync.Collection {
	return []appsync.Collection{
		{
			Name:    "tables",
			Channel: "tables",
			Tables:  []string{"tables"},
			Fetch:   func(ctx context.Context) (any, error) { return s.Floor.ListTables(ctx) },
		},
		{
			Name:    "orders",
			Channel: "orders",
			Tables:  []string{"orders", "order_items"},
			Fetch:   func(ctx context.Context) (any, error) { return s.Orders.List(ctx) },
		},
		{
			Name:    "menu",
			Channel: "menu-inventory",
			Tables:  []string{"menu_items", "menu_categories", "menu_item_ingredients"},
			Fetch:   func(ctx context.Context) (any, error) { return s.Menu.ListItems(ctx) },
		},
		{
			Name:    "inventory",
			Channel: "menu-inventory",
			Tables:  []string{"inventory_items", "inventory_movements"},
			Fetch:   func(ctx context.Context) (any, error) { return s.Inventory.ListItems(ctx) },
		},
		{
			Name:    "reservations",
			Channel: "reservations",
			Tables:  []string{"reservations"},
			Fetch:   func(ctx context.Context) (any, error) { return s.Reservations.List(ctx, "") },
		},
	}
}
