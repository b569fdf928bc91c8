package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"brigade/internal/api"
	"brigade/internal/board"
	"brigade/internal/calendar"
	"brigade/internal/catalog"
	"brigade/internal/config"
	"brigade/internal/database"
	"brigade/internal/ledger"
	"brigade/internal/models"
	"brigade/internal/monitoring"
	"brigade/internal/notify"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Metrics.Port = *metricsPort
	}

	store, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	cat, led, err := loadKitchenState(cfg, store)
	if err != nil {
		log.Fatalf("Failed to load kitchen state: %v", err)
	}

	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(registry)
	monitor := monitoring.NewMonitor()

	hub := notify.NewHub()
	var publisher *notify.Publisher
	if cfg.RabbitMQ.Enabled {
		publisher, err = notify.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("Failed to connect to broker: %v", err)
		}
		defer publisher.Close()
	}
	notifier := notify.NewNotifier(hub, publisher, store, metrics)
	defer notifier.Close()
	led.OnLowStock(notifier.LowStock)

	cal := calendar.New(cfg.Tables)
	cal.OnBooked(notifier.Booked)
	cal.OnStatusChange(notifier.ReservationChanged)

	brd := board.New(cat, led)

	kitchen := api.NewKitchenAPI(brd, led, cat, cal, hub, monitor, metrics)

	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
	}
	go runSchedules(ctx, cfg, led, cal, notifier)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: kitchen.Router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}

		cancel()
	}()

	log.Printf("Starting API server on port %d", cfg.Server.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

// loadKitchenState seeds the store from the config on first run, then
// builds the catalog and ledger from what the store holds.
func loadKitchenState(cfg *config.Config, store *database.Store) (*catalog.Catalog, *ledger.Ledger, error) {
	seedRecipes := make([]models.Recipe, 0, len(cfg.Recipes))
	for _, r := range cfg.Recipes {
		seedRecipes = append(seedRecipes, models.Recipe{ItemName: r.Name, Ingredients: r.Ingredients})
	}
	if err := store.SeedRecipes(seedRecipes); err != nil {
		return nil, nil, err
	}

	seedItems := make([]models.InventoryItem, 0, len(cfg.Inventory.Items))
	for _, item := range cfg.Inventory.Items {
		seedItems = append(seedItems, models.InventoryItem{
			Name:            item.Name,
			InitialQuantity: item.InitialQuantity,
			MinThreshold:    item.MinThreshold,
		})
	}
	if err := store.SeedBaseline(seedItems); err != nil {
		return nil, nil, err
	}

	recipes, err := store.LoadRecipes()
	if err != nil {
		return nil, nil, err
	}
	baseline, err := store.LoadBaseline()
	if err != nil {
		return nil, nil, err
	}

	log.Printf("Loaded %d recipes and %d inventory items", len(recipes), len(baseline))
	return catalog.New(recipes), ledger.New(baseline), nil
}

// runSchedules drives the clock-dependent operations: the daily inventory
// restore and the sweep that completes elapsed reservations. The core
// components never read the wall clock themselves.
func runSchedules(ctx context.Context, cfg *config.Config, led *ledger.Ledger, cal *calendar.Calendar, notifier *notify.Notifier) {
	restore := time.NewTicker(cfg.Inventory.RestoreInterval.Std())
	sweep := time.NewTicker(time.Minute)
	defer restore.Stop()
	defer sweep.Stop()

	for {
		select {
		case <-restore.C:
			led.RestoreAll()
			for _, item := range led.Items() {
				if !item.LowStock() {
					notifier.Restocked(item.Name)
				}
			}
			log.Println("Inventory restored to baseline")
		case now := <-sweep.C:
			if done := cal.CompleteElapsed(now); len(done) > 0 {
				log.Printf("Completed %d elapsed reservations", len(done))
			}
		case <-ctx.Done():
			return
		}
	}
}

func startMetricsServer(port int, path string, registry *prometheus.Registry) {
	metricsRouter := gin.Default()
	metricsRouter.GET(path, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
