// BrandSales - brand-scoped resale sales analytics
// Entry point for the web server
package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/findosh/brandsales/internal/config"
	"github.com/findosh/brandsales/internal/handlers"
	"github.com/findosh/brandsales/internal/metrics"
	"github.com/findosh/brandsales/internal/middleware"
	"github.com/findosh/brandsales/internal/services/analytics"
	"github.com/findosh/brandsales/internal/services/audit"
	"github.com/findosh/brandsales/internal/services/auth"
	"github.com/findosh/brandsales/internal/services/ingest"
	"github.com/findosh/brandsales/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize datastore and run migrations
	store, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open datastore: %v", err)
	}
	defer store.Close()

	reg := metrics.NewRegistry()

	// Audit entries go to the datastore, the log, and Kafka when configured
	sinks := []audit.Writer{store, audit.NewLogger()}
	if len(cfg.KafkaBrokers) > 0 {
		kw := audit.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		defer kw.Close()
		sinks = append(sinks, kw)
		log.Printf("Publishing ingest audit to Kafka topic %s on %s", cfg.KafkaAuditTopic, strings.Join(cfg.KafkaBrokers, ","))
	}

	// Initialize services
	authService, err := auth.NewService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize auth: %v", err)
	}
	ingestService := ingest.NewService(store, audit.NewMultiWriter(sinks...), cfg.CSVMaxRows, ingest.WithMetrics(reg))
	analyticsService := analytics.NewService()

	h := handlers.New(cfg, store, ingestService, analyticsService, authService, reg)

	authMiddleware := middleware.NewAuth(authService)
	protected := func(fn http.HandlerFunc) http.Handler {
		return authMiddleware.RequireAuth(fn)
	}

	// Setup routes
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/api/login", h.Login)
	mux.HandleFunc("/api/logout", h.Logout)
	mux.HandleFunc("/api/template.csv", h.DownloadTemplate)

	// API routes
	mux.Handle("/api/ingest", protected(h.Ingest))
	mux.Handle("/api/ingest-logs", protected(h.IngestLogs))
	mux.Handle("/api/analytics", protected(h.APIAnalytics))
	mux.Handle("/api/metrics", protected(h.APIMetrics))
	mux.Handle("/api/sales", protected(h.APISales))
	mux.Handle("/api/brands", protected(h.APIBrands))
	mux.Handle("/api/brands/", protected(h.APIBrand))

	if cfg.EnableMetrics {
		mux.Handle("/metrics", reg.Handler())
	}

	// Apply global middleware
	handler := middleware.Chain(
		mux,
		middleware.Recover,
		middleware.SecurityHeaders,
		middleware.Instrument(reg),
		middleware.Logger,
	)

	if authService.Open() {
		log.Printf("WARNING: no API secret or dashboard password configured; API routes are unauthenticated")
	}

	// Start server
	addr := ":" + cfg.Port
	log.Printf("BrandSales server starting on http://localhost%s", addr)
	log.Printf("Environment: %s", cfg.Environment)

	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
