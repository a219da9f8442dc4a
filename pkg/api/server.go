// Package api rowdb REST API
//
// @title           rowdb REST API
// @version         1.0.0
// @description     REST API for rowdb, a per-table flat-file record store.
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
)

const (
	metricsUpdateInterval = 30 * time.Second
	shutdownTimeout       = 10 * time.Second
)

const swaggerUIPage = `<!DOCTYPE html>
<html>
<head>
	<title>rowdb API Documentation</title>
	<link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui.css" />
</head>
<body>
	<div id="swagger-ui"></div>
	<script src="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui-bundle.js"></script>
	<script>
	  window.onload = function() {
	    SwaggerUIBundle({
	      url: '/swagger/swagger.json',
	      dom_id: '#swagger-ui',
	      presets: [
	        SwaggerUIBundle.presets.apis,
	        SwaggerUIBundle.presets.standalone
	      ]
	    });
	  };
	</script>
</body>
</html>`

// NewRouter builds the HTTP routes for server. Metrics are served from
// gatherer at /metrics.
func NewRouter(server *Server, gatherer prometheus.Gatherer) http.Handler {
	metrics := server.metrics
	origins := server.config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(requestIDMiddleware)
	r.Use(requestLogger(server.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(server.config.APIKey)))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		// Records
		r.Post("/insert/{table}", metrics.InstrumentHandler("POST", "/api/v1/insert/{table}", server.handleInsert))
		r.Post("/update/{table}/{id}", metrics.InstrumentHandler("POST", "/api/v1/update/{table}/{id}", server.handleUpdate))
		r.Get("/select/{table}/{id}", metrics.InstrumentHandler("GET", "/api/v1/select/{table}/{id}", server.handleSelect))

		// Diagnostics
		r.Get("/tables", metrics.InstrumentHandler("GET", "/api/v1/tables", server.handleTables))
		r.Get("/stats", metrics.InstrumentHandler("GET", "/api/v1/stats", server.handleStats))
	})

	// Swagger documentation (unprotected)
	r.Get("/swagger/*", server.handleSwagger)

	return r
}

func (s *Server) handleSwagger(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/swagger/", "/swagger/index.html":
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerUIPage))
	case "/swagger/swagger.json":
		doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
		if err != nil {
			s.logger.Error("swagger doc generation failed", "error", err)
			http.Error(w, "Failed to generate Swagger documentation", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	default:
		http.NotFound(w, r)
	}
}

// Telemetry is the registry served at /metrics together with the metrics
// registered on it
type Telemetry struct {
	Registry *prometheus.Registry
	Metrics  *Metrics
}

// NewTelemetry creates a registry with the Go and process collectors plus
// the rowdb metrics. Pass Metrics to the record store as its observer.
func NewTelemetry() *Telemetry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Telemetry{
		Registry: registry,
		Metrics:  NewMetrics(registry),
	}
}

// StartServer serves the API until ctx is cancelled, then shuts down
// gracefully. A nil telemetry gets a fresh registry.
func StartServer(ctx context.Context, store IRecordStore, config ServerConfig, telemetry *Telemetry, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if telemetry == nil {
		telemetry = NewTelemetry()
	}

	SwaggerInfo.Host = fmt.Sprintf("localhost:%d", config.Port)

	server := NewServer(store, config, telemetry.Metrics, logger)

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(config.Bind, strconv.Itoa(config.Port)),
		Handler:           NewRouter(server, telemetry.Registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	defer close(done)
	go server.startMetricsUpdater(metricsUpdateInterval, done)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting rowdb REST API server", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down rowdb REST API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
