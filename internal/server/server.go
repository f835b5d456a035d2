// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nats-io/nats.go"

	"misintel/internal/config"
	"misintel/internal/domain/analysis"
	"misintel/internal/domain/trace"
	"misintel/internal/domain/viral"
	"misintel/internal/server/handlers"
	"misintel/internal/service/scan"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	natsConn *nats.Conn,
	scorer analysis.Scorer,
	tracker viral.Tracker,
	tracer trace.Tracer,
	scanService *scan.Service,
	eventsTopic string,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	analysisHandler := handlers.NewAnalysisHandler(scorer)
	viralHandler := handlers.NewViralHandler(tracker)
	traceHandler := handlers.NewTraceHandler(tracer)
	scanHandler := handlers.NewScanHandler(scanService)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			// Content risk analysis
			r.Post("/analysis", analysisHandler.AnalyzeContent)

			// Viral amplification
			r.Post("/viral", viralHandler.FilterViral)

			// Origin tracing
			r.Post("/trace", traceHandler.TraceOrigin)

			// Scan pipeline
			r.Route("/scans", func(r chi.Router) {
				r.Post("/", scanHandler.RunScan)
				r.Get("/", scanHandler.ListScans)
				r.Get("/{id}", scanHandler.GetScan)
			})
		})
	})

	// WebSocket endpoint for the live alert feed
	router.Get("/ws/alerts", handlers.AlertsWebSocketHandler(natsConn, eventsTopic))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
