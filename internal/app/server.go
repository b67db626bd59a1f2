package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/Scholara/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/Scholara/internal/api/middlewares"
	"github.com/markdave123-py/Scholara/internal/config"
	"github.com/markdave123-py/Scholara/internal/core/ingestion_engine"
	"github.com/markdave123-py/Scholara/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes. The /api group requires a bearer
// token only when cfg.JWTSecret is set.
func NewServer(cfg *config.Config, sources *services.SourceService, runner ingestion_engine.Runner) *Server {
	docHandler := handlers.NewDocumentHandler(sources)
	paperHandler := handlers.NewPaperHandler(runner, sources)
	searchHandler := handlers.NewSearchHandler(runner)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: !slices.Contains(origins, "*"),
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		if cfg.JWTSecret != "" {
			api.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))
		} else {
			log.Println("Server: WARN JWT_SECRET not set, /api is unauthenticated")
		}

		// Source editing is quick; paper generation is bounded by the LLM timeout instead.
		api.Group(func(quick chi.Router) {
			quick.Use(middleware.Timeout(60 * time.Second))
			quick.Get("/sources", docHandler.GetSources)
			quick.Delete("/sources", docHandler.ClearSources)
			quick.Post("/sources/pdfs", docHandler.AddPDF)
			quick.Delete("/sources/pdfs", docHandler.RemovePDF)
			quick.Post("/sources/urls", docHandler.AddURL)
			quick.Delete("/sources/urls", docHandler.RemoveURL)
			quick.Put("/sources/topic", docHandler.SetTopic)
			quick.Post("/sources/samples", docHandler.LoadSamples)
			quick.Post("/documents/upload", docHandler.UploadDocument)
			quick.Post("/search", searchHandler.Search)
			quick.Get("/papers/latest", paperHandler.LatestPaper)
		})
		api.Post("/papers", paperHandler.GeneratePaper)
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{httpServer: httpSrv}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
