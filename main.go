package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"evote-api/internal/config"
	"evote-api/internal/container"
	"evote-api/internal/handler"
	"evote-api/internal/middleware"
	"evote-api/pkg/logger"
)

// Resources holds everything that needs cleanup on shutdown
type Resources struct {
	container *container.Container
	server    *http.Server
	log       *logger.Logger
	mu        sync.Mutex
	closed    bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	r.log.Info("Starting graceful shutdown...")

	var firstErr error

	// Stop accepting requests before stopping the sweeper and stores
	if r.server != nil {
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			firstErr = fmt.Errorf("HTTP server shutdown: %w", err)
		}
	}

	if r.container != nil {
		r.container.Close(ctx)
	}

	if firstErr == nil {
		r.log.Info("Graceful shutdown completed successfully")
	}
	return firstErr
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting evote-api server")

	ctx := context.Background()

	c, err := container.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}

	// The sweeper keeps election statuses in line with their dates
	if err := c.Services.Lifecycle.Start(ctx); err != nil {
		log.WithError(err).Fatal("Failed to start election lifecycle sweeper")
	}

	router := setupRouter(c)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	resources := &Resources{
		container: c,
		server:    server,
		log:       log,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(c *container.Container) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()
	authService := c.Services.Auth

	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	healthHandler := handler.NewHealthHandler(c)
	authHandler := handler.NewAuthHandler(authService, log)
	userHandler := handler.NewUserHandler(c.Services.Users, log)
	electionHandler := handler.NewElectionHandler(c.Services.Elections, log)
	candidateHandler := handler.NewCandidateHandler(c.Services.Candidacy, log)
	votingHandler := handler.NewVotingHandler(c.Services.Voting, log)
	adminHandler := handler.NewAdminHandler(c.Services.Admin, log)

	requireAuth := middleware.Auth(authService, log)
	optionalAuth := middleware.OptionalAuth(authService, log)
	requireAdmin := middleware.RequireAdmin(log)

	r.Get("/health", healthHandler.Check)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authHandler.Me)
			})
		})

		r.Route("/elections", func(r chi.Router) {
			// Listing and detail are public; results of an unfinished
			// election need an admin token, so auth there is optional
			r.Get("/", electionHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/eligible", electionHandler.ListEligible)
			})

			r.Get("/{electionId}", electionHandler.Get)

			r.With(optionalAuth).Get("/{electionId}/results", votingHandler.Results)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireAdmin)

				r.Post("/", electionHandler.Create)
				r.Put("/{electionId}", electionHandler.Update)
				r.Post("/{electionId}/end", electionHandler.End)
				r.Delete("/{electionId}", electionHandler.Delete)
				r.Get("/{electionId}/results/live", votingHandler.LiveResults)
			})
		})

		r.Route("/candidates", func(r chi.Router) {
			r.Get("/", candidateHandler.List)
			r.Get("/{candidateId}", candidateHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)

				r.Post("/", candidateHandler.Apply)
				r.Delete("/{candidateId}", candidateHandler.Remove)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireAdmin)
				r.Put("/{candidateId}/verify", candidateHandler.Verify)
			})
		})

		r.Route("/votes", func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/", votingHandler.CastVote)
			r.Get("/mine", votingHandler.MyVotes)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)

			r.Get("/", userHandler.List)
			r.Post("/", userHandler.Create)
			r.Get("/{userId}", userHandler.Get)
			r.Put("/{userId}", userHandler.Update)
			r.Delete("/{userId}", userHandler.Delete)
			r.Post("/{userId}/elections/{electionId}", userHandler.AssignElection)
			r.Delete("/{userId}/elections/{electionId}", userHandler.RemoveElection)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)

			r.Get("/stats", adminHandler.Stats)
			r.Get("/election-stats", adminHandler.ElectionStats)
			r.Get("/activity", adminHandler.RecentActivity)
			r.Get("/analytics", adminHandler.Analytics)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"type":"not_found","message":"Endpoint not found"}}`))
	})

	log.Info("Router configured successfully")
	return r
}
