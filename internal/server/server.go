// Package server provides the HTTP REST API for recipe sharing.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/recipe-share/internal/compliance"
	"github.com/jonathan/recipe-share/internal/config"
	"github.com/jonathan/recipe-share/internal/db"
	"github.com/jonathan/recipe-share/internal/llm"
	"github.com/jonathan/recipe-share/internal/overlap"
	"github.com/jonathan/recipe-share/internal/rewriting"
	"github.com/jonathan/recipe-share/internal/server/middleware"
	"github.com/jonathan/recipe-share/internal/server/ratelimit"
	"github.com/jonathan/recipe-share/internal/share"
	"github.com/jonathan/recipe-share/internal/stepgraph"
)

// Server represents the HTTP server and its wired collaborators.
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	llmClient   llm.Client
	pipeline    pipelineRunner
	shareTokens *share.TokenService
	jwtService  *JWTService
	limiter     *ratelimit.Limiter
	validate    *validator.Validate
}

// New creates a server instance and connects it to its backing services.
func New(cfg *config.Config) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.Migrate(context.Background()); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	var llmClient llm.Client
	if cfg.APIKey != "" {
		llmClient, err = llm.NewGeminiClient(context.Background(), llm.DefaultConfig(), cfg.APIKey)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
	}

	tokens := share.NewTokenService(database, database, time.Now, nil)

	pipeline := share.NewPipeline(share.PipelineConfig{
		Recipes:   database,
		Library:   database,
		Safe:      database,
		Tokens:    tokens,
		Ledger:    db.NewQuotaStore(database, time.Now),
		Rewriter:  rewriting.NewGeminiService(llmClient, cfg.RewriteTimeout()),
		Evaluator: compliance.NewEvaluator(compliance.DefaultConfig(), overlap.DefaultScorer()),
		Builder:   stepgraph.NewBuilder(stepgraph.DefaultConfig()),
		Workers:   cfg.Workers,
	})

	s := &Server{
		db:          database,
		llmClient:   llmClient,
		pipeline:    pipeline,
		shareTokens: tokens,
		jwtService:  NewJWTService(jwtConfig),
		limiter:     ratelimit.NewLimiter(ratelimit.DefaultConfig(), time.Now),
		validate:    validator.New(),
	}

	auth := middleware.RequireAuth(s.jwtService)

	mux := http.NewServeMux()
	mux.Handle("POST /recipes/share", auth(http.HandlerFunc(s.handleCreateShare)))
	mux.HandleFunc("GET /recipes/shared/{token}", s.handlePreviewShare)
	mux.Handle("POST /recipes/import-shared/{token}", auth(http.HandlerFunc(s.handleRedeemShare)))
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for rewrite batches
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.llmClient != nil {
		if err := s.llmClient.Close(); err != nil {
			log.Printf("Error closing LLM client: %v", err)
		}
	}

	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}
