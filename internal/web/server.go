// Package web provides the JSON HTTP API the site's pages consume.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/justinas/alice"
	"github.com/rs/cors"

	"github.com/borghese/vitrine/internal/contact"
	"github.com/borghese/vitrine/internal/logging"
	"github.com/borghese/vitrine/internal/property"
)

// Catalog is the read side of the site data the API serves.
type Catalog interface {
	Search(ctx context.Context, q property.Query) ([]property.Listing, error)
	ListingByID(ctx context.Context, id int64) (property.Listing, bool, error)
	FeaturedListings(ctx context.Context) ([]property.Listing, error)
	LoadAllDevelopments(ctx context.Context) ([]property.Development, error)
	DevelopmentByKey(ctx context.Context, key string) (property.Development, bool, error)
	FeaturedDevelopments(ctx context.Context) ([]property.Development, error)
	DevelopmentUnits(ctx context.Context, devID int64) ([]property.Listing, error)
	Statistics(ctx context.Context) (property.Stats, error)
	LoadFilterConfig(ctx context.Context) (map[string]any, error)
	SubmitContact(ctx context.Context, p contact.Payload) contact.Outcome
	ClearCache()
}

// QueryStore remembers the last applied search.
type QueryStore interface {
	SaveQuery(ctx context.Context, q property.Query) error
	LoadQuery(ctx context.Context) (property.Query, bool)
	ClearQuery(ctx context.Context) error
}

// Options configures a Server.
type Options struct {
	// AllowedOrigins lists the site origins allowed to call the API.
	// Empty allows any origin.
	AllowedOrigins []string
}

// Server is the API HTTP server.
type Server struct {
	catalog Catalog
	queries QueryStore
	mux     *http.ServeMux
	handler http.Handler
	now     func() time.Time
}

// NewServer creates an API server. queries may be nil, in which case
// saved searches are unavailable.
func NewServer(cat Catalog, queries QueryStore, opts Options) *Server {
	s := &Server{
		catalog: cat,
		queries: queries,
		mux:     http.NewServeMux(),
		now:     time.Now,
	}

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/listings", s.handleAPIListings)
	s.mux.HandleFunc("/api/listings/", s.handleAPIListings)
	s.mux.HandleFunc("/api/developments", s.handleAPIDevelopments)
	s.mux.HandleFunc("/api/developments/", s.handleAPIDevelopments)
	s.mux.HandleFunc("/api/stats", s.handleAPIStats)
	s.mux.HandleFunc("/api/filter-config", s.handleAPIFilterConfig)
	s.mux.HandleFunc("/api/filters", s.handleAPIFilters)
	s.mux.HandleFunc("/api/contact", s.handleAPIContact)
	s.mux.HandleFunc("/api/cache/clear", s.handleAPICacheClear)

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", logging.RequestIDHeader},
		ExposedHeaders: []string{logging.RequestIDHeader},
	})

	s.handler = alice.New(
		recoverPanic,
		logging.RequestIDs,
		logging.RequestLogger,
		secureHeaders,
		c.Handler,
	).Then(s.mux)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting API server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// recoverPanic turns a handler panic into a 500 response.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("handler panic", "error", err, "path", r.URL.Path,
					"request_id", logging.RequestID(r.Context()))
				w.Header().Set("Connection", "close")
				apiError(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")
		next.ServeHTTP(w, r)
	})
}
