package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/borghese/vitrine/internal/catalog"
	"github.com/borghese/vitrine/internal/contact"
	"github.com/borghese/vitrine/internal/logging"
	"github.com/borghese/vitrine/internal/property"
)

// maxBodyBytes caps request bodies; the contact form is the largest.
const maxBodyBytes = 64 << 10

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	apiJSON(w, map[string]string{"error": msg}, code)
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// apiLoadError maps a catalog load failure to a response.
func apiLoadError(w http.ResponseWriter, r *http.Request, err error) {
	var ferr *catalog.FetchError
	if errors.As(err, &ferr) {
		slog.Error("catalog unavailable", "path", ferr.Path, "error", ferr.Err,
			"request_id", logging.RequestID(r.Context()))
		apiError(w, "catalog unavailable", http.StatusBadGateway)
		return
	}
	slog.Error("request failed", "error", err, "request_id", logging.RequestID(r.Context()))
	apiError(w, "internal server error", http.StatusInternalServerError)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// handleAPIListings routes /api/listings requests.
func (s *Server) handleAPIListings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/listings")
	path = strings.Trim(path, "/")

	switch path {
	case "":
		s.apiSearchListings(w, r)
	case "featured":
		listings, err := s.catalog.FeaturedListings(r.Context())
		if err != nil {
			apiLoadError(w, r, err)
			return
		}
		apiJSON(w, listings, http.StatusOK)
	default:
		id, err := strconv.ParseInt(path, 10, 64)
		if err != nil {
			apiError(w, "invalid listing ID", http.StatusBadRequest)
			return
		}
		listing, found, err := s.catalog.ListingByID(r.Context(), id)
		if err != nil {
			apiLoadError(w, r, err)
			return
		}
		if !found {
			apiError(w, "listing not found", http.StatusNotFound)
			return
		}
		apiJSON(w, listing, http.StatusOK)
	}
}

// apiSearchListings runs a search from the query string. With salvar=1 the
// query is remembered as the last applied search.
func (s *Server) apiSearchListings(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := property.ParseQuery(values)

	listings, err := s.catalog.Search(r.Context(), q)
	if err != nil {
		apiLoadError(w, r, err)
		return
	}

	if values.Get("salvar") == "1" && s.queries != nil {
		if err := s.queries.SaveQuery(r.Context(), q); err != nil {
			slog.Warn("saving search", "error", err)
		}
	}

	apiJSON(w, listings, http.StatusOK)
}

// handleAPIDevelopments routes /api/developments requests.
func (s *Server) handleAPIDevelopments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/developments")
	path = strings.Trim(path, "/")

	switch {
	case path == "":
		devs, err := s.catalog.LoadAllDevelopments(r.Context())
		if err != nil {
			apiLoadError(w, r, err)
			return
		}
		apiJSON(w, devs, http.StatusOK)
	case path == "featured":
		devs, err := s.catalog.FeaturedDevelopments(r.Context())
		if err != nil {
			apiLoadError(w, r, err)
			return
		}
		apiJSON(w, devs, http.StatusOK)
	case strings.HasSuffix(path, "/units"):
		key := strings.TrimSuffix(path, "/units")
		dev, found, err := s.catalog.DevelopmentByKey(r.Context(), key)
		if err != nil {
			apiLoadError(w, r, err)
			return
		}
		if !found {
			apiError(w, "development not found", http.StatusNotFound)
			return
		}
		units, err := s.catalog.DevelopmentUnits(r.Context(), dev.ID)
		if err != nil {
			apiLoadError(w, r, err)
			return
		}
		apiJSON(w, units, http.StatusOK)
	case strings.Contains(path, "/"):
		apiError(w, "not found", http.StatusNotFound)
	default:
		dev, found, err := s.catalog.DevelopmentByKey(r.Context(), path)
		if err != nil {
			apiLoadError(w, r, err)
			return
		}
		if !found {
			apiError(w, "development not found", http.StatusNotFound)
			return
		}
		apiJSON(w, dev, http.StatusOK)
	}
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	stats, err := s.catalog.Statistics(r.Context())
	if err != nil {
		apiLoadError(w, r, err)
		return
	}
	apiJSON(w, stats, http.StatusOK)
}

func (s *Server) handleAPIFilterConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cfg, err := s.catalog.LoadFilterConfig(r.Context())
	if err != nil {
		apiLoadError(w, r, err)
		return
	}
	apiJSON(w, cfg, http.StatusOK)
}

// savedSearch is the body of GET /api/filters.
type savedSearch struct {
	Saved bool           `json:"salvo"`
	Query property.Query `json:"filtros"`
	Tags  []property.Tag `json:"tags"`
}

// handleAPIFilters reads, replaces or clears the saved search. DELETE with
// ?chave=<field> removes a single constraint instead of the whole search.
func (s *Server) handleAPIFilters(w http.ResponseWriter, r *http.Request) {
	if s.queries == nil {
		apiError(w, "saved searches are not available", http.StatusServiceUnavailable)
		return
	}

	switch r.Method {
	case http.MethodGet:
		q, found := s.queries.LoadQuery(r.Context())
		apiJSON(w, savedSearch{Saved: found, Query: q, Tags: nonNil(q.Tags())}, http.StatusOK)

	case http.MethodPut:
		var q property.Query
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			apiError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		if err := s.queries.SaveQuery(r.Context(), q); err != nil {
			slog.Error("saving search", "error", err)
			apiError(w, "could not save search", http.StatusInternalServerError)
			return
		}
		apiJSON(w, savedSearch{Saved: true, Query: q, Tags: nonNil(q.Tags())}, http.StatusOK)

	case http.MethodDelete:
		key := r.URL.Query().Get("chave")
		if key == "" {
			if err := s.queries.ClearQuery(r.Context()); err != nil {
				slog.Error("clearing search", "error", err)
				apiError(w, "could not clear search", http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		q, _ := s.queries.LoadQuery(r.Context())
		q = q.Without(key)
		if err := s.queries.SaveQuery(r.Context(), q); err != nil {
			slog.Error("saving search", "error", err)
			apiError(w, "could not save search", http.StatusInternalServerError)
			return
		}
		apiJSON(w, savedSearch{Saved: true, Query: q, Tags: nonNil(q.Tags())}, http.StatusOK)

	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAPIContact validates and relays a contact form. The relay outcome
// is the body; a failed relay answers 502 so clients can branch on status.
func (s *Server) handleAPIContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var p contact.Payload
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := p.Validate(); err != nil {
		var ferr *contact.FieldError
		if errors.As(err, &ferr) {
			apiJSON(w, map[string]any{"error": "invalid contact form", "campos": ferr.Fields}, http.StatusBadRequest)
			return
		}
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if p.SentAt.IsZero() {
		p.SentAt = s.now()
	}

	out := s.catalog.SubmitContact(r.Context(), p)
	code := http.StatusOK
	if !out.Success {
		code = http.StatusBadGateway
	}
	apiJSON(w, out, code)
}

func (s *Server) handleAPICacheClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.catalog.ClearCache()
	w.WriteHeader(http.StatusNoContent)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
