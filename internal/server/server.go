package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/matheuskafuri/tradewire/internal/logger"
	"github.com/matheuskafuri/tradewire/internal/metrics"
	"github.com/matheuskafuri/tradewire/internal/news"
	"github.com/matheuskafuri/tradewire/internal/pipeline"
)

// EntryPeeker exposes the age of the cached window without fetching.
type EntryPeeker interface {
	Peek() (news.Entry, bool)
}

type Server struct {
	svc     *pipeline.Service
	cache   EntryPeeker
	version string
	log     *logger.Logger
}

func New(svc *pipeline.Service, cache EntryPeeker, version string) *Server {
	return &Server{
		svc:     svc,
		cache:   cache,
		version: version,
		log:     logger.Get().With("component", "server"),
	}
}

// Routes builds the HTTP router.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)

	r.HandleFunc("/healthz", s.healthHandler).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	r.HandleFunc("/api/headlines", s.headlinesHandler).Methods("GET")
	r.HandleFunc("/api/categories", s.categoriesHandler).Methods("GET")

	return r
}

type headlinesResponse struct {
	FetchedAt *time.Time        `json:"fetched_at,omitempty"`
	Count     int               `json:"count"`
	Summary   string            `json:"summary"`
	Headlines []pipeline.Record `json:"headlines"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) headlinesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	categories, err := s.svc.ResolveCategories(q["category"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	onlyUrgent := false
	if v := q.Get("urgent"); v != "" {
		onlyUrgent, err = strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "urgent must be a boolean"})
			return
		}
	}

	items, err := s.svc.GetFilteredHeadlines(r.Context(), categories, onlyUrgent)
	if err != nil {
		status := http.StatusInternalServerError
		var fe *news.FetchError
		if errors.As(err, &fe) {
			status = http.StatusBadGateway
		}
		s.log.Warnw("headlines unavailable", "error", err)
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	resp := headlinesResponse{
		Count:     len(items),
		Summary:   pipeline.Summarize(items).String(),
		Headlines: pipeline.Records(items),
	}
	if entry, ok := s.cache.Peek(); ok {
		resp.FetchedAt = &entry.FetchedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"categories": s.svc.Categories(),
		"default":    s.svc.DefaultCategories(),
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
	}
	if entry, ok := s.cache.Peek(); ok {
		resp["fetched_at"] = entry.FetchedAt
		resp["items"] = len(entry.Items)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		s.log.Debugw("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWriter captures the status code for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
