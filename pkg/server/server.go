// Package server exposes the lookup engine over HTTP.
//
// Every request reads the snapshot currently published in an [attack.Store],
// so a reload swaps the data under in-flight requests without locking.
//
// Routes:
//
//	GET  /healthz
//	GET  /api/status
//	GET  /api/search?q=<query>&kind=<kinds>&confirm=<bool>
//	GET  /api/{kind}/{id}
//	GET  /api/techniques/{id}/subtechniques
//	POST /api/reload
//	GET  /metrics
//
// Reloads are rate limited because each one queries the release registry.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/redcanaryco/vscode-attack/pkg/attack"
	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
	"github.com/redcanaryco/vscode-attack/pkg/format"
	"github.com/redcanaryco/vscode-attack/pkg/search"
)

// ReloadFunc produces a fresh dataset, typically through the orchestrator.
type ReloadFunc func(ctx context.Context) (*attack.Dataset, error)

// Options configures a [Server].
type Options struct {
	Store          *attack.Store
	Reload         ReloadFunc // nil disables POST /api/reload
	Search         search.Options
	Kinds          []attack.Kind // searchable kinds; nil means all
	Description    format.DescriptionLength
	Insert         format.InsertFormat
	AllowedOrigins []string      // nil allows any origin
	ReloadInterval time.Duration // minimum spacing of reloads; default DefaultReloadInterval
	Logger         *log.Logger
}

// DefaultReloadInterval keeps reloads well inside the unauthenticated
// GitHub API quota.
const DefaultReloadInterval = time.Minute

// Server serves lookups from the current snapshot.
type Server struct {
	opts    Options
	logger  *log.Logger
	router  chi.Router
	metrics *metrics
	reloads *rate.Limiter
}

// New creates a server. opts.Store must not be nil.
func New(opts Options) *Server {
	s := &Server{opts: opts, logger: opts.Logger}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.opts.Description == "" {
		s.opts.Description = format.Short
	}
	if s.opts.Insert == "" {
		s.opts.Insert = format.InsertIDName
	}
	if s.opts.ReloadInterval <= 0 {
		s.opts.ReloadInterval = DefaultReloadInterval
	}
	s.reloads = rate.NewLimiter(rate.Every(s.opts.ReloadInterval), 1)
	s.metrics = newMetrics()
	s.metrics.setSnapshot(s.opts.Store.Load())
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/search", s.handleSearch)
		r.Post("/reload", s.handleReload)
		r.Get("/techniques/{id}/subtechniques", s.handleSubtechniques)
		r.Get("/{kind}/{id}", s.handleItem)
	})
	return r
}

// Registry returns the Prometheus registry served at /metrics, so callers
// can add their own collectors.
func (s *Server) Registry() *prometheus.Registry { return s.metrics.registry }

// Handler returns the router wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)
		route := ""
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		s.metrics.observeRequest(route, r.Method, ww.Status(), elapsed.Seconds())
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", elapsed.Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) snapshot(w http.ResponseWriter) *attack.Snapshot {
	snap := s.opts.Store.Load()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "dataset not loaded")
	}
	return snap
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, statusOf(snap))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	q := r.URL.Query()
	kinds := s.opts.Kinds
	if raw := q.Get("kind"); raw != "" {
		kinds = nil
		for _, name := range strings.Split(raw, ",") {
			k, ok := attack.ParseKind(name)
			if !ok {
				writeError(w, http.StatusBadRequest, "unknown kind "+strconv.Quote(name))
				return
			}
			kinds = append(kinds, k)
		}
	}

	opts := s.opts.Search
	if c := q.Get("confirm"); c != "" {
		confirmed, err := strconv.ParseBool(c)
		if err != nil {
			writeError(w, http.StatusBadRequest, "confirm must be a boolean")
			return
		}
		opts.Confirmed = confirmed
	}

	query := q.Get("q")
	results := search.Any(query, snap, kinds, opts)
	s.metrics.searchResults.Observe(float64(len(results)))
	docs := make([]itemDoc, len(results))
	for i, it := range results {
		docs[i] = s.doc(it)
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: query, Count: len(docs), Results: docs})
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	kind, ok := attack.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown kind")
		return
	}
	it := snap.Lookup(chi.URLParam(r, "id"))
	if it == nil || it.Kind() != kind {
		writeError(w, http.StatusNotFound, "no "+kind.String()+" with id "+chi.URLParam(r, "id"))
		return
	}
	writeJSON(w, http.StatusOK, s.doc(it))
}

func (s *Server) handleSubtechniques(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}

	t, ok := snap.Technique(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "no technique with id "+chi.URLParam(r, "id"))
		return
	}
	subs := snap.Subtechniques(t)
	docs := make([]itemDoc, len(subs))
	for i, st := range subs {
		docs[i] = s.doc(st)
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.opts.Reload == nil {
		writeError(w, http.StatusNotImplemented, "reload is disabled")
		return
	}
	if !s.reloads.Allow() {
		s.metrics.reloads.WithLabelValues("throttled").Inc()
		w.Header().Set("Retry-After", strconv.Itoa(int(s.opts.ReloadInterval.Seconds())))
		writeError(w, http.StatusTooManyRequests, "reload already requested recently")
		return
	}

	ds, err := s.opts.Reload(r.Context())
	if err != nil {
		s.logger.Error("reload failed", "err", err)
		s.metrics.reloads.WithLabelValues("error").Inc()
		writeError(w, apperrors.HTTPStatus(err), apperrors.UserMessage(err))
		return
	}

	snap := attack.NewSnapshot(ds)
	s.metrics.reloads.WithLabelValues("ok").Inc()
	s.metrics.setSnapshot(snap)
	if old := s.opts.Store.Swap(snap); old != nil {
		s.logger.Info("reloaded dataset", "from", old.Version, "to", snap.Version)
	}
	writeJSON(w, http.StatusOK, statusOf(snap))
}

// =============================================================================
// Responses
// =============================================================================

type statusResponse struct {
	Snapshot string         `json:"snapshot"`
	Version  string         `json:"version"`
	Modified time.Time      `json:"modified"`
	LoadedAt time.Time      `json:"loaded_at"`
	Counts   map[string]int `json:"counts"`
}

func statusOf(snap *attack.Snapshot) statusResponse {
	counts := make(map[string]int, len(attack.Kinds))
	for _, k := range attack.Kinds {
		counts[k.Plural()] = snap.Len(k)
	}
	return statusResponse{
		Snapshot: snap.ID.String(),
		Version:  snap.Version,
		Modified: snap.Modified,
		LoadedAt: snap.LoadedAt,
		Counts:   counts,
	}
}

type searchResponse struct {
	Query   string    `json:"query"`
	Count   int       `json:"count"`
	Results []itemDoc `json:"results"`
}

type itemDoc struct {
	Kind        string   `json:"kind"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Label       string   `json:"label"`
	Insert      string   `json:"insert"`
	Hover       string   `json:"hover"`
	Retired     bool     `json:"retired,omitempty"`
	Parent      string   `json:"parent,omitempty"`
	Tactics     []string `json:"tactics,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
}

func (s *Server) doc(it attack.Item) itemDoc {
	b := it.Base()
	d := itemDoc{
		Kind:        it.Kind().String(),
		ID:          b.ID,
		Name:        b.Name,
		URL:         b.URL,
		Description: format.Description(it, s.opts.Description),
		Label:       format.Label(it),
		Insert:      format.Insertion(it, s.opts.Insert),
		Hover:       format.Hover(it, s.opts.Description),
		Retired:     it.Retired(),
	}
	switch v := it.(type) {
	case *attack.Technique:
		d.Parent = v.ParentID()
		d.Tactics = v.Tactics
	case *attack.Group:
		d.Aliases = v.Aliases
	case *attack.Software:
		d.Aliases = v.Aliases
	}
	return d
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
