package main

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mehmetsinc/timer-takimca/pkg/display"
	"github.com/mehmetsinc/timer-takimca/pkg/fetch"
	"github.com/mehmetsinc/timer-takimca/pkg/imagecache"
	"github.com/mehmetsinc/timer-takimca/pkg/kvstore"
	"github.com/mehmetsinc/timer-takimca/pkg/params"
)

//go:embed static/*
var staticFiles embed.FS

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Port      int
	Version   string
	Store     kvstore.Config
	Codec     string
	Fetch     FetchConfig
	RateLimit RateLimitConfig

	// Fetcher overrides the HTTP image fetcher built from Fetch.
	Fetcher imagecache.Fetcher

	// Logger is passed to the image cache. Default: slog.Default().
	Logger *slog.Logger

	// Now returns the current time. Default: time.Now.
	Now func() time.Time
}

// Server is the HTTP server for the timer page.
type Server struct {
	config  ServerConfig
	mux     *http.ServeMux
	server  *http.Server
	store   kvstore.Store
	cache   *imagecache.Cache
	limiter *rateLimiter
	now     func() time.Time

	mu       sync.Mutex
	onChange func(count int)
}

// NewServer creates a new server with the given configuration.
func NewServer(cfg ServerConfig) (*Server, error) {
	store, err := kvstore.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	codec, err := imagecache.CodecByName(cfg.Codec)
	if err != nil {
		store.Close()
		return nil, err
	}

	fetcher := cfg.Fetcher
	if fetcher == nil {
		f := fetch.New()
		if cfg.Fetch.Timeout > 0 {
			f.Client.Timeout = cfg.Fetch.Timeout
		}
		if cfg.Fetch.MaxBytes > 0 {
			f.MaxBytes = cfg.Fetch.MaxBytes
		}
		fetcher = f
	}

	cacheCfg := imagecache.DefaultConfig()
	cacheCfg.Codec = codec
	cacheCfg.Fetcher = fetcher
	cacheCfg.Logger = cfg.Logger
	if cfg.Fetch.Timeout > 0 {
		cacheCfg.PrefetchTimeout = cfg.Fetch.Timeout
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		config:  cfg,
		mux:     http.NewServeMux(),
		store:   store,
		limiter: newRateLimiter(cfg.RateLimit),
		now:     now,
	}
	cacheCfg.OnChange = s.imagesChanged
	s.cache = imagecache.New(store, cacheCfg)

	s.registerRoutes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	// API routes
	s.mux.HandleFunc("/api/v1/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/info", s.handleInfo)
	s.mux.HandleFunc("/api/v1/display", s.handleDisplay)
	s.mux.HandleFunc("/api/v1/share", s.handleShare)

	// Image cache routes
	s.mux.HandleFunc("/api/v1/images", s.handleImages)
	s.mux.HandleFunc("/api/v1/images/from-url", s.limiter.Wrap(s.handleImageFromURL))
	s.mux.HandleFunc("/api/v1/images/{id}", s.handleImageByID)

	// Timer page
	s.mux.HandleFunc("/", s.handleStatic)
}

// OnImagesChanged registers fn to be called with the new image count after
// every change to the cache, including background fetches. Calls are
// serialized.
func (s *Server) OnImagesChanged(fn func(count int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *Server) imagesChanged(count int) {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(count)
	}
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	version := s.config.Version
	if version == "" {
		version = "dev"
	}

	resp := map[string]string{
		"status":  "ok",
		"version": version,
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleInfo returns server information.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	driver := s.config.Store.Driver
	if driver == "" {
		driver = kvstore.DriverMemory
	}
	codec := s.config.Codec
	if codec == "" {
		codec = "json"
	}

	resp := map[string]any{
		"image_count": s.cache.Count(),
		"store":       driver,
		"codec":       codec,
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleDisplay resolves the timer page for the request's query.
func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := clientKey(r)
	src := limitedSource{Cache: s.cache, allow: func() bool { return s.limiter.Allow(key) }}

	now := s.now()
	page := display.Load(params.Parse(r.URL.Query()), now, src)

	writeJSON(w, http.StatusOK, page.Snapshot(now))
}

// limitedSource is the image cache with background fetches charged to the
// requesting client's rate limit. Over the limit, the URL is shown but not
// cached.
type limitedSource struct {
	*imagecache.Cache
	allow func() bool
}

func (l limitedSource) Prefetch(url string) {
	if l.allow() {
		l.Cache.Prefetch(url)
	}
}

// handleShare builds the share URL for a settings form.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var settings params.Settings
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings: "+err.Error())
		return
	}

	p := settings.Params()
	writeJSON(w, http.StatusOK, map[string]any{
		"url":    params.BuildURL(pageBase(r), p),
		"params": p,
	})
}

// pageBase returns the absolute URL of the timer page as seen by the client.
func pageBase(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}

// handleStatic serves the timer page.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Every path renders the timer page; its state lives in the query.
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeFileFS(w, r, staticFS, "index.html")
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for active ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Close waits for background image fetches and closes the store.
func (s *Server) Close() error {
	s.cache.Wait()
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
