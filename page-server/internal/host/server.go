// Package host serves resolved documents over HTTP: fixed route aliases,
// a sidebar page over the registry, a small JSON API and an event stream
// that tells browsers when the asset directory changed.
package host

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/anams/page-server/pkg/document"
	"github.com/anams/page-server/pkg/logger"
	"github.com/anams/page-server/pkg/predict"
	"github.com/anams/page-server/pkg/registry"
	"github.com/anams/page-server/pkg/render"
)

// Predictor evaluates the classifier models
type Predictor interface {
	Predict(ctx context.Context, in predict.Input) map[string]string
	Ready() bool
}

// Pinger reports whether the asset backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Route binds a URL path to a document
type Route struct {
	Path string
	ID   document.ID
}

// Options configures a Server. Predictor and Store are optional.
type Options struct {
	Title     string
	Registry  registry.Registry
	Resolver  *document.Resolver
	Renderer  *render.Renderer
	Predictor Predictor
	Store     Pinger
	Routes    []Route
	Log       *logger.Logger
}

// Server holds the handlers for every hosting surface
type Server struct {
	title     string
	registry  registry.Registry
	resolver  *document.Resolver
	renderer  *render.Renderer
	predictor Predictor
	store     Pinger
	routes    map[string]document.ID
	log       *logger.Logger

	sseClients map[chan string]bool
	sseMutex   sync.Mutex
}

// New creates a Server. Route paths are normalized to a leading slash
// without a trailing one.
func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = logger.Discard(logger.ComponentServer)
	}
	title := opts.Title
	if title == "" {
		title = "Pages"
	}

	routes := make(map[string]document.ID, len(opts.Routes))
	for _, rt := range opts.Routes {
		routes[normalizePath(rt.Path)] = rt.ID
	}

	return &Server{
		title:      title,
		registry:   opts.Registry,
		resolver:   opts.Resolver,
		renderer:   opts.Renderer,
		predictor:  opts.Predictor,
		store:      opts.Store,
		routes:     routes,
		log:        log,
		sseClients: make(map[chan string]bool),
	}
}

func normalizePath(p string) string {
	return "/" + strings.Trim(p, "/")
}

// Handler returns the main mux wrapped in request-id and access-log middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /events", s.handleSSE)
	mux.HandleFunc("GET /pages", s.handlePages)
	mux.HandleFunc("GET /api/documents", s.handleListDocuments)
	mux.HandleFunc("GET /api/documents/{id}", s.handleDocument)
	mux.HandleFunc("POST /api/predict", s.handlePredict)
	mux.HandleFunc("/", s.handleRoute)

	return RequestID(AccessLog(s.log)(mux))
}

// Routes returns the configured route table
func (s *Server) Routes() map[string]document.ID {
	out := make(map[string]document.ID, len(s.routes))
	for k, v := range s.routes {
		out[k] = v
	}
	return out
}
