package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/subiehq/subie/billing"
	"github.com/subiehq/subie/identity/local"
	"github.com/subiehq/subie/internal/config"
	"github.com/subiehq/subie/internal/metrics"
	"github.com/subiehq/subie/profile"
)

// Server exposes the account core over a JSON API: the flow's action surface
// under /v1/auth, the current-user view under /v1/me and billing
// reconciliation under /v1/billing.
type Server struct {
	env        string
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	identity   *local.Service
	profiles   profile.Store
	ledger     billing.Ledger
	reconciler *billing.Reconciler
	collector  *metrics.Collector
	registry   *prometheus.Registry
	logger     zerolog.Logger
}

func New(
	cfg config.Config,
	identitySvc *local.Service,
	profiles profile.Store,
	ledger billing.Ledger,
	registry *prometheus.Registry,
	logger zerolog.Logger,
) (*Server, error) {
	if identitySvc == nil {
		return nil, fmt.Errorf("[Server New] identity service is required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("[Server New] profile store is required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("[Server New] billing ledger is required")
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	reconciler, err := billing.NewReconciler(ledger, profiles, logger)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create reconciler: %w", err)
	}

	s := &Server{
		mux:        http.NewServeMux(),
		config:     cfg,
		identity:   identitySvc,
		profiles:   profiles,
		ledger:     ledger,
		reconciler: reconciler,
		collector:  metrics.NewCollector(registry),
		registry:   registry,
		logger:     logger,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) == 2 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", route)
		}
	}
}
