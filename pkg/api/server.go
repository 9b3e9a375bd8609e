// Package api provides the HTTP API server for netfabric.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/carverauto/netfabric/pkg/audit"
	nfHttp "github.com/carverauto/netfabric/pkg/http"
	"github.com/carverauto/netfabric/pkg/logger"
	"github.com/carverauto/netfabric/pkg/models"
	"github.com/carverauto/netfabric/pkg/provisioner"
	"github.com/carverauto/netfabric/pkg/topology"
)

// Server exposes the inventory and the provisioning workflow over HTTP.
type Server struct {
	router      *mux.Router
	store       *topology.Store
	provisioner Provisioner
	runs        RunStore
	apiKey      string
	corsConfig  models.CORSConfig
	logger      logger.Logger

	mu         sync.Mutex
	httpServer *http.Server
}

// NewServer creates the API server. Without a provisioner it still
// serves the inventory routes; plan and apply report unavailable.
func NewServer(store *topology.Store, log logger.Logger, options ...func(*Server)) *Server {
	s := &Server{
		router: mux.NewRouter(),
		store:  store,
		logger: log,
	}

	for _, o := range options {
		o(s)
	}

	s.setupRoutes()

	return s
}

// WithProvisioner adds the provisioning workflow to the API server.
func WithProvisioner(p Provisioner) func(*Server) {
	return func(server *Server) {
		server.provisioner = p
	}
}

// WithRunStore adds provisioning run history to the API server.
func WithRunStore(runs RunStore) func(*Server) {
	return func(server *Server) {
		server.runs = runs
	}
}

// WithAPIKey gates the /api routes behind a shared key. The health
// endpoint stays open for probes.
func WithAPIKey(key string) func(*Server) {
	return func(server *Server) {
		server.apiKey = key
	}
}

// WithCORS sets the allowed cross-origin callers.
func WithCORS(cfg models.CORSConfig) func(*Server) {
	return func(server *Server) {
		server.corsConfig = cfg
	}
}

func (s *Server) setupRoutes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return nfHttp.CommonMiddleware(next, s.corsConfig, s.logger)
	})

	s.router.HandleFunc("/health", s.getHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(nfHttp.APIKeyMiddleware(s.apiKey, s.logger))
	api.HandleFunc("/devices", s.getDevices).Methods("GET")
	api.HandleFunc("/devices/{name}/target", s.getDeviceTarget).Methods("GET")
	api.HandleFunc("/devices/{name}/plan", s.postDevicePlan).Methods("POST")
	api.HandleFunc("/devices/{name}/apply", s.postDeviceApply).Methods("POST")
	api.HandleFunc("/topology/refresh", s.postTopologyRefresh).Methods("POST")
	api.HandleFunc("/runs", s.getRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", s.getRun).Methods("GET")
}

// Router returns the configured handler, mainly for tests and for
// embedding the API under an outer mux.
func (s *Server) Router() http.Handler {
	return s.router
}

const (
	defaultReadTimeout = 10 * time.Second
	defaultIdleTimeout = 60 * time.Second

	// Apply holds the response open while the device round trip runs.
	defaultWriteTimeout = 60 * time.Second
)

// Start starts the API server on the specified address.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	return srv.ListenAndServe()
}

// Shutdown stops the API server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	return srv.Shutdown(ctx)
}

// encodeJSONResponse encodes a response as JSON.
func (*Server) encodeJSONResponse(w http.ResponseWriter, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")

	return json.NewEncoder(w).Encode(data)
}

// writeServiceError maps domain errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("Request failed")
	}

	writeError(w, err.Error(), status)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, provisioner.ErrDeviceNotFound),
		errors.Is(err, audit.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, provisioner.ErrNotManaged),
		errors.Is(err, provisioner.ErrNoPrimaryIP):
		return http.StatusBadRequest
	case errors.Is(err, provisioner.ErrIdentityMismatch):
		return http.StatusConflict
	case errors.Is(err, audit.ErrAuditDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errResponse := models.ErrorResponse{
		Message: message,
		Status:  statusCode,
	}

	if err := json.NewEncoder(w).Encode(errResponse); err != nil {
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
