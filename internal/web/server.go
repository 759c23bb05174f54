package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"zwave-go-home/internal/automation"
	"zwave-go-home/internal/coordinator"
	"zwave-go-home/internal/ozw"
	"zwave-go-home/internal/store"
	"zwave-go-home/internal/value"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// ServerOption configures the web server.
type ServerOption func(*Server)

// WithAPIKey enables API key authentication.
func WithAPIKey(key string) ServerOption {
	return func(s *Server) {
		s.apiKey = key
	}
}

// WithAllowedOrigins sets allowed WebSocket origin patterns.
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithAutomation sets the automation engine and script manager.
func WithAutomation(engine *automation.Engine, mgr *automation.Manager) ServerOption {
	return func(s *Server) {
		s.autoEngine = engine
		s.scriptMgr = mgr
	}
}

// WithStore exposes the persisted node snapshots under /api/stored.
func WithStore(st store.Store) ServerOption {
	return func(s *Server) {
		s.store = st
	}
}

// WithMetrics serves h at /metrics.
func WithMetrics(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion sets the application version string.
func WithVersion(v string) ServerOption {
	return func(s *Server) {
		s.version = v
	}
}

// Server is the HTTP JSON API and event stream.
type Server struct {
	coord          *coordinator.Coordinator
	store          store.Store
	metrics        http.Handler
	wsHub          *WSHub
	logger         *slog.Logger
	mux            *http.ServeMux
	apiKey         string
	allowedOrigins []string
	scriptMgr      *automation.Manager
	autoEngine     *automation.Engine
	version        string
	wg             sync.WaitGroup
	unsubEvents    func()
}

// NewServer creates a new web server.
func NewServer(coord *coordinator.Coordinator, logger *slog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		coord:  coord,
		logger: logger.With("component", "web"),
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wsHub = NewWSHub(s.logger)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.wsHub.Run()
	}()

	s.unsubEvents = coord.Events().OnAll(func(event coordinator.Event) {
		s.wsHub.Broadcast(event)
	})

	s.routes()
	return s
}

// Stop gracefully shuts down the WebSocket hub and waits for goroutines.
func (s *Server) Stop() {
	if s.unsubEvents != nil {
		s.unsubEvents()
	}
	s.wsHub.Stop()
	s.wg.Wait()
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/version", s.handleAPIVersion)

	// Network and driver
	s.mux.HandleFunc("GET /api/network", s.handleAPINetworkInfo)
	s.mux.HandleFunc("GET /api/network/stats", s.handleAPIDriverStats)
	s.mux.HandleFunc("POST /api/network/connect", s.handleAPIConnect)
	s.mux.HandleFunc("POST /api/network/disconnect", s.handleAPIDisconnect)
	s.mux.HandleFunc("POST /api/network/reset", s.handleAPIReset)
	s.mux.HandleFunc("POST /api/network/heal", s.handleAPIHealNetwork)
	s.mux.HandleFunc("POST /api/network/switch-all", s.handleAPISwitchAll)
	s.mux.HandleFunc("PUT /api/network/poll-interval", s.handleAPISetPollInterval)
	s.mux.HandleFunc("GET /api/ports", s.handleAPIListPorts)

	// Nodes
	s.mux.HandleFunc("GET /api/nodes", s.handleAPIListNodes)
	s.mux.HandleFunc("GET /api/nodes/{node}", s.handleAPIGetNode)
	s.mux.HandleFunc("PATCH /api/nodes/{node}", s.handleAPIUpdateNode)
	s.mux.HandleFunc("GET /api/nodes/{node}/neighbors", s.handleAPINodeNeighbors)
	s.mux.HandleFunc("GET /api/nodes/{node}/stats", s.handleAPINodeStats)
	s.mux.HandleFunc("GET /api/nodes/{node}/metadata", s.handleAPINodeMetaData)
	s.mux.HandleFunc("GET /api/nodes/{node}/metadata/{field}", s.handleAPINodeMetaDataField)
	s.mux.HandleFunc("GET /api/nodes/{node}/changelog/{revision}", s.handleAPINodeChangeLog)
	s.mux.HandleFunc("POST /api/nodes/{node}/refresh", s.handleAPIRefreshNode)
	s.mux.HandleFunc("POST /api/nodes/{node}/level", s.handleAPINodeLevel)
	s.mux.HandleFunc("POST /api/nodes/{node}/config", s.handleAPISetConfigParam)
	s.mux.HandleFunc("POST /api/nodes/{node}/poll", s.handleAPINodePoll)
	s.mux.HandleFunc("GET /api/nodes/{node}/groups", s.handleAPINodeGroups)
	s.mux.HandleFunc("POST /api/nodes/{node}/groups/{group}/associations", s.handleAPIAddAssociation)
	s.mux.HandleFunc("DELETE /api/nodes/{node}/groups/{group}/associations/{target}", s.handleAPIRemoveAssociation)

	// Values
	s.mux.HandleFunc("GET /api/values/{id}", s.handleAPIGetValue)
	s.mux.HandleFunc("PUT /api/values/{id}", s.handleAPISetValue)
	s.mux.HandleFunc("POST /api/values/{id}/refresh", s.handleAPIRefreshValue)

	// Scenes
	s.mux.HandleFunc("GET /api/scenes", s.handleAPIListScenes)
	s.mux.HandleFunc("POST /api/scenes", s.handleAPICreateScene)
	s.mux.HandleFunc("GET /api/scenes/{scene}", s.handleAPIGetScene)
	s.mux.HandleFunc("PATCH /api/scenes/{scene}", s.handleAPIRenameScene)
	s.mux.HandleFunc("DELETE /api/scenes/{scene}", s.handleAPIDeleteScene)
	s.mux.HandleFunc("POST /api/scenes/{scene}/activate", s.handleAPIActivateScene)
	s.mux.HandleFunc("PUT /api/scenes/{scene}/values/{id}", s.handleAPISetSceneValue)
	s.mux.HandleFunc("DELETE /api/scenes/{scene}/values/{id}", s.handleAPIRemoveSceneValue)

	// Controller commands
	s.mux.HandleFunc("POST /api/controller/command", s.handleAPIControllerCommand)
	s.mux.HandleFunc("POST /api/controller/cancel", s.handleAPICancelCommand)

	// Persisted snapshots
	s.mux.HandleFunc("GET /api/stored/nodes", s.handleAPIStoredNodes)
	s.mux.HandleFunc("GET /api/stored/network", s.handleAPIStoredNetwork)

	// Automations
	s.mux.HandleFunc("GET /api/automations", s.handleAPIListAutomations)
	s.mux.HandleFunc("GET /api/automations/{id}", s.handleAPIGetAutomation)
	s.mux.HandleFunc("POST /api/automations", s.handleAPICreateAutomation)
	s.mux.HandleFunc("PUT /api/automations/{id}", s.handleAPIUpdateAutomation)
	s.mux.HandleFunc("DELETE /api/automations/{id}", s.handleAPIDeleteAutomation)
	s.mux.HandleFunc("POST /api/automations/{id}/toggle", s.handleAPIToggleAutomation)
	s.mux.HandleFunc("POST /api/automations/{id}/run", s.handleAPIRunAutomation)

	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
	s.mux.HandleFunc("GET /ws", s.handleWS)
}

// ServeHTTP implements http.Handler, applying auth and CORS middleware.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// CORS: check Origin on mutating requests to prevent CSRF.
	if len(s.allowedOrigins) > 0 {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if r.Method == http.MethodOptions {
				if s.isOriginAllowed(origin) {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
					w.Header().Set("Access-Control-Max-Age", "3600")
					w.WriteHeader(http.StatusNoContent)
					return
				}
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			if r.Method != http.MethodGet {
				if !s.isOriginAllowed(origin) {
					http.Error(w, "Forbidden", http.StatusForbidden)
					return
				}
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
		}
	}

	// Browsers cannot send custom headers on a WS upgrade, so only /api/ is keyed.
	if s.apiKey != "" && strings.HasPrefix(r.URL.Path, "/api/") {
		key := r.Header.Get("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) != 1 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}
	s.mux.ServeHTTP(w, r)
}

// isOriginAllowed checks if the origin matches any allowed origin pattern.
func (s *Server) isOriginAllowed(origin string) bool {
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (s *Server) handleAPIVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"version":         s.version,
		"library_version": s.coord.LibraryVersion(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("writeJSON encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeOK(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody reads a JSON request body into v, answering 400 on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// fail maps a domain error to an HTTP status and writes it.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(op, "err", err)
		s.writeError(w, status, "internal server error")
		return
	}
	s.logger.Debug(op, "err", err, "status", status)
	s.writeError(w, status, err.Error())
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, coordinator.ErrNotConnected):
		return http.StatusServiceUnavailable
	case errors.Is(err, coordinator.ErrNodeNotFound),
		errors.Is(err, coordinator.ErrValueNotFound),
		errors.Is(err, coordinator.ErrSceneNotFound),
		errors.Is(err, ozw.ErrNodeNotFound),
		errors.Is(err, ozw.ErrValueNotFound),
		errors.Is(err, ozw.ErrSceneNotFound),
		errors.Is(err, ozw.ErrNoChangeLog),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, automation.ErrScriptNotFound):
		return http.StatusNotFound
	case errors.Is(err, coordinator.ErrAlreadyConnected),
		errors.Is(err, ozw.ErrCommandBusy),
		errors.Is(err, ozw.ErrNoCommand):
		return http.StatusConflict
	case errors.Is(err, coordinator.ErrInvalidArgument),
		errors.Is(err, ozw.ErrInvalidArgument),
		errors.Is(err, ozw.ErrTypeMismatch),
		errors.Is(err, ozw.ErrReadOnly),
		errors.Is(err, value.ErrTypeMismatch),
		errors.Is(err, value.ErrOutOfRange),
		errors.Is(err, value.ErrInvalidSelection),
		errors.Is(err, value.ErrUnsupported),
		errors.Is(err, value.ErrInvalidValueID),
		errors.Is(err, automation.ErrInvalidScriptID):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// pathByte parses a 0..255 path parameter, answering 400 on failure.
func (s *Server) pathByte(w http.ResponseWriter, r *http.Request, name string) (uint8, bool) {
	n, err := strconv.ParseUint(r.PathValue(name), 10, 8)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint8(n), true
}

// pathValueKey parses a "node-class-instance-index" path parameter.
func (s *Server) pathValueKey(w http.ResponseWriter, r *http.Request) (ozw.ValueKey, bool) {
	k, err := value.ParseValueID(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return ozw.ValueKey{}, false
	}
	return k, true
}
