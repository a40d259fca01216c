package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dwalters/cardroom/internal/services/auth"
	"github.com/dwalters/cardroom/internal/services/registry"
	"github.com/dwalters/cardroom/internal/session"
	"github.com/dwalters/cardroom/internal/storage"
	"github.com/dwalters/cardroom/internal/web/handler"
	"github.com/dwalters/cardroom/internal/web/middleware"
	"github.com/dwalters/cardroom/internal/ws"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger   *slog.Logger
	Sessions session.Store
	Auth     *auth.Service
	Registry *registry.Service
	Storage  storage.Storage
	Gateway  *ws.Gateway
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	sessionMiddleware := middleware.Session(cfg.Sessions, cfg.Logger)

	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	homeHandler := handler.NewHomeHandler(cfg.Registry, cfg.Storage, cfg.Logger)
	authHandler := handler.NewAuthHandler(cfg.Auth, cfg.Logger)
	roomHandler := handler.NewRoomHandler()
	apiHandler := handler.NewAPIHandler(cfg.Registry, cfg.Storage, cfg.Logger)

	// JSON endpoints used by the CLI
	r.HandleFunc("/healthz", apiHandler.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/rooms", apiHandler.Rooms).Methods(http.MethodGet)

	// The socket gateway resolves its own session cookie and rejects
	// unauthenticated upgrades, so it sits outside the session middleware.
	r.HandleFunc("/ws", cfg.Gateway.ServeWS).Methods(http.MethodGet)

	// Browser routes, each with a session resolved or created
	pages := r.NewRoute().Subrouter()
	pages.Use(sessionMiddleware)
	pages.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	pages.HandleFunc("/", authHandler.Login).Methods(http.MethodPost)
	pages.HandleFunc("/room/{name}", roomHandler.View).Methods(http.MethodGet)

	return r
}
