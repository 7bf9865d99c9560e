package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/quickquack/internal/api/handler"
	"github.com/mcoot/quickquack/internal/api/middleware"
	"github.com/mcoot/quickquack/internal/api/response"
	"github.com/mcoot/quickquack/internal/api/sse"
	"github.com/mcoot/quickquack/internal/api/ws"
	"github.com/mcoot/quickquack/internal/services/auth"
	"github.com/mcoot/quickquack/internal/services/game"
	"github.com/mcoot/quickquack/internal/services/roster"
	"github.com/mcoot/quickquack/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	GameController *game.Controller
	RosterRelay    *roster.Relay
	Broadcaster    *sse.Broadcaster
	Storage        storage.Storage
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.AuthService, cfg.GameController)
	boardHandler := handler.NewBoardHandler(cfg.GameController)
	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.Logger)
	wsHandler := ws.NewHandler(cfg.RosterRelay, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Common(cfg.Logger)...)

	// Public routes
	api.HandleFunc("/health", healthHandler(cfg.Storage)).Methods(http.MethodGet)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/board", boardHandler.Board).Methods(http.MethodGet)
	api.HandleFunc("/avatars", boardHandler.Avatars).Methods(http.MethodGet)
	api.HandleFunc("/roster", boardHandler.Roster).Methods(http.MethodGet)

	// Roster streams; a session is optional and only tags the connection
	streams := api.PathPrefix("/roster").Subrouter()
	streams.Use(optionalAuthMiddleware)
	streams.Handle("/events", cfg.Broadcaster).Methods(http.MethodGet)
	streams.Handle("/ws", wsHandler).Methods(http.MethodGet)

	// Protected player routes
	players := api.PathPrefix("/players").Subrouter()
	players.Use(authMiddleware)
	players.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)
	players.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	players.HandleFunc("/me/prizes", playerHandler.GetMyPrizes).Methods(http.MethodGet)

	// Protected game routes
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/positions/me", gameHandler.GetPosition).Methods(http.MethodGet)
	protected.HandleFunc("/positions/me", gameHandler.SetPosition).Methods(http.MethodPut)
	protected.HandleFunc("/positions/me/avatar", gameHandler.SelectAvatar).Methods(http.MethodPost)
	protected.HandleFunc("/moves", gameHandler.Move).Methods(http.MethodPost)
	protected.HandleFunc("/prizes/claim", gameHandler.ClaimPrize).Methods(http.MethodPost)

	return r
}

func healthHandler(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := response.Health{Status: "ok", Storage: "ok"}
		if store == nil {
			health.Storage = "unknown"
		} else if err := store.Ping(r.Context()); err != nil {
			health.Status = "degraded"
			health.Storage = "unavailable"
			response.JSON(w, http.StatusServiceUnavailable, health)
			return
		}
		response.JSON(w, http.StatusOK, health)
	}
}
