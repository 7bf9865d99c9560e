package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/quickquack/internal/api/middleware"
	"github.com/mcoot/quickquack/internal/api/request"
	"github.com/mcoot/quickquack/internal/api/response"
	"github.com/mcoot/quickquack/internal/services/game"
)

// GameHandler handles position, move and prize endpoints for the current player
type GameHandler struct {
	gameController *game.Controller
	logger         *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameController *game.Controller, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		gameController: gameController,
		logger:         logger,
	}
}

// GetPosition handles GET /api/v1/positions/me
func (h *GameHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	pos, err := h.gameController.GetPosition(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PositionFromModel(pos, h.gameController.Avatars()))
}

// SetPosition handles PUT /api/v1/positions/me
func (h *GameHandler) SetPosition(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.SetPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.AvatarID == nil {
		WriteError(w, NewInvalidRequestError("avatar_id is required"))
		return
	}

	pos, err := h.gameController.SetPosition(r.Context(), player.ID, *req.AvatarID, req.SpaceID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PositionFromModel(pos, h.gameController.Avatars()))
}

// SelectAvatar handles POST /api/v1/positions/me/avatar
func (h *GameHandler) SelectAvatar(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.SelectAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.AvatarID == nil {
		WriteError(w, NewInvalidRequestError("avatar_id is required"))
		return
	}

	pos, err := h.gameController.SelectAvatar(r.Context(), player.ID, *req.AvatarID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PositionFromModel(pos, h.gameController.Avatars()))
}

// Move handles POST /api/v1/moves
func (h *GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	// An empty body means the server rolls
	var req request.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	var roll int
	if req.Roll != nil {
		roll = *req.Roll
	} else {
		roll = h.gameController.RollDie()
	}

	outcome, err := h.gameController.Move(r.Context(), player.ID, roll)
	if outcome == nil {
		WriteError(w, err)
		return
	}
	if err != nil {
		h.logger.Warn("move resolved with failed writes",
			slog.String("player_id", string(player.ID)),
			slog.Int("to", outcome.Move.To),
			slog.String("error", err.Error()),
		)
	}

	response.JSON(w, http.StatusOK, response.MoveResultFromOutcome(outcome, h.gameController.Avatars()))
}

// ClaimPrize handles POST /api/v1/prizes/claim
func (h *GameHandler) ClaimPrize(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.ClaimPrizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	status, err := h.gameController.ClaimPrize(r.Context(), player.ID, req.SpaceID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ClaimResult{SpaceID: req.SpaceID, Award: string(status)})
}
