package handler

import (
	"net/http"

	"github.com/mcoot/quickquack/internal/api/response"
	"github.com/mcoot/quickquack/internal/services/game"
)

// BoardHandler serves the static board and avatar tables and the roster
type BoardHandler struct {
	gameController *game.Controller
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(gameController *game.Controller) *BoardHandler {
	return &BoardHandler{gameController: gameController}
}

// Board handles GET /api/v1/board
func (h *BoardHandler) Board(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.BoardFromModel(h.gameController.Board()))
}

// Avatars handles GET /api/v1/avatars
func (h *BoardHandler) Avatars(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.AvatarListFromModel(h.gameController.Avatars()))
}

// Roster handles GET /api/v1/roster
func (h *BoardHandler) Roster(w http.ResponseWriter, r *http.Request) {
	roster, err := h.gameController.ListRoster(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RosterFromModel(roster))
}
