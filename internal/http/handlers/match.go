package handlers

import (
	"net/http"

	"tripndrop/internal/logx"
)

// MatchHandler serves traveler match queries.
type MatchHandler struct {
	usecase matchUsecase
	logger  logx.Logger
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(logger logx.Logger, uc matchUsecase) *MatchHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &MatchHandler{usecase: uc, logger: logger}
}

// Find handles POST /api/matches.
// @Summary Найти доставки по пути
// @Tags matches
// @Accept json
// @Produce json
// @Param request body matchRequest true "Journey"
// @Success 200 {object} matchResponse
// @Failure 400 {object} ErrorResponse "invalid input"
// @Router /api/matches [post]
func (h *MatchHandler) Find(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(h.logger, w, r)
	if !ok {
		return
	}
	var req matchRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	q, err := req.toModel()
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	q.TravelerID = actor.ID

	list, err := h.usecase.FindMatches(r.Context(), q)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, matchesToResponse(list))
}

// Journeys handles GET /api/journeys/mine.
// @Summary Мои поездки
// @Tags matches
// @Produce json
// @Success 200 {array} journeyDTO
// @Router /api/journeys/mine [get]
func (h *MatchHandler) Journeys(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(h.logger, w, r)
	if !ok {
		return
	}
	list, err := h.usecase.History(r.Context(), actor)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, journeysToResponse(list))
}
