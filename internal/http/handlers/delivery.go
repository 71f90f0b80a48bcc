package handlers

import (
	"net/http"

	"tripndrop/internal/logx"
)

// DeliveryHandler handles HTTP requests for delivery resources.
type DeliveryHandler struct {
	usecase deliveryUsecase
	logger  logx.Logger
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(logger logx.Logger, uc deliveryUsecase) *DeliveryHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &DeliveryHandler{usecase: uc, logger: logger}
}

// Create handles POST /api/deliveries.
// @Summary Создать заявку на доставку
// @Tags deliveries
// @Accept json
// @Produce json
// @Param request body createDeliveryRequest true "Delivery payload"
// @Success 201 {object} deliveryDTO
// @Failure 400 {object} ErrorResponse "invalid input"
// @Failure 403 {object} ErrorResponse "not a sender"
// @Router /api/deliveries [post]
func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(h.logger, w, r)
	if !ok {
		return
	}
	var req createDeliveryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	draft, err := req.toModel()
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}

	d, err := h.usecase.Create(r.Context(), actor, draft)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/api/deliveries/"+d.ID)
	writeJSON(h.logger, w, r, http.StatusCreated, deliveryToResponse(d))
}

// Get handles GET /api/deliveries/{id}.
func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(h.logger, w, r)
	if !ok {
		return
	}
	d, err := h.usecase.Get(r.Context(), actor, idFromURL(r, "id"))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(d))
}

// Mine handles GET /api/deliveries/mine.
func (h *DeliveryHandler) Mine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(h.logger, w, r)
	if !ok {
		return
	}
	list, err := h.usecase.ListBySender(r.Context(), actor)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveriesToResponse(list))
}

// Jobs handles GET /api/jobs/mine.
func (h *DeliveryHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(h.logger, w, r)
	if !ok {
		return
	}
	list, err := h.usecase.ListByTraveler(r.Context(), actor)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveriesToResponse(list))
}

// Accept handles PUT /api/deliveries/{id}/accept. The response is the only
// place a traveler ever sees the OTP.
// @Summary Принять доставку
// @Tags deliveries
// @Produce json
// @Success 200 {object} deliveryDTO
// @Failure 403 {object} ErrorResponse "not allowed"
// @Failure 404 {object} ErrorResponse "delivery not found"
// @Failure 409 {object} ErrorResponse "delivery unavailable"
// @Router /api/deliveries/{id}/accept [put]
func (h *DeliveryHandler) Accept(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(h.logger, w, r)
	if !ok {
		return
	}
	d, err := h.usecase.Accept(r.Context(), actor, idFromURL(r, "id"))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(d))
}

// Start handles PUT /api/deliveries/{id}/start.
func (h *DeliveryHandler) Start(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(h.logger, w, r)
	if !ok {
		return
	}
	d, err := h.usecase.Start(r.Context(), actor, idFromURL(r, "id"))
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(d))
}

// Complete handles PUT /api/deliveries/{id}/complete.
// @Summary Завершить доставку по OTP
// @Tags deliveries
// @Accept json
// @Produce json
// @Param request body completeDeliveryRequest true "OTP from the receiver"
// @Success 200 {object} deliveryDTO
// @Failure 400 {object} ErrorResponse "invalid otp"
// @Failure 409 {object} ErrorResponse "invalid state transition"
// @Router /api/deliveries/{id}/complete [put]
func (h *DeliveryHandler) Complete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(h.logger, w, r)
	if !ok {
		return
	}
	var req completeDeliveryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	d, err := h.usecase.Complete(r.Context(), actor, idFromURL(r, "id"), req.OTP)
	if err != nil {
		writeAppError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, deliveryToResponse(d))
}
