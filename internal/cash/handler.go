package cash

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wearkati/katicontrol/internal/platform/httpx"
	"github.com/wearkati/katicontrol/internal/shared"
)

// Handler wires HTTP endpoints for the cash module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the cash handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers cash routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleOverview)
	r.Post("/", h.handleCreate)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.respondError(w, "cash overview", err)
		return
	}
	httpx.JSON(w, http.StatusOK, overview)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input MovementInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	movement, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, "create cash movement", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, movement)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	transactionID, ok := h.transactionID(w, r)
	if !ok {
		return
	}
	var input MovementInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	movement, err := h.service.Update(r.Context(), transactionID, input)
	if err != nil {
		h.respondError(w, "update cash movement", err)
		return
	}
	httpx.JSON(w, http.StatusOK, movement)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	transactionID, ok := h.transactionID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), transactionID); err != nil {
		h.respondError(w, "delete cash movement", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) transactionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	transactionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid transaction id", "transaction id must be an integer")
		return 0, false
	}
	return transactionID, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if shared.IsNotFound(err) {
		httpx.Problem(w, http.StatusNotFound, "Not found", "cash movement not found")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal error", "")
}
