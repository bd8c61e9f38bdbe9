package drops

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wearkati/katicontrol/internal/platform/httpx"
	"github.com/wearkati/katicontrol/internal/shared"
)

// Handler wires HTTP endpoints for the drops module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the drops handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers drop routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
	r.Post("/", h.handleCreate)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, "list drops", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	dropID, ok := h.dropID(w, r)
	if !ok {
		return
	}
	detail, err := h.service.Get(r.Context(), dropID)
	if err != nil {
		h.respondError(w, "get drop", err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input DropInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	drop, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, "create drop", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, drop)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	dropID, ok := h.dropID(w, r)
	if !ok {
		return
	}
	var input DropInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	drop, err := h.service.Update(r.Context(), dropID, input)
	if err != nil {
		h.respondError(w, "update drop", err)
		return
	}
	httpx.JSON(w, http.StatusOK, drop)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	dropID, ok := h.dropID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), dropID); err != nil {
		h.respondError(w, "delete drop", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) dropID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	dropID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid drop id", "drop id must be an integer")
		return 0, false
	}
	return dropID, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if shared.IsNotFound(err) {
		httpx.Problem(w, http.StatusNotFound, "Not found", "drop not found")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal error", "")
}
