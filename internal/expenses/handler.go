package expenses

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wearkati/katicontrol/internal/platform/httpx"
	"github.com/wearkati/katicontrol/internal/shared"
)

// Handler wires HTTP endpoints for the expenses module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the expenses handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers expense routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
	r.Post("/", h.handleCreate)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Category: r.URL.Query().Get("category")}
	if raw := r.URL.Query().Get("drop_id"); raw != "" {
		dropID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid filter", "drop_id must be an integer")
			return
		}
		filter.DropID = &dropID
	}
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, "list expenses", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	expenseID, ok := h.expenseID(w, r)
	if !ok {
		return
	}
	expense, err := h.service.Get(r.Context(), expenseID)
	if err != nil {
		h.respondError(w, "get expense", err)
		return
	}
	httpx.JSON(w, http.StatusOK, expense)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input ExpenseInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	expense, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, "create expense", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, expense)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	expenseID, ok := h.expenseID(w, r)
	if !ok {
		return
	}
	var input ExpenseInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	expense, err := h.service.Update(r.Context(), expenseID, input)
	if err != nil {
		h.respondError(w, "update expense", err)
		return
	}
	httpx.JSON(w, http.StatusOK, expense)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	expenseID, ok := h.expenseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), expenseID); err != nil {
		h.respondError(w, "delete expense", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) expenseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	expenseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid expense id", "expense id must be an integer")
		return 0, false
	}
	return expenseID, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if shared.IsNotFound(err) {
		httpx.Problem(w, http.StatusNotFound, "Not found", "expense not found")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal error", "")
}
