package orders

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/wearkati/katicontrol/internal/platform/httpx"
	"github.com/wearkati/katicontrol/internal/shared"
)

// Handler wires HTTP endpoints for the orders module, including the
// storefront sync webhook.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	syncSecret string
}

// NewHandler constructs the orders handler. An empty syncSecret disables the
// sync endpoint.
func NewHandler(logger *slog.Logger, service *Service, syncSecret string) *Handler {
	return &Handler{logger: logger, service: service, syncSecret: syncSecret}
}

// MountRoutes registers order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Post("/sync", h.handleSync)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
	r.Get("/{id}/costs", h.handleGetCosts)
	r.Put("/{id}/costs", h.handleUpsertCosts)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, "list orders", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}
	detail, err := h.service.Get(r.Context(), orderID)
	if err != nil {
		h.respondError(w, "get order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input OrderInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	detail, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, "create order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, detail)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var input OrderInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	detail, err := h.service.Update(r.Context(), orderID, input)
	if err != nil {
		h.respondError(w, "update order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), orderID); err != nil {
		h.respondError(w, "delete order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) handleGetCosts(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}
	costs, err := h.service.GetCosts(r.Context(), orderID)
	if shared.IsNotFound(err) {
		// No record yet is a normal state for an order.
		httpx.JSON(w, http.StatusOK, struct{}{})
		return
	}
	if err != nil {
		h.respondError(w, "get order costs", err)
		return
	}
	httpx.JSON(w, http.StatusOK, costs)
}

func (h *Handler) handleUpsertCosts(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var input CostInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	costs, err := h.service.UpsertCosts(r.Context(), orderID, input)
	if err != nil {
		h.respondError(w, "upsert order costs", err)
		return
	}
	httpx.JSON(w, http.StatusOK, costs)
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	if err := h.authorizeSync(r); err != nil {
		switch {
		case errors.Is(err, shared.ErrSecretNotConfigured):
			h.logger.Error("sync secret not configured")
			httpx.Problem(w, http.StatusInternalServerError, "Sync not configured", "")
		default:
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		}
		return
	}
	var payload SyncPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	synced, err := h.service.Sync(r.Context(), payload)
	if err != nil {
		var vErr validator.ValidationErrors
		if errors.As(err, &vErr) {
			httpx.Problem(w, http.StatusBadRequest, "Invalid payload", vErr.Error())
			return
		}
		h.respondError(w, "sync orders", err)
		return
	}
	h.logger.Info("storefront sync", slog.Int("synced", synced), slog.String("order", payload.OrderID))
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "synced": synced})
}

func (h *Handler) authorizeSync(r *http.Request) error {
	if h.syncSecret == "" {
		return shared.ErrSecretNotConfigured
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == r.Header.Get("Authorization") {
		token = r.Header.Get("X-Katicontrol-Secret")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.syncSecret)) != 1 {
		return shared.ErrUnauthorized
	}
	return nil
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	filter := ListFilter{
		Status:         q.Get("status"),
		PaymentStatus:  q.Get("payment_status"),
		ExternalSource: q.Get("external_source"),
	}
	if raw := q.Get("drop_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ListFilter{}, errors.New("drop_id must be an integer")
		}
		filter.DropID = &id
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return ListFilter{}, errors.New("limit must be an integer")
		}
		filter.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return ListFilter{}, errors.New("offset must be an integer")
		}
		filter.Offset = offset
	}
	return filter, nil
}

func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid order id", "order id must be an integer")
		return 0, false
	}
	return orderID, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if shared.IsNotFound(err) {
		httpx.Problem(w, http.StatusNotFound, "Not found", "order not found")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal error", "")
}
