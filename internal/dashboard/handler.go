package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wearkati/katicontrol/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the dashboard reports.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the dashboard handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/morning", h.handleMorning)
	r.Get("/profitability", h.handleProfitability)
	r.Get("/sales", h.handleSales)
	r.Get("/alerts", h.handleAlerts)
	r.Get("/recommendations", h.handleRecommendations)
}

func (h *Handler) handleMorning(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.Morning(r.Context())
	if err != nil {
		h.respondError(w, "morning board", err)
		return
	}
	httpx.JSON(w, http.StatusOK, board)
}

func (h *Handler) handleProfitability(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Profitability(r.Context())
	if err != nil {
		h.respondError(w, "profitability report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleSales(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Sales(r.Context())
	if err != nil {
		h.respondError(w, "sales report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.Alerts(r.Context())
	if err != nil {
		h.respondError(w, "alerts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, alerts)
}

func (h *Handler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.Recommendations(r.Context())
	if err != nil {
		h.respondError(w, "recommendations", err)
		return
	}
	httpx.JSON(w, http.StatusOK, recs)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal error", "")
}
