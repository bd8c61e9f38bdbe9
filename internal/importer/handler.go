package importer

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wearkati/katicontrol/internal/platform/httpx"
)

const maxImportBytes = 20 << 20
const maxRestoreBytes = 100 << 20

// RestorePort abstracts the restore operation for the handler.
type RestorePort interface {
	Restore(ctx context.Context, dump Dump) (Counts, error)
}

// Handler wires the spreadsheet and restore endpoints.
type Handler struct {
	logger        *slog.Logger
	service       *Service
	exporter      *Exporter
	restorer      RestorePort
	restoreSecret string
}

// NewHandler constructs the importer handler. restoreSecret may be empty, in
// which case the restore endpoint refuses to run.
func NewHandler(logger *slog.Logger, service *Service, exporter *Exporter, restorer RestorePort, restoreSecret string) *Handler {
	return &Handler{
		logger:        logger,
		service:       service,
		exporter:      exporter,
		restorer:      restorer,
		restoreSecret: restoreSecret,
	}
}

// MountRoutes registers import, export and restore routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/import", h.handleImport)
	r.Get("/export/orders", h.handleExportOrders)
	r.Get("/export/all", h.handleExportAll)
	r.Get("/export/template", h.handleExportTemplate)
	r.Post("/admin/restore-db", h.handleRestore)
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid upload", "Aucun fichier reçu")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid upload", "Aucun fichier reçu")
		return
	}
	defer file.Close()

	result, err := h.service.Import(r.Context(), file)
	if err != nil {
		h.logger.Error("import workbook", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Import failed", "")
		return
	}
	h.logger.Info("import finished",
		slog.Int("created", result.Created),
		slog.Int("row_errors", len(result.Errors)))
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleExportOrders(w http.ResponseWriter, r *http.Request) {
	setWorkbookHeaders(w, "katicontrol-commandes.xlsx")
	if err := h.exporter.WriteOrders(r.Context(), w); err != nil {
		h.logger.Error("export orders workbook", slog.Any("error", err))
	}
}

func (h *Handler) handleExportAll(w http.ResponseWriter, r *http.Request) {
	setWorkbookHeaders(w, "katicontrol-export-complet.xlsx")
	if err := h.exporter.WriteAll(r.Context(), w); err != nil {
		h.logger.Error("export full workbook", slog.Any("error", err))
	}
}

func (h *Handler) handleExportTemplate(w http.ResponseWriter, _ *http.Request) {
	setWorkbookHeaders(w, "katicontrol-modele-import.xlsx")
	if err := h.exporter.WriteTemplate(w); err != nil {
		h.logger.Error("export template workbook", slog.Any("error", err))
	}
}

func setWorkbookHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	if h.restoreSecret == "" {
		httpx.Problem(w, http.StatusInternalServerError, "Restore not configured", "")
		return
	}
	provided := r.Header.Get("X-Restore-Secret")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.restoreSecret)) != 1 {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRestoreBytes)
	var dump Dump
	if err := httpx.DecodeJSON(r, &dump); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	counts, err := h.restorer.Restore(r.Context(), dump)
	if err != nil {
		h.logger.Error("restore database", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Restore failed", "")
		return
	}
	h.logger.Info("restore finished", slog.Int("orders", counts.Orders), slog.Int("drops", counts.Drops))
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "counts": counts})
}
