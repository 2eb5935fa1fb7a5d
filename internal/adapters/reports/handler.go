package reports

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"ipstudio/internal/blob"
	"ipstudio/pkg/domain"
)

// Handler serves the weekly report surface:
//
//	GET  /api/reports                   list generated weekly reports
//	POST /api/reports/export            render a report into blob storage
//	GET  /api/reports/exports           list stored exports (?persona_id=)
//	GET  /api/reports/exports/download  stream one export (?key=)
type Handler struct {
	store    domain.PersistentStore
	exporter *Exporter
}

// NewHandler constructs the report handler.
func NewHandler(store domain.PersistentStore, exporter *Exporter) *Handler {
	return &Handler{store: store, exporter: exporter}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch path {
	case "/api/reports":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleList(w, r)
	case "/api/reports/export":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleExport(w, r)
	case "/api/reports/exports":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleListExports(w, r)
	case "/api/reports/exports/download":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleDownload(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	personaID := r.URL.Query().Get("persona_id")
	all := h.store.ListWeeklyReports()
	out := make([]domain.WeeklyReport, 0, len(all))
	for _, report := range all {
		if personaID == "" || report.PersonaID == personaID {
			out = append(out, report)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": out})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReportID string `json:"report_id"`
		Format   string `json:"format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ReportID == "" {
		writeError(w, http.StatusBadRequest, "report_id is required")
		return
	}
	format, err := ParseFormat(req.Format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	info, err := h.exporter.Export(r.Context(), req.ReportID, format)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "export": info})
}

func (h *Handler) handleListExports(w http.ResponseWriter, r *http.Request) {
	infos, err := h.exporter.ListExports(r.Context(), r.URL.Query().Get("persona_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if infos == nil {
		infos = []blob.Info{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"exports": infos})
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" || !strings.HasPrefix(key, "reports/") {
		writeError(w, http.StatusBadRequest, "key must reference a report export")
		return
	}
	info, body, err := h.exporter.blobs.Get(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "export not found")
		return
	}
	defer func() { _ = body.Close() }()
	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
