package scriptgen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"ipstudio/internal/core"
	"ipstudio/pkg/domain"
)

// Generator is the outbound dependency of the handler. *Client satisfies it.
type Generator interface {
	GenerateScript(ctx context.Context, req Request) (domain.Script, error)
}

// Handler serves POST /api/ai/generate-script, proxying a single
// chat-completion call and returning the parsed script.
type Handler struct {
	gen    Generator
	apiKey string
	logger core.Logger
}

// NewHandler constructs the script generation handler. logger may be nil.
func NewHandler(gen Generator, apiKey string, logger core.Logger) *Handler {
	return &Handler{gen: gen, apiKey: apiKey, logger: logger}
}

// placeholder values shipped in sample env files are treated as unset.
func apiKeyConfigured(key string) bool {
	switch strings.TrimSpace(key) {
	case "", "your-api-key-here", "sk-xxx":
		return false
	}
	return true
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch path {
	case "/api/ai/generate-script":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleGenerate(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-ID", requestID)

	if !apiKeyConfigured(h.apiKey) {
		h.logError(requestID, "ai api key not configured", nil)
		writeError(w, http.StatusInternalServerError, "AI service is not configured")
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Platform == "" {
		writeError(w, http.StatusBadRequest, "platform is required")
		return
	}

	script, err := h.gen.GenerateScript(r.Context(), req)
	if err != nil {
		var upstream *UpstreamError
		switch {
		case errors.As(err, &upstream):
			h.logError(requestID, "upstream rejected script request", err)
			writeError(w, upstream.Status, "AI service request failed")
		case errors.Is(err, ErrEmptyReply):
			h.logError(requestID, "upstream returned empty reply", err)
			writeError(w, http.StatusInternalServerError, "AI service returned an empty reply")
		case errors.Is(err, ErrParse):
			h.logError(requestID, "upstream reply was not parseable", err)
			writeError(w, http.StatusInternalServerError, "AI reply could not be parsed")
		default:
			h.logError(requestID, "script generation failed", err)
			writeError(w, http.StatusInternalServerError, "script generation failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"script":  script,
	})
}

func (h *Handler) logError(requestID, msg string, err error) {
	if h.logger == nil {
		return
	}
	args := []any{"request_id", requestID}
	if err != nil {
		args = append(args, "error", err.Error())
	}
	h.logger.Error(msg, args...)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
