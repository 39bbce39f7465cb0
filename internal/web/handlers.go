package web

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/ladlekit/ladle/internal/errors"
	"github.com/ladlekit/ladle/internal/history"
	"github.com/ladlekit/ladle/internal/pipeline"
	"github.com/ladlekit/ladle/internal/source"
	"github.com/ladlekit/ladle/internal/vault"
)

// maxRequestBytes bounds the request body so a runaway client cannot
// exhaust memory. Recipe payloads are at most a few KB of text.
const maxRequestBytes = 1 << 20

// Handlers contains HTTP route handlers for the JSON API.
type Handlers struct {
	pipeline *pipeline.Pipeline
	store    *history.Store
	version  string
	logger   *log.Logger
}

// ingestRequest is the body of POST /api/v1/recipes.
type ingestRequest struct {
	Input     string `json:"input"`
	Format    string `json:"format,omitempty"`
	Overwrite string `json:"overwrite,omitempty"`
	Preview   bool   `json:"preview,omitempty"`
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details,omitempty"`
	} `json:"error"`
}

// HandleIngest handles POST /api/v1/recipes.
func (h *Handlers) HandleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.NewInvalidRequest("request body must be valid JSON"))
		return
	}

	format, err := parseFormat(req.Format)
	if err != nil {
		h.writeError(w, err)
		return
	}
	policy, err := vault.ParsePolicy(req.Overwrite)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.pipeline.Ingest(r.Context(), pipeline.IngestInput{
		Input:     req.Input,
		Format:    format,
		Overwrite: policy,
		Preview:   req.Preview,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	status := http.StatusCreated
	if req.Preview || !result.Created {
		status = http.StatusOK
	}
	h.writeJSON(w, status, result)
}

// HandleHistory handles GET /api/v1/history.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.writeError(w, errors.NewInvalidRequest("history is not enabled"))
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.writeError(w, errors.NewInvalidRequest("limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.writeError(w, errors.NewInternal(err))
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// HandleHealth handles GET /api/v1/health. It checks the vault root and
// the extraction backend; any failing check degrades the response to 503
// with the failure detail per check.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks, healthy := h.pipeline.Health(r.Context())

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}
	h.writeJSON(w, status, map[string]any{
		"status":  overall,
		"version": h.version,
		"checks":  checks,
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "err", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := errors.StatusOf(err)
	if status >= 500 {
		h.logger.Error("request failed", "err", err)
	}

	var resp errorResponse
	resp.Error.Code = string(errors.CodeOf(err))
	resp.Error.Message = err.Error()
	var lerr *errors.LadleError
	if stderrors.As(err, &lerr) {
		resp.Error.Message = lerr.Message
		resp.Error.Details = lerr.Details
	}
	h.writeJSON(w, status, resp)
}

func parseFormat(s string) (source.Format, error) {
	switch source.Format(s) {
	case "":
		return source.FormatAuto, nil
	case source.FormatText, source.FormatInstagram, source.FormatAuto:
		return source.Format(s), nil
	default:
		return "", errors.NewInvalidRequest("format must be one of: text, instagram, auto")
	}
}
