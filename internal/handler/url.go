package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yutosuda/url-shortener/internal/apperror"
	"github.com/yutosuda/url-shortener/internal/service"
)

// URLHandler serves the authenticated URL-management endpoints.
type URLHandler struct {
	svc     *service.URLService
	baseURL string
	logger  *slog.Logger
	debug   bool
}

func NewURLHandler(svc *service.URLService, baseURL string, logger *slog.Logger, debug bool) *URLHandler {
	return &URLHandler{svc: svc, baseURL: baseURL, logger: logger, debug: debug}
}

type createURLRequest struct {
	OriginalURL string `json:"original_url"`
}

// HandleCreate shortens a URL.
//
// POST /urls
func (h *URLHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperror.ValidationFailed("body", "invalid JSON request body"), h.debug)
		return
	}

	u, err := h.svc.Create(r.Context(), req.OriginalURL)
	if err != nil {
		writeError(w, h.logger, err, h.debug)
		return
	}

	writeJSON(w, http.StatusCreated, newURLResponse(*u, h.baseURL))
}

type urlListResponse struct {
	URLs  []URLResponse `json:"urls"`
	Total int64         `json:"total"`
}

// HandleList returns a page of URLs, newest first.
//
// GET /urls?skip=0&limit=20
//
// Malformed or negative paging values fall back to defaults instead of
// erroring — paging is navigation, not input worth a 400.
func (h *URLHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", service.DefaultListLimit)

	urls, total, err := h.svc.List(r.Context(), limit, skip)
	if err != nil {
		writeError(w, h.logger, err, h.debug)
		return
	}

	writeJSON(w, http.StatusOK, urlListResponse{
		URLs:  newURLResponses(urls, h.baseURL),
		Total: total,
	})
}

// HandleDelete removes a URL and its click history.
//
// DELETE /urls/{id}
func (h *URLHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err, h.debug)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err, h.debug)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type clickListResponse struct {
	Clicks []ClickResponse `json:"clicks"`
}

// HandleClicks returns the click history for one URL, newest first.
//
// GET /urls/{id}/clicks
func (h *URLHandler) HandleClicks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.logger, err, h.debug)
		return
	}

	clicks, err := h.svc.Clicks(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err, h.debug)
		return
	}

	writeJSON(w, http.StatusOK, clickListResponse{Clicks: newClickResponses(clicks)})
}

type statsResponse struct {
	TotalURLs   int64         `json:"total_urls"`
	TotalClicks int64         `json:"total_clicks"`
	TopURLs     []URLResponse `json:"top_urls"`
}

// HandleStats returns aggregate counts and the most-clicked URLs.
//
// GET /stats
func (h *URLHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, h.logger, err, h.debug)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		TotalURLs:   stats.TotalURLs,
		TotalClicks: stats.TotalClicks,
		TopURLs:     newURLResponses(stats.TopURLs, h.baseURL),
	})
}

// pathID parses the {id} route parameter. A non-numeric id cannot match
// any row, so it reads as 404 rather than 400 — the resource "abc" simply
// does not exist.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.NotFoundByKey("URL", raw)
	}
	return id, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
