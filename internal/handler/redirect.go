package handler

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yutosuda/url-shortener/internal/apperror"
	"github.com/yutosuda/url-shortener/internal/repository"
	"github.com/yutosuda/url-shortener/internal/service"
	"github.com/yutosuda/url-shortener/internal/shortcode"
)

// RedirectHandler serves the public short-link redirect and the health check.
type RedirectHandler struct {
	svc    *service.URLService
	db     repository.Pinger
	logger *slog.Logger
	debug  bool
}

func NewRedirectHandler(svc *service.URLService, db repository.Pinger, logger *slog.Logger, debug bool) *RedirectHandler {
	return &RedirectHandler{svc: svc, db: db, logger: logger, debug: debug}
}

// HandleRedirect resolves a short code and 302s to the original URL.
//
// GET /r/{short_code}
//
// This is the hot path and the only unauthenticated lookup, so the code is
// shape-checked before touching the database: crawlers probing random paths
// get their 404 without a query.
//
// 302 rather than 301: a permanent redirect would let browsers cache the
// hop and skip the server entirely, silently breaking click counting.
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "short_code")
	if !shortcode.ValidCode(code) {
		writeError(w, h.logger, apperror.NotFoundByKey("URL", code), h.debug)
		return
	}

	u, err := h.svc.Redirect(r.Context(), code, service.Visit{
		UserAgent: r.UserAgent(),
		IPAddress: clientIP(r),
		Referrer:  r.Referer(),
	})
	if err != nil {
		writeError(w, h.logger, err, h.debug)
		return
	}

	http.Redirect(w, r, u.OriginalURL, http.StatusFound)
}

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// HandleHealth reports liveness of the process and its database.
//
// GET /health
//
// Returns 503 when the database cannot be reached so load balancers stop
// routing to an instance that would fail every real request anyway.
func (h *RedirectHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "healthy",
		Database:  "connected",
		Timestamp: formatTime(time.Now().UTC()),
	}
	status := http.StatusOK

	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", slog.String("error", err.Error()))
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}

// clientIP returns the request's client address without the port. The
// RealIP middleware already resolved X-Forwarded-For into RemoteAddr where
// present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr had no port (already a bare IP).
		return r.RemoteAddr
	}
	return host
}
