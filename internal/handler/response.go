package handler

// RESPONSE HELPERS:
// These functions standardise how handlers send JSON and map domain errors
// to HTTP. Every error response has the same envelope:
//
//	{"error":{"id":"...","code":"NOT_FOUND_ERROR","message":"...","status":404}}
//
// The id is unique per occurrence and is also written to the server log, so
// a user-reported error can be matched to its log line. The details field
// (wrapped driver errors, field names) only appears when the process runs
// in debug mode — production responses stay opaque.

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/xid"

	"github.com/yutosuda/url-shortener/internal/apperror"
	"github.com/yutosuda/url-shortener/internal/model"
)

// json is a drop-in replacement for encoding/json. jsoniter decodes the
// click-history and listing payloads measurably faster and behaves
// identically for the types used here.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jst is the fixed display timezone for every timestamp in a JSON
// response. Storage is UTC; the service presents Japan time.
//
// time.FixedZone instead of time.LoadLocation("Asia/Tokyo"): JST has no
// daylight saving, so the fixed offset is exact and works on hosts without
// a tzdata directory.
var jst = time.FixedZone("JST", 9*60*60)

// formatTime renders a stored UTC timestamp as ISO-8601 with the JST offset.
func formatTime(t time.Time) string {
	return t.In(jst).Format(time.RFC3339)
}

// ErrorBody is the inner object of the error envelope.
type ErrorBody struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status must be set BEFORE the body: once Encode writes, the
// headers are on the wire and any later change is silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent — all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and sends the envelope.
//
// The service layer returns apperror sentinels; this is the single place
// they become status codes. errors.Is walks the whole wrapped chain, so
// services are free to add context with fmt.Errorf("...: %w", err).
//
// Unknown errors become an opaque 500 with a DATABASE_ERROR-shaped body:
// raw error text can contain SQL fragments or file paths and never reaches
// a production client. The full error is always logged server-side, keyed
// by the same error id the client sees.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error, debug bool) {
	errID := "err_" + xid.New().String()

	status := http.StatusInternalServerError
	body := ErrorBody{
		ID:      errID,
		Code:    "DATABASE_ERROR",
		Message: "an internal error occurred",
		Status:  status,
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrAuthentication):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrAuthorization):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		case errors.Is(err, apperror.ErrDatabase):
			status = http.StatusInternalServerError
		}

		body.Code = appErr.Code
		body.Message = appErr.Message
		body.Status = status
		if debug && appErr.Details != "" {
			body.Details = appErr.Details
		}
	} else if debug {
		body.Details = err.Error()
	}

	logFn := logger.Warn
	if status >= 500 {
		logFn = logger.Error
	}
	logFn("request failed",
		slog.String("error_id", errID),
		slog.String("code", body.Code),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	)

	writeJSON(w, status, ErrorResponse{Error: body})
}

// ===== Response DTOs =====
//
// Model structs store UTC time.Time values; the wire format wants JST
// strings and, for URLs, the assembled short link. These DTOs are that
// translation — they exist only at the HTTP boundary.

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: formatTime(u.CreatedAt),
	}
}

// URLResponse is the public view of a ShortURL, including the full
// clickable short link.
type URLResponse struct {
	ID          int64  `json:"id"`
	OriginalURL string `json:"original_url"`
	ShortCode   string `json:"short_code"`
	ClickCount  int64  `json:"click_count"`
	CreatedAt   string `json:"created_at"`
	ShortURL    string `json:"short_url"`
}

func newURLResponse(u model.ShortURL, baseURL string) URLResponse {
	return URLResponse{
		ID:          u.ID,
		OriginalURL: u.OriginalURL,
		ShortCode:   u.ShortCode,
		ClickCount:  u.ClickCount,
		CreatedAt:   formatTime(u.CreatedAt),
		ShortURL:    baseURL + "/r/" + u.ShortCode,
	}
}

func newURLResponses(urls []model.ShortURL, baseURL string) []URLResponse {
	out := make([]URLResponse, 0, len(urls))
	for _, u := range urls {
		out = append(out, newURLResponse(u, baseURL))
	}
	return out
}

// ClickResponse is the public view of one click record.
type ClickResponse struct {
	ID        int64  `json:"id"`
	URLID     int64  `json:"url_id"`
	ClickedAt string `json:"clicked_at"`
	UserAgent string `json:"user_agent,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
}

func newClickResponses(clicks []model.Click) []ClickResponse {
	out := make([]ClickResponse, 0, len(clicks))
	for _, c := range clicks {
		out = append(out, ClickResponse{
			ID:        c.ID,
			URLID:     c.URLID,
			ClickedAt: formatTime(c.ClickedAt),
			UserAgent: c.UserAgent,
			IPAddress: c.IPAddress,
			Referrer:  c.Referrer,
		})
	}
	return out
}
