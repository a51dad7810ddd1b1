// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services take repository interfaces (not *sqlite.DB), accept primitives
// and context.Context, and return domain errors from the apperror package.
// Nothing in this package knows about HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yutosuda/url-shortener/internal/apperror"
	"github.com/yutosuda/url-shortener/internal/model"
	"github.com/yutosuda/url-shortener/internal/repository"
)

// Pagination limits for URL listing. The clamp is enforced here so every
// caller gets it, whatever transport they arrive by.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	TopURLCount      = 5
)

// Visit carries the request metadata recorded with a redirect.
// All fields are optional; empty strings are stored as-is.
type Visit struct {
	UserAgent string
	IPAddress string
	Referrer  string
}

// Stats is the aggregate returned by the /stats endpoint.
type Stats struct {
	TotalURLs   int64
	TotalClicks int64
	TopURLs     []model.ShortURL
}

// URLService handles the short-URL business rules: what may be shortened,
// how listings paginate, and how redirects record their clicks.
type URLService struct {
	urls   repository.URLRepository
	clicks repository.ClickRepository
	logger *slog.Logger
}

// NewURLService creates a URLService. The caller decides which repository
// implementation to inject (SQLite in production, fakes in tests).
func NewURLService(urls repository.URLRepository, clicks repository.ClickRepository, logger *slog.Logger) *URLService {
	return &URLService{
		urls:   urls,
		clicks: clicks,
		logger: logger,
	}
}

// Create validates originalURL and persists a new ShortURL with a freshly
// allocated code. Fails with a validation error for malformed or unsafe
// URLs — nothing is persisted in that case.
func (s *URLService) Create(ctx context.Context, originalURL string) (*model.ShortURL, error) {
	if err := validateOriginalURL(originalURL); err != nil {
		s.logger.Warn("rejected URL",
			slog.String("original_url", originalURL),
			slog.String("reason", err.Error()),
		)
		return nil, err
	}

	u := &model.ShortURL{OriginalURL: originalURL}
	if err := s.urls.Create(ctx, u); err != nil {
		s.logger.Error("failed to create URL",
			slog.String("original_url", originalURL),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating URL: %w", err)
	}

	s.logger.Info("URL created",
		slog.Int64("id", u.ID),
		slog.String("short_code", u.ShortCode),
	)
	return u, nil
}

// GetByCode returns the URL for a short code, or a not-found error.
func (s *URLService) GetByCode(ctx context.Context, code string) (*model.ShortURL, error) {
	return s.urls.GetByCode(ctx, code)
}

// List returns a page of URLs (newest first) and the total count.
// limit defaults to DefaultListLimit and is clamped to MaxListLimit;
// a negative offset is treated as 0.
func (s *URLService) List(ctx context.Context, limit, offset int) ([]model.ShortURL, int64, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	urls, total, err := s.urls.List(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list URLs", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("listing URLs: %w", err)
	}
	return urls, total, nil
}

// Delete removes a URL and its click history as one unit.
// Returns a not-found error when the id doesn't exist.
func (s *URLService) Delete(ctx context.Context, id int64) error {
	found, err := s.urls.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete URL",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting URL: %w", err)
	}
	if !found {
		return apperror.NotFound("short URL", id)
	}

	s.logger.Info("URL deleted", slog.Int64("id", id))
	return nil
}

// Clicks returns the click history for a URL, newest first.
// The URL is looked up first so an unknown id yields not-found rather than
// an empty list.
func (s *URLService) Clicks(ctx context.Context, urlID int64) ([]model.Click, error) {
	if _, err := s.urls.GetByID(ctx, urlID); err != nil {
		return nil, err
	}

	clicks, err := s.clicks.ListByURL(ctx, urlID, repository.ListOptions{Limit: MaxListLimit})
	if err != nil {
		s.logger.Error("failed to list clicks",
			slog.Int64("url_id", urlID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing clicks: %w", err)
	}
	return clicks, nil
}

// Stats aggregates totals and the top URLs by click count.
func (s *URLService) Stats(ctx context.Context) (*Stats, error) {
	_, totalURLs, err := s.urls.List(ctx, repository.ListOptions{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("counting URLs: %w", err)
	}

	totalClicks, err := s.clicks.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting clicks: %w", err)
	}

	top, err := s.urls.Top(ctx, TopURLCount)
	if err != nil {
		return nil, fmt.Errorf("querying top URLs: %w", err)
	}

	return &Stats{
		TotalURLs:   totalURLs,
		TotalClicks: totalClicks,
		TopURLs:     top,
	}, nil
}

// Redirect resolves a short code and records the visit.
//
// CLICK TRACKING IS BEST-EFFORT RELATIVE TO THE REDIRECT:
// Once the URL resolves, the visitor gets their redirect even if recording
// fails — a broken analytics pipeline must not take the primary function
// down. The failure is logged loudly rather than swallowed; the insert and
// the counter increment themselves stay atomic inside the repository, so a
// committed redirect never has a half-recorded click.
func (s *URLService) Redirect(ctx context.Context, code string, visit Visit) (*model.ShortURL, error) {
	u, err := s.urls.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	click := &model.Click{
		URLID:     u.ID,
		UserAgent: visit.UserAgent,
		IPAddress: visit.IPAddress,
		Referrer:  visit.Referrer,
	}
	if err := s.clicks.Record(ctx, click); err != nil {
		s.logger.Error("failed to record click",
			slog.Int64("url_id", u.ID),
			slog.String("short_code", code),
			slog.String("error", err.Error()),
		)
		return u, nil
	}

	s.logger.Info("click recorded",
		slog.Int64("url_id", u.ID),
		slog.String("short_code", code),
	)
	return u, nil
}
