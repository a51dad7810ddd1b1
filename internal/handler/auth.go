package handler

import (
	"log/slog"
	"net/http"

	"github.com/yutosuda/url-shortener/internal/apperror"
	"github.com/yutosuda/url-shortener/internal/auth"
	"github.com/yutosuda/url-shortener/internal/service"
)

// AuthHandler serves login and the current-user endpoint.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
	debug  bool
}

func NewAuthHandler(svc *service.AuthService, logger *slog.Logger, debug bool) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger, debug: debug}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// HandleLogin exchanges email + password for a bearer token.
//
// POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperror.ValidationFailed("body", "invalid JSON request body"), h.debug)
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err, h.debug)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		User:        newUserResponse(result.User),
	})
}

// HandleMe returns the authenticated user. The auth middleware has already
// resolved the token, so a missing context user means the route was wired
// without RequireAuth — treat it as an auth failure rather than panic.
//
// GET /auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.AuthenticationFailed("valid authentication required"), h.debug)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}
