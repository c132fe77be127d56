package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vdsasi/NoteSharingApp/internal/config"
	"github.com/vdsasi/NoteSharingApp/internal/domain"
	"github.com/vdsasi/NoteSharingApp/internal/middleware"
	"github.com/vdsasi/NoteSharingApp/internal/service"
	"github.com/vdsasi/NoteSharingApp/pkg/response"

	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	authService *service.AuthService
	sessionCfg  config.SessionConfig
	validate    *validator.Validate
}

func NewAuthHandler(authService *service.AuthService, sessionCfg config.SessionConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessionCfg:  sessionCfg,
		validate:    validator.New(),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.authService.Register(&req); err != nil {
		writeDomainError(w, err)
		return
	}

	response.Created(w, map[string]string{
		"message": "User registered successfully. Please login.",
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	loginResp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionCfg.CookieName,
		Value:    loginResp.SessionID,
		Path:     "/",
		MaxAge:   int(h.sessionCfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.sessionCfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	response.Success(w, loginResp.User)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.sessionCfg.CookieName); err == nil && cookie.Value != "" {
		h.authService.Logout(r.Context(), cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionCfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.sessionCfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	response.Success(w, map[string]string{"message": "Logged out successfully"})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.authService.ChangePassword(middleware.GetUserID(r), &req); err != nil {
		writeDomainError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Password changed successfully"})
}
