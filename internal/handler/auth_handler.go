package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xarrijorge/kolokwa/internal/auth"
	"github.com/xarrijorge/kolokwa/internal/middleware"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// LoginStaff はスタッフアカウントのパスワード認証を行う。
	LoginStaff(ctx context.Context, email, password string) (*auth.LoginResult, error)
	// LoginParticipant は参加者アカウントのパスワード認証を行う。
	LoginParticipant(ctx context.Context, email, password string) (*auth.LoginResult, error)
	// VerifyToken はJWTを検証し、クレームを返す。
	VerifyToken(tokenString string) (*auth.Claims, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieSecure bool
	CookieMaxAge int // 認証Cookieの有効期間（秒）
}

// AuthHandler はパスワード認証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginStaff はスタッフログインを処理する。
// POST /api/auth
func (h *AuthHandler) LoginStaff(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	result, err := h.service.LoginStaff(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setAuthCookie(w, result.Token)

	writeJSON(w, http.StatusOK, map[string]any{
		"user": map[string]string{
			"id":    result.UserID,
			"email": result.Email,
			"role":  result.Role,
		},
	})
}

// LoginParticipant は参加者ログインを処理する。
// POST /api/auth/participant
func (h *AuthHandler) LoginParticipant(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	result, err := h.service.LoginParticipant(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setAuthCookie(w, result.Token)

	writeJSON(w, http.StatusOK, map[string]any{
		"user": map[string]string{
			"id":       result.UserID,
			"email":    result.Email,
			"name":     result.Name,
			"username": result.Username,
			"role":     result.Role,
		},
	})
}

// Me は現在のログイン状態を返す。未認証の場合は{user: null}を返す。
// GET /api/auth
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.AuthCookieName)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}

	claims, err := h.service.VerifyToken(cookie.Value)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": map[string]string{
			"id":    claims.Subject,
			"email": claims.Email,
			"role":  claims.Role,
		},
	})
}

// Logout は認証Cookieをクリアする。
// DELETE /api/auth
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out",
	})
}

// setAuthCookie は認証トークンをHTTP Only Cookieとして設定する。
func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   h.config.CookieMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
