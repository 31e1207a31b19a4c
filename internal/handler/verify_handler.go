package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xarrijorge/kolokwa/internal/signup"
)

// SignupServiceInterface はトークン検証ハンドラーが必要とするサービスインターフェース。
type SignupServiceInterface interface {
	// InspectToken はトークンを検査し、対応する招待の内容を返す。
	InspectToken(ctx context.Context, token string) (*signup.InspectResult, error)
	// Redeem はトークンを償還し、参加者アカウントとQRクレデンシャルを発行する。
	Redeem(ctx context.Context, token string, input signup.RedeemInput) (*signup.RedeemResult, error)
}

// VerifyHandler は招待トークンの検査・償還のHTTPハンドラー。
type VerifyHandler struct {
	service SignupServiceInterface
}

// NewVerifyHandler はVerifyHandlerを生成する。
func NewVerifyHandler(service SignupServiceInterface) *VerifyHandler {
	return &VerifyHandler{service: service}
}

// redeemRequest はトークン償還リクエストのボディ。
type redeemRequest struct {
	Password string `json:"password"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// userResponse は作成されたユーザーのAPIレスポンス。
type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// InspectToken はトークンの検査を処理する。償還フォームの事前表示に使用する。
// GET /api/verify/{token}
func (h *VerifyHandler) InspectToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	result, err := h.service.InspectToken(r.Context(), token)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"email":    result.Email,
		"event_id": result.EventID,
	})
}

// RedeemToken はトークンの償還を処理する。
// POST /api/verify/{token}
func (h *VerifyHandler) RedeemToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	result, err := h.service.Redeem(r.Context(), token, signup.RedeemInput{
		Password: req.Password,
		Name:     req.Name,
		Username: req.Username,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Registration completed",
		"user": userResponse{
			ID:       result.UserID,
			Email:    result.Email,
			Name:     result.Name,
			Username: result.Username,
		},
	})
}
