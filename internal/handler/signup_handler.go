package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// InviteServiceInterface は招待ハンドラーが必要とするサービスインターフェース。
type InviteServiceInterface interface {
	// IssueInvite は招待トークンを発行し、招待メールを送信する。
	IssueInvite(ctx context.Context, eventID, email string) error
}

// SignupHandler はイベント招待申し込みのHTTPハンドラー。
type SignupHandler struct {
	service InviteServiceInterface
}

// NewSignupHandler はSignupHandlerを生成する。
func NewSignupHandler(service InviteServiceInterface) *SignupHandler {
	return &SignupHandler{service: service}
}

// signupRequest は招待申し込みリクエストのボディ。
type signupRequest struct {
	Email string `json:"email"`
}

// RequestInvite は招待申し込みを処理する。
// POST /api/events/{eventId}/signup
func (h *SignupHandler) RequestInvite(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if err := h.service.IssueInvite(r.Context(), eventID, req.Email); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Invite sent successfully",
	})
}
