package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xarrijorge/kolokwa/internal/checkin"
)

// CheckinServiceInterface はチェックインハンドラーが必要とするサービスインターフェース。
type CheckinServiceInterface interface {
	// CheckIn はスキャンされたQRペイロードを検証し、参加者をチェックイン済みにする。
	CheckIn(ctx context.Context, eventID, scannedText string) (*checkin.Result, error)
}

// CheckinHandler はイベントチェックインのHTTPハンドラー。
type CheckinHandler struct {
	service CheckinServiceInterface
}

// NewCheckinHandler はCheckinHandlerを生成する。
func NewCheckinHandler(service CheckinServiceInterface) *CheckinHandler {
	return &CheckinHandler{service: service}
}

// checkinRequest はチェックインリクエストのボディ。
// QRDataはスキャナが復号したJSONペイロード文字列。
type checkinRequest struct {
	QRData string `json:"qr_data"`
}

// participantResponse はチェックイン結果の参加者情報。
type participantResponse struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// CheckIn はQRクレデンシャルによるチェックインを処理する。
// POST /api/events/{eventId}/checkin
func (h *CheckinHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	var req checkinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	result, err := h.service.CheckIn(r.Context(), eventID, req.QRData)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	message := "Check-in successful"
	if result.AlreadyCheckedIn {
		message = "Already checked in"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"participant": participantResponse{
			Name:     result.Name,
			Email:    result.Email,
			Username: result.Username,
		},
	})
}
