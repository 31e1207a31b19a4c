package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xarrijorge/kolokwa/internal/model"
)

// ParticipantListerInterface は参加者一覧ハンドラーが必要とするインターフェース。
// repository.ParticipantRepositoryの部分集合として定義する。
type ParticipantListerInterface interface {
	// ListByEvent はイベントの出席レコードをユーザー情報付きで返す。
	ListByEvent(ctx context.Context, eventID string) ([]*model.ParticipantWithUser, error)
}

// ParticipantHandler は参加者一覧のHTTPハンドラー。受付デスク向け。
type ParticipantHandler struct {
	lister ParticipantListerInterface
}

// NewParticipantHandler はParticipantHandlerを生成する。
func NewParticipantHandler(lister ParticipantListerInterface) *ParticipantHandler {
	return &ParticipantHandler{lister: lister}
}

// participantListItem は参加者一覧のAPIレスポンス要素。
type participantListItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Status      string `json:"status"`
	CheckedInAt string `json:"checked_in_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// ListParticipants はイベントの参加者一覧を返す。
// GET /api/events/{eventId}/participants
func (h *ParticipantHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	participants, err := h.lister.ListByEvent(r.Context(), eventID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]participantListItem, 0, len(participants))
	for _, p := range participants {
		item := participantListItem{
			ID:        p.ID,
			Name:      p.Name,
			Email:     p.Email,
			Username:  p.Username,
			Status:    string(p.Status),
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		}
		if p.CheckedInAt != nil {
			item.CheckedInAt = p.CheckedInAt.Format(time.RFC3339)
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"participants": items,
	})
}
