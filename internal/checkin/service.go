// Package checkin はQRクレデンシャルによるイベントチェックインを提供する。
package checkin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xarrijorge/kolokwa/internal/credential"
	"github.com/xarrijorge/kolokwa/internal/metrics"
	"github.com/xarrijorge/kolokwa/internal/model"
	"github.com/xarrijorge/kolokwa/internal/repository"
)

// Result はチェックインの結果を表す。
// AlreadyCheckedInは再チェックイン（冪等成功、状態変化なし）を示す。
type Result struct {
	Name             string
	Email            string
	Username         string
	AlreadyCheckedIn bool
}

// Service はチェックイン検証のビジネスロジックを提供する。
type Service struct {
	eventRepo       repository.EventRepository
	participantRepo repository.ParticipantRepository
	collector       metrics.MetricsCollector
}

// NewService はServiceを生成する。
func NewService(
	eventRepo repository.EventRepository,
	participantRepo repository.ParticipantRepository,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		collector:       collector,
	}
}

// CheckIn はスキャンされたQRペイロードを検証し、参加者をチェックイン済みに
// 遷移させる。検証は順序付きで行われ、それぞれが独立した失敗モードを持つ:
//
//  1. scannedTextが空 -> ValidationError
//  2. イベントが存在しない -> EventNotFound
//  3. JSONとして解析できない -> MalformedPayload
//  4. 必須フィールド欠落 -> MalformedPayload
//  5. ペイロードのevent_idがルートのイベントと不一致 -> EventMismatch
//  6. 出席レコードが存在しない -> ParticipantNotFound
//  7. 状態遷移
//
// ステップ7は冪等: 既にチェックイン済みの参加者への再実行は状態を変更せず
// 成功として扱うため、検証通過後の失敗に対するリトライは安全である。
func (s *Service) CheckIn(ctx context.Context, eventID, scannedText string) (*Result, error) {
	// 1. ペイロードの存在
	if scannedText == "" {
		return nil, model.NewValidationError("QR data required")
	}

	// 2. イベントの存在確認
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up event: %w", err)
	}
	if event == nil {
		return nil, model.NewEventNotFoundError(eventID)
	}

	// 3-4. ペイロードの復号（形式・必須フィールドの検証を含む）
	payload, err := credential.Decode(scannedText)
	if err != nil {
		return nil, err
	}

	// 5. クレデンシャルとイベントの一致
	if payload.EventID != eventID {
		return nil, model.NewEventMismatchError()
	}

	// 6. 出席レコードの検索
	participant, err := s.participantRepo.FindByUserAndEvent(ctx, payload.UserID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	if participant == nil {
		return nil, model.NewParticipantNotFoundError()
	}

	// 7. チェックイン済みへ遷移（checked_in_atのガードにより冪等）
	updated, err := s.participantRepo.MarkCheckedIn(ctx, participant.ID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to mark checked in: %w", err)
	}

	result := &Result{
		Name:             participant.Name,
		Email:            participant.Email,
		Username:         participant.Username,
		AlreadyCheckedIn: updated == 0,
	}

	if result.AlreadyCheckedIn {
		s.collector.RecordDuplicateCheckIn()
		slog.Info("duplicate check-in",
			slog.String("participant_id", participant.ID),
			slog.String("event_id", eventID),
		)
	} else {
		s.collector.RecordCheckIn()
		slog.Info("participant checked in",
			slog.String("participant_id", participant.ID),
			slog.String("event_id", eventID),
		)
	}

	return result, nil
}
