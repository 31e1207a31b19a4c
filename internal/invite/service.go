// Package invite はイベント招待の発行を提供する。
// 招待の発行は、未償還レコードの作成と償還URL入りメールの送信からなる。
package invite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xarrijorge/kolokwa/internal/mailer"
	"github.com/xarrijorge/kolokwa/internal/metrics"
	"github.com/xarrijorge/kolokwa/internal/model"
	"github.com/xarrijorge/kolokwa/internal/repository"
	"github.com/xarrijorge/kolokwa/internal/security"
)

// ServiceConfig は招待サービスの設定。
type ServiceConfig struct {
	BaseURL  string // 償還URLの組み立てに使用する
	MailFrom string
}

// Service は招待発行のビジネスロジックを提供する。
type Service struct {
	eventRepo  repository.EventRepository
	signupRepo repository.SignupRepository
	mail       mailer.Mailer
	sanitizer  security.TextSanitizerService
	collector  metrics.MetricsCollector
	config     ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	eventRepo repository.EventRepository,
	signupRepo repository.SignupRepository,
	mail mailer.Mailer,
	sanitizer security.TextSanitizerService,
	collector metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	return &Service{
		eventRepo:  eventRepo,
		signupRepo: signupRepo,
		mail:       mail,
		sanitizer:  sanitizer,
		collector:  collector,
		config:     config,
	}
}

// IssueInvite はイベント招待を発行する。
// 未償還レコードを作成し、{baseURL}/verify/{token}の償還リンクを含む
// 招待メールを送信する。
//
// 同一(email, event)への再発行は重複排除せず、独立した未償還レコードを
// 作成する（それぞれ個別に償還可能）。リトライは呼び出し元の責務。
// メール配信基盤が未構成の場合は、レコードを作成する前に失敗する。
func (s *Service) IssueInvite(ctx context.Context, eventID, email string) error {
	// 1. 入力検証
	if email == "" || !strings.Contains(email, "@") {
		s.collector.RecordInviteFailure("validation")
		return model.NewValidationError("Valid email required")
	}

	// 2. イベントの存在確認
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		s.collector.RecordInviteFailure("internal")
		return fmt.Errorf("failed to look up event: %w", err)
	}
	if event == nil {
		s.collector.RecordInviteFailure("event_not_found")
		return model.NewEventNotFoundError(eventID)
	}

	// 3. 配信不可を書き込み前に検知する（孤児レコードを残さない）
	if !s.mail.Configured() {
		s.collector.RecordInviteFailure("mail_unavailable")
		return model.NewMailUnavailableError()
	}

	// 4. トークンを発行して未償還レコードを作成
	token := uuid.New().String()
	signup := &model.PendingSignup{
		ID:          uuid.New().String(),
		Email:       email,
		EventID:     eventID,
		InviteToken: token,
		CreatedAt:   time.Now(),
	}
	if err := s.signupRepo.Create(ctx, signup); err != nil {
		s.collector.RecordInviteFailure("internal")
		return fmt.Errorf("failed to create pending signup: %w", err)
	}

	// 5. 招待メールを送信
	inviteURL := strings.TrimSuffix(s.config.BaseURL, "/") + "/verify/" + token
	msg := mailer.BuildInviteMail(s.config.MailFrom, email, s.sanitizer.Sanitize(event.Title), inviteURL)

	if err := s.mail.Send(ctx, msg); err != nil {
		// 送信失敗時もレコードは残す。リンクは無効だが再発行で上書き的に
		// 新しいレコードが作られるため実害はなく、期限切れ後に掃除される。
		s.collector.RecordInviteFailure("mail_send")
		return fmt.Errorf("failed to send invite mail: %w", err)
	}

	s.collector.RecordInviteSent()
	slog.Info("invite issued",
		slog.String("event_id", eventID),
		slog.String("signup_id", signup.ID),
	)

	return nil
}
