// Package signup は招待トークンの検査と償還を提供する。
//
// トークンの状態遷移: Issued -> Redeemed（行削除・終端） / Expired（行削除・
// 終端） / Invalid（もともと存在しない）。期限切れの強制は読み取り時に行う
// （expiry-on-read）。バックグラウンドのスイーパーは存在するが掃除目的で
// あり、判定の正は本パッケージにある。
package signup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/xarrijorge/kolokwa/internal/credential"
	"github.com/xarrijorge/kolokwa/internal/metrics"
	"github.com/xarrijorge/kolokwa/internal/model"
	"github.com/xarrijorge/kolokwa/internal/repository"
)

// minPasswordLength はパスワードの最小文字数。
const minPasswordLength = 6

// bcryptCost はパスワードハッシュのコストパラメータ。
const bcryptCost = 10

// InspectResult はトークン検査の結果を表す。償還フォームの事前表示に使用する。
type InspectResult struct {
	Email   string
	EventID string
}

// RedeemInput はトークン償還の入力を表す。
type RedeemInput struct {
	Password string
	Name     string
	Username string
}

// RedeemResult はトークン償還の結果を表す。
type RedeemResult struct {
	UserID   string
	Email    string
	Name     string
	Username string
	QRCode   string
}

// Service は招待トークンの検査・償還のビジネスロジックを提供する。
type Service struct {
	signupRepo repository.SignupRepository
	collector  metrics.MetricsCollector
}

// NewService はServiceを生成する。
func NewService(signupRepo repository.SignupRepository, collector metrics.MetricsCollector) *Service {
	return &Service{
		signupRepo: signupRepo,
		collector:  collector,
	}
}

// InspectToken はトークンを検査し、対応する招待のメールアドレスとイベントIDを
// 返す。純粋な読み取り操作だが、期限切れレコードを発見した場合は副作用として
// 削除する（expiry-on-read）。
func (s *Service) InspectToken(ctx context.Context, token string) (*InspectResult, error) {
	pending, err := s.loadValidSignup(ctx, token)
	if err != nil {
		return nil, err
	}

	return &InspectResult{
		Email:   pending.Email,
		EventID: pending.EventID,
	}, nil
}

// Redeem はトークンを償還し、参加者アカウントとQRクレデンシャルを発行する。
//
// トークンの存在・期限はInspectTokenと独立に再検証する（検査と償還の間に
// 状態が変わり得るため、償還時の検証が正）。アカウント作成・出席レコード
// 作成・トークン消費は単一トランザクションで行われ、同一トークンへの並行
// 償還は高々1つしか成功しない。
func (s *Service) Redeem(ctx context.Context, token string, input RedeemInput) (*RedeemResult, error) {
	// 1. パスワードポリシー
	if len(input.Password) < minPasswordLength {
		s.collector.RecordRedemptionFailure("validation")
		return nil, model.NewValidationError("Password must be at least 6 characters")
	}

	// 2. トークンの再検証（authoritative check）
	pending, err := s.loadValidSignup(ctx, token)
	if err != nil {
		return nil, err
	}

	// 3. パスワードをハッシュ化
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		s.collector.RecordRedemptionFailure("internal")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        pending.Email,
		PasswordHash: string(hash),
		Name:         input.Name,
		Username:     input.Username,
		// 招待リンクの受信がメールアドレスの所有を証明するため検証済みとする
		Verified:  true,
		CreatedAt: now,
	}

	// 4. QRクレデンシャルを発行（timestampは発行時刻のエポックミリ秒）
	qrCode, err := credential.Encode(credential.Payload{
		UserID:    user.ID,
		EventID:   pending.EventID,
		Email:     user.Email,
		Timestamp: now.UnixMilli(),
	})
	if err != nil {
		s.collector.RecordRedemptionFailure("internal")
		return nil, fmt.Errorf("failed to encode QR credential: %w", err)
	}

	participant := &model.Participant{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		EventID:   pending.EventID,
		QRCode:    qrCode,
		Status:    model.ParticipantStatusConfirmed,
		CreatedAt: now,
	}

	// 5. トークン消費とアカウント作成を単一トランザクションで実行
	if err := s.signupRepo.ConsumeAndCreate(ctx, token, user, participant); err != nil {
		switch {
		case errors.Is(err, repository.ErrTokenConsumed):
			// 検証と消費の間に別の償還が完了した場合
			s.collector.RecordRedemptionFailure("token_consumed")
			return nil, model.NewTokenNotFoundError()
		case errors.Is(err, repository.ErrDuplicateEmail):
			s.collector.RecordRedemptionFailure("email_conflict")
			return nil, model.NewEmailConflictError()
		default:
			s.collector.RecordRedemptionFailure("internal")
			return nil, fmt.Errorf("failed to redeem token: %w", err)
		}
	}

	s.collector.RecordRedemption()
	slog.Info("invite token redeemed",
		slog.String("user_id", user.ID),
		slog.String("event_id", pending.EventID),
	)

	return &RedeemResult{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Username: user.Username,
		QRCode:   qrCode,
	}, nil
}

// loadValidSignup はトークンの未償還レコードを取得し、期限を検証する。
// 期限切れの場合はレコードを削除した上でExpiredを返す。
func (s *Service) loadValidSignup(ctx context.Context, token string) (*model.PendingSignup, error) {
	pending, err := s.signupRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending signup: %w", err)
	}
	if pending == nil {
		return nil, model.NewTokenNotFoundError()
	}

	if pending.ExpiredAt(time.Now()) {
		// expiry-on-read: 期限切れレコードは読み取り時に削除する
		if err := s.signupRepo.DeleteByToken(ctx, token); err != nil {
			slog.Error("failed to delete expired signup",
				slog.String("error", err.Error()),
				slog.String("signup_id", pending.ID),
			)
		}
		return nil, model.NewTokenExpiredError()
	}

	return pending, nil
}
