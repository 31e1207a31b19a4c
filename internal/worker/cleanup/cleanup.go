// Package cleanup は期限切れ招待の自動削除ジョブを提供する。
// 招待の有効期限（7日）を超過したpending_signups行を日次バッチで削除する。
// 期限判定の正は償還側のexpiry-on-readにあり、本ジョブは保持データの
// 掃除のみを担う。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xarrijorge/kolokwa/internal/model"
)

// SignupPurger は期限切れ招待の削除に必要なインターフェース。
// repository.SignupRepositoryの部分集合として定義する。
type SignupPurger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupJob は有効期限を超過した招待の自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	signups       SignupPurger
	logger        *slog.Logger
	RetentionDays int // 招待の保持日数（デフォルト: 7）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの保持日数は招待トークンの有効期限と同じ7日。
func NewCleanupJob(signups SignupPurger, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		signups:       signups,
		logger:        logger,
		RetentionDays: model.InviteTTLDays,
	}
}

// Run は保持期間を超過した招待を削除する。
// created_atがRetentionDays日前より古いpending_signups行をDELETEする。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	cutoff := start.AddDate(0, 0, -j.RetentionDays)

	deletedCount, err := j.signups.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("期限切れ招待クリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("期限切れ招待クリーンアップの実行に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("期限切れ招待クリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
