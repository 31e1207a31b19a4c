package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/xarrijorge/kolokwa/internal/model"
)

// PostgreSQLの一意性制約違反のエラーコード。
const pqUniqueViolation = "23505"

// PostgresSignupRepo はPostgreSQLを使用した未償還招待リポジトリ。
type PostgresSignupRepo struct {
	db *sql.DB
}

// NewPostgresSignupRepo はPostgresSignupRepoを生成する。
func NewPostgresSignupRepo(db *sql.DB) *PostgresSignupRepo {
	return &PostgresSignupRepo{db: db}
}

// Create は未償還レコードを作成する。
func (r *PostgresSignupRepo) Create(ctx context.Context, signup *model.PendingSignup) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pending_signups (id, email, event_id, invite_token, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		signup.ID, signup.Email, signup.EventID, signup.InviteToken, signup.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pending signup: %w", err)
	}
	return nil
}

// FindByToken は招待トークンでレコードを検索する。見つからない場合はnilを返す。
func (r *PostgresSignupRepo) FindByToken(ctx context.Context, token string) (*model.PendingSignup, error) {
	signup := &model.PendingSignup{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, event_id, invite_token, created_at
		 FROM pending_signups WHERE invite_token = $1`,
		token,
	).Scan(&signup.ID, &signup.Email, &signup.EventID, &signup.InviteToken, &signup.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pending signup: %w", err)
	}

	return signup, nil
}

// DeleteByToken は招待トークンのレコードを削除する。
func (r *PostgresSignupRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM pending_signups WHERE invite_token = $1`,
		token,
	)
	if err != nil {
		return fmt.Errorf("failed to delete pending signup: %w", err)
	}
	return nil
}

// ConsumeAndCreate はトークンの消費とアカウント作成を単一トランザクションで行う。
// claimはDELETE ... RETURNINGで行うため、同一トークンへの並行償還は高々1つ
// しか成功せず、後続の書き込みが失敗した場合はトークンの消費ごとロールバック
// される。
func (r *PostgresSignupRepo) ConsumeAndCreate(ctx context.Context, token string, user *model.User, participant *model.Participant) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// トークンを原子的にclaim
	var signupID string
	err = tx.QueryRowContext(ctx,
		`DELETE FROM pending_signups WHERE invite_token = $1 RETURNING id`,
		token,
	).Scan(&signupID)
	if err == sql.ErrNoRows {
		return ErrTokenConsumed
	}
	if err != nil {
		return fmt.Errorf("failed to consume invite token: %w", err)
	}

	// ユーザーを作成
	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, name, username, verified, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Username, user.Verified, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	// 出席レコードを作成
	_, err = tx.ExecContext(ctx,
		`INSERT INTO participants (id, user_id, event_id, qr_code, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		participant.ID, participant.UserID, participant.EventID, participant.QRCode, participant.Status, participant.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteOlderThan はcutoffより古いレコードを削除し、削除件数を返す。
func (r *PostgresSignupRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM pending_signups WHERE created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired signups: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// isUniqueViolation はPostgreSQLの一意性制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation
	}
	return false
}

// compile-time interface check
var _ SignupRepository = (*PostgresSignupRepo)(nil)
