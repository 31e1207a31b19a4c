package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xarrijorge/kolokwa/internal/model"
)

// PostgresParticipantRepo はPostgreSQLを使用した出席レコードリポジトリ。
type PostgresParticipantRepo struct {
	db *sql.DB
}

// NewPostgresParticipantRepo はPostgresParticipantRepoを生成する。
func NewPostgresParticipantRepo(db *sql.DB) *PostgresParticipantRepo {
	return &PostgresParticipantRepo{db: db}
}

// FindByUserAndEvent はユーザーIDとイベントIDで出席レコードを検索する。
// ユーザーの表示項目をJOINして返す。見つからない場合はnilを返す。
func (r *PostgresParticipantRepo) FindByUserAndEvent(ctx context.Context, userID, eventID string) (*model.ParticipantWithUser, error) {
	p := &model.ParticipantWithUser{}
	err := r.db.QueryRowContext(ctx,
		`SELECT p.id, p.user_id, p.event_id, p.qr_code, p.status, p.checked_in_at, p.created_at,
		        u.name, u.email, u.username
		 FROM participants p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.user_id = $1 AND p.event_id = $2`,
		userID, eventID,
	).Scan(&p.ID, &p.UserID, &p.EventID, &p.QRCode, &p.Status, &p.CheckedInAt, &p.CreatedAt,
		&p.Name, &p.Email, &p.Username)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}

	return p, nil
}

// MarkCheckedIn は未チェックインの出席レコードをチェックイン済みに遷移させ、
// 更新した行数を返す。checked_in_at IS NULLのガードにより再実行は0行更新と
// なり、状態は変化しない（冪等）。
func (r *PostgresParticipantRepo) MarkCheckedIn(ctx context.Context, id string, at time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE participants
		 SET status = $1, checked_in_at = $2
		 WHERE id = $3 AND checked_in_at IS NULL`,
		model.ParticipantStatusCheckedIn, at, id,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark participant checked in: %w", err)
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return updated, nil
}

// ListByEvent はイベントの出席レコード一覧をユーザーの表示項目付きで返す。
func (r *PostgresParticipantRepo) ListByEvent(ctx context.Context, eventID string) ([]*model.ParticipantWithUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.user_id, p.event_id, p.qr_code, p.status, p.checked_in_at, p.created_at,
		        u.name, u.email, u.username
		 FROM participants p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.event_id = $1
		 ORDER BY p.created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*model.ParticipantWithUser
	for rows.Next() {
		p := &model.ParticipantWithUser{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.EventID, &p.QRCode, &p.Status, &p.CheckedInAt, &p.CreatedAt,
			&p.Name, &p.Email, &p.Username); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}

// compile-time interface check
var _ ParticipantRepository = (*PostgresParticipantRepo)(nil)
