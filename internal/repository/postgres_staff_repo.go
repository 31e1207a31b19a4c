package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xarrijorge/kolokwa/internal/model"
)

// PostgresStaffRepo はPostgreSQLを使用したスタッフアカウントリポジトリ。
type PostgresStaffRepo struct {
	db *sql.DB
}

// NewPostgresStaffRepo はPostgresStaffRepoを生成する。
func NewPostgresStaffRepo(db *sql.DB) *PostgresStaffRepo {
	return &PostgresStaffRepo{db: db}
}

// FindByEmail はメールアドレスでスタッフを検索する。見つからない場合はnilを返す。
func (r *PostgresStaffRepo) FindByEmail(ctx context.Context, email string) (*model.StaffUser, error) {
	staff := &model.StaffUser{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, created_at
		 FROM staff_users WHERE email = $1`,
		email,
	).Scan(&staff.ID, &staff.Email, &staff.PasswordHash, &staff.Role, &staff.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find staff by email: %w", err)
	}

	return staff, nil
}

// Create はスタッフを作成する。
func (r *PostgresStaffRepo) Create(ctx context.Context, staff *model.StaffUser) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO staff_users (id, email, password_hash, role, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		staff.ID, staff.Email, staff.PasswordHash, staff.Role, staff.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert staff: %w", err)
	}
	return nil
}

// compile-time interface check
var _ StaffRepository = (*PostgresStaffRepo)(nil)
