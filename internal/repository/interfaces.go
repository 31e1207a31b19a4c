// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/xarrijorge/kolokwa/internal/model"
)

// ErrTokenConsumed は招待トークンが既に消費済み（または存在しない）ことを示す。
// ConsumeAndCreateの原子的なclaim-and-deleteが0行だった場合に返る。
var ErrTokenConsumed = errors.New("invite token already consumed")

// ErrDuplicateEmail はusers.emailの一意性制約違反を示す。
var ErrDuplicateEmail = errors.New("email already registered")

// EventRepository はイベントデータの永続化インターフェース。
// 本コアはイベントの読み取りが主で、CreateとListは管理ツールとテストが使用する。
type EventRepository interface {
	// FindByID は指定IDのイベントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Event, error)

	// Create はイベントを作成する。
	Create(ctx context.Context, event *model.Event) error

	// List は全イベントを日付昇順（日付なしは末尾）で返す。
	List(ctx context.Context) ([]*model.Event, error)
}

// UserRepository は参加者アカウントの永続化インターフェース。
// ユーザーの作成はトークン償還と一体のため、SignupRepository.ConsumeAndCreateが行う。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// StaffRepository はスタッフアカウントの永続化インターフェース。
type StaffRepository interface {
	// FindByEmail はメールアドレスでスタッフを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.StaffUser, error)

	// Create はスタッフを作成する。
	Create(ctx context.Context, staff *model.StaffUser) error
}

// SignupRepository は招待の未償還レコードの永続化インターフェース。
type SignupRepository interface {
	// Create は未償還レコードを作成する。
	Create(ctx context.Context, signup *model.PendingSignup) error

	// FindByToken は招待トークンでレコードを検索する。見つからない場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.PendingSignup, error)

	// DeleteByToken は招待トークンのレコードを削除する。
	// 期限切れレコードのexpiry-on-read削除に使用する。
	DeleteByToken(ctx context.Context, token string) error

	// ConsumeAndCreate はトークンの消費とアカウント作成を単一トランザクションで行う。
	// DELETE ... RETURNINGによる原子的なclaimのため、同一トークンへの並行償還は
	// 高々1つしか成功しない。トークンが既に消費済みの場合はErrTokenConsumed、
	// メールアドレスが登録済みの場合はErrDuplicateEmailを返し、すべての書き込みを
	// ロールバックする。
	ConsumeAndCreate(ctx context.Context, token string, user *model.User, participant *model.Participant) error

	// DeleteOlderThan はcutoffより古いレコードを削除し、削除件数を返す。
	// クリーンアップワーカーが使用する。
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ParticipantRepository は出席レコードの永続化インターフェース。
type ParticipantRepository interface {
	// FindByUserAndEvent はユーザーIDとイベントIDで出席レコードを検索する。
	// ユーザーの表示項目をJOINして返す。見つからない場合はnilを返す。
	FindByUserAndEvent(ctx context.Context, userID, eventID string) (*model.ParticipantWithUser, error)

	// MarkCheckedIn は未チェックインの出席レコードをチェックイン済みに遷移させ、
	// 更新した行数を返す。既にチェックイン済みの場合は0を返す（冪等）。
	MarkCheckedIn(ctx context.Context, id string, at time.Time) (int64, error)

	// ListByEvent はイベントの出席レコード一覧をユーザーの表示項目付きで返す。
	ListByEvent(ctx context.Context, eventID string) ([]*model.ParticipantWithUser, error)
}
