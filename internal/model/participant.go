// Package model はドメインモデルを定義する。
package model

import "time"

// Participant はイベント出席レコードを表す。
// トークン償還時に作成され、チェックイン時にStatusが一度だけ遷移する。
// QRCodeには発行済みクレデンシャルのPNGデータURLを保持する。
type Participant struct {
	ID          string
	UserID      string
	EventID     string
	QRCode      string
	Status      ParticipantStatus
	CheckedInAt *time.Time
	CreatedAt   time.Time
}

// ParticipantStatus は出席レコードの状態を表す。
type ParticipantStatus string

const (
	// ParticipantStatusConfirmed は登録済み（未チェックイン）状態。
	ParticipantStatusConfirmed ParticipantStatus = "confirmed"
	// ParticipantStatusCheckedIn はチェックイン済み状態。
	ParticipantStatusCheckedIn ParticipantStatus = "checked_in"
)

// ParticipantWithUser は出席レコードとユーザーの表示項目を結合したモデル。
// チェックイン結果の応答と参加者一覧で使用する。
type ParticipantWithUser struct {
	Participant
	Name     string
	Email    string
	Username string
}
