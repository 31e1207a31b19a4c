// Package model はドメインモデルを定義する。
package model

import "time"

// PendingSignup はイベント招待の未償還レコードを表す。
// Invitation Issuerが作成し、Token Redeemerが消費（読み取り後に削除）する。
// トークンの有効期間はCreatedAtから7日間。期限切れ判定は読み取り時に行う
// （expiry-on-read）。バックグラウンドのスイーパーはあくまで掃除であり、
// 判定の正はこのモデルを読むコードにある。
type PendingSignup struct {
	ID          string
	Email       string
	EventID     string
	InviteToken string
	CreatedAt   time.Time
}

// InviteTTLDays は招待トークンの有効日数。
// 作成からちょうど7日後までは有効で、7日を超えた時点で期限切れとなる。
const InviteTTLDays = 7

// ExpiredAt は経過時間がTTLを超えているかを判定する。
// 境界値: ちょうど7日は有効、7日を1秒でも超えると期限切れ。
func (p *PendingSignup) ExpiredAt(now time.Time) bool {
	return now.Sub(p.CreatedAt) > InviteTTLDays*24*time.Hour
}
