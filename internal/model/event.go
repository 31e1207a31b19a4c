// Package model はドメインモデルを定義する。
package model

import "time"

// Event はコミュニティイベントを表す。
// 本コアはイベントの所有者ではなく、招待メールとQRクレデンシャルの
// 検証のためにIDとタイトルを参照するのみ。
type Event struct {
	ID          string
	Title       string
	Description string
	Date        *time.Time
	Image       string
	Tag         string
	CreatedAt   time.Time
}
