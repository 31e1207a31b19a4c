// Package model はドメインモデルを定義する。
package model

import "time"

// User は参加者アカウントを表す。
// トークン償還時に一度だけ作成される。PasswordHashはbcryptハッシュのみを
// 保持し、平文パスワードは保存・転送しない。
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Username     string
	Verified     bool
	CreatedAt    time.Time
}

// StaffUser は管理画面にログインするスタッフアカウントを表す。
type StaffUser struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// スタッフロールの定義済み値。
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleStaff  = "staff"
)
