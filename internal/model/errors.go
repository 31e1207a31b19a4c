// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// パイプライン全体で一貫したエラー分類（validation / not found / expired /
// conflict / mismatch / malformed / unavailable / internal）をHTTP境界まで
// 型付きで運ぶ。
type APIError struct {
	Code     string // エラーコード
	Message  string // ユーザー向けメッセージ
	Category string // カテゴリ: auth, validation, signup, checkin, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeEventNotFound      = "EVENT_NOT_FOUND"
	ErrCodeTokenNotFound      = "TOKEN_NOT_FOUND"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeEmailConflict      = "EMAIL_CONFLICT"
	ErrCodeEventMismatch      = "EVENT_MISMATCH"
	ErrCodeMalformedPayload   = "MALFORMED_PAYLOAD"
	ErrCodeParticipantMissing = "PARTICIPANT_NOT_FOUND"
	ErrCodeMailUnavailable    = "MAIL_SERVICE_UNAVAILABLE"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeNotVerified        = "ACCOUNT_NOT_VERIFIED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewValidationError は入力値の形式・長さ違反のエラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
		Action:   "Check the submitted values and try again.",
	}
}

// NewEventNotFoundError はイベント未検出エラーを生成する。
func NewEventNotFoundError(eventID string) *APIError {
	return &APIError{
		Code:     ErrCodeEventNotFound,
		Message:  "Event not found",
		Category: "signup",
		Action:   fmt.Sprintf("Verify the event ID (%s) and try again.", eventID),
	}
}

// NewTokenNotFoundError は招待トークン未検出エラーを生成する。
// 存在しないトークンと償還済みトークンは区別できないため同じ応答を返す。
func NewTokenNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenNotFound,
		Message:  "Invalid or expired token",
		Category: "signup",
		Action:   "Request a new invitation from the event page.",
	}
}

// NewTokenExpiredError は有効期限超過エラーを生成する。
func NewTokenExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenExpired,
		Message:  "Token expired",
		Category: "signup",
		Action:   "Invitation links are valid for 7 days. Request a new one.",
	}
}

// NewEmailConflictError はメールアドレスの一意性違反エラーを生成する。
func NewEmailConflictError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailConflict,
		Message:  "Email already registered",
		Category: "signup",
		Action:   "Log in with the existing account instead.",
	}
}

// NewEventMismatchError はQRクレデンシャルとイベントの不一致エラーを生成する。
func NewEventMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodeEventMismatch,
		Message:  "QR code is for a different event",
		Category: "checkin",
		Action:   "Present the QR code issued for this event.",
	}
}

// NewMalformedPayloadError は解読不能・不完全なQR内容のエラーを生成する。
func NewMalformedPayloadError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeMalformedPayload,
		Message:  message,
		Category: "checkin",
		Action:   "Rescan the QR code and try again.",
	}
}

// NewParticipantNotFoundError は出席レコード未検出エラーを生成する。
func NewParticipantNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeParticipantMissing,
		Message:  "Participant not found",
		Category: "checkin",
		Action:   "Confirm the registration was completed for this event.",
	}
}

// NewMailUnavailableError はメール配信基盤が未設定の場合のエラーを生成する。
// 入力値エラーとは区別される外部依存の欠如を表す。
func NewMailUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeMailUnavailable,
		Message:  "Email service not configured",
		Category: "system",
		Action:   "Contact the site operator.",
	}
}

// NewUnauthorizedError は認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Invalid credentials",
		Category: "auth",
		Action:   "Check your email and password.",
	}
}

// NewAccountNotVerifiedError は未検証アカウントでのログイン試行エラーを生成する。
func NewAccountNotVerifiedError() *APIError {
	return &APIError{
		Code:     ErrCodeNotVerified,
		Message:  "Account not verified",
		Category: "auth",
		Action:   "Complete the registration from your invitation link first.",
	}
}

// NewInternalError は内部エラーを生成する。
// 内部詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Internal server error",
		Category: "system",
		Action:   "Wait a moment and try again.",
	}
}
