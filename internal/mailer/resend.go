// Package mailer は招待メールの組み立てと配信を提供する。
// 配信はResendのHTTP APIを使用する。APIキーが未設定の場合、クライアントは
// 未構成状態となり、呼び出し元は書き込みを行う前に配信不可を検知できる。
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// defaultEndpoint はResendメール送信APIのエンドポイント。
const defaultEndpoint = "https://api.resend.com/emails"

// ErrNotConfigured はメール配信基盤が未設定であることを示す。
var ErrNotConfigured = errors.New("mail service not configured")

// Message は送信するメールを表す。
type Message struct {
	From    string `json:"from"`
	To      string `json:"-"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Mailer はメール配信のインターフェース。
type Mailer interface {
	// Configured は配信基盤が利用可能かを返す。
	Configured() bool
	// Send はメールを送信する。未構成の場合はErrNotConfiguredを返す。
	Send(ctx context.Context, msg Message) error
}

// ResendClient はResend APIのクライアント。
type ResendClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewResendClient はResendClientの新しいインスタンスを生成する。
// apiKeyが空の場合は未構成のクライアントとなる。
func NewResendClient(httpClient *http.Client, logger *slog.Logger, apiKey string) *ResendClient {
	return &ResendClient{
		httpClient: httpClient,
		logger:     logger,
		apiKey:     apiKey,
		endpoint:   defaultEndpoint,
	}
}

// Configured はAPIキーが設定されているかを返す。
func (c *ResendClient) Configured() bool {
	return c.apiKey != ""
}

// Send はResend API経由でメールを送信する。
func (c *ResendClient) Send(ctx context.Context, msg Message) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	payload := struct {
		From    string   `json:"from"`
		To      []string `json:"to"`
		Subject string   `json:"subject"`
		HTML    string   `json:"html"`
	}{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("failed to call mail API",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// エラー詳細はログのみに記録する（本文にAPIキー等は含まれない想定）
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Error("mail API returned error status",
			slog.Int("http_status", resp.StatusCode),
			slog.String("detail", string(detail)),
		)
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}

	return nil
}

// compile-time interface check
var _ Mailer = (*ResendClient)(nil)
