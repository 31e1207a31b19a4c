package model

import (
	"testing"
	"time"
)

// TestPendingSignup_ExpiredAt_Boundary は有効期限の境界値を検証する。
// ちょうど7日は有効、7日を超えた時点で期限切れ。
func TestPendingSignup_ExpiredAt_Boundary(t *testing.T) {
	created := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	p := &PendingSignup{CreatedAt: created}

	tests := []struct {
		name    string
		now     time.Time
		expired bool
	}{
		{"just created", created, false},
		{"6 days 23 hours", created.Add(6*24*time.Hour + 23*time.Hour), false},
		{"exactly 7 days", created.Add(7 * 24 * time.Hour), false},
		{"7 days 1 second", created.Add(7*24*time.Hour + time.Second), true},
		{"7 days 1 hour", created.Add(7*24*time.Hour + time.Hour), true},
		{"30 days", created.Add(30 * 24 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ExpiredAt(tt.now); got != tt.expired {
				t.Errorf("ExpiredAt(%v) = %v, want %v", tt.now, got, tt.expired)
			}
		})
	}
}
