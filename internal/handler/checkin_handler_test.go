package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/xarrijorge/kolokwa/internal/checkin"
	"github.com/xarrijorge/kolokwa/internal/model"
)

type mockCheckinService struct {
	checkInFunc func(ctx context.Context, eventID, scannedText string) (*checkin.Result, error)
}

func (m *mockCheckinService) CheckIn(ctx context.Context, eventID, scannedText string) (*checkin.Result, error) {
	return m.checkInFunc(ctx, eventID, scannedText)
}

func newCheckinTestRouter(svc CheckinServiceInterface) http.Handler {
	r := chi.NewRouter()
	h := NewCheckinHandler(svc)
	r.Post("/api/events/{eventId}/checkin", h.CheckIn)
	return r
}

// TestCheckIn_Success は正常系が200と参加者情報を返すことを検証する。
func TestCheckIn_Success(t *testing.T) {
	svc := &mockCheckinService{
		checkInFunc: func(ctx context.Context, eventID, scannedText string) (*checkin.Result, error) {
			if eventID != "event-1" {
				t.Errorf("eventID = %q", eventID)
			}
			return &checkin.Result{Name: "Alice", Email: "alice@example.com", Username: "alice"}, nil
		},
	}
	router := newCheckinTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/events/event-1/checkin",
		strings.NewReader(`{"qr_data":"{\"user_id\":\"u\",\"event_id\":\"event-1\",\"email\":\"a@b.c\"}"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Message     string              `json:"message"`
		Participant participantResponse `json:"participant"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
	if body.Message != "Check-in successful" {
		t.Errorf("message = %q", body.Message)
	}
	if body.Participant.Name != "Alice" || body.Participant.Email != "alice@example.com" {
		t.Errorf("participant = %+v", body.Participant)
	}
}

// TestCheckIn_Duplicate は再チェックインが200と専用メッセージを返すことを検証する。
func TestCheckIn_Duplicate(t *testing.T) {
	svc := &mockCheckinService{
		checkInFunc: func(ctx context.Context, eventID, scannedText string) (*checkin.Result, error) {
			return &checkin.Result{Name: "Alice", Email: "alice@example.com", AlreadyCheckedIn: true}, nil
		},
	}
	router := newCheckinTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/events/event-1/checkin",
		strings.NewReader(`{"qr_data":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "Already checked in" {
		t.Errorf("message = %v", body["message"])
	}
}

// TestCheckIn_StatusMapping はチェックインエラーとHTTPステータスの対応を検証する。
func TestCheckIn_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"empty payload", model.NewValidationError("QR data required"), http.StatusBadRequest},
		{"malformed payload", model.NewMalformedPayloadError("Invalid QR code data"), http.StatusBadRequest},
		{"event mismatch", model.NewEventMismatchError(), http.StatusBadRequest},
		{"event not found", model.NewEventNotFoundError("event-1"), http.StatusNotFound},
		{"participant not found", model.NewParticipantNotFoundError(), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCheckinService{
				checkInFunc: func(ctx context.Context, eventID, scannedText string) (*checkin.Result, error) {
					return nil, tt.err
				},
			}
			router := newCheckinTestRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/events/event-1/checkin",
				strings.NewReader(`{"qr_data":"x"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
