package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/xarrijorge/kolokwa/internal/auth"
	"github.com/xarrijorge/kolokwa/internal/checkin"
	"github.com/xarrijorge/kolokwa/internal/credential"
	"github.com/xarrijorge/kolokwa/internal/invite"
	"github.com/xarrijorge/kolokwa/internal/mailer"
	"github.com/xarrijorge/kolokwa/internal/metrics"
	"github.com/xarrijorge/kolokwa/internal/middleware"
	"github.com/xarrijorge/kolokwa/internal/model"
	"github.com/xarrijorge/kolokwa/internal/repository"
	"github.com/xarrijorge/kolokwa/internal/security"
	"github.com/xarrijorge/kolokwa/internal/signup"
)

// --- インメモリ実装（結合テスト用） ---

type memEventRepo struct {
	events map[string]*model.Event
}

func (r *memEventRepo) FindByID(ctx context.Context, id string) (*model.Event, error) {
	return r.events[id], nil
}

func (r *memEventRepo) Create(ctx context.Context, event *model.Event) error {
	r.events[event.ID] = event
	return nil
}

func (r *memEventRepo) List(ctx context.Context) ([]*model.Event, error) {
	events := make([]*model.Event, 0, len(r.events))
	for _, e := range r.events {
		events = append(events, e)
	}
	return events, nil
}

type memStore struct {
	signups      map[string]*model.PendingSignup // key: invite token
	users        map[string]*model.User          // key: user ID
	usersByEmail map[string]*model.User
	participants map[string]*model.Participant // key: participant ID
}

func newMemStore() *memStore {
	return &memStore{
		signups:      make(map[string]*model.PendingSignup),
		users:        make(map[string]*model.User),
		usersByEmail: make(map[string]*model.User),
		participants: make(map[string]*model.Participant),
	}
}

type memSignupRepo struct {
	store *memStore
}

func (r *memSignupRepo) Create(ctx context.Context, s *model.PendingSignup) error {
	r.store.signups[s.InviteToken] = s
	return nil
}

func (r *memSignupRepo) FindByToken(ctx context.Context, token string) (*model.PendingSignup, error) {
	return r.store.signups[token], nil
}

func (r *memSignupRepo) DeleteByToken(ctx context.Context, token string) error {
	delete(r.store.signups, token)
	return nil
}

func (r *memSignupRepo) ConsumeAndCreate(ctx context.Context, token string, user *model.User, participant *model.Participant) error {
	if _, ok := r.store.signups[token]; !ok {
		return repository.ErrTokenConsumed
	}
	if _, ok := r.store.usersByEmail[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	delete(r.store.signups, token)
	r.store.users[user.ID] = user
	r.store.usersByEmail[user.Email] = user
	r.store.participants[participant.ID] = participant
	return nil
}

func (r *memSignupRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for token, s := range r.store.signups {
		if s.CreatedAt.Before(cutoff) {
			delete(r.store.signups, token)
			n++
		}
	}
	return n, nil
}

type memUserRepo struct {
	store *memStore
}

func (r *memUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.store.users[id], nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.store.usersByEmail[email], nil
}

type memStaffRepo struct {
	staff map[string]*model.StaffUser
}

func (r *memStaffRepo) FindByEmail(ctx context.Context, email string) (*model.StaffUser, error) {
	return r.staff[email], nil
}

func (r *memStaffRepo) Create(ctx context.Context, s *model.StaffUser) error {
	r.staff[s.Email] = s
	return nil
}

type memParticipantRepo struct {
	store *memStore
}

func (r *memParticipantRepo) withUser(p *model.Participant) *model.ParticipantWithUser {
	u := r.store.users[p.UserID]
	return &model.ParticipantWithUser{
		Participant: *p,
		Name:        u.Name,
		Email:       u.Email,
		Username:    u.Username,
	}
}

func (r *memParticipantRepo) FindByUserAndEvent(ctx context.Context, userID, eventID string) (*model.ParticipantWithUser, error) {
	for _, p := range r.store.participants {
		if p.UserID == userID && p.EventID == eventID {
			return r.withUser(p), nil
		}
	}
	return nil, nil
}

func (r *memParticipantRepo) MarkCheckedIn(ctx context.Context, id string, at time.Time) (int64, error) {
	p, ok := r.store.participants[id]
	if !ok || p.CheckedInAt != nil {
		return 0, nil
	}
	p.CheckedInAt = &at
	p.Status = model.ParticipantStatusCheckedIn
	return 1, nil
}

func (r *memParticipantRepo) ListByEvent(ctx context.Context, eventID string) ([]*model.ParticipantWithUser, error) {
	var result []*model.ParticipantWithUser
	for _, p := range r.store.participants {
		if p.EventID == eventID {
			result = append(result, r.withUser(p))
		}
	}
	return result, nil
}

// captureMailer は送信されたメールを記録するMailer実装。
type captureMailer struct {
	sent []mailer.Message
}

func (m *captureMailer) Configured() bool { return true }

func (m *captureMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

type okHealthChecker struct{}

func (okHealthChecker) PingContext(ctx context.Context) error { return nil }

type failHealthChecker struct{}

func (failHealthChecker) PingContext(ctx context.Context) error {
	return errors.New("connection refused")
}

// testStack は実サービスとインメモリリポジトリで構成したルーターを返す。
type testStack struct {
	router http.Handler
	mail   *captureMailer
	staff  *memStaffRepo
}

func newTestStack(t *testing.T, health HealthChecker) *testStack {
	t.Helper()

	store := newMemStore()
	eventRepo := &memEventRepo{events: map[string]*model.Event{
		"event-1": {ID: "event-1", Title: "Go Conference Monrovia", CreatedAt: time.Now()},
	}}
	signupRepo := &memSignupRepo{store: store}
	userRepo := &memUserRepo{store: store}
	staffRepo := &memStaffRepo{staff: make(map[string]*model.StaffUser)}
	participantRepo := &memParticipantRepo{store: store}

	mail := &captureMailer{}
	collector := metrics.NewCollector(prometheus.NewRegistry())
	tokens := auth.NewTokenManager("router-test-secret-32bytes-long--", time.Hour)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(1000),
		GeneralBurst:    1000,
		InviteRate:      rate.Limit(1000),
		InviteBurst:     1000,
		CleanupInterval: time.Minute,
	})
	t.Cleanup(rateLimiter.Stop)

	authService := auth.NewService(userRepo, staffRepo, tokens)
	inviteService := invite.NewService(eventRepo, signupRepo, mail, security.NewTextSanitizer(), collector, invite.ServiceConfig{
		BaseURL:  "http://localhost:8080",
		MailFrom: "KoloKwa <invites@kolokwa.tech>",
	})
	signupService := signup.NewService(signupRepo, collector)
	checkinService := checkin.NewService(eventRepo, participantRepo, collector)

	router := NewRouter(&RouterDeps{
		TokenVerifier:     authService,
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rateLimiter,
		HealthChecker:     health,
		AuthService:       authService,
		AuthConfig:        AuthHandlerConfig{CookieSecure: false, CookieMaxAge: 3600},
		InviteService:     inviteService,
		SignupService:     signupService,
		CheckinService:    checkinService,
		ParticipantLister: participantRepo,
	})

	return &testStack{router: router, mail: mail, staff: staffRepo}
}

func (s *testStack) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// inviteTokenFromMail は招待メール本文から償還リンクのトークンを取り出す。
func inviteTokenFromMail(t *testing.T, msg mailer.Message) string {
	t.Helper()
	const marker = "/verify/"
	i := strings.Index(msg.HTML, marker)
	if i < 0 {
		t.Fatalf("invite mail should contain a redemption link:\n%s", msg.HTML)
	}
	rest := msg.HTML[i+len(marker):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		t.Fatalf("redemption link should be quoted:\n%s", msg.HTML)
	}
	return rest[:end]
}

// TestRouter_SignupToCheckInFlow は招待送信から償還・チェックインまでの
// 一連のフローをHTTP経由で検証する。
func TestRouter_SignupToCheckInFlow(t *testing.T) {
	stack := newTestStack(t, okHealthChecker{})

	// 1. 招待を送信
	rec := stack.do(t, http.MethodPost, "/api/events/event-1/signup",
		`{"email":"alice@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("signup status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(stack.mail.sent) != 1 {
		t.Fatalf("sent mails = %d, want 1", len(stack.mail.sent))
	}
	token := inviteTokenFromMail(t, stack.mail.sent[0])

	// 2. トークンを検査
	rec = stack.do(t, http.MethodGet, "/api/verify/"+token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("inspect status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var inspect map[string]string
	json.Unmarshal(rec.Body.Bytes(), &inspect)
	if inspect["email"] != "alice@example.com" || inspect["event_id"] != "event-1" {
		t.Fatalf("inspect body = %v", inspect)
	}

	// 3. トークンを償還
	rec = stack.do(t, http.MethodPost, "/api/verify/"+token,
		`{"password":"secret-pass","name":"Alice","username":"alice"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("redeem status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var redeemed struct {
		User userResponse `json:"user"`
	}
	json.Unmarshal(rec.Body.Bytes(), &redeemed)
	if redeemed.User.ID == "" {
		t.Fatalf("redeem response should contain user: %s", rec.Body.String())
	}

	// 償還後のトークンは消費済み
	rec = stack.do(t, http.MethodPost, "/api/verify/"+token,
		`{"password":"secret-pass"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second redeem status = %d, want 404", rec.Code)
	}

	// 4. QRペイロードを使ってチェックイン
	qrData, err := credential.EncodeText(credential.Payload{
		UserID:    redeemed.User.ID,
		EventID:   "event-1",
		Email:     "alice@example.com",
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		t.Fatal(err)
	}
	checkinBody, _ := json.Marshal(map[string]string{"qr_data": qrData})

	rec = stack.do(t, http.MethodPost, "/api/events/event-1/checkin", string(checkinBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("checkin status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var checkedIn map[string]any
	json.Unmarshal(rec.Body.Bytes(), &checkedIn)
	if checkedIn["message"] != "Check-in successful" {
		t.Errorf("checkin message = %v", checkedIn["message"])
	}

	// 5. 再チェックインは冪等に成功する
	rec = stack.do(t, http.MethodPost, "/api/events/event-1/checkin", string(checkinBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("duplicate checkin status = %d", rec.Code)
	}
	json.Unmarshal(rec.Body.Bytes(), &checkedIn)
	if checkedIn["message"] != "Already checked in" {
		t.Errorf("duplicate checkin message = %v", checkedIn["message"])
	}

	// 6. 存在しないイベントへのチェックインは404
	rec = stack.do(t, http.MethodPost, "/api/events/event-2/checkin", string(checkinBody))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown event checkin status = %d, want 404", rec.Code)
	}
}

// TestRouter_ParticipantListRequiresStaff は参加者一覧がスタッフ認証を
// 要求することを検証する。
func TestRouter_ParticipantListRequiresStaff(t *testing.T) {
	stack := newTestStack(t, okHealthChecker{})

	// 未認証は401
	rec := stack.do(t, http.MethodGet, "/api/events/event-1/participants", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}

	// スタッフアカウントを登録してログイン
	hash, err := bcrypt.GenerateFromPassword([]byte("staff-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	stack.staff.Create(context.Background(), &model.StaffUser{
		ID:           "staff-1",
		Email:        "admin@kolokwa.tech",
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	})

	rec = stack.do(t, http.MethodPost, "/api/auth",
		`{"email":"admin@kolokwa.tech","password":"staff-pass"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var authCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.AuthCookieName {
			authCookie = c
		}
	}
	if authCookie == nil {
		t.Fatal("login should set the auth cookie")
	}

	// 認証済みは200
	rec = stack.do(t, http.MethodGet, "/api/events/event-1/participants", "", authCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Participants []any `json:"participants"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
}

// TestRouter_Health はヘルスチェックエンドポイントを検証する。
func TestRouter_Health(t *testing.T) {
	stack := newTestStack(t, okHealthChecker{})

	rec := stack.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "ok" {
		t.Errorf("status = %q", body["status"])
	}
}

// TestRouter_HealthUnhealthy はDB接続不可時に503を返すことを検証する。
func TestRouter_HealthUnhealthy(t *testing.T) {
	stack := newTestStack(t, failHealthChecker{})

	rec := stack.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

// TestRouter_SecurityHeaders は全ルートにセキュリティヘッダーが付与される
// ことを検証する。
func TestRouter_SecurityHeaders(t *testing.T) {
	stack := newTestStack(t, okHealthChecker{})

	rec := stack.do(t, http.MethodGet, "/health", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}
