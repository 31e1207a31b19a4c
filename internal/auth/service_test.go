package auth

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/xarrijorge/kolokwa/internal/model"
)

// --- モック ---

type mockUserRepo struct {
	findByEmailFunc func(ctx context.Context, email string) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.findByEmailFunc(ctx, email)
}

type mockStaffRepo struct {
	findByEmailFunc func(ctx context.Context, email string) (*model.StaffUser, error)
}

func (m *mockStaffRepo) FindByEmail(ctx context.Context, email string) (*model.StaffUser, error) {
	return m.findByEmailFunc(ctx, email)
}

func (m *mockStaffRepo) Create(ctx context.Context, staff *model.StaffUser) error { return nil }

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

func newTestService(userRepo *mockUserRepo, staffRepo *mockStaffRepo) *Service {
	return NewService(userRepo, staffRepo, NewTokenManager("test-secret", time.Hour))
}

// --- 参加者ログイン ---

// TestLoginParticipant_Success は正常系のログインがJWTを発行することを検証する。
func TestLoginParticipant_Success(t *testing.T) {
	userRepo := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{
				ID:           "user-1",
				Email:        email,
				PasswordHash: hashOf(t, "secret-pass"),
				Name:         "Alice",
				Username:     "alice",
				Verified:     true,
			}, nil
		},
	}
	svc := newTestService(userRepo, &mockStaffRepo{})

	result, err := svc.LoginParticipant(context.Background(), "alice@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("LoginParticipant failed: %v", err)
	}

	if result.Role != RoleParticipant {
		t.Errorf("Role = %q, want participant", result.Role)
	}

	claims, err := svc.VerifyToken(result.Token)
	if err != nil {
		t.Fatalf("issued token should verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != RoleParticipant {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

// TestLoginParticipant_WrongPassword はパスワード不一致がUnauthorizedになることを検証する。
// ユーザー不在との区別は応答から判別できない。
func TestLoginParticipant_WrongPassword(t *testing.T) {
	userRepo := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{
				ID:           "user-1",
				Email:        email,
				PasswordHash: hashOf(t, "secret-pass"),
				Verified:     true,
			}, nil
		},
	}
	svc := newTestService(userRepo, &mockStaffRepo{})

	_, err := svc.LoginParticipant(context.Background(), "alice@example.com", "wrong-pass")
	apiErr, ok := err.(*model.APIError)
	if !ok || apiErr.Code != model.ErrCodeUnauthorized {
		t.Errorf("err = %v, want UnauthorizedError", err)
	}
}

// TestLoginParticipant_UnknownUser は未登録メールアドレスがUnauthorizedになることを検証する。
func TestLoginParticipant_UnknownUser(t *testing.T) {
	userRepo := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return nil, nil
		},
	}
	svc := newTestService(userRepo, &mockStaffRepo{})

	_, err := svc.LoginParticipant(context.Background(), "unknown@example.com", "secret-pass")
	apiErr, ok := err.(*model.APIError)
	if !ok || apiErr.Code != model.ErrCodeUnauthorized {
		t.Errorf("err = %v, want UnauthorizedError", err)
	}
}

// TestLoginParticipant_Unverified は未検証アカウントがAccountNotVerifiedになることを検証する。
// パスワード検証を通過した後にのみ未検証を報告する。
func TestLoginParticipant_Unverified(t *testing.T) {
	userRepo := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{
				ID:           "user-1",
				Email:        email,
				PasswordHash: hashOf(t, "secret-pass"),
				Verified:     false,
			}, nil
		},
	}
	svc := newTestService(userRepo, &mockStaffRepo{})

	_, err := svc.LoginParticipant(context.Background(), "alice@example.com", "secret-pass")
	apiErr, ok := err.(*model.APIError)
	if !ok || apiErr.Code != model.ErrCodeNotVerified {
		t.Errorf("err = %v, want AccountNotVerifiedError", err)
	}
}

// --- スタッフログイン ---

// TestLoginStaff_Success はスタッフログインがロール入りJWTを発行することを検証する。
func TestLoginStaff_Success(t *testing.T) {
	staffRepo := &mockStaffRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.StaffUser, error) {
			return &model.StaffUser{
				ID:           "staff-1",
				Email:        email,
				PasswordHash: hashOf(t, "staff-pass"),
				Role:         model.RoleAdmin,
			}, nil
		},
	}
	svc := newTestService(&mockUserRepo{}, staffRepo)

	result, err := svc.LoginStaff(context.Background(), "admin@kolokwa.tech", "staff-pass")
	if err != nil {
		t.Fatalf("LoginStaff failed: %v", err)
	}

	claims, err := svc.VerifyToken(result.Token)
	if err != nil {
		t.Fatalf("issued token should verify: %v", err)
	}
	if claims.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want admin", claims.Role)
	}
}

// TestLoginStaff_WrongPassword はスタッフのパスワード不一致がUnauthorizedになることを検証する。
func TestLoginStaff_WrongPassword(t *testing.T) {
	staffRepo := &mockStaffRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.StaffUser, error) {
			return &model.StaffUser{
				ID:           "staff-1",
				Email:        email,
				PasswordHash: hashOf(t, "staff-pass"),
				Role:         model.RoleStaff,
			}, nil
		},
	}
	svc := newTestService(&mockUserRepo{}, staffRepo)

	_, err := svc.LoginStaff(context.Background(), "admin@kolokwa.tech", "wrong")
	apiErr, ok := err.(*model.APIError)
	if !ok || apiErr.Code != model.ErrCodeUnauthorized {
		t.Errorf("err = %v, want UnauthorizedError", err)
	}
}

// TestLoginStaff_EmptyInput は空の資格情報がValidationErrorになることを検証する。
func TestLoginStaff_EmptyInput(t *testing.T) {
	svc := newTestService(&mockUserRepo{}, &mockStaffRepo{})

	_, err := svc.LoginStaff(context.Background(), "", "")
	apiErr, ok := err.(*model.APIError)
	if !ok || apiErr.Code != model.ErrCodeValidation {
		t.Errorf("err = %v, want ValidationError", err)
	}
}
