package auth

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/xarrijorge/kolokwa/internal/model"
	"github.com/xarrijorge/kolokwa/internal/repository"
)

// RoleParticipant は参加者アカウントのロール。
// スタッフロールはmodel側に定義されている。
const RoleParticipant = "participant"

// LoginResult はログイン成功時の結果を表す。
type LoginResult struct {
	UserID   string
	Email    string
	Name     string
	Username string
	Role     string
	Token    string
}

// Service はパスワード認証のビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	staffRepo repository.StaffRepository
	tokens    *TokenManager
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, staffRepo repository.StaffRepository, tokens *TokenManager) *Service {
	return &Service{
		userRepo:  userRepo,
		staffRepo: staffRepo,
		tokens:    tokens,
	}
}

// LoginParticipant は参加者アカウントのパスワード認証を行い、JWTを発行する。
// 認証失敗はユーザー不在とパスワード不一致を区別せずUnauthorizedを返す。
// 未検証アカウントはAccountNotVerifiedを返す。
func (s *Service) LoginParticipant(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, model.NewValidationError("Email and password required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.NewUnauthorizedError()
	}

	if !user.Verified {
		return nil, model.NewAccountNotVerifiedError()
	}

	token, err := s.tokens.Sign(user.ID, user.Email, RoleParticipant)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("participant logged in", slog.String("user_id", user.ID))

	return &LoginResult{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Username: user.Username,
		Role:     RoleParticipant,
		Token:    token,
	}, nil
}

// LoginStaff はスタッフアカウントのパスワード認証を行い、JWTを発行する。
func (s *Service) LoginStaff(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, model.NewValidationError("email and password required")
	}

	staff, err := s.staffRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find staff: %w", err)
	}
	if staff == nil {
		return nil, model.NewUnauthorizedError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password)); err != nil {
		return nil, model.NewUnauthorizedError()
	}

	role := staff.Role
	if role == "" {
		role = model.RoleStaff
	}

	token, err := s.tokens.Sign(staff.ID, staff.Email, role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("staff logged in",
		slog.String("staff_id", staff.ID),
		slog.String("role", role),
	)

	return &LoginResult{
		UserID: staff.ID,
		Email:  staff.Email,
		Role:   role,
		Token:  token,
	}, nil
}

// VerifyToken はJWTを検証し、クレームを返す。
// GET /api/auth（現在のログイン状態の照会）とミドルウェアで使用する。
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	return s.tokens.Verify(tokenString)
}
