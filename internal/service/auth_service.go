package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"userhub/internal/auth"
	apperrors "userhub/internal/errors"
	"userhub/internal/metrics"
	"userhub/internal/model"
	"userhub/internal/repository"
)

// RegisterInput carries the fields accepted at registration. Role is always
// forced to the default user role; only the admin surface may choose one.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
	DOB       time.Time
}

// AuthService orchestrates the session lifecycle: registration, login with
// token issuance, refresh with rotation, logout, and password changes.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error)
	Refresh(ctx context.Context, presented string) (accessToken, refreshToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

type authService struct {
	users repository.UserRepository
	jwt   *auth.JWTService
}

// NewAuthService creates the session manager.
func NewAuthService(users repository.UserRepository, jwt *auth.JWTService) AuthService {
	return &authService{users: users, jwt: jwt}
}

// checkIdentityFree verifies that neither the email nor the phone number is
// already registered, since both carry unique indexes on the user table.
func checkIdentityFree(ctx context.Context, users repository.UserRepository, email, phone string) error {
	existing, err := users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check email existence: %w", err)
	}

	existing, err = users.FindByPhone(ctx, phone)
	if err == nil && existing != nil {
		return apperrors.ErrPhoneTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check phone existence: %w", err)
	}
	return nil
}

// Register creates a new user. The plaintext password is hashed by the
// repository before the record is first persisted.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := checkIdentityFree(ctx, s.users, in.Email, in.Phone); err != nil {
		return nil, err
	}

	user := &model.User{
		ID:        uuid.New().String(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
		Role:      model.RoleUser,
		Phone:     in.Phone,
		DOB:       in.DOB,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.RegistrationsTotal.Inc()
	return user, nil
}

// Login verifies credentials and opens a session: a one-hour access token plus
// a fresh refresh token that replaces whatever the user record held before.
// A failed password check never touches the stored refresh token.
func (s *authService) Login(ctx context.Context, email, password string) (string, string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.LoginsTotal.WithLabelValues("unknown_email").Inc()
			return "", "", nil, apperrors.ErrEmailNotFound
		}
		return "", "", nil, fmt.Errorf("find user: %w", err)
	}

	if !auth.CheckPassword(password, user.Password) {
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		return "", "", nil, apperrors.ErrInvalidCredentials
	}

	accessToken, err := s.jwt.SignAccessToken(user.ID, user.Role)
	if err != nil {
		return "", "", nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := s.jwt.SignRefreshToken(user.ID)
	if err != nil {
		return "", "", nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return "", "", nil, fmt.Errorf("store refresh token: %w", err)
	}
	user.RefreshToken = refreshToken

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return accessToken, refreshToken, user, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The presented
// token must both verify cryptographically and equal the value currently on
// the user record; rotation happens as a compare-and-swap, so a concurrent
// refresh or logout makes this call fail instead of silently double-issuing.
func (s *authService) Refresh(ctx context.Context, presented string) (string, string, error) {
	claims, err := s.jwt.VerifyRefreshToken(presented)
	if err != nil {
		metrics.RefreshesTotal.WithLabelValues("invalid_token").Inc()
		return "", "", apperrors.ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.RefreshesTotal.WithLabelValues("no_session").Inc()
			return "", "", apperrors.ErrInvalidRefreshToken
		}
		return "", "", fmt.Errorf("find user: %w", err)
	}

	// Anti-replay guard: a rotated-out token is rejected even while its
	// signature and expiry are still valid.
	if user.RefreshToken == "" || user.RefreshToken != presented {
		metrics.RefreshesTotal.WithLabelValues("no_session").Inc()
		return "", "", apperrors.ErrInvalidRefreshToken
	}

	accessToken, err := s.jwt.SignAccessToken(user.ID, user.Role)
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := s.jwt.SignRefreshToken(user.ID)
	if err != nil {
		return "", "", fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.users.RotateRefreshToken(ctx, user.ID, presented, refreshToken); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.RefreshesTotal.WithLabelValues("lost_race").Inc()
			return "", "", apperrors.ErrInvalidRefreshToken
		}
		return "", "", fmt.Errorf("rotate refresh token: %w", err)
	}

	metrics.RefreshesTotal.WithLabelValues("ok").Inc()
	return accessToken, refreshToken, nil
}

// Logout closes the session holding refreshToken. Clearing an already-cleared
// session reports ErrSessionNotFound but has no further effect.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return apperrors.ErrSessionNotFound
	}
	rows, err := s.users.ClearRefreshTokenByValue(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	if rows == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

// ChangePassword re-hashes and persists a new password after the current one
// verifies. Session state is left untouched.
func (s *authService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	if !auth.CheckPassword(currentPassword, user.Password) {
		return apperrors.ErrInvalidCredentials
	}

	user.Password = newPassword
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
