package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"userhub/internal/auth"
	apperrors "userhub/internal/errors"
	"userhub/internal/model"
	"userhub/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUserRepository) RotateRefreshToken(ctx context.Context, id, current, next string) error {
	args := m.Called(ctx, id, current, next)
	return args.Error(0)
}

func (m *MockUserRepository) ClearRefreshTokenByValue(ctx context.Context, token string) (int64, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Search(ctx context.Context, q repository.SearchQuery) ([]model.User, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-access-secret", "test-refresh-secret")
}

func registerInput(email string) RegisterInput {
	return RegisterInput{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "password123",
		Phone:     "+1555000111",
		DOB:       time.Date(1995, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "successful registration",
			email: "test@example.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByPhone", mock.Anything, "+1555000111").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:  "email already exists",
			email: "existing@example.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name:  "phone already exists",
			email: "new@example.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByPhone", mock.Anything, "+1555000111").Return(&model.User{Phone: "+1555000111"}, nil)
			},
			expectedError: apperrors.ErrPhoneTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewAuthService(mockRepo, newTestJWTService())
			user, err := svc.Register(context.Background(), registerInput(tt.email))

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, model.RoleUser, user.Role)
				assert.NotEmpty(t, user.ID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashed, err := auth.HashPassword("password123")
	assert.NoError(t, err)

	storedUser := func() *model.User {
		u := &model.User{
			ID:       "user-1",
			Email:    "test@example.com",
			Password: hashed,
			Role:     model.RoleUser,
		}
		u.SnapshotPassword()
		return u
	}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(storedUser(), nil)
				m.On("SetRefreshToken", mock.Anything, "user-1", mock.AnythingOfType("string")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "unknown email",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrEmailNotFound,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "wrong-password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(storedUser(), nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewAuthService(mockRepo, newTestJWTService())
			accessToken, refreshToken, user, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
				assert.Nil(t, user)
				// A failed login must never touch the stored session.
				mockRepo.AssertNotCalled(t, "SetRefreshToken", mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, accessToken)
				assert.NotEmpty(t, refreshToken)
				assert.NotNil(t, user)
				assert.Equal(t, refreshToken, user.RefreshToken)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Refresh_Rotation(t *testing.T) {
	jwtService := newTestJWTService()

	rt1, err := jwtService.SignRefreshToken("user-1")
	assert.NoError(t, err)

	userWithToken := func(token string) *model.User {
		return &model.User{ID: "user-1", Role: model.RoleUser, RefreshToken: token}
	}

	t.Run("valid token is exchanged and rotated", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, "user-1").Return(userWithToken(rt1), nil)
		mockRepo.On("RotateRefreshToken", mock.Anything, "user-1", rt1, mock.AnythingOfType("string")).Return(nil)

		svc := NewAuthService(mockRepo, jwtService)
		accessToken, refreshToken, err := svc.Refresh(context.Background(), rt1)

		assert.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		assert.NotEmpty(t, refreshToken)
		assert.NotEqual(t, rt1, refreshToken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("rotated-out token is rejected even though unexpired", func(t *testing.T) {
		rt2, err := jwtService.SignRefreshToken("user-1")
		assert.NoError(t, err)

		// The store already holds rt2; presenting rt1 again must fail.
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, "user-1").Return(userWithToken(rt2), nil)

		svc := NewAuthService(mockRepo, jwtService)
		_, _, err = svc.Refresh(context.Background(), rt1)

		assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
		mockRepo.AssertNotCalled(t, "RotateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cleared session is rejected", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, "user-1").Return(userWithToken(""), nil)

		svc := NewAuthService(mockRepo, jwtService)
		_, _, err := svc.Refresh(context.Background(), rt1)

		assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	})

	t.Run("losing the rotation race is rejected", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, "user-1").Return(userWithToken(rt1), nil)
		mockRepo.On("RotateRefreshToken", mock.Anything, "user-1", rt1, mock.AnythingOfType("string")).
			Return(gorm.ErrRecordNotFound)

		svc := NewAuthService(mockRepo, jwtService)
		_, _, err := svc.Refresh(context.Background(), rt1)

		assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("garbage token is rejected without a lookup", func(t *testing.T) {
		mockRepo := new(MockUserRepository)

		svc := NewAuthService(mockRepo, jwtService)
		_, _, err := svc.Refresh(context.Background(), "not-a-token")

		assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
		mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Logout(t *testing.T) {
	tests := []struct {
		name          string
		token         string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "session cleared",
			token: "some-refresh-token",
			setupMock: func(m *MockUserRepository) {
				m.On("ClearRefreshTokenByValue", mock.Anything, "some-refresh-token").Return(int64(1), nil)
			},
			expectedError: nil,
		},
		{
			name:  "no matching session",
			token: "stale-token",
			setupMock: func(m *MockUserRepository) {
				m.On("ClearRefreshTokenByValue", mock.Anything, "stale-token").Return(int64(0), nil)
			},
			expectedError: apperrors.ErrSessionNotFound,
		},
		{
			name:          "missing cookie value",
			token:         "",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrSessionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewAuthService(mockRepo, newTestJWTService())
			err := svc.Logout(context.Background(), tt.token)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	hashed, err := auth.HashPassword("old-password")
	assert.NoError(t, err)

	loadedUser := func() *model.User {
		u := &model.User{ID: "user-1", Email: "test@example.com", Password: hashed}
		u.SnapshotPassword()
		return u
	}

	t.Run("wrong current password leaves the hash untouched", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, "user-1").Return(loadedUser(), nil)

		svc := NewAuthService(mockRepo, newTestJWTService())
		err := svc.ChangePassword(context.Background(), "user-1", "not-the-password", "new-password")

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("correct current password persists the new one", func(t *testing.T) {
		user := loadedUser()
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, "user-1").Return(user, nil)
		mockRepo.On("Update", mock.Anything, user).Return(nil)

		svc := NewAuthService(mockRepo, newTestJWTService())
		err := svc.ChangePassword(context.Background(), "user-1", "old-password", "new-password")

		assert.NoError(t, err)
		// The plaintext replacement is flagged for hashing by the repository.
		assert.True(t, user.PasswordChanged())
		assert.Equal(t, "new-password", user.Password)
		mockRepo.AssertExpectations(t)
	})
}
