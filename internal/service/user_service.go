package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"userhub/internal/cache"
	apperrors "userhub/internal/errors"
	"userhub/internal/model"
	"userhub/internal/repository"
)

const profileCacheTTL = 5 * time.Minute

// UpdateProfileInput carries the fields a user may change on their own record.
// Nil pointers leave the current value untouched.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	DOB       *time.Time
}

// CreateUserInput is the admin variant of registration: the role is chosen.
type CreateUserInput struct {
	RegisterInput
	Role model.Role
}

// UserService exposes profile reads and updates plus the admin-only
// user-management operations.
type UserService interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (*model.User, error)
	ListUsers(ctx context.Context, q repository.SearchQuery) ([]model.User, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type userService struct {
	users repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(users repository.UserRepository, cache *cache.Client) UserService {
	return &userService{users: users, cache: cache}
}

func profileCacheKey(id string) string {
	return "user:" + id
}

// GetUser reads a public profile, cache-aside. The cached payload is the
// JSON view of the record, so hashes and session tokens never enter redis.
func (s *userService) GetUser(ctx context.Context, id string) (*model.User, error) {
	if data := s.cache.Get(ctx, profileCacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if payload, err := json.Marshal(user); err == nil {
		s.cache.Set(ctx, profileCacheKey(id), payload, profileCacheTTL)
	}
	return user, nil
}

// UpdateProfile applies the caller's own profile changes and drops the cached
// view. The password is not reachable from here, so the repository's
// hash-if-changed guard sees an unchanged hash and leaves it alone.
func (s *userService) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Phone != nil && *in.Phone != user.Phone {
		existing, err := s.users.FindByPhone(ctx, *in.Phone)
		if err == nil && existing != nil {
			return nil, apperrors.ErrPhoneTaken
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check phone existence: %w", err)
		}
		user.Phone = *in.Phone
	}
	if in.DOB != nil {
		user.DOB = *in.DOB
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.cache.Delete(ctx, profileCacheKey(id))
	return user, nil
}

// ListUsers pages through users matching the search query.
func (s *userService) ListUsers(ctx context.Context, q repository.SearchQuery) ([]model.User, error) {
	return s.users.Search(ctx, q)
}

// CreateUser creates a user with an explicitly chosen role.
func (s *userService) CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error) {
	if !in.Role.Valid() {
		in.Role = model.RoleUser
	}

	if err := checkIdentityFree(ctx, s.users, in.Email, in.Phone); err != nil {
		return nil, err
	}

	user := &model.User{
		ID:        uuid.New().String(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
		Role:      in.Role,
		Phone:     in.Phone,
		DOB:       in.DOB,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user and its cached profile.
func (s *userService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.cache.Delete(ctx, profileCacheKey(id))
	return nil
}
