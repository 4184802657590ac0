package repository

import (
	"context"

	"gorm.io/gorm"

	"userhub/internal/auth"
	"userhub/internal/model"
)

// SearchQuery controls admin listing. SearchText matches email, first name and
// last name with a LIKE filter.
type SearchQuery struct {
	Page       int
	Limit      int
	SearchText string
}

// DefaultPageLimit is used when a listing request does not set a limit.
const DefaultPageLimit = 7

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	// SetRefreshToken unconditionally replaces the stored refresh token.
	SetRefreshToken(ctx context.Context, id, token string) error
	// RotateRefreshToken replaces current with next only if current is still
	// the stored value. Returns gorm.ErrRecordNotFound when another writer
	// rotated or cleared the token first.
	RotateRefreshToken(ctx context.Context, id, current, next string) error
	// ClearRefreshTokenByValue empties the stored token on whichever user
	// holds it, reporting how many rows matched.
	ClearRefreshTokenByValue(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q SearchQuery) ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	// Plaintext must never reach the table: hash whatever has not been
	// hashed yet, then snapshot so a later Update does not hash again.
	if user.PasswordChanged() {
		hashed, err := auth.HashPassword(user.Password)
		if err != nil {
			return err
		}
		user.Password = hashed
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}
	user.SnapshotPassword()
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	if user.PasswordChanged() {
		hashed, err := auth.HashPassword(user.Password)
		if err != nil {
			return err
		}
		user.Password = hashed
	}
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return err
	}
	user.SnapshotPassword()
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	user.SnapshotPassword()
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	user.SnapshotPassword()
	return &user, nil
}

func (r *userRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, err
	}
	user.SnapshotPassword()
	return &user, nil
}

func (r *userRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("refresh_token", token).Error
}

func (r *userRepository) RotateRefreshToken(ctx context.Context, id, current, next string) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND refresh_token = ?", id, current).
		Update("refresh_token", next)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) ClearRefreshTokenByValue(ctx context.Context, token string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("refresh_token = ?", token).
		Update("refresh_token", "")
	return res.RowsAffected, res.Error
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) Search(ctx context.Context, q SearchQuery) ([]model.User, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}

	query := r.db.WithContext(ctx).
		Model(&model.User{}).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit)

	if q.SearchText != "" {
		like := "%" + q.SearchText + "%"
		query = query.Where(
			"email LIKE ? OR first_name LIKE ? OR last_name LIKE ?",
			like, like, like,
		)
	}

	var users []model.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
