package model

import "time"

// Role is the authorization role assigned to a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an account in the system. Password holds only a bcrypt hash
// once persisted; RefreshToken holds the single currently-valid refresh token,
// or "" when the user has no active session. Password, RefreshToken and Role
// are never serialized to clients.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	FirstName    string    `json:"firstName" gorm:"size:255;not null"`
	LastName     string    `json:"lastName" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Password     string    `json:"-" gorm:"size:255;not null"`
	RefreshToken string    `json:"-" gorm:"size:512"`
	Role         Role      `json:"-" gorm:"size:50;default:'user'"`
	Phone        string    `json:"phone" gorm:"uniqueIndex;size:32"`
	DOB          time.Time `json:"dob" gorm:"type:date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// loadedPassword is the hash captured when the record was read from the
	// store. Saving re-hashes Password only when it differs from this value,
	// so an already-hashed value is never hashed twice.
	loadedPassword string
}

// SnapshotPassword captures the currently loaded hash. The repository calls
// this after every read, in place of an ORM post-load hook.
func (u *User) SnapshotPassword() {
	u.loadedPassword = u.Password
}

// PasswordChanged reports whether Password was replaced since the record was
// loaded, meaning it holds plaintext that still needs hashing.
func (u *User) PasswordChanged() bool {
	return u.Password != u.loadedPassword
}
