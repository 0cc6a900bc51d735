package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// PasswordHash holds a bcrypt hash and must never be serialized into responses.
//
// RefreshToken / RefreshTokenExpiryTime are reserved for the session-refresh
// flow owned by the login service; this service only carries the columns.
type User struct {
	ID                     int64
	Username               string
	Email                  string
	PasswordHash           string
	AvatarURL              string
	IsActive               bool
	LastLoginAt            *time.Time
	RefreshToken           *string
	RefreshTokenExpiryTime *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Profile is the read-only projection returned by the API. It deliberately
// carries no password field.
type Profile struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Projection maps the entity into its public profile view.
func (u *User) Projection() *Profile {
	return &Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}
