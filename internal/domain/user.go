package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the actor who records movements and manages the catalog. RA (the
// academic registration number) is the unique login identifier; the password
// is stored as a bcrypt hash only.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	RA           string    `json:"ra"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken is a DB-backed token that lets a user obtain new access tokens
// until it expires or is revoked on logout.
type RefreshToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}
