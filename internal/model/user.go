package model

import "time"

// User represents a staff or table account as stored in the `users` table.
// The json tags are omitted here because these structs are primarily used
// internally; handlers define their own response types.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique login.
//  PasswordHash – bcrypt hashed password.
//  Role         – one of the Role constants.
//  IsActive     – inactive accounts cannot log in and receive no reports.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA‑256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// Actor identifies who performs an operation.
type Actor struct {
	UserID uint64
	Role   Role
}
