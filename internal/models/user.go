package models

// User is created once at signup and never mutated afterwards. Tasks hold
// the owning reference; a user owns zero or more tasks.
type User struct {
	ID           int64   `json:"id"`
	Email        string  `json:"email"`
	Username     *string `json:"username,omitempty"`
	PasswordHash string  `json:"-"` // never serialized
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SignupRequest struct {
	Email    string  `json:"email" binding:"required"`
	Username *string `json:"username"`
	Password string  `json:"password" binding:"required"`
}
