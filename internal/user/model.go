package user

import "time"

// AuthProvider identifies how an account authenticates
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

// User represents a registered or federated account
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	AuthProvider AuthProvider `json:"auth_provider"`
	GoogleSub    string       `json:"-"`
	EmailVerified bool        `json:"email_verified"`
	IsBlocked     bool        `json:"isBlocked"`

	// Quota state; MessagesUsedToday is only meaningful relative to
	// LastResetDate (zero value means the counter has never been reset).
	MessagesUsedToday int       `json:"messagesUsedToday"`
	LastResetDate     time.Time `json:"lastResetDate"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
