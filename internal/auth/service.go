package auth

import (
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"companion-lite/config"
	"companion-lite/internal/user"
)

// Classifiable sign-up/sign-in outcomes
var (
	ErrPasswordAuthDisabled = errors.New("password authentication is disabled")
	ErrReservedEmail        = errors.New("email is reserved")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrGoogleOnlyAccount    = errors.New("account uses google sign-in")
	ErrBlocked              = errors.New("account is blocked")
	ErrGoogleAuthFailed     = errors.New("google authentication failed")
	ErrEmailNotVerified     = errors.New("google email is not verified")
	ErrGmailOnly            = errors.New("gmail account required")
)

// GoogleTokenVerifier validates a Google ID token
type GoogleTokenVerifier interface {
	Verify(idToken string) (*GoogleIdentity, error)
}

// Service handles signup and login against the account store
type Service struct {
	storage  *user.Storage
	verifier GoogleTokenVerifier
	cfg      *config.Config
}

// NewService creates an auth service
func NewService(storage *user.Storage, cfg *config.Config) *Service {
	return &Service{
		storage:  storage,
		verifier: NewGoogleVerifier(cfg.Auth.GoogleClientID),
		cfg:      cfg,
	}
}

// SessionUser is the identity payload returned to the client
type SessionUser struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email"`
	Admin     bool   `json:"admin"`
	IsBlocked bool   `json:"isBlocked"`
}

// Session couples a signed token with its identity
type Session struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

func (s *Service) tokenTTL() time.Duration {
	hours := s.cfg.Auth.JWTExpiresHours
	if hours <= 0 {
		hours = 168
	}
	return time.Duration(hours) * time.Hour
}

func (s *Service) issueUserToken(u *user.User) (*Session, error) {
	token, err := GenerateToken(u.ID, u.Email, false, []byte(s.cfg.Auth.JWTSecret), s.tokenTTL())
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{
		Token: token,
		User:  SessionUser{ID: u.ID, Email: u.Email, IsBlocked: u.IsBlocked},
	}, nil
}

// isAdminCredentials checks the login against the configured admin identity.
// The admin has no stored record; it authenticates through the same form.
func (s *Service) isAdminCredentials(email, password string) bool {
	adminEmail := s.cfg.Auth.AdminEmail
	adminPassword := s.cfg.Auth.AdminPassword
	if adminEmail == "" || adminPassword == "" {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(user.NormalizeEmail(email)), []byte(adminEmail)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(adminPassword)) == 1
	return emailOK && passOK
}

func (s *Service) isAdminEmail(email string) bool {
	return s.cfg.Auth.AdminEmail != "" && user.NormalizeEmail(email) == s.cfg.Auth.AdminEmail
}

// Signup registers a local-password account and returns a session
func (s *Service) Signup(email, password string) (*Session, error) {
	if s.cfg.Auth.RequireGoogleAuth {
		return nil, ErrPasswordAuthDisabled
	}
	if s.isAdminEmail(email) {
		return nil, ErrReservedEmail
	}

	if _, err := s.storage.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		Email:        email,
		PasswordHash: hash,
		AuthProvider: user.ProviderLocal,
	}
	if err := s.storage.Create(u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issueUserToken(u)
}

// Login authenticates a password login. Configured admin credentials take
// the hidden admin path and yield an administrative session with no user id.
func (s *Service) Login(email, password string) (*Session, error) {
	if s.isAdminCredentials(email, password) {
		token, err := GenerateToken("", user.NormalizeEmail(email), true, []byte(s.cfg.Auth.JWTSecret), s.tokenTTL())
		if err != nil {
			return nil, fmt.Errorf("sign token: %w", err)
		}
		return &Session{
			Token: token,
			User:  SessionUser{Email: user.NormalizeEmail(email), Admin: true},
		}, nil
	}

	if s.cfg.Auth.RequireGoogleAuth {
		return nil, ErrPasswordAuthDisabled
	}

	u, err := s.storage.GetByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if u.PasswordHash == "" {
		return nil, ErrGoogleOnlyAccount
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if u.IsBlocked {
		return nil, ErrBlocked
	}

	return s.issueUserToken(u)
}

// GoogleLogin verifies a Google ID token and creates or adopts the account
func (s *Service) GoogleLogin(credential string) (*Session, error) {
	ident, err := s.verifier.Verify(credential)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGoogleAuthFailed, err)
	}

	if !ident.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	if s.cfg.Auth.GmailOnly && !strings.HasSuffix(ident.Email, "@gmail.com") {
		return nil, ErrGmailOnly
	}
	if s.isAdminEmail(ident.Email) {
		return nil, ErrReservedEmail
	}

	u, err := s.storage.GetByEmail(ident.Email)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		u = &user.User{
			Email:         ident.Email,
			AuthProvider:  user.ProviderGoogle,
			GoogleSub:     ident.Sub,
			EmailVerified: true,
		}
		if err := s.storage.Create(u); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("lookup user: %w", err)
	default:
		// Existing local account signing in with Google keeps its record
		if err := s.storage.AdoptGoogleIdentity(u.ID, ident.Sub); err != nil {
			return nil, fmt.Errorf("adopt google identity: %w", err)
		}
	}

	if u.IsBlocked {
		return nil, ErrBlocked
	}

	return s.issueUserToken(u)
}
