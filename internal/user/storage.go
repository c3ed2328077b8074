package user

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"companion-lite/internal/user/migrations"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// Storage handles account persistence
type Storage struct {
	db *sql.DB
}

// NewStorage opens the database and applies pending migrations
func NewStorage(dbPath string) (*Storage, error) {
	if !strings.HasPrefix(dbPath, ":memory:") && !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// Single writer; avoids SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// migrate runs the embedded goose migrations
func (s *Storage) migrate() error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	goose.SetLogger(goose.NopLogger())
	return goose.Up(s.db, ".")
}

// NormalizeEmail lowercases and trims an address for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const userColumns = `id, email, password_hash, auth_provider, google_sub,
	       email_verified, is_blocked, messages_used_today, last_reset_date,
	       created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var passwordHash, googleSub sql.NullString
	var lastReset sql.NullTime

	err := row.Scan(
		&u.ID, &u.Email, &passwordHash, &u.AuthProvider, &googleSub,
		&u.EmailVerified, &u.IsBlocked, &u.MessagesUsedToday, &lastReset,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if passwordHash.Valid {
		u.PasswordHash = passwordHash.String
	}
	if googleSub.Valid {
		u.GoogleSub = googleSub.String
	}
	if lastReset.Valid {
		u.LastResetDate = lastReset.Time
	}

	return &u, nil
}

// GetByID returns a user by ID
func (s *Storage) GetByID(id string) (*User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetByEmail returns a user by normalized email
func (s *Storage) GetByEmail(email string) (*User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, NormalizeEmail(email))
	return scanUser(row)
}

// Create inserts a new user, assigning an ID and timestamps
func (s *Storage) Create(u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = NormalizeEmail(u.Email)
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	var passwordHash, googleSub any
	if u.PasswordHash != "" {
		passwordHash = u.PasswordHash
	}
	if u.GoogleSub != "" {
		googleSub = u.GoogleSub
	}
	var lastReset any
	if !u.LastResetDate.IsZero() {
		lastReset = u.LastResetDate
	}

	_, err := s.db.Exec(`
		INSERT INTO users (id, email, password_hash, auth_provider, google_sub,
		                   email_verified, is_blocked, messages_used_today,
		                   last_reset_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, passwordHash, u.AuthProvider, googleSub,
		u.EmailVerified, u.IsBlocked, u.MessagesUsedToday, lastReset,
		u.CreatedAt, u.UpdatedAt)
	return err
}

// UpdateQuota persists the daily counter and its reset marker
func (s *Storage) UpdateQuota(id string, used int, lastReset time.Time) error {
	_, err := s.db.Exec(`
		UPDATE users SET messages_used_today = ?, last_reset_date = ?, updated_at = ? WHERE id = ?
	`, used, lastReset, time.Now().UTC(), id)
	return err
}

// SetBlocked updates the block flag
func (s *Storage) SetBlocked(id string, blocked bool) error {
	_, err := s.db.Exec(`
		UPDATE users SET is_blocked = ?, updated_at = ? WHERE id = ?
	`, blocked, time.Now().UTC(), id)
	return err
}

// AdoptGoogleIdentity marks an existing account as federated after a
// verified Google sign-in
func (s *Storage) AdoptGoogleIdentity(id, googleSub string) error {
	_, err := s.db.Exec(`
		UPDATE users SET auth_provider = ?, google_sub = ?, email_verified = 1, updated_at = ?
		WHERE id = ?
	`, ProviderGoogle, googleSub, time.Now().UTC(), id)
	return err
}

// List returns all users, newest first
func (s *Storage) List() ([]User, error) {
	rows, err := s.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}

	return users, rows.Err()
}

// Count returns the number of registered users
func (s *Storage) Count() (int64, error) {
	var n int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection
func (s *Storage) DB() *sql.DB {
	return s.db
}
