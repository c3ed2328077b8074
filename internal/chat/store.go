package chat

import (
	"database/sql"

	"github.com/google/uuid"
)

// Store is the append-only conversation log
type Store struct {
	db *sql.DB
}

// NewStore creates a conversation store over an open database
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append persists a turn, assigning an ID if the caller did not.
// Turns are never updated or deleted. Timestamps are stored in UTC so
// that SQL-side day bucketing and ordering compare like with like.
func (s *Store) Append(m *Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.Timestamp = m.Timestamp.UTC()
	_, err := s.db.Exec(`
		INSERT INTO messages (id, user_id, role, content, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.UserID, m.Role, m.Content, m.Timestamp)
	return err
}

const messageColumns = `id, user_id, role, content, timestamp`

func (s *Store) queryMessages(query string, args ...any) ([]Message, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// Recent returns up to limit turns for a user, newest first.
// Insertion order breaks timestamp ties.
func (s *Store) Recent(userID string, limit int) ([]Message, error) {
	return s.queryMessages(`
		SELECT `+messageColumns+` FROM messages
		WHERE user_id = ?
		ORDER BY timestamp DESC, seq DESC
		LIMIT ?
	`, userID, limit)
}

// History returns up to limit turns for a user in chronological order
func (s *Store) History(userID string, limit int) ([]Message, error) {
	return s.queryMessages(`
		SELECT `+messageColumns+` FROM messages
		WHERE user_id = ?
		ORDER BY timestamp ASC, seq ASC
		LIMIT ?
	`, userID, limit)
}
