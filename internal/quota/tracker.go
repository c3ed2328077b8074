package quota

import (
	"database/sql"
	"time"
)

// Tracker aggregates usage statistics for the admin overview
type Tracker struct {
	db *sql.DB
}

// NewTracker creates a new usage tracker
func NewTracker(db *sql.DB) *Tracker {
	return &Tracker{db: db}
}

// Overview represents site-wide usage numbers
type Overview struct {
	TotalUsers    int64 `json:"totalUsers"`
	BlockedUsers  int64 `json:"blockedUsers"`
	MessagesToday int64 `json:"totalMessagesToday"`
}

// GetOverview counts users and the user-authored messages sent during the
// current UTC day
func (t *Tracker) GetOverview(now time.Time) (*Overview, error) {
	var o Overview

	err := t.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&o.TotalUsers)
	if err != nil {
		return nil, err
	}

	err = t.db.QueryRow(`SELECT COUNT(*) FROM users WHERE is_blocked = 1`).Scan(&o.BlockedUsers)
	if err != nil {
		return nil, err
	}

	dayStart := now.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)
	err = t.db.QueryRow(`
		SELECT COUNT(*) FROM messages
		WHERE role = 'user' AND timestamp >= ? AND timestamp < ?
	`, dayStart, dayEnd).Scan(&o.MessagesToday)
	if err != nil {
		return nil, err
	}

	return &o, nil
}

// DailyCount is one day's worth of user messages
type DailyCount struct {
	Day      string `json:"day"`
	Messages int64  `json:"messages"`
}

// GetDailyCounts returns user-message counts per UTC day for the last n days
func (t *Tracker) GetDailyCounts(now time.Time, days int) ([]DailyCount, error) {
	since := now.UTC().Truncate(24 * time.Hour).AddDate(0, 0, -(days - 1))

	rows, err := t.db.Query(`
		SELECT strftime('%Y-%m-%d', timestamp) AS day, COUNT(*)
		FROM messages
		WHERE role = 'user' AND timestamp >= ?
		GROUP BY day
		ORDER BY day
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []DailyCount
	for rows.Next() {
		var c DailyCount
		if err := rows.Scan(&c.Day, &c.Messages); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}
