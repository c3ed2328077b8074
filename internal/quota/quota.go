package quota

import (
	"time"

	"companion-lite/internal/user"
)

const dayFormat = "2006-01-02"

// Resetter zeroes a user's daily counter when the UTC calendar day rolls over
type Resetter struct {
	storage *user.Storage
}

// NewResetter creates a new quota resetter
func NewResetter(storage *user.Storage) *Resetter {
	return &Resetter{storage: storage}
}

// EnsureFresh resets the counter if now falls on a different UTC day than
// the last reset. Idempotent within the same day. The in-memory user is
// only mutated after the store accepted the write.
func (r *Resetter) EnsureFresh(u *user.User, now time.Time) error {
	today := now.UTC().Format(dayFormat)

	last := ""
	if !u.LastResetDate.IsZero() {
		last = u.LastResetDate.UTC().Format(dayFormat)
	}
	if last == today {
		return nil
	}

	if err := r.storage.UpdateQuota(u.ID, 0, now); err != nil {
		return err
	}

	u.MessagesUsedToday = 0
	u.LastResetDate = now
	return nil
}
