package chat

import "errors"

// Abort reasons for a chat turn. Each terminal outcome is a distinct
// sentinel so the HTTP layer can pick a status without parsing text.
var (
	ErrMessageRequired  = errors.New("message is required")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserBlocked      = errors.New("account is blocked")
	ErrAdminNoChat      = errors.New("administrative identity cannot chat")
	ErrQuotaExceeded    = errors.New("daily message limit reached")
	ErrCompletionFailed = errors.New("completion unavailable")
)
