package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"companion-lite/config"
	"companion-lite/internal/ai"
	"companion-lite/internal/quota"
	"companion-lite/internal/user"
)

// Completer is the completion provider boundary
type Completer interface {
	Complete(ctx context.Context, messages []ai.Message) (string, error)
}

// Service orchestrates one chat turn end to end
type Service struct {
	users         *user.Storage
	store         *Store
	resetter      *quota.Resetter
	completer     Completer
	dailyLimit    int
	contextWindow int
}

// NewService creates the chat service
func NewService(users *user.Storage, store *Store, resetter *quota.Resetter, completer Completer, cfg *config.Config) *Service {
	dailyLimit := cfg.Chat.DailyLimit
	if dailyLimit <= 0 {
		dailyLimit = 40
	}
	contextWindow := cfg.Chat.ContextWindow
	if contextWindow <= 0 {
		contextWindow = 12
	}

	return &Service{
		users:         users,
		store:         store,
		resetter:      resetter,
		completer:     completer,
		dailyLimit:    dailyLimit,
		contextWindow: contextWindow,
	}
}

// DailyLimit returns the configured per-day message limit
func (s *Service) DailyLimit() int {
	return s.dailyLimit
}

// TurnResult is returned for a completed chat turn
type TurnResult struct {
	UserMessage       *Message `json:"userMessage"`
	AssistantMessage  *Message `json:"aiMessage"`
	MessagesUsedToday int      `json:"messagesUsedToday"`
	DailyLimit        int      `json:"dailyLimit"`
}

// PerformTurn runs one request/response cycle: validate the caller and
// message, refresh and check the daily quota, persist the user turn, build
// the context window, call the provider, persist the reply and bump the
// counter. Steps run strictly in order; nothing is retried here. A failed
// completion leaves the already-persisted user turn in place and does not
// consume quota.
//
// The counter bump is a read-increment-write, so simultaneous submissions
// from one account can drift by the number of in-flight requests.
func (s *Service) PerformTurn(ctx context.Context, userID, rawText string, now time.Time) (*TurnResult, error) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return nil, ErrMessageRequired
	}
	if userID == "" {
		// Administrative identities have no conversation
		return nil, ErrAdminNoChat
	}

	u, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u.IsBlocked {
		return nil, ErrUserBlocked
	}

	if err := s.resetter.EnsureFresh(u, now); err != nil {
		return nil, fmt.Errorf("reset quota: %w", err)
	}
	if u.MessagesUsedToday >= s.dailyLimit {
		return nil, ErrQuotaExceeded
	}

	// The user's turn is durable from here on, even if the reply fails
	userMsg := &Message{
		UserID:    u.ID,
		Role:      RoleUser,
		Content:   text,
		Timestamp: now,
	}
	if err := s.store.Append(userMsg); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	window, err := s.buildContext(u.ID)
	if err != nil {
		return nil, fmt.Errorf("build context: %w", err)
	}

	reply, err := s.completer.Complete(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}

	replyAt := time.Now()
	if replyAt.Before(now) {
		replyAt = now
	}
	assistantMsg := &Message{
		UserID:    u.ID,
		Role:      RoleAssistant,
		Content:   reply,
		Timestamp: replyAt,
	}
	if err := s.store.Append(assistantMsg); err != nil {
		return nil, fmt.Errorf("save assistant message: %w", err)
	}

	u.MessagesUsedToday++
	if err := s.users.UpdateQuota(u.ID, u.MessagesUsedToday, u.LastResetDate); err != nil {
		return nil, fmt.Errorf("update quota: %w", err)
	}

	return &TurnResult{
		UserMessage:       userMsg,
		AssistantMessage:  assistantMsg,
		MessagesUsedToday: u.MessagesUsedToday,
		DailyLimit:        s.dailyLimit,
	}, nil
}

// GetHistory returns a user's conversation, oldest first
func (s *Service) GetHistory(userID string, limit int) ([]Message, error) {
	if userID == "" {
		return nil, ErrAdminNoChat
	}
	return s.store.History(userID, limit)
}
