package chat

import "companion-lite/internal/ai"

// buildContext assembles the bounded conversation window sent to the
// completion provider: the most recent turns, reversed into chronological
// order. Called after the current user turn is persisted, so that turn is
// naturally the newest entry.
func (s *Service) buildContext(userID string) ([]ai.Message, error) {
	recent, err := s.store.Recent(userID, s.contextWindow)
	if err != nil {
		return nil, err
	}

	messages := make([]ai.Message, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		messages = append(messages, ai.Message{
			Role:    string(recent[i].Role),
			Content: recent[i].Content,
		})
	}

	return messages, nil
}
