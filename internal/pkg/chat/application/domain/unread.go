package chat

// UnreadSummary holds per-conversation unread counts and their sum.
type UnreadSummary struct {
	ByConversation map[int64]int `json:"by_conversation"`
	Total          int           `json:"total"`
}

func NewUnreadSummary() UnreadSummary {
	return UnreadSummary{ByConversation: make(map[int64]int)}
}

// Add records the count for a conversation, replacing any previous value.
func (s *UnreadSummary) Add(conversationID int64, count int) {
	if prev, ok := s.ByConversation[conversationID]; ok {
		s.Total -= prev
	}
	s.ByConversation[conversationID] = count
	s.Total += count
}
