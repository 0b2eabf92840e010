package domain

// Conversation is a persisted chat thread. Timestamps are unix seconds;
// UpdatedAt is touched whenever a message is appended and is monotonically
// non-decreasing.
type Conversation struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}
