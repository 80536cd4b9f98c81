package domain

// PromptCreatedEvent is published after a new listing is persisted so the
// search read side can index it. Delivery is best effort.
type PromptCreatedEvent struct {
	PromptID  string   `json:"prompt_id"`
	OwnerID   string   `json:"owner_id"`
	Title     string   `json:"title"`
	Price     int      `json:"price"`
	Category  string   `json:"category,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"created_at"`
}
