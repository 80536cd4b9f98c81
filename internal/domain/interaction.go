package domain

type InteractionKind string

const (
	InteractionLike     InteractionKind = "LIKE"
	InteractionBookmark InteractionKind = "BOOKMARK"
)

// Interaction is a user's like or bookmark on a prompt. At most one
// record exists per (user, prompt, kind).
type Interaction struct {
	UserID    string          `json:"user_id"`
	PromptID  string          `json:"prompt_id"`
	Kind      InteractionKind `json:"kind"`
	CreatedAt string          `json:"created_at"`
}

// Comment lives under the prompt partition. CommentKey is the opaque
// sort-key suffix that identifies the comment within its prompt.
type Comment struct {
	PromptID       string `json:"prompt_id"`
	CommentKey     string `json:"comment_key"`
	AuthorID       string `json:"author_id"`
	AuthorNickname string `json:"author_nickname,omitempty"`
	Content        string `json:"content"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}
