package domain

type Prompt struct {
	PromptID      string   `json:"prompt_id"`
	OwnerID       string   `json:"owner_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Content       string   `json:"content,omitempty"`
	Price         int      `json:"price"`
	Category      string   `json:"category,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	LikeCount     int      `json:"like_count"`
	BookmarkCount int      `json:"bookmark_count"`
	CommentCount  int      `json:"comment_count"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at,omitempty"`
}

// PromptStats is the denormalized counter triple for one prompt.
type PromptStats struct {
	LikeCount     int `json:"like_count"`
	BookmarkCount int `json:"bookmark_count"`
	CommentCount  int `json:"comment_count"`
}
