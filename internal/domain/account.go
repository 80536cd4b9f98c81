package domain

// DefaultMaxBalance is the credit balance ceiling applied when the
// configuration does not override it.
const DefaultMaxBalance = 100_000_000

type Account struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname"`
	Balance   int    `json:"credit"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// OverflowPolicy decides what happens when a credit would push a balance
// past the ceiling. Self-service charges reject; purchase payouts clamp.
type OverflowPolicy string

const (
	OverflowReject OverflowPolicy = "REJECT"
	OverflowClamp  OverflowPolicy = "CLAMP"
)
