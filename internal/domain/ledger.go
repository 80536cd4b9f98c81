package domain

// LedgerEntry is one immutable row of a user's credit history. Amount is
// signed: positive for charges and sale payouts, negative for spends and
// purchases. BalanceAfter snapshots the balance the entry left behind.
type LedgerEntry struct {
	UserID       string   `json:"user_id"`
	EntryID      string   `json:"entry_id"`
	Amount       int      `json:"amount"`
	BalanceAfter int      `json:"balance_after"`
	Description  string   `json:"description"`
	PromptIDs    []string `json:"prompt_ids,omitempty"`
	PromptTitles []string `json:"prompt_titles,omitempty"`
	PurchaseID   string   `json:"purchase_id,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

// Entry descriptions written by the ledger and the purchase coordinator.
const (
	DescCreditCharge   = "Credit Charge"
	DescCreditSpend    = "Credit Spend"
	DescPromptPurchase = "Prompt Purchase"
	DescCartPurchase   = "Cart Purchase"
	DescPromptSale     = "Prompt Sale"
)
