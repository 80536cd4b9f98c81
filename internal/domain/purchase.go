package domain

// CartItem is one prompt in a purchase request, priced at request time.
type CartItem struct {
	PromptID string `json:"prompt_id"`
	SellerID string `json:"seller_id"`
	Title    string `json:"title"`
	Price    int    `json:"price"`
}

// PurchaseReceipt summarizes a completed purchase. All ledger entries
// written for the purchase share PurchaseID.
type PurchaseReceipt struct {
	PurchaseID   string     `json:"purchase_id"`
	Total        int        `json:"total"`
	BuyerBalance int        `json:"buyer_balance"`
	Items        []CartItem `json:"items"`
}
