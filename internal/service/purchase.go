package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fromprom-backend/internal/domain"
	"fromprom-backend/internal/logger"
	"fromprom-backend/internal/repository"
)

type purchaseService struct {
	ledger   CreditService
	accounts repository.AccountRepository
	email    EmailService
}

func NewPurchaseService(ledger CreditService, accounts repository.AccountRepository, email EmailService) PurchaseService {
	return &purchaseService{ledger: ledger, accounts: accounts, email: email}
}

func (s *purchaseService) PurchaseSingle(ctx context.Context, buyerID string, item domain.CartItem) (*domain.PurchaseReceipt, error) {
	// With one seller their account can be resolved before the buyer is
	// debited, so a bad seller id fails without touching the ledger.
	if _, err := s.accounts.Get(ctx, item.SellerID); err != nil {
		return nil, err
	}
	return s.purchase(ctx, buyerID, []domain.CartItem{item}, domain.DescPromptPurchase)
}

func (s *purchaseService) PurchaseCart(ctx context.Context, buyerID string, items []domain.CartItem) (*domain.PurchaseReceipt, error) {
	return s.purchase(ctx, buyerID, items, domain.DescCartPurchase)
}

// purchase debits the buyer for the cart total, then credits each
// seller their share. The buyer debit is the commit point: if a seller
// credit fails afterwards, the debit and earlier payouts stand and the
// failure is reported. Every ledger entry of one purchase shares the
// purchase id, so partial purchases are auditable and repairable.
func (s *purchaseService) purchase(ctx context.Context, buyerID string, items []domain.CartItem, description string) (*domain.PurchaseReceipt, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	total := 0
	allIDs := make([]string, 0, len(items))
	allTitles := make([]string, 0, len(items))
	for _, item := range items {
		if item.Price <= 0 {
			return nil, domain.ErrInvalidAmount
		}
		total += item.Price
		allIDs = append(allIDs, item.PromptID)
		allTitles = append(allTitles, item.Title)
	}

	purchaseID := uuid.NewString()
	logger.InfoContext(ctx, "Purchase started",
		"purchase_id", purchaseID, "buyer_id", buyerID, "items", len(items), "total", total)

	buyerEntry, err := s.ledger.Debit(ctx, buyerID, total, domain.LedgerEntry{
		Description:  description,
		PromptIDs:    allIDs,
		PromptTitles: allTitles,
		PurchaseID:   purchaseID,
	})
	if err != nil {
		return nil, err
	}

	// Group the items by seller and pay each seller once.
	sellerOrder := make([]string, 0, len(items))
	bySeller := make(map[string][]domain.CartItem)
	for _, item := range items {
		if _, seen := bySeller[item.SellerID]; !seen {
			sellerOrder = append(sellerOrder, item.SellerID)
		}
		bySeller[item.SellerID] = append(bySeller[item.SellerID], item)
	}

	for _, sellerID := range sellerOrder {
		group := bySeller[sellerID]
		amount := 0
		ids := make([]string, 0, len(group))
		titles := make([]string, 0, len(group))
		for _, item := range group {
			amount += item.Price
			ids = append(ids, item.PromptID)
			titles = append(titles, item.Title)
		}
		_, err := s.ledger.Credit(ctx, sellerID, amount, domain.LedgerEntry{
			Description:  domain.DescPromptSale,
			PromptIDs:    ids,
			PromptTitles: titles,
			PurchaseID:   purchaseID,
		}, domain.OverflowClamp)
		if err != nil {
			// No rollback: the buyer debit and earlier payouts stand.
			// Repair is a manual operation keyed by the purchase id.
			logger.ErrorContext(ctx, "Purchase fan-out aborted",
				"purchase_id", purchaseID, "buyer_id", buyerID, "seller_id", sellerID, "error", err)
			return nil, fmt.Errorf("crediting seller %s: %w", sellerID, err)
		}
		s.notifySeller(ctx, sellerID, titles, amount)
	}

	logger.InfoContext(ctx, "Purchase completed",
		"purchase_id", purchaseID, "buyer_id", buyerID, "sellers", len(sellerOrder), "total", total)
	return &domain.PurchaseReceipt{
		PurchaseID:   purchaseID,
		Total:        total,
		BuyerBalance: buyerEntry.BalanceAfter,
		Items:        items,
	}, nil
}

func (s *purchaseService) notifySeller(ctx context.Context, sellerID string, titles []string, amount int) {
	acct, err := s.accounts.Get(ctx, sellerID)
	if err != nil || acct.Email == "" {
		return
	}
	if err := s.email.SendSaleNotification(ctx, acct.Email, acct.Nickname, titles, amount); err != nil {
		logger.WarnContext(ctx, "Sale notification failed", "seller_id", sellerID, "error", err)
	}
}
