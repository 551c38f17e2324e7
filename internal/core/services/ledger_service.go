package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/foyerhq/foyer-backend/internal/apperrors"
	"github.com/foyerhq/foyer-backend/internal/core/domain"
	portsrepo "github.com/foyerhq/foyer-backend/internal/core/ports/repositories"
	portssvc "github.com/foyerhq/foyer-backend/internal/core/ports/services"
	"github.com/foyerhq/foyer-backend/internal/dto"
	"github.com/foyerhq/foyer-backend/internal/middleware"
)

const defaultEntryPageLimit = 25

// ledgerService is the single authority over ledger entries and wallet
// balances. Every write it performs goes through one LedgerMutation so the
// repository can commit balances, stock, inserts and status flips atomically.
type ledgerService struct {
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	walletRepo  portsrepo.WalletRepositoryFacade
	catalogRepo portsrepo.CatalogRepositoryFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, walletRepo portsrepo.WalletRepositoryFacade, catalogRepo portsrepo.CatalogRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo:  ledgerRepo,
		walletRepo:  walletRepo,
		catalogRepo: catalogRepo,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func newMutation() portsrepo.LedgerMutation {
	return portsrepo.LedgerMutation{
		BalanceChanges: make(map[domain.WalletRef]int64),
		StockChanges:   make(map[string]decimal.Decimal),
	}
}

func newAudit(actorID string, now time.Time) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}
}

// loadSpendableUser fetches a user whose personal wallet may be debited.
func (s *ledgerService) loadSpendableUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.walletRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}
	if user.Deleted {
		return nil, fmt.Errorf("%w: user %s", apperrors.ErrWalletDeleted, userID)
	}
	if user.Deactivated {
		return nil, fmt.Errorf("%w: user %s", apperrors.ErrWalletDeactivated, userID)
	}
	return user, nil
}

// resolveWalletBalance checks the target wallet exists and returns its current
// balance. Deactivated users are accepted here: credits and admin corrections
// stay possible after deactivation, only spending is blocked.
func (s *ledgerService) resolveWalletBalance(ctx context.Context, wallet domain.WalletRef) (int64, error) {
	switch wallet.Source {
	case domain.SourceFamily:
		family, err := s.walletRepo.FindFamilyByID(ctx, wallet.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to find family %s: %w", wallet.ID, err)
		}
		return family.Balance, nil
	default:
		user, err := s.walletRepo.FindUserByID(ctx, wallet.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to find user %s: %w", wallet.ID, err)
		}
		if user.Deleted {
			return 0, fmt.Errorf("%w: user %s", apperrors.ErrWalletDeleted, wallet.ID)
		}
		return user.Balance, nil
	}
}

// Transfer moves amount between two personal wallets as two linked entries.
func (s *ledgerService) Transfer(ctx context.Context, senderID, receiverID string, amount int64, note string, issuerID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if amount <= 0 {
		return fmt.Errorf("%w: transfer amount must be positive, got %d", apperrors.ErrInvalidAmount, amount)
	}
	if senderID == receiverID {
		return apperrors.ErrSelfTransfer
	}

	sender, err := s.loadSpendableUser(ctx, senderID)
	if err != nil {
		return err
	}
	receiver, err := s.walletRepo.FindUserByID(ctx, receiverID)
	if err != nil {
		return fmt.Errorf("failed to find receiver %s: %w", receiverID, err)
	}
	if receiver.Deleted {
		return fmt.Errorf("%w: receiver %s", apperrors.ErrWalletDeleted, receiverID)
	}
	if sender.Balance < amount {
		return fmt.Errorf("%w: wallet %s holds %d, needs %d", apperrors.ErrInsufficientFunds, senderID, sender.Balance, amount)
	}

	now := time.Now()
	transferGroupID := uuid.NewString()

	debitNote := note
	if debitNote == "" {
		debitNote = fmt.Sprintf("Transfer to %s", receiver.Name)
	}
	creditNote := note
	if creditNote == "" {
		creditNote = fmt.Sprintf("Transfer from %s", sender.Name)
	}

	senderWallet := domain.PersonalWallet(senderID)
	receiverWallet := domain.PersonalWallet(receiverID)

	mutation := newMutation()
	mutation.Entries = []domain.Entry{
		{
			EntryID:         uuid.NewString(),
			Kind:            domain.KindTransfer,
			Status:          domain.StatusCompleted,
			Amount:          -amount,
			WalletSource:    domain.SourcePersonal,
			TargetWallet:    senderID,
			IssuerID:        issuerID,
			ReceiverWallet:  &receiverID,
			TransferGroupID: &transferGroupID,
			Description:     debitNote,
			AuditFields:     newAudit(issuerID, now),
		},
		{
			EntryID:         uuid.NewString(),
			Kind:            domain.KindTransfer,
			Status:          domain.StatusCompleted,
			Amount:          amount,
			WalletSource:    domain.SourcePersonal,
			TargetWallet:    receiverID,
			IssuerID:        issuerID,
			ReceiverWallet:  &senderID,
			TransferGroupID: &transferGroupID,
			Description:     creditNote,
			AuditFields:     newAudit(issuerID, now),
		},
	}
	mutation.BalanceChanges[senderWallet] = -amount
	mutation.BalanceChanges[receiverWallet] = amount
	mutation.EnforceFunds = []domain.WalletRef{senderWallet}

	if err := s.ledgerRepo.ApplyMutation(ctx, mutation); err != nil {
		logger.Error("Transfer failed to apply", "senderID", senderID, "receiverID", receiverID, "error", err)
		return fmt.Errorf("failed to apply transfer: %w", err)
	}

	logger.Info("Transfer applied", "senderID", senderID, "receiverID", receiverID, "amount", amount, "transferGroupID", transferGroupID)
	return nil
}

// TopUp credits the target wallet with an already-settled payment (cash box,
// manual entry). Provider-driven top-ups go through the payment service.
func (s *ledgerService) TopUp(ctx context.Context, issuerID string, target domain.WalletRef, amount int64, methodLabel string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if amount <= 0 {
		return fmt.Errorf("%w: top-up amount must be positive, got %d", apperrors.ErrInvalidAmount, amount)
	}
	if _, err := s.resolveWalletBalance(ctx, target); err != nil {
		return err
	}

	now := time.Now()
	mutation := newMutation()
	mutation.Entries = []domain.Entry{{
		EntryID:      uuid.NewString(),
		Kind:         domain.KindTopUp,
		Status:       domain.StatusCompleted,
		Amount:       amount,
		WalletSource: target.Source,
		TargetWallet: target.ID,
		IssuerID:     issuerID,
		Description:  fmt.Sprintf("Top-up via %s", methodLabel),
		AuditFields:  newAudit(issuerID, now),
	}}
	mutation.BalanceChanges[target] = amount

	if err := s.ledgerRepo.ApplyMutation(ctx, mutation); err != nil {
		logger.Error("TopUp failed to apply", "target", target.ID, "error", err)
		return fmt.Errorf("failed to apply top-up: %w", err)
	}

	logger.Info("TopUp applied", "target", target.ID, "source", target.Source, "amount", amount)
	return nil
}

// Purchase debits the payer for a cart of products from one shop, one entry
// per line item, and depletes stock by quantity times correction factor.
func (s *ledgerService) Purchase(ctx context.Context, req dto.PurchaseRequest, issuerID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(req.Items) == 0 {
		return apperrors.ErrEmptyCart
	}

	shop, err := s.catalogRepo.FindShopByID(ctx, req.ShopID)
	if err != nil {
		return fmt.Errorf("failed to find shop %s: %w", req.ShopID, err)
	}

	payer, err := s.loadSpendableUser(ctx, req.PayerID)
	if err != nil {
		return err
	}

	var payerWallet domain.WalletRef
	var familyID *string
	switch req.Source {
	case domain.SourceFamily:
		if req.FamilyID == nil {
			return fmt.Errorf("%w: familyID is required for family purchases", apperrors.ErrValidation)
		}
		member, err := s.walletRepo.IsFamilyMember(ctx, *req.FamilyID, req.PayerID)
		if err != nil {
			return fmt.Errorf("failed to check family membership: %w", err)
		}
		if !member {
			return fmt.Errorf("%w: user %s, family %s", apperrors.ErrNotFamilyMember, req.PayerID, *req.FamilyID)
		}
		payerWallet = domain.FamilyWallet(*req.FamilyID)
		familyID = req.FamilyID
	default:
		payerWallet = domain.PersonalWallet(req.PayerID)
	}

	balance, err := s.resolveWalletBalance(ctx, payerWallet)
	if err != nil {
		return err
	}

	productIDs := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.catalogRepo.FindProductsByIDs(ctx, productIDs)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}

	var total int64
	for _, item := range req.Items {
		product, ok := products[item.ProductID]
		if !ok {
			return fmt.Errorf("%w: product %s not found", apperrors.ErrInvalidProduct, item.ProductID)
		}
		if product.ShopID != shop.ShopID {
			return fmt.Errorf("%w: product %s does not belong to shop %s", apperrors.ErrInvalidProduct, item.ProductID, shop.ShopID)
		}
		if product.Archived {
			return fmt.Errorf("%w: product %s is archived", apperrors.ErrInvalidProduct, item.ProductID)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive for product %s", apperrors.ErrValidation, item.ProductID)
		}
		lineTotal := product.Price * item.Quantity
		if product.Price != 0 && lineTotal/product.Price != item.Quantity {
			return fmt.Errorf("%w: cart line for product %s overflows", apperrors.ErrInvalidAmount, item.ProductID)
		}
		total += lineTotal
		// Both operands are non-negative, so a wrapped sum shows up negative.
		if total < 0 {
			return fmt.Errorf("%w: cart total overflows", apperrors.ErrInvalidAmount)
		}
	}
	if balance < total {
		return fmt.Errorf("%w: wallet holds %d, cart totals %d", apperrors.ErrInsufficientFunds, balance, total)
	}

	// Purchases of event products are tagged with the event only while it is
	// still open. Closed events keep receiving none of the late sales.
	openEvents := make(map[string]bool)
	eventTag := func(eventID *string) *string {
		if eventID == nil {
			return nil
		}
		open, seen := openEvents[*eventID]
		if !seen {
			event, err := s.catalogRepo.FindEventByID(ctx, *eventID)
			open = err == nil && event.Status == domain.EventOpen
			openEvents[*eventID] = open
		}
		if !open {
			return nil
		}
		return eventID
	}

	now := time.Now()
	mutation := newMutation()
	for _, item := range req.Items {
		item := item
		product := products[item.ProductID]

		description := fmt.Sprintf("%s x%d", product.Name, item.Quantity)
		if req.DescriptionPrefix != "" {
			description = fmt.Sprintf("%s: %s", req.DescriptionPrefix, description)
		}

		mutation.Entries = append(mutation.Entries, domain.Entry{
			EntryID:      uuid.NewString(),
			Kind:         domain.KindPurchase,
			Status:       domain.StatusCompleted,
			Amount:       -(product.Price * item.Quantity),
			WalletSource: payerWallet.Source,
			TargetWallet: payerWallet.ID,
			IssuerID:     issuerID,
			ShopID:       &product.ShopID,
			ProductID:    &item.ProductID,
			Quantity:     &item.Quantity,
			EventID:      eventTag(product.EventID),
			FamilyID:     familyID,
			Description:  description,
			AuditFields:  newAudit(issuerID, now),
		})
		depletion := decimal.NewFromInt(item.Quantity).Mul(product.CorrectionFactor)
		mutation.StockChanges[item.ProductID] = mutation.StockChanges[item.ProductID].Sub(depletion)
	}
	mutation.BalanceChanges[payerWallet] = -total
	mutation.EnforceFunds = []domain.WalletRef{payerWallet}

	if err := s.ledgerRepo.ApplyMutation(ctx, mutation); err != nil {
		logger.Error("Purchase failed to apply", "payerID", req.PayerID, "shopID", req.ShopID, "error", err)
		return fmt.Errorf("failed to apply purchase: %w", err)
	}

	logger.Info("Purchase applied", "payerID", payer.UserID, "shopID", shop.ShopID, "items", len(req.Items), "total", total)
	return nil
}

// AdminAdjustment applies a signed manual correction to a wallet. Negative
// adjustments may drive the balance negative; that is the point of them.
func (s *ledgerService) AdminAdjustment(ctx context.Context, issuerID string, target domain.WalletRef, amount int64, description string, groupID *string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if amount == 0 {
		return fmt.Errorf("%w: adjustment amount must be non-zero", apperrors.ErrInvalidAmount)
	}
	if _, err := s.resolveWalletBalance(ctx, target); err != nil {
		return err
	}

	now := time.Now()
	mutation := newMutation()
	mutation.Entries = []domain.Entry{{
		EntryID:      uuid.NewString(),
		Kind:         domain.KindAdjustment,
		Status:       domain.StatusCompleted,
		Amount:       amount,
		WalletSource: target.Source,
		TargetWallet: target.ID,
		IssuerID:     issuerID,
		GroupID:      groupID,
		Description:  description,
		AuditFields:  newAudit(issuerID, now),
	}}
	mutation.BalanceChanges[target] = amount

	if err := s.ledgerRepo.ApplyMutation(ctx, mutation); err != nil {
		logger.Error("Adjustment failed to apply", "target", target.ID, "error", err)
		return fmt.Errorf("failed to apply adjustment: %w", err)
	}

	logger.Info("Adjustment applied", "target", target.ID, "source", target.Source, "amount", amount)
	return nil
}

// compensationKind returns the kind of the compensating entry that reverses
// an original entry of the given kind.
func compensationKind(kind domain.EntryKind) domain.EntryKind {
	if kind == domain.KindPurchase {
		return domain.KindRefund
	}
	return domain.KindAdjustment
}

// checkCancellable rejects entries whose status forbids reversal.
func checkCancellable(entry *domain.Entry) error {
	switch entry.Status {
	case domain.StatusCancelled, domain.StatusSuperseded:
		return fmt.Errorf("%w: entry %s", apperrors.ErrAlreadyCancelled, entry.EntryID)
	case domain.StatusPending, domain.StatusFailed:
		return fmt.Errorf("%w: entry %s is %s", apperrors.ErrNotCancellable, entry.EntryID, entry.Status)
	}
	return nil
}

// appendReversal adds everything needed to undo one completed entry to the
// mutation: the compensating entry of opposite sign, the balance restoration,
// the stock restock for purchase lines, and the guarded status flip.
func (s *ledgerService) appendReversal(mutation *portsrepo.LedgerMutation, original *domain.Entry, products map[string]domain.Product, performedByID string, now time.Time) {
	wallet := original.Target()
	mutation.BalanceChanges[wallet] += -original.Amount

	mutation.Entries = append(mutation.Entries, domain.Entry{
		EntryID:      uuid.NewString(),
		Kind:         compensationKind(original.Kind),
		Status:       domain.StatusCompleted,
		Amount:       -original.Amount,
		WalletSource: original.WalletSource,
		TargetWallet: original.TargetWallet,
		IssuerID:     performedByID,
		ShopID:       original.ShopID,
		ProductID:    original.ProductID,
		Quantity:     original.Quantity,
		EventID:      original.EventID,
		FamilyID:     original.FamilyID,
		Description:  fmt.Sprintf("Reversal: %s", original.Description),
		AuditFields:  newAudit(performedByID, now),
	})

	if original.Kind == domain.KindPurchase && original.ProductID != nil {
		if product, ok := products[*original.ProductID]; ok {
			restock := original.StockDepletion(product.CorrectionFactor)
			mutation.StockChanges[*original.ProductID] = mutation.StockChanges[*original.ProductID].Add(restock)
		}
	}

	mutation.StatusChanges = append(mutation.StatusChanges, portsrepo.StatusChange{
		EntryID:         original.EntryID,
		NewStatus:       domain.StatusCancelled,
		RequireStatus:   domain.StatusCompleted,
		DescriptionNote: fmt.Sprintf(" (cancelled by %s)", performedByID),
	})
}

// loadProductsForReversal fetches the products referenced by purchase entries
// so restocks use each product's correction factor.
func (s *ledgerService) loadProductsForReversal(ctx context.Context, entries []domain.Entry) (map[string]domain.Product, error) {
	ids := make([]string, 0, len(entries))
	seen := make(map[string]bool)
	for i := range entries {
		if entries[i].Kind == domain.KindPurchase && entries[i].ProductID != nil && !seen[*entries[i].ProductID] {
			seen[*entries[i].ProductID] = true
			ids = append(ids, *entries[i].ProductID)
		}
	}
	if len(ids) == 0 {
		return map[string]domain.Product{}, nil
	}
	products, err := s.catalogRepo.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products for reversal: %w", err)
	}
	return products, nil
}

// CancelTransaction reverses one completed entry. Transfer legs are reversed
// together with their counterpart in the same atomic operation.
func (s *ledgerService) CancelTransaction(ctx context.Context, entryID, performedByID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	if err := checkCancellable(entry); err != nil {
		return err
	}

	// The counterpart of a transfer leg is reversed first, then the requested
	// leg, all inside one mutation.
	var legs []domain.Entry
	if entry.Kind == domain.KindTransfer && entry.TransferGroupID != nil {
		group, err := s.ledgerRepo.FindEntriesByTransferGroupID(ctx, *entry.TransferGroupID)
		if err != nil {
			return fmt.Errorf("failed to load transfer group %s: %w", *entry.TransferGroupID, err)
		}
		for i := range group {
			if group[i].EntryID == entry.EntryID {
				continue
			}
			if group[i].Status != domain.StatusCompleted {
				logger.Warn("Transfer counterpart not reversible, skipping", "entryID", group[i].EntryID, "status", group[i].Status)
				continue
			}
			legs = append(legs, group[i])
		}
	}
	legs = append(legs, *entry)

	products, err := s.loadProductsForReversal(ctx, legs)
	if err != nil {
		return err
	}

	now := time.Now()
	mutation := newMutation()
	for i := range legs {
		s.appendReversal(&mutation, &legs[i], products, performedByID, now)
	}

	if err := s.ledgerRepo.ApplyMutation(ctx, mutation); err != nil {
		logger.Error("Cancellation failed to apply", "entryID", entryID, "error", err)
		return fmt.Errorf("failed to apply cancellation: %w", err)
	}

	logger.Info("Entry cancelled", "entryID", entryID, "legs", len(legs), "performedBy", performedByID)
	return nil
}

// CancelTransactionGroup reverses every completed entry in a bulk group in one
// atomic operation and returns how many were reversed.
func (s *ledgerService) CancelTransactionGroup(ctx context.Context, groupID, performedByID string) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entries, err := s.ledgerRepo.FindEntriesByGroupID(ctx, groupID)
	if err != nil {
		return 0, fmt.Errorf("failed to load group %s: %w", groupID, err)
	}

	cancellable := entries[:0:0]
	for i := range entries {
		if entries[i].Status == domain.StatusCompleted {
			cancellable = append(cancellable, entries[i])
		}
	}
	if len(cancellable) == 0 {
		return 0, fmt.Errorf("%w: group %s", apperrors.ErrGroupEmpty, groupID)
	}

	products, err := s.loadProductsForReversal(ctx, cancellable)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	mutation := newMutation()
	for i := range cancellable {
		s.appendReversal(&mutation, &cancellable[i], products, performedByID, now)
	}

	if err := s.ledgerRepo.ApplyMutation(ctx, mutation); err != nil {
		logger.Error("Group cancellation failed to apply", "groupID", groupID, "error", err)
		return 0, fmt.Errorf("failed to apply group cancellation: %w", err)
	}

	logger.Info("Group cancelled", "groupID", groupID, "reversed", len(cancellable), "performedBy", performedByID)
	return len(cancellable), nil
}

// UpdateTransactionQuantity partially cancels a purchase line: the original is
// fully refunded and superseded by a fresh purchase entry for newQuantity at
// the original unit price. newQuantity zero behaves exactly like a full
// cancellation.
func (s *ledgerService) UpdateTransactionQuantity(ctx context.Context, entryID string, newQuantity int64, performedByID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if newQuantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", apperrors.ErrInvalidQuantity)
	}
	if newQuantity == 0 {
		return s.CancelTransaction(ctx, entryID, performedByID)
	}

	entry, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	if err := checkCancellable(entry); err != nil {
		return err
	}
	if entry.Kind != domain.KindPurchase || entry.ProductID == nil || entry.Quantity == nil || *entry.Quantity <= 0 {
		return fmt.Errorf("%w: only purchase lines can be quantity-corrected", apperrors.ErrInvalidQuantity)
	}
	if newQuantity >= *entry.Quantity {
		return fmt.Errorf("%w: new quantity %d must be below original %d", apperrors.ErrInvalidQuantity, newQuantity, *entry.Quantity)
	}

	products, err := s.loadProductsForReversal(ctx, []domain.Entry{*entry})
	if err != nil {
		return err
	}

	// New amount from the original unit price, rounded to the nearest minor
	// unit so the replacement never charges more than proportionally.
	originalQuantity := *entry.Quantity
	newAmount := decimal.NewFromInt(entry.Amount).
		Div(decimal.NewFromInt(originalQuantity)).
		Mul(decimal.NewFromInt(newQuantity)).
		Round(0).IntPart()

	now := time.Now()
	wallet := entry.Target()
	replacementID := uuid.NewString()

	mutation := newMutation()
	mutation.Entries = append(mutation.Entries, domain.Entry{
		EntryID:      uuid.NewString(),
		Kind:         domain.KindRefund,
		Status:       domain.StatusCompleted,
		Amount:       -entry.Amount,
		WalletSource: entry.WalletSource,
		TargetWallet: entry.TargetWallet,
		IssuerID:     performedByID,
		ShopID:       entry.ShopID,
		ProductID:    entry.ProductID,
		Quantity:     entry.Quantity,
		EventID:      entry.EventID,
		FamilyID:     entry.FamilyID,
		Description:  fmt.Sprintf("Reversal: %s", entry.Description),
		AuditFields:  newAudit(performedByID, now),
	}, domain.Entry{
		EntryID:      replacementID,
		Kind:         domain.KindPurchase,
		Status:       domain.StatusCompleted,
		Amount:       newAmount,
		WalletSource: entry.WalletSource,
		TargetWallet: entry.TargetWallet,
		IssuerID:     performedByID,
		ShopID:       entry.ShopID,
		ProductID:    entry.ProductID,
		Quantity:     &newQuantity,
		EventID:      entry.EventID,
		FamilyID:     entry.FamilyID,
		Description:  fmt.Sprintf("Quantity corrected from %d to %d: %s", originalQuantity, newQuantity, entry.Description),
		AuditFields:  newAudit(performedByID, now),
	})

	// Net effect on the wallet: full refund of the original, new charge for
	// the corrected quantity.
	mutation.BalanceChanges[wallet] = -entry.Amount + newAmount

	if product, ok := products[*entry.ProductID]; ok {
		restock := decimal.NewFromInt(originalQuantity - newQuantity).Mul(product.CorrectionFactor)
		mutation.StockChanges[*entry.ProductID] = restock
	}

	mutation.StatusChanges = append(mutation.StatusChanges, portsrepo.StatusChange{
		EntryID:           entry.EntryID,
		NewStatus:         domain.StatusSuperseded,
		RequireStatus:     domain.StatusCompleted,
		DescriptionNote:   fmt.Sprintf(" (superseded by quantity correction to %d)", newQuantity),
		ReplacedByEntryID: &replacementID,
	})

	if err := s.ledgerRepo.ApplyMutation(ctx, mutation); err != nil {
		logger.Error("Quantity correction failed to apply", "entryID", entryID, "error", err)
		return fmt.Errorf("failed to apply quantity correction: %w", err)
	}

	logger.Info("Quantity corrected", "entryID", entryID, "replacementID", replacementID, "from", originalQuantity, "to", newQuantity)
	return nil
}

// GetEntry retrieves one ledger entry.
func (s *ledgerService) GetEntry(ctx context.Context, entryID string) (*domain.Entry, error) {
	entry, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	return entry, nil
}

// ListWalletEntries retrieves a page of a wallet's entries, newest first.
func (s *ledgerService) ListWalletEntries(ctx context.Context, wallet domain.WalletRef, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	if _, err := s.resolveWalletBalance(ctx, wallet); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = defaultEntryPageLimit
	}

	entries, nextToken, err := s.ledgerRepo.ListEntriesByWallet(ctx, wallet, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	return &dto.ListEntriesResponse{
		Entries:   dto.ToEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}

// GetBalance retrieves a wallet's current denormalized balance.
func (s *ledgerService) GetBalance(ctx context.Context, wallet domain.WalletRef) (int64, error) {
	return s.resolveWalletBalance(ctx, wallet)
}
