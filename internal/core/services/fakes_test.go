package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/foyerhq/foyer-backend/internal/apperrors"
	"github.com/foyerhq/foyer-backend/internal/core/domain"
	portsrepo "github.com/foyerhq/foyer-backend/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory stand-in for the pgsql repositories. ApplyMutation
// mirrors the production semantics: it validates everything first and commits
// all-or-nothing, so the scenario tests exercise the same atomicity contract.
type fakeStore struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	families map[string]*domain.Family
	members  map[string]map[string]bool
	shops    map[string]domain.Shop
	events   map[string]domain.Event
	products map[string]*domain.Product
	entries  map[string]*domain.Entry
}

var _ portsrepo.LedgerRepositoryFacade = (*fakeStore)(nil)
var _ portsrepo.WalletRepositoryFacade = (*fakeStore)(nil)
var _ portsrepo.CatalogRepositoryFacade = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]*domain.User),
		families: make(map[string]*domain.Family),
		members:  make(map[string]map[string]bool),
		shops:    make(map[string]domain.Shop),
		events:   make(map[string]domain.Event),
		products: make(map[string]*domain.Product),
		entries:  make(map[string]*domain.Entry),
	}
}

func (s *fakeStore) addUser(id string, balance int64) {
	s.users[id] = &domain.User{UserID: id, Name: id, Balance: balance}
}

func (s *fakeStore) addFamily(id string, balance int64, memberIDs ...string) {
	s.families[id] = &domain.Family{FamilyID: id, Name: id, Balance: balance}
	s.members[id] = make(map[string]bool)
	for _, m := range memberIDs {
		s.members[id][m] = true
	}
}

func (s *fakeStore) addShop(id string) {
	s.shops[id] = domain.Shop{ShopID: id, Name: id}
}

func (s *fakeStore) addProduct(p domain.Product) {
	cp := p
	s.products[p.ProductID] = &cp
}

func (s *fakeStore) balanceOf(wallet domain.WalletRef) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if wallet.Source == domain.SourceFamily {
		return s.families[wallet.ID].Balance
	}
	return s.users[wallet.ID].Balance
}

// totalBalance sums every wallet, for conservation checks.
func (s *fakeStore) totalBalance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, u := range s.users {
		total += u.Balance
	}
	for _, f := range s.families {
		total += f.Balance
	}
	return total
}

func (s *fakeStore) entryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *fakeStore) stockOf(productID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].Stock
}

func (s *fakeStore) entriesByKind(kind domain.EntryKind) []domain.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Entry
	for _, e := range s.entries {
		if e.Kind == kind {
			out = append(out, *e)
		}
	}
	return out
}

// seedEntry inserts an entry directly, bypassing the service layer.
func (s *fakeStore) seedEntry(e domain.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := e
	s.entries[e.EntryID] = &cp
}

// ApplyMutation validates, then commits everything or nothing.
func (s *fakeStore) ApplyMutation(ctx context.Context, m portsrepo.LedgerMutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	newBalances := make(map[domain.WalletRef]int64, len(m.BalanceChanges))
	for wallet, delta := range m.BalanceChanges {
		switch wallet.Source {
		case domain.SourceFamily:
			family, ok := s.families[wallet.ID]
			if !ok {
				return apperrors.NewNotFoundError("wallet " + wallet.ID + " not found")
			}
			newBalances[wallet] = family.Balance + delta
		default:
			user, ok := s.users[wallet.ID]
			if !ok {
				return apperrors.NewNotFoundError("wallet " + wallet.ID + " not found")
			}
			newBalances[wallet] = user.Balance + delta
		}
	}
	for _, wallet := range m.EnforceFunds {
		if balance, ok := newBalances[wallet]; ok && balance < 0 {
			return fmt.Errorf("%w: wallet %s would drop to %d", apperrors.ErrInsufficientFunds, wallet.ID, balance)
		}
	}
	for productID := range m.StockChanges {
		if _, ok := s.products[productID]; !ok {
			return apperrors.NewNotFoundError("product " + productID + " not found")
		}
	}
	for _, change := range m.StatusChanges {
		entry, ok := s.entries[change.EntryID]
		if !ok {
			return apperrors.NewNotFoundError("entry " + change.EntryID + " not found")
		}
		if entry.Status != change.RequireStatus {
			return fmt.Errorf("%w: entry %s is no longer %s", apperrors.ErrConflict, change.EntryID, change.RequireStatus)
		}
	}
	for _, e := range m.Entries {
		if _, dup := s.entries[e.EntryID]; dup {
			return fmt.Errorf("%w: entry %s", apperrors.ErrDuplicate, e.EntryID)
		}
	}

	for wallet, balance := range newBalances {
		if wallet.Source == domain.SourceFamily {
			s.families[wallet.ID].Balance = balance
		} else {
			s.users[wallet.ID].Balance = balance
		}
	}
	for productID, delta := range m.StockChanges {
		p := s.products[productID]
		p.Stock = p.Stock.Add(delta)
	}
	for _, e := range m.Entries {
		cp := e
		s.entries[e.EntryID] = &cp
	}
	for _, change := range m.StatusChanges {
		entry := s.entries[change.EntryID]
		entry.Status = change.NewStatus
		entry.Description += change.DescriptionNote
		if change.ReplacedByEntryID != nil {
			entry.ReplacedByEntryID = change.ReplacedByEntryID
		}
	}
	return nil
}

func (s *fakeStore) FindEntryByID(ctx context.Context, entryID string) (*domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[entryID]
	if !ok {
		return nil, apperrors.NewNotFoundError("entry " + entryID + " not found")
	}
	cp := *entry
	return &cp, nil
}

func (s *fakeStore) FindEntriesByGroupID(ctx context.Context, groupID string) ([]domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Entry
	for _, e := range s.entries {
		if e.GroupID != nil && *e.GroupID == groupID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryID < out[j].EntryID })
	return out, nil
}

func (s *fakeStore) FindEntriesByTransferGroupID(ctx context.Context, transferGroupID string) ([]domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Entry
	for _, e := range s.entries {
		if e.TransferGroupID != nil && *e.TransferGroupID == transferGroupID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryID < out[j].EntryID })
	return out, nil
}

func (s *fakeStore) FindEntryByExternalRef(ctx context.Context, externalRef string) (*domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ExternalRef != nil && *e.ExternalRef == externalRef {
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFoundError("no entry with external ref " + externalRef)
}

func (s *fakeStore) ListEntriesByWallet(ctx context.Context, wallet domain.WalletRef, limit int, nextToken *string) ([]domain.Entry, *string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Entry
	for _, e := range s.entries {
		if e.WalletSource == wallet.Source && e.TargetWallet == wallet.ID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].EntryID > out[j].EntryID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil, nil
}

func (s *fakeStore) SumSalesByShop(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sales := make(map[string]int64)
	for _, e := range s.entries {
		if e.ShopID == nil {
			continue
		}
		if e.Kind != domain.KindPurchase && e.Kind != domain.KindRefund {
			continue
		}
		if e.Status == domain.StatusPending || e.Status == domain.StatusFailed {
			continue
		}
		if e.CreatedAt.Before(from) || !e.CreatedAt.Before(to) {
			continue
		}
		sales[*e.ShopID] -= e.Amount
	}
	return sales, nil
}

func (s *fakeStore) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, apperrors.NewNotFoundError("user " + userID + " not found")
	}
	cp := *user
	return &cp, nil
}

func (s *fakeStore) FindFamilyByID(ctx context.Context, familyID string) (*domain.Family, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	family, ok := s.families[familyID]
	if !ok {
		return nil, apperrors.NewNotFoundError("family " + familyID + " not found")
	}
	cp := *family
	return &cp, nil
}

func (s *fakeStore) IsFamilyMember(ctx context.Context, familyID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members[familyID][userID], nil
}

func (s *fakeStore) FindShopByID(ctx context.Context, shopID string) (*domain.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	shop, ok := s.shops[shopID]
	if !ok {
		return nil, apperrors.NewNotFoundError("shop " + shopID + " not found")
	}
	return &shop, nil
}

func (s *fakeStore) FindProductsByIDs(ctx context.Context, productIDs []string) (map[string]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.Product, len(productIDs))
	for _, id := range productIDs {
		if p, ok := s.products[id]; ok {
			out[id] = *p
		}
	}
	return out, nil
}

func (s *fakeStore) FindEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[eventID]
	if !ok {
		return nil, apperrors.NewNotFoundError("event " + eventID + " not found")
	}
	return &event, nil
}

func (s *fakeStore) ValueAllActiveStock(ctx context.Context) ([]domain.ShopStockValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := make(map[string]decimal.Decimal)
	for _, p := range s.products {
		if p.Archived {
			continue
		}
		totals[p.ShopID] = totals[p.ShopID].Add(p.Stock.Mul(decimal.NewFromInt(p.Price)))
	}
	shopIDs := make([]string, 0, len(totals))
	for id := range totals {
		shopIDs = append(shopIDs, id)
	}
	sort.Strings(shopIDs)
	out := make([]domain.ShopStockValue, 0, len(shopIDs))
	for _, id := range shopIDs {
		out = append(out, domain.ShopStockValue{ShopID: id, Value: totals[id].Round(0).IntPart()})
	}
	return out, nil
}

// fakeMandateStore backs the mandate repository port, enforcing the single
// ACTIVE mandate rule the way the partial unique index does.
type fakeMandateStore struct {
	mu       sync.Mutex
	mandates map[string]*domain.Mandate
	shops    map[string][]domain.MandateShop
}

var _ portsrepo.MandateRepositoryFacade = (*fakeMandateStore)(nil)

func newFakeMandateStore() *fakeMandateStore {
	return &fakeMandateStore{
		mandates: make(map[string]*domain.Mandate),
		shops:    make(map[string][]domain.MandateShop),
	}
}

func (s *fakeMandateStore) SaveMandate(ctx context.Context, mandate domain.Mandate, shops []domain.MandateShop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.mandates {
		if m.Status == domain.MandateActive {
			return apperrors.ErrMandateAlreadyActive
		}
	}
	cp := mandate
	s.mandates[mandate.MandateID] = &cp
	s.shops[mandate.MandateID] = append([]domain.MandateShop(nil), shops...)
	return nil
}

func (s *fakeMandateStore) CloseMandate(ctx context.Context, mandate domain.Mandate, shops []domain.MandateShop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.mandates[mandate.MandateID]
	if !ok {
		return apperrors.NewNotFoundError("mandate " + mandate.MandateID + " not found")
	}
	if existing.Status != domain.MandateActive {
		return fmt.Errorf("%w: mandate %s is not active", apperrors.ErrConflict, mandate.MandateID)
	}
	cp := mandate
	s.mandates[mandate.MandateID] = &cp
	s.shops[mandate.MandateID] = append([]domain.MandateShop(nil), shops...)
	return nil
}

func (s *fakeMandateStore) FindActiveMandate(ctx context.Context) (*domain.Mandate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.mandates {
		if m.Status == domain.MandateActive {
			cp := *m
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFoundError("no active mandate")
}

func (s *fakeMandateStore) FindMandateByID(ctx context.Context, mandateID string) (*domain.Mandate, []domain.MandateShop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mandates[mandateID]
	if !ok {
		return nil, nil, apperrors.NewNotFoundError("mandate " + mandateID + " not found")
	}
	cp := *m
	return &cp, append([]domain.MandateShop(nil), s.shops[mandateID]...), nil
}

func (s *fakeMandateStore) ListMandates(ctx context.Context, limit int, nextToken *string) ([]domain.Mandate, *string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Mandate
	for _, m := range s.mandates {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil, nil
}

// fakeExpenseStore backs the expense repository port.
type fakeExpenseStore struct {
	mu       sync.Mutex
	expenses []domain.Expense
}

var _ portsrepo.ExpenseRepositoryFacade = (*fakeExpenseStore)(nil)

func newFakeExpenseStore() *fakeExpenseStore {
	return &fakeExpenseStore{}
}

func (s *fakeExpenseStore) SaveExpense(ctx context.Context, expense domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, expense)
	return nil
}

func (s *fakeExpenseStore) ListExpensesByShop(ctx context.Context, shopID string, from, to time.Time) ([]domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Expense
	for _, e := range s.expenses {
		if e.ShopID == shopID && !e.IncurredAt.Before(from) && e.IncurredAt.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeExpenseStore) SumExpensesByShop(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := make(map[string]int64)
	for _, e := range s.expenses {
		if !e.IncurredAt.Before(from) && e.IncurredAt.Before(to) {
			totals[e.ShopID] += e.Amount
		}
	}
	return totals, nil
}
