package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/tropicaldog17/keble/internal/errors"
	"github.com/tropicaldog17/keble/internal/models"
	"github.com/tropicaldog17/keble/internal/notify"
	"github.com/tropicaldog17/keble/internal/repositories"
)

// ---- In-memory Store used in unit tests ----

type memState struct {
	users        map[string]models.User
	wallets      map[string]models.Wallet
	listings     map[string]models.Listing
	investors    map[string]map[string]struct{}
	investments  map[string]models.Investment
	portfolios   map[string]models.Portfolio
	transactions map[string]models.Transaction
}

func newMemState() *memState {
	return &memState{
		users:        map[string]models.User{},
		wallets:      map[string]models.Wallet{},
		listings:     map[string]models.Listing{},
		investors:    map[string]map[string]struct{}{},
		investments:  map[string]models.Investment{},
		portfolios:   map[string]models.Portfolio{},
		transactions: map[string]models.Transaction{},
	}
}

func (m *memState) clone() *memState {
	c := newMemState()
	for k, v := range m.users {
		c.users[k] = v
	}
	for k, v := range m.wallets {
		c.wallets[k] = v
	}
	for k, v := range m.listings {
		c.listings[k] = v
	}
	for k, set := range m.investors {
		c.investors[k] = map[string]struct{}{}
		for u := range set {
			c.investors[k][u] = struct{}{}
		}
	}
	for k, v := range m.investments {
		if v.LastDividendsDate != nil {
			t := *v.LastDividendsDate
			v.LastDividendsDate = &t
		}
		c.investments[k] = v
	}
	for k, v := range m.portfolios {
		c.portfolios[k] = v
	}
	for k, v := range m.transactions {
		c.transactions[k] = v
	}
	return c
}

// mockStore snapshots its state when a transaction begins and restores it when
// the transaction fails. failOn injects an error into the named write.
type mockStore struct {
	mu        sync.Mutex
	state     *memState
	writes    []string
	failOn    map[string]error
	commitErr error
	inTx      bool
}

func newMockStore() *mockStore {
	return &mockStore{state: newMemState(), failOn: map[string]error{}}
}

func (s *mockStore) Users() repositories.UserRepository               { return &mockUsers{s} }
func (s *mockStore) Wallets() repositories.WalletRepository           { return &mockWallets{s} }
func (s *mockStore) Listings() repositories.ListingRepository         { return &mockListings{s} }
func (s *mockStore) Investments() repositories.InvestmentRepository   { return &mockInvestments{s} }
func (s *mockStore) Portfolios() repositories.PortfolioRepository     { return &mockPortfolios{s} }
func (s *mockStore) Transactions() repositories.TransactionRepository { return &mockTransactions{s} }

func (s *mockStore) WithTransaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	snapshot := s.state.clone()
	s.inTx = true
	s.mu.Unlock()

	restore := func() {
		s.mu.Lock()
		s.state = snapshot
		s.inTx = false
		s.mu.Unlock()
	}

	if err := fn(s); err != nil {
		restore()
		return err
	}
	if err := ctx.Err(); err != nil {
		restore()
		return err
	}
	if s.commitErr != nil {
		restore()
		return s.commitErr
	}

	s.mu.Lock()
	s.inTx = false
	s.mu.Unlock()
	return nil
}

// write records an attempted write and returns the injected failure, if any
func (s *mockStore) write(op string) error {
	s.writes = append(s.writes, op)
	return s.failOn[op]
}

func (s *mockStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

func (s *mockStore) wallet(userID string) models.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.state.wallets {
		if w.UserID == userID {
			return w
		}
	}
	return models.Wallet{}
}

func (s *mockStore) listing(id string) models.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.listings[id]
}

func (s *mockStore) investment(id string) (models.Investment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.state.investments[id]
	return inv, ok
}

type mockUsers struct{ s *mockStore }

func (r *mockUsers) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("users.Create"); err != nil {
		return err
	}
	r.s.state.users[user.ID] = *user
	return nil
}

func (r *mockUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.state.users[id]
	if !ok {
		return nil, apperrors.MissingUser(id)
	}
	return &u, nil
}

type mockWallets struct{ s *mockStore }

func (r *mockWallets) Create(ctx context.Context, wallet *models.Wallet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("wallets.Create"); err != nil {
		return err
	}
	r.s.state.wallets[wallet.ID] = *wallet
	return nil
}

func (r *mockWallets) GetByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.state.wallets {
		if w.UserID == userID {
			return &w, nil
		}
	}
	return nil, apperrors.MissingWallet(userID)
}

func (r *mockWallets) Debit(ctx context.Context, walletID string, amount decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("wallets.Debit"); err != nil {
		return err
	}
	w, ok := r.s.state.wallets[walletID]
	if !ok {
		return &apperrors.ErrNotFound{Entity: apperrors.EntityWallet, ID: walletID}
	}
	if w.Balance.LessThan(amount) {
		return repositories.ErrInsufficientBalance
	}
	w.Balance = w.Balance.Sub(amount)
	r.s.state.wallets[walletID] = w
	return nil
}

func (r *mockWallets) Credit(ctx context.Context, walletID string, amount decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("wallets.Credit"); err != nil {
		return err
	}
	w, ok := r.s.state.wallets[walletID]
	if !ok {
		return &apperrors.ErrNotFound{Entity: apperrors.EntityWallet, ID: walletID}
	}
	w.Balance = w.Balance.Add(amount)
	r.s.state.wallets[walletID] = w
	return nil
}

type mockListings struct{ s *mockStore }

func (r *mockListings) Create(ctx context.Context, listing *models.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("listings.Create"); err != nil {
		return err
	}
	r.s.state.listings[listing.ID] = *listing
	return nil
}

func (r *mockListings) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.state.listings[id]
	if !ok {
		return nil, apperrors.MissingListing(id)
	}
	return &l, nil
}

func (r *mockListings) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[string]*models.Listing{}
	for _, id := range ids {
		if l, ok := r.s.state.listings[id]; ok {
			out[id] = &l
		}
	}
	return out, nil
}

func (r *mockListings) ReserveTokens(ctx context.Context, listingID string, tokens int64, amount decimal.Decimal, newInvestment bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("listings.ReserveTokens"); err != nil {
		return err
	}
	l, ok := r.s.state.listings[listingID]
	if !ok {
		return apperrors.MissingListing(listingID)
	}
	if l.AvailableTokens < tokens {
		return repositories.ErrInsufficientTokens
	}
	l.AvailableTokens -= tokens
	l.TotalTokensBought += tokens
	l.TotalInvestmentAmount = l.TotalInvestmentAmount.Add(amount)
	if newInvestment {
		l.TotalInvestmentsMade++
	}
	r.s.state.listings[listingID] = l
	return nil
}

func (r *mockListings) AddInvestor(ctx context.Context, listingID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("listings.AddInvestor"); err != nil {
		return err
	}
	if r.s.state.investors[listingID] == nil {
		r.s.state.investors[listingID] = map[string]struct{}{}
	}
	r.s.state.investors[listingID][userID] = struct{}{}
	return nil
}

func (r *mockListings) CountInvestors(ctx context.Context, listingID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.state.investors[listingID])), nil
}

type mockInvestments struct{ s *mockStore }

func (r *mockInvestments) Create(ctx context.Context, inv *models.Investment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("investments.Create"); err != nil {
		return err
	}
	if err := inv.Validate(); err != nil {
		return &apperrors.ErrValidation{Field: "investment", Message: err.Error()}
	}
	r.s.state.investments[inv.ID] = *inv
	return nil
}

func (r *mockInvestments) GetByID(ctx context.Context, id string) (*models.Investment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.state.investments[id]
	if !ok {
		return nil, apperrors.MissingInvestment(id)
	}
	return &inv, nil
}

func (r *mockInvestments) GetByIDForUpdate(ctx context.Context, id string) (*models.Investment, error) {
	return r.GetByID(ctx, id)
}

func (r *mockInvestments) List(ctx context.Context, filter *models.InvestmentFilter) ([]*models.Investment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Investment
	for _, inv := range r.s.state.investments {
		inv := inv
		if filter != nil {
			if filter.UserID != "" && inv.UserID != filter.UserID {
				continue
			}
			if filter.PortfolioID != "" && (inv.PortfolioID == nil || *inv.PortfolioID != filter.PortfolioID) {
				continue
			}
			if filter.ListingID != "" && inv.ListingID != filter.ListingID {
				continue
			}
		}
		out = append(out, &inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *mockInvestments) IncrementTopUp(ctx context.Context, id string, amount decimal.Decimal, tokens int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("investments.IncrementTopUp"); err != nil {
		return err
	}
	inv, ok := r.s.state.investments[id]
	if !ok || inv.Status != models.InvestmentStatusActive {
		return apperrors.MissingInvestment(id)
	}
	inv.Amount = inv.Amount.Add(amount)
	inv.NoTokens += tokens
	r.s.state.investments[id] = inv
	return nil
}

func (r *mockInvestments) AdvanceDividend(ctx context.Context, id string, previous *time.Time, next time.Time, amount decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("investments.AdvanceDividend"); err != nil {
		return err
	}
	inv, ok := r.s.state.investments[id]
	if !ok {
		return repositories.ErrStaleCheckpoint
	}
	current := inv.LastDividendsDate
	if (current == nil) != (previous == nil) || (current != nil && !current.Equal(*previous)) {
		return repositories.ErrStaleCheckpoint
	}
	inv.LastDividendsDate = &next
	inv.DividendsPaid = inv.DividendsPaid.Add(amount)
	r.s.state.investments[id] = inv
	return nil
}

type mockPortfolios struct{ s *mockStore }

func (r *mockPortfolios) Create(ctx context.Context, portfolio *models.Portfolio) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("portfolios.Create"); err != nil {
		return err
	}
	if err := portfolio.Validate(); err != nil {
		return &apperrors.ErrValidation{Field: "portfolio", Message: err.Error()}
	}
	if portfolio.ID == "" {
		portfolio.ID = "pf_mock"
	}
	r.s.state.portfolios[portfolio.ID] = *portfolio
	return nil
}

func (r *mockPortfolios) GetByID(ctx context.Context, id string) (*models.Portfolio, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.state.portfolios[id]
	if !ok {
		return nil, apperrors.MissingPortfolio(id)
	}
	return &p, nil
}

func (r *mockPortfolios) ListByUser(ctx context.Context, userID string) ([]*models.Portfolio, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Portfolio
	for _, p := range r.s.state.portfolios {
		p := p
		if p.UserID == userID {
			out = append(out, &p)
		}
	}
	return out, nil
}

type mockTransactions struct{ s *mockStore }

func (r *mockTransactions) Create(ctx context.Context, tx *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.write("transactions.Create"); err != nil {
		return err
	}
	if err := tx.Validate(); err != nil {
		return err
	}
	r.s.state.transactions[tx.ID] = *tx
	return nil
}

func (r *mockTransactions) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tx, ok := r.s.state.transactions[id]
	if !ok {
		return nil, apperrors.MissingTransaction(id)
	}
	return &tx, nil
}

func (r *mockTransactions) ListByInvestment(ctx context.Context, investmentID string) ([]*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Transaction
	for _, tx := range r.s.state.transactions {
		tx := tx
		if tx.InvestmentID != nil && *tx.InvestmentID == investmentID {
			out = append(out, &tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Reference < out[j].Reference
	})
	return out, nil
}

// ---- Publishers ----

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *recordingPublisher) Publish(event notify.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

type panickingPublisher struct{}

func (panickingPublisher) Publish(notify.Event) {
	panic("notifier exploded")
}
