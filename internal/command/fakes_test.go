package command

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jinyngg/account/shared/apperror"
	"github.com/jinyngg/account/shared/models"
	"go.uber.org/zap"
)

// memoryStore backs AccountStore, UserStore, LedgerStore and Transactor with
// maps. Reads return copies so callers never alias persisted state.
type memoryStore struct {
	mu            sync.Mutex
	users         map[int64]models.AccountUser
	accounts      map[string]models.Account
	ledger        []models.Transaction
	nextAccountID int64
	nextLedgerID  int64

	// failAccountSave makes every Save of an existing account fail.
	failAccountSave error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:    map[int64]models.AccountUser{},
		accounts: map[string]models.Account{},
	}
}

func (m *memoryStore) addUser(id int64, name string) models.AccountUser {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := models.AccountUser{ID: id, Name: name}
	m.users[id] = u
	return u
}

func (m *memoryStore) addAccount(owner models.AccountUser, accountNumber string, balance int64, status models.AccountStatus) models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextAccountID++
	a := models.Account{
		ID:            m.nextAccountID,
		AccountNumber: accountNumber,
		AccountUser:   owner,
		Status:        status,
		Balance:       balance,
		RegisteredAt:  time.Now().UTC(),
	}
	m.accounts[accountNumber] = a
	return a
}

func (m *memoryStore) addLedger(t models.Transaction) models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextLedgerID++
	t.ID = m.nextLedgerID
	m.ledger = append(m.ledger, t)
	return t
}

func (m *memoryStore) balance(accountNumber string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[accountNumber].Balance
}

func (m *memoryStore) account(accountNumber string) models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[accountNumber]
}

func (m *memoryStore) records() []models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Transaction(nil), m.ledger...)
}

func (m *memoryStore) FindByID(ctx context.Context, id int64) (*models.AccountUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.New(apperror.UserNotFound)
	}
	return &u, nil
}

func (m *memoryStore) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[accountNumber]
	if !ok {
		return nil, apperror.New(apperror.AccountNotFound)
	}
	return &a, nil
}

func (m *memoryStore) Save(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account.ID == 0 {
		m.nextAccountID++
		account.ID = m.nextAccountID
	} else if m.failAccountSave != nil {
		return m.failAccountSave
	}
	m.accounts[account.AccountNumber] = *account
	return nil
}

func (m *memoryStore) LatestAccountNumber(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest models.Account
	for _, a := range m.accounts {
		if a.ID > latest.ID {
			latest = a
		}
	}
	return latest.AccountNumber, nil
}

func (m *memoryStore) CountByUserID(ctx context.Context, userID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.accounts {
		if a.AccountUser.ID == userID {
			n++
		}
	}
	return n, nil
}

// ledgerView adapts memoryStore to LedgerStore; Save is taken by AccountStore.
type ledgerView struct{ *memoryStore }

func (l ledgerView) Save(ctx context.Context, t *models.Transaction) error {
	saved := l.addLedger(*t)
	t.ID = saved.ID
	return nil
}

func (l ledgerView) FindByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.ledger {
		if t.TransactionID == transactionID {
			t := t
			return &t, nil
		}
	}
	return nil, apperror.New(apperror.TransactionNotFound)
}

func (l ledgerView) ExistsSuccessfulCancel(ctx context.Context, transactionID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.ledger {
		if t.Type == models.TransactionTypeCancel && t.Result == models.TransactionResultSuccess && t.CancelledTransactionID == transactionID {
			return true, nil
		}
	}
	return false, nil
}

// WithTx restores accounts and ledger when fn fails.
func (m *memoryStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	accounts := make(map[string]models.Account, len(m.accounts))
	for k, v := range m.accounts {
		accounts[k] = v
	}
	ledgerLen := len(m.ledger)
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.accounts = accounts
		m.ledger = m.ledger[:ledgerLen]
		m.mu.Unlock()
		return err
	}
	return nil
}

type publishedEvent struct {
	stream    string
	eventType string
	data      any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{stream: stream, eventType: eventType, data: data})
	return p.err
}

func (p *recordingPublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

type recordingViews struct {
	mu           sync.Mutex
	transactions map[string]models.TransactionView
	accounts     map[int64]models.AccountView
}

func newRecordingViews() *recordingViews {
	return &recordingViews{
		transactions: map[string]models.TransactionView{},
		accounts:     map[int64]models.AccountView{},
	}
}

func (v *recordingViews) CacheTransactionView(ctx context.Context, view *models.TransactionView) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.transactions[view.TransactionID] = *view
}

func (v *recordingViews) CacheAccountView(ctx context.Context, view *models.AccountView) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.accounts[view.ID] = *view
}

type engineFixture struct {
	store     *memoryStore
	views     *recordingViews
	publisher *recordingPublisher
	engine    *TransactionCommandService
}

func newEngineFixture() *engineFixture {
	store := newMemoryStore()
	views := newRecordingViews()
	publisher := &recordingPublisher{}
	engine := NewTransactionCommandService(store, store, ledgerView{store}, store, views, publisher, zap.NewNop(), 365*24*time.Hour)
	return &engineFixture{store: store, views: views, publisher: publisher, engine: engine}
}

func sortedBalances(records []models.Transaction) []int64 {
	out := make([]int64, 0, len(records))
	for _, r := range records {
		out = append(out, r.BalanceSnapshot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}
