package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kitabu/ledger/internal/domain"
	"github.com/kitabu/ledger/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc     func(ctx context.Context, account *domain.Account) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.Account, error)
	GetByCodeFunc  func(ctx context.Context, code string) (*domain.Account, error)
	GetByIDsFunc   func(ctx context.Context, ids []string) ([]*domain.Account, error)
	ListActiveFunc func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	ListByTypeFunc func(ctx context.Context, accountType domain.AccountType) ([]*domain.Account, error)
	SetActiveFunc  func(ctx context.Context, id string, active bool, expectedVersion int64, updatedAt time.Time) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByCode(ctx context.Context, code string) (*domain.Account, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.Code == code {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) ListActive(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if acc.IsActive {
			accounts = append(accounts, acc)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

func (m *MockAccountRepository) ListByType(ctx context.Context, accountType domain.AccountType) ([]*domain.Account, error) {
	if m.ListByTypeFunc != nil {
		return m.ListByTypeFunc(ctx, accountType)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if acc.Type == accountType {
			accounts = append(accounts, acc)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

func (m *MockAccountRepository) SetActive(ctx context.Context, id string, active bool, expectedVersion int64, updatedAt time.Time) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active, expectedVersion, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if acc.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	acc.IsActive = active
	acc.Version++
	acc.UpdatedAt = updatedAt
	return nil
}

// MockTransactionRepository is a mock implementation of
// TransactionRepository. The default CreateTx enforces the idempotency
// key unique constraint the way the database does, so replay races can
// be exercised in tests. When Entries is set, created entries are also
// fed into that entry repository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction
	byKey        map[string]*domain.Transaction

	Entries *MockEntryRepository

	CreateTxFunc            func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIdempotencyKeyFunc func(ctx context.Context, key string) (*domain.Transaction, error)
	UpdateStatusFunc        func(ctx context.Context, id string, status domain.TransactionStatus, expectedVersion int64, updatedAt time.Time) error
	ListPostedFunc          func(ctx context.Context, from, to time.Time, limit, offset int) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
		byKey:        make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) CreateTx(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	if _, ok := m.byKey[txn.IdempotencyKey]; ok {
		m.mu.Unlock()
		return domain.ErrDuplicateIdempotencyKey
	}
	m.transactions[txn.ID] = txn
	m.byKey[txn.IdempotencyKey] = txn
	m.mu.Unlock()
	if m.Entries != nil {
		m.Entries.Add(txn.Entries...)
	}
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if txn, ok := m.transactions[id]; ok {
		return txn, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	if m.GetByIdempotencyKeyFunc != nil {
		return m.GetByIdempotencyKeyFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if txn, ok := m.byKey[key]; ok {
		return txn, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus, expectedVersion int64, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, expectedVersion, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if txn.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	txn.Status = status
	txn.Version++
	txn.UpdatedAt = updatedAt
	return nil
}

func (m *MockTransactionRepository) ListPosted(ctx context.Context, from, to time.Time, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListPostedFunc != nil {
		return m.ListPostedFunc(ctx, from, to, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txns []*domain.Transaction
	for _, txn := range m.transactions {
		if txn.Status == domain.TransactionStatusPending {
			continue
		}
		if txn.PostedAt.Before(from) || txn.PostedAt.After(to) {
			continue
		}
		txns = append(txns, txn)
	}
	sort.Slice(txns, func(i, j int) bool { return txns[i].PostedAt.Before(txns[j].PostedAt) })
	if offset >= len(txns) {
		return nil, nil
	}
	txns = txns[offset:]
	if limit > 0 && limit < len(txns) {
		txns = txns[:limit]
	}
	return txns, nil
}

// Count returns the number of stored transactions.
func (m *MockTransactionRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.transactions)
}

// MockEntryRepository is a mock implementation of EntryRepository.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries []*domain.TransactionEntry

	GetByTransactionFunc func(ctx context.Context, transactionID string) ([]*domain.TransactionEntry, error)
	GetByAccountFunc     func(ctx context.Context, accountID string, from, to time.Time, limit, offset int) ([]*domain.TransactionEntry, error)
	BalanceAsOfFunc      func(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{}
}

// Add appends entries to the repository.
func (m *MockEntryRepository) Add(entries ...*domain.TransactionEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
}

func (m *MockEntryRepository) GetByTransaction(ctx context.Context, transactionID string) ([]*domain.TransactionEntry, error) {
	if m.GetByTransactionFunc != nil {
		return m.GetByTransactionFunc(ctx, transactionID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.TransactionEntry
	for _, e := range m.entries {
		if e.TransactionID == transactionID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *MockEntryRepository) GetByAccount(ctx context.Context, accountID string, from, to time.Time, limit, offset int) ([]*domain.TransactionEntry, error) {
	if m.GetByAccountFunc != nil {
		return m.GetByAccountFunc(ctx, accountID, from, to, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.TransactionEntry
	for _, e := range m.entries {
		if e.AccountID != accountID {
			continue
		}
		if e.PostedAt.Before(from) || e.PostedAt.After(to) {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].PostedAt.Before(entries[j].PostedAt) })
	if offset >= len(entries) {
		return nil, nil
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *MockEntryRepository) BalanceAsOf(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	if m.BalanceAsOfFunc != nil {
		return m.BalanceAsOfFunc(ctx, accountID, asOf)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	balance := decimal.Zero
	for _, e := range m.entries {
		if e.AccountID != accountID || e.PostedAt.After(asOf) {
			continue
		}
		balance = balance.Add(e.Amount())
	}
	return balance, nil
}

// MockLoanRepository is a mock implementation of LoanRepository.
type MockLoanRepository struct {
	mu    sync.RWMutex
	loans map[string]*domain.Loan

	CreateFunc         func(ctx context.Context, loan *domain.Loan) error
	GetByIDFunc        func(ctx context.Context, id string) (*domain.Loan, error)
	UpdateFunc         func(ctx context.Context, loan *domain.Loan, expectedVersion int64) error
	ListByStatusesFunc func(ctx context.Context, statuses []domain.LoanStatus) ([]*domain.Loan, error)
}

func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{
		loans: make(map[string]*domain.Loan),
	}
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, loan)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[loan.ID] = loan
	return nil
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if loan, ok := m.loans[id]; ok {
		return loan, nil
	}
	return nil, domain.ErrLoanNotFound
}

func (m *MockLoanRepository) Update(ctx context.Context, loan *domain.Loan, expectedVersion int64) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, loan, expectedVersion)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.loans[loan.ID]
	if !ok {
		return domain.ErrLoanNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	m.loans[loan.ID] = loan
	return nil
}

func (m *MockLoanRepository) ListByStatuses(ctx context.Context, statuses []domain.LoanStatus) ([]*domain.Loan, error) {
	if m.ListByStatusesFunc != nil {
		return m.ListByStatusesFunc(ctx, statuses)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[domain.LoanStatus]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}
	var loans []*domain.Loan
	for _, loan := range m.loans {
		if wanted[loan.Status] {
			loans = append(loans, loan)
		}
	}
	return loans, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%04d", m.counter)
}

// MockReportCache is a mock implementation of ReportCache.
type MockReportCache struct {
	mu   sync.RWMutex
	data map[string][]byte

	GetFunc           func(ctx context.Context, key string) ([]byte, bool, error)
	SetFunc           func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	InvalidateAllFunc func(ctx context.Context) error
}

func NewMockReportCache() *MockReportCache {
	return &MockReportCache{
		data: make(map[string][]byte),
	}
}

func (m *MockReportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return v, true, nil
	}
	return nil, false, nil
}

func (m *MockReportCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockReportCache) InvalidateAll(ctx context.Context) error {
	if m.InvalidateAllFunc != nil {
		return m.InvalidateAllFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	return nil
}
