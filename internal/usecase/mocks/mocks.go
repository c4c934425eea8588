package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, account *domain.Account) error
	CreateTxFunc          func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	SetActiveFunc         func(ctx context.Context, id string, active bool, updatedAt time.Time) error
	ListFunc              func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Put(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
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

func (m *MockAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, account)
	}
	return m.Create(ctx, account)
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

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
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

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		acc.Version++
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Active = active
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction

	CreateFunc                    func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	GetByIDFunc                   func(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdateFunc          func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error)
	UpdateStatusFunc              func(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus) error
	SumConfirmedEntriesByUserFunc func(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error)
	ListByAccountFunc             func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
	ListByBusinessDateFunc        func(ctx context.Context, date time.Time, limit, offset int) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) Put(txn *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[txn.ID] = txn
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[txn.ID] = txn
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

func (m *MockTransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if txn, ok := m.transactions[id]; ok {
		txn.Status = status
	}
	return nil
}

func (m *MockTransactionRepository) SumConfirmedEntriesByUser(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, error) {
	if m.SumConfirmedEntriesByUserFunc != nil {
		return m.SumConfirmedEntriesByUserFunc(ctx, userID, from, to)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, txn := range m.transactions {
		if txn.UserID != userID || txn.Type != domain.TypeEntry || txn.Status != domain.StatusConfirmed {
			continue
		}
		if txn.BusinessDate.Before(from) || !txn.BusinessDate.Before(to) {
			continue
		}
		total = total.Add(txn.Amount)
	}
	return total, nil
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txns []*domain.Transaction
	for _, txn := range m.transactions {
		if (txn.SourceAccountID != nil && *txn.SourceAccountID == accountID) ||
			(txn.DestinationAccountID != nil && *txn.DestinationAccountID == accountID) {
			txns = append(txns, txn)
		}
	}
	return txns, nil
}

func (m *MockTransactionRepository) ListByBusinessDate(ctx context.Context, date time.Time, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListByBusinessDateFunc != nil {
		return m.ListByBusinessDateFunc(ctx, date, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txns []*domain.Transaction
	for _, txn := range m.transactions {
		if txn.BusinessDate.Equal(date) {
			txns = append(txns, txn)
		}
	}
	return txns, nil
}

// MockBalanceAuditRepository is a mock implementation of BalanceAuditRepository.
type MockBalanceAuditRepository struct {
	mu     sync.RWMutex
	audits []*domain.BalanceAudit

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, audit *domain.BalanceAudit) error
	SumLedgerDeltasFunc func(ctx context.Context, tx usecase.Transaction, accountID string, after, until time.Time) (decimal.Decimal, error)
	SumAllDeltasFunc    func(ctx context.Context, accountID string) (decimal.Decimal, error)
	ListByAccountFunc   func(ctx context.Context, accountID string, limit, offset int) ([]*domain.BalanceAudit, error)
}

func NewMockBalanceAuditRepository() *MockBalanceAuditRepository {
	return &MockBalanceAuditRepository{}
}

func (m *MockBalanceAuditRepository) Create(ctx context.Context, tx usecase.Transaction, audit *domain.BalanceAudit) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, audit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audits = append(m.audits, audit)
	return nil
}

func (m *MockBalanceAuditRepository) SumLedgerDeltas(ctx context.Context, tx usecase.Transaction, accountID string, after, until time.Time) (decimal.Decimal, error) {
	if m.SumLedgerDeltasFunc != nil {
		return m.SumLedgerDeltasFunc(ctx, tx, accountID, after, until)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, a := range m.audits {
		if a.AccountID != accountID || a.Reason == domain.ReasonClosingCorrection {
			continue
		}
		if !a.CreatedAt.After(after) || a.CreatedAt.After(until) {
			continue
		}
		total = total.Add(a.Delta)
	}
	return total, nil
}

func (m *MockBalanceAuditRepository) SumAllDeltas(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if m.SumAllDeltasFunc != nil {
		return m.SumAllDeltasFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, a := range m.audits {
		if a.AccountID == accountID {
			total = total.Add(a.Delta)
		}
	}
	return total, nil
}

func (m *MockBalanceAuditRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.BalanceAudit, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var audits []*domain.BalanceAudit
	for _, a := range m.audits {
		if a.AccountID == accountID {
			audits = append(audits, a)
		}
	}
	return audits, nil
}

// MockFeeRuleRepository is a mock implementation of FeeRuleRepository.
type MockFeeRuleRepository struct {
	mu    sync.RWMutex
	rules map[string]*domain.FeeRule

	CreateFunc            func(ctx context.Context, rule *domain.FeeRule) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.FeeRule, error)
	ListByMethodBrandFunc func(ctx context.Context, method domain.PaymentMethod, cardBrand string) ([]*domain.FeeRule, error)
	ListFunc              func(ctx context.Context, limit, offset int) ([]*domain.FeeRule, error)
	DeleteFunc            func(ctx context.Context, id string) error
}

func NewMockFeeRuleRepository() *MockFeeRuleRepository {
	return &MockFeeRuleRepository{
		rules: make(map[string]*domain.FeeRule),
	}
}

func (m *MockFeeRuleRepository) Create(ctx context.Context, rule *domain.FeeRule) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rule)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[rule.ID] = rule
	return nil
}

func (m *MockFeeRuleRepository) GetByID(ctx context.Context, id string) (*domain.FeeRule, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rule, ok := m.rules[id]; ok {
		return rule, nil
	}
	return nil, domain.ErrNoMatchingFeeRule
}

func (m *MockFeeRuleRepository) ListByMethodBrand(ctx context.Context, method domain.PaymentMethod, cardBrand string) ([]*domain.FeeRule, error) {
	if m.ListByMethodBrandFunc != nil {
		return m.ListByMethodBrandFunc(ctx, method, cardBrand)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rules []*domain.FeeRule
	for _, rule := range m.rules {
		if rule.Method == method && rule.CardBrand == cardBrand {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

func (m *MockFeeRuleRepository) List(ctx context.Context, limit, offset int) ([]*domain.FeeRule, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rules []*domain.FeeRule
	for _, rule := range m.rules {
		rules = append(rules, rule)
	}
	return rules, nil
}

func (m *MockFeeRuleRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rules, id)
	return nil
}

// MockGoalRepository is a mock implementation of GoalRepository.
type MockGoalRepository struct {
	mu    sync.RWMutex
	goals map[string]*domain.Goal

	UpsertFunc               func(ctx context.Context, goal *domain.Goal) error
	GetBySellerAndPeriodFunc func(ctx context.Context, sellerID string, period domain.GoalPeriod) (*domain.Goal, error)
}

func NewMockGoalRepository() *MockGoalRepository {
	return &MockGoalRepository{
		goals: make(map[string]*domain.Goal),
	}
}

func goalKey(sellerID string, period domain.GoalPeriod) string {
	return sellerID + ":" + string(period)
}

func (m *MockGoalRepository) Upsert(ctx context.Context, goal *domain.Goal) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, goal)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals[goalKey(goal.SellerID, goal.Period)] = goal
	return nil
}

func (m *MockGoalRepository) GetBySellerAndPeriod(ctx context.Context, sellerID string, period domain.GoalPeriod) (*domain.Goal, error) {
	if m.GetBySellerAndPeriodFunc != nil {
		return m.GetBySellerAndPeriodFunc(ctx, sellerID, period)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if goal, ok := m.goals[goalKey(sellerID, period)]; ok {
		return goal, nil
	}
	return nil, domain.ErrGoalNotFound
}

// MockClosingRepository is a mock implementation of ClosingRepository.
type MockClosingRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.ClosingRecord

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, rec *domain.ClosingRecord) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.ClosingRecord, error)
	GetByIDForUpdateFunc    func(ctx context.Context, tx usecase.Transaction, id string) (*domain.ClosingRecord, error)
	GetByAccountAndDateFunc func(ctx context.Context, accountID string, date time.Time) (*domain.ClosingRecord, error)
	GetLatestFunc           func(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.ClosingRecord, error)
	FinalizeFunc            func(ctx context.Context, tx usecase.Transaction, id string, approvedBy string, correction decimal.Decimal, justification string, finalizedAt time.Time) error
	ListByAccountFunc       func(ctx context.Context, accountID string, limit, offset int) ([]*domain.ClosingRecord, error)
}

func NewMockClosingRepository() *MockClosingRepository {
	return &MockClosingRepository{
		records: make(map[string]*domain.ClosingRecord),
	}
}

func (m *MockClosingRepository) Put(rec *domain.ClosingRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
}

func (m *MockClosingRepository) Create(ctx context.Context, tx usecase.Transaction, rec *domain.ClosingRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

func (m *MockClosingRepository) GetByID(ctx context.Context, id string) (*domain.ClosingRecord, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.records[id]; ok {
		return rec, nil
	}
	return nil, domain.ErrClosingNotFound
}

func (m *MockClosingRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.ClosingRecord, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockClosingRepository) GetByAccountAndDate(ctx context.Context, accountID string, date time.Time) (*domain.ClosingRecord, error) {
	if m.GetByAccountAndDateFunc != nil {
		return m.GetByAccountAndDateFunc(ctx, accountID, date)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.records {
		if rec.AccountID == accountID && rec.BusinessDate.Equal(date) {
			return rec, nil
		}
	}
	return nil, domain.ErrClosingNotFound
}

func (m *MockClosingRepository) GetLatest(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.ClosingRecord, error) {
	if m.GetLatestFunc != nil {
		return m.GetLatestFunc(ctx, tx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.ClosingRecord
	for _, rec := range m.records {
		if rec.AccountID != accountID {
			continue
		}
		if latest == nil || rec.BusinessDate.After(latest.BusinessDate) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, domain.ErrClosingNotFound
	}
	return latest, nil
}

func (m *MockClosingRepository) Finalize(ctx context.Context, tx usecase.Transaction, id string, approvedBy string, correction decimal.Decimal, justification string, finalizedAt time.Time) error {
	if m.FinalizeFunc != nil {
		return m.FinalizeFunc(ctx, tx, id, approvedBy, correction, justification, finalizedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[id]; ok {
		rec.Status = domain.ClosingFinalized
		rec.ApprovedBy = approvedBy
		rec.CorrectionAmount = correction
		rec.Justification = justification
		rec.FinalizedAt = &finalizedAt
	}
	return nil
}

func (m *MockClosingRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ClosingRecord, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var records []*domain.ClosingRecord
	for _, rec := range m.records {
		if rec.AccountID == accountID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].BusinessDate.After(records[j].BusinessDate) })
	return records, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregateFunc  func(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	events := make([]*domain.OutboxEvent, len(m.events))
	copy(events, m.events)
	return events
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			events = append(events, e)
		}
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	if m.GetByAggregateFunc != nil {
		return m.GetByAggregateFunc(ctx, aggregateType, aggregateID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			events = append(events, e)
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	return nil
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateFunc          func(ctx context.Context, log *domain.AuditLog) error
	CreateTxFunc        func(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error
	ListFunc            func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetByResourceIDFunc func(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Logs() []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	logs := make([]*domain.AuditLog, len(m.logs))
	copy(logs, m.logs)
	return logs
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, log)
	}
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return m.Logs(), nil
}

func (m *MockAuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	if m.GetByResourceIDFunc != nil {
		return m.GetByResourceIDFunc(ctx, resourceType, resourceID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var logs []*domain.AuditLog
	for _, l := range m.logs {
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			logs = append(logs, l)
		}
	}
	return logs, nil
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	CreateFunc     func(ctx context.Context, user *domain.User) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	UpdateFunc     func(ctx context.Context, user *domain.User) error
	ListFunc       func(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var users []*domain.User
	for _, user := range m.users {
		copied := *user
		users = append(users, &copied)
	}
	return users, nil
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
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockFeeResolver is a mock implementation of FeeResolver.
type MockFeeResolver struct {
	ResolveFunc func(ctx context.Context, method domain.PaymentMethod, cardBrand string, installments int) (*domain.ResolvedFee, error)
}

func NewMockFeeResolver() *MockFeeResolver {
	return &MockFeeResolver{}
}

func (m *MockFeeResolver) Resolve(ctx context.Context, method domain.PaymentMethod, cardBrand string, installments int) (*domain.ResolvedFee, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, method, cardBrand, installments)
	}
	return &domain.ResolvedFee{FeePercent: decimal.Zero}, nil
}

// MockRetrier is a mock implementation of Retrier that runs the operation once.
type MockRetrier struct {
	DoFunc func(ctx context.Context, op func(ctx context.Context) error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if m.DoFunc != nil {
		return m.DoFunc(ctx, op)
	}
	return op(ctx)
}

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu   sync.RWMutex
	data map[string][]byte

	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string][]byte),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
