// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/SERG-KRUK/tgbot/internal/domain"
	"github.com/SERG-KRUK/tgbot/internal/domain/model"
	"github.com/SERG-KRUK/tgbot/internal/domain/ports/adapter"
	"github.com/SERG-KRUK/tgbot/internal/domain/ports/repository"
)

// memUserRecordRepo is a small in-memory implementation used by unit
// tests. It honours the same atomicity contract as the Postgres repo:
// ApplyAdmissionDecision runs under one lock, so concurrent calls for
// the same user cannot lose counter updates.
type memUserRecordRepo struct {
	mu      sync.Mutex
	store   map[int64]*model.UserRecord
	findErr error // simulate store unavailability
	err     error // simulate failures of mutating ops
}

func newMemUserRecordRepo() *memUserRecordRepo {
	return &memUserRecordRepo{store: make(map[int64]*model.UserRecord)}
}

func (m *memUserRecordRepo) get(userID int64) (*model.UserRecord, bool) {
	u, ok := m.store[userID]
	return u, ok
}

func (m *memUserRecordRepo) Find(ctx context.Context, tx repository.Tx, userID int64) (*model.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.get(userID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRecordRepo) GetOrCreate(ctx context.Context, tx repository.Tx, userID int64, now time.Time) (*model.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.get(userID); ok {
		cp := *u
		return &cp, nil
	}
	d := model.DateOf(now)
	u := &model.UserRecord{UserID: userID, LastRequestDate: &d}
	m.store[userID] = u
	cp := *u
	return &cp, nil
}

func (m *memUserRecordRepo) ApplyAdmissionDecision(ctx context.Context, userID int64, now time.Time) (repository.AdmissionOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return repository.AdmissionOutcome{}, m.err
	}
	today := model.DateOf(now)
	u, ok := m.get(userID)
	switch {
	case !ok:
		m.store[userID] = &model.UserRecord{UserID: userID, LastRequestDate: &today, RequestsToday: 1}
		return repository.AdmissionOutcome{Admitted: true, Reason: repository.ReasonWithinQuota, Remaining: model.MaxFreeRequestsPerDay - 1}, nil
	case u.Subscribed(now):
		return repository.AdmissionOutcome{Admitted: true, Reason: repository.ReasonSubscribed, Remaining: u.Remaining(now)}, nil
	case !u.SameDay(now):
		u.LastRequestDate = &today
		u.RequestsToday = 1
		return repository.AdmissionOutcome{Admitted: true, Reason: repository.ReasonRollover, Remaining: model.MaxFreeRequestsPerDay - 1}, nil
	case u.RequestsToday < model.MaxFreeRequestsPerDay:
		u.RequestsToday++
		return repository.AdmissionOutcome{Admitted: true, Reason: repository.ReasonWithinQuota, Remaining: model.MaxFreeRequestsPerDay - u.RequestsToday}, nil
	default:
		return repository.AdmissionOutcome{Admitted: false, Reason: repository.ReasonQuotaExhausted, Remaining: 0}, nil
	}
}

func (m *memUserRecordRepo) ExtendSubscription(ctx context.Context, tx repository.Tx, userID int64, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	u, ok := m.get(userID)
	if !ok {
		return domain.ErrNotFound
	}
	cp := until
	u.SubscribedUntil = &cp
	return nil
}

func (m *memUserRecordRepo) SetPendingInvoice(ctx context.Context, tx repository.Tx, userID int64, invoiceID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if u, ok := m.get(userID); ok {
		u.PendingInvoiceID = invoiceID
	}
	return nil
}

func (m *memUserRecordRepo) ResetAllDailyCounters(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, u := range m.store {
		if u.RequestsToday != 0 {
			u.RequestsToday = 0
			n++
		}
	}
	return n, nil
}

// memInvoiceRepo keeps invoices in a map and enforces the activate-once
// transition like the SQL guard does.
type memInvoiceRepo struct {
	mu    sync.Mutex
	store map[string]*model.Invoice
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{store: make(map[string]*model.Invoice)}
}

func (m *memInvoiceRepo) Save(ctx context.Context, tx repository.Tx, inv *model.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *inv
	m.store[inv.ID] = &cp
	return nil
}

func (m *memInvoiceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *memInvoiceRepo) MarkActivated(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if inv.Status == model.InvoiceStatusActivated {
		return domain.ErrAlreadyActivated
	}
	inv.Status = model.InvoiceStatusActivated
	now := time.Now()
	inv.ActivatedAt = &now
	return nil
}

// stubGateway is a scriptable payment provider.
type stubGateway struct {
	mu          sync.Mutex
	createErr   error
	invoiceID   string
	payLink     string
	status      string // literal provider status string
	createCalls int
	statusCalls int
}

func (g *stubGateway) Name() string { return "stub" }

func (g *stubGateway) CreateInvoice(ctx context.Context, amountUSD float64, orderID string) (adapter.CreatedInvoice, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	if g.createErr != nil {
		return adapter.CreatedInvoice{}, g.createErr
	}
	return adapter.CreatedInvoice{ID: g.invoiceID, PayLink: g.payLink}, nil
}

func (g *stubGateway) InvoiceStatus(ctx context.Context, invoiceID string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusCalls++
	return g.status
}

// stubAI is a scriptable completion provider.
type stubAI struct {
	text string
	err  error
}

func (s *stubAI) ModelName() string { return "stub-model" }

func (s *stubAI) Complete(ctx context.Context, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

// noopTxManager satisfies repository.TransactionManager without a
// database; repositories accept the nil handle.
type noopTxManager struct{}

func (noopTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
