package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"opolo-api/database"
	"opolo-api/gateway"
	"opolo-api/models"
)

var errStoreDown = errors.New("store unavailable")

type memoryStore struct {
	mu        sync.Mutex
	byPayment map[string]*models.Registration
	insertErr error
	updateErr error
	listErr   error
	updates   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{byPayment: map[string]*models.Registration{}}
}

func (m *memoryStore) Insert(ctx context.Context, reg *models.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	if _, ok := m.byPayment[reg.PaymentID]; ok {
		return errors.New("duplicate payment id")
	}
	cp := *reg
	m.byPayment[reg.PaymentID] = &cp
	return nil
}

func (m *memoryStore) MarkSettled(ctx context.Context, paymentID string, status models.RegistrationStatus, paidAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.updateErr != nil {
		return false, m.updateErr
	}
	reg, ok := m.byPayment[paymentID]
	if !ok || reg.Status != models.StatusPending {
		return false, nil
	}
	reg.Status = status
	reg.PaidAt = &paidAt
	return true, nil
}

func (m *memoryStore) List(ctx context.Context, programType string) ([]models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []models.Registration{}
	for _, r := range m.byPayment {
		if programType == "" || r.ProgramType == programType {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryStore) FindByPaymentID(ctx context.Context, paymentID string) (*models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	r, ok := m.byPayment[paymentID]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memoryStore) get(paymentID string) (models.Registration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byPayment[paymentID]
	if !ok {
		return models.Registration{}, false
	}
	return *r, true
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byPayment)
}

type fakeGateway struct {
	payment *gateway.Payment
	err     error
	calls   []gateway.PaymentRequest
}

func (f *fakeGateway) CreatePayment(ctx context.Context, in gateway.PaymentRequest) (*gateway.Payment, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	return f.payment, nil
}
