package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/participant"
	"github.com/sanosuguru/go-event-booking/internal/domain/payment"
	"github.com/sanosuguru/go-event-booking/internal/domain/profile"
	"github.com/sanosuguru/go-event-booking/internal/domain/review"
	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-event-booking/internal/infrastructure/sslcommerz"
)

// === Mock implementations ===

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockEventRepository implements event.Repository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, e *event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*event.Event, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventRepository) ListOpen(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventRepository) ReserveSeat(ctx context.Context, tx transaction.Tx, id string) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventRepository) ReleaseSeat(ctx context.Context, tx transaction.Tx, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockEventRepository) UpdateStatusIf(ctx context.Context, id string, to event.Status, from ...event.Status) (bool, error) {
	args := m.Called(ctx, id, to, from)
	return args.Bool(0), args.Error(1)
}

// MockParticipantRepository implements participant.Repository
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) Create(ctx context.Context, tx transaction.Tx, p *participant.Participant) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockParticipantRepository) GetByID(ctx context.Context, id string) (*participant.Participant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*participant.Participant), args.Error(1)
}

func (m *MockParticipantRepository) GetByTransactionID(ctx context.Context, transactionID string) (*participant.Participant, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*participant.Participant), args.Error(1)
}

func (m *MockParticipantRepository) GetActive(ctx context.Context, eventID, clientID string) (*participant.Participant, error) {
	args := m.Called(ctx, eventID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*participant.Participant), args.Error(1)
}

func (m *MockParticipantRepository) ListActiveByEventID(ctx context.Context, eventID string) ([]*participant.Participant, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*participant.Participant), args.Error(1)
}

func (m *MockParticipantRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, id string, status participant.Status) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

func (m *MockParticipantRepository) ConfirmIfNotLeft(ctx context.Context, tx transaction.Tx, id string) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockParticipantRepository) LeaveIfNotLeft(ctx context.Context, tx transaction.Tx, id string) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

// MockPaymentRepository implements payment.Repository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*payment.Payment, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SettleIfPending(ctx context.Context, tx transaction.Tx, transactionID string, status payment.Status) (bool, error) {
	args := m.Called(ctx, tx, transactionID, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) ListByClientID(ctx context.Context, clientID string, limit, offset int) ([]*payment.Payment, error) {
	args := m.Called(ctx, clientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListByHostID(ctx context.Context, hostID string, limit, offset int) ([]*payment.Payment, error) {
	args := m.Called(ctx, hostID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]*payment.Payment, error) {
	args := m.Called(ctx, olderThan, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountPending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockReviewRepository implements review.Repository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, tx transaction.Tx, r *review.Review) error {
	args := m.Called(ctx, tx, r)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByTransactionID(ctx context.Context, transactionID string) (*review.Review, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Review), args.Error(1)
}

func (m *MockReviewRepository) Exists(ctx context.Context, eventID, clientID string) (bool, error) {
	args := m.Called(ctx, eventID, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) ListLatest(ctx context.Context, limit int) ([]*review.Review, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*review.Review), args.Error(1)
}

// MockClientRepository implements profile.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) GetByID(ctx context.Context, id string) (*profile.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Client), args.Error(1)
}

// MockHostRepository implements profile.HostRepository
type MockHostRepository struct {
	mock.Mock
}

func (m *MockHostRepository) GetByID(ctx context.Context, id string) (*profile.Host, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Host), args.Error(1)
}

func (m *MockHostRepository) AddIncome(ctx context.Context, tx transaction.Tx, id string, amount float64) error {
	args := m.Called(ctx, tx, id, amount)
	return args.Error(0)
}

func (m *MockHostRepository) GetForUpdate(ctx context.Context, tx transaction.Tx, id string) (*profile.Host, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Host), args.Error(1)
}

func (m *MockHostRepository) UpdateRating(ctx context.Context, tx transaction.Tx, id string, rating float64, count int) error {
	args := m.Called(ctx, tx, id, rating, count)
	return args.Error(0)
}

// MockAdminLedgerRepository implements profile.AdminLedgerRepository
type MockAdminLedgerRepository struct {
	mock.Mock
}

func (m *MockAdminLedgerRepository) GetByID(ctx context.Context, id string) (*profile.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Admin), args.Error(1)
}

func (m *MockAdminLedgerRepository) AddIncome(ctx context.Context, tx transaction.Tx, id string, amount float64) error {
	args := m.Called(ctx, tx, id, amount)
	return args.Error(0)
}

// MockCheckoutGateway implements CheckoutGateway
type MockCheckoutGateway struct {
	mock.Mock
}

func (m *MockCheckoutGateway) InitCheckout(ctx context.Context, input sslcommerz.CheckoutInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

// === Test fixtures ===

func activeClient(id string) *profile.Client {
	return &profile.Client{
		Identity: profile.Identity{
			ID:     id,
			Name:   "テスト太郎",
			Email:  "taro@example.com",
			Status: profile.AccountActive,
		},
		ContactNumber: "01700000000",
		Location:      "Dhaka",
	}
}

func suspendedClient(id string) *profile.Client {
	c := activeClient(id)
	c.Status = profile.AccountSuspended
	return c
}

func openEvent(id, hostID string, capacity int) *event.Event {
	return &event.Event{
		ID:         id,
		HostID:     hostID,
		Title:      "テストイベント",
		Date:       time.Now().Add(24 * time.Hour),
		Capacity:   capacity,
		JoiningFee: 100,
		Status:     event.StatusOpen,
	}
}
