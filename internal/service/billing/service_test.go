package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/email"
	"github.com/jwalitptl/hms-api/internal/model"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test", "billing")

type fakeBillRepo struct {
	bills map[uuid.UUID]*model.Bill
}

func (f *fakeBillRepo) Get(_ context.Context, id uuid.UUID) (*model.Bill, error) {
	b, ok := f.bills[id]
	if !ok {
		return nil, apperrors.NotFound("bill", nil)
	}
	return b, nil
}

func (f *fakeBillRepo) List(context.Context, *model.BillFilters) ([]*model.Bill, error) {
	return nil, nil
}

// MarkPaid mirrors the database compare-and-swap on status=pending.
func (f *fakeBillRepo) MarkPaid(_ context.Context, id uuid.UUID, method model.PaymentMethod, paidAt time.Time) (bool, error) {
	b, ok := f.bills[id]
	if !ok || b.Status != model.BillStatusPending {
		return false, nil
	}
	b.Status = model.BillStatusPaid
	b.PaymentMethod = &method
	b.PaymentDate = &paidAt
	return true, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return u, nil
}

func (f *fakeUserRepo) Create(context.Context, *model.User) error   { return nil }
func (f *fakeUserRepo) Update(context.Context, *model.User) error   { return nil }
func (f *fakeUserRepo) Deactivate(context.Context, uuid.UUID) error { return nil }
func (f *fakeUserRepo) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, apperrors.NotFound("user", nil)
}
func (f *fakeUserRepo) List(context.Context, *model.UserFilters) ([]*model.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) ListActiveNurses(context.Context, uuid.UUID) ([]*model.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) UpdateLastLogin(context.Context, uuid.UUID, time.Time) error { return nil }

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}
func (f *fakeOutboxRepo) GetPendingEvents(context.Context, int) ([]*model.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutboxRepo) GetPendingEventsWithLock(context.Context, int) ([]*model.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutboxRepo) UpdateStatus(context.Context, uuid.UUID, model.OutboxStatus, *string, *time.Time) error {
	return nil
}
func (f *fakeOutboxRepo) DeleteProcessedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func newService(billRepo *fakeBillRepo, outboxRepo *fakeOutboxRepo) *Service {
	return NewService(
		billRepo,
		&fakeUserRepo{users: map[uuid.UUID]*model.User{}},
		outboxRepo,
		email.NoopService{},
		testMetrics,
		logger.NewLogger(nil),
	)
}

func pendingBill() *model.Bill {
	return &model.Bill{
		Base:        model.Base{ID: uuid.New()},
		Code:        "BIL-TEST0001",
		PatientID:   uuid.New(),
		Services:    model.ServiceLines{{Name: "Consultation - Cardiology", Cost: 150}},
		Subtotal:    150,
		Tax:         15,
		TotalAmount: 165,
		Status:      model.BillStatusPending,
	}
}

func TestRecordPayment(t *testing.T) {
	bill := pendingBill()
	billRepo := &fakeBillRepo{bills: map[uuid.UUID]*model.Bill{bill.ID: bill}}
	outboxRepo := &fakeOutboxRepo{}
	svc := newService(billRepo, outboxRepo)

	got, err := svc.RecordPayment(context.Background(), bill.ID, &model.RecordPaymentRequest{
		PaymentMethod: model.PaymentMethodCard,
	})
	require.NoError(t, err)

	assert.Equal(t, model.BillStatusPaid, got.Status)
	require.NotNil(t, got.PaymentMethod)
	assert.Equal(t, model.PaymentMethodCard, *got.PaymentMethod)
	assert.NotNil(t, got.PaymentDate)

	require.Len(t, outboxRepo.events, 1)
	assert.Equal(t, model.EventBillPaid, outboxRepo.events[0].EventType)
}

func TestRecordPaymentTwiceConflicts(t *testing.T) {
	bill := pendingBill()
	billRepo := &fakeBillRepo{bills: map[uuid.UUID]*model.Bill{bill.ID: bill}}
	outboxRepo := &fakeOutboxRepo{}
	svc := newService(billRepo, outboxRepo)

	_, err := svc.RecordPayment(context.Background(), bill.ID, &model.RecordPaymentRequest{
		PaymentMethod: model.PaymentMethodCash,
	})
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), bill.ID, &model.RecordPaymentRequest{
		PaymentMethod: model.PaymentMethodCard,
	})
	assert.True(t, apperrors.IsConflict(err))

	// The first settlement sticks.
	assert.Equal(t, model.PaymentMethodCash, *bill.PaymentMethod)
	assert.Len(t, outboxRepo.events, 1)
}

func TestRecordPaymentRejectsUnknownMethod(t *testing.T) {
	bill := pendingBill()
	billRepo := &fakeBillRepo{bills: map[uuid.UUID]*model.Bill{bill.ID: bill}}
	svc := newService(billRepo, &fakeOutboxRepo{})

	_, err := svc.RecordPayment(context.Background(), bill.ID, &model.RecordPaymentRequest{
		PaymentMethod: model.PaymentMethod("barter"),
	})
	assert.Error(t, err)
	assert.Equal(t, model.BillStatusPending, bill.Status)
}

func TestRecordPaymentUnknownBill(t *testing.T) {
	svc := newService(&fakeBillRepo{bills: map[uuid.UUID]*model.Bill{}}, &fakeOutboxRepo{})

	_, err := svc.RecordPayment(context.Background(), uuid.New(), &model.RecordPaymentRequest{
		PaymentMethod: model.PaymentMethodOnline,
	})
	assert.True(t, apperrors.IsNotFound(err))
}
