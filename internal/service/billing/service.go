package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/email"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

// Service handles bill retrieval and payment settlement. Bills are
// created by the workflow cascades, never here.
type Service struct {
	billRepo   repository.BillRepository
	userRepo   repository.UserRepository
	outboxRepo repository.OutboxRepository
	emailSvc   email.EmailService
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

func NewService(
	billRepo repository.BillRepository,
	userRepo repository.UserRepository,
	outboxRepo repository.OutboxRepository,
	emailSvc email.EmailService,
	m *metrics.Metrics,
	l *logger.Logger,
) *Service {
	return &Service{
		billRepo:   billRepo,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		emailSvc:   emailSvc,
		metrics:    m,
		logger:     l,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	bill, err := s.billRepo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("bill", err)
	}
	return bill, nil
}

func (s *Service) List(ctx context.Context, filters *model.BillFilters) ([]*model.Bill, error) {
	bills, err := s.billRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return bills, nil
}

// RecordPayment settles a pending bill. The transition only succeeds
// while the bill is still pending, so a double-submitted payment
// settles once and the second attempt gets a conflict.
func (s *Service) RecordPayment(ctx context.Context, billID uuid.UUID, req *model.RecordPaymentRequest) (*model.Bill, error) {
	if !req.PaymentMethod.Valid() {
		return nil, errors.BadRequest(fmt.Sprintf("invalid payment method: %s", req.PaymentMethod), nil)
	}

	paidAt := time.Now()
	ok, err := s.billRepo.MarkPaid(ctx, billID, req.PaymentMethod, paidAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	if !ok {
		bill, getErr := s.billRepo.Get(ctx, billID)
		if getErr != nil {
			return nil, errors.NotFound("bill", getErr)
		}
		return nil, errors.Conflict(fmt.Sprintf("bill %s is already %s", bill.Code, bill.Status), nil)
	}

	bill, err := s.billRepo.Get(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload bill: %w", err)
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"bill_id":        bill.ID,
		"patient_id":     bill.PatientID,
		"total_amount":   bill.TotalAmount,
		"payment_method": req.PaymentMethod,
		"paid_at":        paidAt,
	})
	if err := s.outboxRepo.Create(ctx, &model.OutboxEvent{
		EventType: model.EventBillPaid,
		Payload:   payload,
	}); err != nil {
		s.logger.Error(err, "failed to enqueue bill.paid event", "bill_id", bill.ID)
	}

	s.sendReceipt(ctx, bill)
	s.metrics.BillsPaid.Inc()
	return bill, nil
}

// sendReceipt is best-effort; a mail failure never rolls back a payment.
func (s *Service) sendReceipt(ctx context.Context, bill *model.Bill) {
	patient, err := s.userRepo.Get(ctx, bill.PatientID)
	if err != nil || patient.Email == "" {
		return
	}
	if err := s.emailSvc.SendPaymentReceipt(patient.Email, bill); err != nil {
		s.logger.Error(err, "failed to send payment receipt", "bill_id", bill.ID)
	}
}
