package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
)

const billColumns = `
	id, code, hospital_id, patient_id, services, medications,
	subtotal, tax, discount, total_amount, status,
	payment_method, payment_date, created_at, updated_at
`

func (r *billRepository) Get(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = $1`

	var bill model.Bill
	err := r.db.GetContext(ctx, &bill, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return &bill, nil
}

func (r *billRepository) List(ctx context.Context, filters *model.BillFilters) ([]*model.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters.HospitalID != uuid.Nil {
		query += fmt.Sprintf(" AND hospital_id = $%d", argCount)
		args = append(args, filters.HospitalID)
		argCount++
	}
	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	query += " ORDER BY created_at DESC"

	var bills []*model.Bill
	err := r.db.SelectContext(ctx, &bills, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return bills, nil
}

// MarkPaid guards the pending -> paid transition in the WHERE clause so
// double payments lose cleanly instead of overwriting payment details.
func (r *billRepository) MarkPaid(ctx context.Context, id uuid.UUID, method model.PaymentMethod, paidAt time.Time) (bool, error) {
	query := `
		UPDATE bills
		SET status = $1, payment_method = $2, payment_date = $3, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		model.BillStatusPaid, method, paidAt, id, model.BillStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to mark bill paid: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}
