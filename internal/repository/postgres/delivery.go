package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
)

const deliveryTaskColumns = `
	id, code, hospital_id, prescription_id, patient_id, bed_number, ward,
	medications, status, accepted_by, accepted_at, completed_at,
	created_at, updated_at
`

func (r *deliveryTaskRepository) Get(ctx context.Context, id uuid.UUID) (*model.DeliveryTask, error) {
	query := `SELECT ` + deliveryTaskColumns + ` FROM delivery_tasks WHERE id = $1`

	var task model.DeliveryTask
	err := r.db.GetContext(ctx, &task, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery task: %w", err)
	}
	return &task, nil
}

func (r *deliveryTaskRepository) List(ctx context.Context, filters *model.DeliveryTaskFilters) ([]*model.DeliveryTask, error) {
	query := `SELECT ` + deliveryTaskColumns + ` FROM delivery_tasks WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters.HospitalID != uuid.Nil {
		query += fmt.Sprintf(" AND hospital_id = $%d", argCount)
		args = append(args, filters.HospitalID)
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}
	if filters.AcceptedBy != uuid.Nil {
		query += fmt.Sprintf(" AND accepted_by = $%d", argCount)
		args = append(args, filters.AcceptedBy)
		argCount++
	}

	query += " ORDER BY created_at ASC"

	var tasks []*model.DeliveryTask
	err := r.db.SelectContext(ctx, &tasks, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery tasks: %w", err)
	}
	return tasks, nil
}

// Accept claims an assigned task for a delivery partner. The status
// guard makes concurrent claims race safely: only one UPDATE matches.
func (r *deliveryTaskRepository) Accept(ctx context.Context, id, partnerID uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE delivery_tasks
		SET status = $1, accepted_by = $2, accepted_at = $3, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		model.DeliveryTaskStatusAccepted, partnerID, at, id, model.DeliveryTaskStatusAssigned)
	if err != nil {
		return false, fmt.Errorf("failed to accept delivery task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

func (r *deliveryTaskRepository) Complete(ctx context.Context, id, partnerID uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE delivery_tasks
		SET status = $1, completed_at = $2, updated_at = $2
		WHERE id = $3 AND status = $4 AND accepted_by = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		model.DeliveryTaskStatusCompleted, at, id, model.DeliveryTaskStatusAccepted, partnerID)
	if err != nil {
		return false, fmt.Errorf("failed to complete delivery task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

func (r *deliveryTaskRepository) CountByStatus(ctx context.Context, hospitalID uuid.UUID, status model.DeliveryTaskStatus) (int, error) {
	query := `SELECT COUNT(*) FROM delivery_tasks WHERE hospital_id = $1 AND status = $2`

	var count int
	err := r.db.GetContext(ctx, &count, query, hospitalID, status)
	if err != nil {
		return 0, fmt.Errorf("failed to count delivery tasks: %w", err)
	}
	return count, nil
}
