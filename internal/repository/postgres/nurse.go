package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
)

const nurseRequestColumns = `
	id, code, hospital_id, requested_by, reason, status,
	accepted_by, accepted_at, completed_at, created_at, updated_at
`

func (r *nurseRequestRepository) Get(ctx context.Context, id uuid.UUID) (*model.NurseRequest, error) {
	query := `SELECT ` + nurseRequestColumns + ` FROM nurse_requests WHERE id = $1`

	var req model.NurseRequest
	err := r.db.GetContext(ctx, &req, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get nurse request: %w", err)
	}
	return &req, nil
}

func (r *nurseRequestRepository) ListOpen(ctx context.Context, hospitalID uuid.UUID) ([]*model.NurseRequest, error) {
	query := `
		SELECT ` + nurseRequestColumns + `
		FROM nurse_requests
		WHERE hospital_id = $1
		AND status IN ($2, $3)
		ORDER BY created_at ASC
	`
	var requests []*model.NurseRequest
	err := r.db.SelectContext(ctx, &requests, query, hospitalID,
		model.NurseRequestStatusPending, model.NurseRequestStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list open nurse requests: %w", err)
	}
	return requests, nil
}

// Accept is the first-accept-wins transition. The status=pending guard
// is what turns the source system's last-write-wins race into a clean
// winner/loser outcome.
func (r *nurseRequestRepository) Accept(ctx context.Context, id, nurseID uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE nurse_requests
		SET status = $1, accepted_by = $2, accepted_at = $3, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		model.NurseRequestStatusAccepted, nurseID, at, id, model.NurseRequestStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to accept nurse request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

func (r *nurseRequestRepository) Complete(ctx context.Context, id, nurseID uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE nurse_requests
		SET status = $1, completed_at = $2, updated_at = $2
		WHERE id = $3 AND status = $4 AND accepted_by = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		model.NurseRequestStatusCompleted, at, id, model.NurseRequestStatusAccepted, nurseID)
	if err != nil {
		return false, fmt.Errorf("failed to complete nurse request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

func (r *nurseRequestRepository) ListNotificationsForNurse(ctx context.Context, nurseID uuid.UUID) ([]*model.NurseNotification, error) {
	query := `
		SELECT id, nurse_request_id, nurse_id, hospital_id, dismissed, created_at, updated_at
		FROM nurse_notifications
		WHERE nurse_id = $1 AND dismissed = false
		ORDER BY created_at DESC
	`
	var notifications []*model.NurseNotification
	err := r.db.SelectContext(ctx, &notifications, query, nurseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nurse notifications: %w", err)
	}
	return notifications, nil
}

func (r *nurseRequestRepository) DismissNotification(ctx context.Context, id, nurseID uuid.UUID) error {
	query := `
		UPDATE nurse_notifications
		SET dismissed = true, updated_at = $1
		WHERE id = $2 AND nurse_id = $3
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id, nurseID)
	if err != nil {
		return fmt.Errorf("failed to dismiss nurse notification: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("nurse notification not found")
	}
	return nil
}
