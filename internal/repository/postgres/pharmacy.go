package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
)

const notificationColumns = `
	id, code, hospital_id, prescription_id, patient_id,
	is_emergency, status, created_at, updated_at
`

func (r *pharmacyNotificationRepository) Get(ctx context.Context, id uuid.UUID) (*model.PharmacyNotification, error) {
	query := `SELECT ` + notificationColumns + ` FROM pharmacy_notifications WHERE id = $1`

	var n model.PharmacyNotification
	err := r.db.GetContext(ctx, &n, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get pharmacy notification: %w", err)
	}
	return &n, nil
}

func (r *pharmacyNotificationRepository) List(ctx context.Context, filters *model.PharmacyNotificationFilters) ([]*model.PharmacyNotification, error) {
	query := `SELECT ` + notificationColumns + ` FROM pharmacy_notifications WHERE 1=1`
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

	// Emergency notifications surface first.
	query += " ORDER BY is_emergency DESC, created_at ASC"

	var notifications []*model.PharmacyNotification
	err := r.db.SelectContext(ctx, &notifications, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pharmacy notifications: %w", err)
	}
	return notifications, nil
}

func (r *pharmacyNotificationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.NotificationStatus) error {
	query := `UPDATE pharmacy_notifications SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update notification status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("pharmacy notification not found")
	}
	return nil
}

func (r *pharmacyNotificationRepository) CountByStatus(ctx context.Context, hospitalID uuid.UUID, status model.NotificationStatus) (int, error) {
	query := `SELECT COUNT(*) FROM pharmacy_notifications WHERE hospital_id = $1 AND status = $2`

	var count int
	err := r.db.GetContext(ctx, &count, query, hospitalID, status)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}
