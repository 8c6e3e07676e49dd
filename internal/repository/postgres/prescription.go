package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
)

const prescriptionColumns = `
	id, code, hospital_id, patient_id, doctor_id, medications,
	is_emergency, delivery_type, bill_id, created_at, updated_at
`

func (r *prescriptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	query := `SELECT ` + prescriptionColumns + ` FROM prescriptions WHERE id = $1`

	var p model.Prescription
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}
	return &p, nil
}

func (r *prescriptionRepository) List(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.Prescription, error) {
	query := `SELECT ` + prescriptionColumns + ` FROM prescriptions WHERE 1=1`
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
	if filters.DoctorID != uuid.Nil {
		query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
		args = append(args, filters.DoctorID)
		argCount++
	}

	query += " ORDER BY created_at DESC"

	var prescriptions []*model.Prescription
	err := r.db.SelectContext(ctx, &prescriptions, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}

// UpdateMedications rewrites the full medications array, matching the
// source system's overwrite semantics for per-line status updates.
func (r *prescriptionRepository) UpdateMedications(ctx context.Context, id uuid.UUID, medications model.MedicationLines) error {
	query := `UPDATE prescriptions SET medications = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, medications, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update medications: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("prescription not found")
	}
	return nil
}
