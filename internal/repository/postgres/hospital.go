package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
)

func (r *hospitalRepository) Create(ctx context.Context, hospital *model.Hospital) error {
	query := `
		INSERT INTO hospitals (
			id, code, name, address, departments, services,
			bed_capacity, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	hospital.CreatedAt = time.Now()
	hospital.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		hospital.ID,
		hospital.Code,
		hospital.Name,
		hospital.Address,
		hospital.Departments,
		hospital.Services,
		hospital.BedCapacity,
		hospital.Status,
		hospital.CreatedAt,
		hospital.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create hospital: %w", err)
	}
	return nil
}

func (r *hospitalRepository) Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	query := `
		SELECT id, code, name, address, departments, services,
			   bed_capacity, status, created_at, updated_at
		FROM hospitals
		WHERE id = $1 AND deleted_at IS NULL
	`
	var hospital model.Hospital
	err := r.db.GetContext(ctx, &hospital, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}
	return &hospital, nil
}

func (r *hospitalRepository) Update(ctx context.Context, hospital *model.Hospital) error {
	query := `
		UPDATE hospitals
		SET name = $1, address = $2, departments = $3, services = $4,
			bed_capacity = $5, status = $6, updated_at = $7
		WHERE id = $8
	`
	hospital.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		hospital.Name,
		hospital.Address,
		hospital.Departments,
		hospital.Services,
		hospital.BedCapacity,
		hospital.Status,
		hospital.UpdatedAt,
		hospital.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update hospital: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("hospital not found")
	}
	return nil
}

func (r *hospitalRepository) List(ctx context.Context) ([]*model.Hospital, error) {
	query := `
		SELECT id, code, name, address, departments, services,
			   bed_capacity, status, created_at, updated_at
		FROM hospitals
		WHERE deleted_at IS NULL
		ORDER BY name ASC
	`
	var hospitals []*model.Hospital
	err := r.db.SelectContext(ctx, &hospitals, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	return hospitals, nil
}
