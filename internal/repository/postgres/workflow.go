package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hms-api/internal/model"
)

// The workflow repository owns the multi-record clinical cascades. Each
// method runs all writes in one transaction so a crash mid-cascade can
// never leave an unbilled appointment or a prescription without its
// pharmacy notification.

func (r *workflowRepository) CreateAppointmentWithBill(ctx context.Context, apt *model.Appointment, bill *model.Bill, events []*model.OutboxEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	bill.CreatedAt = now
	bill.UpdatedAt = now
	if err := insertBill(ctx, tx, bill); err != nil {
		return err
	}

	apt.BillID = &bill.ID
	apt.CreatedAt = now
	apt.UpdatedAt = now
	query := `
		INSERT INTO appointments (
			id, code, hospital_id, patient_id, doctor_id, department, type,
			start_time, status, notes, bill_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = tx.ExecContext(ctx, query,
		apt.ID,
		apt.Code,
		apt.HospitalID,
		apt.PatientID,
		apt.DoctorID,
		apt.Department,
		apt.Type,
		apt.StartTime,
		apt.Status,
		apt.Notes,
		apt.BillID,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if err := insertOutboxEvents(ctx, tx, events, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit appointment cascade: %w", err)
	}
	return nil
}

func (r *workflowRepository) CreatePrescriptionCascade(ctx context.Context, p *model.Prescription, bill *model.Bill, notif *model.PharmacyNotification, task *model.DeliveryTask, events []*model.OutboxEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	bill.CreatedAt = now
	bill.UpdatedAt = now
	if err := insertBill(ctx, tx, bill); err != nil {
		return err
	}

	p.BillID = &bill.ID
	p.CreatedAt = now
	p.UpdatedAt = now
	query := `
		INSERT INTO prescriptions (
			id, code, hospital_id, patient_id, doctor_id, medications,
			is_emergency, delivery_type, bill_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.ExecContext(ctx, query,
		p.ID,
		p.Code,
		p.HospitalID,
		p.PatientID,
		p.DoctorID,
		p.Medications,
		p.IsEmergency,
		p.DeliveryType,
		p.BillID,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}

	notif.CreatedAt = now
	notif.UpdatedAt = now
	query = `
		INSERT INTO pharmacy_notifications (
			id, code, hospital_id, prescription_id, patient_id,
			is_emergency, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.ExecContext(ctx, query,
		notif.ID,
		notif.Code,
		notif.HospitalID,
		notif.PrescriptionID,
		notif.PatientID,
		notif.IsEmergency,
		notif.Status,
		notif.CreatedAt,
		notif.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create pharmacy notification: %w", err)
	}

	if task != nil {
		task.CreatedAt = now
		task.UpdatedAt = now
		query = `
			INSERT INTO delivery_tasks (
				id, code, hospital_id, prescription_id, patient_id, bed_number,
				ward, medications, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		_, err = tx.ExecContext(ctx, query,
			task.ID,
			task.Code,
			task.HospitalID,
			task.PrescriptionID,
			task.PatientID,
			task.BedNumber,
			task.Ward,
			task.Medications,
			task.Status,
			task.CreatedAt,
			task.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create delivery task: %w", err)
		}
	}

	if err := insertOutboxEvents(ctx, tx, events, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit prescription cascade: %w", err)
	}
	return nil
}

func (r *workflowRepository) CreateNurseBroadcast(ctx context.Context, req *model.NurseRequest, notifs []*model.NurseNotification, event *model.OutboxEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	query := `
		INSERT INTO nurse_requests (
			id, code, hospital_id, requested_by, reason, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.ExecContext(ctx, query,
		req.ID,
		req.Code,
		req.HospitalID,
		req.RequestedBy,
		req.Reason,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create nurse request: %w", err)
	}

	query = `
		INSERT INTO nurse_notifications (
			id, nurse_request_id, nurse_id, hospital_id, dismissed,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, n := range notifs {
		n.CreatedAt = now
		n.UpdatedAt = now
		_, err = tx.ExecContext(ctx, query,
			n.ID,
			n.NurseRequestID,
			n.NurseID,
			n.HospitalID,
			n.Dismissed,
			n.CreatedAt,
			n.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create nurse notification: %w", err)
		}
	}

	if event != nil {
		if err := insertOutboxEvents(ctx, tx, []*model.OutboxEvent{event}, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit nurse broadcast: %w", err)
	}
	return nil
}

func insertBill(ctx context.Context, tx *sqlx.Tx, bill *model.Bill) error {
	query := `
		INSERT INTO bills (
			id, code, hospital_id, patient_id, services, medications,
			subtotal, tax, discount, total_amount, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := tx.ExecContext(ctx, query,
		bill.ID,
		bill.Code,
		bill.HospitalID,
		bill.PatientID,
		bill.Services,
		bill.Medications,
		bill.Subtotal,
		bill.Tax,
		bill.Discount,
		bill.TotalAmount,
		bill.Status,
		bill.CreatedAt,
		bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

func insertOutboxEvents(ctx context.Context, tx *sqlx.Tx, events []*model.OutboxEvent, now time.Time) error {
	query := `
		INSERT INTO outbox_events (
			id, event_type, payload, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, evt := range events {
		evt.CreatedAt = now
		evt.UpdatedAt = now
		evt.Status = string(model.OutboxStatusPending)
		_, err := tx.ExecContext(ctx, query,
			evt.ID,
			evt.EventType,
			evt.Payload,
			evt.Status,
			evt.CreatedAt,
			evt.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create outbox event: %w", err)
		}
	}
	return nil
}
