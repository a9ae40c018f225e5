package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
)

const appointmentColumns = `
	id, patient_id, practitioner_id, appointment_date,
	start_time, end_time, status, type, reason, notes,
	cancellation_reason, cancelled_by, cancelled_at,
	created_at, updated_at
`

// BookIfFree serializes conflicting booking attempts per (practitioner,
// date) with a transaction-scoped advisory lock, re-checks the overlap
// predicate against non-cancelled rows, and inserts. A partial unique
// index on (practitioner_id, appointment_date, start_time) backs this
// up at the storage level.
func (r *appointmentRepository) BookIfFree(ctx context.Context, appointment *model.Appointment) error {
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`,
			appointment.PractitionerID.String(),
			appointment.Date.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to acquire booking lock: %w", err)
		}

		var taken bool
		err = tx.GetContext(ctx, &taken, `
			SELECT EXISTS (
				SELECT 1 FROM appointments
				WHERE practitioner_id = $1
				AND appointment_date = $2
				AND status <> 'cancelled'
				AND start_time < $4
				AND end_time > $3
			)
		`,
			appointment.PractitionerID,
			appointment.Date,
			appointment.StartTime,
			appointment.EndTime,
		)
		if err != nil {
			return fmt.Errorf("failed to check slot: %w", err)
		}
		if taken {
			return repository.ErrSlotTaken
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO appointments (
				id, patient_id, practitioner_id, appointment_date,
				start_time, end_time, status, type, reason,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			appointment.ID,
			appointment.PatientID,
			appointment.PractitionerID,
			appointment.Date,
			appointment.StartTime,
			appointment.EndTime,
			appointment.Status,
			appointment.Type,
			appointment.Reason,
			appointment.CreatedAt,
			appointment.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return repository.ErrSlotTaken
		}
		return err
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET status = $1, notes = $2, cancellation_reason = $3,
			cancelled_by = $4, cancelled_at = $5, updated_at = $6
		WHERE id = $7
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.Status,
		appointment.Notes,
		appointment.CancellationReason,
		appointment.CancelledBy,
		appointment.CancelledAt,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argCount := 1

	if filters.PatientID != uuid.Nil {
		where += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}

	if filters.PractitionerID != uuid.Nil {
		where += fmt.Sprintf(" AND practitioner_id = $%d", argCount)
		args = append(args, filters.PractitionerID)
		argCount++
	}

	if filters.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if filters.Upcoming {
		where += " AND (appointment_date > CURRENT_DATE OR (appointment_date = CURRENT_DATE AND start_time > CURRENT_TIME))"
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM appointments` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments` + where +
		" ORDER BY appointment_date DESC, start_time DESC"

	limit := filters.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, limit, (page-1)*limit)

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, total, nil
}

func (r *appointmentRepository) ListForPractitionerRange(ctx context.Context, practitionerID uuid.UUID, from, to model.Date) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE practitioner_id = $1
		AND appointment_date BETWEEN $2 AND $3
		AND status <> 'cancelled'
		ORDER BY appointment_date ASC, start_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, practitionerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list practitioner appointments: %w", err)
	}
	return appointments, nil
}
