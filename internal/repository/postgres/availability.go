package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medibook/booking-api/internal/model"
)

func (r *availabilityRepository) ListActive(ctx context.Context, practitionerID uuid.UUID) ([]*model.AvailabilityWindow, error) {
	query := `
		SELECT id, practitioner_id, day_of_week, start_time, end_time,
			   is_active, created_at, updated_at
		FROM availability_windows
		WHERE practitioner_id = $1 AND is_active = true
		ORDER BY day_of_week ASC, start_time ASC
	`
	var windows []*model.AvailabilityWindow
	err := r.db.SelectContext(ctx, &windows, query, practitionerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability windows: %w", err)
	}
	return windows, nil
}

// Replace swaps a practitioner's full weekly schedule in one transaction.
func (r *availabilityRepository) Replace(ctx context.Context, practitionerID uuid.UUID, windows []*model.AvailabilityWindow) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM availability_windows WHERE practitioner_id = $1`,
			practitionerID,
		)
		if err != nil {
			return fmt.Errorf("failed to clear availability windows: %w", err)
		}

		now := time.Now()
		for _, w := range windows {
			w.ID = uuid.New()
			w.PractitionerID = practitionerID
			w.CreatedAt = now
			w.UpdatedAt = now

			_, err := tx.ExecContext(ctx, `
				INSERT INTO availability_windows (
					id, practitioner_id, day_of_week, start_time, end_time,
					is_active, created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`,
				w.ID, w.PractitionerID, w.DayOfWeek, w.StartTime, w.EndTime,
				w.IsActive, w.CreatedAt, w.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert availability window: %w", err)
			}
		}
		return nil
	})
}
