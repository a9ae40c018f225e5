package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
)

func (r *specialtyRepository) List(ctx context.Context) ([]*model.Specialty, error) {
	query := `
		SELECT id, name, description, icon
		FROM specialties
		ORDER BY name ASC
	`
	var specialties []*model.Specialty
	err := r.db.SelectContext(ctx, &specialties, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}
	return specialties, nil
}

func (r *specialtyRepository) Get(ctx context.Context, id uuid.UUID) (*model.Specialty, error) {
	query := `
		SELECT s.id, s.name, s.description, s.icon,
			   COUNT(p.id) AS practitioner_count
		FROM specialties s
		LEFT JOIN practitioners p ON p.specialty_id = s.id
		WHERE s.id = $1
		GROUP BY s.id
	`
	var specialty model.Specialty
	err := r.db.GetContext(ctx, &specialty, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get specialty: %w", err)
	}
	return &specialty, nil
}
