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

const practitionerColumns = `
	p.id, p.user_id, p.specialty_id,
	u.first_name, u.last_name,
	s.name AS specialty_name,
	p.license_number, p.bio,
	p.consultation_duration, p.consultation_price,
	p.accepts_new_patients, p.teleconsultation_available,
	p.office_address, p.office_city, p.office_postal_code,
	p.average_rating, p.total_reviews,
	p.created_at, p.updated_at
`

const practitionerJoins = `
	FROM practitioners p
	JOIN users u ON p.user_id = u.id
	JOIN specialties s ON p.specialty_id = s.id
`

func (r *practitionerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Practitioner, error) {
	query := `SELECT ` + practitionerColumns + practitionerJoins + ` WHERE p.id = $1 AND u.is_active = true`

	var practitioner model.Practitioner
	err := r.db.GetContext(ctx, &practitioner, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get practitioner: %w", err)
	}
	return &practitioner, nil
}

func (r *practitionerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Practitioner, error) {
	query := `SELECT ` + practitionerColumns + practitionerJoins + ` WHERE p.user_id = $1`

	var practitioner model.Practitioner
	err := r.db.GetContext(ctx, &practitioner, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get practitioner by user: %w", err)
	}
	return &practitioner, nil
}

func (r *practitionerRepository) Search(ctx context.Context, filters *model.PractitionerFilters) ([]*model.Practitioner, int, error) {
	where := " WHERE u.is_active = true"
	args := []interface{}{}
	argCount := 1

	if filters.Specialty != "" {
		where += fmt.Sprintf(" AND (s.id::text = $%d OR LOWER(s.name) LIKE LOWER($%d))", argCount, argCount+1)
		args = append(args, filters.Specialty, "%"+filters.Specialty+"%")
		argCount += 2
	}

	if filters.City != "" {
		where += fmt.Sprintf(" AND LOWER(p.office_city) LIKE LOWER($%d)", argCount)
		args = append(args, "%"+filters.City+"%")
		argCount++
	}

	if filters.Name != "" {
		where += fmt.Sprintf(" AND (LOWER(u.first_name) LIKE LOWER($%d) OR LOWER(u.last_name) LIKE LOWER($%d))", argCount, argCount)
		args = append(args, "%"+filters.Name+"%")
		argCount++
	}

	if filters.Teleconsultation {
		where += " AND p.teleconsultation_available = true"
	}

	if filters.AcceptsNew {
		where += " AND p.accepts_new_patients = true"
	}

	var total int
	countQuery := `SELECT COUNT(*)` + practitionerJoins + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count practitioners: %w", err)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}

	query := `SELECT ` + practitionerColumns + practitionerJoins + where +
		" ORDER BY p.average_rating DESC, p.total_reviews DESC" +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, limit, (page-1)*limit)

	var practitioners []*model.Practitioner
	if err := r.db.SelectContext(ctx, &practitioners, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to search practitioners: %w", err)
	}
	return practitioners, total, nil
}
