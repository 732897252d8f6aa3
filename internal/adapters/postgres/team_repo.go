package postgres

import (
	"context"
	"fmt"

	"github.com/samirrijal/minarah/internal/core/domain"
)

// TeamRepo implements ports.RescueTeamRepository.
type TeamRepo struct {
	db *DB
}

func NewTeamRepo(db *DB) *TeamRepo { return &TeamRepo{db: db} }

const teamColumns = `id, name, email, phone, province, area, availability`

func (r *TeamRepo) GetByID(ctx context.Context, id string) (*domain.RescueTeam, error) {
	var t domain.RescueTeam
	var availability string
	err := r.db.Pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM rescue_teams WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Email, &t.Phone, &t.Province, &t.Area, &availability)
	if err != nil {
		return nil, notFound(err, "rescue team", id)
	}
	t.Availability = domain.Availability(availability)
	return &t, nil
}

// GetByEmail relies on idx_teams_email_lower.
func (r *TeamRepo) GetByEmail(ctx context.Context, email string) (*domain.RescueTeam, error) {
	var t domain.RescueTeam
	var availability string
	err := r.db.Pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM rescue_teams WHERE lower(email) = lower($1)`, email).
		Scan(&t.ID, &t.Name, &t.Email, &t.Phone, &t.Province, &t.Area, &availability)
	if err != nil {
		return nil, notFound(err, "rescue team", email)
	}
	t.Availability = domain.Availability(availability)
	return &t, nil
}

func (r *TeamRepo) List(ctx context.Context) ([]domain.RescueTeam, error) {
	return r.query(ctx, `SELECT `+teamColumns+` FROM rescue_teams ORDER BY name`)
}

func (r *TeamRepo) ListByAvailability(ctx context.Context, a domain.Availability) ([]domain.RescueTeam, error) {
	return r.query(ctx, `
		SELECT `+teamColumns+` FROM rescue_teams
		WHERE availability = $1 ORDER BY name
	`, string(a))
}

func (r *TeamRepo) UpdateAvailability(ctx context.Context, id string, a domain.Availability) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE rescue_teams SET availability = $2 WHERE id = $1`, id, string(a))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rescue team %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *TeamRepo) query(ctx context.Context, sql string, args ...any) ([]domain.RescueTeam, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := []domain.RescueTeam{}
	for rows.Next() {
		var t domain.RescueTeam
		var availability string
		if err := rows.Scan(&t.ID, &t.Name, &t.Email, &t.Phone, &t.Province, &t.Area, &availability); err != nil {
			return nil, err
		}
		t.Availability = domain.Availability(availability)
		teams = append(teams, t)
	}
	return teams, rows.Err()
}
