package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"

	"github.com/samirrijal/minarah/internal/core/domain"
)

// SOSRepo implements ports.SOSRepository.
type SOSRepo struct {
	db    *DB
	clock clockwork.Clock
}

// NewSOSRepo stamps updated_at from clock, or real time when clock is nil.
func NewSOSRepo(db *DB, clock clockwork.Clock) *SOSRepo {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SOSRepo{db: db, clock: clock}
}

const sosColumns = `id, email, name, province, area, location, issue, priority, status, rescue_team, created_at, updated_at`

func (r *SOSRepo) Create(ctx context.Context, req *domain.SOSRequest) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO sos_requests (`+sosColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, req.ID, req.Email, req.Name, req.Province, req.Area, req.Location, req.Issue,
		string(req.Priority), string(req.Status), req.RescueTeam, req.CreatedAt, req.UpdatedAt)
	return err
}

func (r *SOSRepo) GetByID(ctx context.Context, id string) (*domain.SOSRequest, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+sosColumns+` FROM sos_requests WHERE id = $1`, id)
	req, err := scanSOS(row)
	if err != nil {
		return nil, notFound(err, "sos", id)
	}
	return req, nil
}

func (r *SOSRepo) List(ctx context.Context) ([]domain.SOSRequest, error) {
	return r.query(ctx, `SELECT `+sosColumns+` FROM sos_requests ORDER BY created_at, id`)
}

func (r *SOSRepo) ListByStatus(ctx context.Context, status domain.SOSStatus) ([]domain.SOSRequest, error) {
	return r.query(ctx, `
		SELECT `+sosColumns+` FROM sos_requests
		WHERE status = $1 ORDER BY created_at, id
	`, string(status))
}

// ListByArea matches province and area case-insensitively. An empty area
// matches every area in the province.
func (r *SOSRepo) ListByArea(ctx context.Context, province, area string) ([]domain.SOSRequest, error) {
	return r.query(ctx, `
		SELECT `+sosColumns+` FROM sos_requests
		WHERE lower(province) = lower($1) AND ($2 = '' OR lower(area) = lower($2))
		ORDER BY created_at, id
	`, province, area)
}

func (r *SOSRepo) ListByTeam(ctx context.Context, teamID string, status domain.SOSStatus) ([]domain.SOSRequest, error) {
	return r.query(ctx, `
		SELECT `+sosColumns+` FROM sos_requests
		WHERE rescue_team = $1 AND status = $2
		ORDER BY created_at, id
	`, teamID, string(status))
}

// Assign updates only when the row is not Rescued and not already held by
// teamID, so the returned row count is the changed flag.
func (r *SOSRepo) Assign(ctx context.Context, id, teamID string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE sos_requests
		SET rescue_team = $2, status = 'Assigned', updated_at = $3
		WHERE id = $1 AND status <> 'Rescued' AND rescue_team IS DISTINCT FROM $2
	`, id, teamID, r.clock.Now().UTC())
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	status, err := r.status(ctx, id)
	if err != nil {
		return false, err
	}
	if status == domain.StatusRescued {
		return false, fmt.Errorf("%w: sos %s is already rescued", domain.ErrInvalidTransition, id)
	}
	return false, nil
}

func (r *SOSRepo) Resolve(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE sos_requests SET status = 'Rescued', updated_at = $2
		WHERE id = $1 AND status = 'Assigned'
	`, id, r.clock.Now().UTC())
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	status, err := r.status(ctx, id)
	if err != nil {
		return false, err
	}
	if status == domain.StatusPending {
		return false, fmt.Errorf("%w: sos %s has no rescue team", domain.ErrInvalidTransition, id)
	}
	return false, nil
}

func (r *SOSRepo) status(ctx context.Context, id string) (domain.SOSStatus, error) {
	var status string
	err := r.db.Pool.QueryRow(ctx, `SELECT status FROM sos_requests WHERE id = $1`, id).Scan(&status)
	if err != nil {
		return "", notFound(err, "sos", id)
	}
	return domain.SOSStatus(status), nil
}

func (r *SOSRepo) query(ctx context.Context, sql string, args ...any) ([]domain.SOSRequest, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reqs := []domain.SOSRequest{}
	for rows.Next() {
		req, err := scanSOS(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *req)
	}
	return reqs, rows.Err()
}

func scanSOS(row pgx.Row) (*domain.SOSRequest, error) {
	var (
		req      domain.SOSRequest
		priority string
		status   string
	)
	err := row.Scan(&req.ID, &req.Email, &req.Name, &req.Province, &req.Area, &req.Location,
		&req.Issue, &priority, &status, &req.RescueTeam, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	req.Priority = domain.Urgency(priority)
	req.Status = domain.SOSStatus(status)
	return &req, nil
}
