package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
	"github.com/r4nb1r/ProfilePulse/pkg/database"
	apperrors "github.com/r4nb1r/ProfilePulse/pkg/errors"
)

const profileColumns = `id, user_id, business_name, address, phone, website, category,
		monday_open, monday_close, tuesday_open, tuesday_close, status, location_id, last_error, created_at`

// ProfileRepository implements repository.ProfileRepository using PostgreSQL.
type ProfileRepository struct {
	db database.DBTX
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(db database.DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a pending profile and fills in its generated id.
func (r *ProfileRepository) Create(ctx context.Context, p *domain.BusinessProfile) (err error) {
	query := `
		INSERT INTO business_profiles (user_id, business_name, address, phone, website, category,
			monday_open, monday_close, tuesday_open, tuesday_close, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "profile.create", query)
	defer func() { end(err) }()

	p.Status = domain.StatusPending
	p.LocationID = nil
	p.LastError = ""
	p.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	err = r.db.QueryRow(ctx, query,
		p.UserID,
		p.BusinessName,
		p.Address,
		p.Phone,
		p.Website,
		p.Category,
		p.MondayOpen,
		p.MondayClose,
		p.TuesdayOpen,
		p.TuesdayClose,
		string(p.Status),
		p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by its id.
func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (_ *domain.BusinessProfile, err error) {
	query := `SELECT ` + profileColumns + ` FROM business_profiles WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "profile.get", query)
	defer func() { end(err) }()

	p, err := scanProfile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("profile", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// ListByUser returns the user's profiles ordered by id, which follows insertion.
func (r *ProfileRepository) ListByUser(ctx context.Context, userID int64) (_ []*domain.BusinessProfile, err error) {
	query := `SELECT ` + profileColumns + ` FROM business_profiles WHERE user_id = $1 ORDER BY id`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "profile.list", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]*domain.BusinessProfile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return profiles, nil
}

// UpdateStatus advances the status in a single statement. Rows whose current
// status ranks above the target are left untouched; a follow-up lookup tells
// an ignored backward move apart from a missing row.
func (r *ProfileRepository) UpdateStatus(ctx context.Context, id int64, status domain.ProfileStatus, locationID *string) (err error) {
	if !status.IsValid() {
		return apperrors.InvalidInput("unknown profile status " + strconv.Quote(string(status)))
	}

	query := `
		UPDATE business_profiles
		SET status = $2, location_id = COALESCE($3, location_id)
		WHERE id = $1
		  AND CASE status WHEN 'pending' THEN 1 WHEN 'claimed' THEN 2 WHEN 'optimized' THEN 3 ELSE 0 END <= $4`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "profile.update_status", query)
	defer func() { end(err) }()

	var loc any
	if locationID != nil && *locationID != "" {
		loc = *locationID
	}

	ct, err := r.db.Exec(ctx, query, id, string(status), loc, status.Rank())
	if err != nil {
		if isCheckViolation(err) {
			return apperrors.InvalidInput("status " + string(status) + " requires a location id")
		}
		return fmt.Errorf("update profile status: %w", err)
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM business_profiles WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check profile exists: %w", err)
	}
	if !exists {
		return apperrors.NotFound("profile", strconv.FormatInt(id, 10))
	}
	return nil
}

// SetError records an orchestration failure note.
func (r *ProfileRepository) SetError(ctx context.Context, id int64, note string) (err error) {
	query := `UPDATE business_profiles SET last_error = $2 WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "profile.set_error", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, id, note)
	if err != nil {
		return fmt.Errorf("set profile error: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("profile", strconv.FormatInt(id, 10))
	}
	return nil
}

// Stats counts the user's profiles per status.
func (r *ProfileRepository) Stats(ctx context.Context, userID int64) (_ domain.Stats, err error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'optimized'),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'claimed')
		FROM business_profiles
		WHERE user_id = $1`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "profile.stats", query)
	defer func() { end(err) }()

	var st domain.Stats
	if err = r.db.QueryRow(ctx, query, userID).Scan(&st.Total, &st.Optimized, &st.Pending, &st.Claimed); err != nil {
		return domain.Stats{}, fmt.Errorf("profile stats: %w", err)
	}
	return st, nil
}

func scanProfile(row pgx.Row) (*domain.BusinessProfile, error) {
	var (
		p      domain.BusinessProfile
		status string
	)
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.BusinessName,
		&p.Address,
		&p.Phone,
		&p.Website,
		&p.Category,
		&p.MondayOpen,
		&p.MondayClose,
		&p.TuesdayOpen,
		&p.TuesdayClose,
		&status,
		&p.LocationID,
		&p.LastError,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = domain.ProfileStatus(status)
	return &p, nil
}
