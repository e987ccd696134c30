package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
	"github.com/r4nb1r/ProfilePulse/pkg/database"
	apperrors "github.com/r4nb1r/ProfilePulse/pkg/errors"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and fills in its generated id.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (err error) {
	query := `
		INSERT INTO users (username, password_hash, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "user.create", query)
	defer func() { end(err) }()

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	err = r.db.QueryRow(ctx, query, u.Username, u.PasswordHash, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "username", u.Username)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (_ *domain.User, err error) {
	query := `SELECT id, username, password_hash, google_tokens, created_at FROM users WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "user.get", query)
	defer func() { end(err) }()

	return r.scanUser(ctx, query, strconv.FormatInt(id, 10), id)
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (_ *domain.User, err error) {
	query := `SELECT id, username, password_hash, google_tokens, created_at FROM users WHERE username = $1`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "user.get_by_username", query)
	defer func() { end(err) }()

	return r.scanUser(ctx, query, username, username)
}

// UpdateGoogleTokens stores the credential as JSON.
func (r *UserRepository) UpdateGoogleTokens(ctx context.Context, userID int64, cred *domain.Credential) (err error) {
	query := `UPDATE users SET google_tokens = $2 WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "user.update_tokens", query)
	defer func() { end(err) }()

	var raw []byte
	if cred != nil {
		raw, err = json.Marshal(cred)
		if err != nil {
			return fmt.Errorf("marshal credential: %w", err)
		}
	}

	ct, err := r.db.Exec(ctx, query, userID, raw)
	if err != nil {
		return fmt.Errorf("update google tokens: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", strconv.FormatInt(userID, 10))
	}
	return nil
}

func (r *UserRepository) scanUser(ctx context.Context, query, key string, arg any) (*domain.User, error) {
	var (
		u      domain.User
		tokens []byte
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &tokens, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user", key)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if len(tokens) > 0 {
		var cred domain.Credential
		if err := json.Unmarshal(tokens, &cred); err != nil {
			return nil, fmt.Errorf("decode google tokens: %w", err)
		}
		u.GoogleTokens = &cred
	}
	return &u, nil
}
