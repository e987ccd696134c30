package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
	apperrors "github.com/r4nb1r/ProfilePulse/pkg/errors"
)

func setupUserRepo(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewUserRepository(mock), mock
}

func userColumnNames() []string {
	return []string{"id", "username", "password_hash", "google_tokens", "created_at"}
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := setupUserRepo(t)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("demo", "hash", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

	u := &domain.User{Username: "demo", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, int64(1), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	repo, mock := setupUserRepo(t)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("demo", "hash", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: codeUniqueViolation})

	err := repo.Create(context.Background(), &domain.User{Username: "demo", PasswordHash: "hash"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByUsername_DecodesTokens(t *testing.T) {
	repo, mock := setupUserRepo(t)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)
	mock.ExpectQuery("SELECT .+ FROM users WHERE username").
		WithArgs("demo").
		WillReturnRows(pgxmock.NewRows(userColumnNames()).
			AddRow(int64(1), "demo", "hash", []byte(`{"access_token":"a","refresh_token":"r"}`), now))

	u, err := repo.GetByUsername(context.Background(), "demo")
	require.NoError(t, err)
	require.NotNil(t, u.GoogleTokens)
	assert.Equal(t, "a", u.GoogleTokens.AccessToken)
	assert.Equal(t, "r", u.GoogleTokens.RefreshToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_WithoutTokens(t *testing.T) {
	repo, mock := setupUserRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(userColumnNames()).
			AddRow(int64(1), "demo", "hash", []byte(nil), time.Now()))

	u, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, u.GoogleTokens)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := setupUserRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs(int64(2)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 2)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateGoogleTokens(t *testing.T) {
	repo, mock := setupUserRepo(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE users SET google_tokens").
		WithArgs(int64(1), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE users SET google_tokens").
		WithArgs(int64(9), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	cred := &domain.Credential{AccessToken: "a"}
	assert.NoError(t, repo.UpdateGoogleTokens(context.Background(), 1, cred))
	assert.ErrorIs(t, repo.UpdateGoogleTokens(context.Background(), 9, cred), apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
