package admins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkpress/inkpress/internal/db"
)

const adminColumns = `id, email, display_name, password_hash, reset_token_hash, reset_token_expires_at, created_at, updated_at`

// Store persists admin accounts in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates an admin store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Create inserts a new admin account. Email is stored lowercased.
func (s *Store) Create(ctx context.Context, email, displayName, passwordHash string) (Admin, error) {
	query := `INSERT INTO admins (email, display_name, password_hash)
	          VALUES ($1, $2, $3)
	          RETURNING ` + adminColumns
	row := s.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email)), displayName, passwordHash)
	admin, err := scanAdmin(row)
	if err != nil {
		return Admin{}, fmt.Errorf("create admin: %w", err)
	}
	return admin, nil
}

// GetByEmail looks up an admin by email, case-insensitively.
func (s *Store) GetByEmail(ctx context.Context, email string) (Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE lower(email) = lower($1)`
	row := s.pool.QueryRow(ctx, query, strings.TrimSpace(email))
	admin, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Admin{}, ErrNotFound
		}
		return Admin{}, fmt.Errorf("get admin by email: %w", err)
	}
	return admin, nil
}

// GetByID looks up an admin by id.
func (s *Store) GetByID(ctx context.Context, id string) (Admin, error) {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return Admin{}, err
	}
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`
	row := s.pool.QueryRow(ctx, query, pgID)
	admin, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Admin{}, ErrNotFound
		}
		return Admin{}, fmt.Errorf("get admin by id: %w", err)
	}
	return admin, nil
}

// Count returns the number of admin accounts.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM admins`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}

// SetResetToken stores the hash and expiry of a freshly issued reset token,
// overwriting any outstanding one.
func (s *Store) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return err
	}
	query := `UPDATE admins
	          SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = now()
	          WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, pgID, tokenHash, pgtype.Timestamptz{Time: expiresAt, Valid: true})
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeResetToken atomically swaps the password hash and clears the reset
// token on the account whose unexpired token hash matches. The conditional
// UPDATE guarantees at most one concurrent consume succeeds.
func (s *Store) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (Admin, error) {
	query := `UPDATE admins
	          SET password_hash = $2, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = now()
	          WHERE reset_token_hash = $1 AND reset_token_expires_at > now()
	          RETURNING ` + adminColumns
	row := s.pool.QueryRow(ctx, query, tokenHash, newPasswordHash)
	admin, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Admin{}, ErrNotFound
		}
		return Admin{}, fmt.Errorf("consume reset token: %w", err)
	}
	return admin, nil
}

// UpdatePassword replaces the password hash for the given admin.
func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return err
	}
	query := `UPDATE admins SET password_hash = $2, updated_at = now() WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, pgID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAdmin(row pgx.Row) (Admin, error) {
	var (
		id        pgtype.UUID
		email     string
		name      string
		hash      string
		tokenHash pgtype.Text
		tokenExp  pgtype.Timestamptz
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &email, &name, &hash, &tokenHash, &tokenExp, &createdAt, &updatedAt); err != nil {
		return Admin{}, err
	}
	return Admin{
		ID:                  id.String(),
		Email:               email,
		DisplayName:         name,
		PasswordHash:        hash,
		ResetTokenHash:      db.TextToString(tokenHash),
		ResetTokenExpiresAt: db.TimeFromPg(tokenExp),
		CreatedAt:           db.TimeFromPg(createdAt),
		UpdatedAt:           db.TimeFromPg(updatedAt),
	}, nil
}
