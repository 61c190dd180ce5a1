package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SanathKumar1997/teez/internal/domain/auth"
)

// registrationLockKey serializes registrations so the admin bootstrap
// decision sees a stable user count.
const registrationLockKey int64 = 0x7465657a5f726567

const uniqueViolation = "23505"

const (
	lockRegistrationSQL = `SELECT pg_advisory_xact_lock($1)`

	countUsersSQL = `SELECT count(*) FROM users`

	insertUserSQL = `INSERT INTO users (id, name, email, password_hash, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	findUserByEmailSQL = `SELECT id, name, email, password_hash, is_admin, created_at
		FROM users WHERE LOWER(email) = LOWER($1)`
)

var _ auth.Repository = (*UserRepository)(nil)

// UserRepository implements auth.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts u while holding a transaction-scoped advisory lock, so
// concurrent registrations cannot both observe an empty users table.
func (r *UserRepository) Create(ctx context.Context, u *auth.User, decide auth.AdminDecision) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, lockRegistrationSQL, registrationLockKey); err != nil {
			return fmt.Errorf("locking registrations: %w", err)
		}

		var existing int64
		if err := tx.QueryRow(ctx, countUsersSQL).Scan(&existing); err != nil {
			return fmt.Errorf("counting users: %w", err)
		}
		u.IsAdmin = decide(existing)

		err := tx.QueryRow(ctx, insertUserSQL,
			u.ID, u.Name, u.Email, u.PasswordHash, u.IsAdmin,
		).Scan(&u.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return auth.ErrDuplicateEmail
			}
			return fmt.Errorf("creating user: %w", err)
		}
		return nil
	})
}

// FindByEmail looks a user up by email, ignoring case.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	var u auth.User
	err := r.pool.QueryRow(ctx, findUserByEmailSQL, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}
	return &u, nil
}
