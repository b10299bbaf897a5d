package repo

import (
	"context"

	dom "Warden/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRepo provides account persistence.
// Accounts are insert-only: no update or delete exists in this service.
type AccountRepo interface {
	Create(ctx context.Context, username, email, passwordHash string) (dom.Account, error)
	GetByUsername(ctx context.Context, username string) (dom.Account, error)
	GetByID(ctx context.Context, id int64) (dom.Account, error)
	List(ctx context.Context) ([]dom.Account, error)
}

// PGAccountRepo implements AccountRepo with Postgres.
type PGAccountRepo struct {
	db *pgxpool.Pool
}

// NewPGAccountRepo returns a new PGAccountRepo.
func NewPGAccountRepo(db *pgxpool.Pool) *PGAccountRepo {
	return &PGAccountRepo{db: db}
}

// Create inserts a new account and returns it. Uniqueness of username and
// email is enforced by DB constraints; violations come back as pgconn errors
// with code 23505 (see utils.IsPGUniqueViolation).
func (r *PGAccountRepo) Create(ctx context.Context, username, email, passwordHash string) (dom.Account, error) {
	query := `
		INSERT INTO accounts (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, username, email, password_hash, created_at`
	var a dom.Account
	err := r.db.QueryRow(ctx, query, username, email, passwordHash).Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.CreatedAt,
	)
	return a, err
}

// GetByUsername returns the account by username (case-sensitive match).
func (r *PGAccountRepo) GetByUsername(ctx context.Context, username string) (dom.Account, error) {
	var a dom.Account
	err := r.db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at FROM accounts WHERE username = $1`,
		username,
	).Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.CreatedAt)
	return a, err
}

// GetByID returns the account by primary key.
func (r *PGAccountRepo) GetByID(ctx context.Context, id int64) (dom.Account, error) {
	var a dom.Account
	err := r.db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at FROM accounts WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.CreatedAt)
	return a, err
}

// List returns all accounts, newest first.
func (r *PGAccountRepo) List(ctx context.Context) ([]dom.Account, error) {
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM accounts ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Account
	for rows.Next() {
		var a dom.Account
		if err := rows.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
