package postgres

import (
	"context"

	"github.com/curiolab/curio-hub/internal/domain/shared"
	"github.com/curiolab/curio-hub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository using PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

// Create persists a new account.
func (r *UserRepository) Create(ctx context.Context, account *user.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.conn.Exec(ctx, query,
		account.ID, account.Email, account.PasswordHash, account.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrUserAlreadyExists
		}
		return shared.WrapError("user", "Create", shared.ErrServiceUnavailable,
			"failed to insert account", err)
	}

	return nil
}

// FindByEmail returns the account with the given normalized email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.Account, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM accounts
		WHERE email = $1
	`
	return r.scanOne(ctx, query, email)
}

// FindByID returns the account with the given ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.Account, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM accounts
		WHERE id = $1
	`
	return r.scanOne(ctx, query, id)
}

func (r *UserRepository) scanOne(ctx context.Context, query string, arg any) (*user.Account, error) {
	var account user.Account
	err := r.conn.QueryRow(ctx, query, arg).Scan(
		&account.ID, &account.Email, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrUserNotFound
		}
		return nil, shared.WrapError("user", "Find", shared.ErrServiceUnavailable,
			"failed to query account", err)
	}
	return &account, nil
}
