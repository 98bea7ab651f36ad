package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/pkg/database"
)

const userColumns = `id, email, nickname, password_hash, role, name, provider, provider_id,
		deleted, created_at, updated_at, created_by, updated_by`

type rowScanner interface {
	Scan(dest ...any) error
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var passwordHash, name, provider, providerID sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Nickname,
		&passwordHash,
		&user.Role,
		&name,
		&provider,
		&providerID,
		&user.Deleted,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.CreatedBy,
		&user.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = nullString(passwordHash)
	user.Name = nullString(name)
	user.Provider = nullString(provider)
	user.ProviderID = nullString(providerID)

	return user, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email, nickname, password_hash, role, name, provider, provider_id,
			deleted, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}

	err := r.db.DB.QueryRowContext(ctx, query,
		user.Email,
		user.Nickname,
		user.PasswordHash,
		user.Role,
		user.Name,
		user.Provider,
		user.ProviderID,
		user.Deleted,
		user.CreatedAt,
		user.UpdatedAt,
		user.CreatedBy,
		user.UpdatedBy,
	).Scan(&user.ID)

	if err != nil {
		if sentinel := uniqueViolationError(err); sentinel != nil {
			return fmt.Errorf("failed to create user %s: %w", user.Email, sentinel)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID, including soft-deleted users
func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %d not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email, including soft-deleted users
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByProvider retrieves a user by OAuth2 provider and provider user id
func (r *userRepository) GetByProvider(ctx context.Context, provider, providerID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE provider = $1 AND provider_id = $2`

	user, err := scanUser(r.db.DB.QueryRowContext(ctx, query, provider, providerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user for %s account %s not found: %w", provider, providerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by provider: %w", err)
	}

	return user, nil
}

// ExistsByEmail reports whether any user, deleted or not, has the email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

// ExistsByNickname reports whether any user, deleted or not, has the nickname
func (r *userRepository) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE nickname = $1)`, nickname)
}

func (r *userRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := r.db.DB.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// List returns all users ordered by id
func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
}

// ListActive returns users that are not soft-deleted
func (r *userRepository) ListActive(ctx context.Context) ([]*domain.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE deleted = FALSE ORDER BY id`)
}

func (r *userRepository) list(ctx context.Context, query string) ([]*domain.User, error) {
	rows, err := r.db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// CountActive counts users that are not soft-deleted
func (r *userRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE deleted = FALSE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// Update updates an existing user
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, nickname = $3, password_hash = $4, role = $5, name = $6,
			provider = $7, provider_id = $8, deleted = $9, updated_at = $10, updated_by = $11
		WHERE id = $1
	`

	user.UpdatedAt = time.Now()

	result, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Nickname,
		user.PasswordHash,
		user.Role,
		user.Name,
		user.Provider,
		user.ProviderID,
		user.Deleted,
		user.UpdatedAt,
		user.UpdatedBy,
	)

	if err != nil {
		if sentinel := uniqueViolationError(err); sentinel != nil {
			return fmt.Errorf("failed to update user %d: %w", user.ID, sentinel)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %d not found: %w", user.ID, ErrNotFound)
	}

	return nil
}
