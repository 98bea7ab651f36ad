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

// tokenRepository implements TokenRepository interface
type tokenRepository struct {
	db *database.Postgres
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *database.Postgres) TokenRepository {
	return &tokenRepository{db: db}
}

// Upsert stores token as the user's current refresh token. The user's most recent row
// is overwritten and un-revoked when one exists, otherwise a row is inserted.
func (r *tokenRepository) Upsert(ctx context.Context, token *domain.RefreshToken) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return upsertToken(ctx, tx, token)
	})
}

func upsertToken(ctx context.Context, q database.Querier, token *domain.RefreshToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	var existingID int64
	err := q.QueryRowContext(ctx, `
		SELECT id FROM refresh_tokens
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
		FOR UPDATE
	`, token.UserID).Scan(&existingID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = q.QueryRowContext(ctx, `
			INSERT INTO refresh_tokens (token_hash, user_id, expires_at, revoked, created_at)
			VALUES ($1, $2, $3, FALSE, $4)
			RETURNING id
		`, token.TokenHash, token.UserID, token.ExpiresAt, token.CreatedAt).Scan(&token.ID)
	case err == nil:
		token.ID = existingID
		_, err = q.ExecContext(ctx, `
			UPDATE refresh_tokens
			SET token_hash = $2, expires_at = $3, revoked = FALSE, created_at = $4
			WHERE id = $1
		`, existingID, token.TokenHash, token.ExpiresAt, token.CreatedAt)
	default:
		return fmt.Errorf("failed to find refresh token for user %d: %w", token.UserID, err)
	}

	if err != nil {
		if sentinel := uniqueViolationError(err); sentinel != nil {
			return fmt.Errorf("failed to store refresh token: %w", sentinel)
		}
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	token.Revoked = false
	return nil
}

// GetByTokenHash retrieves a refresh token by its hash
func (r *tokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`

	token := &domain.RefreshToken{}

	err := r.db.DB.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.Revoked,
		&token.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token with hash not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get token by hash: %w", err)
	}

	return token, nil
}

// Rotate revokes the presented token and stores next for the same user in one transaction.
// The revoke only matches a token that is still unrevoked, so of two concurrent rotations
// of one token exactly one succeeds; the other gets ErrTokenConsumed.
func (r *tokenRepository) Rotate(ctx context.Context, presentedHash string, next *domain.RefreshToken) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var userID int64
		err := tx.QueryRowContext(ctx, `
			UPDATE refresh_tokens
			SET revoked = TRUE
			WHERE token_hash = $1 AND revoked = FALSE AND expires_at > $2
			RETURNING user_id
		`, presentedHash, time.Now()).Scan(&userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to revoke presented token: %w", ErrTokenConsumed)
			}
			return fmt.Errorf("failed to revoke presented token: %w", err)
		}

		if userID != next.UserID {
			return fmt.Errorf("presented token belongs to user %d, not %d: %w", userID, next.UserID, ErrTokenConsumed)
		}

		return upsertToken(ctx, tx, next)
	})
}

// RevokeAllForUser revokes every unrevoked token of a user
func (r *tokenRepository) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	result, err := r.db.DB.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke tokens for user %d: %w", userID, err)
	}

	return result.RowsAffected()
}

// DeleteExpired deletes all refresh tokens that expired before now
func (r *tokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	return result.RowsAffected()
}

// DeleteRevoked deletes all revoked refresh tokens
func (r *tokenRepository) DeleteRevoked(ctx context.Context) (int64, error) {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE revoked = TRUE`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete revoked tokens: %w", err)
	}

	return result.RowsAffected()
}
