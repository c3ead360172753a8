package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/recipe-share/internal/types"
)

// Insert stores a freshly issued share token.
func (db *DB) Insert(ctx context.Context, token *types.ShareToken) error {
	ids, err := json.Marshal(token.SafeRecipeIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe ids: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO share_tokens
		   (token, safe_recipe_ids, sender_id, scope, created_at, expires_at, used)
		 VALUES ($1, $2, $3, $4, $5, $6, FALSE)`,
		token.Token, ids, token.SenderID, token.Scope, token.CreatedAt, token.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert share token: %w", err)
	}
	return nil
}

// Get loads a share token, or nil if it does not exist.
func (db *DB) Get(ctx context.Context, token string) (*types.ShareToken, error) {
	var (
		rec    types.ShareToken
		ids    []byte
		usedAt *time.Time
		usedBy *string
	)
	err := db.pool.QueryRow(ctx,
		`SELECT token, safe_recipe_ids, sender_id, scope, created_at, expires_at,
		        used, used_at, used_by
		 FROM share_tokens WHERE token = $1`,
		token,
	).Scan(&rec.Token, &ids, &rec.SenderID, &rec.Scope, &rec.CreatedAt,
		&rec.ExpiresAt, &rec.Used, &usedAt, &usedBy)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get share token: %w", err)
	}

	if err := json.Unmarshal(ids, &rec.SafeRecipeIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe ids: %w", err)
	}
	rec.UsedAt = usedAt
	if usedBy != nil {
		rec.UsedBy = *usedBy
	}
	return &rec, nil
}

// Redeem flips the used flag from false to true in a single conditional
// UPDATE.
// The WHERE used = FALSE predicate plus the rows-affected check makes this
// the atomic compare-and-set that guarantees single redemption: under
// concurrent attempts exactly one caller sees true.
func (db *DB) Redeem(ctx context.Context, token, requesterID string, usedAt time.Time) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE share_tokens
		 SET used = TRUE, used_at = $2, used_by = $3
		 WHERE token = $1 AND used = FALSE`,
		token, usedAt, requesterID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to redeem share token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
