package access_repo

import (
	"context"
	"fmt"

	"omnicrm/internal/core/id"
	"omnicrm/internal/domain/access"
	"omnicrm/internal/infrastructure/storage/postgres"
)

// OverrideRepo implements access.OverrideRepository.
// In Database-per-Tenant, TxManager is obtained from context.
type OverrideRepo struct{}

// NewOverrideRepo creates a new override repository.
func NewOverrideRepo() *OverrideRepo {
	return &OverrideRepo{}
}

// getTxManager retrieves TxManager from context.
func (r *OverrideRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// ListForUser returns all override rows for a user.
func (r *OverrideRepo) ListForUser(ctx context.Context, userID id.ID) ([]access.Override, error) {
	q := r.getTxManager(ctx).GetQuerier(ctx)

	query := `
		SELECT id, user_id, permission, effect, created_at, created_by
		FROM permission_overrides WHERE user_id = $1 ORDER BY permission
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query overrides: %w", err)
	}
	defer rows.Close()

	var overrides []access.Override
	for rows.Next() {
		var o access.Override
		var permission, effect string
		if err := rows.Scan(&o.ID, &o.UserID, &permission, &effect, &o.CreatedAt, &o.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		o.Permission = access.Key(permission)
		o.Effect = access.Effect(effect)
		overrides = append(overrides, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overrides: %w", err)
	}

	return overrides, nil
}

// Upsert inserts or replaces the override for (user, permission).
// A later grant replaces an earlier revoke and vice versa.
func (r *OverrideRepo) Upsert(ctx context.Context, o *access.Override) error {
	q := r.getTxManager(ctx).GetQuerier(ctx)

	query := `
		INSERT INTO permission_overrides (id, user_id, permission, effect, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, permission)
		DO UPDATE SET effect = EXCLUDED.effect, created_at = EXCLUDED.created_at, created_by = EXCLUDED.created_by
	`

	_, err := q.Exec(ctx, query,
		o.ID, o.UserID, string(o.Permission), string(o.Effect), o.CreatedAt, o.CreatedBy)
	if err != nil {
		return fmt.Errorf("upsert override: %w", err)
	}

	return nil
}

// Remove deletes the override for (user, permission) if present.
// Removing a non-existent override is not an error.
func (r *OverrideRepo) Remove(ctx context.Context, userID id.ID, permission access.Key) error {
	q := r.getTxManager(ctx).GetQuerier(ctx)

	_, err := q.Exec(ctx,
		`DELETE FROM permission_overrides WHERE user_id = $1 AND permission = $2`,
		userID, string(permission))
	if err != nil {
		return fmt.Errorf("delete override: %w", err)
	}

	return nil
}
