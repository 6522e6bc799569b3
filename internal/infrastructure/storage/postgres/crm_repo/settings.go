package crm_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/domain/crm/settings"
	"omnicrm/internal/infrastructure/storage/postgres"
)

const settingsTable = "crm_settings_items"

// SettingsRepo implements settings.Repository.
type SettingsRepo struct {
	*BaseRecordRepo[*settings.Item]
}

// NewSettingsRepo creates a new settings item repository.
func NewSettingsRepo() *SettingsRepo {
	return &SettingsRepo{
		BaseRecordRepo: NewBaseRecordRepo[*settings.Item](
			settingsTable,
			postgres.ExtractDBColumns[settings.Item](),
			[]string{"name", "slug"},
			func() *settings.Item { return &settings.Item{} },
		),
	}
}

// FindBySlug retrieves an item by kind and slug.
func (r *SettingsRepo) FindBySlug(ctx context.Context, kind settings.Kind, slug string) (*settings.Item, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"kind": kind}).
		Where(squirrel.Eq{"slug": slug}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("settings item", slug)
		}
		return nil, err
	}
	return item, nil
}

// ListByKind retrieves non-deleted items of one kind ordered by position.
func (r *SettingsRepo) ListByKind(ctx context.Context, kind settings.Kind) ([]settings.Item, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"kind": kind}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("position ASC", "name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []settings.Item
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list by kind: %w", err)
	}
	return items, nil
}
