package crm_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
	"omnicrm/internal/domain/crm/contact"
	"omnicrm/internal/infrastructure/storage/postgres"
)

const contactTable = "crm_contacts"

// ContactRepo implements contact.Repository.
type ContactRepo struct {
	*BaseRecordRepo[*contact.Contact]
}

// NewContactRepo creates a new contact repository.
func NewContactRepo() *ContactRepo {
	return &ContactRepo{
		BaseRecordRepo: NewBaseRecordRepo[*contact.Contact](
			contactTable,
			postgres.ExtractDBColumns[contact.Contact](),
			[]string{"first_name", "last_name", "phone", "email"},
			func() *contact.Contact { return &contact.Contact{} },
		),
	}
}

// FindByPhone retrieves contact by phone.
func (r *ContactRepo) FindByPhone(ctx context.Context, phone string) (*contact.Contact, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"phone": phone}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	c, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("contact", phone)
		}
		return nil, err
	}
	return c, nil
}

// FindByEmail retrieves contact by email.
func (r *ContactRepo) FindByEmail(ctx context.Context, email string) (*contact.Contact, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"email": email}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	c, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("contact", email)
		}
		return nil, err
	}
	return c, nil
}

// SetOwner assigns the contact to a user (nil clears ownership).
func (r *ContactRepo) SetOwner(ctx context.Context, contactID id.ID, ownerID *id.ID) error {
	q := r.Builder().
		Update(contactTable).
		Set("owner_id", ownerID).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": contactID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set owner: %w", err)
	}

	result, err := r.getTxManager(ctx).GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set owner: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("contact", contactID.String())
	}
	return nil
}

// ListAll retrieves every non-deleted contact in creation order.
func (r *ContactRepo) ListAll(ctx context.Context) ([]contact.Contact, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []contact.Contact
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list all contacts: %w", err)
	}
	return items, nil
}
