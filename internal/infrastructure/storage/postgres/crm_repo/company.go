package crm_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/domain/crm/company"
	"omnicrm/internal/infrastructure/storage/postgres"
)

const companyTable = "crm_companies"

// CompanyRepo implements company.Repository.
type CompanyRepo struct {
	*BaseRecordRepo[*company.Company]
}

// NewCompanyRepo creates a new company repository.
func NewCompanyRepo() *CompanyRepo {
	return &CompanyRepo{
		BaseRecordRepo: NewBaseRecordRepo[*company.Company](
			companyTable,
			postgres.ExtractDBColumns[company.Company](),
			[]string{"name", "domain", "email"},
			func() *company.Company { return &company.Company{} },
		),
	}
}

// FindByDomain retrieves company by web domain.
func (r *CompanyRepo) FindByDomain(ctx context.Context, domain string) (*company.Company, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"domain": domain}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	c, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("company", domain)
		}
		return nil, err
	}
	return c, nil
}
