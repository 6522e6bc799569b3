package pipeline

import (
	"context"
	"fmt"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
	"omnicrm/internal/core/tenant"
	"omnicrm/internal/domain"
	"omnicrm/internal/domain/audit"
	"omnicrm/pkg/logger"
)

// Service provides business logic for the Pipeline record.
type Service struct {
	*domain.RecordService[*Pipeline]
	repo Repository
}

// NewService creates a new Pipeline service.
func NewService(repo Repository) *Service {
	base := domain.NewRecordService(domain.RecordServiceConfig[*Pipeline]{
		Repo:       repo,
		TxManager:  nil,
		EntityName: "pipeline",
	})

	svc := &Service{
		RecordService: base,
		repo:          repo,
	}

	base.Hooks().OnBeforeCreate(func(ctx context.Context, p *Pipeline) error {
		return audit.EnrichCreatedBy(ctx, p)
	})
	base.Hooks().OnBeforeUpdate(func(ctx context.Context, p *Pipeline) error {
		return audit.EnrichUpdatedBy(ctx, p)
	})
	base.Hooks().OnBeforeDelete(svc.guardDelete)

	return svc
}

// guardDelete prevents removing the default pipeline.
func (s *Service) guardDelete(ctx context.Context, p *Pipeline) error {
	if p.IsDefault {
		return apperror.NewBusinessRule("CANNOT_DELETE_DEFAULT_PIPELINE",
			"default pipeline cannot be deleted")
	}
	return nil
}

// GetDefault retrieves the tenant's default pipeline.
func (s *Service) GetDefault(ctx context.Context) (*Pipeline, error) {
	p, err := s.repo.GetDefault(ctx)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("pipeline", "default")
		}
		return nil, err
	}
	return p, nil
}

// SetDefault makes the given pipeline the tenant default.
func (s *Service) SetDefault(ctx context.Context, pipelineID id.ID) error {
	if _, err := s.GetByID(ctx, pipelineID); err != nil {
		return err
	}

	txm, err := tenant.GetTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.SetDefault(ctx, pipelineID.String()); err != nil {
			return fmt.Errorf("set default pipeline: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "default pipeline changed", "pipeline_id", pipelineID)
	return nil
}
