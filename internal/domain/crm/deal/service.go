package deal

import (
	"context"
	"fmt"
	"time"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
	"omnicrm/internal/core/tenant"
	"omnicrm/internal/core/types"
	"omnicrm/internal/domain"
	"omnicrm/internal/domain/audit"
	"omnicrm/internal/domain/crm/pipeline"
	"omnicrm/pkg/logger"
	"omnicrm/pkg/numerator"
)

// Service provides business logic for the Deal record.
type Service struct {
	*domain.RecordService[*Deal]
	repo      Repository
	pipelines *pipeline.Service
	numerator *numerator.Service
}

// NewService creates a new Deal service.
func NewService(repo Repository, pipelines *pipeline.Service, num *numerator.Service) *Service {
	base := domain.NewRecordService(domain.RecordServiceConfig[*Deal]{
		Repo:       repo,
		TxManager:  nil,
		EntityName: "deal",
	})

	svc := &Service{
		RecordService: base,
		repo:          repo,
		pipelines:     pipelines,
		numerator:     num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(func(ctx context.Context, d *Deal) error {
		return audit.EnrichUpdatedBy(ctx, d)
	})

	return svc
}

// prepareForCreate generates the deal number, defaults the pipeline and
// entry stage, and enriches audit fields.
func (s *Service) prepareForCreate(ctx context.Context, d *Deal) error {
	if err := audit.EnrichCreatedBy(ctx, d); err != nil {
		return err
	}

	// Default pipeline when none is given
	if id.IsNil(d.PipelineID) {
		def, err := s.pipelines.GetDefault(ctx)
		if err != nil {
			return err
		}
		d.PipelineID = def.ID
		if d.StageSlug == "" {
			d.StageSlug = def.FirstStage().Slug
		}
	}

	// Stage must belong to the pipeline
	p, err := s.pipelines.GetByID(ctx, d.PipelineID)
	if err != nil {
		return err
	}
	if d.StageSlug == "" {
		d.StageSlug = p.FirstStage().Slug
	}
	if _, ok := p.Stages.Find(d.StageSlug); !ok {
		return apperror.NewValidation("stage does not belong to pipeline").
			WithDetail("stage", d.StageSlug).
			WithDetail("pipeline_id", d.PipelineID.String())
	}

	// Generate number if not provided
	if d.Number == "" {
		cfg := numerator.DefaultConfig("DL")
		number, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		d.Number = number
	}

	return nil
}

// --- Entity-specific methods (not in base RecordService) ---

// GetByNumber retrieves deal by its human-readable number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Deal, error) {
	d, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("deal", number)
		}
		return nil, err
	}
	return d, nil
}

// MoveStage moves a deal to another stage of its pipeline.
// Reaching a terminal (won/lost) stage stamps ClosedAt.
func (s *Service) MoveStage(ctx context.Context, dealID id.ID, stageSlug string) (*Deal, error) {
	d, err := s.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}

	p, err := s.pipelines.GetByID(ctx, d.PipelineID)
	if err != nil {
		return nil, err
	}

	stage, ok := p.Stages.Find(stageSlug)
	if !ok {
		return nil, apperror.NewValidation("stage does not belong to pipeline").
			WithDetail("stage", stageSlug).
			WithDetail("pipeline_id", d.PipelineID.String())
	}

	if d.IsClosed() {
		return nil, apperror.NewBusinessRule("DEAL_ALREADY_CLOSED",
			"closed deal cannot change stage")
	}

	d.StageSlug = stage.Slug
	if stage.IsWon || stage.IsLost {
		now := time.Now().UTC()
		d.ClosedAt = &now
	}

	if err := audit.EnrichUpdatedBy(ctx, d); err != nil {
		return nil, err
	}

	txm, err := tenant.GetTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, d)
	})
	if err != nil {
		return nil, fmt.Errorf("move stage: %w", err)
	}

	logger.Info(ctx, "deal moved",
		"deal_id", dealID,
		"stage", stage.Slug,
		"closed", d.IsClosed())

	return d, nil
}

// Forecast returns the weighted open amount per stage for a pipeline.
func (s *Service) Forecast(ctx context.Context, pipelineID id.ID) (map[string]types.Money, error) {
	p, err := s.pipelines.GetByID(ctx, pipelineID)
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.SumByStage(ctx, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("sum by stage: %w", err)
	}

	weighted := make(map[string]types.Money, len(totals))
	for slug, total := range totals {
		stage, ok := p.Stages.Find(slug)
		if !ok {
			continue
		}
		weighted[slug] = total.Mul(types.NewMoney(float64(stage.Probability))).Div(types.NewMoney(100))
	}
	return weighted, nil
}
