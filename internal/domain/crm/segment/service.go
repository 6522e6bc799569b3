package segment

import (
	"context"
	"fmt"

	"omnicrm/internal/core/id"
	"omnicrm/internal/domain"
	"omnicrm/internal/domain/audit"
	"omnicrm/internal/domain/crm/contact"
	"omnicrm/pkg/logger"
)

// Service provides business logic for the Segment record.
type Service struct {
	*domain.RecordService[*Segment]
	repo      Repository
	contacts  contact.Repository
	evaluator *Evaluator
}

// NewService creates a new Segment service.
func NewService(repo Repository, contacts contact.Repository, evaluator *Evaluator) *Service {
	base := domain.NewRecordService(domain.RecordServiceConfig[*Segment]{
		Repo:       repo,
		TxManager:  nil,
		EntityName: "segment",
	})

	svc := &Service{
		RecordService: base,
		repo:          repo,
		contacts:      contacts,
		evaluator:     evaluator,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForWrite)
	base.Hooks().OnBeforeUpdate(svc.prepareForWrite)

	return svc
}

// prepareForWrite rejects expressions that do not compile to a boolean.
func (s *Service) prepareForWrite(ctx context.Context, seg *Segment) error {
	if seg.CreatedBy == "" {
		if err := audit.EnrichCreatedBy(ctx, seg); err != nil {
			return err
		}
	} else {
		if err := audit.EnrichUpdatedBy(ctx, seg); err != nil {
			return err
		}
	}

	_, err := s.evaluator.Compile(seg.Expression)
	return err
}

// ValidateExpression compiles an expression without persisting anything.
func (s *Service) ValidateExpression(expression string) error {
	_, err := s.evaluator.Compile(expression)
	return err
}

// Members evaluates the segment against all contacts and refreshes the
// stored member count.
func (s *Service) Members(ctx context.Context, segmentID id.ID) ([]contact.Contact, error) {
	seg, err := s.GetByID(ctx, segmentID)
	if err != nil {
		return nil, err
	}

	prg, err := s.evaluator.Compile(seg.Expression)
	if err != nil {
		return nil, err
	}

	all, err := s.contacts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}

	members := make([]contact.Contact, 0, len(all))
	for i := range all {
		ok, err := s.evaluator.Matches(prg, &all[i])
		if err != nil {
			// One bad record must not break the whole segment
			logger.Warn(ctx, "segment evaluation failed for contact",
				"segment_id", segmentID,
				"contact_id", all[i].ID,
				"error", err)
			continue
		}
		if ok {
			members = append(members, all[i])
		}
	}

	if err := s.repo.UpdateMemberCount(ctx, segmentID, len(members)); err != nil {
		logger.Warn(ctx, "failed to store segment member count",
			"segment_id", segmentID,
			"error", err)
	}

	return members, nil
}
