package contact

import (
	"context"
	"fmt"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
	"omnicrm/internal/domain"
	"omnicrm/internal/domain/audit"
	"omnicrm/pkg/logger"
)

// Service provides business logic for the Contact record.
// Uses composition with domain.RecordService for common CRUD operations.
type Service struct {
	*domain.RecordService[*Contact] // Embedded for delegation
	repo Repository
}

// NewService creates a new Contact service.
// In Database-per-Tenant, TxManager is obtained from context.
func NewService(repo Repository) *Service {
	base := domain.NewRecordService(domain.RecordServiceConfig[*Contact]{
		Repo:       repo,
		TxManager:  nil, // Will be obtained from context
		EntityName: "contact",
	})

	svc := &Service{
		RecordService: base,
		repo:          repo,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate enriches audit fields and enforces phone/email uniqueness.
func (s *Service) prepareForCreate(ctx context.Context, c *Contact) error {
	if err := audit.EnrichCreatedBy(ctx, c); err != nil {
		return err
	}
	return s.checkUnique(ctx, c)
}

// prepareForUpdate enforces phone/email uniqueness excluding the record itself.
func (s *Service) prepareForUpdate(ctx context.Context, c *Contact) error {
	if err := audit.EnrichUpdatedBy(ctx, c); err != nil {
		return err
	}
	return s.checkUnique(ctx, c)
}

func (s *Service) checkUnique(ctx context.Context, c *Contact) error {
	if c.Phone != nil && *c.Phone != "" {
		existing, err := s.repo.FindByPhone(ctx, *c.Phone)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		if err == nil && existing.ID != c.ID {
			return apperror.NewConflict("contact with this phone already exists").
				WithDetail("phone", *c.Phone)
		}
	}
	if c.Email != nil && *c.Email != "" {
		existing, err := s.repo.FindByEmail(ctx, *c.Email)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		if err == nil && existing.ID != c.ID {
			return apperror.NewConflict("contact with this email already exists").
				WithDetail("email", *c.Email)
		}
	}
	return nil
}

// --- Entity-specific methods (not in base RecordService) ---

// FindByPhone retrieves contact by phone.
func (s *Service) FindByPhone(ctx context.Context, phone string) (*Contact, error) {
	return s.repo.FindByPhone(ctx, phone)
}

// Assign transfers ownership of a contact to another user (nil clears it).
func (s *Service) Assign(ctx context.Context, contactID id.ID, ownerID *id.ID) error {
	if _, err := s.repo.GetByID(ctx, contactID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("contact", contactID.String())
		}
		return err
	}

	if err := s.repo.SetOwner(ctx, contactID, ownerID); err != nil {
		return fmt.Errorf("assign contact: %w", err)
	}

	logger.Info(ctx, "contact assigned",
		"contact_id", contactID,
		"owner_id", ownerID)
	return nil
}

// ListAll returns every non-deleted contact (export path).
func (s *Service) ListAll(ctx context.Context) ([]Contact, error) {
	return s.repo.ListAll(ctx)
}
