package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
	"omnicrm/internal/domain/crm/contact"
	"omnicrm/internal/infrastructure/http/v1/dto"
)

// ContactHandler extends the generic record handler with contact
// specific endpoints (assignment, CSV export).
type ContactHandler struct {
	*RecordHandler[*contact.Contact, dto.CreateContactRequest, dto.UpdateContactRequest]
	service *contact.Service
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(base *BaseHandler, service *contact.Service) *ContactHandler {
	rh := NewRecordHandler(base, RecordHandlerConfig[*contact.Contact, dto.CreateContactRequest, dto.UpdateContactRequest]{
		Service:    service.RecordService,
		EntityName: "contact",
		MapCreateDTO: func(req dto.CreateContactRequest) (*contact.Contact, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req dto.UpdateContactRequest, existing *contact.Contact) (*contact.Contact, error) {
			return req.Apply(existing), nil
		},
	})

	return &ContactHandler{
		RecordHandler: rh,
		service:       service,
	}
}

// Assign handles POST /contacts/:id/assign - set or clear the owner.
func (h *ContactHandler) Assign(c *gin.Context) {
	ctx := c.Request.Context()

	contactID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AssignRequest
	if !h.BindJSON(c, &req) {
		return
	}

	var ownerID *id.ID
	if req.OwnerID != nil && *req.OwnerID != "" {
		parsed, err := id.Parse(*req.OwnerID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid ownerId format"))
			return
		}
		ownerID = &parsed
	}

	if err := h.service.Assign(ctx, contactID, ownerID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "contact assigned")
}

// Export handles GET /contacts/export - stream all contacts as
// gzip-compressed CSV.
func (h *ContactHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()

	filename := fmt.Sprintf("contacts-%s.csv.gz", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Type", "application/gzip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	c.Status(http.StatusOK)
	if _, err := h.service.ExportCSV(ctx, c.Writer); err != nil {
		// Headers are already sent, nothing to render but the log.
		h.Error(c, err)
		return
	}
}
