package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
	"omnicrm/internal/domain/crm/settings"
	"omnicrm/internal/infrastructure/http/v1/dto"
)

// SettingsHandler serves one kind of lookup item (tags, statuses or
// lead sources). The kind is fixed at construction, each kind gets its
// own route group and permission key.
type SettingsHandler struct {
	*BaseHandler
	service *settings.Service
	kind    settings.Kind
}

// NewSettingsHandler creates a handler bound to one item kind.
func NewSettingsHandler(base *BaseHandler, service *settings.Service, kind settings.Kind) *SettingsHandler {
	return &SettingsHandler{
		BaseHandler: base,
		service:     service,
		kind:        kind,
	}
}

// List handles GET /settings/{kind} - all items of the kind, ordered
// by position.
func (h *SettingsHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.service.ListByKind(ctx, h.kind)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Create handles POST /settings/{kind}.
func (h *SettingsHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateSettingsItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item := req.ToEntity(h.kind)
	if err := h.service.Create(ctx, item); err != nil {
		h.Error(c, err)
		return
	}

	h.CompleteIdempotency(c, http.StatusCreated, "application/json", item)

	c.JSON(http.StatusCreated, item)
}

// Update handles PUT /settings/{kind}/:id.
func (h *SettingsHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateSettingsItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(ctx, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if existing.Kind != h.kind {
		h.Error(c, apperror.NewNotFound("settings item", itemID.String()))
		return
	}

	updated := req.Apply(existing)
	if err := h.service.Update(ctx, updated); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /settings/{kind}/:id.
func (h *SettingsHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	existing, err := h.service.GetByID(ctx, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if existing.Kind != h.kind {
		h.Error(c, apperror.NewNotFound("settings item", itemID.String()))
		return
	}

	if err := h.service.Delete(ctx, itemID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
