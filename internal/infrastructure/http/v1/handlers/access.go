package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"omnicrm/internal/core/apperror"
	appctx "omnicrm/internal/core/context"
	"omnicrm/internal/core/id"
	"omnicrm/internal/domain/access"
	"omnicrm/internal/infrastructure/http/v1/dto"
	"omnicrm/internal/infrastructure/storage/postgres"
)

// AccessHandler handles role management, permission discovery and
// per-user overrides.
type AccessHandler struct {
	*BaseHandler
	service *access.Service
	audit   *postgres.AuditService
}

// NewAccessHandler creates a new access handler. The audit service may
// be nil (tests); permission changes are then not journaled.
func NewAccessHandler(base *BaseHandler, service *access.Service, audit *postgres.AuditService) *AccessHandler {
	return &AccessHandler{
		BaseHandler: base,
		service:     service,
		audit:       audit,
	}
}

// logAudit journals a permission change; failures are swallowed, the
// primary write already committed.
func (h *AccessHandler) logAudit(c *gin.Context, entityType string, entityID id.ID, action postgres.AuditAction, changes map[string]any) {
	if h.audit == nil {
		return
	}
	_ = h.audit.LogChange(c.Request.Context(), entityType, entityID, action, changes)
}

// Discover handles GET /permissions?locale= - the categorized,
// labelled permission tree for the role-builder screen.
func (h *AccessHandler) Discover(c *gin.Context) {
	ctx := c.Request.Context()

	locale := c.DefaultQuery("locale", "en")
	groups := h.service.Discover(ctx, locale)

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// ListRoles handles GET /roles.
func (h *AccessHandler) ListRoles(c *gin.Context) {
	ctx := c.Request.Context()

	roles, err := h.service.ListRoles(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.RoleResponse, len(roles))
	for i := range roles {
		items[i] = dto.FromRole(&roles[i])
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetRole handles GET /roles/:slug.
func (h *AccessHandler) GetRole(c *gin.Context) {
	ctx := c.Request.Context()

	role, err := h.service.GetRole(ctx, c.Param("slug"))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromRole(role))
}

// CreateRole handles POST /roles.
func (h *AccessHandler) CreateRole(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	role := req.ToEntity()
	if err := h.service.CreateRole(ctx, role); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromRole(role))
}

// ReplacePermissions handles PUT /roles/:slug/permissions - the role
// builder save path.
func (h *AccessHandler) ReplacePermissions(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ReplacePermissionsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	slug := c.Param("slug")
	if err := h.service.ReplaceRolePermissions(ctx, slug, req.Keys()); err != nil {
		h.Error(c, err)
		return
	}

	role, err := h.service.GetRole(ctx, slug)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, "role", role.ID, postgres.AuditActionUpdate, map[string]any{
		"permissions": req.Permissions,
	})

	c.JSON(http.StatusOK, dto.FromRole(role))
}

// DeleteRole handles DELETE /roles/:slug.
func (h *AccessHandler) DeleteRole(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.service.DeleteRole(ctx, c.Param("slug")); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListOverrides handles GET /users/:id/overrides.
func (h *AccessHandler) ListOverrides(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	overrides, err := h.service.ListOverrides(ctx, userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.OverrideResponse, len(overrides))
	for i := range overrides {
		items[i] = dto.FromOverride(&overrides[i])
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// SetOverride handles PUT /users/:id/overrides - upsert a grant or
// revoke for one permission.
func (h *AccessHandler) SetOverride(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.SetOverrideRequest
	if !h.BindJSON(c, &req) {
		return
	}

	override := access.NewOverride(userID, access.Key(req.Permission), access.Effect(req.Effect))
	override.CreatedBy = appctx.GetUserID(ctx)

	if err := h.service.SetOverride(ctx, override); err != nil {
		h.Error(c, err)
		return
	}

	action := postgres.AuditActionGrant
	if override.Effect == access.EffectRevoke {
		action = postgres.AuditActionRevoke
	}
	h.logAudit(c, "permission_override", override.UserID, action, map[string]any{
		"permission": string(override.Permission),
		"effect":     string(override.Effect),
	})

	c.JSON(http.StatusOK, dto.FromOverride(override))
}

// ClearOverride handles DELETE /users/:id/overrides/:permission.
func (h *AccessHandler) ClearOverride(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	key, err := access.ParseKey(c.Param("permission"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid permission key").WithDetail("key", c.Param("permission")))
		return
	}

	if err := h.service.ClearOverride(ctx, userID, key); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(c, "permission_override", userID, postgres.AuditActionDelete, map[string]any{
		"permission": string(key),
	})

	c.Status(http.StatusNoContent)
}
