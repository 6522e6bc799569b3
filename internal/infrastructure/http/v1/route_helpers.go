// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"omnicrm/internal/domain/access"
	"omnicrm/internal/infrastructure/http/v1/middleware"
)

// RecordRouteHandler defines the interface for CRM record handlers.
// All record handlers must implement these methods.
type RecordRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
}

// RegisterRecordRoutes registers standard CRUD routes for a CRM record
// module, guarded by "<module>.<action>" permission keys.
//
// Read routes are deliberately unguarded: every authenticated member of
// the workspace can view data, permissions gate mutations only.
//
// Usage:
//
//	repo := crm_repo.NewContactRepo()
//	service := contact.NewService(repo)
//	handler := handlers.NewContactHandler(baseHandler, service)
//	RegisterRecordRoutes(api.Group("/contacts"), handler, resolver, "contacts")
func RegisterRecordRoutes(group *gin.RouterGroup, handler RecordRouteHandler, resolver *access.Resolver, module string) {
	group.GET("", handler.List)
	group.GET("/:id", handler.Get)

	group.POST("", middleware.RequirePermission(resolver, access.Key(module+".create")), handler.Create)
	group.PUT("/:id", middleware.RequirePermission(resolver, access.Key(module+".edit")), handler.Update)
	group.DELETE("/:id", middleware.RequirePermission(resolver, access.Key(module+".delete")), handler.Delete)
	group.POST("/:id/deletion-mark", middleware.RequirePermission(resolver, access.Key(module+".delete")), handler.SetDeletionMark)
}
