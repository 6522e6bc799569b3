// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"github.com/gin-gonic/gin"

	"omnicrm/internal/core/apperror"
	appctx "omnicrm/internal/core/context"
	"omnicrm/internal/core/id"
	"omnicrm/internal/domain/access"
	"omnicrm/pkg/logger"
)

// RequirePermission guards a route behind one permission key.
//
// The effective set is resolved from the tenant database on EVERY
// request: role base grant plus the user's overrides, revoke winning
// over grant. Nothing is read from the JWT beyond the role slug, and
// nothing is cached, so edits to roles or overrides apply immediately.
//
// There is no admin shortcut here. The admin role is only a full base
// grant; a revoke override strips a key from an admin like anyone else.
//
// An empty key means the route is unguarded and passes through.
// Must run after Auth (user context) and TenantDB (TxManager in context).
func RequirePermission(resolver *access.Resolver, permission access.Key) gin.HandlerFunc {
	return func(c *gin.Context) {
		if permission == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()

		user := appctx.GetUser(ctx)
		if user == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		userID, err := id.Parse(user.UserID)
		if err != nil {
			_ = c.Error(apperror.NewUnauthorized("invalid user identity"))
			c.Abort()
			return
		}

		decision, err := resolver.Authorize(ctx, user.Role, userID, permission)
		if err != nil {
			_ = c.Error(apperror.NewInternal(err).WithDetail("stage", "permission_resolution"))
			c.Abort()
			return
		}

		if !decision.Allowed {
			logger.Warn(ctx, "permission denied",
				"user_id", user.UserID,
				"role", user.Role,
				"required_permission", string(permission))
			_ = c.Error(apperror.NewInsufficientPermissions(string(permission)))
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAnyPermission passes when the user holds at least one of the
// given keys. Used for routes shared between modules (e.g. global search).
func RequireAnyPermission(resolver *access.Resolver, permissions ...access.Key) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(permissions) == 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()

		user := appctx.GetUser(ctx)
		if user == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		userID, err := id.Parse(user.UserID)
		if err != nil {
			_ = c.Error(apperror.NewUnauthorized("invalid user identity"))
			c.Abort()
			return
		}

		set, err := resolver.EffectiveSet(ctx, user.Role, userID)
		if err != nil {
			_ = c.Error(apperror.NewInternal(err).WithDetail("stage", "permission_resolution"))
			c.Abort()
			return
		}

		for _, p := range permissions {
			if set.Has(p) {
				c.Next()
				return
			}
		}

		_ = c.Error(apperror.NewInsufficientPermissions(string(permissions[0])))
		c.Abort()
	}
}
