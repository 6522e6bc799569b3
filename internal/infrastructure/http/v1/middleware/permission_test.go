package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"omnicrm/internal/core/apperror"
	appctx "omnicrm/internal/core/context"
	"omnicrm/internal/core/id"
	"omnicrm/internal/domain/access"
)

type stubRoleRepo struct {
	roles map[string]*access.Role
}

func (s *stubRoleRepo) Create(ctx context.Context, role *access.Role) error { return nil }
func (s *stubRoleRepo) GetBySlug(ctx context.Context, slug string) (*access.Role, error) {
	role, ok := s.roles[slug]
	if !ok {
		return nil, apperror.NewNotFound("role", slug)
	}
	return role, nil
}
func (s *stubRoleRepo) List(ctx context.Context) ([]access.Role, error)       { return nil, nil }
func (s *stubRoleRepo) Update(ctx context.Context, role *access.Role) error   { return nil }
func (s *stubRoleRepo) Delete(ctx context.Context, roleID id.ID) error        { return nil }
func (s *stubRoleRepo) ReplacePermissions(ctx context.Context, roleID id.ID, keys []access.Key) error {
	return nil
}

type stubOverrideRepo struct {
	overrides map[id.ID][]access.Override
}

func (s *stubOverrideRepo) ListForUser(ctx context.Context, userID id.ID) ([]access.Override, error) {
	return s.overrides[userID], nil
}
func (s *stubOverrideRepo) Upsert(ctx context.Context, o *access.Override) error { return nil }
func (s *stubOverrideRepo) Remove(ctx context.Context, userID id.ID, permission access.Key) error {
	return nil
}

// injectUser simulates the Auth middleware for tests.
func injectUser(user *appctx.UserContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := appctx.WithUser(c.Request.Context(), user)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func testRouter(resolver *access.Resolver, user *appctx.UserContext, permission access.Key) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	if user != nil {
		r.Use(injectUser(user))
	}
	r.POST("/contacts", RequirePermission(resolver, permission), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func perform(t *testing.T, r *gin.Engine) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/contacts", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequirePermission_Denied(t *testing.T) {
	userID := id.New()
	resolver := access.NewResolver(
		&stubRoleRepo{roles: map[string]*access.Role{
			"member": {Slug: "member", Permissions: []access.Key{"contacts.view"}},
		}},
		&stubOverrideRepo{},
	)

	user := &appctx.UserContext{UserID: userID.String(), Role: "member"}
	w := perform(t, testRouter(resolver, user, "contacts.create"))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	// The denial body is a fixed wire contract the frontend matches on.
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["error"] != "INSUFFICIENT_PERMISSIONS" {
		t.Errorf("error = %q, want INSUFFICIENT_PERMISSIONS", body["error"])
	}
	if body["required_permission"] != "contacts.create" {
		t.Errorf("required_permission = %q, want contacts.create", body["required_permission"])
	}
	if len(body) != 2 {
		t.Errorf("denial body has extra fields: %v", body)
	}
}

func TestRequirePermission_Allowed(t *testing.T) {
	userID := id.New()
	resolver := access.NewResolver(
		&stubRoleRepo{roles: map[string]*access.Role{
			"agent": {Slug: "agent", Permissions: []access.Key{"contacts.create"}},
		}},
		&stubOverrideRepo{},
	)

	user := &appctx.UserContext{UserID: userID.String(), Role: "agent"}
	w := perform(t, testRouter(resolver, user, "contacts.create"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
}

func TestRequirePermission_GrantOverrideAllows(t *testing.T) {
	userID := id.New()
	resolver := access.NewResolver(
		&stubRoleRepo{roles: map[string]*access.Role{
			"member": {Slug: "member", Permissions: []access.Key{"contacts.view"}},
		}},
		&stubOverrideRepo{overrides: map[id.ID][]access.Override{
			userID: {*access.NewOverride(userID, "contacts.create", access.EffectGrant)},
		}},
	)

	user := &appctx.UserContext{UserID: userID.String(), Role: "member"}
	w := perform(t, testRouter(resolver, user, "contacts.create"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
}

func TestRequirePermission_RevokeDeniesAdmin(t *testing.T) {
	userID := id.New()
	resolver := access.NewResolver(
		&stubRoleRepo{roles: map[string]*access.Role{
			access.RoleAdmin: {Slug: access.RoleAdmin, Permissions: access.Keys()},
		}},
		&stubOverrideRepo{overrides: map[id.ID][]access.Override{
			userID: {*access.NewOverride(userID, "contacts.create", access.EffectRevoke)},
		}},
	)

	user := &appctx.UserContext{UserID: userID.String(), Role: access.RoleAdmin}
	w := perform(t, testRouter(resolver, user, "contacts.create"))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: admin has no bypass", w.Code)
	}
}

func TestRequirePermission_EmptyKeyPassesThrough(t *testing.T) {
	// Unguarded route: no user context required at all.
	resolver := access.NewResolver(&stubRoleRepo{}, &stubOverrideRepo{})

	w := perform(t, testRouter(resolver, nil, ""))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestRequirePermission_MissingUser(t *testing.T) {
	resolver := access.NewResolver(&stubRoleRepo{}, &stubOverrideRepo{})

	w := perform(t, testRouter(resolver, nil, "contacts.create"))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
