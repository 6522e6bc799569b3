// Package main provides a CLI tool for seeding a tenant database with
// initial data: builtin roles, the admin user, the default pipeline and
// the standard lookup items.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"omnicrm/internal/core/id"
	"omnicrm/internal/core/tenant"
	"omnicrm/internal/domain/access"
	"omnicrm/internal/domain/crm/pipeline"
	"omnicrm/internal/domain/crm/settings"
	"omnicrm/internal/infrastructure/storage/postgres"
	"omnicrm/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to tenant database
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	// Seed builtin roles first: the admin user references the admin slug
	if err := seedBuiltinRoles(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed builtin roles", "error", err)
	}

	adminUserID, err := seedAdminUser(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if err := seedDefaultPipeline(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed default pipeline", "error", err)
	}

	if err := seedLookupItems(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed lookup items", "error", err)
	}

	// Seed demo data if requested
	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedTenantRegistry(ctx, dbURL, log); err != nil {
			log.Warnw("failed to seed tenant registry", "error", err)
		}
		if err := seedDemoData(ctx, pool, log, adminUserID); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// seedBuiltinRoles inserts the system roles and their baseline
// permission sets. Re-runs refresh permissions of system roles so new
// catalog keys reach existing tenants.
func seedBuiltinRoles(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	for _, role := range access.BuiltinRoles() {
		roleID := id.New()
		now := time.Now().UTC()

		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO roles (id, slug, name, description, is_system, created_at, updated_at)
			VALUES ($1, $2, $3, $4, true, $5, $5)
			ON CONFLICT (slug) DO NOTHING
		`, roleID, role.Slug, role.Name, role.Description, now)
		if err != nil {
			return fmt.Errorf("insert role %s: %w", role.Slug, err)
		}

		if commandTag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx,
				`SELECT id FROM roles WHERE slug = $1`, role.Slug,
			).Scan(&roleID)
			if err != nil {
				return fmt.Errorf("fetch role %s: %w", role.Slug, err)
			}
		}

		// Refresh the base set
		if _, err := pool.Pool.Exec(ctx,
			`DELETE FROM role_permissions WHERE role_id = $1`, roleID,
		); err != nil {
			return fmt.Errorf("clear permissions for %s: %w", role.Slug, err)
		}

		for _, key := range role.Permissions {
			if _, err := pool.Pool.Exec(ctx, `
				INSERT INTO role_permissions (role_id, permission)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, roleID, string(key)); err != nil {
				return fmt.Errorf("insert permission %s for %s: %w", key, role.Slug, err)
			}
		}

		log.Infow("role seeded", "slug", role.Slug, "permissions", len(role.Permissions))
	}

	return nil
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@omnicrm.io"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	// Check if admin already exists
	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1 AND deleted_at IS NULL`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return existingID, nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check admin exists: %w", err)
	}

	// Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now().UTC()

	// The admin role carries the full base set; there is no bypass flag
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name, role_slug,
			is_active, email_verified, email_verified_at,
			created_at, updated_at, version
		)
		VALUES ($1, $2, $3, 'System', 'Admin', $4, true, true, $5, $5, $5, 1)
	`, userID, adminEmail, string(passwordHash), access.RoleAdmin, now)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created",
		"email", adminEmail,
		"user_id", userID,
		"role", access.RoleAdmin,
	)

	return userID, nil
}

// seedDefaultPipeline inserts the standard sales funnel and marks it
// default unless a default pipeline already exists.
func seedDefaultPipeline(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM crm_pipelines WHERE is_default AND NOT deletion_mark`,
	).Scan(&existingID)
	if err == nil {
		log.Infow("default pipeline already exists", "pipeline_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check default pipeline: %w", err)
	}

	p := pipeline.NewPipeline("Sales", pipeline.DefaultStages())
	p.IsDefault = true

	stagesJSON, err := p.Stages.Value()
	if err != nil {
		return fmt.Errorf("marshal stages: %w", err)
	}

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO crm_pipelines (
			id, name, stages, is_default,
			version, deletion_mark, attributes,
			created_at, updated_at, created_by, updated_by
		)
		VALUES ($1, $2, $3, true, 1, false, '{}', $4, $4, '', '')
	`, p.ID, p.Name, stagesJSON, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert pipeline: %w", err)
	}

	log.Infow("default pipeline seeded", "pipeline_id", p.ID, "stages", len(p.Stages))
	return nil
}

// seedLookupItems inserts the standard statuses, lead sources and a
// starter tag set.
func seedLookupItems(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	type itemSeed struct {
		kind  settings.Kind
		slug  string
		name  string
		color string
	}

	items := []itemSeed{
		{settings.KindStatus, "new", "New", "#2196f3"},
		{settings.KindStatus, "in_progress", "In Progress", "#ff9800"},
		{settings.KindStatus, "customer", "Customer", "#4caf50"},
		{settings.KindStatus, "inactive", "Inactive", "#9e9e9e"},

		{settings.KindLeadSource, "whatsapp", "WhatsApp", "#25d366"},
		{settings.KindLeadSource, "web_form", "Web Form", "#3f51b5"},
		{settings.KindLeadSource, "referral", "Referral", "#795548"},
		{settings.KindLeadSource, "cold_outreach", "Cold Outreach", "#607d8b"},

		{settings.KindTag, "vip", "VIP", "#ffc107"},
		{settings.KindTag, "newsletter", "Newsletter", "#00bcd4"},
	}

	for position, it := range items {
		itemID := id.New()
		now := time.Now().UTC()
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO crm_settings_items (
				id, kind, slug, name, color, position,
				version, deletion_mark, attributes,
				created_at, updated_at, created_by, updated_by
			)
			VALUES ($1, $2, $3, $4, $5, $6, 1, false, '{}', $7, $7, '', '')
			ON CONFLICT (kind, slug) WHERE deletion_mark = FALSE DO NOTHING
		`, itemID, string(it.kind), it.slug, it.name, it.color, position, now)
		if err != nil {
			log.Warnw("failed to seed lookup item", "kind", it.kind, "slug", it.slug, "error", err)
		}
	}

	log.Info("lookup items seeded")
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger, adminUserID id.ID) error {
	log.Info("seeding demo data...")

	// 1. Demo companies
	companies := []struct {
		name    string
		domain  string
		size    string
		country string
	}{
		{"Acme Retail", "acme-retail.example", "medium", "US"},
		{"Blue Harbor Logistics", "blueharbor.example", "large", "NL"},
		{"Sunrise Cafe", "sunrisecafe.example", "micro", "ES"},
	}

	companyIDs := make(map[string]id.ID)
	for _, c := range companies {
		companyID := id.New()
		now := time.Now().UTC()
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO crm_companies (
				id, name, domain, size, country, owner_id, tags,
				version, deletion_mark, attributes,
				created_at, updated_at, created_by, updated_by
			)
			VALUES ($1, $2, $3, $4, $5, $6, '{}', 1, false, '{}', $7, $7, $8, $8)
			ON CONFLICT (domain) WHERE deletion_mark = FALSE DO NOTHING
		`, companyID, c.name, c.domain, c.size, c.country, adminUserID, now, adminUserID.String())
		if err != nil {
			log.Warnw("failed to seed company", "name", c.name, "error", err)
			continue
		}
		if commandTag.RowsAffected() == 0 {
			if err := pool.Pool.QueryRow(ctx,
				`SELECT id FROM crm_companies WHERE domain = $1 AND NOT deletion_mark`, c.domain,
			).Scan(&companyID); err != nil {
				log.Warnw("failed to fetch existing company", "domain", c.domain, "error", err)
				continue
			}
		}
		companyIDs[c.domain] = companyID
	}

	// 2. Demo contacts
	contacts := []struct {
		firstName     string
		lastName      string
		phone         string
		email         string
		channel       string
		status        string
		leadSource    string
		companyDomain string
	}{
		{"Maria", "Lopez", "+34600111222", "maria@sunrisecafe.example", "whatsapp", "customer", "whatsapp", "sunrisecafe.example"},
		{"James", "Carter", "+12025550101", "j.carter@acme-retail.example", "email", "in_progress", "web_form", "acme-retail.example"},
		{"Anouk", "Visser", "+31612345678", "a.visser@blueharbor.example", "phone", "new", "referral", "blueharbor.example"},
	}

	for _, c := range contacts {
		contactID := id.New()
		now := time.Now().UTC()
		var companyID any
		if cid, ok := companyIDs[c.companyDomain]; ok {
			companyID = cid
		}
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO crm_contacts (
				id, first_name, last_name, phone, email, channel,
				company_id, owner_id, status_slug, lead_source_slug, tags,
				version, deletion_mark, attributes,
				created_at, updated_at, created_by, updated_by
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, '{}',
			        1, false, '{}', $11, $11, $12, $12)
			ON CONFLICT (phone) WHERE deletion_mark = FALSE DO NOTHING
		`, contactID, c.firstName, c.lastName, c.phone, c.email, c.channel,
			companyID, adminUserID, c.status, c.leadSource, now, adminUserID.String())
		if err != nil {
			log.Warnw("failed to seed contact", "email", c.email, "error", err)
		}
	}

	log.Info("demo data seeded successfully")
	return nil
}

func seedTenantRegistry(ctx context.Context, dbURL string, log *logger.Logger) error {
	metaDSN := os.Getenv("META_DATABASE_URL")
	if metaDSN == "" {
		log.Warn("META_DATABASE_URL is not set; skipping tenant registry seed")
		return nil
	}

	metaPool, err := pgxpool.New(ctx, metaDSN)
	if err != nil {
		return fmt.Errorf("connect meta database: %w", err)
	}
	defer metaPool.Close()

	if err := metaPool.Ping(ctx); err != nil {
		return fmt.Errorf("ping meta database: %w", err)
	}

	tenantSlug := os.Getenv("TENANT_SLUG")
	if tenantSlug == "" {
		tenantSlug = "demo"
	}

	tenantName := os.Getenv("TENANT_NAME")
	if tenantName == "" {
		tenantName = "Demo Tenant"
	}

	tenantPlan := os.Getenv("TENANT_PLAN")
	if tenantPlan == "" {
		tenantPlan = string(tenant.PlanStandard)
	}

	dbConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return fmt.Errorf("parse tenant database url: %w", err)
	}

	dbHost := dbConfig.ConnConfig.Host
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := int(dbConfig.ConnConfig.Port)
	if dbPort == 0 {
		dbPort = 5432
	}

	dbName := dbConfig.ConnConfig.Database
	if dbName == "" {
		dbName = "omnicrm"
	}

	var existingID string
	err = metaPool.QueryRow(ctx, `SELECT id FROM tenants WHERE slug = $1`, tenantSlug).Scan(&existingID)
	if err == nil {
		log.Infow("tenant already exists in registry", "slug", tenantSlug, "tenant_id", existingID)
		return nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check tenant exists: %w", err)
	}

	registry := tenant.NewPostgresRegistry(metaPool)
	newTenant := &tenant.Tenant{
		Slug:        tenantSlug,
		DisplayName: tenantName,
		DBName:      dbName,
		DBHost:      dbHost,
		DBPort:      dbPort,
		Status:      tenant.StatusActive,
		Plan:        tenant.Plan(tenantPlan),
		Settings:    map[string]any{},
	}

	if err := registry.Create(ctx, newTenant); err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}

	log.Infow("tenant seeded in registry", "slug", tenantSlug, "tenant_id", newTenant.ID)
	return nil
}
