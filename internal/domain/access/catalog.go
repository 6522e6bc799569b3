package access

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category groups permission modules for the role-builder UI.
type Category string

const (
	CategoryCRM      Category = "crm"
	CategorySettings Category = "settings"
	CategoryTeam     Category = "team"
)

// catalog is the full ordered enumeration of guardable operations.
// Order here is presentation order in discovery output.
var catalog = []Key{
	"contacts.view", "contacts.create", "contacts.edit", "contacts.delete",
	"contacts.export", "contacts.assign",
	"companies.view", "companies.create", "companies.edit", "companies.delete",
	"segments.view", "segments.create", "segments.edit", "segments.delete",
	"deals.view", "deals.create", "deals.edit", "deals.delete", "deals.assign",
	"pipelines.view", "pipelines.manage",
	"tags.manage",
	"statuses.manage",
	"lead_sources.manage",
	"users.view", "users.invite", "users.edit", "users.delete",
	"permissions.manage",
	"organization.manage",
	"campaigns.view", "campaigns.create", "campaigns.send",
	"conversations.view", "conversations.reply", "conversations.assign",
	"tickets.view", "tickets.create", "tickets.edit",
	"analytics.view",
}

// moduleCategory maps known modules to their UI category.
// Modules absent from this table become their own standalone category.
var moduleCategory = map[string]Category{
	"contacts":     CategoryCRM,
	"companies":    CategoryCRM,
	"segments":     CategoryCRM,
	"deals":        CategoryCRM,
	"pipelines":    CategoryCRM,
	"tags":         CategorySettings,
	"statuses":     CategorySettings,
	"lead_sources": CategorySettings,
	"users":        CategoryTeam,
	"permissions":  CategoryTeam,
}

// Keys returns the permission catalog in presentation order.
func Keys() []Key {
	out := make([]Key, len(catalog))
	copy(out, catalog)
	return out
}

// IsKnown reports whether key is part of the catalog.
func IsKnown(key Key) bool {
	for _, k := range catalog {
		if k == key {
			return true
		}
	}
	return false
}

// CategoryOf returns the category for a module.
// Unknown modules are their own category so new resources surface
// in discovery without a code change.
func CategoryOf(module string) Category {
	if c, ok := moduleCategory[module]; ok {
		return c
	}
	return Category(module)
}

// Categorize groups keys by category, preserving input order within
// each group. Malformed keys are dropped, never silently granted.
func Categorize(keys []Key) map[Category][]Key {
	out := make(map[Category][]Key)
	for _, k := range keys {
		if !k.Valid() {
			continue
		}
		c := CategoryOf(k.Module())
		out[c] = append(out[c], k)
	}
	return out
}

// --- Labels ---

// Locale identifiers for label composition. The label tables are
// deliberately minimal: presentation-layer label storage remains
// an external collaborator (see LabelSource).
const (
	LocaleEN = "en"
	LocaleAR = "ar"
)

var actionLabels = map[string]map[string]string{
	LocaleEN: {
		"view": "View", "create": "Create", "edit": "Edit", "delete": "Delete",
		"export": "Export", "invite": "Invite", "manage": "Manage",
		"send": "Send", "reply": "Reply", "assign": "Assign",
	},
	LocaleAR: {
		"view": "عرض", "create": "إنشاء", "edit": "تعديل", "delete": "حذف",
		"export": "تصدير", "invite": "دعوة", "manage": "إدارة",
		"send": "إرسال", "reply": "رد", "assign": "إسناد",
	},
}

var moduleLabels = map[string]map[string]string{
	LocaleEN: {
		"contacts": "Contacts", "companies": "Companies", "segments": "Segments",
		"deals": "Deals", "pipelines": "Pipelines", "tags": "Tags",
		"statuses": "Statuses", "lead_sources": "Lead Sources",
		"users": "Users", "permissions": "Permissions",
		"organization": "Organization", "campaigns": "Campaigns",
		"conversations": "Conversations", "tickets": "Tickets",
		"analytics": "Analytics",
	},
	LocaleAR: {
		"contacts": "جهات الاتصال", "companies": "الشركات", "segments": "الشرائح",
		"deals": "الصفقات", "pipelines": "مسارات البيع", "tags": "الوسوم",
		"statuses": "الحالات", "lead_sources": "مصادر العملاء",
		"users": "المستخدمون", "permissions": "الصلاحيات",
		"organization": "المنظمة", "campaigns": "الحملات",
		"conversations": "المحادثات", "tickets": "التذاكر",
		"analytics": "التحليلات",
	},
}

// Label composes a display label for a permission key in the requested
// locale: "<Action> <Module>". Unknown locales fall back to English;
// unknown slugs fall back to mechanical title-casing.
func Label(key Key, locale string) string {
	if !key.Valid() {
		return ""
	}
	actions, ok := actionLabels[locale]
	if !ok {
		actions = actionLabels[LocaleEN]
	}
	modules, ok := moduleLabels[locale]
	if !ok {
		modules = moduleLabels[LocaleEN]
	}

	action, ok := actions[key.Action()]
	if !ok {
		action = titleSlug(key.Action())
	}
	module, ok := modules[key.Module()]
	if !ok {
		module = titleSlug(key.Module())
	}
	return action + " " + module
}

// titleSlug converts "lead_sources" to "Lead Sources".
func titleSlug(slug string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(slug, "_", " "))
}
