package access

import (
	"context"

	"omnicrm/pkg/logger"
)

// LabelSource supplies display labels for permission keys. The
// presentation layer injects its own label storage (menu-item tables,
// translation files); the engine only carries the mechanical fallback.
type LabelSource interface {
	// LabelFor returns the label for key in locale, with ok=false when
	// the source has no explicit entry.
	LabelFor(key Key, locale string) (string, bool)
}

// CatalogLabels is the built-in LabelSource composing labels from the
// catalog's action/module tables.
type CatalogLabels struct{}

func (CatalogLabels) LabelFor(key Key, locale string) (string, bool) {
	if !key.Valid() {
		return "", false
	}
	return Label(key, locale), true
}

// Item is one discoverable permission for the role-builder UI.
type Item struct {
	Key    Key    `json:"key"`
	Module string `json:"module"`
	Action string `json:"action"`
	Label  string `json:"label"`
}

// Group is a categorized block of permissions for one module.
type Group struct {
	Category Category `json:"category"`
	Module   string   `json:"module"`
	Label    string   `json:"label"`
	Items    []Item   `json:"items"`
}

// Discover derives the categorized, labelled permission tree used by
// the role-builder screen. Output is advisory: it must never feed an
// authorization decision — a selected key set only becomes
// authoritative once persisted through RoleRepository.
//
// Malformed keys are dropped and logged, never granted.
func Discover(ctx context.Context, keys []Key, locale string, labels LabelSource) []Group {
	if labels == nil {
		labels = CatalogLabels{}
	}

	var groups []Group
	index := make(map[string]int) // module -> position in groups

	for _, k := range keys {
		if !k.Valid() {
			logger.Warn(ctx, "dropping malformed permission key from discovery",
				"key", string(k))
			continue
		}
		module := k.Module()

		pos, ok := index[module]
		if !ok {
			pos = len(groups)
			index[module] = pos
			groups = append(groups, Group{
				Category: CategoryOf(module),
				Module:   module,
				Label:    moduleLabel(module, locale),
			})
		}

		label, ok := labels.LabelFor(k, locale)
		if !ok {
			label = Label(k, locale)
		}
		groups[pos].Items = append(groups[pos].Items, Item{
			Key:    k,
			Module: module,
			Action: k.Action(),
			Label:  label,
		})
	}

	return groups
}

// moduleLabel returns the module noun for group headers.
func moduleLabel(module, locale string) string {
	modules, ok := moduleLabels[locale]
	if !ok {
		modules = moduleLabels[LocaleEN]
	}
	if l, ok := modules[module]; ok {
		return l
	}
	return titleSlug(module)
}
