package domain

import (
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

// iconPrefix is prepended to a record badge to form the entry icon class.
const iconPrefix = "pi pi-"

var placeholderPattern = regexp.MustCompile(`\[\[(.+?)\]\]`)

// MenuEntry is the render-ready form of a MenuItemRecord. Items is nil for a
// leaf. RouterLink is set for local targets and URL for external ones.
type MenuEntry struct {
	ID         string      `json:"id"`
	Label      string      `json:"label"`
	Icon       string      `json:"icon,omitempty"`
	Items      []MenuEntry `json:"items,omitempty"`
	RouterLink string      `json:"routerLink,omitempty"`
	URL        string      `json:"url,omitempty"`
}

// IsLeaf reports whether the entry has no child entries.
func (e MenuEntry) IsLeaf() bool {
	return e.Items == nil
}

// VariableLookup resolves [[NAME]] placeholders found in external URLs.
type VariableLookup interface {
	Lookup(name string) (string, bool)
}

// Variables is a map-backed VariableLookup.
type Variables map[string]string

// Lookup returns the value stored under name.
func (v Variables) Lookup(name string) (string, bool) {
	val, ok := v[name]
	return val, ok
}

// ChainLookup consults each lookup in order and returns the first hit.
type ChainLookup []VariableLookup

// Lookup returns the first value found under name.
func (c ChainLookup) Lookup(name string) (string, bool) {
	for _, l := range c {
		if l == nil {
			continue
		}
		if v, ok := l.Lookup(name); ok {
			return v, true
		}
	}
	return "", false
}

type resolveConfig struct {
	baseHref     string
	vars         VariableLookup
	topLevelOnly bool
}

// ResolveOption configures ConstructMenuItems.
type ResolveOption func(*resolveConfig)

// WithBaseHref strips prefix from local router links.
func WithBaseHref(prefix string) ResolveOption {
	return func(c *resolveConfig) { c.baseHref = prefix }
}

// WithVariables sets the lookup used for [[NAME]] placeholders in external URLs.
func WithVariables(vars VariableLookup) ResolveOption {
	return func(c *resolveConfig) { c.vars = vars }
}

// WithTopLevelFilterOnly limits disabled-record filtering to the top level.
// Nested disabled records are then kept. Filtering is recursive by default.
func WithTopLevelFilterOnly() ResolveOption {
	return func(c *resolveConfig) { c.topLevelOnly = true }
}

// ConstructMenuItems maps raw records to ordered, label-resolved menu entries.
// A nil or empty input yields an empty, non-nil slice.
func ConstructMenuItems(items []MenuItemRecord, lang string, opts ...ResolveOption) []MenuEntry {
	var cfg resolveConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	entries := constructLevel(items, lang, &cfg, true)
	if entries == nil {
		return []MenuEntry{}
	}
	return entries
}

func constructLevel(items []MenuItemRecord, lang string, cfg *resolveConfig, top bool) []MenuEntry {
	if len(items) == 0 {
		return nil
	}

	visible := make([]MenuItemRecord, 0, len(items))
	for _, it := range items {
		if it.Disabled && (top || !cfg.topLevelOnly) {
			continue
		}
		visible = append(visible, it)
	}
	if len(visible) == 0 {
		return nil
	}

	entries := make([]MenuEntry, 0, len(visible))
	for _, it := range SortByPosition(visible) {
		entries = append(entries, toEntry(it, lang, cfg))
	}
	return entries
}

func toEntry(it MenuItemRecord, lang string, cfg *resolveConfig) MenuEntry {
	entry := MenuEntry{
		ID:    it.ID,
		Label: ResolveLabel(it, lang),
		Icon:  ResolveIcon(it.Badge),
		Items: constructLevel(it.Children, lang, cfg, false),
	}
	if it.External {
		entry.URL = ResolvePlaceholders(it.URL, cfg.vars)
	} else {
		entry.RouterLink = StripBaseHref(it.URL, cfg.baseHref)
	}
	return entry
}

// ResolveLabel returns the translation for lang, falling back to the record
// name and finally to the empty string. A regional tag such as "de-CH" also
// matches a "de" translation.
func ResolveLabel(it MenuItemRecord, lang string) string {
	if label := lookupTranslation(it.I18n, lang); label != "" {
		return label
	}
	return it.Name
}

func lookupTranslation(i18n map[string]string, lang string) string {
	if len(i18n) == 0 || lang == "" {
		return ""
	}
	if label := i18n[lang]; label != "" {
		return label
	}

	tag, err := language.Parse(lang)
	if err != nil {
		return ""
	}
	if label := i18n[tag.String()]; label != "" {
		return label
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return i18n[base.String()]
}

// ResolveIcon maps a badge name to an icon class; no badge means no icon.
func ResolveIcon(badge string) string {
	if badge == "" {
		return ""
	}
	return iconPrefix + badge
}

// StripBaseHref removes a configured base href prefix from a local link.
func StripBaseHref(link, baseHref string) string {
	if baseHref == "" {
		return link
	}
	return strings.TrimPrefix(link, baseHref)
}

// ResolvePlaceholders replaces every [[NAME]] token in url with the value
// from vars. Unresolved tokens become the empty string.
func ResolvePlaceholders(url string, vars VariableLookup) string {
	if !strings.Contains(url, "[[") {
		return url
	}
	return placeholderPattern.ReplaceAllStringFunc(url, func(token string) string {
		if vars == nil {
			return ""
		}
		name := placeholderPattern.FindStringSubmatch(token)[1]
		if v, ok := vars.Lookup(name); ok {
			return v
		}
		return ""
	})
}
