package server

import (
	"log/slog"
	"net/http"
	"slices"

	"golang.org/x/text/language"
)

// LangParam is the query parameter that forces the display language.
const LangParam = "l10n"

// Languages negotiates the display language of a request.
type Languages struct {
	Default   language.Tag
	Supported []language.Tag

	matcher language.Matcher
}

// NewLanguages builds a negotiator. Unparseable and repeated supported names
// are skipped and the default is always supported.
func NewLanguages(defaultLang string, supported ...string) *Languages {
	def := language.Make(defaultLang)
	if def.IsRoot() {
		def = language.English
	}
	tags := []language.Tag{def}
	for _, s := range supported {
		tag, err := language.Parse(s)
		if err != nil || slices.Contains(tags, tag) {
			continue
		}
		tags = append(tags, tag)
	}
	return &Languages{Default: def, Supported: tags, matcher: language.NewMatcher(tags)}
}

// Get returns the language of r: the l10n parameter when it parses, else the
// best supported match of Accept-Language, else the default.
func (l *Languages) Get(r *http.Request) language.Tag {
	if fromParams := r.URL.Query().Get(LangParam); fromParams != "" {
		tag := language.Make(fromParams)
		if !tag.IsRoot() {
			return tag
		}
		slog.Debug("ignoring unparseable l10n parameter", "l10n", fromParams, "default", l.Default)
		return l.Default
	}

	preferences, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(preferences) == 0 {
		return l.Default
	}
	_, idx, conf := l.matcher.Match(preferences...)
	if conf == language.No {
		return l.Default
	}
	return l.Supported[idx]
}

// Code returns the base language code of r, as used for i18n lookups.
func (l *Languages) Code(r *http.Request) string {
	base, _ := l.Get(r).Base()
	return base.String()
}
