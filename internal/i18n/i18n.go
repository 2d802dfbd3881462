// Package i18n loads the embedded message catalogs and hands out
// per-request localizers. Turkish is the default language.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Bundle holds every loaded catalog.
type Bundle struct {
	bundle   *goi18n.Bundle
	fallback string
}

// New loads all embedded locale files. defaultLang is used for messages
// missing in the requested language and when a request names none.
func New(defaultLang string) (*Bundle, error) {
	tag, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("parse language %q: %w", defaultLang, err)
	}

	bundle := goi18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("parse locale file %s: %w", e.Name(), err)
		}
	}

	return &Bundle{bundle: bundle, fallback: tag.String()}, nil
}

// Languages lists the loaded language tags.
func (b *Bundle) Languages() []string {
	tags := b.bundle.LanguageTags()
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.String())
	}
	return out
}

// Localizer returns a localizer for the given preferences, in priority order.
// Each entry may be a tag ("en") or a raw Accept-Language header value.
func (b *Bundle) Localizer(prefs ...string) *Localizer {
	prefs = append(prefs, b.fallback)
	return &Localizer{loc: goi18n.NewLocalizer(b.bundle, prefs...)}
}

// Localizer translates message IDs for one set of language preferences.
type Localizer struct {
	loc *goi18n.Localizer
}

// T translates a message by ID.
func (l *Localizer) T(id string) string {
	return l.Td(id, nil)
}

// Td translates a message by ID with template data. Unknown IDs are
// returned unchanged.
func (l *Localizer) Td(id string, data map[string]any) string {
	s, ok := l.Translate(id, data)
	if !ok {
		return id
	}
	return s
}

// Translate reports whether id exists in any loaded catalog.
func (l *Localizer) Translate(id string, data map[string]any) (string, bool) {
	if l == nil || l.loc == nil {
		return "", false
	}
	s, err := l.loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

// Language returns the tag the localizer resolves plain messages to.
func (l *Localizer) Language() string {
	if l == nil || l.loc == nil {
		return ""
	}
	_, tag, err := l.loc.LocalizeWithTag(&goi18n.LocalizeConfig{MessageID: "INTERNAL_ERROR"})
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}
