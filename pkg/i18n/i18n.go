// Package i18n localizes user-facing strings. Messages live in TOML files
// embedded under locales/; English is the default and fallback language.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var locales embed.FS

// DefaultLanguage is the bundle's source language.
var DefaultLanguage = language.English

// Bundle holds all loaded message files.
type Bundle struct {
	bundle *goi18n.Bundle
}

// NewBundle creates a bundle with the embedded locales loaded.
func NewBundle() (*Bundle, error) {
	b := goi18n.NewBundle(DefaultLanguage)
	b.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return nil, fmt.Errorf("read embedded locales: %w", err)
	}
	for _, e := range entries {
		if _, err := b.LoadMessageFileFS(locales, path.Join("locales", e.Name())); err != nil {
			return nil, fmt.Errorf("load %s: %w", e.Name(), err)
		}
	}

	return &Bundle{bundle: b}, nil
}

// MustBundle is NewBundle for package-level defaults; the embedded files
// are part of the binary so failure is a build defect.
func MustBundle() *Bundle {
	b, err := NewBundle()
	if err != nil {
		panic(err)
	}
	return b
}

// LoadFile adds an extra message file, e.g. active.ml.toml, from disk.
func (b *Bundle) LoadFile(filename string) error {
	_, err := b.bundle.LoadMessageFile(filename)
	return err
}

// Languages returns the languages with at least one message file.
func (b *Bundle) Languages() []language.Tag {
	return b.bundle.LanguageTags()
}

// Translator returns a translator for the given preferences. Each entry may
// be a language tag or an Accept-Language header value.
func (b *Bundle) Translator(langs ...string) *Translator {
	return &Translator{localizer: goi18n.NewLocalizer(b.bundle, langs...)}
}

// Translator localizes messages for one set of language preferences.
type Translator struct {
	localizer *goi18n.Localizer
}

// T returns the message for id rendered with data. Unknown ids are
// returned unchanged so a missing translation is visible but harmless.
func (t *Translator) T(id string, data ...map[string]any) string {
	cfg := &goi18n.LocalizeConfig{MessageID: id}
	if len(data) > 0 {
		cfg.TemplateData = data[0]
	}

	msg, err := t.localizer.Localize(cfg)
	if err != nil || msg == "" {
		return id
	}
	return msg
}

// Context helpers

type translatorKey struct{}

// WithTranslator adds a translator to context.
func WithTranslator(ctx context.Context, t *Translator) context.Context {
	return context.WithValue(ctx, translatorKey{}, t)
}

// TranslatorFromContext retrieves a translator from context, falling back
// to the default language.
func TranslatorFromContext(ctx context.Context) *Translator {
	if t, ok := ctx.Value(translatorKey{}).(*Translator); ok {
		return t
	}
	return defaultBundle.Translator(DefaultLanguage.String())
}

var defaultBundle = MustBundle()

// Default returns the translator for the default language.
func Default() *Translator {
	return defaultBundle.Translator(DefaultLanguage.String())
}
