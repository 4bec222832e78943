package status

import (
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"github.com/dusk-indust/descstream/internal/content"
)

//go:embed active.*.toml
var localeFS embed.FS

// Formatter renders a Summary as localized text.
type Formatter struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	logger          *slog.Logger
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithLogger sets the logger used to report missing messages.
func WithLogger(l *slog.Logger) FormatterOption {
	return func(f *Formatter) { f.logger = l }
}

// NewFormatter builds a Formatter falling back to the language of
// defaultLocale.
func NewFormatter(defaultLocale content.Locale, opts ...FormatterOption) (*Formatter, error) {
	base, _ := defaultLocale.Tag().Base()
	tag, err := language.Parse(base.String())
	if err != nil {
		tag = language.English
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, file := range []string{"active.en.toml", "active.fr.toml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, fmt.Errorf("status: load %s: %w", file, err)
		}
	}

	f := &Formatter{
		bundle:          bundle,
		defaultLanguage: tag,
		logger:          slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Format renders s in its current locale.
func (f *Formatter) Format(s Summary) string {
	return f.FormatIn(s.CurrentLocale, s)
}

// FormatIn renders s in locale, one line per locale.
func (f *Formatter) FormatIn(locale content.Locale, s Summary) string {
	loc := i18n.NewLocalizer(f.bundle, locale.Tag().String(), f.defaultLanguage.String())

	var sb strings.Builder
	sb.WriteString(f.t(loc, "StatusHeader", map[string]any{"RunID": s.RunID, "Locale": s.CurrentLocale}, nil))
	sb.WriteString("\n")
	if s.Loading {
		sb.WriteString(f.t(loc, "StatusLoading", nil, nil))
	} else {
		sb.WriteString(f.t(loc, "StatusIdle", nil, nil))
	}
	sb.WriteString("\n")

	for _, li := range s.Locales {
		line := f.t(loc, "LocaleBlocks", map[string]any{
			"Locale": li.Locale,
			"Filled": li.Filled,
			"Count":  li.Blocks,
		}, li.Blocks)
		if li.Default {
			line += " " + f.t(loc, "LocaleDefault", nil, nil)
		}
		if li.Current {
			line = "* " + line
		} else {
			line = "  " + line
		}
		sb.WriteString(line + "\n")
	}
	for _, l := range s.Missing {
		sb.WriteString("  " + f.t(loc, "LocaleMissing", map[string]any{"Locale": l}, nil) + "\n")
	}
	return sb.String()
}

// t renders the message identified by id, falling back to the id itself.
func (f *Formatter) t(loc *i18n.Localizer, id string, data map[string]any, count any) string {
	msg, err := loc.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
		PluralCount:  count,
	})
	if err != nil {
		f.logger.Warn("localize failed", "id", id, "error", err)
		return id
	}
	return msg
}
