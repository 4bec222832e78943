package content

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locale identifies a language variant of the content, e.g. "en_US".
type Locale string

const (
	EnUS Locale = "en_US"
	FrFR Locale = "fr_FR"
	EnUK Locale = "en_UK"
)

// DefaultLocale is the canonical locale used when none is configured.
const DefaultLocale = EnUS

// DefaultLanguages returns the locales supported when none are configured.
func DefaultLanguages() []Locale {
	return []Locale{EnUS, FrFR, EnUK}
}

func (l Locale) String() string { return string(l) }

// Tag returns the BCP 47 tag for the locale. en_UK maps to en-GB.
func (l Locale) Tag() language.Tag {
	s := strings.ReplaceAll(string(l), "_", "-")
	if l == EnUK {
		s = "en-GB"
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und
	}
	return tag
}

// ParseLocale resolves s against the supported locales. It accepts the
// canonical form ("fr_FR"), dashed and case-insensitive variants ("fr-fr"),
// and bare languages ("fr") whose region is inferred.
func ParseLocale(s string, supported []Locale) (Locale, error) {
	norm := strings.ReplaceAll(strings.TrimSpace(s), "-", "_")
	if norm == "" {
		return "", fmt.Errorf("%w: empty value", ErrUnknownLocale)
	}
	for _, l := range supported {
		if strings.EqualFold(string(l), norm) {
			return l, nil
		}
	}

	tag, err := language.Parse(strings.ReplaceAll(norm, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownLocale, s)
	}
	base, _ := tag.Base()
	region, _ := tag.Region()
	candidate := base.String() + "_" + region.String()
	for _, l := range supported {
		if strings.EqualFold(string(l), candidate) || l.Tag().String() == tag.String() {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLocale, s)
}

func containsLocale(locales []Locale, l Locale) bool {
	for _, candidate := range locales {
		if candidate == l {
			return true
		}
	}
	return false
}
