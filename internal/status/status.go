// Package status summarizes the state of a Description.
package status

import (
	"strings"

	"github.com/dusk-indust/descstream/internal/content"
)

// LocaleInfo describes the content held for a single locale.
type LocaleInfo struct {
	Locale  content.Locale `json:"locale"`
	Blocks  int            `json:"blocks"`
	Filled  int            `json:"filled"` // blocks with non-blank content
	Current bool           `json:"current,omitempty"`
	Default bool           `json:"default,omitempty"`
}

// Summary holds the status of one description.
type Summary struct {
	RunID         string           `json:"runId"`
	CurrentLocale content.Locale   `json:"currentLocale"`
	DefaultLocale content.Locale   `json:"defaultLocale"`
	Loading       bool             `json:"loading"`
	Locales       []LocaleInfo     `json:"locales"`
	Missing       []content.Locale `json:"missing,omitempty"` // supported locales without content
}

// Summarize returns the status of d.
func Summarize(d *content.Description) Summary {
	s := Summary{
		RunID:         d.RunID(),
		CurrentLocale: d.CurrentLocale(),
		DefaultLocale: d.DefaultLocale(),
		Loading:       d.IsLoading(),
		Locales:       []LocaleInfo{},
	}

	present := make(map[content.Locale]bool)
	for _, lc := range d.LocaleContents() {
		info := LocaleInfo{
			Locale:  lc.Locale(),
			Current: lc.Locale() == s.CurrentLocale,
			Default: lc.Locale() == s.DefaultLocale,
		}
		for _, b := range lc.Blocks() {
			info.Blocks++
			if strings.TrimSpace(b.Content()) != "" {
				info.Filled++
			}
		}
		present[lc.Locale()] = true
		s.Locales = append(s.Locales, info)
	}

	for _, l := range d.Languages() {
		if !present[l] {
			s.Missing = append(s.Missing, l)
		}
	}
	return s
}

// Complete reports whether every supported locale has content and nothing
// is being generated.
func (s Summary) Complete() bool {
	return !s.Loading && len(s.Missing) == 0
}
