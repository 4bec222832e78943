// Package export renders a Description for external consumers.
package export

import (
	"time"

	"github.com/dusk-indust/descstream/internal/content"
)

// DescriptionExport is the top-level JSON export structure.
type DescriptionExport struct {
	RunID         string         `json:"runId"`
	ExportedAt    string         `json:"exportedAt"`
	DefaultLocale content.Locale `json:"defaultLocale"`
	CurrentLocale content.Locale `json:"currentLocale"`
	Languages     []string       `json:"languages"`
	Loading       bool           `json:"loading"`
	Locales       []LocaleExport `json:"locales"`
}

// LocaleExport describes the content of one locale.
type LocaleExport struct {
	Locale content.Locale `json:"locale"`
	Blocks []BlockExport  `json:"blocks"`
}

// BlockExport describes a single block.
type BlockExport struct {
	Name                  string             `json:"name"`
	Level                 content.BlockLevel `json:"level"`
	DisplayTitle          string             `json:"displayTitle"`
	IsContentDisplayTitle bool               `json:"isContentDisplayTitle"`
	Content               string             `json:"content"`
}

// ExportDescription snapshots d. Locales appear in creation order, blocks in
// insertion order.
func ExportDescription(d *content.Description) *DescriptionExport {
	out := &DescriptionExport{
		RunID:         d.RunID(),
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
		DefaultLocale: d.DefaultLocale(),
		CurrentLocale: d.CurrentLocale(),
		Loading:       d.IsLoading(),
		Locales:       []LocaleExport{},
	}
	for _, l := range d.Languages() {
		out.Languages = append(out.Languages, string(l))
	}
	for _, lc := range d.LocaleContents() {
		out.Locales = append(out.Locales, ExportLocale(lc))
	}
	return out
}

// ExportLocale snapshots one locale content.
func ExportLocale(lc *content.LocaleContent) LocaleExport {
	le := LocaleExport{Locale: lc.Locale(), Blocks: []BlockExport{}}
	for _, b := range lc.Blocks() {
		le.Blocks = append(le.Blocks, BlockExport{
			Name:                  b.Name(),
			Level:                 b.Level(),
			DisplayTitle:          b.DisplayTitle(),
			IsContentDisplayTitle: b.IsContentDisplayTitle(),
			Content:               b.Content(),
		})
	}
	return le
}
