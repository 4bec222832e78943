package export

import (
	"strings"

	"github.com/dusk-indust/descstream/internal/content"
)

// Markdown renders lc as a markdown document. Each block gets a heading of
// level+1 hashes: its display title followed by the content, or the content
// itself when the block's content is its display title.
func Markdown(lc *content.LocaleContent) string {
	var sb strings.Builder
	for i, b := range lc.Blocks() {
		if i > 0 {
			sb.WriteString("\n")
		}
		level := max(int(b.Level()), 0)
		hashes := strings.Repeat("#", level+1)
		body := strings.TrimSpace(b.Content())

		if b.IsContentDisplayTitle() {
			sb.WriteString(hashes + " " + body + "\n")
			continue
		}
		sb.WriteString(hashes + " " + b.DisplayTitle() + "\n")
		if body != "" {
			sb.WriteString("\n" + body + "\n")
		}
	}
	return sb.String()
}
