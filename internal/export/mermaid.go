package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/descstream/internal/content"
)

// GenerateMermaid produces a Mermaid graph TD diagram of d: one subgraph per
// locale holding its blocks, and an arrow from every default locale block to
// the block of the same name in each translated locale.
func GenerateMermaid(d *content.Description) string {
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(key string) string {
		if id, ok := nodeIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[key] = id
		return id
	}
	key := func(l content.Locale, block string) string { return string(l) + "/" + block }

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	contents := d.LocaleContents()
	for _, lc := range contents {
		fmt.Fprintf(&sb, "  subgraph %s[\"%s\"]\n", getID(string(lc.Locale())+"_locale"), lc.Locale())
		for _, b := range lc.Blocks() {
			fmt.Fprintf(&sb, "    %s[\"%.40s\"]\n", getID(key(lc.Locale(), b.Name())), label(b))
		}
		sb.WriteString("  end\n")
	}

	def, ok := d.LocaleContent(d.DefaultLocale())
	if !ok {
		return sb.String()
	}
	for _, lc := range contents {
		if lc.Locale() == def.Locale() {
			continue
		}
		for _, b := range lc.Blocks() {
			if _, ok := def.FindBlock(b.Name()); !ok {
				continue
			}
			fmt.Fprintf(&sb, "  %s --> %s\n", getID(key(def.Locale(), b.Name())), getID(key(lc.Locale(), b.Name())))
		}
	}
	return sb.String()
}

// label returns the block name with its state for readability.
func label(b *content.Block) string {
	if strings.TrimSpace(b.Content()) == "" {
		return b.Name() + " (empty)"
	}
	return b.Name()
}
