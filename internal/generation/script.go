package generation

import "github.com/dusk-indust/descstream/internal/content"

// Block names produced by the scripted generator.
const (
	BlockTitle            = "title"
	BlockShortDescription = "short_description"
	BlockLongDescription  = "long_description"
)

// ScriptBlock is one block of scripted content.
type ScriptBlock struct {
	Name string
	Text string
}

var scripts = map[content.Locale][]ScriptBlock{
	content.EnUS: {
		{Name: BlockTitle, Text: "This is a title !"},
		{Name: BlockShortDescription, Text: "This is the short description of the article."},
		{Name: BlockLongDescription, Text: "And this is a long description of multiple phrases. Phrase 2"},
	},
	content.FrFR: {
		{Name: BlockTitle, Text: "Ceci est un titre !"},
		{Name: BlockShortDescription, Text: "La description courte de l'article."},
		{Name: BlockLongDescription, Text: "La description longue, constituée de deux phrases. La seconde phrase."},
	},
}

// Script returns the scripted blocks for locale. Locales without a script
// use the en_US one. A non-empty blockName keeps only that block.
func Script(locale content.Locale, blockName string) []ScriptBlock {
	blocks, ok := scripts[locale]
	if !ok {
		blocks = scripts[content.EnUS]
	}
	if blockName == "" {
		return append([]ScriptBlock(nil), blocks...)
	}
	for _, b := range blocks {
		if b.Name == blockName {
			return []ScriptBlock{b}
		}
	}
	return nil
}
