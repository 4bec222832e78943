package content

import "sync"

// Block is a named section of content for one locale. Its identity fields
// never change; only the content buffer grows. A reset replaces the Block
// with a fresh instance, so a *Block obtained earlier stays a valid snapshot.
type Block struct {
	name                  string
	level                 BlockLevel
	displayTitle          string
	isContentDisplayTitle bool

	mu      sync.RWMutex
	content string
}

// NewBlock creates a Block with empty content.
func NewBlock(name string, level BlockLevel, displayTitle string, isContentDisplayTitle bool) *Block {
	return &Block{
		name:                  name,
		level:                 level,
		displayTitle:          displayTitle,
		isContentDisplayTitle: isContentDisplayTitle,
	}
}

// NewBlockWithContent creates a Block that already holds fully generated text.
func NewBlockWithContent(name string, level BlockLevel, displayTitle string, isContentDisplayTitle bool, content string) *Block {
	b := NewBlock(name, level, displayTitle, isContentDisplayTitle)
	b.content = content
	return b
}

func newBlockFromStart(s BlockStart) *Block {
	return NewBlock(s.Name, s.Level, s.DisplayTitle, s.IsContentDisplayTitle)
}

func (b *Block) Name() string                { return b.name }
func (b *Block) Level() BlockLevel           { return b.level }
func (b *Block) DisplayTitle() string        { return b.displayTitle }
func (b *Block) IsContentDisplayTitle() bool { return b.isContentDisplayTitle }

// Content returns the text accumulated so far.
func (b *Block) Content() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content
}

// Append adds text to the end of the content.
func (b *Block) Append(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content += text
}

// FreshInstance returns a new Block with the same identity and empty content.
func (b *Block) FreshInstance() *Block {
	return NewBlock(b.name, b.level, b.displayTitle, b.isContentDisplayTitle)
}
