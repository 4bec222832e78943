package content

import (
	"slices"
	"strings"
	"sync"
)

// LocaleContent holds the blocks of exactly one locale in first-start order.
//
// The block slice is copy-on-write: every structural change publishes a new
// slice, so a slice returned by Blocks is never modified afterwards.
type LocaleContent struct {
	locale Locale

	mu     sync.RWMutex
	blocks []*Block
}

// NewLocaleContent creates an empty LocaleContent for locale.
func NewLocaleContent(locale Locale) *LocaleContent {
	return &LocaleContent{locale: locale}
}

// Locale returns the locale this content belongs to.
func (lc *LocaleContent) Locale() Locale { return lc.locale }

// Blocks returns a snapshot of the blocks in first-start order.
func (lc *LocaleContent) Blocks() []*Block {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return slices.Clone(lc.blocks)
}

// Len returns the number of blocks.
func (lc *LocaleContent) Len() int {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return len(lc.blocks)
}

// FindBlock returns the block called name.
func (lc *LocaleContent) FindBlock(name string) (*Block, bool) {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return lc.findLocked(name)
}

func (lc *LocaleContent) findLocked(name string) (*Block, bool) {
	for _, b := range lc.blocks {
		if b.name == name {
			return b, true
		}
	}
	return nil, false
}

// AdmitStart registers the block declared by s. It is a no-op when a block
// with that name already exists; resetting it is the caller's decision.
func (lc *LocaleContent) AdmitStart(s BlockStart) error {
	if s.Locale != lc.locale {
		return &LocaleMismatchError{Expected: lc.locale, Got: s.Locale}
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()
	if _, ok := lc.findLocked(s.Name); ok {
		return nil
	}
	next := make([]*Block, len(lc.blocks), len(lc.blocks)+1)
	copy(next, lc.blocks)
	lc.blocks = append(next, newBlockFromStart(s))
	return nil
}

// AdmitChunk appends the chunk text to its block.
func (lc *LocaleContent) AdmitChunk(c BlockChunk) error {
	b, ok := lc.FindBlock(c.BlockName)
	if !ok {
		return &BlockNotFoundError{Block: c.BlockName, Locale: lc.locale}
	}
	b.Append(c.Chunk)
	return nil
}

// ResetAll replaces every block with a fresh instance, keeping the order.
func (lc *LocaleContent) ResetAll() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	next := make([]*Block, len(lc.blocks))
	for i, b := range lc.blocks {
		next[i] = b.FreshInstance()
	}
	lc.blocks = next
}

// ResetOne replaces the block called name with a fresh instance. Unknown
// names are ignored.
func (lc *LocaleContent) ResetOne(name string) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	var next []*Block
	for i, b := range lc.blocks {
		if b.name != name {
			continue
		}
		if next == nil {
			next = make([]*Block, len(lc.blocks))
			copy(next, lc.blocks)
		}
		next[i] = b.FreshInstance()
	}
	if next != nil {
		lc.blocks = next
	}
}

// RenderedContent concatenates every block's content, each followed by a
// newline.
func (lc *LocaleContent) RenderedContent() string {
	var sb strings.Builder
	for _, b := range lc.Blocks() {
		sb.WriteString(b.Content())
		sb.WriteByte('\n')
	}
	return sb.String()
}
