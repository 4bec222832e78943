package content

import "sync"

// ChangeKind names what changed in a Description.
type ChangeKind string

const (
	ChangeBlockStarted            ChangeKind = "block-started"
	ChangeChunkAppended           ChangeKind = "chunk-appended"
	ChangeBlockReset              ChangeKind = "block-reset"
	ChangeLocaleReset             ChangeKind = "locale-reset"
	ChangeTranslationsInvalidated ChangeKind = "translations-invalidated"
	ChangeLocaleChanged           ChangeKind = "locale-changed"
	ChangeLoadingChanged          ChangeKind = "loading-changed"
	ChangeTranslationRequested    ChangeKind = "translation-requested"
)

// ChangeEvent is emitted on the Feed after every state mutation. Readers
// fetch the new state through the Description getters.
type ChangeEvent struct {
	Kind   ChangeKind `json:"kind"`
	Locale Locale     `json:"locale,omitempty"`
	Block  string     `json:"block,omitempty"`
}

// DefaultFeedBuffer is the channel size used by Subscribe when none is given.
const DefaultFeedBuffer = 64

// Feed fans change events out to any number of subscribers. Sends never
// block: a subscriber whose buffer is full misses the event.
type Feed struct {
	mu     sync.Mutex
	subs   map[int]chan ChangeEvent
	nextID int
	closed bool
}

// NewFeed creates an empty Feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[int]chan ChangeEvent)}
}

// Subscribe registers a subscriber. The returned cancel func unregisters it
// and closes its channel; it is safe to call more than once.
func (f *Feed) Subscribe(buffer int) (<-chan ChangeEvent, func()) {
	if buffer <= 0 {
		buffer = DefaultFeedBuffer
	}
	ch := make(chan ChangeEvent, buffer)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	id := f.nextID
	f.nextID++
	f.subs[id] = ch

	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if sub, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(sub)
		}
	}
}

// Emit delivers ev to every subscriber without blocking.
func (f *Feed) Emit(ev ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close closes every subscriber channel. Later subscriptions receive an
// already-closed channel.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subs {
		close(ch)
		delete(f.subs, id)
	}
}
