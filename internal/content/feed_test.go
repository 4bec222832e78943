package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(ch <-chan ChangeEvent) []ChangeEvent {
	var out []ChangeEvent
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func kinds(events []ChangeEvent) []ChangeKind {
	out := make([]ChangeKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestFeed_SubscribeEmitCancel(t *testing.T) {
	f := NewFeed()
	ch, cancel := f.Subscribe(4)

	f.Emit(ChangeEvent{Kind: ChangeLoadingChanged})
	ev := <-ch
	assert.Equal(t, ChangeLoadingChanged, ev.Kind)

	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)

	// Emitting after cancel must not panic.
	f.Emit(ChangeEvent{Kind: ChangeLoadingChanged})
}

func TestFeed_DropsWhenFull(t *testing.T) {
	f := NewFeed()
	ch, cancel := f.Subscribe(1)
	defer cancel()

	f.Emit(ChangeEvent{Kind: ChangeBlockStarted})
	f.Emit(ChangeEvent{Kind: ChangeChunkAppended})

	got := drain(ch)
	require.Len(t, got, 1)
	assert.Equal(t, ChangeBlockStarted, got[0].Kind)
}

func TestFeed_Close(t *testing.T) {
	f := NewFeed()
	ch, _ := f.Subscribe(0)

	f.Close()
	f.Close()
	_, ok := <-ch
	assert.False(t, ok)

	late, cancel := f.Subscribe(1)
	defer cancel()
	_, ok = <-late
	assert.False(t, ok)
}

func TestDescription_FeedNotifications(t *testing.T) {
	d, _ := newTestDescription(t)
	ch, cancel := d.Feed().Subscribe(64)
	defer cancel()

	require.NoError(t, d.AddStartChunk(startFor(EnUS, "title")))
	require.NoError(t, d.AddChunk(BlockChunk{BlockName: "title", Chunk: "Hi", Locale: EnUS}))
	d.OnContentFinished()

	assert.Equal(t, []ChangeKind{
		ChangeBlockStarted,
		ChangeLoadingChanged,
		ChangeChunkAppended,
		ChangeLoadingChanged,
	}, kinds(drain(ch)))

	_, err := d.ChangeLocale(context.Background(), FrFR, "")
	require.NoError(t, err)
	assert.Equal(t, []ChangeKind{
		ChangeLocaleChanged,
		ChangeTranslationRequested,
	}, kinds(drain(ch)))

	require.NoError(t, d.AddStartChunk(startFor(FrFR, "title")))
	drain(ch)

	require.NoError(t, d.AddStartChunk(startFor(EnUS, "title")))
	events := drain(ch)
	assert.Equal(t, []ChangeKind{
		ChangeBlockReset,
		ChangeTranslationsInvalidated,
		ChangeLocaleChanged,
		ChangeBlockStarted,
	}, kinds(events))
	assert.Equal(t, EnUS, events[2].Locale)
}
