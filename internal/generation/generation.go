// Package generation holds the collaborators that produce content for a
// content.Description: a local simulator, a remote A2A translator and the
// helpers they share.
package generation

import (
	"context"
	"sync"

	"github.com/dusk-indust/descstream/internal/content"
)

// Sink receives the boundary events produced by a generator.
// *content.Description satisfies it.
type Sink interface {
	Apply(ev content.Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev content.Event) error

func (f SinkFunc) Apply(ev content.Event) error { return f(ev) }

// SourceProvider exposes the canonical content a translation is made from.
// *content.Description satisfies it.
type SourceProvider interface {
	DefaultLocale() content.Locale
	LocaleContent(locale content.Locale) (*content.LocaleContent, bool)
}

// runner owns the goroutines a generator starts on behalf of fire-and-forget
// requests. Their lifetime is bound to the generator, not to the request.
type runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newRunner() *runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &runner{ctx: ctx, cancel: cancel}
}

func (r *runner) goRun(fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn(r.ctx)
	}()
}

// wait blocks until every started goroutine has returned.
func (r *runner) wait() { r.wg.Wait() }

// close cancels the running goroutines and waits for them.
func (r *runner) close() {
	r.cancel()
	r.wg.Wait()
}
