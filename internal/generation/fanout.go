package generation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/descstream/internal/content"
)

// FanoutResult is the outcome of one translation request.
type FanoutResult struct {
	Locale content.Locale
	Err    error
}

// Fanout requests the translation of several locales in parallel. The first
// failure cancels the context handed to the remaining requests.
type Fanout struct {
	translator content.Translator
}

// NewFanout creates a Fanout dispatching to translator.
func NewFanout(translator content.Translator) *Fanout {
	return &Fanout{translator: translator}
}

// NewDescriptionFanout creates a Fanout that drives every request through
// d.Translate, so the description records and guards each one.
func NewDescriptionFanout(d *content.Description) *Fanout {
	return NewFanout(content.TranslatorFunc(func(ctx context.Context, req content.TranslationRequest) error {
		_, err := d.Translate(ctx, req.Locale, req.BlockName)
		return err
	}))
}

// Run requests every locale and returns one result per locale, in input
// order, together with the first error.
func (f *Fanout) Run(ctx context.Context, runID string, locales []content.Locale) ([]FanoutResult, error) {
	results := make([]FanoutResult, len(locales))
	g, gctx := errgroup.WithContext(ctx)

	for i, locale := range locales {
		results[i].Locale = locale
		g.Go(func() error {
			err := f.translator.RequestTranslation(gctx, content.TranslationRequest{RunID: runID, Locale: locale})
			results[i].Err = err
			return err
		})
	}

	err := g.Wait()
	return results, err
}
