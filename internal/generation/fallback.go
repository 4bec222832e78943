package generation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dusk-indust/descstream/internal/content"
)

// Compile-time interface check.
var _ content.Translator = (*FallbackTranslator)(nil)

// FallbackTranslator degrades to a secondary translator when the primary
// one cannot take a request, e.g. when the remote agent is down.
type FallbackTranslator struct {
	primary   content.Translator
	secondary content.Translator
	logger    *slog.Logger
}

// NewFallbackTranslator creates a FallbackTranslator. logger may be nil.
func NewFallbackTranslator(primary, secondary content.Translator, logger *slog.Logger) *FallbackTranslator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FallbackTranslator{primary: primary, secondary: secondary, logger: logger}
}

// RequestTranslation tries the primary translator first. Both errors are
// returned when the secondary one fails too.
func (f *FallbackTranslator) RequestTranslation(ctx context.Context, req content.TranslationRequest) error {
	err := f.primary.RequestTranslation(ctx, req)
	if err == nil {
		return nil
	}
	f.logger.Warn("translator unavailable, falling back", "locale", req.Locale, "error", err)
	if ferr := f.secondary.RequestTranslation(ctx, req); ferr != nil {
		return errors.Join(err, ferr)
	}
	return nil
}
