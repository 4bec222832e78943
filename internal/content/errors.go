package content

import (
	"errors"
	"fmt"
)

// Sentinel errors. The typed errors below unwrap to these so callers can use
// errors.Is without caring about the details.
var (
	ErrLocaleMismatch = errors.New("content: locale mismatch")
	ErrBlockNotFound  = errors.New("content: block not found")
	ErrTranslation    = errors.New("content: translation unavailable")
	ErrRunIDRequired  = errors.New("content: run id is required")
	ErrUnknownLocale  = errors.New("content: unknown locale")
	ErrEmptyEvent     = errors.New("content: empty event")
)

// LocaleMismatchError is returned when a start chunk is routed to the locale
// content of another locale.
type LocaleMismatchError struct {
	Expected Locale
	Got      Locale
}

func (e *LocaleMismatchError) Error() string {
	return fmt.Sprintf("content: cannot add a chunk with locale %s to the locale content %s", e.Got, e.Expected)
}

func (e *LocaleMismatchError) Unwrap() error { return ErrLocaleMismatch }

// BlockNotFoundError is returned when a chunk references a block that was
// never started. LocaleMissing is set when the whole locale has no content.
type BlockNotFoundError struct {
	Block         string
	Locale        Locale
	LocaleMissing bool
}

func (e *BlockNotFoundError) Error() string {
	if e.LocaleMissing {
		return fmt.Sprintf("content: unable to find block %q for locale %s", e.Block, e.Locale)
	}
	return fmt.Sprintf("content: block %q has not been started yet", e.Block)
}

func (e *BlockNotFoundError) Unwrap() error { return ErrBlockNotFound }

// TranslationError is returned when a translation is requested before any
// default locale content exists.
type TranslationError struct {
	DefaultLocale Locale
	Target        Locale
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("content: unable to translate to %s: no content for the default locale %s, no block chunks received?", e.Target, e.DefaultLocale)
}

func (e *TranslationError) Unwrap() error { return ErrTranslation }
