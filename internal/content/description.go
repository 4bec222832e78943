package content

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// Translator is the generation collaborator. RequestTranslation must not
// wait for the content: results come back later through AddStartChunk,
// AddChunk and OnContentFinished.
type Translator interface {
	RequestTranslation(ctx context.Context, req TranslationRequest) error
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(ctx context.Context, req TranslationRequest) error

func (f TranslatorFunc) RequestTranslation(ctx context.Context, req TranslationRequest) error {
	return f(ctx, req)
}

// Option configures a Description.
type Option func(*Description)

// WithLanguages sets the default locale and the supported locales. The
// default locale is added to the supported set when missing.
func WithLanguages(defaultLocale Locale, languages ...Locale) Option {
	return func(d *Description) {
		d.defaultLocale = defaultLocale
		if len(languages) > 0 {
			d.languages = slices.Clone(languages)
		}
		if !containsLocale(d.languages, defaultLocale) {
			d.languages = append([]Locale{defaultLocale}, d.languages...)
		}
	}
}

// WithTranslator sets the collaborator invoked on translation requests.
func WithTranslator(t Translator) Option {
	return func(d *Description) { d.translator = t }
}

// WithLogger sets the logger used for routing diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Description) { d.logger = l }
}

// Description aggregates the content of one item across every locale.
// The default locale is the source of truth: regenerating one of its blocks
// discards every translation.
type Description struct {
	runID         string
	languages     []Locale
	defaultLocale Locale
	translator    Translator
	logger        *slog.Logger
	feed          *Feed

	mu            sync.Mutex
	currentLocale Locale
	contents      []*LocaleContent
	loading       bool
}

// NewDescription creates a Description for the generation run runID.
func NewDescription(runID string, opts ...Option) (*Description, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, ErrRunIDRequired
	}
	d := &Description{
		runID:         runID,
		languages:     DefaultLanguages(),
		defaultLocale: DefaultLocale,
		logger:        slog.New(slog.DiscardHandler),
		feed:          NewFeed(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.currentLocale = d.defaultLocale
	d.logger = d.logger.With("run_id", runID)
	return d, nil
}

func (d *Description) RunID() string          { return d.runID }
func (d *Description) DefaultLocale() Locale  { return d.defaultLocale }
func (d *Description) Languages() []Locale    { return slices.Clone(d.languages) }
func (d *Description) Feed() *Feed            { return d.feed }
func (d *Description) Translator() Translator { return d.translator }

// CurrentLocale returns the locale currently presented.
func (d *Description) CurrentLocale() Locale {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.currentLocale
}

// IsLoading reports whether a generation cycle is in progress.
func (d *Description) IsLoading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

// LocaleContents returns a snapshot of the populated locales in creation order.
func (d *Description) LocaleContents() []*LocaleContent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.contents)
}

// LocaleContent returns the content of locale, if any chunk arrived for it.
func (d *Description) LocaleContent(locale Locale) (*LocaleContent, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	lc := d.findLocked(locale)
	return lc, lc != nil
}

// CurrentLocaleContent returns the content of the current locale.
func (d *Description) CurrentLocaleContent() (*LocaleContent, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	lc := d.findLocked(d.currentLocale)
	return lc, lc != nil
}

// Block looks a block up by locale and name.
func (d *Description) Block(locale Locale, name string) (*Block, bool) {
	lc, ok := d.LocaleContent(locale)
	if !ok {
		return nil, false
	}
	return lc.FindBlock(name)
}

// AddStartChunk starts, or restarts, a block.
func (d *Description) AddStartChunk(s BlockStart) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addStartLocked(s)
}

// AddChunk appends a fragment to a started block.
func (d *Description) AddChunk(c BlockChunk) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addChunkLocked(c)
}

// OnContentFinished ends the current generation cycle.
func (d *Description) OnContentFinished() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setLoadingLocked(false)
}

// Apply routes a boundary event to the matching operation.
func (d *Description) Apply(ev Event) error {
	switch {
	case ev.Start != nil:
		return d.AddStartChunk(*ev.Start)
	case ev.Chunk != nil:
		return d.AddChunk(*ev.Chunk)
	case ev.Finished:
		d.OnContentFinished()
		return nil
	default:
		return ErrEmptyEvent
	}
}

// AddBlock ingests a block that was generated in one piece. An empty locale
// means the current locale.
func (d *Description) AddBlock(b *Block, locale Locale) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if locale == "" {
		locale = d.currentLocale
	}
	err := d.addStartLocked(BlockStart{
		Name:                  b.Name(),
		Level:                 b.Level(),
		DisplayTitle:          b.DisplayTitle(),
		IsContentDisplayTitle: b.IsContentDisplayTitle(),
		Locale:                locale,
	})
	if err != nil {
		return err
	}
	if err := d.addChunkLocked(BlockChunk{BlockName: b.Name(), Chunk: b.Content(), Locale: locale}); err != nil {
		return err
	}
	d.setLoadingLocked(false)
	return nil
}

// ChangeLocale switches the presented locale. Switching to a locale that
// has no content yet, other than the default one, first requests its
// translation; the request is returned after it has been dispatched.
// blockName scopes the translation to one block; empty means every block.
func (d *Description) ChangeLocale(ctx context.Context, target Locale, blockName string) (*TranslationRequest, error) {
	if !containsLocale(d.languages, target) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocale, target)
	}

	d.mu.Lock()
	var req *TranslationRequest
	if d.findLocked(target) == nil && target != d.defaultLocale {
		r, err := d.translateLocked(target, blockName)
		if err != nil {
			d.mu.Unlock()
			return nil, err
		}
		req = &r
	}
	d.setCurrentLocked(target)
	d.mu.Unlock()

	if req == nil {
		return nil, nil
	}
	return req, d.dispatch(ctx, *req)
}

// Translate requests a fresh translation of target even when it already has
// content; the stale content is cleared first.
func (d *Description) Translate(ctx context.Context, target Locale, blockName string) (*TranslationRequest, error) {
	if !containsLocale(d.languages, target) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocale, target)
	}

	d.mu.Lock()
	req, err := d.translateLocked(target, blockName)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &req, d.dispatch(ctx, req)
}

// ResetAll clears every block of every locale.
func (d *Description) ResetAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, lc := range d.contents {
		lc.ResetAll()
		d.feed.Emit(ChangeEvent{Kind: ChangeLocaleReset, Locale: lc.Locale()})
	}
}

func (d *Description) addStartLocked(s BlockStart) error {
	d.logger.Debug("adding a new block", "locale", s.Locale, "block", s.Name)

	lc := d.findLocked(s.Locale)
	if lc == nil {
		lc = NewLocaleContent(s.Locale)
		d.contents = append(slices.Clone(d.contents), lc)
	}

	if _, exists := lc.FindBlock(s.Name); exists {
		lc.ResetOne(s.Name)
		d.feed.Emit(ChangeEvent{Kind: ChangeBlockReset, Locale: s.Locale, Block: s.Name})
		if s.Locale == d.defaultLocale {
			d.invalidateTranslationsLocked()
		}
	}

	if err := lc.AdmitStart(s); err != nil {
		return err
	}
	d.feed.Emit(ChangeEvent{Kind: ChangeBlockStarted, Locale: s.Locale, Block: s.Name})
	d.setLoadingLocked(true)
	return nil
}

func (d *Description) addChunkLocked(c BlockChunk) error {
	lc := d.findLocked(c.Locale)
	if lc == nil {
		return &BlockNotFoundError{Block: c.BlockName, Locale: c.Locale, LocaleMissing: true}
	}
	if err := lc.AdmitChunk(c); err != nil {
		return err
	}
	d.feed.Emit(ChangeEvent{Kind: ChangeChunkAppended, Locale: c.Locale, Block: c.BlockName})
	return nil
}

// invalidateTranslationsLocked drops every non-default locale and moves the
// presentation back to the default locale.
func (d *Description) invalidateTranslationsLocked() {
	kept := make([]*LocaleContent, 0, 1)
	for _, lc := range d.contents {
		if lc.Locale() == d.defaultLocale {
			kept = append(kept, lc)
		}
	}
	if len(kept) != len(d.contents) {
		d.logger.Debug("default locale regenerated, dropping translations", "dropped", len(d.contents)-len(kept))
		d.contents = kept
		d.feed.Emit(ChangeEvent{Kind: ChangeTranslationsInvalidated, Locale: d.defaultLocale})
	}
	d.setCurrentLocked(d.defaultLocale)
}

func (d *Description) translateLocked(target Locale, blockName string) (TranslationRequest, error) {
	if d.findLocked(d.defaultLocale) == nil {
		return TranslationRequest{}, &TranslationError{DefaultLocale: d.defaultLocale, Target: target}
	}

	d.setCurrentLocked(target)

	if lc := d.findLocked(target); lc != nil {
		if blockName != "" {
			lc.ResetOne(blockName)
			d.feed.Emit(ChangeEvent{Kind: ChangeBlockReset, Locale: target, Block: blockName})
		} else {
			lc.ResetAll()
			d.feed.Emit(ChangeEvent{Kind: ChangeLocaleReset, Locale: target})
		}
	}

	req := TranslationRequest{RunID: d.runID, Locale: target, BlockName: blockName}
	d.feed.Emit(ChangeEvent{Kind: ChangeTranslationRequested, Locale: target, Block: blockName})
	return req, nil
}

// dispatch hands req to the translator. It runs without the lock held so
// the translator may call back into the Description.
func (d *Description) dispatch(ctx context.Context, req TranslationRequest) error {
	if d.translator == nil {
		d.logger.Warn("translation requested without a translator", "locale", req.Locale)
		return nil
	}
	d.logger.Debug("requesting translation", "locale", req.Locale, "block", req.BlockName)
	if err := d.translator.RequestTranslation(ctx, req); err != nil {
		return fmt.Errorf("content: request translation to %s: %w", req.Locale, err)
	}
	return nil
}

func (d *Description) setCurrentLocked(l Locale) {
	if d.currentLocale == l {
		return
	}
	d.currentLocale = l
	d.feed.Emit(ChangeEvent{Kind: ChangeLocaleChanged, Locale: l})
}

func (d *Description) setLoadingLocked(loading bool) {
	if d.loading == loading {
		return
	}
	d.loading = loading
	d.feed.Emit(ChangeEvent{Kind: ChangeLoadingChanged})
}

func (d *Description) findLocked(locale Locale) *LocaleContent {
	for _, lc := range d.contents {
		if lc.Locale() == locale {
			return lc
		}
	}
	return nil
}
