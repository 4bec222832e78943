package generation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dusk-indust/descstream/internal/a2a"
	"github.com/dusk-indust/descstream/internal/content"
)

// Compile-time interface check.
var _ content.Translator = (*A2ATranslator)(nil)

// A2ATranslator is a Translator backed by a remote agent. Each request
// opens a message/stream call; the streamed artifact updates are pumped into
// the attached sink in the background.
type A2ATranslator struct {
	client   a2a.Client
	endpoint string
	logger   *slog.Logger
	run      *runner

	mu     sync.RWMutex
	sink   Sink
	source SourceProvider
}

// TranslatorOption configures an A2ATranslator.
type TranslatorOption func(*A2ATranslator)

// WithTranslatorLogger sets the logger.
func WithTranslatorLogger(l *slog.Logger) TranslatorOption {
	return func(t *A2ATranslator) { t.logger = l }
}

// NewA2ATranslator creates a translator calling the agent at endpoint.
func NewA2ATranslator(client a2a.Client, endpoint string, opts ...TranslatorOption) *A2ATranslator {
	t := &A2ATranslator{
		client:   client,
		endpoint: endpoint,
		logger:   slog.New(slog.DiscardHandler),
		run:      newRunner(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Attach sets the sink receiving the translated content. When the sink also
// exposes its source content, that content is sent along with each request.
func (t *A2ATranslator) Attach(sink Sink) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sink = sink
	t.source, _ = sink.(SourceProvider)
}

func (t *A2ATranslator) attached() (Sink, SourceProvider, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.sink == nil {
		return nil, nil, fmt.Errorf("generation: translator has no sink attached")
	}
	return t.sink, t.source, nil
}

// RequestTranslation opens the stream synchronously, so that an unreachable
// agent is reported to the caller, and consumes it in the background.
func (t *A2ATranslator) RequestTranslation(_ context.Context, req content.TranslationRequest) error {
	sink, source, err := t.attached()
	if err != nil {
		return err
	}

	var (
		sourceLocale content.Locale
		blocks       []SourceBlock
	)
	if source != nil {
		sourceLocale, blocks = SourceBlocks(source)
	}
	msg, err := NewTranslationMessage(req, sourceLocale, blocks)
	if err != nil {
		return err
	}

	// The stream outlives the request context.
	streamCtx, cancel := context.WithCancel(t.run.ctx)
	events, err := t.client.StreamMessage(streamCtx, t.endpoint, a2a.SendMessageRequest{Message: msg})
	if err != nil {
		cancel()
		return fmt.Errorf("generation: request translation to %s: %w", req.Locale, err)
	}

	t.logger.Debug("translation stream opened", "locale", req.Locale, "block", req.BlockName)
	t.run.goRun(func(context.Context) {
		defer cancel()
		t.pump(events, sink, req)
	})
	return nil
}

// pump applies every streamed event to sink. A stream that ends without a
// terminal status still finishes the cycle so loading never sticks.
func (t *A2ATranslator) pump(events <-chan a2a.StreamEvent, sink Sink, req content.TranslationRequest) {
	finished := false
	for ev := range events {
		mapped, err := EventsFromStream(ev, req.Locale)
		if err != nil {
			t.logger.Error("translation stream error", "locale", req.Locale, "error", err)
		}
		for _, ce := range mapped {
			if ce.Finished {
				finished = true
			}
			if err := sink.Apply(ce); err != nil {
				t.logger.Warn("dropping translated event", "locale", req.Locale, "error", err)
			}
		}
	}
	if !finished {
		_ = sink.Apply(content.FinishedEvent())
	}
	t.logger.Debug("translation stream closed", "locale", req.Locale)
}

// Wait blocks until every open stream has been consumed.
func (t *A2ATranslator) Wait() { t.run.wait() }

// Close cancels the open streams and waits for them.
func (t *A2ATranslator) Close() error {
	t.run.close()
	return nil
}
