package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dusk-indust/descstream/internal/content"
)

// Compile-time interface check.
var _ content.Translator = (*Simulator)(nil)

// DefaultDelay is the pause between two simulated words.
const DefaultDelay = 100 * time.Millisecond

// StreamScript emits the scripted content of locale word by word: a start
// event for each block and one chunk per word followed by a space. A single
// finished event closes the cycle after the last block. It waits delay
// between words.
func StreamScript(ctx context.Context, locale content.Locale, blockName string, delay time.Duration, emit func(content.Event) error) error {
	blocks := Script(locale, blockName)
	if len(blocks) == 0 {
		return fmt.Errorf("generation: no scripted block %q", blockName)
	}
	return StreamBlocks(ctx, locale, blocks, delay, emit)
}

// StreamBlocks streams blocks word by word, the same way StreamScript does.
func StreamBlocks(ctx context.Context, locale content.Locale, blocks []ScriptBlock, delay time.Duration, emit func(content.Event) error) error {
	for _, b := range blocks {
		err := emit(content.StartEvent(content.BlockStart{
			Name:         b.Name,
			DisplayTitle: b.Name,
			Locale:       locale,
		}))
		if err != nil {
			return err
		}

		sent := 0
		for _, word := range strings.Split(b.Text, " ") {
			if word == "" {
				continue
			}
			if sent > 0 && delay > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(delay):
				}
			}
			err := emit(content.ChunkEvent(content.BlockChunk{
				BlockName: b.Name,
				Chunk:     word + " ",
				Locale:    locale,
			}))
			if err != nil {
				return err
			}
			sent++
		}
	}
	return emit(content.FinishedEvent())
}

// Simulator is a Translator that generates scripted content locally.
type Simulator struct {
	delay  time.Duration
	logger *slog.Logger
	run    *runner

	mu   sync.RWMutex
	sink Sink
}

// SimulatorOption configures a Simulator.
type SimulatorOption func(*Simulator)

// WithDelay sets the pause between two words.
func WithDelay(d time.Duration) SimulatorOption {
	return func(s *Simulator) { s.delay = d }
}

// WithSimulatorLogger sets the logger.
func WithSimulatorLogger(l *slog.Logger) SimulatorOption {
	return func(s *Simulator) { s.logger = l }
}

// NewSimulator creates a Simulator. Attach must be called before the first
// request.
func NewSimulator(opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		delay:  DefaultDelay,
		logger: slog.New(slog.DiscardHandler),
		run:    newRunner(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach sets the sink receiving the generated events.
func (s *Simulator) Attach(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

func (s *Simulator) target() (Sink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sink == nil {
		return nil, fmt.Errorf("generation: simulator has no sink attached")
	}
	return s.sink, nil
}

// Generate streams the content of locale into the sink and returns once it
// is complete.
func (s *Simulator) Generate(ctx context.Context, locale content.Locale, blockName string) error {
	sink, err := s.target()
	if err != nil {
		return err
	}
	s.logger.Debug("generating content", "locale", locale, "block", blockName)
	return StreamScript(ctx, locale, blockName, s.delay, sink.Apply)
}

// RequestTranslation starts generating the requested locale in the
// background and returns immediately.
func (s *Simulator) RequestTranslation(_ context.Context, req content.TranslationRequest) error {
	sink, err := s.target()
	if err != nil {
		return err
	}
	s.run.goRun(func(ctx context.Context) {
		if err := StreamScript(ctx, req.Locale, req.BlockName, s.delay, sink.Apply); err != nil && ctx.Err() == nil {
			s.logger.Error("simulated translation failed", "locale", req.Locale, "block", req.BlockName, "error", err)
		}
	})
	return nil
}

// Wait blocks until every background generation has finished.
func (s *Simulator) Wait() { s.run.wait() }

// Close stops the background generations and waits for them.
func (s *Simulator) Close() error {
	s.run.close()
	return nil
}
