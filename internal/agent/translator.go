package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dusk-indust/descstream/internal/a2a"
	"github.com/dusk-indust/descstream/internal/content"
	"github.com/dusk-indust/descstream/internal/generation"
)

// Version is reported on the agent card.
const Version = "0.1.0"

// TranslationAgent streams scripted content for the requested locale. Blocks
// without a script are echoed from the source content sent with the request.
type TranslationAgent struct {
	*BaseAgent
	delay time.Duration
}

// TranslationOption configures a TranslationAgent.
type TranslationOption func(*translationConfig)

type translationConfig struct {
	delay     time.Duration
	logger    *slog.Logger
	taskLimit int
}

// WithDelay sets the pause between two streamed words.
func WithDelay(d time.Duration) TranslationOption {
	return func(c *translationConfig) { c.delay = d }
}

// WithAgentLogger sets the logger.
func WithAgentLogger(l *slog.Logger) TranslationOption {
	return func(c *translationConfig) { c.logger = l }
}

// WithMaxTasks bounds the number of remembered tasks.
func WithMaxTasks(n int) TranslationOption {
	return func(c *translationConfig) { c.taskLimit = n }
}

// NewTranslationAgent creates the translation agent. url is advertised on
// the card and may be empty.
func NewTranslationAgent(url string, opts ...TranslationOption) *TranslationAgent {
	cfg := translationConfig{
		delay:     generation.DefaultDelay,
		logger:    slog.New(slog.DiscardHandler),
		taskLimit: DefaultTaskLimit,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	a := &TranslationAgent{delay: cfg.delay}
	a.BaseAgent = NewBaseAgent(TranslationCard(url), a.produce,
		WithLogger(cfg.logger), WithTaskLimit(cfg.taskLimit))
	return a
}

// TranslationCard describes the translation agent.
func TranslationCard(url string) a2a.AgentCard {
	return a2a.AgentCard{
		Name:        "descstream-translator",
		Description: "Streams localized description blocks word by word.",
		Version:     Version,
		URL:         url,
		Capabilities: a2a.AgentCapabilities{
			Streaming: true,
		},
		DefaultInputModes:  []string{"text/plain", "application/json"},
		DefaultOutputModes: []string{"text/plain"},
		Skills: []a2a.AgentSkill{
			{
				ID:          string(SkillTranslate),
				Name:        "Translate description",
				Description: "Translates the blocks of a description into a target locale.",
				Tags:        []string{"translation", "i18n"},
				Examples:    []string{"translate run 42 to fr_FR"},
			},
			{
				ID:          string(SkillGenerate),
				Name:        "Generate description",
				Description: "Generates the scripted blocks of a description.",
				Tags:        []string{"generation"},
			},
		},
	}
}

func (a *TranslationAgent) produce(ctx context.Context, req generation.RequestMetadata, emit func(content.Event) error) error {
	blocks := blocksFor(req)
	if len(blocks) == 0 {
		return fmt.Errorf("agent: nothing to produce for block %q in %s", req.BlockName, req.Locale)
	}
	return generation.StreamBlocks(ctx, req.Locale, blocks, a.delay, emit)
}

// blocksFor follows the source content sent with the request, using the
// script of the target locale where one exists and echoing the source text
// otherwise. Without source content the script alone is used.
func blocksFor(req generation.RequestMetadata) []generation.ScriptBlock {
	var out []generation.ScriptBlock
	for _, src := range req.Source {
		if req.BlockName != "" && src.Name != req.BlockName {
			continue
		}
		if src.Name != "" {
			if scripted := generation.Script(req.Locale, src.Name); len(scripted) > 0 {
				out = append(out, scripted...)
				continue
			}
		}
		out = append(out, generation.ScriptBlock{Name: src.Name, Text: src.Content})
	}
	if len(out) == 0 {
		return generation.Script(req.Locale, req.BlockName)
	}
	return out
}
