// Package agent implements A2A agents producing description content.
package agent

import (
	"context"

	"github.com/dusk-indust/descstream/internal/a2a"
)

// Agent is an A2A agent that can be served over HTTP.
type Agent interface {
	a2a.Handler

	// Card returns the agent's A2A Agent Card.
	Card() a2a.AgentCard

	// ListenAndServe serves the agent on addr until ctx is cancelled.
	ListenAndServe(ctx context.Context, addr string) error
}

// Skill identifies a capability advertised on the agent card.
type Skill string

const (
	SkillTranslate Skill = "translate"
	SkillGenerate  Skill = "generate"
)
