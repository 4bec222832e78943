package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dusk-indust/descstream/internal/a2a"
	"github.com/dusk-indust/descstream/internal/content"
	"github.com/dusk-indust/descstream/internal/generation"
)

// Compile-time interface checks.
var (
	_ Agent       = (*BaseAgent)(nil)
	_ a2a.Handler = (*BaseAgent)(nil)
)

// DefaultTaskLimit is the number of tasks an agent remembers.
const DefaultTaskLimit = 256

// ProduceFunc is implemented by concrete agents. It receives the decoded
// request and reports the produced content through emit.
type ProduceFunc func(ctx context.Context, req generation.RequestMetadata, emit func(content.Event) error) error

// BaseAgent carries the task lifecycle shared by every agent: it records
// tasks in a store, turns produced content into artifact updates and ends
// each task with a terminal status.
type BaseAgent struct {
	card    a2a.AgentCard
	store   *a2a.TaskStore
	produce ProduceFunc
	logger  *slog.Logger
}

// BaseOption configures a BaseAgent.
type BaseOption func(*BaseAgent)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) BaseOption {
	return func(b *BaseAgent) { b.logger = l }
}

// WithTaskLimit bounds the number of remembered tasks.
func WithTaskLimit(n int) BaseOption {
	return func(b *BaseAgent) { b.store = a2a.NewTaskStore(n) }
}

// NewBaseAgent creates a BaseAgent with the given card and produce function.
func NewBaseAgent(card a2a.AgentCard, produce ProduceFunc, opts ...BaseOption) *BaseAgent {
	b := &BaseAgent{
		card:    card,
		store:   a2a.NewTaskStore(DefaultTaskLimit),
		produce: produce,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Card returns the agent's A2A Agent Card.
func (b *BaseAgent) Card() a2a.AgentCard {
	return b.card
}

// ListenAndServe serves the agent on addr until ctx is cancelled.
func (b *BaseAgent) ListenAndServe(ctx context.Context, addr string) error {
	return a2a.NewServer(b.card, b, a2a.WithServerLogger(b.logger)).ListenAndServe(ctx, addr)
}

// HandleSendMessage runs the task to completion and returns it with every
// produced artifact.
func (b *BaseAgent) HandleSendMessage(ctx context.Context, req a2a.SendMessageRequest) (*a2a.Task, error) {
	task, meta, err := b.begin(req.Message)
	if err != nil {
		return nil, err
	}
	runErr := b.run(ctx, task, meta, func(a2a.StreamEvent) error { return nil })
	result, err := b.store.Get(task.ID)
	if err != nil {
		return nil, err
	}
	return result, runErr
}

// HandleStreamMessage streams the task snapshot, one artifact update per
// produced event and a final status.
func (b *BaseAgent) HandleStreamMessage(ctx context.Context, req a2a.SendMessageRequest, emit func(a2a.StreamEvent) error) error {
	task, meta, err := b.begin(req.Message)
	if err != nil {
		return err
	}
	if err := emit(a2a.StreamEvent{Task: &task}); err != nil {
		return err
	}
	return b.run(ctx, task, meta, emit)
}

// HandleGetTask retrieves a task by ID from the store.
func (b *BaseAgent) HandleGetTask(_ context.Context, req a2a.GetTaskRequest) (*a2a.Task, error) {
	return b.store.Get(req.ID)
}

func (b *BaseAgent) begin(msg a2a.Message) (a2a.Task, generation.RequestMetadata, error) {
	meta, err := generation.DecodeRequest(msg)
	if err != nil {
		return a2a.Task{}, generation.RequestMetadata{}, err
	}
	task := a2a.Task{
		ID:        a2a.NewID(),
		ContextID: meta.RunID,
		Status:    a2a.NewStatus(a2a.TaskStateSubmitted),
		History:   []a2a.Message{msg},
	}
	if err := b.store.Create(task); err != nil {
		return a2a.Task{}, generation.RequestMetadata{}, fmt.Errorf("create task: %w", err)
	}
	b.logger.Info("task submitted", "task", task.ID, "run", meta.RunID, "locale", meta.Locale, "block", meta.BlockName)
	return task, meta, nil
}

// run produces the content of task. The finished event is not forwarded;
// the final status closes the cycle on the client side.
func (b *BaseAgent) run(ctx context.Context, task a2a.Task, meta generation.RequestMetadata, emit func(a2a.StreamEvent) error) error {
	if err := b.setStatus(task, a2a.NewStatus(a2a.TaskStateWorking), false, emit); err != nil {
		return err
	}

	err := b.produce(ctx, meta, func(ev content.Event) error {
		up, ok, err := generation.ArtifactUpdate(task.ID, task.ContextID, ev)
		if err != nil || !ok {
			return err
		}
		if err := b.store.ApplyArtifactUpdate(up); err != nil {
			return err
		}
		return emit(a2a.StreamEvent{ArtifactUpdate: &up})
	})

	if err != nil {
		b.logger.Error("task failed", "task", task.ID, "error", err)
		status := a2a.NewStatus(a2a.TaskStateFailed)
		if ctx.Err() != nil {
			status = a2a.NewStatus(a2a.TaskStateCanceled)
		}
		status.Message = &a2a.Message{
			MessageID: a2a.NewID(),
			Role:      a2a.RoleAgent,
			Parts:     []a2a.Part{a2a.TextPart(err.Error())},
		}
		if serr := b.setStatus(task, status, true, emit); serr != nil {
			b.logger.Warn("could not report failure", "task", task.ID, "error", serr)
		}
		return err
	}

	b.logger.Info("task completed", "task", task.ID)
	return b.setStatus(task, a2a.NewStatus(a2a.TaskStateCompleted), true, emit)
}

func (b *BaseAgent) setStatus(task a2a.Task, status a2a.TaskStatus, final bool, emit func(a2a.StreamEvent) error) error {
	if err := b.store.SetStatus(task.ID, status); err != nil {
		return err
	}
	return emit(a2a.StreamEvent{StatusUpdate: &a2a.TaskStatusUpdateEvent{
		TaskID:    task.ID,
		ContextID: task.ContextID,
		Status:    status,
		Final:     final,
	}})
}
