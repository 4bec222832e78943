package a2a

import "context"

// Client talks to a remote translation agent.
type Client interface {
	// SendMessage sends a message and returns the resulting task once the
	// agent has processed it.
	SendMessage(ctx context.Context, endpoint string, req SendMessageRequest) (*Task, error)

	// StreamMessage sends a message and returns the stream of task updates.
	// The channel is closed when the stream ends or ctx is cancelled.
	StreamMessage(ctx context.Context, endpoint string, req SendMessageRequest) (<-chan StreamEvent, error)

	// GetTask retrieves a task by ID.
	GetTask(ctx context.Context, endpoint string, req GetTaskRequest) (*Task, error)

	// DiscoverAgent fetches the Agent Card from the well-known URI.
	DiscoverAgent(ctx context.Context, baseURL string) (*AgentCard, error)
}
