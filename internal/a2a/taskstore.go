package a2a

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
)

// TaskStore is a concurrency-safe in-memory store for agent-side tasks.
// Insertion order is kept so that eviction drops the oldest tasks first.
type TaskStore struct {
	mu       sync.RWMutex
	tasks    map[string]*Task
	orderIDs []string
	limit    int
}

// NewTaskStore returns a store keeping at most limit tasks. A limit <= 0
// keeps every task.
func NewTaskStore(limit int) *TaskStore {
	return &TaskStore{
		tasks: make(map[string]*Task),
		limit: limit,
	}
}

// Create stores a new task. It returns an error if a task with the same ID
// already exists.
func (s *TaskStore) Create(task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return fmt.Errorf("task %q already exists", task.ID)
	}
	s.tasks[task.ID] = deepCopyTask(&task)
	s.orderIDs = append(s.orderIDs, task.ID)

	if s.limit > 0 && len(s.orderIDs) > s.limit {
		oldest := s.orderIDs[0]
		s.orderIDs = slices.Delete(s.orderIDs, 0, 1)
		delete(s.tasks, oldest)
	}
	return nil
}

// Get returns a deep copy of the task with the given ID.
func (s *TaskStore) Get(id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTaskNotFound, id)
	}
	return deepCopyTask(t), nil
}

// Len returns the number of stored tasks.
func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// SetStatus replaces the status of the task.
func (s *TaskStore) SetStatus(id string, status TaskStatus) error {
	return s.update(id, func(t *Task) { t.Status = status })
}

// ApplyArtifactUpdate records a streamed artifact chunk on its task. A chunk
// with Append set extends the parts of the artifact with the same ID; any
// other chunk replaces it.
func (s *TaskStore) ApplyArtifactUpdate(ev TaskArtifactUpdateEvent) error {
	return s.update(ev.TaskID, func(t *Task) {
		art := deepCopyArtifact(ev.Artifact)
		for i := range t.Artifacts {
			if t.Artifacts[i].ArtifactID != art.ArtifactID {
				continue
			}
			if ev.Append {
				t.Artifacts[i].Parts = append(t.Artifacts[i].Parts, art.Parts...)
			} else {
				t.Artifacts[i] = art
			}
			return
		}
		t.Artifacts = append(t.Artifacts, art)
	})
}

func (s *TaskStore) update(id string, fn func(*Task)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrTaskNotFound, id)
	}
	fn(t)
	return nil
}

func cloneRaw(src json.RawMessage) json.RawMessage {
	if src == nil {
		return nil
	}
	return slices.Clone(src)
}

func deepCopyTask(src *Task) *Task {
	dst := *src
	if src.Artifacts != nil {
		dst.Artifacts = make([]Artifact, len(src.Artifacts))
		for i, a := range src.Artifacts {
			dst.Artifacts[i] = deepCopyArtifact(a)
		}
	}
	if src.History != nil {
		dst.History = make([]Message, len(src.History))
		for i, m := range src.History {
			dst.History[i] = deepCopyMessage(m)
		}
	}
	dst.Metadata = cloneRaw(src.Metadata)
	if src.Status.Message != nil {
		msg := deepCopyMessage(*src.Status.Message)
		dst.Status.Message = &msg
	}
	return &dst
}

func deepCopyMessage(src Message) Message {
	dst := src
	dst.Parts = deepCopyParts(src.Parts)
	dst.Metadata = cloneRaw(src.Metadata)
	return dst
}

func deepCopyArtifact(src Artifact) Artifact {
	dst := src
	dst.Parts = deepCopyParts(src.Parts)
	dst.Metadata = cloneRaw(src.Metadata)
	return dst
}

func deepCopyParts(src []Part) []Part {
	if src == nil {
		return nil
	}
	dst := make([]Part, len(src))
	for i, p := range src {
		dst[i] = p
		dst[i].Data = cloneRaw(p.Data)
		dst[i].Metadata = cloneRaw(p.Metadata)
	}
	return dst
}
