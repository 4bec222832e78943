package a2a

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// TaskStore
// ---------------------------------------------------------------------------

func TestTaskStore_CreateGet(t *testing.T) {
	store := NewTaskStore(0)
	task := Task{ID: "task-1", ContextID: "run-1", Status: NewStatus(TaskStateSubmitted)}

	require.NoError(t, store.Create(task))

	got, err := store.Get("task-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ContextID)
	assert.Equal(t, TaskStateSubmitted, got.Status.State)
}

func TestTaskStore_DuplicateCreate(t *testing.T) {
	store := NewTaskStore(0)
	task := Task{ID: "dup"}
	require.NoError(t, store.Create(task))

	err := store.Create(task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestTaskStore_NotFound(t *testing.T) {
	store := NewTaskStore(0)

	_, err := store.Get("missing")
	require.ErrorIs(t, err, ErrTaskNotFound)
	require.ErrorIs(t, store.SetStatus("missing", NewStatus(TaskStateWorking)), ErrTaskNotFound)
	require.ErrorIs(t, store.ApplyArtifactUpdate(TaskArtifactUpdateEvent{TaskID: "missing"}), ErrTaskNotFound)
}

func TestTaskStore_GetReturnsCopy(t *testing.T) {
	store := NewTaskStore(0)
	require.NoError(t, store.Create(Task{
		ID:        "t",
		Artifacts: []Artifact{{ArtifactID: "a", Parts: []Part{TextPart("original")}}},
	}))

	got, err := store.Get("t")
	require.NoError(t, err)
	got.Artifacts[0].Parts[0].Text = "mutated"

	again, err := store.Get("t")
	require.NoError(t, err)
	assert.Equal(t, "original", again.Artifacts[0].Parts[0].Text)
}

func TestTaskStore_SetStatus(t *testing.T) {
	store := NewTaskStore(0)
	require.NoError(t, store.Create(Task{ID: "t", Status: NewStatus(TaskStateSubmitted)}))

	require.NoError(t, store.SetStatus("t", NewStatus(TaskStateCompleted)))

	got, err := store.Get("t")
	require.NoError(t, err)
	assert.Equal(t, TaskStateCompleted, got.Status.State)
}

func TestTaskStore_ApplyArtifactUpdate(t *testing.T) {
	store := NewTaskStore(0)
	require.NoError(t, store.Create(Task{ID: "t"}))

	updates := []TaskArtifactUpdateEvent{
		{TaskID: "t", Artifact: Artifact{ArtifactID: "title", Name: "title", Parts: []Part{TextPart("Ceci ")}}},
		{TaskID: "t", Artifact: Artifact{ArtifactID: "title", Parts: []Part{TextPart("est ")}}, Append: true},
		{TaskID: "t", Artifact: Artifact{ArtifactID: "short", Name: "short", Parts: []Part{TextPart("La ")}}},
		{TaskID: "t", Artifact: Artifact{ArtifactID: "title", Parts: []Part{TextPart("titre")}}, Append: true, LastChunk: true},
	}
	for _, u := range updates {
		require.NoError(t, store.ApplyArtifactUpdate(u))
	}

	got, err := store.Get("t")
	require.NoError(t, err)
	require.Len(t, got.Artifacts, 2)
	assert.Equal(t, "Ceci est titre", got.Artifacts[0].Text())
	assert.Equal(t, "La ", got.Artifacts[1].Text())

	// A non-append chunk restarts the artifact.
	require.NoError(t, store.ApplyArtifactUpdate(TaskArtifactUpdateEvent{
		TaskID: "t", Artifact: Artifact{ArtifactID: "title", Name: "title", Parts: []Part{TextPart("Nouveau")}},
	}))
	got, err = store.Get("t")
	require.NoError(t, err)
	assert.Equal(t, "Nouveau", got.Artifacts[0].Text())
}

func TestTaskStore_LimitEvictsOldest(t *testing.T) {
	store := NewTaskStore(2)
	for i := range 3 {
		require.NoError(t, store.Create(Task{ID: fmt.Sprintf("t%d", i)}))
	}

	assert.Equal(t, 2, store.Len())
	_, err := store.Get("t0")
	require.ErrorIs(t, err, ErrTaskNotFound)
	_, err = store.Get("t2")
	require.NoError(t, err)
}

func TestTaskStore_ConcurrentAccess(t *testing.T) {
	store := NewTaskStore(0)
	require.NoError(t, store.Create(Task{ID: "t"}))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.ApplyArtifactUpdate(TaskArtifactUpdateEvent{
				TaskID:   "t",
				Artifact: Artifact{ArtifactID: "a", Parts: []Part{TextPart(fmt.Sprint(i))}},
				Append:   true,
			})
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Get("t")
		}()
	}
	wg.Wait()

	got, err := store.Get("t")
	require.NoError(t, err)
	require.Len(t, got.Artifacts, 1)
	// The first update created the artifact, the others appended to it.
	assert.Len(t, got.Artifacts[0].Parts, 20)
}
