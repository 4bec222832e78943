package generation

import (
	"encoding/json"
	"fmt"

	"github.com/dusk-indust/descstream/internal/a2a"
	"github.com/dusk-indust/descstream/internal/content"
)

// RequestMetadata is carried in the metadata of a translation message.
type RequestMetadata struct {
	RunID     string         `json:"runId"`
	Locale    content.Locale `json:"locale"`
	BlockName string         `json:"blockName,omitempty"`
	// Source is the default locale content to translate from.
	SourceLocale content.Locale `json:"sourceLocale,omitempty"`
	Source       []SourceBlock  `json:"source,omitempty"`
}

// SourceBlock is one block of the content to translate.
type SourceBlock struct {
	Name                  string             `json:"name"`
	Level                 content.BlockLevel `json:"level"`
	DisplayTitle          string             `json:"displayTitle"`
	IsContentDisplayTitle bool               `json:"isContentDisplayTitle"`
	Content               string             `json:"content"`
}

// BlockMetadata is carried in the metadata of the first artifact chunk of a
// block and describes the block identity.
type BlockMetadata struct {
	Locale                content.Locale     `json:"locale"`
	Level                 content.BlockLevel `json:"level"`
	DisplayTitle          string             `json:"displayTitle"`
	IsContentDisplayTitle bool               `json:"isContentDisplayTitle"`
}

// SourceBlocks snapshots the default locale content of p.
func SourceBlocks(p SourceProvider) (content.Locale, []SourceBlock) {
	locale := p.DefaultLocale()
	lc, ok := p.LocaleContent(locale)
	if !ok {
		return locale, nil
	}
	blocks := lc.Blocks()
	out := make([]SourceBlock, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, SourceBlock{
			Name:                  b.Name(),
			Level:                 b.Level(),
			DisplayTitle:          b.DisplayTitle(),
			IsContentDisplayTitle: b.IsContentDisplayTitle(),
			Content:               b.Content(),
		})
	}
	return locale, out
}

// NewTranslationMessage encodes req as a user message.
func NewTranslationMessage(req content.TranslationRequest, sourceLocale content.Locale, source []SourceBlock) (a2a.Message, error) {
	text := fmt.Sprintf("translate run %s to %s", req.RunID, req.Locale)
	if req.SingleBlock() {
		text += " (block " + req.BlockName + ")"
	}
	msg, err := a2a.NewMessage(a2a.RoleUser, text, RequestMetadata{
		RunID:        req.RunID,
		Locale:       req.Locale,
		BlockName:    req.BlockName,
		SourceLocale: sourceLocale,
		Source:       source,
	})
	if err != nil {
		return a2a.Message{}, err
	}
	msg.ContextID = req.RunID
	return msg, nil
}

// DecodeRequest extracts the translation request from a message.
func DecodeRequest(msg a2a.Message) (RequestMetadata, error) {
	var meta RequestMetadata
	if err := a2a.DecodeMetadata(msg.Metadata, &meta); err != nil {
		return RequestMetadata{}, fmt.Errorf("%w: %v", a2a.ErrInvalidParams, err)
	}
	if meta.Locale == "" {
		return RequestMetadata{}, fmt.Errorf("%w: translation request without locale", a2a.ErrInvalidParams)
	}
	if meta.RunID == "" {
		meta.RunID = msg.ContextID
	}
	return meta, nil
}

// ArtifactUpdate converts a boundary event into an artifact update of task.
// It returns false for events that have no artifact form (finished).
func ArtifactUpdate(taskID, contextID string, ev content.Event) (a2a.TaskArtifactUpdateEvent, bool, error) {
	switch {
	case ev.Start != nil:
		meta, err := json.Marshal(BlockMetadata{
			Locale:                ev.Start.Locale,
			Level:                 ev.Start.Level,
			DisplayTitle:          ev.Start.DisplayTitle,
			IsContentDisplayTitle: ev.Start.IsContentDisplayTitle,
		})
		if err != nil {
			return a2a.TaskArtifactUpdateEvent{}, false, fmt.Errorf("generation: marshal block metadata: %w", err)
		}
		return a2a.TaskArtifactUpdateEvent{
			TaskID:    taskID,
			ContextID: contextID,
			Artifact: a2a.Artifact{
				ArtifactID: artifactID(ev.Start.Locale, ev.Start.Name),
				Name:       ev.Start.Name,
				Parts:      []a2a.Part{},
				Metadata:   meta,
			},
		}, true, nil
	case ev.Chunk != nil:
		return a2a.TaskArtifactUpdateEvent{
			TaskID:    taskID,
			ContextID: contextID,
			Artifact: a2a.Artifact{
				ArtifactID: artifactID(ev.Chunk.Locale, ev.Chunk.BlockName),
				Name:       ev.Chunk.BlockName,
				Parts:      []a2a.Part{a2a.TextPart(ev.Chunk.Chunk)},
			},
			Append: true,
		}, true, nil
	default:
		return a2a.TaskArtifactUpdateEvent{}, false, nil
	}
}

func artifactID(locale content.Locale, block string) string {
	return string(locale) + "/" + block
}

// EventsFromStream maps one stream event to boundary events. fallback is the
// locale of the request, used when an artifact does not name its own.
//
// An artifact update without Append starts the block named after the
// artifact, followed by a chunk when it already carries text. An appended
// update is a chunk. A terminal status update finishes the cycle; a failed
// one also returns an error.
func EventsFromStream(ev a2a.StreamEvent, fallback content.Locale) ([]content.Event, error) {
	if ev.Err != nil {
		return nil, ev.Err
	}

	switch {
	case ev.ArtifactUpdate != nil:
		art := ev.ArtifactUpdate.Artifact
		name := art.Name
		if name == "" {
			name = art.ArtifactID
		}
		meta := BlockMetadata{Locale: fallback}
		if err := a2a.DecodeMetadata(art.Metadata, &meta); err != nil {
			return nil, err
		}
		if meta.Locale == "" {
			meta.Locale = fallback
		}
		text := art.Text()
		chunk := content.ChunkEvent(content.BlockChunk{BlockName: name, Chunk: text, Locale: meta.Locale})

		if ev.ArtifactUpdate.Append {
			return []content.Event{chunk}, nil
		}
		events := []content.Event{content.StartEvent(content.BlockStart{
			Name:                  name,
			Level:                 meta.Level,
			DisplayTitle:          meta.DisplayTitle,
			IsContentDisplayTitle: meta.IsContentDisplayTitle,
			Locale:                meta.Locale,
		})}
		if text != "" {
			events = append(events, chunk)
		}
		return events, nil

	case ev.StatusUpdate != nil:
		st := ev.StatusUpdate.Status
		if !st.State.IsTerminal() {
			return nil, nil
		}
		finished := []content.Event{content.FinishedEvent()}
		if st.State != a2a.TaskStateCompleted {
			reason := string(st.State)
			if st.Message != nil && st.Message.Text() != "" {
				reason += ": " + st.Message.Text()
			}
			return finished, fmt.Errorf("generation: translation task %s %s", ev.StatusUpdate.TaskID, reason)
		}
		return finished, nil
	}
	return nil, nil
}
