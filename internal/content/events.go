package content

// BlockLevel is the heading depth of a block.
type BlockLevel int

// BlockStart is sent whenever the content of a block is (re)starting.
type BlockStart struct {
	Name                  string     `json:"name"`
	Level                 BlockLevel `json:"level"`
	DisplayTitle          string     `json:"display_title"`
	IsContentDisplayTitle bool       `json:"is_content_display_title"`
	Locale                Locale     `json:"locale"`
}

// BlockChunk is a fragment of text generated for one block of one locale.
type BlockChunk struct {
	BlockName string `json:"block_name"`
	Chunk     string `json:"chunk"`
	Locale    Locale `json:"locale"`
}

// Event is the boundary union delivered by a generation collaborator.
// Exactly one of Start, Chunk or Finished is set.
type Event struct {
	Start    *BlockStart `json:"start,omitempty"`
	Chunk    *BlockChunk `json:"chunk,omitempty"`
	Finished bool        `json:"finished,omitempty"`
}

// StartEvent wraps a BlockStart into an Event.
func StartEvent(s BlockStart) Event { return Event{Start: &s} }

// ChunkEvent wraps a BlockChunk into an Event.
func ChunkEvent(c BlockChunk) Event { return Event{Chunk: &c} }

// FinishedEvent returns the content-finished signal.
func FinishedEvent() Event { return Event{Finished: true} }

// TranslationRequest asks the collaborator to (re)generate a locale.
// An empty BlockName targets every block of the locale.
type TranslationRequest struct {
	RunID     string `json:"run_id"`
	Locale    Locale `json:"locale"`
	BlockName string `json:"block_name,omitempty"`
}

// SingleBlock reports whether the request is scoped to one block.
func (r TranslationRequest) SingleBlock() bool { return r.BlockName != "" }
