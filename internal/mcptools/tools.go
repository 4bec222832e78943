package mcptools

import (
	"github.com/dusk-indust/descstream/internal/export"
	"github.com/dusk-indust/descstream/internal/status"
)

// --- MCP Tool Input Types ---
// The MCP Go SDK generates the JSON schema of each tool from these structs.

// StartBlockInput is the input for the start_block MCP tool.
type StartBlockInput struct {
	Name                  string `json:"name" jsonschema:"block name, unique within a locale"`
	Level                 int    `json:"level,omitempty" jsonschema:"heading depth of the block (default: 0)"`
	DisplayTitle          string `json:"displayTitle,omitempty" jsonschema:"title shown above the block content"`
	IsContentDisplayTitle bool   `json:"isContentDisplayTitle,omitempty" jsonschema:"render the content itself as the heading"`
	Locale                string `json:"locale,omitempty" jsonschema:"locale of the block, e.g. en_US (default: current locale)"`
}

// AppendChunkInput is the input for the append_chunk MCP tool.
type AppendChunkInput struct {
	BlockName string `json:"blockName" jsonschema:"name of a started block"`
	Chunk     string `json:"chunk" jsonschema:"text to append"`
	Locale    string `json:"locale,omitempty" jsonschema:"locale of the block (default: current locale)"`
}

// FinishContentInput is the input for the finish_content MCP tool.
type FinishContentInput struct{}

// ChangeLocaleInput is the input for the change_locale MCP tool.
type ChangeLocaleInput struct {
	Locale string `json:"locale" jsonschema:"target locale, e.g. fr_FR or fr"`
	Block  string `json:"block,omitempty" jsonschema:"translate only this block"`
	Force  bool   `json:"force,omitempty" jsonschema:"translate again even when the locale already has content"`
}

// GetContentInput is the input for the get_content MCP tool.
type GetContentInput struct {
	Locale string `json:"locale,omitempty" jsonschema:"locale to read (default: current locale)"`
}

// ResetAllInput is the input for the reset_all MCP tool.
type ResetAllInput struct{}

// GetStatusInput is the input for the get_status MCP tool.
type GetStatusInput struct {
	Lang string `json:"lang,omitempty" jsonschema:"language of the text report (default: current locale)"`
}

// --- MCP Tool Output Types ---

// StateOutput reports the presentation state after a mutation.
type StateOutput struct {
	CurrentLocale string `json:"currentLocale"`
	Loading       bool   `json:"loading"`
}

// ChangeLocaleOutput is the result of the change_locale MCP tool.
type ChangeLocaleOutput struct {
	CurrentLocale        string `json:"currentLocale"`
	Loading              bool   `json:"loading"`
	TranslationRequested bool   `json:"translationRequested"`
}

// GetContentOutput is the result of the get_content MCP tool.
type GetContentOutput struct {
	Locale   string               `json:"locale"`
	Markdown string               `json:"markdown"`
	Blocks   []export.BlockExport `json:"blocks,omitempty"`
}

// GetStatusOutput is the result of the get_status MCP tool.
type GetStatusOutput struct {
	Summary status.Summary `json:"summary"`
	Text    string         `json:"text,omitempty"`
}
