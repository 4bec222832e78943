// Package mcptools exposes a Description as MCP tools, so that an assistant
// can drive the generation and read the result.
package mcptools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/descstream/internal/content"
	"github.com/dusk-indust/descstream/internal/export"
	"github.com/dusk-indust/descstream/internal/status"
)

// ContentService handles MCP tool calls against one Description.
type ContentService struct {
	desc      *content.Description
	formatter *status.Formatter
}

// NewContentService creates a ContentService. formatter may be nil, in
// which case get_status returns the summary only.
func NewContentService(d *content.Description, formatter *status.Formatter) *ContentService {
	return &ContentService{desc: d, formatter: formatter}
}

// StartBlock starts (or restarts) a block.
func (s *ContentService) StartBlock(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input StartBlockInput,
) (*mcp.CallToolResult, StateOutput, error) {
	locale, err := s.locale(input.Locale)
	if err != nil {
		return nil, StateOutput{}, err
	}
	err = s.desc.AddStartChunk(content.BlockStart{
		Name:                  input.Name,
		Level:                 content.BlockLevel(input.Level),
		DisplayTitle:          input.DisplayTitle,
		IsContentDisplayTitle: input.IsContentDisplayTitle,
		Locale:                locale,
	})
	if err != nil {
		return nil, StateOutput{}, err
	}
	return nil, s.state(), nil
}

// AppendChunk appends text to a started block.
func (s *ContentService) AppendChunk(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input AppendChunkInput,
) (*mcp.CallToolResult, StateOutput, error) {
	locale, err := s.locale(input.Locale)
	if err != nil {
		return nil, StateOutput{}, err
	}
	if err := s.desc.AddChunk(content.BlockChunk{BlockName: input.BlockName, Chunk: input.Chunk, Locale: locale}); err != nil {
		return nil, StateOutput{}, err
	}
	return nil, s.state(), nil
}

// FinishContent ends the current generation cycle.
func (s *ContentService) FinishContent(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ FinishContentInput,
) (*mcp.CallToolResult, StateOutput, error) {
	s.desc.OnContentFinished()
	return nil, s.state(), nil
}

// ChangeLocale switches the presented locale, requesting a translation when
// needed or when forced.
func (s *ContentService) ChangeLocale(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChangeLocaleInput,
) (*mcp.CallToolResult, ChangeLocaleOutput, error) {
	locale, err := content.ParseLocale(input.Locale, s.desc.Languages())
	if err != nil {
		return nil, ChangeLocaleOutput{}, err
	}

	var req *content.TranslationRequest
	if input.Force {
		req, err = s.desc.Translate(ctx, locale, input.Block)
	} else {
		req, err = s.desc.ChangeLocale(ctx, locale, input.Block)
	}
	if err != nil {
		return nil, ChangeLocaleOutput{}, err
	}
	st := s.state()
	return nil, ChangeLocaleOutput{
		CurrentLocale:        st.CurrentLocale,
		Loading:              st.Loading,
		TranslationRequested: req != nil,
	}, nil
}

// GetContent returns the content of a locale as markdown and blocks.
func (s *ContentService) GetContent(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetContentInput,
) (*mcp.CallToolResult, GetContentOutput, error) {
	locale, err := s.locale(input.Locale)
	if err != nil {
		return nil, GetContentOutput{}, err
	}
	lc, ok := s.desc.LocaleContent(locale)
	if !ok {
		return nil, GetContentOutput{}, fmt.Errorf("no content for locale %s", locale)
	}
	return nil, GetContentOutput{
		Locale:   string(locale),
		Markdown: export.Markdown(lc),
		Blocks:   export.ExportLocale(lc).Blocks,
	}, nil
}

// ResetAll clears every block of every locale.
func (s *ContentService) ResetAll(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ResetAllInput,
) (*mcp.CallToolResult, StateOutput, error) {
	s.desc.ResetAll()
	return nil, s.state(), nil
}

// GetStatus summarizes the description.
func (s *ContentService) GetStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetStatusInput,
) (*mcp.CallToolResult, GetStatusOutput, error) {
	summary := status.Summarize(s.desc)
	out := GetStatusOutput{Summary: summary}
	if s.formatter == nil {
		return nil, out, nil
	}

	locale := summary.CurrentLocale
	if input.Lang != "" {
		l, err := content.ParseLocale(input.Lang, s.desc.Languages())
		if err != nil {
			return nil, GetStatusOutput{}, err
		}
		locale = l
	}
	out.Text = s.formatter.FormatIn(locale, summary)
	return nil, out, nil
}

// locale resolves an optional locale argument, defaulting to the current
// locale.
func (s *ContentService) locale(raw string) (content.Locale, error) {
	if raw == "" {
		return s.desc.CurrentLocale(), nil
	}
	return content.ParseLocale(raw, s.desc.Languages())
}

func (s *ContentService) state() StateOutput {
	return StateOutput{
		CurrentLocale: string(s.desc.CurrentLocale()),
		Loading:       s.desc.IsLoading(),
	}
}
