package mcptools

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/descstream/internal/content"
	"github.com/dusk-indust/descstream/internal/generation"
	"github.com/dusk-indust/descstream/internal/status"
)

// setupServerClient wires an MCP server and client together using in-memory
// transports. It returns the connected client session and the Description
// behind the tools.
func setupServerClient(t *testing.T) (*mcp.ClientSession, *content.Description, *generation.Simulator) {
	t.Helper()

	sim := generation.NewSimulator(generation.WithDelay(0))
	t.Cleanup(func() { _ = sim.Close() })
	d, err := content.NewDescription("run-1", content.WithTranslator(sim))
	require.NoError(t, err)
	sim.Attach(d)

	f, err := status.NewFormatter(content.EnUS)
	require.NoError(t, err)
	server := NewContentMCPServer(NewContentService(d, f))

	st, ct := mcp.NewInMemoryTransports()
	ctx := context.Background()

	_, err = server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
	})

	return session, d, sim
}

// call invokes a tool and decodes its structured output into out.
func call(t *testing.T, session *mcp.ClientSession, name string, args any, out any) *mcp.CallToolResult {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	if out != nil && !result.IsError {
		require.NotNil(t, result.StructuredContent, "expected structured content from %s", name)
		raw, err := json.Marshal(result.StructuredContent)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out))
	}
	return result
}

func TestMCPListTools(t *testing.T) {
	session, _, _ := setupServerClient(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	sort.Strings(names)

	expected := []string{
		"append_chunk",
		"change_locale",
		"finish_content",
		"get_content",
		"get_status",
		"reset_all",
		"start_block",
	}
	assert.Equal(t, expected, names)
}

func TestMCPStreamBlock(t *testing.T) {
	session, d, _ := setupServerClient(t)

	var state StateOutput
	result := call(t, session, "start_block", StartBlockInput{Name: "intro", Level: 1, DisplayTitle: "Intro"}, &state)
	require.False(t, result.IsError)
	assert.Equal(t, "en_US", state.CurrentLocale)
	assert.True(t, state.Loading)

	for _, chunk := range []string{"Hello ", "there "} {
		result = call(t, session, "append_chunk", AppendChunkInput{BlockName: "intro", Chunk: chunk}, &state)
		require.False(t, result.IsError)
	}
	result = call(t, session, "finish_content", FinishContentInput{}, &state)
	require.False(t, result.IsError)
	assert.False(t, state.Loading)

	b, ok := d.Block(content.EnUS, "intro")
	require.True(t, ok)
	assert.Equal(t, "Hello there ", b.Content())

	var out GetContentOutput
	result = call(t, session, "get_content", GetContentInput{Locale: "en-us"}, &out)
	require.False(t, result.IsError)
	assert.Equal(t, "en_US", out.Locale)
	assert.Equal(t, "## Intro\n\nHello there\n", out.Markdown)
	require.Len(t, out.Blocks, 1)
	assert.Equal(t, "Hello there ", out.Blocks[0].Content)
}

func TestMCPAppendChunk_UnknownBlock(t *testing.T) {
	session, _, _ := setupServerClient(t)

	result := call(t, session, "append_chunk", AppendChunkInput{BlockName: "missing", Chunk: "x"}, nil)
	assert.True(t, result.IsError)
}

func TestMCPChangeLocale(t *testing.T) {
	session, d, sim := setupServerClient(t)
	require.NoError(t, sim.Generate(context.Background(), content.EnUS, ""))

	var out ChangeLocaleOutput
	result := call(t, session, "change_locale", ChangeLocaleInput{Locale: "fr"}, &out)
	require.False(t, result.IsError)
	assert.Equal(t, "fr_FR", out.CurrentLocale)
	assert.True(t, out.TranslationRequested)
	sim.Wait()

	b, ok := d.Block(content.FrFR, generation.BlockTitle)
	require.True(t, ok)
	assert.Equal(t, "Ceci est un titre ! ", b.Content())

	// Existing content: no new translation unless forced.
	result = call(t, session, "change_locale", ChangeLocaleInput{Locale: "fr_FR"}, &out)
	require.False(t, result.IsError)
	assert.False(t, out.TranslationRequested)

	result = call(t, session, "change_locale", ChangeLocaleInput{Locale: "fr_FR", Block: generation.BlockTitle, Force: true}, &out)
	require.False(t, result.IsError)
	assert.True(t, out.TranslationRequested)
	sim.Wait()
}

func TestMCPChangeLocale_Errors(t *testing.T) {
	session, _, _ := setupServerClient(t)

	// Unsupported locale.
	result := call(t, session, "change_locale", ChangeLocaleInput{Locale: "de_DE"}, nil)
	assert.True(t, result.IsError)

	// Nothing to translate from yet.
	result = call(t, session, "change_locale", ChangeLocaleInput{Locale: "fr_FR"}, nil)
	assert.True(t, result.IsError)
}

func TestMCPResetAllAndStatus(t *testing.T) {
	session, d, sim := setupServerClient(t)
	require.NoError(t, sim.Generate(context.Background(), content.EnUS, ""))

	var st GetStatusOutput
	result := call(t, session, "get_status", GetStatusInput{}, &st)
	require.False(t, result.IsError)
	require.Len(t, st.Summary.Locales, 1)
	assert.Equal(t, 3, st.Summary.Locales[0].Filled)
	assert.Contains(t, st.Text, "3/3 blocks filled")

	var state StateOutput
	result = call(t, session, "reset_all", ResetAllInput{}, &state)
	require.False(t, result.IsError)

	lc, ok := d.LocaleContent(content.EnUS)
	require.True(t, ok)
	assert.Equal(t, "\n\n\n", lc.RenderedContent())

	result = call(t, session, "get_status", GetStatusInput{Lang: "fr"}, &st)
	require.False(t, result.IsError)
	assert.Contains(t, st.Text, "0/3 blocs remplis")
}

func TestMCPGetContent_MissingLocale(t *testing.T) {
	session, _, _ := setupServerClient(t)

	result := call(t, session, "get_content", GetContentInput{Locale: "fr_FR"}, nil)
	assert.True(t, result.IsError)
}
