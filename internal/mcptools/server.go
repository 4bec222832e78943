package mcptools

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewContentMCPServer creates an MCP server with the content tools registered.
func NewContentMCPServer(svc *ContentService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "descstream",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "start_block",
		Description: "Start a block of a locale. Restarting an existing block clears it; restarting a block of the default locale also drops every translation.",
	}, svc.StartBlock)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "append_chunk",
		Description: "Append a text chunk to a started block.",
	}, svc.AppendChunk)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "finish_content",
		Description: "Signal the end of the current generation cycle.",
	}, svc.FinishContent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "change_locale",
		Description: "Switch the presented locale. A locale without content is translated from the default locale first.",
	}, svc.ChangeLocale)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_content",
		Description: "Return the blocks of a locale and their markdown rendering.",
	}, svc.GetContent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reset_all",
		Description: "Clear the content of every block of every locale, keeping the blocks.",
	}, svc.ResetAll)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_status",
		Description: "Summarize the description: blocks per locale, missing translations and loading state.",
	}, svc.GetStatus)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP server over streamable HTTP on addr until ctx is
// cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
