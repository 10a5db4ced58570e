// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes onboarding tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/onboard/internal/apperr"
	"github.com/starford/onboard/internal/pageservice"
)

// Resource URIs.
const (
	WelcomeURI    = "onboard://welcome"
	PageFormatURI = "onboard://page-format"
)

const searchLimit = 20

// Server wraps the MCP server with onboarding tools.
type Server struct {
	mcp *server.MCPServer
	svc *pageservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *pageservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Onboard",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("format_toc",
		mcp.WithDescription("Build a table of contents for Markdown text. Returns the TOC "+
			"and the text with an anchor target appended to every listed heading. "+
			"Read onboard://page-format for the heading rules."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown text, lines separated by \\n")),
		mcp.WithString("marker", mcp.Description("Optional single heading marker character (default #)")),
	), s.formatTOC)

	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List onboarding guide pages in display order."),
	), s.listPages)

	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Read a guide page with its table of contents and annotated Markdown."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative page path (e.g. guides/deploy.md)")),
	), s.readPage)

	s.mcp.AddTool(mcp.NewTool("search_headings",
		mcp.WithDescription("Search section headings across all guide pages."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchHeadings)

	s.mcp.AddTool(mcp.NewTool("list_capabilities",
		mcp.WithDescription("List the packages that apps on the platform can import."),
	), s.listCapabilities)

	s.mcp.AddResource(
		mcp.NewResource(WelcomeURI, "Welcome",
			mcp.WithResourceDescription("The quick-start guide with its table of contents."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readWelcome,
	)

	s.mcp.AddResource(
		mcp.NewResource(PageFormatURI, "Page Format",
			mcp.WithResourceDescription("How guide pages and their headings are written."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPageFormat,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) formatTOC(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	marker := req.GetString("marker", "")
	if utf8.RuneCountInString(marker) > 1 {
		return mcp.NewToolResultError("marker must be a single character"), nil
	}
	var r rune
	if marker != "" {
		r, _ = utf8.DecodeRuneInString(marker)
	}
	res, err := s.svc.Format(ctx, content, r)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) listPages(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.ListPages(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items), nil
}

func (s *Server) readPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.GetPage(ctx, path)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	case errors.Is(err, apperr.ErrInvalidPath):
		return mcp.NewToolResultError(fmt.Sprintf("invalid path: %s", path)), nil
	case err != nil:
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(withTOC(p.TOC, p.Markdown())), nil
}

// withTOC prefixes content with toc and a blank line, the layout the toc
// command prints too.
func withTOC(toc, content string) string {
	if toc == "" {
		return content
	}
	return toc + "\n\n" + content
}

func (s *Server) searchHeadings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.Search(ctx, query, searchLimit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(hits), nil
}

func (s *Server) listCapabilities(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.svc.Capabilities(ctx).Text()), nil
}

func (s *Server) readWelcome(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	v := s.svc.Welcome(ctx)
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      WelcomeURI,
			MIMEType: "text/markdown",
			Text:     withTOC(v.TOC, v.Markdown()),
		},
	}, nil
}

func (s *Server) readPageFormat(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      PageFormatURI,
			MIMEType: "text/markdown",
			Text:     PageFormatContract,
		},
	}, nil
}
