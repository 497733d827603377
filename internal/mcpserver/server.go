// Package mcpserver exposes the engine's search and recall operations to
// an external AI agent over the Model Context Protocol, via stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/timbuchinger/context-cache/internal/display"
	"github.com/timbuchinger/context-cache/internal/embed"
	"github.com/timbuchinger/context-cache/internal/search"
	"github.com/timbuchinger/context-cache/internal/store"
)

// Server is the MCP stdio server bridging an external agent to the
// context cache's search and recall surface.
type Server struct {
	mcp         *mcp.Server
	st          *store.Store
	embedder    embed.Embedder
	hybrid      *search.HybridSearcher
	resultLimit int
	logger      *slog.Logger
}

// New creates a Server and registers its three tools.
func New(st *store.Store, embedder embed.Embedder, hybrid *search.HybridSearcher, resultLimit int) *Server {
	s := &Server{
		st:          st,
		embedder:    embedder,
		hybrid:      hybrid,
		resultLimit: resultLimit,
		logger:      slog.Default(),
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "context-cache",
		Version: "0.1.0",
	}, nil)

	s.registerTools()
	return s
}

// Serve runs the server over stdio until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting MCP server over stdio")
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		s.logger.Error("MCP server stopped with error", slog.Any("err", err))
		return err
	}
	s.logger.Info("MCP server stopped")
	return nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_kb",
		Description: "Hybrid keyword+semantic search over indexed notes. Returns the most relevant fragments across the knowledge base.",
	}, s.handleSearchKB)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_conversations",
		Description: "Substring search over archived conversation exchanges, optionally bounded by timestamp. A recall device, not a ranked search: returns matches in the bounds, newest conversation first, up to limit.",
	}, s.handleSearchConversations)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "show_conversation",
		Description: "Render a conversation archive as readable text, optionally bounded to a range of exchanges.",
	}, s.handleShowConversation)
}

// SearchKBInput is the input schema for search_kb.
type SearchKBInput struct {
	Query string `json:"query" jsonschema:"the search query"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
}

// SearchKBOutput is the output schema for search_kb.
type SearchKBOutput struct {
	Markdown string `json:"markdown" jsonschema:"search results rendered as markdown"`
}

func (s *Server) handleSearchKB(ctx context.Context, _ *mcp.CallToolRequest, input SearchKBInput) (*mcp.CallToolResult, SearchKBOutput, error) {
	if input.Query == "" {
		return nil, SearchKBOutput{}, NewInvalidParamsError("query parameter is required")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = s.resultLimit
	}

	var queryVector []float32
	if s.embedder != nil {
		v, err := s.embedder.Embed(ctx, input.Query)
		if err == nil {
			queryVector = v
		} else {
			s.logger.Warn("query embedding failed, falling back to lexical-only", slog.Any("err", err))
		}
	}

	hits, err := s.hybrid.Search(input.Query, queryVector, limit)
	if err != nil {
		return nil, SearchKBOutput{}, MapError(err)
	}
	return nil, SearchKBOutput{Markdown: FormatHybridResults(input.Query, hits)}, nil
}

// SearchConversationsInput is the input schema for search_conversations.
type SearchConversationsInput struct {
	Query  string `json:"query" jsonschema:"substring to search for in exchange text"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
	After  string `json:"after,omitempty" jsonschema:"ISO-8601 timestamp lower bound, inclusive"`
	Before string `json:"before,omitempty" jsonschema:"ISO-8601 timestamp upper bound, inclusive"`
	Format string `json:"format,omitempty" jsonschema:"markdown or json, default markdown"`
}

// SearchConversationsOutput is the output schema for search_conversations.
type SearchConversationsOutput struct {
	Text string `json:"text" jsonschema:"results rendered as markdown or JSON, per the requested format"`
}

func (s *Server) handleSearchConversations(ctx context.Context, _ *mcp.CallToolRequest, input SearchConversationsInput) (*mcp.CallToolResult, SearchConversationsOutput, error) {
	if input.Query == "" {
		return nil, SearchConversationsOutput{}, NewInvalidParamsError("query parameter is required")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = s.resultLimit
	}

	hits, err := search.SearchConversations(s.st, search.ConversationQuery{
		Substring: input.Query,
		After:     input.After,
		Before:    input.Before,
		Limit:     limit,
	})
	if err != nil {
		return nil, SearchConversationsOutput{}, MapError(err)
	}

	if input.Format == "json" {
		data, err := json.Marshal(hits)
		if err != nil {
			return nil, SearchConversationsOutput{}, MapError(err)
		}
		return nil, SearchConversationsOutput{Text: string(data)}, nil
	}
	return nil, SearchConversationsOutput{Text: FormatConversationResults(input.Query, hits)}, nil
}

// ShowConversationInput is the input schema for show_conversation.
type ShowConversationInput struct {
	Path          string `json:"path" jsonschema:"path to the conversation archive file"`
	StartExchange int    `json:"start_exchange,omitempty" jsonschema:"1-indexed first exchange to include, default unbounded"`
	EndExchange   int    `json:"end_exchange,omitempty" jsonschema:"1-indexed last exchange to include, default unbounded"`
}

// ShowConversationOutput is the output schema for show_conversation.
type ShowConversationOutput struct {
	Text string `json:"text" jsonschema:"rendered conversation text"`
}

func (s *Server) handleShowConversation(ctx context.Context, _ *mcp.CallToolRequest, input ShowConversationInput) (*mcp.CallToolResult, ShowConversationOutput, error) {
	if input.Path == "" {
		return nil, ShowConversationOutput{}, NewInvalidParamsError("path parameter is required")
	}
	text := display.Render(input.Path, display.Range{Start: input.StartExchange, End: input.EndExchange})
	return nil, ShowConversationOutput{Text: text}, nil
}
