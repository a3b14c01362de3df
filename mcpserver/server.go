// Package mcpserver exposes the backend's document tools over the Model
// Context Protocol so external agents can search lectures, read content
// and start slide generation.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"edubot/capabilities/resources"
	"edubot/generation"
	"edubot/store"
)

// toolSearchLimit caps result counts handed to external agents.
const toolSearchLimit = 5

// Server wraps an MCP server over the store, the generation pipeline and
// the external reference-material client
type Server struct {
	mcp       *server.MCPServer
	store     *store.Store
	pipeline  *generation.Pipeline
	resources *resources.Client
}

// New creates the MCP tool server
func New(st *store.Store, pipeline *generation.Pipeline, res *resources.Client) *Server {
	s := &Server{
		mcp:       server.NewMCPServer("edubot", "1.0.0"),
		store:     st,
		pipeline:  pipeline,
		resources: res,
	}
	s.registerTools()
	return s
}

// ServeStdio blocks serving MCP over stdin/stdout
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("search_lectures",
			mcp.WithDescription("Search stored lectures by title, subject or description"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
			mcp.WithString("user_id", mcp.Description("Restrict results to one user")),
		),
		s.handleSearchLectures,
	)

	s.mcp.AddTool(
		mcp.NewTool("search_slides",
			mcp.WithDescription("Search stored slide decks by title, subject or description"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
			mcp.WithString("user_id", mcp.Description("Restrict results to one user")),
		),
		s.handleSearchSlides,
	)

	s.mcp.AddTool(
		mcp.NewTool("get_lecture_content",
			mcp.WithDescription("Fetch a lecture's full content by id"),
			mcp.WithString("lecture_id", mcp.Required(), mcp.Description("Lecture id")),
		),
		s.handleGetLecture,
	)

	s.mcp.AddTool(
		mcp.NewTool("get_chat_history",
			mcp.WithDescription("Fetch a chat session's messages, oldest first"),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of messages")),
		),
		s.handleGetHistory,
	)

	s.mcp.AddTool(
		mcp.NewTool("create_slide_draft",
			mcp.WithDescription("Create a slide deck and generate its content"),
			mcp.WithString("title", mcp.Required(), mcp.Description("Deck title")),
			mcp.WithString("subject", mcp.Required(), mcp.Description("Subject")),
			mcp.WithString("requirements", mcp.Required(), mcp.Description("Content requirements")),
			mcp.WithString("presentation_type", mcp.Description("lecture, workshop, seminar or conference")),
			mcp.WithNumber("duration", mcp.Description("Duration in minutes")),
			mcp.WithString("user_id", mcp.Description("Owning user")),
		),
		s.handleCreateSlideDraft,
	)

	s.mcp.AddTool(
		mcp.NewTool("search_web",
			mcp.WithDescription("Search the web for teaching reference material"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
		),
		s.handleSearchWeb,
	)

	s.mcp.AddTool(
		mcp.NewTool("wikipedia_summary",
			mcp.WithDescription("Fetch a Wikipedia summary for a topic"),
			mcp.WithString("topic", mcp.Required(), mcp.Description("Topic to look up")),
		),
		s.handleWikipedia,
	)

	s.mcp.AddTool(
		mcp.NewTool("translate",
			mcp.WithDescription("Translate teaching material between languages"),
			mcp.WithString("text", mcp.Required(), mcp.Description("Text to translate")),
			mcp.WithString("source_lang", mcp.Description("Source language code, auto-detected when empty")),
			mcp.WithString("target_lang", mcp.Required(), mcp.Description("Target language code")),
		),
		s.handleTranslate,
	)

	s.mcp.AddTool(
		mcp.NewTool("fact_check",
			mcp.WithDescription("Fact-check generated teaching content against a topic"),
			mcp.WithString("content", mcp.Required(), mcp.Description("Content to check")),
			mcp.WithString("topic", mcp.Required(), mcp.Description("Topic the content covers")),
		),
		s.handleFactCheck,
	)
}

func (s *Server) handleSearchLectures(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	lectures, err := s.store.SearchLectures(query, req.GetString("user_id", ""), toolSearchLimit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return jsonResult(map[string]any{"lectures": lectures, "count": len(lectures)})
}

func (s *Server) handleSearchSlides(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	decks, err := s.store.SearchSlideDecks(query, req.GetString("user_id", ""), toolSearchLimit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return jsonResult(map[string]any{"slides": decks, "count": len(decks)})
}

func (s *Server) handleGetLecture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("lecture_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	lecture, err := s.store.GetLecture(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lecture not found: %v", err)), nil
	}
	return jsonResult(lecture)
}

func (s *Server) handleGetHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	messages, err := s.store.History(sessionID, req.GetInt("limit", 50))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history fetch failed: %v", err)), nil
	}
	return jsonResult(map[string]any{"messages": messages, "count": len(messages)})
}

func (s *Server) handleCreateSlideDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	subject, err := req.RequireString("subject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	requirements, err := req.RequireString("requirements")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	deckID, err := s.pipeline.CreateSlideDeck(ctx, generation.Request{
		Kind:             generation.KindSlide,
		Title:            title,
		Subject:          subject,
		Requirements:     requirements,
		PresentationType: req.GetString("presentation_type", ""),
		Duration:         req.GetInt("duration", 0),
		UserID:           req.GetString("user_id", ""),
	})
	if err != nil {
		// The deck id still points at the errored artifact.
		return jsonResult(map[string]any{"slide_id": deckID, "status": "error"})
	}
	return jsonResult(map[string]any{"slide_id": deckID, "status": "success"})
}

func (s *Server) handleSearchWeb(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.resources.SearchWeb(ctx, query))
}

func (s *Server) handleWikipedia(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := req.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.resources.Wikipedia(ctx, topic))
}

func (s *Server) handleTranslate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targetLang, err := req.RequireString("target_lang")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.resources.Translate(ctx, text, req.GetString("source_lang", "auto"), targetLang))
}

func (s *Server) handleFactCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	topic, err := req.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.resources.FactCheck(ctx, content, topic))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
