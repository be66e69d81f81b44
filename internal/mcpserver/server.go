// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Lectio tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lectio/lectio/internal/apperr"
	"github.com/lectio/lectio/internal/service"
)

// Server wraps the MCP server with Lectio tools.
type Server struct {
	mcp *server.MCPServer
	svc *service.Service
}

// New creates a new MCP server with all Lectio tools registered.
func New(svc *service.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Lectio",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_learning_note",
		mcp.WithDescription("Fetch the stored learning note (Markdown plus per-page summaries) for an uploaded document."),
		mcp.WithString("fileId", mcp.Required(), mcp.Description("File id returned by the upload endpoint")),
	), s.getLearningNote)

	s.mcp.AddTool(mcp.NewTool("generate_learning_note",
		mcp.WithDescription("Generate the learning note for an uploaded document. "+
			"Returns the cached note when one already exists unless force is set."),
		mcp.WithString("fileId", mcp.Required(), mcp.Description("File id returned by the upload endpoint")),
		mcp.WithNumber("windowSize", mcp.Description("Pages merged per window, 1-7 (default 3)")),
		mcp.WithBoolean("force", mcp.Description("Regenerate even if a note already exists")),
	), s.generateLearningNote)

	s.mcp.AddTool(mcp.NewTool("generate_quiz",
		mcp.WithDescription("Generate a multiple-choice quiz from freeform study text."),
		mcp.WithString("sourceText", mcp.Required(), mcp.Description("Study text to question, at least 50 characters")),
		mcp.WithNumber("numQuestions", mcp.Description("Number of questions, 1-20 (default 5)")),
		mcp.WithString("difficulty", mcp.Description("Difficulty hint passed to the model (default \"normal\")")),
	), s.generateQuiz)

	s.mcp.AddTool(mcp.NewTool("list_quizzes",
		mcp.WithDescription("List stored quizzes, newest first."),
		mcp.WithNumber("limit", mcp.Description("Page size (default 20)")),
	), s.listQuizzes)

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

func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func (s *Server) getLearningNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fileID, err := req.RequireString("fileId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.GetLearningNote(ctx, fileID)
	if err != nil {
		return toolError(err), nil
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) generateLearningNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fileID, err := req.RequireString("fileId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	windowSize := req.GetInt("windowSize", 3)
	if windowSize < 1 || windowSize > 7 {
		return mcp.NewToolResultError(fmt.Sprintf("windowSize %d out of range 1-7", windowSize)), nil
	}
	force := req.GetBool("force", false)

	note, err := s.svc.GenerateLearningNote(ctx, fileID, windowSize, force)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(note.Markdown), nil
}

func (s *Server) generateQuiz(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceText, err := req.RequireString("sourceText")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	numQuestions := req.GetInt("numQuestions", 5)
	if numQuestions < 1 || numQuestions > 20 {
		return mcp.NewToolResultError(fmt.Sprintf("numQuestions %d out of range 1-20", numQuestions)), nil
	}
	difficulty := req.GetString("difficulty", "normal")

	quiz, err := s.svc.GenerateQuizFromText(ctx, sourceText, numQuestions, difficulty)
	if err != nil {
		return toolError(err), nil
	}
	out, _ := json.MarshalIndent(quiz, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listQuizzes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)

	quizzes, total, err := s.svc.ListQuizzes(ctx, limit, 0)
	if err != nil {
		return toolError(err), nil
	}
	out, _ := json.MarshalIndent(map[string]any{
		"quizzes": quizzes,
		"total":   total,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
