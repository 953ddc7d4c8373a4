package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/jseval"
	"github.com/aretw0/jseval/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const bootstrapURI = "jseval://bootstrap"

// EvaluateArgs are the arguments of the evaluate tool.
type EvaluateArgs struct {
	Script string `json:"script"`
}

// EvaluateResult is the structured output of the evaluate tool.
type EvaluateResult struct {
	Result any `json:"result" jsonschema_description:"The JSON value the script evaluated to"`
}

// Server exposes a channel to MCP clients as tools.
type Server struct {
	channel   ports.Channel
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(ch ports.Channel) *Server {
	s := &Server{
		channel:   ch,
		mcpServer: server.NewMCPServer("jseval-mcp", strings.TrimSpace(jseval.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: evaluate
	evaluateTool := mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate a JavaScript expression and return its JSON value."),
		mcp.WithString("script", mcp.Required(), mcp.Description("JavaScript source to evaluate")),
		mcp.WithOutputSchema[EvaluateResult](),
	)
	s.mcpServer.AddTool(evaluateTool, mcp.NewStructuredToolHandler(s.handleEvaluate))

	// TOOL: call
	s.mcpServer.AddTool(mcp.NewTool("call",
		mcp.WithDescription("Call a global function of the host by its dotted name."),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Dotted function name, e.g. JSON.stringify")),
		mcp.WithString("args", mcp.Description("JSON array of arguments (optional)")),
	), s.handleCall)
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest, args EvaluateArgs) (EvaluateResult, error) {
	if strings.TrimSpace(args.Script) == "" {
		return EvaluateResult{}, errors.New("script is required")
	}

	result, err := jseval.InvokeScript[any](ctx, jseval.New(s.channel), args.Script)
	if err != nil {
		return EvaluateResult{}, fmt.Errorf("evaluate failed: %w", err)
	}
	return EvaluateResult{Result: result}, nil
}

func (s *Server) handleCall(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := request.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var args []any
	if raw := request.GetString("args", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("args must be a JSON array: %v", err)), nil
		}
	}

	result, err := s.channel.InvokeAsync(ctx, identifier, args...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("call failed: %v", err)), nil
	}
	if len(result) == 0 {
		result = json.RawMessage("null")
	}
	return mcp.NewToolResultText(string(result)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: jseval://bootstrap
	s.mcpServer.AddResource(mcp.NewResource(bootstrapURI, "Host Bootstrap Script",
		mcp.WithResourceDescription("Script that installs "+ports.EntryPoint+" in a JavaScript host"),
		mcp.WithMIMEType("text/javascript"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      bootstrapURI,
				MIMEType: "text/javascript",
				Text:     ports.Bootstrap,
			},
		}, nil
	})
}
