package mcp

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/denysvitali/audio-renamer/pkg/config"
	"github.com/denysvitali/audio-renamer/pkg/renamer"
)

// Server exposes plan and rename as MCP tools
type Server struct {
	logger    *logrus.Logger
	defaults  config.RenameConfig
	fs        afero.Fs
	mu        sync.Mutex
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server using the mcp-go library
func NewServer(logger *logrus.Logger, defaults config.RenameConfig) *Server {
	mcpServer := server.NewMCPServer(
		"audio-renamer",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		logger:    logger,
		defaults:  defaults,
		fs:        afero.NewOsFs(),
		mcpServer: mcpServer,
	}
	s.registerTools()

	return s
}

// ServeStdio serves the tools over stdin/stdout until the input closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func renameArgs(verb string) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("folder",
			mcp.Description("Folder holding the files "+verb),
		),
		mcp.WithString("extension",
			mcp.Description("Suffix filter, e.g. .wav"),
		),
		mcp.WithString("prefix",
			mcp.Description("Prefix of the generated names"),
		),
		mcp.WithString("order",
			mcp.Description("listing or name"),
			mcp.Enum(string(renamer.OrderListing), string(renamer.OrderName)),
		),
	}
}

func (s *Server) registerTools() {
	planTool := mcp.NewTool("plan_rename",
		append([]mcp.ToolOption{
			mcp.WithDescription("Show how the matching files of a folder would be numbered, without renaming anything"),
		}, renameArgs("to plan")...)...,
	)
	s.mcpServer.AddTool(planTool, s.handlePlan)

	renameTool := mcp.NewTool("rename_files",
		append([]mcp.ToolOption{
			mcp.WithDescription("Rename the matching files of a folder to <prefix><n><extension>"),
		}, renameArgs("to rename")...)...,
	)
	s.mcpServer.AddTool(renameTool, s.handleRename)
}

type toolArgs struct {
	folder, extension, prefix string
	order                     renamer.Order
}

func (s *Server) parseArgs(request mcp.CallToolRequest) (toolArgs, error) {
	order, err := renamer.ParseOrder(request.GetString("order", s.defaults.Order))
	if err != nil {
		return toolArgs{}, err
	}
	return toolArgs{
		folder:    request.GetString("folder", s.defaults.Folder),
		extension: request.GetString("extension", s.defaults.Extension),
		prefix:    request.GetString("prefix", s.defaults.Prefix),
		order:     order,
	}, nil
}

func (s *Server) newRenamer(order renamer.Order, out *bytes.Buffer) *renamer.Renamer {
	return renamer.New(s.logger,
		renamer.WithFs(s.fs),
		renamer.WithOrder(order),
		renamer.WithPreflight(s.defaults.Preflight),
		renamer.WithOutput(out),
	)
}

// handlePlan handles plan_rename tool calls
func (s *Server) handlePlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := s.parseArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var out bytes.Buffer
	s.mu.Lock()
	plan, err := s.newRenamer(args.order, &out).BuildPlan(ctx, args.folder, args.extension, args.prefix)
	s.mu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to plan: %v", err)), nil
	}

	plan.Log(&out)
	for _, c := range plan.Conflicts() {
		fmt.Fprintf(&out, "conflict: %s -> %s: %s\n", c.Step.From, c.Step.To, c.Reason)
	}
	return mcp.NewToolResultText(out.String()), nil
}

// handleRename handles rename_files tool calls
func (s *Server) handleRename(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := s.parseArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var out bytes.Buffer
	s.mu.Lock()
	result, err := s.newRenamer(args.order, &out).Rename(ctx, args.folder, args.extension, args.prefix)
	s.mu.Unlock()
	if err != nil {
		s.logger.Warnf("rename_files in %s failed after %d file(s): %v", args.folder, len(result.Applied), err)
		return mcp.NewToolResultError(out.String() + fmt.Sprintf("rename failed: %v", err)), nil
	}

	fmt.Fprintf(&out, "Renamed %d file(s) in %s\n", len(result.Applied), args.folder)
	return mcp.NewToolResultText(out.String()), nil
}
