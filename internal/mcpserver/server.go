// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the migration tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/arczen/internal/api"
)

// Server wraps the MCP server with migration tools.
type Server struct {
	mcp *server.MCPServer
	svc api.Service
}

// New creates a new MCP server with all migration tools registered.
func New(svc api.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"ArcZen",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("extract_sidebar",
		mcp.WithDescription("Extract the Arc sidebar document into its ordered space trees. "+
			"Returns every space with its folders and pinned tabs, plus the items "+
			"that had to be skipped and why."),
	), s.extractSidebar)

	s.mcp.AddTool(mcp.NewTool("plan_import",
		mcp.WithDescription("Run the import pipeline in dry-run mode against the Zen profile. "+
			"Returns the exact write set a real import would produce without touching the database."),
	), s.planImport)

	s.mcp.AddTool(mcp.NewTool("list_workspaces",
		mcp.WithDescription("List the workspaces currently in the Zen profile, flagging "+
			"the ones created by a previous import."),
	), s.listWorkspaces)

	s.mcp.AddTool(mcp.NewTool("consolidate_workspaces",
		mcp.WithDescription("Re-point imported pins from temporary workspace uuids to final ones "+
			"and remove the temporary workspaces. The mapping MUST follow the format described "+
			"by the get_mapping_contract tool or the arczen://mapping-format resource."),
		mcp.WithString("mapping", mcp.Required(),
			mcp.Description(`JSON object of temporary workspace uuid to final workspace uuid, e.g. {"{temp-uuid}":"{final-uuid}"}`)),
	), s.consolidateWorkspaces)

	s.mcp.AddTool(mcp.NewTool("get_mapping_contract",
		mcp.WithDescription("Returns the canonical consolidation mapping format. "+
			"Call this before consolidate_workspaces to ensure correct structure."),
	), s.getMappingContract)

	// Resource: consolidation mapping contract.
	s.mcp.AddResource(
		mcp.NewResource("arczen://mapping-format", "Consolidation Mapping Contract",
			mcp.WithResourceDescription("Canonical workspace consolidation mapping format."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMappingFormatResource,
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

func (s *Server) extractSidebar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spaces, skipped, err := s.svc.Preview(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(api.PreviewResponse{Spaces: spaces, Skipped: skipped}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) planImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plan, err := s.svc.Plan(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(plan, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listWorkspaces(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspaces, err := s.svc.Workspaces(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(workspaces, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) consolidateWorkspaces(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("mapping")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var mapping map[string]string
	if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
		return mcp.NewToolResultError("mapping is not a JSON object of strings: " + err.Error()), nil
	}
	if len(mapping) == 0 {
		return mcp.NewToolResultError("mapping is empty"), nil
	}

	result, err := s.svc.Consolidate(ctx, mapping)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getMappingContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MappingFormatContract), nil
}

func (s *Server) readMappingFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "arczen://mapping-format",
			MIMEType: "text/markdown",
			Text:     MappingFormatContract,
		},
	}, nil
}
