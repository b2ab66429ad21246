package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/duynguyendang/geoqa/pkg/service"
	"github.com/duynguyendang/geoqa/pkg/vocab"
)

// SchemaURI is the resource describing the ontology relations.
const SchemaURI = "geoqa://schema"

// MCPServer exposes the question answering service over MCP.
type MCPServer struct {
	qa *service.QAService
}

// NewServer registers the geoqa resources and tools.
func NewServer(qa *service.QAService, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"GeoQA",
		version,
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
	)
	ms := &MCPServer{qa: qa}

	// --- Resources ---

	s.AddResource(
		mcp.NewResource(
			SchemaURI,
			"Ontology Schema",
			mcp.WithResourceDescription("Relations of the country ontology"),
			mcp.WithMIMEType("application/yaml"),
		),
		ms.handleSchema,
	)

	// --- Tools ---

	s.AddTool(
		mcp.NewTool(
			"ask_question",
			mcp.WithDescription("Answer a factual question about a country, e.g. \"What is the capital of France?\" or \"Who is Emmanuel Macron?\"."),
			mcp.WithString("question", mcp.Required(), mcp.Description("The question in English")),
		),
		ms.handleAskQuestion,
	)

	s.AddTool(
		mcp.NewTool(
			"country_stats",
			mcp.WithDescription("Count countries, office holders, republics and monarchies in the ontology."),
		),
		ms.handleCountryStats,
	)

	s.AddTool(
		mcp.NewTool(
			"list_countries",
			mcp.WithDescription("List the countries known to the ontology."),
			mcp.WithString("contains", mcp.Description("Only names containing this text, ignoring case")),
		),
		ms.handleListCountries,
	)

	return s
}

// Run serves the MCP server on stdio.
func Run(qa *service.QAService, version string) error {
	slog.Info("Starting MCP server on Stdio")
	return server.ServeStdio(NewServer(qa, version))
}

// --- Resource Handlers ---

func (ms *MCPServer) handleSchema(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := yaml.Marshal(map[string]any{"relations": vocab.Schema})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/yaml",
			Text:     string(out),
		},
	}, nil
}

// --- Tool Handlers ---

func (ms *MCPServer) handleAskQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	question, ok := args["question"].(string)
	if !ok || strings.TrimSpace(question) == "" {
		return mcp.NewToolResultError("question argument required"), nil
	}

	answer, err := ms.qa.Ask(ctx, question)
	if service.IsFailure(err) {
		return mcp.NewToolResultError(fmt.Sprintf("failed to answer: %v", err)), nil
	}
	return jsonResult(answer)
}

func (ms *MCPServer) handleCountryStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := ms.qa.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compute stats: %v", err)), nil
	}
	return jsonResult(sum)
}

func (ms *MCPServer) handleListCountries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := ms.qa.CountryNames(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list countries: %v", err)), nil
	}

	filter, _ := request.GetArguments()["contains"].(string)
	filter = strings.ToLower(filter)
	out := make([]string, 0, len(names))
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), filter) {
			out = append(out, strings.ReplaceAll(n, "_", " "))
		}
	}
	return jsonResult(out)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}
