// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gemaraproj/reqcite-mcp/internal/tool"
)

const Name = "reqcite-mcp"

// New builds an MCP server exposing the annotation tools.
func New(h *tool.Handler, version string) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil)
	mcp.AddTool(s, tool.MetadataExtractAnnotations, h.ExtractAnnotations)
	return s
}

// ServeStdio runs s over stdin/stdout until ctx is done or the client disconnects.
func ServeStdio(ctx context.Context, s *mcp.Server, logger *slog.Logger) error {
	logger.Info("serving MCP over stdio", "server", Name)
	return s.Run(ctx, &mcp.StdioTransport{})
}
