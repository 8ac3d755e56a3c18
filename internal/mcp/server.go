package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Periodix", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Periodix training periodization server. Read weekly per-muscle-group volume, volume history and the active program's planned volume, classified against MEV/MAV/MRV landmarks. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetCurrentWeekVolume, Handler: h.getCurrentWeekVolume},
		server.ServerTool{Tool: toolGetVolumeHistory, Handler: h.getVolumeHistory},
		server.ServerTool{Tool: toolGetProgramVolumeAnalysis, Handler: h.getProgramVolumeAnalysis},
		server.ServerTool{Tool: toolGetActiveProgram, Handler: h.getActiveProgram},
	)

	s.AddResources(
		server.ServerResource{Resource: resVolumeLandmarks, Handler: h.volumeLandmarks},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resVolumeLandmarks = mcp.NewResource(
	"periodix://volume_landmarks",
	"Volume Landmarks",
	mcp.WithResourceDescription("MEV/MAV/MRV weekly set thresholds per muscle group"),
	mcp.WithMIMEType("application/json"),
)
