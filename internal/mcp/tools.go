package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/periodix/internal/models"
)

// --- Tool definitions ---

var toolGetCurrentWeekVolume = mcp.NewTool("get_current_week_volume",
	mcp.WithDescription("Completed vs planned sets per muscle group for the current ISO week (Monday to Sunday), with remaining sets, completion percentage and the MEV/MAV/MRV zone."),
)

var toolGetVolumeHistory = mcp.NewTool("get_volume_history",
	mcp.WithDescription("Completed sets per muscle group per ISO week over a trailing window. Weeks without training are omitted."),
	mcp.WithNumber("weeks", mcp.Description("Window length in weeks (1-52). Defaults to 8.")),
	mcp.WithString("muscle_group", mcp.Description("Only report this muscle group (e.g. chest, back_lats, quads)")),
)

var toolGetProgramVolumeAnalysis = mcp.NewTool("get_program_volume_analysis",
	mcp.WithDescription("Planned weekly sets per muscle group of the active program, classified against the landmarks with warnings for groups below MEV or above MRV."),
)

var toolGetActiveProgram = mcp.NewTool("get_active_program",
	mcp.WithDescription("The active training program: mesocycle phase and week, days, and each day's exercises with target sets, rep range and RIR."),
)

// --- Tool handlers ---

func jsonResult(v any) *mcp.CallToolResult {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed")
	}
	return result
}

func (h *handlers) failed(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, models.ErrInvalidArgument) {
		return mcp.NewToolResultError(err.Error())
	}
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error())
}

func (h *handlers) getCurrentWeekVolume(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, err := h.ds.CurrentWeekVolume(ctx, UserIDFromContext(ctx))
	if err != nil {
		return h.failed("get_current_week_volume", err), nil
	}
	return jsonResult(v), nil
}

func (h *handlers) getVolumeHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weeks := req.GetInt("weeks", 0)
	group := req.GetString("muscle_group", "")

	hist, err := h.ds.VolumeHistory(ctx, UserIDFromContext(ctx), weeks, group)
	if err != nil {
		return h.failed("get_volume_history", err), nil
	}
	return jsonResult(hist), nil
}

func (h *handlers) getProgramVolumeAnalysis(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := h.ds.ProgramVolume(ctx, UserIDFromContext(ctx))
	if err != nil {
		return h.failed("get_program_volume_analysis", err), nil
	}
	if a == nil {
		return mcp.NewToolResultText("No active program."), nil
	}
	return jsonResult(a), nil
}

func (h *handlers) getActiveProgram(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.ds.ActiveProgram(ctx, UserIDFromContext(ctx))
	if errors.Is(err, models.ErrNotFound) {
		return mcp.NewToolResultText("No active program."), nil
	}
	if err != nil {
		return h.failed("get_active_program", err), nil
	}
	return jsonResult(p), nil
}
