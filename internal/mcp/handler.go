package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2beens/trainlog/internal/activities"
	"github.com/2beens/trainlog/internal/calendar"
)

// Handler handles MCP tool requests and responses: parses input, calls the service, formats MCP result.
type Handler struct {
	service contextService
}

func NewHandler(service contextService) *Handler {
	return &Handler{
		service: service,
	}
}

// NoInput is the input of tools without arguments.
type NoInput struct{}

// WeeklyStatsInput is the input for get_weekly_stats.
type WeeklyStatsInput struct {
	Weeks             int  `json:"weeks,omitempty" jsonschema:"Number of most recent weeks to return (default 4, max 104)"`
	IncludeActivities bool `json:"include_activities,omitempty" jsonschema:"Also return the activities of each week"`
}

// GetWeeklyStatsTool returns the MCP tool handler for get_weekly_stats.
func (h *Handler) GetWeeklyStatsTool() func(context.Context, *mcp.CallToolRequest, WeeklyStatsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in WeeklyStatsInput) (*mcp.CallToolResult, any, error) {
		weeks, err := h.service.WeeklyStats(ctx, in.Weeks, in.IncludeActivities)
		if err != nil {
			return errorResult("Error fetching weekly stats: " + err.Error()), nil, nil
		}
		return jsonResult(weeks), nil, nil
	}
}

// GetTrainingSummaryTool returns the MCP tool handler for get_training_summary.
func (h *Handler) GetTrainingSummaryTool() func(context.Context, *mcp.CallToolRequest, NoInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		summary, err := h.service.TrainingSummary(ctx)
		if err != nil {
			return errorResult("Error computing summary: " + err.Error()), nil, nil
		}
		return jsonResult(summary), nil, nil
	}
}

// ActivitiesInput is the input for get_activities.
type ActivitiesInput struct {
	FromDate string `json:"from_date,omitempty" jsonschema:"Start date, inclusive (YYYY-MM-DD)"`
	ToDate   string `json:"to_date,omitempty" jsonschema:"End date, inclusive (YYYY-MM-DD)"`
	Type     string `json:"type,omitempty" jsonschema:"Filter by activity type (swim, bike, run, recovery, strength, alternative, competition, other)"`
}

// GetActivitiesTool returns the MCP tool handler for get_activities.
func (h *Handler) GetActivitiesTool() func(context.Context, *mcp.CallToolRequest, ActivitiesInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ActivitiesInput) (*mcp.CallToolResult, any, error) {
		var filter ActivitiesFilter
		if in.FromDate != "" {
			from, err := calendar.ParseDate(in.FromDate)
			if err != nil {
				return errorResult("Invalid from_date: use YYYY-MM-DD"), nil, nil
			}
			filter.From = &from
		}
		if in.ToDate != "" {
			to, err := calendar.ParseDate(in.ToDate)
			if err != nil {
				return errorResult("Invalid to_date: use YYYY-MM-DD"), nil, nil
			}
			filter.To = &to
		}
		if in.Type != "" {
			filter.Type = activities.ActivityType(in.Type)
			if !filter.Type.Valid() {
				return errorResult("Invalid type: " + in.Type), nil, nil
			}
		}

		list, err := h.service.ListActivities(ctx, filter)
		if err != nil {
			return errorResult("Error listing activities: " + err.Error()), nil, nil
		}
		return jsonResult(list), nil, nil
	}
}

// GetWeekChartTool returns the MCP tool handler for get_week_chart.
func (h *Handler) GetWeekChartTool() func(context.Context, *mcp.CallToolRequest, NoInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		chart, err := h.service.WeekChart(ctx)
		if err != nil {
			return errorResult("Error building week chart: " + err.Error()), nil, nil
		}
		return jsonResult(chart), nil, nil
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}
