package mcp

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2beens/trainlog/internal/activities"
	"github.com/2beens/trainlog/internal/stats"
)

// NewServer builds an MCP server with the training log tools: weekly stats, summary,
// activities and the current week chart.
// Used by the service when mounting MCP at /mcp, and by cmd/logbook_mcp over stdio.
func NewServer(repo *activities.Repo, analyzer *stats.Analyzer) *mcp.Server {
	h := NewHandler(NewContextService(repo, analyzer))
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "trainlog-context",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_weekly_stats",
		Description: "Returns weekly training buckets, newest first: totals (minutes, distance), per sport (swim, bike, run with avg pace in min per km, other), per intensity I1-I7 and the easy/moderate/hard running split. Arg: weeks (default 4). Use when asked how training went over the last weeks.",
	}, h.GetWeeklyStatsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_training_summary",
		Description: "Returns the all-time training summary: total time, session counts (active, recovery), alternative training time, competition distance, per intensity totals and the specific vs general training split in percent.",
	}, h.GetTrainingSummaryTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_activities",
		Description: "Returns logged activities. Optional filters: from_date, to_date (YYYY-MM-DD, inclusive) and type (swim, bike, run, recovery, strength, alternative, competition, other).",
	}, h.GetActivitiesTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_week_chart",
		Description: "Returns per-day distances (running, swimming, biking, total) for the current week, Sunday to Saturday, with day labels.",
	}, h.GetWeekChartTool())

	return s
}

// NewHTTPHandler serves the given MCP server over streamable HTTP.
func NewHTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}
