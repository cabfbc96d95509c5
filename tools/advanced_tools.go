package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"
)

// toastBudget is the fixed wait for the most recent transient notification.
const toastBudget = 10 * time.Second

func (s *Server) registerAdvancedTools() {
	s.mcp.AddTool(
		mcp.NewTool("get_toast",
			mcp.WithDescription("Retrieve the text of the last toast message displayed on the device, waiting up to 10 seconds"),
			mcp.WithString("device_id",
				mcp.Description("Optional device serial. Defaults to the first available device."),
			),
		),
		s.handleGetToast,
	)

	s.mcp.AddTool(
		mcp.NewTool("wait_activity",
			mcp.WithDescription("Wait for a specific Android activity to appear in the foreground. Useful for navigation verification."),
			mcp.WithString("activity",
				mcp.Required(),
				mcp.Description("Full activity name, or relative name starting with a dot"),
			),
			mcp.WithNumber("timeout",
				mcp.DefaultNumber(10),
				mcp.Description("Maximum seconds to wait"),
			),
			mcp.WithString("device_id",
				mcp.Description("Optional device serial. Defaults to the first available device."),
			),
		),
		s.handleWaitActivity,
	)
}

func (s *Server) handleGetToast(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("get_toast: connect failed")
		return mcp.NewToolResultText(""), nil
	}

	text, err := sess.Toast(ctx, toastBudget)
	if err != nil {
		log.Error().Err(err).Msg("get_toast failed")
		return mcp.NewToolResultText(""), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleWaitActivity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	activity, err := req.RequireString("activity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeout := seconds(req.GetFloat("timeout", 10))

	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("activity", activity).Msg("wait_activity: connect failed")
		return boolResult(false), nil
	}

	ok, err := sess.WaitActivity(ctx, activity, timeout)
	if err != nil {
		log.Error().Err(err).Str("activity", activity).Msg("wait_activity failed")
		return boolResult(false), nil
	}
	return boolResult(ok), nil
}
