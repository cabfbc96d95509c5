package tools

import (
	"context"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/quietroot/droid-mcp/droid"
	"github.com/quietroot/droid-mcp/utils"
)

// jsonResult renders a structured response payload as indented JSON text.
func jsonResult(v any) *mcp.CallToolResult {
	return mcp.NewToolResultText(utils.JsonIndent(v))
}

// boolResult renders the plain success indicator used by gesture and
// app-control tools.
func boolResult(ok bool) *mcp.CallToolResult {
	return mcp.NewToolResultText(strconv.FormatBool(ok))
}

// session opens the per-call automation session, honoring the optional
// device_id argument.
func (s *Server) session(ctx context.Context, req mcp.CallToolRequest) (droid.Session, error) {
	return s.connect(ctx, req.GetString("device_id", ""))
}

// seconds converts a float seconds argument to a duration.
func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
