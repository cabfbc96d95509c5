// Package tools exposes Android automation primitives as MCP tools, grouped
// by topic: device, app management, screen control, input, inspection and
// advanced. Every tool is a stateless wrapper: open a session to a device,
// issue one call, translate the outcome into a structured response.
package tools

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/valyala/fasttemplate"

	"github.com/quietroot/droid-mcp/droid"
)

const (
	ServerName    = "Android Device Operator"
	ServerVersion = "1.0.0"
)

const instructionsTemplate = `You are an expert Android device automation specialist, served by {{name}} v{{version}}.

All tools automatically validate device connections and handle device_id intelligently.
If no device_id is specified, tools connect to the first available device.

Recommended workflows:
- Device setup: get_device_status, connect_device, unlock_screen + screen_on
- App management: get_installed_apps, start_app, get_current_app
- UI automation: wait_for_element, click/long_click, send_text, swipe/drag
- Debugging: dump_hierarchy, screenshot, get_element_info, get_toast

When tools return structured responses, present the information in an organized, readable way.`

// Server wraps the MCP server with the device automation tool surface.
type Server struct {
	mcp     *server.MCPServer
	bridge  droid.Bridge
	connect droid.ConnectFunc
}

// NewServer builds the MCP server and registers all six tool groups.
func NewServer(bridge droid.Bridge, connect droid.ConnectFunc) *Server {
	s := &Server{
		bridge:  bridge,
		connect: connect,
	}

	s.mcp = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(renderInstructions()),
	)

	s.registerDeviceTools()
	s.registerAppTools()
	s.registerScreenTools()
	s.registerInputTools()
	s.registerInspectionTools()
	s.registerAdvancedTools()

	return s
}

func renderInstructions() string {
	t := fasttemplate.New(instructionsTemplate, "{{", "}}")
	return t.ExecuteString(map[string]any{
		"name":    ServerName,
		"version": ServerVersion,
	})
}

// ServeStdio serves over standard streams; stdout belongs to the transport,
// all logging goes to stderr.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// ServeHTTP serves the streamable HTTP transport on the given address.
func (s *Server) ServeHTTP(addr string) error {
	return server.NewStreamableHTTPServer(s.mcp).Start(addr)
}
