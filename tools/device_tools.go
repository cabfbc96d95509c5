package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"

	"github.com/quietroot/droid-mcp/droid/definitions"
)

type deviceStatus struct {
	ADBAvailable     bool                    `json:"adb_available"`
	ConnectedDevices []string                `json:"connected_devices"`
	DeviceConnected  bool                    `json:"device_connected"`
	DeviceInfo       definitions.DeviceProps `json:"device_info"`
	ScreenOn         bool                    `json:"screen_on"`
	Error            string                  `json:"error"`
	Ready            bool                    `json:"ready_for_automation"`
}

type connectResult struct {
	Success    bool                    `json:"success"`
	DeviceInfo definitions.DeviceProps `json:"device_info"`
	Error      string                  `json:"error"`
	DeviceID   string                  `json:"device_id"`
}

type adbListResult struct {
	ADBExists bool     `json:"adb_exists"`
	Devices   []string `json:"devices"`
	Error     string   `json:"error"`
}

func (s *Server) registerDeviceTools() {
	s.mcp.AddTool(
		mcp.NewTool("mcp_health",
			mcp.WithDescription("Simple health check tool to verify the MCP server is running"),
		),
		s.handleHealth,
	)

	s.mcp.AddTool(
		mcp.NewTool("get_device_status",
			mcp.WithDescription("Get complete device status including connection, ADB availability, and basic device info. Recommended first step before performing other operations."),
		),
		s.handleDeviceStatus,
	)

	s.mcp.AddTool(
		mcp.NewTool("connect_device",
			mcp.WithDescription("Connect to an Android device and return comprehensive device information. Connects to the first available device when device_id is omitted."),
			mcp.WithString("device_id",
				mcp.Description("Optional device serial. Defaults to the first available device."),
			),
		),
		s.handleConnectDevice,
	)

	s.mcp.AddTool(
		mcp.NewTool("get_device_info",
			mcp.WithDescription("Get comprehensive device information including serial, screen resolution, Android version, SDK level, battery status, WiFi IP address and current screen state"),
			mcp.WithString("device_id",
				mcp.Description("Optional device serial. Defaults to the first available device."),
			),
		),
		s.handleDeviceInfo,
	)

	s.mcp.AddTool(
		mcp.NewTool("check_adb_and_list_devices",
			mcp.WithDescription("Check if ADB is available in PATH and list all connected Android devices that are ready for automation"),
		),
		s.handleCheckADB,
	)
}

func (s *Server) handleHealth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("Hello, world! MCP Android Device Operator server is running."), nil
}

func (s *Server) handleDeviceStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := deviceStatus{ConnectedDevices: []string{}}

	if err := s.bridge.Available(); err != nil {
		status.Error = "ADB not available in PATH. Please install Android SDK platform-tools."
		return jsonResult(status), nil
	}
	status.ADBAvailable = true

	serials, err := s.bridge.ReadyDevices(ctx)
	if err != nil {
		status.Error = "Failed to check connected devices: " + err.Error()
		return jsonResult(status), nil
	}
	status.ConnectedDevices = serials

	if len(serials) == 0 {
		status.Error = "No devices connected. Please connect device and enable USB debugging."
		return jsonResult(status), nil
	}

	sess, err := s.connect(ctx, "")
	if err != nil {
		status.Error = "Device connection failed: " + err.Error()
		return jsonResult(status), nil
	}

	props, err := sess.Props(ctx)
	if err != nil {
		status.Error = "Device connection failed: " + err.Error()
		return jsonResult(status), nil
	}
	status.DeviceConnected = true
	status.DeviceInfo = *props

	screenOn, err := sess.ScreenOn(ctx)
	if err != nil {
		status.Error = "Device connection failed: " + err.Error()
		return jsonResult(status), nil
	}
	status.ScreenOn = screenOn
	status.Ready = true

	return jsonResult(status), nil
}

func (s *Server) handleConnectDevice(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deviceID := req.GetString("device_id", "")
	res := connectResult{DeviceID: deviceID}

	if err := s.bridge.Available(); err != nil {
		res.Error = "ADB is not available in PATH"
		return jsonResult(res), nil
	}

	serials, err := s.bridge.ReadyDevices(ctx)
	if err != nil {
		res.Error = "Failed to check connected devices via ADB"
		return jsonResult(res), nil
	}
	if len(serials) == 0 {
		res.Error = "No Android devices connected. Please connect a device and ensure USB debugging is enabled."
		return jsonResult(res), nil
	}

	sess, err := s.connect(ctx, deviceID)
	if err != nil {
		res.Error = "Failed to connect to device: " + err.Error()
		return jsonResult(res), nil
	}

	props, err := sess.Props(ctx)
	if err != nil {
		res.Error = "Failed to connect to device: " + err.Error()
		return jsonResult(res), nil
	}

	res.Success = true
	res.DeviceInfo = *props
	res.DeviceID = sess.Serial()
	return jsonResult(res), nil
}

func (s *Server) handleDeviceInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deviceID := req.GetString("device_id", "")
	res := connectResult{DeviceID: deviceID}

	sess, err := s.connect(ctx, deviceID)
	if err != nil {
		res.Error = "Failed to get device info: " + err.Error()
		return jsonResult(res), nil
	}

	props, err := sess.Props(ctx)
	if err != nil {
		res.Error = "Failed to get device info: " + err.Error()
		return jsonResult(res), nil
	}

	// Best-effort extras: a device without wifi still has a valid descriptor.
	if width, height, err := sess.WindowSize(ctx); err == nil {
		props.Resolution = formatResolution(width, height)
	}
	if ip, err := sess.WifiIP(ctx); err == nil {
		props.WifiIP = ip
	}
	if on, err := sess.ScreenOn(ctx); err == nil {
		props.IsScreenOn = on
	}
	if battery, err := sess.Battery(ctx); err == nil {
		return jsonResult(struct {
			Success    bool                    `json:"success"`
			DeviceInfo definitions.DeviceProps `json:"device_info"`
			Battery    definitions.BatteryInfo `json:"battery"`
			Error      string                  `json:"error"`
			DeviceID   string                  `json:"device_id"`
		}{true, *props, *battery, "", sess.Serial()}), nil
	}

	res.Success = true
	res.DeviceInfo = *props
	res.DeviceID = sess.Serial()
	return jsonResult(res), nil
}

func (s *Server) handleCheckADB(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res := adbListResult{Devices: []string{}}

	if err := s.bridge.Available(); err != nil {
		res.Error = "adb command not found in PATH"
		return jsonResult(res), nil
	}
	res.ADBExists = true

	serials, err := s.bridge.ReadyDevices(ctx)
	if err != nil {
		log.Error().Err(err).Msg("check_adb_and_list_devices: enumeration failed")
		res.Error = err.Error()
		return jsonResult(res), nil
	}
	res.Devices = serials
	return jsonResult(res), nil
}

func formatResolution(width, height int) string {
	return fmt.Sprintf("%dx%d", width, height)
}
