package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"

	"github.com/quietroot/droid-mcp/droid/definitions"
)

const appWaitBudget = 20 // seconds the library waits for a launched app to foreground

type appListResult struct {
	Success  bool     `json:"success"`
	Apps     []string `json:"apps"`
	Count    int      `json:"count"`
	Error    string   `json:"error"`
	DeviceID string   `json:"device_id"`
}

type currentAppResult struct {
	Success  bool                 `json:"success"`
	App      *definitions.AppInfo `json:"app,omitempty"`
	Error    string               `json:"error"`
	DeviceID string               `json:"device_id"`
}

func (s *Server) registerAppTools() {
	s.mcp.AddTool(
		mcp.NewTool("get_installed_apps",
			mcp.WithDescription("Get a complete list of all installed applications on the device, both system and user-installed. Returns package names and a count."),
			mcp.WithString("device_id",
				mcp.Description("Optional device serial. Defaults to the first available device."),
			),
		),
		s.handleInstalledApps,
	)

	s.mcp.AddTool(
		mcp.NewTool("get_current_app",
			mcp.WithDescription("Get the currently active/foreground application including package name and activity"),
			mcp.WithString("device_id",
				mcp.Description("Optional device serial. Defaults to the first available device."),
			),
		),
		s.handleCurrentApp,
	)

	s.mcp.AddTool(
		mcp.NewTool("start_app",
			mcp.WithDescription("Launch an Android application by its package name with optional wait for the app to appear in foreground"),
			mcp.WithString("package_name",
				mcp.Required(),
				mcp.Description("Package name of the application to start (e.g. com.example.app)"),
			),
			mcp.WithBoolean("wait",
				mcp.DefaultBool(true),
				mcp.Description("Wait for the app to come to the foreground"),
			),
			mcp.WithString("device_id",
				mcp.Description("Optional device serial. Defaults to the first available device."),
			),
		),
		s.handleStartApp,
	)

	s.mcp.AddTool(
		mcp.NewTool("stop_app",
			mcp.WithDescription("Force stop an Android application by its package name"),
			mcp.WithString("package_name",
				mcp.Required(),
				mcp.Description("Package name of the application to stop"),
			),
			mcp.WithString("device_id",
				mcp.Description("Optional device serial. Defaults to the first available device."),
			),
		),
		s.handleStopApp,
	)

	s.mcp.AddTool(
		mcp.NewTool("stop_all_apps",
			mcp.WithDescription("Force stop all running third-party applications on the device"),
			mcp.WithString("device_id",
				mcp.Description("Optional device serial. Defaults to the first available device."),
			),
		),
		s.handleStopAllApps,
	)

	s.mcp.AddTool(
		mcp.NewTool("clear_app_data",
			mcp.WithDescription("Clear all data and cache for a specific app, resetting it to its initial state. This action is irreversible."),
			mcp.WithString("package_name",
				mcp.Required(),
				mcp.Description("Package name of the application to clear"),
			),
			mcp.WithString("device_id",
				mcp.Description("Optional device serial. Defaults to the first available device."),
			),
		),
		s.handleClearAppData,
	)
}

func (s *Server) handleInstalledApps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deviceID := req.GetString("device_id", "")
	res := appListResult{Apps: []string{}, DeviceID: deviceID}

	if err := s.bridge.Available(); err != nil {
		res.Error = "ADB is not available in PATH"
		return jsonResult(res), nil
	}

	sess, err := s.connect(ctx, deviceID)
	if err != nil {
		res.Error = "Failed to get installed apps: " + err.Error()
		return jsonResult(res), nil
	}

	apps, err := sess.AppList(ctx)
	if err != nil {
		res.Error = "Failed to get installed apps: " + err.Error()
		return jsonResult(res), nil
	}

	res.Success = true
	res.Apps = apps
	res.Count = len(apps)
	res.DeviceID = sess.Serial()
	return jsonResult(res), nil
}

func (s *Server) handleCurrentApp(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deviceID := req.GetString("device_id", "")
	res := currentAppResult{DeviceID: deviceID}

	sess, err := s.connect(ctx, deviceID)
	if err != nil {
		res.Error = "Failed to get current app: " + err.Error()
		return jsonResult(res), nil
	}

	app, err := sess.CurrentApp(ctx)
	if err != nil {
		res.Error = "Failed to get current app: " + err.Error()
		return jsonResult(res), nil
	}

	res.Success = true
	res.App = app
	res.DeviceID = sess.Serial()
	return jsonResult(res), nil
}

func (s *Server) handleStartApp(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pkg, err := req.RequireString("package_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	wait := req.GetBool("wait", true)

	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("package", pkg).Msg("start_app: connect failed")
		return boolResult(false), nil
	}

	if err := sess.AppStart(ctx, pkg); err != nil {
		log.Error().Err(err).Str("package", pkg).Msg("start_app: launch failed")
		return boolResult(false), nil
	}

	if wait {
		ok, err := sess.AppWait(ctx, pkg, seconds(appWaitBudget))
		if err != nil {
			log.Error().Err(err).Str("package", pkg).Msg("start_app: wait failed")
			return boolResult(false), nil
		}
		return boolResult(ok), nil
	}
	return boolResult(true), nil
}

func (s *Server) handleStopApp(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pkg, err := req.RequireString("package_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("package", pkg).Msg("stop_app: connect failed")
		return boolResult(false), nil
	}

	if err := sess.AppStop(ctx, pkg); err != nil {
		log.Error().Err(err).Str("package", pkg).Msg("stop_app: force-stop failed")
		return boolResult(false), nil
	}
	return boolResult(true), nil
}

func (s *Server) handleStopAllApps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("stop_all_apps: connect failed")
		return boolResult(false), nil
	}

	if err := sess.AppStopAll(ctx); err != nil {
		log.Error().Err(err).Msg("stop_all_apps failed")
		return boolResult(false), nil
	}
	return boolResult(true), nil
}

func (s *Server) handleClearAppData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pkg, err := req.RequireString("package_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("package", pkg).Msg("clear_app_data: connect failed")
		return boolResult(false), nil
	}

	if err := sess.AppClear(ctx, pkg); err != nil {
		log.Error().Err(err).Str("package", pkg).Msg("clear_app_data failed")
		return boolResult(false), nil
	}
	return boolResult(true), nil
}
