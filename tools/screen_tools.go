package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"
)

func (s *Server) registerScreenTools() {
	s.mcp.AddTool(
		mcp.NewTool("screen_on",
			mcp.WithDescription("Turn the device screen on. Safe to call when the screen is already on."),
			mcp.WithString("device_id",
				mcp.Description("Optional device serial. Defaults to the first available device."),
			),
		),
		s.handleScreenOn,
	)

	s.mcp.AddTool(
		mcp.NewTool("screen_off",
			mcp.WithDescription("Turn the device screen off, putting it in sleep mode"),
			mcp.WithString("device_id",
				mcp.Description("Optional device serial. Defaults to the first available device."),
			),
		),
		s.handleScreenOff,
	)

	s.mcp.AddTool(
		mcp.NewTool("unlock_screen",
			mcp.WithDescription("Unlock the device screen. Wakes the device first if asleep and performs the default unlock gesture. Does not handle PIN, pattern or biometric locks."),
			mcp.WithString("device_id",
				mcp.Description("Optional device serial. Defaults to the first available device."),
			),
		),
		s.handleUnlockScreen,
	)

	s.mcp.AddTool(
		mcp.NewTool("wait_for_screen_on",
			mcp.WithDescription("Wait until the device screen is turned on, polling once per second up to the timeout"),
			mcp.WithString("device_id",
				mcp.Required(),
				mcp.Description("Device serial to watch"),
			),
			mcp.WithNumber("timeout",
				mcp.DefaultNumber(30),
				mcp.Description("Maximum seconds to wait for the screen to turn on"),
			),
		),
		s.handleWaitForScreenOn,
	)
}

func (s *Server) handleScreenOn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("screen_on: connect failed")
		return boolResult(false), nil
	}
	if err := sess.WakeUp(ctx); err != nil {
		log.Error().Err(err).Msg("screen_on failed")
		return boolResult(false), nil
	}
	return boolResult(true), nil
}

func (s *Server) handleScreenOff(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("screen_off: connect failed")
		return boolResult(false), nil
	}
	if err := sess.Sleep(ctx); err != nil {
		log.Error().Err(err).Msg("screen_off failed")
		return boolResult(false), nil
	}
	return boolResult(true), nil
}

func (s *Server) handleUnlockScreen(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("unlock_screen: connect failed")
		return boolResult(false), nil
	}
	if err := sess.Unlock(ctx); err != nil {
		log.Error().Err(err).Msg("unlock_screen failed")
		return boolResult(false), nil
	}
	return boolResult(true), nil
}

func (s *Server) handleWaitForScreenOn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deviceID, err := req.RequireString("device_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeout := seconds(req.GetFloat("timeout", 30))

	sess, err := s.connect(ctx, deviceID)
	if err != nil {
		return mcp.NewToolResultError("wait_for_screen_on: " + err.Error()), nil
	}

	deadline := time.Now().Add(timeout)
	for {
		on, err := sess.ScreenOn(ctx)
		if err != nil {
			return mcp.NewToolResultError("wait_for_screen_on: " + err.Error()), nil
		}
		if on {
			return mcp.NewToolResultText("Screen is now on"), nil
		}
		if time.Now().After(deadline) {
			return mcp.NewToolResultError("timed out waiting for screen to turn on"), nil
		}
		select {
		case <-ctx.Done():
			return mcp.NewToolResultError("wait_for_screen_on: " + ctx.Err().Error()), nil
		case <-time.After(time.Second):
		}
	}
}
