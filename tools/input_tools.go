package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/quietroot/droid-mcp/constants"
	"github.com/quietroot/droid-mcp/droid/definitions"
)

func (s *Server) registerInputTools() {
	s.mcp.AddTool(
		mcp.NewTool("press_key",
			mcp.WithDescription("Press a hardware or software key on the device. Common keys: home, back, menu, volume_up, volume_down, power, enter, delete"),
			mcp.WithString("key",
				mcp.Required(),
				mcp.Description("Symbolic key name to press"),
			),
			mcp.WithString("device_id",
				mcp.Description("Optional device serial. Defaults to the first available device."),
			),
		),
		s.handlePressKey,
	)

	s.mcp.AddTool(
		mcp.NewTool("click",
			append([]mcp.ToolOption{
				mcp.WithDescription("Click on a UI element identified by text, resource ID, or content description"),
			}, selectorArgs(
				mcp.WithNumber("timeout",
					mcp.DefaultNumber(10),
					mcp.Description("Maximum seconds to wait for the element to appear"),
				),
			)...)...,
		),
		s.handleClick,
	)

	s.mcp.AddTool(
		mcp.NewTool("long_click",
			append([]mcp.ToolOption{
				mcp.WithDescription("Perform a long click (press and hold) on a UI element. Useful for context menus and drag operations."),
			}, selectorArgs(
				mcp.WithNumber("duration",
					mcp.DefaultNumber(1),
					mcp.Description("Duration of the long click in seconds"),
				),
			)...)...,
		),
		s.handleLongClick,
	)

	s.mcp.AddTool(
		mcp.NewTool("swipe",
			mcp.WithDescription("Perform a swipe gesture from one coordinate to another. Useful for scrolling and paging."),
			mcp.WithNumber("start_x", mcp.Required(), mcp.Description("Starting X coordinate")),
			mcp.WithNumber("start_y", mcp.Required(), mcp.Description("Starting Y coordinate")),
			mcp.WithNumber("end_x", mcp.Required(), mcp.Description("Ending X coordinate")),
			mcp.WithNumber("end_y", mcp.Required(), mcp.Description("Ending Y coordinate")),
			mcp.WithNumber("duration",
				mcp.DefaultNumber(0.5),
				mcp.Description("Swipe duration in seconds"),
			),
			mcp.WithString("device_id",
				mcp.Description("Optional device serial. Defaults to the first available device."),
			),
		),
		s.handleSwipe,
	)

	s.mcp.AddTool(
		mcp.NewTool("drag",
			append([]mcp.ToolOption{
				mcp.WithDescription("Drag a UI element to a target location on the screen. Useful for drag-and-drop and reordering."),
			}, selectorArgs(
				mcp.WithNumber("to_x", mcp.Required(), mcp.Description("Target X coordinate")),
				mcp.WithNumber("to_y", mcp.Required(), mcp.Description("Target Y coordinate")),
			)...)...,
		),
		s.handleDrag,
	)

	s.mcp.AddTool(
		mcp.NewTool("send_text",
			mcp.WithDescription("Send text input to the currently focused UI element, optionally clearing existing content first"),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Text to send to the focused element"),
			),
			mcp.WithBoolean("clear",
				mcp.DefaultBool(true),
				mcp.Description("Clear existing text before sending"),
			),
			mcp.WithString("device_id",
				mcp.Description("Optional device serial. Defaults to the first available device."),
			),
		),
		s.handleSendText,
	)
}

// selectorArgs is the argument set shared by every selector-consuming tool.
func selectorArgs(extra ...mcp.ToolOption) []mcp.ToolOption {
	opts := []mcp.ToolOption{
		mcp.WithString("selector",
			mcp.Required(),
			mcp.Description("Value to search for (text, resource ID, or content description)"),
		),
		mcp.WithString("selector_type",
			mcp.DefaultString("text"),
			mcp.Description("One of: text, resourceId, description"),
		),
	}
	opts = append(opts, extra...)
	opts = append(opts, mcp.WithString("device_id",
		mcp.Description("Optional device serial. Defaults to the first available device."),
	))
	return opts
}

// selector parses the selector/selector_type argument pair.
func selector(req mcp.CallToolRequest) (definitions.Selector, error) {
	value, err := req.RequireString("selector")
	if err != nil {
		return definitions.Selector{}, err
	}
	return definitions.NewSelector(req.GetString("selector_type", "text"), value)
}

func (s *Server) handlePressKey(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := constants.Keycode(key); err != nil {
		log.Error().Str("key", key).Strs("known", lo.Keys(constants.KeyCodes)).Msg("press_key: unknown key")
		return boolResult(false), nil
	}

	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("press_key: connect failed")
		return boolResult(false), nil
	}
	if err := sess.PressKey(ctx, key); err != nil {
		log.Error().Err(err).Str("key", key).Msg("press_key failed")
		return boolResult(false), nil
	}
	return boolResult(true), nil
}

func (s *Server) handleClick(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := selector(req)
	if err != nil {
		log.Error().Err(err).Msg("click: bad selector")
		return boolResult(false), nil
	}
	timeout := seconds(req.GetFloat("timeout", 10))

	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("click: connect failed")
		return boolResult(false), nil
	}

	el, err := sess.WaitElement(ctx, sel, timeout)
	if err != nil {
		log.Error().Err(err).Str("selector", sel.Value).Msg("click: lookup failed")
		return boolResult(false), nil
	}
	if el == nil {
		return boolResult(false), nil
	}

	x, y := el.Bounds.Center()
	if err := sess.Tap(ctx, x, y); err != nil {
		log.Error().Err(err).Str("selector", sel.Value).Msg("click failed")
		return boolResult(false), nil
	}
	return boolResult(true), nil
}

func (s *Server) handleLongClick(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := selector(req)
	if err != nil {
		log.Error().Err(err).Msg("long_click: bad selector")
		return boolResult(false), nil
	}
	duration := seconds(req.GetFloat("duration", 1))

	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("long_click: connect failed")
		return boolResult(false), nil
	}

	el, err := sess.FindElement(ctx, sel)
	if err != nil {
		log.Error().Err(err).Str("selector", sel.Value).Msg("long_click: lookup failed")
		return boolResult(false), nil
	}
	if el == nil {
		return boolResult(false), nil
	}

	x, y := el.Bounds.Center()
	if err := sess.LongPress(ctx, x, y, duration); err != nil {
		log.Error().Err(err).Str("selector", sel.Value).Msg("long_click failed")
		return boolResult(false), nil
	}
	return boolResult(true), nil
}

func (s *Server) handleSwipe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	startX := req.GetInt("start_x", 0)
	startY := req.GetInt("start_y", 0)
	endX := req.GetInt("end_x", 0)
	endY := req.GetInt("end_y", 0)
	duration := seconds(req.GetFloat("duration", 0.5))

	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("swipe: connect failed")
		return boolResult(false), nil
	}
	if err := sess.Swipe(ctx, startX, startY, endX, endY, duration); err != nil {
		log.Error().Err(err).Msg("swipe failed")
		return boolResult(false), nil
	}
	return boolResult(true), nil
}

func (s *Server) handleDrag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := selector(req)
	if err != nil {
		log.Error().Err(err).Msg("drag: bad selector")
		return boolResult(false), nil
	}
	toX := req.GetInt("to_x", 0)
	toY := req.GetInt("to_y", 0)

	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("drag: connect failed")
		return boolResult(false), nil
	}

	el, err := sess.FindElement(ctx, sel)
	if err != nil {
		log.Error().Err(err).Str("selector", sel.Value).Msg("drag: lookup failed")
		return boolResult(false), nil
	}
	if el == nil {
		return boolResult(false), nil
	}

	x, y := el.Bounds.Center()
	if err := sess.Swipe(ctx, x, y, toX, toY, seconds(0.5)); err != nil {
		log.Error().Err(err).Str("selector", sel.Value).Msg("drag failed")
		return boolResult(false), nil
	}
	return boolResult(true), nil
}

func (s *Server) handleSendText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	clear := req.GetBool("clear", true)

	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("send_text: connect failed")
		return boolResult(false), nil
	}
	if err := sess.SendText(ctx, text, clear); err != nil {
		log.Error().Err(err).Msg("send_text failed")
		return boolResult(false), nil
	}
	return boolResult(true), nil
}
