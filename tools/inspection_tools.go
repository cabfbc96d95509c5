package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"
)

func (s *Server) registerInspectionTools() {
	s.mcp.AddTool(
		mcp.NewTool("get_element_info",
			append([]mcp.ToolOption{
				mcp.WithDescription("Get detailed information about a UI element: text, resource ID, class name, bounds and interaction flags"),
			}, selectorArgs(
				mcp.WithNumber("timeout",
					mcp.DefaultNumber(10),
					mcp.Description("Maximum seconds to wait for the element"),
				),
			)...)...,
		),
		s.handleElementInfo,
	)

	s.mcp.AddTool(
		mcp.NewTool("wait_for_element",
			append([]mcp.ToolOption{
				mcp.WithDescription("Wait for a UI element to appear on the screen. Essential for loading screens and dynamic content."),
			}, selectorArgs(
				mcp.WithNumber("timeout",
					mcp.DefaultNumber(10),
					mcp.Description("Maximum seconds to wait"),
				),
			)...)...,
		),
		s.handleWaitForElement,
	)

	s.mcp.AddTool(
		mcp.NewTool("scroll_to",
			append([]mcp.ToolOption{
				mcp.WithDescription("Scroll the screen until the target element becomes visible"),
			}, selectorArgs()...)...,
		),
		s.handleScrollTo,
	)

	s.mcp.AddTool(
		mcp.NewTool("screenshot",
			mcp.WithDescription("Capture a screenshot of the device screen and save it to the specified file path"),
			mcp.WithString("filename",
				mcp.Required(),
				mcp.Description("File path where the screenshot will be saved (e.g. screenshot.png)"),
			),
			mcp.WithString("device_id",
				mcp.Description("Optional device serial. Defaults to the first available device."),
			),
		),
		s.handleScreenshot,
	)

	s.mcp.AddTool(
		mcp.NewTool("dump_hierarchy",
			mcp.WithDescription("Dump the complete UI hierarchy of the current screen as XML. Essential for understanding screen structure and debugging automation."),
			mcp.WithBoolean("compressed",
				mcp.DefaultBool(false),
				mcp.Description("Exclude less important nodes for smaller output"),
			),
			mcp.WithBoolean("pretty",
				mcp.DefaultBool(true),
				mcp.Description("Indent the XML output"),
			),
			mcp.WithNumber("max_depth",
				mcp.DefaultNumber(50),
				mcp.Description("Maximum hierarchy depth to include"),
			),
			mcp.WithString("device_id",
				mcp.Description("Optional device serial. Defaults to the first available device."),
			),
		),
		s.handleDumpHierarchy,
	)
}

func (s *Server) handleElementInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Not-found and failure both surface as an empty descriptor.
	empty := jsonResult(struct{}{})

	sel, err := selector(req)
	if err != nil {
		log.Error().Err(err).Msg("get_element_info: bad selector")
		return empty, nil
	}
	timeout := seconds(req.GetFloat("timeout", 10))

	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("get_element_info: connect failed")
		return empty, nil
	}

	el, err := sess.WaitElement(ctx, sel, timeout)
	if err != nil {
		log.Error().Err(err).Str("selector", sel.Value).Msg("get_element_info: lookup failed")
		return empty, nil
	}
	if el == nil {
		return empty, nil
	}
	return jsonResult(el), nil
}

func (s *Server) handleWaitForElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := selector(req)
	if err != nil {
		log.Error().Err(err).Msg("wait_for_element: bad selector")
		return boolResult(false), nil
	}
	timeout := seconds(req.GetFloat("timeout", 10))

	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("wait_for_element: connect failed")
		return boolResult(false), nil
	}

	el, err := sess.WaitElement(ctx, sel, timeout)
	if err != nil {
		log.Error().Err(err).Str("selector", sel.Value).Msg("wait_for_element failed")
		return boolResult(false), nil
	}
	return boolResult(el != nil), nil
}

func (s *Server) handleScrollTo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := selector(req)
	if err != nil {
		log.Error().Err(err).Msg("scroll_to: bad selector")
		return boolResult(false), nil
	}

	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("scroll_to: connect failed")
		return boolResult(false), nil
	}

	found, err := sess.ScrollTo(ctx, sel)
	if err != nil {
		log.Error().Err(err).Str("selector", sel.Value).Msg("scroll_to failed")
		return boolResult(false), nil
	}
	return boolResult(found), nil
}

func (s *Server) handleScreenshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("screenshot: connect failed")
		return boolResult(false), nil
	}
	if err := sess.Screenshot(ctx, filename); err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("screenshot failed")
		return boolResult(false), nil
	}
	return boolResult(true), nil
}

func (s *Server) handleDumpHierarchy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	compressed := req.GetBool("compressed", false)
	pretty := req.GetBool("pretty", true)
	maxDepth := req.GetInt("max_depth", 50)

	sess, err := s.session(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("dump_hierarchy: connect failed")
		return mcp.NewToolResultText(""), nil
	}

	xml, err := sess.DumpHierarchy(ctx, compressed, pretty, maxDepth)
	if err != nil {
		log.Error().Err(err).Msg("dump_hierarchy failed")
		return mcp.NewToolResultText(""), nil
	}
	return mcp.NewToolResultText(xml), nil
}
