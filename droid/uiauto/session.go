package uiauto

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quietroot/droid-mcp/constants"
	"github.com/quietroot/droid-mcp/droid"
	"github.com/quietroot/droid-mcp/droid/definitions"
)

const (
	elementPollDefault = 500 * time.Millisecond
	screenPollDefault  = time.Second
	scrollMaxSwipes    = 10
)

// Session is an ephemeral automation session against one device. It holds
// no state beyond the resolved serial; every operation is an independent
// bridge invocation.
type Session struct {
	bridge droid.Bridge
	serial string

	pollInterval time.Duration
}

// Connect resolves the target device and opens a session. An empty serial
// selects the first device in the "device" state.
func Connect(ctx context.Context, bridge droid.Bridge, serial string) (droid.Session, error) {
	if err := bridge.Available(); err != nil {
		return nil, err
	}

	serials, err := bridge.ReadyDevices(ctx)
	if err != nil {
		return nil, err
	}
	if len(serials) == 0 {
		return nil, fmt.Errorf("no Android devices connected")
	}

	if serial == "" {
		serial = serials[0]
	} else {
		found := false
		for _, s := range serials {
			if s == serial {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("device %s is not connected or not authorized", serial)
		}
	}

	return &Session{bridge: bridge, serial: serial, pollInterval: elementPollDefault}, nil
}

func (s *Session) Serial() string {
	return s.serial
}

func (s *Session) shell(ctx context.Context, args ...string) (string, error) {
	return s.bridge.Exec(ctx, s.serial, append([]string{"shell"}, args...)...)
}

// Props reads the device descriptor fresh from getprop. Nothing is cached.
func (s *Session) Props(ctx context.Context) (*definitions.DeviceProps, error) {
	output, err := s.shell(ctx, "getprop")
	if err != nil {
		return nil, err
	}

	props := parseGetprop(output)
	sdk, _ := strconv.Atoi(props["ro.build.version.sdk"])

	return &definitions.DeviceProps{
		Manufacturer: props["ro.product.manufacturer"],
		Model:        props["ro.product.model"],
		Serial:       s.serial,
		Version:      props["ro.build.version.release"],
		SDK:          sdk,
		Display:      props["ro.sf.lcd_density"],
		Product:      props["ro.product.name"],
	}, nil
}

// parseGetprop parses the "[key]: [value]" listing format.
func parseGetprop(output string) map[string]string {
	props := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "[") {
			continue
		}
		key, value, ok := strings.Cut(line, "]: [")
		if !ok {
			continue
		}
		key = strings.TrimPrefix(key, "[")
		value = strings.TrimSuffix(value, "]")
		props[key] = value
	}
	return props
}

func (s *Session) Battery(ctx context.Context) (*definitions.BatteryInfo, error) {
	output, err := s.shell(ctx, "dumpsys", "battery")
	if err != nil {
		return nil, err
	}

	info := &definitions.BatteryInfo{}
	for _, line := range strings.Split(output, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ": ")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		switch key {
		case "level":
			info.Level = n
		case "status":
			info.Status = n
		case "health":
			info.Health = n
		}
	}
	return info, nil
}

func (s *Session) WifiIP(ctx context.Context) (string, error) {
	output, err := s.shell(ctx, "ip", "route")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "src") {
			continue
		}
		parts := strings.Fields(line)
		for i, part := range parts {
			if part == "src" && i+1 < len(parts) {
				return parts[i+1], nil
			}
		}
	}

	output, err = s.shell(ctx, "ip", "addr", "show", "wlan0")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "inet ") {
			parts := strings.Fields(line)
			if len(parts) >= 2 {
				return strings.Split(parts[1], "/")[0], nil
			}
		}
	}
	return "", nil
}

func (s *Session) WindowSize(ctx context.Context) (int, int, error) {
	output, err := s.shell(ctx, "wm", "size")
	if err != nil {
		return 0, 0, err
	}

	// Prefer the override size when present, it reflects the active mode.
	width, height := 0, 0
	for _, line := range strings.Split(output, "\n") {
		_, size, ok := strings.Cut(strings.TrimSpace(line), "size: ")
		if !ok {
			continue
		}
		w, h, ok := strings.Cut(strings.TrimSpace(size), "x")
		if !ok {
			continue
		}
		pw, errW := strconv.Atoi(w)
		ph, errH := strconv.Atoi(h)
		if errW == nil && errH == nil {
			width, height = pw, ph
		}
	}
	if width == 0 || height == 0 {
		return 0, 0, fmt.Errorf("failed to parse wm size output: %s", strings.TrimSpace(output))
	}
	return width, height, nil
}

func (s *Session) ScreenOn(ctx context.Context) (bool, error) {
	output, err := s.shell(ctx, "dumpsys", "power")
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "mWakefulness=") {
			return strings.Contains(line, "Awake"), nil
		}
	}
	// Newer builds report per-display interactive state instead.
	return strings.Contains(output, "mInteractive=true") ||
		strings.Contains(output, "Display Power: state=ON"), nil
}

// WakeUp is idempotent: KEYCODE_WAKEUP is a no-op on an awake device.
func (s *Session) WakeUp(ctx context.Context) error {
	_, err := s.shell(ctx, "input", "keyevent", strconv.Itoa(constants.KeycodeWakeup))
	return err
}

func (s *Session) Sleep(ctx context.Context) error {
	_, err := s.shell(ctx, "input", "keyevent", strconv.Itoa(constants.KeycodeSleep))
	return err
}

// Unlock wakes the device when needed and issues the default unlock
// gesture. PIN, pattern and biometric locks are not handled.
func (s *Session) Unlock(ctx context.Context) error {
	on, err := s.ScreenOn(ctx)
	if err != nil {
		return err
	}
	if !on {
		if err := s.WakeUp(ctx); err != nil {
			return err
		}
	}

	if _, err := s.shell(ctx, "input", "keyevent", strconv.Itoa(constants.KeycodeMenu)); err != nil {
		return err
	}

	width, height, err := s.WindowSize(ctx)
	if err != nil {
		// Fall back to a common portrait resolution for the swipe.
		width, height = 1080, 2400
	}
	return s.Swipe(ctx, width/2, height*3/4, width/2, height/4, 300*time.Millisecond)
}

func (s *Session) AppList(ctx context.Context) ([]string, error) {
	output, err := s.shell(ctx, "pm", "list", "packages")
	if err != nil {
		return nil, err
	}

	var apps []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if pkg, ok := strings.CutPrefix(line, "package:"); ok {
			apps = append(apps, pkg)
		}
	}
	return apps, nil
}

func (s *Session) CurrentApp(ctx context.Context) (*definitions.AppInfo, error) {
	output, err := s.shell(ctx, "dumpsys", "window")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(output) == "" {
		return nil, fmt.Errorf("no output from dumpsys window")
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "mCurrentFocus") && !strings.Contains(line, "mFocusedApp") {
			continue
		}
		if app := parseFocusLine(line); app != nil {
			return app, nil
		}
	}
	return nil, fmt.Errorf("no focused window found")
}

// parseFocusLine extracts "package/activity" from a window focus line such
// as "mCurrentFocus=Window{1a2b u0 com.foo/com.foo.MainActivity}".
func parseFocusLine(line string) *definitions.AppInfo {
	for _, field := range strings.Fields(strings.Trim(line, "}")) {
		pkg, activity, ok := strings.Cut(field, "/")
		if !ok || strings.Contains(pkg, "=") || !strings.Contains(pkg, ".") {
			continue
		}
		if strings.HasPrefix(activity, ".") {
			activity = pkg + activity
		}
		return &definitions.AppInfo{Package: pkg, Activity: activity}
	}
	return nil
}

func (s *Session) AppStart(ctx context.Context, pkg string) error {
	output, err := s.shell(ctx, "monkey", "-p", pkg, "-c", "android.intent.category.LAUNCHER", "1")
	if err != nil {
		return err
	}
	if strings.Contains(output, "No activities found") {
		return fmt.Errorf("no launchable activity for package %s", pkg)
	}
	return nil
}

// AppWait polls for the launched package's process until it appears or the
// timeout elapses.
func (s *Session) AppWait(ctx context.Context, pkg string, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		output, err := s.shell(ctx, "pidof", "-s", pkg)
		if err == nil && strings.TrimSpace(output) != "" {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(screenPollDefault):
		}
	}
}

func (s *Session) AppStop(ctx context.Context, pkg string) error {
	_, err := s.shell(ctx, "am", "force-stop", pkg)
	return err
}

// AppStopAll force-stops every third-party package. System services are
// left alone.
func (s *Session) AppStopAll(ctx context.Context) error {
	output, err := s.shell(ctx, "pm", "list", "packages", "-3")
	if err != nil {
		return err
	}
	for _, line := range strings.Split(output, "\n") {
		pkg, ok := strings.CutPrefix(strings.TrimSpace(line), "package:")
		if !ok {
			continue
		}
		if err := s.AppStop(ctx, pkg); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) AppClear(ctx context.Context, pkg string) error {
	output, err := s.shell(ctx, "pm", "clear", pkg)
	if err != nil {
		return err
	}
	if !strings.Contains(output, "Success") {
		return fmt.Errorf("pm clear %s: %s", pkg, strings.TrimSpace(output))
	}
	return nil
}

func (s *Session) PressKey(ctx context.Context, key string) error {
	code, err := constants.Keycode(key)
	if err != nil {
		return err
	}
	_, err = s.shell(ctx, "input", "keyevent", strconv.Itoa(code))
	return err
}

func (s *Session) Tap(ctx context.Context, x, y int) error {
	_, err := s.shell(ctx, "input", "tap", strconv.Itoa(x), strconv.Itoa(y))
	return err
}

// LongPress is a zero-distance swipe held for the given duration.
func (s *Session) LongPress(ctx context.Context, x, y int, duration time.Duration) error {
	_, err := s.shell(ctx, "input", "swipe",
		strconv.Itoa(x), strconv.Itoa(y),
		strconv.Itoa(x), strconv.Itoa(y),
		strconv.Itoa(int(duration.Milliseconds())))
	return err
}

func (s *Session) Swipe(ctx context.Context, startX, startY, endX, endY int, duration time.Duration) error {
	_, err := s.shell(ctx, "input", "swipe",
		strconv.Itoa(startX), strconv.Itoa(startY),
		strconv.Itoa(endX), strconv.Itoa(endY),
		strconv.Itoa(int(duration.Milliseconds())))
	return err
}

// SendText types into whatever element currently holds focus. With clear,
// the caret is moved to the end and the existing content deleted first.
// Focus is not verified.
func (s *Session) SendText(ctx context.Context, text string, clear bool) error {
	if clear {
		if _, err := s.shell(ctx, "input", "keyevent", strconv.Itoa(constants.KeycodeMoveEnd)); err != nil {
			return err
		}
		del := make([]string, 0, 52)
		del = append(del, "input", "keyevent")
		for i := 0; i < 50; i++ {
			del = append(del, strconv.Itoa(constants.KeycodeDel))
		}
		if _, err := s.shell(ctx, del...); err != nil {
			return err
		}
	}
	if text == "" {
		return nil
	}
	_, err := s.shell(ctx, "input", "text", escapeText(text))
	return err
}

// escapeText quotes text for "input text", which treats %s as a space and
// chokes on unquoted shell metacharacters.
func escapeText(text string) string {
	replacer := strings.NewReplacer(
		" ", "%s",
		"'", `\'`,
		`"`, `\"`,
		"&", `\&`,
		"(", `\(`,
		")", `\)`,
		"<", `\<`,
		">", `\>`,
		";", `\;`,
		"|", `\|`,
	)
	return replacer.Replace(text)
}

func (s *Session) dump(ctx context.Context, compressed bool) (string, error) {
	remote := fmt.Sprintf("/sdcard/uidump_%s.xml", uuid.New().String())
	defer func() {
		_, _ = s.shell(context.WithoutCancel(ctx), "rm", "-f", remote)
	}()

	args := []string{"uiautomator", "dump"}
	if compressed {
		args = append(args, "--compressed")
	}
	args = append(args, remote)
	if _, err := s.shell(ctx, args...); err != nil {
		return "", err
	}

	return s.shell(ctx, "cat", remote)
}

func (s *Session) FindElement(ctx context.Context, sel definitions.Selector) (*definitions.ElementInfo, error) {
	data, err := s.dump(ctx, false)
	if err != nil {
		return nil, err
	}
	h, err := parseHierarchy(data)
	if err != nil {
		return nil, err
	}
	node := findNode(h.Nodes, sel)
	if node == nil {
		return nil, nil
	}
	return elementInfo(node), nil
}

// WaitElement is the single selector resolver shared by every
// selector-consuming operation: poll until the element appears or the
// timeout elapses, returning nil on absence.
func (s *Session) WaitElement(ctx context.Context, sel definitions.Selector, timeout time.Duration) (*definitions.ElementInfo, error) {
	deadline := time.Now().Add(timeout)
	for {
		el, err := s.FindElement(ctx, sel)
		if err != nil {
			return nil, err
		}
		if el != nil {
			return el, nil
		}
		if time.Now().After(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
}

// ScrollTo swipes through the screen until the element becomes visible or
// the swipe budget is exhausted.
func (s *Session) ScrollTo(ctx context.Context, sel definitions.Selector) (bool, error) {
	width, height, err := s.WindowSize(ctx)
	if err != nil {
		return false, err
	}

	for i := 0; i < scrollMaxSwipes; i++ {
		el, err := s.FindElement(ctx, sel)
		if err != nil {
			return false, err
		}
		if el != nil {
			return true, nil
		}
		if err := s.Swipe(ctx, width/2, height*7/10, width/2, height*3/10, 300*time.Millisecond); err != nil {
			return false, err
		}
	}

	el, err := s.FindElement(ctx, sel)
	if err != nil {
		return false, err
	}
	return el != nil, nil
}

// Screenshot captures the screen to a temp file on the device, pulls it to
// the caller-specified path and cleans up the remote copy.
func (s *Session) Screenshot(ctx context.Context, filename string) error {
	remote := fmt.Sprintf("/sdcard/screenshot_%s.png", uuid.New().String())
	defer func() {
		_, _ = s.shell(context.WithoutCancel(ctx), "rm", "-f", remote)
	}()

	output, err := s.shell(ctx, "screencap", "-p", remote)
	if err != nil {
		return err
	}
	if strings.Contains(output, "Status: -1") || strings.Contains(output, "Failed") {
		log.Error().Str("output", output).Msg("[Screenshot] screencap failed")
		return fmt.Errorf("screencap failed: %s", strings.TrimSpace(output))
	}

	_, err = s.bridge.Exec(ctx, s.serial, "pull", remote, filename)
	return err
}

func (s *Session) DumpHierarchy(ctx context.Context, compressed, pretty bool, maxDepth int) (string, error) {
	data, err := s.dump(ctx, compressed)
	if err != nil {
		return "", err
	}
	return formatHierarchy(data, pretty, maxDepth)
}

// Toast polls the UI dump for a transient toast surface. Toasts are short
// lived and drawn outside the app window, so absence within the budget is
// reported as an empty string, not an error.
func (s *Session) Toast(ctx context.Context, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	for {
		data, err := s.dump(ctx, false)
		if err != nil {
			return "", err
		}
		h, err := parseHierarchy(data)
		if err == nil {
			if text := findToast(h.Nodes); text != "" {
				return text, nil
			}
		}
		if time.Now().After(deadline) {
			return "", nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
}

func findToast(nodes []uiNode) string {
	for i := range nodes {
		if strings.Contains(nodes[i].Class, "Toast") && nodes[i].Text != "" {
			return nodes[i].Text
		}
		if text := findToast(nodes[i].Nodes); text != "" {
			return text
		}
	}
	return ""
}

// WaitActivity polls the foreground activity until it matches the given
// name. Relative names (".LoginActivity") match as suffixes.
func (s *Session) WaitActivity(ctx context.Context, activity string, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		app, err := s.CurrentApp(ctx)
		if err == nil && app != nil {
			if app.Activity == activity || strings.HasSuffix(app.Activity, activity) {
				return true, nil
			}
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
}
