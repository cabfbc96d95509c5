package uiauto

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/quietroot/droid-mcp/droid/definitions"
)

// fakeBridge scripts adb responses by command substring.
type fakeBridge struct {
	available error
	devices   []definitions.DeviceInfo
	responses map[string]string
	calls     []string
}

func (f *fakeBridge) Available() error { return f.available }

func (f *fakeBridge) Devices(ctx context.Context) ([]definitions.DeviceInfo, error) {
	return f.devices, nil
}

func (f *fakeBridge) ReadyDevices(ctx context.Context) ([]string, error) {
	var serials []string
	for _, d := range f.devices {
		if d.Ready() {
			serials = append(serials, d.Serial)
		}
	}
	return serials, nil
}

func (f *fakeBridge) Exec(ctx context.Context, serial string, args ...string) (string, error) {
	cmd := strings.Join(args, " ")
	f.calls = append(f.calls, cmd)
	for key, out := range f.responses {
		if strings.Contains(cmd, key) {
			return out, nil
		}
	}
	return "", nil
}

func readyBridge() *fakeBridge {
	return &fakeBridge{
		devices:   []definitions.DeviceInfo{{Serial: "SERIAL1", Status: "device"}},
		responses: map[string]string{},
	}
}

func testSession(t *testing.T, fb *fakeBridge) *Session {
	t.Helper()
	sess, err := Connect(context.Background(), fb, "")
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	s := sess.(*Session)
	s.pollInterval = 20 * time.Millisecond
	return s
}

func TestConnectFirstAvailable(t *testing.T) {
	fb := &fakeBridge{devices: []definitions.DeviceInfo{
		{Serial: "SERIAL1", Status: "unauthorized"},
		{Serial: "SERIAL2", Status: "device"},
	}}

	sess, err := Connect(context.Background(), fb, "")
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if sess.Serial() != "SERIAL2" {
		t.Errorf("expected first ready device SERIAL2, got %s", sess.Serial())
	}
}

func TestConnectNoDevices(t *testing.T) {
	fb := &fakeBridge{}
	if _, err := Connect(context.Background(), fb, ""); err == nil {
		t.Fatal("expected error with no connected devices")
	}
}

func TestConnectUnknownSerial(t *testing.T) {
	fb := readyBridge()
	if _, err := Connect(context.Background(), fb, "OTHER"); err == nil {
		t.Fatal("expected error for serial that is not connected")
	}
}

func TestConnectBridgeUnavailable(t *testing.T) {
	fb := &fakeBridge{available: errors.New("adb not available in PATH")}
	if _, err := Connect(context.Background(), fb, ""); err == nil {
		t.Fatal("expected error when bridge is unavailable")
	}
}

func TestParseGetprop(t *testing.T) {
	output := "[ro.product.manufacturer]: [Google]\n" +
		"[ro.product.model]: [Pixel 6 Pro]\n" +
		"[ro.build.version.release]: [14]\n" +
		"[ro.build.version.sdk]: [34]\n" +
		"malformed line\n"

	props := parseGetprop(output)
	if props["ro.product.manufacturer"] != "Google" {
		t.Errorf("unexpected manufacturer: %q", props["ro.product.manufacturer"])
	}
	if props["ro.product.model"] != "Pixel 6 Pro" {
		t.Errorf("unexpected model: %q", props["ro.product.model"])
	}
	if len(props) != 4 {
		t.Errorf("expected 4 properties, got %d", len(props))
	}
}

func TestPropsFromGetprop(t *testing.T) {
	fb := readyBridge()
	fb.responses["getprop"] = "[ro.product.manufacturer]: [Google]\n" +
		"[ro.product.model]: [Pixel 6 Pro]\n" +
		"[ro.build.version.release]: [14]\n" +
		"[ro.build.version.sdk]: [34]\n" +
		"[ro.product.name]: [raven]\n"

	props, err := testSession(t, fb).Props(context.Background())
	if err != nil {
		t.Fatalf("Props failed: %v", err)
	}
	if props.SDK != 34 || props.Version != "14" || props.Product != "raven" {
		t.Errorf("unexpected props: %+v", props)
	}
	if props.Serial != "SERIAL1" {
		t.Errorf("unexpected serial: %q", props.Serial)
	}
}

func TestParseFocusLine(t *testing.T) {
	tests := []struct {
		line     string
		pkg      string
		activity string
	}{
		{
			"mCurrentFocus=Window{1a2b3c u0 com.android.settings/com.android.settings.Settings}",
			"com.android.settings", "com.android.settings.Settings",
		},
		{
			"mFocusedApp=ActivityRecord{9f8e u0 com.example.app/.MainActivity t42}",
			"com.example.app", "com.example.app.MainActivity",
		},
	}
	for _, tt := range tests {
		app := parseFocusLine(tt.line)
		if app == nil {
			t.Errorf("parseFocusLine(%q) returned nil", tt.line)
			continue
		}
		if app.Package != tt.pkg || app.Activity != tt.activity {
			t.Errorf("parseFocusLine(%q) = %+v, want %s/%s", tt.line, app, tt.pkg, tt.activity)
		}
	}

	if app := parseFocusLine("mCurrentFocus=null"); app != nil {
		t.Errorf("expected nil for null focus, got %+v", app)
	}
}

func TestScreenOnStates(t *testing.T) {
	fb := readyBridge()
	fb.responses["dumpsys power"] = "POWER MANAGER (dumpsys power)\n  mWakefulness=Awake\n"
	on, err := testSession(t, fb).ScreenOn(context.Background())
	if err != nil || !on {
		t.Errorf("expected screen on, got on=%v err=%v", on, err)
	}

	fb.responses["dumpsys power"] = "POWER MANAGER (dumpsys power)\n  mWakefulness=Asleep\n"
	on, err = testSession(t, fb).ScreenOn(context.Background())
	if err != nil || on {
		t.Errorf("expected screen off, got on=%v err=%v", on, err)
	}
}

func TestWakeUpIdempotent(t *testing.T) {
	fb := readyBridge()
	s := testSession(t, fb)

	// Waking an already-awake device must not error.
	if err := s.WakeUp(context.Background()); err != nil {
		t.Fatalf("first WakeUp failed: %v", err)
	}
	if err := s.WakeUp(context.Background()); err != nil {
		t.Fatalf("second WakeUp failed: %v", err)
	}
}

func TestAppListStripsPrefix(t *testing.T) {
	fb := readyBridge()
	fb.responses["pm list packages"] = "package:com.android.settings\npackage:com.example.app\n"

	apps, err := testSession(t, fb).AppList(context.Background())
	if err != nil {
		t.Fatalf("AppList failed: %v", err)
	}
	if len(apps) != 2 || apps[0] != "com.android.settings" || apps[1] != "com.example.app" {
		t.Errorf("unexpected app list: %v", apps)
	}
}

func TestAppWaitNeverForegrounds(t *testing.T) {
	fb := readyBridge()
	s := testSession(t, fb)

	start := time.Now()
	ok, err := s.AppWait(context.Background(), "com.example.app", 100*time.Millisecond)
	if err != nil {
		t.Fatalf("AppWait failed: %v", err)
	}
	if ok {
		t.Error("expected false when the app never appears")
	}
	if time.Since(start) < 100*time.Millisecond {
		t.Error("AppWait returned before its budget elapsed")
	}
}

func TestWaitElementHonorsTimeout(t *testing.T) {
	fb := readyBridge()
	fb.responses["cat"] = `<?xml version='1.0'?><hierarchy rotation="0"><node text="Other" resource-id="" content-desc="" class="android.widget.TextView" enabled="true" clickable="true" selected="false" focused="false" scrollable="false" bounds="[0,0][100,100]"/></hierarchy>`
	s := testSession(t, fb)

	timeout := 150 * time.Millisecond
	start := time.Now()
	el, err := s.WaitElement(context.Background(), mustSelector(t, "text", "Missing"), timeout)
	if err != nil {
		t.Fatalf("WaitElement failed: %v", err)
	}
	if el != nil {
		t.Errorf("expected nil for absent element, got %+v", el)
	}
	if elapsed := time.Since(start); elapsed < timeout {
		t.Errorf("returned after %v, before the %v timeout elapsed", elapsed, timeout)
	}
}

func TestWaitElementReturnsPromptly(t *testing.T) {
	fb := readyBridge()
	fb.responses["cat"] = `<?xml version='1.0'?><hierarchy rotation="0"><node text="Submit" resource-id="" content-desc="" class="android.widget.Button" enabled="true" clickable="true" selected="false" focused="false" scrollable="false" bounds="[0,0][200,100]"/></hierarchy>`
	s := testSession(t, fb)

	start := time.Now()
	el, err := s.WaitElement(context.Background(), mustSelector(t, "text", "Submit"), 10*time.Second)
	if err != nil {
		t.Fatalf("WaitElement failed: %v", err)
	}
	if el == nil {
		t.Fatal("expected element to be found")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("expected prompt return, took %v", elapsed)
	}

	x, y := el.Bounds.Center()
	if x != 100 || y != 50 {
		t.Errorf("unexpected center: (%d, %d)", x, y)
	}
}

func TestSendTextClearsFirst(t *testing.T) {
	fb := readyBridge()
	s := testSession(t, fb)

	if err := s.SendText(context.Background(), "hello world", true); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}

	joined := strings.Join(fb.calls, "\n")
	if !strings.Contains(joined, "keyevent 123") {
		t.Error("expected MOVE_END before clearing")
	}
	if !strings.Contains(joined, "keyevent 67") {
		t.Error("expected DEL keyevents for clearing")
	}
	if !strings.Contains(joined, "input text hello%sworld") {
		t.Errorf("expected escaped text input, calls:\n%s", joined)
	}
}

func TestEscapeText(t *testing.T) {
	got := escapeText(`a b's "c" (d)`)
	want := `a%sb\'s%s\"c\"%s\(d\)`
	if got != want {
		t.Errorf("escapeText = %q, want %q", got, want)
	}
}

func TestWaitActivitySuffixMatch(t *testing.T) {
	fb := readyBridge()
	fb.responses["dumpsys window"] = "  mCurrentFocus=Window{1a2b u0 com.example.app/.LoginActivity}\n"
	s := testSession(t, fb)

	ok, err := s.WaitActivity(context.Background(), ".LoginActivity", 500*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitActivity failed: %v", err)
	}
	if !ok {
		t.Error("expected relative activity name to match as suffix")
	}

	ok, err = s.WaitActivity(context.Background(), ".OtherActivity", 100*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitActivity failed: %v", err)
	}
	if ok {
		t.Error("expected false for non-matching activity")
	}
}
