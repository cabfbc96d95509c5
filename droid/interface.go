package droid

import (
	"context"
	"time"

	"github.com/quietroot/droid-mcp/droid/definitions"
)

// Bridge is the external command-line program (adb) used to enumerate and
// talk to attached Android devices. Every invocation is a single-attempt
// subprocess call; there is no pooling and no retry.
type Bridge interface {
	// Available reports whether the bridge binary can be found in PATH.
	Available() error
	// Devices enumerates all attached devices, including ones that are not
	// ready for automation (unauthorized, offline).
	Devices(ctx context.Context) ([]definitions.DeviceInfo, error)
	// ReadyDevices returns the serials of devices whose status is exactly
	// "device".
	ReadyDevices(ctx context.Context) ([]string, error)
	// Exec runs one bridge command against a device. An empty serial lets
	// the bridge pick its default device.
	Exec(ctx context.Context, serial string, args ...string) (string, error)
}

// Session is an automation session against one device. A session lives for
// the duration of a single tool call: connect, operate, discard.
type Session interface {
	Serial() string

	Props(ctx context.Context) (*definitions.DeviceProps, error)
	Battery(ctx context.Context) (*definitions.BatteryInfo, error)
	WifiIP(ctx context.Context) (string, error)
	WindowSize(ctx context.Context) (width, height int, err error)

	ScreenOn(ctx context.Context) (bool, error)
	WakeUp(ctx context.Context) error
	Sleep(ctx context.Context) error
	Unlock(ctx context.Context) error

	AppList(ctx context.Context) ([]string, error)
	CurrentApp(ctx context.Context) (*definitions.AppInfo, error)
	AppStart(ctx context.Context, pkg string) error
	AppWait(ctx context.Context, pkg string, timeout time.Duration) (bool, error)
	AppStop(ctx context.Context, pkg string) error
	AppStopAll(ctx context.Context) error
	AppClear(ctx context.Context, pkg string) error

	PressKey(ctx context.Context, key string) error
	Tap(ctx context.Context, x, y int) error
	LongPress(ctx context.Context, x, y int, duration time.Duration) error
	Swipe(ctx context.Context, startX, startY, endX, endY int, duration time.Duration) error
	SendText(ctx context.Context, text string, clear bool) error

	// FindElement returns the element matching the selector right now, or
	// nil when absent. WaitElement polls until the element appears or the
	// timeout elapses, returning nil on timeout.
	FindElement(ctx context.Context, sel definitions.Selector) (*definitions.ElementInfo, error)
	WaitElement(ctx context.Context, sel definitions.Selector, timeout time.Duration) (*definitions.ElementInfo, error)
	ScrollTo(ctx context.Context, sel definitions.Selector) (bool, error)

	Screenshot(ctx context.Context, filename string) error
	DumpHierarchy(ctx context.Context, compressed, pretty bool, maxDepth int) (string, error)

	Toast(ctx context.Context, timeout time.Duration) (string, error)
	WaitActivity(ctx context.Context, activity string, timeout time.Duration) (bool, error)
}

// ConnectFunc opens a session to the device with the given serial, or to
// the first available device when serial is empty.
type ConnectFunc func(ctx context.Context, serial string) (Session, error)
