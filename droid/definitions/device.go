package definitions

type ConnectionType string

const (
	USB    ConnectionType = "usb"
	Remote ConnectionType = "remote"
)

// DeviceInfo is one row of the bridge's device listing.
type DeviceInfo struct {
	Serial         string         `json:"serial"`
	Status         string         `json:"status"`
	ConnectionType ConnectionType `json:"connection_type"`
	Model          string         `json:"model,omitempty"`
}

// Ready reports whether the device accepts commands. Devices in
// "unauthorized" or "offline" states are excluded from automation.
func (d DeviceInfo) Ready() bool {
	return d.Status == "device"
}

// DeviceProps is the descriptor returned by connection and info tools.
// Fields are read fresh from the device on every call, never cached.
type DeviceProps struct {
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	Serial       string `json:"serial"`
	Version      string `json:"version"`
	SDK          int    `json:"sdk"`
	Display      string `json:"display,omitempty"`
	Product      string `json:"product,omitempty"`
	Resolution   string `json:"resolution,omitempty"`
	WifiIP       string `json:"wifi_ip,omitempty"`
	IsScreenOn   bool   `json:"is_screen_on,omitempty"`
}

// BatteryInfo mirrors the fields of "dumpsys battery".
type BatteryInfo struct {
	Level  int `json:"level"`
	Status int `json:"status"`
	Health int `json:"health"`
}

// AppInfo identifies the current foreground application.
type AppInfo struct {
	Package  string `json:"package"`
	Activity string `json:"activity"`
}
