package constants

import "fmt"

// KeyCodes maps the symbolic key names accepted by the press_key tool to
// Android input keycodes.
var KeyCodes = map[string]int{
	"home":        3,
	"back":        4,
	"menu":        82,
	"volume_up":   24,
	"volume_down": 25,
	"power":       26,
	"enter":       66,
	"delete":      67,
}

// Keycode resolves a symbolic key name to its Android keycode.
func Keycode(key string) (int, error) {
	code, ok := KeyCodes[key]
	if !ok {
		return 0, fmt.Errorf("unknown key: %s", key)
	}
	return code, nil
}

const (
	KeycodeWakeup  = 224
	KeycodeSleep   = 223
	KeycodeMenu    = 82
	KeycodeMoveEnd = 123
	KeycodeDel     = 67
)
