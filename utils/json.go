package utils

import (
	json "github.com/bytedance/sonic"
)

// JsonIndent renders a response payload as indented JSON. Payloads are
// plain structs built by the caller, so a marshal failure means a
// programming error; an empty object is returned rather than a panic.
func JsonIndent(obj any) string {
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
