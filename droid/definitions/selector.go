package definitions

import "fmt"

// SelectorKind is the closed set of ways to identify a UI element.
type SelectorKind string

const (
	SelectorText        SelectorKind = "text"
	SelectorResourceID  SelectorKind = "resourceId"
	SelectorDescription SelectorKind = "description"
)

// Selector identifies a UI element by one of the supported kinds.
type Selector struct {
	Kind  SelectorKind `json:"kind"`
	Value string       `json:"value"`
}

// NewSelector validates the kind tag and builds a Selector. Kinds outside
// the closed set are a local validation failure, never an unhandled fault.
func NewSelector(kind, value string) (Selector, error) {
	switch SelectorKind(kind) {
	case SelectorText, SelectorResourceID, SelectorDescription:
		return Selector{Kind: SelectorKind(kind), Value: value}, nil
	default:
		return Selector{}, fmt.Errorf("invalid selector_type: %s", kind)
	}
}

// Bounds is an element's bounding rectangle in screen coordinates.
type Bounds struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Center returns the midpoint of the rectangle, the tap target for gestures.
func (b Bounds) Center() (int, int) {
	return (b.Left + b.Right) / 2, (b.Top + b.Bottom) / 2
}

// ElementInfo is the structured snapshot of one UI element's properties at
// the moment of query. It is never retained between calls.
type ElementInfo struct {
	Text        string `json:"text"`
	ResourceID  string `json:"resourceId"`
	Description string `json:"description"`
	ClassName   string `json:"className"`
	Enabled     bool   `json:"enabled"`
	Clickable   bool   `json:"clickable"`
	Bounds      Bounds `json:"bounds"`
	Selected    bool   `json:"selected"`
	Focused     bool   `json:"focused"`
}
