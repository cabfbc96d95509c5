package uiauto

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/quietroot/droid-mcp/droid/definitions"
)

// uiNode mirrors one node of the XML produced by "uiautomator dump".
type uiNode struct {
	Text        string   `xml:"text,attr"`
	ResourceID  string   `xml:"resource-id,attr"`
	ContentDesc string   `xml:"content-desc,attr"`
	Class       string   `xml:"class,attr"`
	Enabled     bool     `xml:"enabled,attr"`
	Clickable   bool     `xml:"clickable,attr"`
	Selected    bool     `xml:"selected,attr"`
	Focused     bool     `xml:"focused,attr"`
	Scrollable  bool     `xml:"scrollable,attr"`
	Bounds      string   `xml:"bounds,attr"`
	Nodes       []uiNode `xml:"node"`
}

type uiHierarchy struct {
	XMLName xml.Name `xml:"hierarchy"`
	Nodes   []uiNode `xml:"node"`
}

func parseHierarchy(data string) (*uiHierarchy, error) {
	// "uiautomator dump" prints a trailing status line after the document.
	if idx := strings.Index(data, "<?xml"); idx > 0 {
		data = data[idx:]
	}
	if end := strings.LastIndex(data, ">"); end >= 0 {
		data = data[:end+1]
	}

	var h uiHierarchy
	if err := xml.Unmarshal([]byte(data), &h); err != nil {
		return nil, fmt.Errorf("failed to parse ui hierarchy: %w", err)
	}
	return &h, nil
}

func (n *uiNode) matches(sel definitions.Selector) bool {
	switch sel.Kind {
	case definitions.SelectorText:
		return n.Text == sel.Value
	case definitions.SelectorResourceID:
		return n.ResourceID == sel.Value
	case definitions.SelectorDescription:
		return n.ContentDesc == sel.Value
	}
	return false
}

// findNode walks the tree depth-first and returns the first match.
func findNode(nodes []uiNode, sel definitions.Selector) *uiNode {
	for i := range nodes {
		if nodes[i].matches(sel) {
			return &nodes[i]
		}
		if found := findNode(nodes[i].Nodes, sel); found != nil {
			return found
		}
	}
	return nil
}

// parseBounds parses the "[left,top][right,bottom]" attribute format.
func parseBounds(s string) (definitions.Bounds, error) {
	var b definitions.Bounds
	if _, err := fmt.Sscanf(s, "[%d,%d][%d,%d]", &b.Left, &b.Top, &b.Right, &b.Bottom); err != nil {
		return definitions.Bounds{}, fmt.Errorf("malformed bounds %q: %w", s, err)
	}
	return b, nil
}

func elementInfo(n *uiNode) *definitions.ElementInfo {
	bounds, err := parseBounds(n.Bounds)
	if err != nil {
		bounds = definitions.Bounds{}
	}
	return &definitions.ElementInfo{
		Text:        n.Text,
		ResourceID:  n.ResourceID,
		Description: n.ContentDesc,
		ClassName:   n.Class,
		Enabled:     n.Enabled,
		Clickable:   n.Clickable,
		Bounds:      bounds,
		Selected:    n.Selected,
		Focused:     n.Focused,
	}
}

// formatHierarchy re-emits the dumped XML with optional indentation and a
// depth limit. Elements deeper than maxDepth are omitted entirely.
func formatHierarchy(data string, pretty bool, maxDepth int) (string, error) {
	if idx := strings.Index(data, "<?xml"); idx > 0 {
		data = data[idx:]
	}
	if end := strings.LastIndex(data, ">"); end >= 0 {
		data = data[:end+1]
	}

	decoder := xml.NewDecoder(strings.NewReader(data))
	var sb strings.Builder
	encoder := xml.NewEncoder(&sb)
	if pretty {
		encoder.Indent("", "  ")
	}

	depth := 0
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxDepth {
				continue
			}
			if err := encoder.EncodeToken(t); err != nil {
				return "", err
			}
		case xml.EndElement:
			if depth > maxDepth {
				depth--
				continue
			}
			depth--
			if err := encoder.EncodeToken(t); err != nil {
				return "", err
			}
		case xml.CharData:
			if depth <= maxDepth {
				if err := encoder.EncodeToken(t); err != nil {
					return "", err
				}
			}
		}
	}
	if err := encoder.Flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
