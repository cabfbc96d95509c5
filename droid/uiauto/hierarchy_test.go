package uiauto

import (
	"strings"
	"testing"

	"github.com/quietroot/droid-mcp/droid/definitions"
)

const sampleDump = `<?xml version='1.0' encoding='UTF-8' standalone='yes' ?>
<hierarchy rotation="0">
  <node text="" resource-id="" content-desc="" class="android.widget.FrameLayout" enabled="true" clickable="false" selected="false" focused="false" scrollable="false" bounds="[0,0][1080,2400]">
    <node text="Settings" resource-id="com.android.settings:id/title" content-desc="Settings header" class="android.widget.TextView" enabled="true" clickable="true" selected="false" focused="false" scrollable="false" bounds="[40,120][400,200]">
      <node text="Network" resource-id="com.android.settings:id/network" content-desc="" class="android.widget.TextView" enabled="true" clickable="true" selected="false" focused="true" scrollable="false" bounds="[40,220][400,300]"/>
    </node>
  </node>
</hierarchy>
UI hierchary dumped to: /sdcard/uidump.xml`

func mustSelector(t *testing.T, kind, value string) definitions.Selector {
	t.Helper()
	sel, err := definitions.NewSelector(kind, value)
	if err != nil {
		t.Fatalf("NewSelector(%s, %s): %v", kind, value, err)
	}
	return sel
}

func TestParseHierarchyTrailingStatusLine(t *testing.T) {
	h, err := parseHierarchy(sampleDump)
	if err != nil {
		t.Fatalf("parseHierarchy failed: %v", err)
	}
	if len(h.Nodes) != 1 {
		t.Fatalf("expected 1 root node, got %d", len(h.Nodes))
	}
}

func TestFindNodeBySelectorKinds(t *testing.T) {
	h, err := parseHierarchy(sampleDump)
	if err != nil {
		t.Fatalf("parseHierarchy failed: %v", err)
	}

	tests := []struct {
		kind  string
		value string
		text  string
	}{
		{"text", "Settings", "Settings"},
		{"resourceId", "com.android.settings:id/network", "Network"},
		{"description", "Settings header", "Settings"},
	}
	for _, tt := range tests {
		node := findNode(h.Nodes, mustSelector(t, tt.kind, tt.value))
		if node == nil {
			t.Errorf("findNode(%s=%s) returned nil", tt.kind, tt.value)
			continue
		}
		if node.Text != tt.text {
			t.Errorf("findNode(%s=%s) matched text %q, want %q", tt.kind, tt.value, node.Text, tt.text)
		}
	}

	if node := findNode(h.Nodes, mustSelector(t, "text", "Missing")); node != nil {
		t.Errorf("expected nil for absent element, got %+v", node)
	}
}

func TestInvalidSelectorKind(t *testing.T) {
	if _, err := definitions.NewSelector("xpath", "//node"); err == nil {
		t.Fatal("expected error for selector kind outside the closed set")
	}
}

func TestParseBounds(t *testing.T) {
	b, err := parseBounds("[40,120][400,200]")
	if err != nil {
		t.Fatalf("parseBounds failed: %v", err)
	}
	if b.Left != 40 || b.Top != 120 || b.Right != 400 || b.Bottom != 200 {
		t.Errorf("unexpected bounds: %+v", b)
	}

	x, y := b.Center()
	if x != 220 || y != 160 {
		t.Errorf("unexpected center: (%d, %d)", x, y)
	}

	if _, err := parseBounds("garbage"); err == nil {
		t.Error("expected error for malformed bounds")
	}
}

func TestElementInfoFields(t *testing.T) {
	h, err := parseHierarchy(sampleDump)
	if err != nil {
		t.Fatalf("parseHierarchy failed: %v", err)
	}

	node := findNode(h.Nodes, mustSelector(t, "text", "Network"))
	if node == nil {
		t.Fatal("element not found")
	}

	info := elementInfo(node)
	if info.ResourceID != "com.android.settings:id/network" {
		t.Errorf("unexpected resourceId: %q", info.ResourceID)
	}
	if info.ClassName != "android.widget.TextView" {
		t.Errorf("unexpected className: %q", info.ClassName)
	}
	if !info.Enabled || !info.Clickable || !info.Focused || info.Selected {
		t.Errorf("unexpected flags: %+v", info)
	}
	if info.Bounds.Top != 220 {
		t.Errorf("unexpected bounds: %+v", info.Bounds)
	}
}

func TestFormatHierarchyDepthLimit(t *testing.T) {
	out, err := formatHierarchy(sampleDump, false, 2)
	if err != nil {
		t.Fatalf("formatHierarchy failed: %v", err)
	}
	if !strings.Contains(out, "FrameLayout") {
		t.Error("depth-1 node should be present")
	}
	if strings.Contains(out, "Settings") {
		t.Error("depth-3 node should be truncated at max_depth=2")
	}
	if strings.Contains(out, "dumped to") {
		t.Error("trailing status line should be stripped")
	}
}

func TestFormatHierarchyPretty(t *testing.T) {
	out, err := formatHierarchy(sampleDump, true, 50)
	if err != nil {
		t.Fatalf("formatHierarchy failed: %v", err)
	}
	if !strings.Contains(out, "Network") {
		t.Error("expected full hierarchy at default depth")
	}
	if !strings.Contains(out, "\n") {
		t.Error("expected indented output")
	}
}
