package output

import (
	"bytes"
	"strings"
	"testing"
)

func capture(t *testing.T, jsonMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	origOut, origMode := Stdout, JSONMode
	Stdout, JSONMode = &buf, jsonMode
	t.Cleanup(func() { Stdout, JSONMode = origOut, origMode })
	return &buf
}

func TestPrintJSONWrapsResult(t *testing.T) {
	buf := capture(t, true)
	Print(map[string]string{"key": "pla"}, func() { t.Error("text output in JSON mode") })
	out := buf.String()
	if !strings.Contains(out, `"success": true`) || !strings.Contains(out, `"key": "pla"`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestPrintTextMode(t *testing.T) {
	buf := capture(t, false)
	called := false
	Print(nil, func() { called = true })
	if !called || buf.Len() != 0 {
		t.Errorf("called = %v, output = %q", called, buf.String())
	}
}

func TestPrintLineCompact(t *testing.T) {
	buf := capture(t, true)
	PrintLine(map[string]string{"action": "deleted", "key": "pla"}, func() {})
	PrintLine(map[string]string{"action": "imported", "key": "abs"}, func() {})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	if lines[0] != `{"action":"deleted","key":"pla"}` {
		t.Errorf("line 0 = %s", lines[0])
	}
}
