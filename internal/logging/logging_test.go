package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfigureFiltersBySeverity(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, "text", LevelWarn)

	Infof("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("Infof logged below configured level: %q", buf.String())
	}

	Warnf("disk low: %d free", 3)
	out := buf.String()
	if !strings.Contains(out, "severity=WARNING") {
		t.Fatalf("missing severity=WARNING in %q", out)
	}
	if !strings.Contains(out, "disk low: 3 free") {
		t.Fatalf("missing formatted message in %q", out)
	}
}

func TestConfigureJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, "json", LevelTrace)

	Errorf("boom")
	out := buf.String()
	if !strings.Contains(out, `"severity":"ERROR"`) {
		t.Fatalf("missing json severity field in %q", out)
	}
	if !strings.Contains(out, `"boom"`) {
		t.Fatalf("missing message field in %q", out)
	}
}

func TestAsyncLoggerDrainsAllWrites(t *testing.T) {
	dir := t.TempDir()
	lj := newTestLumberjack(dir)
	a := NewAsyncLogger(lj, 16)

	for i := 0; i < 5; i++ {
		if _, err := a.Write([]byte("line\n")); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
