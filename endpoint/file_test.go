package endpoint

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSinkThenSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data")

	sink, err := CreateFileSink(path, 0o644)
	if err != nil {
		t.Fatalf("CreateFileSink: %v", err)
	}
	if _, err := writeAll(sink.Fd(), []byte("payload")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := sink.CloseSink(); err != nil {
		t.Fatalf("CloseSink: %v", err)
	}
	if sink.Open() {
		t.Fatal("Open() true after CloseSink")
	}

	source, err := OpenFileSource(path)
	if err != nil {
		t.Fatalf("OpenFileSource: %v", err)
	}
	defer source.CloseSource()

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("got %q, want %q", got, "payload")
	}
}

func TestOpenFileSourceMissing(t *testing.T) {
	_, err := OpenFileSource(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
