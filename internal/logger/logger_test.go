package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWritersDefaultPathsUnderDir(t *testing.T) {
	dir := t.TempDir()
	c := Config{Dir: dir}
	outW, errW, err := c.Writers("backend")
	if err != nil {
		t.Fatalf("writers: %v", err)
	}
	if outW == nil || errW == nil {
		t.Fatalf("expected both writers, got %v %v", outW, errW)
	}
	if _, err := outW.Write([]byte("hello out\n")); err != nil {
		t.Fatalf("write stdout: %v", err)
	}
	if _, err := errW.Write([]byte("hello err\n")); err != nil {
		t.Fatalf("write stderr: %v", err)
	}
	_ = outW.Close()
	_ = errW.Close()

	b, err := os.ReadFile(filepath.Join(dir, "backend.stdout.log"))
	if err != nil || !strings.Contains(string(b), "hello out") {
		t.Fatalf("stdout log missing: %v %q", err, string(b))
	}
	b, err = os.ReadFile(filepath.Join(dir, "backend.stderr.log"))
	if err != nil || !strings.Contains(string(b), "hello err") {
		t.Fatalf("stderr log missing: %v %q", err, string(b))
	}
}

func TestWritersExplicitPathsOverrideDir(t *testing.T) {
	dir := t.TempDir()
	c := Config{Dir: dir, StdoutPath: filepath.Join(dir, "o.log"), StderrPath: filepath.Join(dir, "e.log")}
	outW, errW, err := c.Writers("x")
	if err != nil {
		t.Fatalf("writers: %v", err)
	}
	if _, err := outW.Write([]byte("o")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = outW.Close()
	_ = errW.Close()
	if _, err := os.Stat(filepath.Join(dir, "o.log")); err != nil {
		t.Fatalf("explicit stdout path not used: %v", err)
	}
}

func TestWritersEmptyConfig(t *testing.T) {
	outW, errW, err := Config{}.Writers("x")
	if err != nil {
		t.Fatalf("writers: %v", err)
	}
	if outW != nil || errW != nil {
		t.Fatalf("expected nil writers without dir or paths")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestColorTextHandlerColorsLevel(t *testing.T) {
	var buf bytes.Buffer
	h := NewColorTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	l := slog.New(h)
	l.Error("boom")
	if !strings.Contains(buf.String(), "\033[31m") {
		t.Fatalf("error output not colored red: %q", buf.String())
	}

	buf.Reset()
	r := slog.NewRecord(time.Now(), slog.Level(42), "odd", 0)
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(buf.String(), "odd") {
		t.Fatalf("unknown level message lost: %q", buf.String())
	}
}
