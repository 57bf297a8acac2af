package factory

import (
	"path/filepath"
	"testing"
)

func TestNewSinkFromDSNEmpty(t *testing.T) {
	if _, err := NewSinkFromDSN(""); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}

func TestNewSinkFromDSNUnsupported(t *testing.T) {
	if _, err := NewSinkFromDSN("redis://localhost:6379"); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}

func TestNewSinkFromDSNSQLitePlainPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.db")
	sink, err := NewSinkFromDSN(path)
	if err != nil {
		t.Fatalf("plain path should default to sqlite: %v", err)
	}
	if closer, ok := sink.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

func TestNewSinkFromDSNSQLiteScheme(t *testing.T) {
	sink, err := NewSinkFromDSN("sqlite://:memory:")
	if err != nil {
		t.Fatalf("sqlite scheme: %v", err)
	}
	if closer, ok := sink.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
