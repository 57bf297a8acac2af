package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sidekick.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[backend]
command = "/usr/local/bin/backend serve"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.Name != "backend" {
		t.Fatalf("name = %q, want backend", cfg.Backend.Name)
	}
	if cfg.Backend.Port != 4000 || cfg.Endpoint.Port != 4000 {
		t.Fatalf("port = %d/%d, want 4000", cfg.Backend.Port, cfg.Endpoint.Port)
	}
	if cfg.Endpoint.Host != "127.0.0.1" {
		t.Fatalf("host = %q, want 127.0.0.1", cfg.Endpoint.Host)
	}
	if cfg.Probe.MaxAttempts != 60 {
		t.Fatalf("max attempts = %d, want 60", cfg.Probe.MaxAttempts)
	}
	if cfg.Probe.Interval != time.Second {
		t.Fatalf("interval = %v, want 1s", cfg.Probe.Interval)
	}
	if cfg.Probe.Timeout != 2*time.Second {
		t.Fatalf("timeout = %v, want 2s", cfg.Probe.Timeout)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level = %q, want info", cfg.LogLevel)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
[backend]
name = "notes"
command = "./notes-server"
workdir = "/opt/notes"
host = "localhost"
port = 5005
env = ["MIX_ENV=prod"]

[probe]
max_attempts = 10
interval = "500ms"
timeout = "1s"

[shutdown]
request_timeout = "3s"
grace_period = "1s"

[server]
listen = "127.0.0.1:9090"

[log]
level = "debug"
dir = "/var/log/notes"
max_size_mb = 5

[history]
dsn = "sqlite:///tmp/launch.db"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.Name != "notes" || cfg.Backend.WorkDir != "/opt/notes" {
		t.Fatalf("backend = %+v", cfg.Backend)
	}
	if cfg.Endpoint.Host != "localhost" || cfg.Endpoint.Port != 5005 {
		t.Fatalf("endpoint = %+v", cfg.Endpoint)
	}
	if cfg.Probe.MaxAttempts != 10 || cfg.Probe.Interval != 500*time.Millisecond {
		t.Fatalf("probe = %+v", cfg.Probe)
	}
	if cfg.Shutdown.RequestTimeout != 3*time.Second || cfg.Shutdown.GracePeriod != time.Second {
		t.Fatalf("shutdown = %+v", cfg.Shutdown)
	}
	if cfg.Server.Listen != "127.0.0.1:9090" {
		t.Fatalf("listen = %q", cfg.Server.Listen)
	}
	if cfg.LogLevel != "debug" || cfg.Backend.Log.Dir != "/var/log/notes" || cfg.Backend.Log.MaxSizeMB != 5 {
		t.Fatalf("log = %q %+v", cfg.LogLevel, cfg.Backend.Log)
	}
	if cfg.HistoryDSN != "sqlite:///tmp/launch.db" {
		t.Fatalf("dsn = %q", cfg.HistoryDSN)
	}
	if len(cfg.Backend.Env) != 1 || cfg.Backend.Env[0] != "MIX_ENV=prod" {
		t.Fatalf("env = %v", cfg.Backend.Env)
	}
}

func TestLoadRequiresCommand(t *testing.T) {
	path := writeConfig(t, `
[backend]
name = "nocmd"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for missing backend command")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestMergeEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "app.env")
	body := "# comment\nDATABASE_URL=postgres://file\nSECRET=from_file\n\nEXTRA = spaced\n"
	if err := os.WriteFile(envFile, []byte(body), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	env, err := mergeEnv(BackendConfig{
		EnvFiles: []string{envFile},
		Env:      []string{"SECRET=from_list"},
	})
	if err != nil {
		t.Fatalf("merge env: %v", err)
	}
	sort.Strings(env)
	joined := strings.Join(env, "\n")
	if !strings.Contains(joined, "DATABASE_URL=postgres://file") {
		t.Fatalf("env file var missing: %v", env)
	}
	if !strings.Contains(joined, "SECRET=from_list") || strings.Contains(joined, "SECRET=from_file") {
		t.Fatalf("env list did not override env file: %v", env)
	}
	if !strings.Contains(joined, "EXTRA=spaced") {
		t.Fatalf("whitespace not trimmed: %v", env)
	}
}

func TestMergeEnvUseOSEnv(t *testing.T) {
	t.Setenv("SIDEKICK_TEST_VAR", "os_value")

	env, err := mergeEnv(BackendConfig{UseOSEnv: true, Env: []string{"SIDEKICK_TEST_VAR=override"}})
	if err != nil {
		t.Fatalf("merge env: %v", err)
	}
	found := false
	for _, kv := range env {
		if kv == "SIDEKICK_TEST_VAR=override" {
			found = true
		}
		if kv == "SIDEKICK_TEST_VAR=os_value" {
			t.Fatalf("env list did not override OS env")
		}
	}
	if !found {
		t.Fatalf("override missing from %v", env)
	}
}

func TestMergeEnvMissingEnvFile(t *testing.T) {
	_, err := mergeEnv(BackendConfig{EnvFiles: []string{filepath.Join(t.TempDir(), "nope.env")}})
	if err == nil {
		t.Fatalf("expected error for missing env file")
	}
}
