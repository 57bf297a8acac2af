package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/loykin/sidekick/internal/logger"
	"github.com/loykin/sidekick/internal/probe"
	"github.com/loykin/sidekick/internal/sidecar"
	"github.com/spf13/viper"
)

// FileConfig represents the top-level TOML structure.
type FileConfig struct {
	Backend  BackendConfig  `toml:"backend" mapstructure:"backend"`
	Probe    ProbeConfig    `toml:"probe" mapstructure:"probe"`
	Shutdown ShutdownConfig `toml:"shutdown" mapstructure:"shutdown"`
	Server   ServerConfig   `toml:"server" mapstructure:"server"`
	Log      *LogConfig     `toml:"log" mapstructure:"log"`
	History  HistoryConfig  `toml:"history" mapstructure:"history"`
}

type BackendConfig struct {
	Name     string   `toml:"name" mapstructure:"name"`
	Command  string   `toml:"command" mapstructure:"command"`
	WorkDir  string   `toml:"workdir" mapstructure:"workdir"`
	Host     string   `toml:"host" mapstructure:"host"`
	Port     int      `toml:"port" mapstructure:"port"`
	Env      []string `toml:"env" mapstructure:"env"`
	EnvFiles []string `toml:"env_files" mapstructure:"env_files"`
	UseOSEnv bool     `toml:"use_os_env" mapstructure:"use_os_env"`
}

type ProbeConfig struct {
	MaxAttempts int           `toml:"max_attempts" mapstructure:"max_attempts"`
	Interval    time.Duration `toml:"interval" mapstructure:"interval"`
	Timeout     time.Duration `toml:"timeout" mapstructure:"timeout"`
}

type ShutdownConfig struct {
	RequestTimeout time.Duration `toml:"request_timeout" mapstructure:"request_timeout"`
	GracePeriod    time.Duration `toml:"grace_period" mapstructure:"grace_period"`
}

type ServerConfig struct {
	Listen string `toml:"listen" mapstructure:"listen"`
}

type LogConfig struct {
	Level      string `toml:"level" mapstructure:"level"`
	Dir        string `toml:"dir" mapstructure:"dir"`
	Stdout     string `toml:"stdout" mapstructure:"stdout"`
	Stderr     string `toml:"stderr" mapstructure:"stderr"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

type HistoryConfig struct {
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

// Config is the resolved launcher configuration with defaults applied.
type Config struct {
	Backend    sidecar.Spec
	Endpoint   probe.Endpoint
	Probe      ProbeConfig
	Shutdown   ShutdownConfig
	Server     ServerConfig
	LogLevel   string
	HistoryDSN string
}

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 4000
)

// Load parses a TOML config file and resolves it into a Config. The
// backend command is the only required field.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}
	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return Config{}, err
	}
	return resolve(fc)
}

func resolve(fc FileConfig) (Config, error) {
	if fc.Backend.Command == "" {
		return Config{}, fmt.Errorf("backend command is required")
	}

	env, err := mergeEnv(fc.Backend)
	if err != nil {
		return Config{}, err
	}

	name := fc.Backend.Name
	if name == "" {
		name = "backend"
	}
	host := fc.Backend.Host
	if host == "" {
		host = DefaultHost
	}
	port := fc.Backend.Port
	if port == 0 {
		port = DefaultPort
	}

	var logCfg logger.Config
	level := "info"
	if fc.Log != nil {
		logCfg = logger.Config{
			Dir:        fc.Log.Dir,
			StdoutPath: fc.Log.Stdout,
			StderrPath: fc.Log.Stderr,
			MaxSizeMB:  fc.Log.MaxSizeMB,
			MaxBackups: fc.Log.MaxBackups,
			MaxAgeDays: fc.Log.MaxAgeDays,
			Compress:   fc.Log.Compress,
		}
		if fc.Log.Level != "" {
			level = fc.Log.Level
		}
	}

	cfg := Config{
		Backend: sidecar.Spec{
			Name:    name,
			Command: fc.Backend.Command,
			WorkDir: fc.Backend.WorkDir,
			Port:    port,
			Env:     env,
			Log:     logCfg,
		},
		Endpoint:   probe.Endpoint{Host: host, Port: port},
		Probe:      fc.Probe,
		Shutdown:   fc.Shutdown,
		Server:     fc.Server,
		LogLevel:   level,
		HistoryDSN: fc.History.DSN,
	}
	if cfg.Probe.MaxAttempts == 0 {
		cfg.Probe.MaxAttempts = probe.DefaultMaxAttempts
	}
	if cfg.Probe.Interval == 0 {
		cfg.Probe.Interval = probe.DefaultInterval
	}
	if cfg.Probe.Timeout == 0 {
		cfg.Probe.Timeout = probe.DefaultTimeout
	}
	return cfg, nil
}

// mergeEnv builds the backend's extra environment.
// Precedence: OS env (when enabled) provides base; then env_files in
// order; then the env list overrides last.
func mergeEnv(bc BackendConfig) ([]string, error) {
	m := make(map[string]string)
	if bc.UseOSEnv {
		for _, kv := range os.Environ() {
			if i := strings.IndexByte(kv, '='); i >= 0 {
				m[kv[:i]] = kv[i+1:]
			}
		}
	}
	for _, p := range bc.EnvFiles {
		pairs, err := loadEnvFile(p)
		if err != nil {
			return nil, err
		}
		for k, v := range pairs {
			m[k] = v
		}
	}
	for _, kv := range bc.Env {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			m[kv[:i]] = kv[i+1:]
		}
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out, nil
}

// loadEnvFile parses a simple .env file with KEY=VALUE lines (no
// export, no quotes). Lines starting with # are ignored.
func loadEnvFile(path string) (map[string]string, error) {
	clean := filepath.Clean(path)
	b, err := os.ReadFile(clean)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string)
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexByte(line, '='); i >= 0 {
			k := strings.TrimSpace(line[:i])
			v := strings.TrimSpace(line[i+1:])
			m[k] = v
		}
	}
	return m, nil
}
