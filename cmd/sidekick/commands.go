package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/loykin/sidekick"
	cfg "github.com/loykin/sidekick/internal/config"
	"github.com/loykin/sidekick/internal/keymap"
	"github.com/loykin/sidekick/internal/logger"
	"github.com/loykin/sidekick/pkg/client"
)

type command struct{}

// Run launches the backend and blocks until it terminates. The return
// value is the process exit code.
func (c command) Run(f RunFlags) int {
	conf, err := c.resolveConfig(f)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log := logger.New(logger.ParseLevel(conf.LogLevel), os.Stderr)

	if err := sidekick.RegisterMetricsDefault(); err != nil {
		log.Warn("failed to register metrics", "error", err)
	}

	var sink sidekick.HistorySink
	if conf.HistoryDSN != "" {
		sink, err = sidekick.NewHistorySink(conf.HistoryDSN)
		if err != nil {
			log.Warn("history sink disabled", "error", err)
		}
	}

	launcher := sidekick.New(sidekick.Options{
		Spec:            conf.Backend,
		Endpoint:        conf.Endpoint,
		MaxAttempts:     conf.Probe.MaxAttempts,
		Interval:        conf.Probe.Interval,
		ProbeTimeout:    conf.Probe.Timeout,
		ShutdownTimeout: conf.Shutdown.RequestTimeout,
		GracePeriod:     conf.Shutdown.GracePeriod,
		Sink:            sink,
		Logger:          log,
	})

	var server *http.Server
	if conf.Server.Listen != "" {
		server, err = sidekick.NewHTTPServer(conf.Server.Listen, "", launcher)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to start control server: %v\n", err)
			return 1
		}
		log.Info("control server listening", "addr", conf.Server.Listen)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		launcher.RequestExit()
	}()

	code := launcher.Run(context.Background())
	if server != nil {
		_ = server.Close()
	}
	return code
}

func (c command) resolveConfig(f RunFlags) (cfg.Config, error) {
	if f.ConfigPath != "" {
		return sidekick.LoadConfig(f.ConfigPath)
	}
	if f.Command == "" {
		return cfg.Config{}, fmt.Errorf("either --config or --command is required")
	}
	conf := cfg.Config{
		Backend: sidekick.Spec{
			Name:    "backend",
			Command: f.Command,
			WorkDir: f.WorkDir,
			Port:    f.Port,
			Env:     f.EnvKVs,
		},
		Endpoint: sidekick.Endpoint{Host: cfg.DefaultHost, Port: f.Port},
		LogLevel: f.LogLevel,
	}
	if conf.Backend.Port == 0 {
		conf.Backend.Port = cfg.DefaultPort
		conf.Endpoint.Port = cfg.DefaultPort
	}
	return conf, nil
}

// Status queries a running launcher's control API.
func (c command) Status(f StatusFlags) error {
	api := client.New(client.Config{BaseURL: f.APIUrl, Timeout: f.APITimeout})
	ctx, cancel := context.WithTimeout(context.Background(), f.APITimeout)
	defer cancel()

	status, err := api.Status(ctx)
	if err != nil {
		return err
	}
	printJSON(status)
	return nil
}

// Stop asks a running launcher to shut its backend down.
func (c command) Stop(f StopFlags) error {
	api := client.New(client.Config{BaseURL: f.APIUrl, Timeout: f.APITimeout})
	ctx, cancel := context.WithTimeout(context.Background(), f.APITimeout)
	defer cancel()

	if err := api.RequestExit(ctx); err != nil {
		return err
	}
	fmt.Println("Exit requested")
	return nil
}

// Keystroke parses a key combination and prints the resulting event
// plan as JSON.
func (c command) Keystroke(f KeystrokeFlags) error {
	action, ok := keymap.ParseAction(f.Action)
	if !ok {
		return fmt.Errorf("unknown action %q (want down, up or tap)", f.Action)
	}
	chord := keymap.ParseChord(f.Key, nil)
	printJSON(keymap.Plan(action, chord))
	return nil
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		return
	}
	fmt.Println(string(b))
}
