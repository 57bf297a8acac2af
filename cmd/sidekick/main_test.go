package main

import (
	"testing"
)

func TestBuildRootHasSubcommands(t *testing.T) {
	root := buildRoot()
	want := map[string]bool{"run": false, "status": false, "stop": false, "keystroke": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("subcommand %q missing", name)
		}
	}
}

func TestResolveConfigFromFlags(t *testing.T) {
	c := command{}
	conf, err := c.resolveConfig(RunFlags{Command: "./server", Port: 5005, EnvKVs: []string{"A=1"}})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if conf.Backend.Command != "./server" || conf.Backend.Port != 5005 {
		t.Fatalf("backend = %+v", conf.Backend)
	}
	if conf.Endpoint.Port != 5005 {
		t.Fatalf("endpoint = %+v", conf.Endpoint)
	}
}

func TestResolveConfigDefaultsPort(t *testing.T) {
	c := command{}
	conf, err := c.resolveConfig(RunFlags{Command: "./server"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if conf.Backend.Port != 4000 || conf.Endpoint.Port != 4000 {
		t.Fatalf("expected default port 4000, got %+v", conf)
	}
}

func TestResolveConfigRequiresCommandOrConfig(t *testing.T) {
	c := command{}
	if _, err := c.resolveConfig(RunFlags{}); err == nil {
		t.Fatalf("expected error without --config or --command")
	}
}

func TestKeystrokeRejectsUnknownAction(t *testing.T) {
	c := command{}
	if err := c.Keystroke(KeystrokeFlags{Action: "hold", Key: "W"}); err == nil {
		t.Fatalf("expected error for unknown action")
	}
}

func TestKeystrokeTap(t *testing.T) {
	c := command{}
	if err := c.Keystroke(KeystrokeFlags{Action: "tap", Key: "CTRL+S"}); err != nil {
		t.Fatalf("keystroke: %v", err)
	}
}
