package main

import "time"

// RunFlags Flag structs to decouple cobra from logic for testing.
type RunFlags struct {
	ConfigPath string
	Command    string
	WorkDir    string
	Port       int
	EnvKVs     []string
	LogLevel   string
}

type StatusFlags struct {
	// Remote launcher connection
	APIUrl     string
	APITimeout time.Duration
}

type StopFlags struct {
	// Remote launcher connection
	APIUrl     string
	APITimeout time.Duration
}

type KeystrokeFlags struct {
	Action string
	Key    string
}
