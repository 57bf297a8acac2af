package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRoot creates the root command with all subcommands attached.
func buildRoot() *cobra.Command {
	runFlags := &RunFlags{}
	statusFlags := &StatusFlags{}
	stopFlags := &StopFlags{}
	keystrokeFlags := &KeystrokeFlags{}

	sidekickCommand := command{}

	root := createRootCommand()
	root.AddCommand(
		createRunCommand(sidekickCommand, runFlags),
		createStatusCommand(sidekickCommand, statusFlags),
		createStopCommand(sidekickCommand, stopFlags),
		createKeystrokeCommand(sidekickCommand, keystrokeFlags),
	)
	return root
}

func createRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sidekick",
		Short: "Backend sidecar launcher and lifecycle supervisor",
		Long: `Sidekick launches a backend process, waits for it to report healthy,
and supervises it until shutdown.

Examples:
  sidekick run --config=sidekick.toml
  sidekick run --command="./server" --port=4000
  sidekick status --api-url=http://127.0.0.1:9090
  sidekick stop`,
	}
}

// createRunCommand creates the run subcommand
func createRunCommand(sidekickCommand command, runFlags *RunFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Launch and supervise the backend",
		Long: `Launch the backend process, poll its health endpoint until ready,
then keep it running until an exit is requested.

Examples:
  sidekick run --config=sidekick.toml
  sidekick run --command="./notes-server" --port=5005 --env=MIX_ENV=prod`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if code := sidekickCommand.Run(*runFlags); code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runFlags.ConfigPath, "config", "", "path to TOML config file")
	cmd.Flags().StringVar(&runFlags.Command, "command", "", "backend command (when no config file is used)")
	cmd.Flags().StringVar(&runFlags.WorkDir, "work-dir", "", "backend working directory")
	cmd.Flags().IntVar(&runFlags.Port, "port", 0, "backend HTTP port (default 4000)")
	cmd.Flags().StringSliceVar(&runFlags.EnvKVs, "env", nil, "extra KEY=VALUE pairs for the backend")
	cmd.Flags().StringVar(&runFlags.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

// createStatusCommand creates the status subcommand
func createStatusCommand(sidekickCommand command, statusFlags *StatusFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show launcher and backend status",
		Long: `Query a running launcher's control API and print its lifecycle state
and backend snapshot as JSON.

Examples:
  sidekick status
  sidekick status --api-url=http://127.0.0.1:9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sidekickCommand.Status(*statusFlags)
		},
	}

	cmd.Flags().StringVar(&statusFlags.APIUrl, "api-url", "http://127.0.0.1:9090", "launcher control API URL")
	cmd.Flags().DurationVar(&statusFlags.APITimeout, "api-timeout", 10*time.Second, "request timeout")

	return cmd
}

// createStopCommand creates the stop subcommand
func createStopCommand(sidekickCommand command, stopFlags *StopFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Request launcher shutdown",
		Long: `Ask a running launcher to shut its backend down gracefully and exit.

Examples:
  sidekick stop
  sidekick stop --api-url=http://127.0.0.1:9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sidekickCommand.Stop(*stopFlags)
		},
	}

	cmd.Flags().StringVar(&stopFlags.APIUrl, "api-url", "http://127.0.0.1:9090", "launcher control API URL")
	cmd.Flags().DurationVar(&stopFlags.APITimeout, "api-timeout", 10*time.Second, "request timeout")

	return cmd
}

// createKeystrokeCommand creates the keystroke subcommand
func createKeystrokeCommand(sidekickCommand command, keystrokeFlags *KeystrokeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keystroke <action> <key>",
		Short: "Print the key-event plan for a key combination",
		Long: `Parse a key combination and print the ordered key events an input
backend would replay. Actions: down (press and hold), up (release),
tap (press and release).

Examples:
  sidekick keystroke tap W
  sidekick keystroke down CTRL+S
  sidekick keystroke tap SHIFT+F1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			keystrokeFlags.Action = args[0]
			keystrokeFlags.Key = args[1]
			return sidekickCommand.Keystroke(*keystrokeFlags)
		},
	}
	return cmd
}
