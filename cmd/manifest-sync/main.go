package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/open-edge-platform/manifest-sync/internal/config"
	"github.com/open-edge-platform/manifest-sync/internal/logger"
)

var (
	cfgFile  string
	logLevel string
)

func main() {
	root := createRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func createRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "manifest-sync",
		Short: "Keep cached package manifests in sync with a remote origin",
		Long: `manifest-sync keeps a locally cached package manifest synchronized with
a remote origin served from a main and a fallback mirror. It fetches the
manifest only when the remote digest differs from the cached one and then
re-validates the local content cache against the new manifest.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "manifest-sync.yml", "path to the configuration file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	root.PersistentFlags().BoolP("verbose", "v", false, "shorthand for --log-level debug")

	root.AddCommand(createUpdateCommand())
	root.AddCommand(createVerifyCommand())
	attachLoggingHooks(root)
	return root
}

// resolveRequestedLogLevel prefers an explicit --log-level over the
// --verbose shorthand; empty means "defer to the config file".
func resolveRequestedLogLevel(cmd *cobra.Command) string {
	if logLevel != "" {
		return logLevel
	}
	if cmd == nil {
		return ""
	}
	var f *pflag.Flag
	if f = cmd.Flags().Lookup("verbose"); f == nil {
		return ""
	}
	if f.Changed && f.Value.String() == "true" {
		return "debug"
	}
	return ""
}

// attachLoggingHooks loads the configuration and initializes the logger
// before any subcommand runs.
func attachLoggingHooks(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			level := resolveRequestedLogLevel(cmd)
			if level == "" {
				level = cfg.Logging.Level
			}
			return logger.Init(level, cfg.Logging.File, cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups)
		}
	}
}
