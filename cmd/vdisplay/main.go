package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mscrnt/vdisplay/internal/logging"
	"github.com/mscrnt/vdisplay/internal/version"
	"github.com/mscrnt/vdisplay/pkg/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Loaded in PersistentPreRunE
	cfg       config.Config
	logCloser io.Closer
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vdisplay",
		Short: "Virtual display manager for Linux DRM",
		Long: `vdisplay generates synthetic EDIDs (EDID 1.4 with a CEA-861 HDR
extension) and attaches them to an unused DisplayPort or HDMI connector,
so streaming hosts can expose a display of any resolution and refresh rate.`,
		Version:       version.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			logCloser, err = logging.Setup(logging.Options{
				File:       cfg.LogPath(),
				MaxSizeMB:  cfg.Logs.MaxSizeMB,
				MaxAgeDays: cfg.Logs.MaxAgeDays,
				MaxBackups: cfg.Logs.MaxBackups,
				Compress:   cfg.Logs.Compress,
				Verbose:    verbose,
			})
			if err != nil {
				// Logging is optional; fall back to stderr only
				logCloser, _ = logging.Setup(logging.Options{Verbose: verbose})
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logCloser != nil {
				_ = logCloser.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print log output to stderr")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(connectCmd())
	rootCmd.AddCommand(disconnectCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(vicCmd())
	rootCmd.AddCommand(feasibleCmd())
	rootCmd.AddCommand(presetsCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(configCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get())
		},
	}
}
