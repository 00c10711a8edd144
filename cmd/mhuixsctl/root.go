package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hujiyo/Mhuixs-sub001/config"
	"github.com/hujiyo/Mhuixs-sub001/internal/logger"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	configPath string
	logLevel   string
	logDir     string

	// cfg is the effective configuration, set by loadConfig.
	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "mhuixsctl",
	Short: "Drive the Mhuixs storage engines from YAML scripts",
	Long: `mhuixsctl runs operation scripts against an in-memory Mhuixs key store
and reports what the engines did: results per step, store and arena
statistics, and the effective engine configuration.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Engine configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Enable engine logging at this level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write engine logs to dated files in this directory")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// loadConfig builds cfg from defaults, the config file, MHUIXS_* variables
// and the logging flags, then initializes the logger.
func loadConfig() error {
	c := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		c = loaded
	}
	if err := c.ApplyEnv(); err != nil {
		return err
	}
	if logLevel != "" {
		c.Log.Enabled, c.Log.Level = true, logLevel
	}
	if logDir != "" {
		c.Log.Enabled, c.Log.Dir = true, logDir
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if err := logger.Init(c.LoggerOptions()); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	cfg = c
	printVerbose("Configuration loaded (config file: %q)\n", configPath)
	return nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
