package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/order-incidents/internal/app"
)

var (
	flagConfig   string
	flagDB       string
	flagLogLevel string
	flagJSON     bool
)

var rootCmd = &cobra.Command{
	Use:   "incidents",
	Short: "Reconcile order sheets with reported production incidents",
	Long: `Import order and incident spreadsheets, merge reported issues into one
incident per order, and track each incident from "waiting for fix" to done.`,
	SilenceUsage: true,
}

// openApp opens the ledger using the global flags. Callers must Close it.
func openApp(cmd *cobra.Command) (*app.App, error) {
	return app.Open(cmdContext(cmd), app.Options{
		ConfigPath:  flagConfig,
		StoragePath: flagDB,
		LogLevel:    flagLogLevel,
		LogOutput:   cmd.ErrOrStderr(),
	})
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// withApp runs fn against an opened app and closes it afterwards.
func withApp(fn func(cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.config/order-incidents/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (overrides storage.path)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (overrides log.level)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "print JSON instead of tables")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
