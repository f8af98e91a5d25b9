package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sundayezeilo/shortstore/internal/app"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

var opts app.Options

var rootCmd = &cobra.Command{
	Use:   "shortstore",
	Short: "Interactive in-memory URL shortening session",
	Long: `shortstore maps long URLs to short aliases under one configured domain
and keeps every record in memory for the lifetime of the session.

Commands are read line by line from stdin; every store operation answers
with a single JSON envelope on stdout. Logs go to stderr.

Example:
  shortstore --domain short.ly --prompt`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("shortstore %s (commit %s, built %s, %s)\n",
			version, commit, buildTime, runtime.Version())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&opts.Domain, "domain", "d", "", "short domain served by the store (overrides SHORTSTORE_DOMAIN)")
	rootCmd.Flags().IntVarP(&opts.AliasLength, "alias-length", "l", 0, "alias length in characters (overrides SHORTSTORE_ALIAS_LENGTH)")
	rootCmd.Flags().StringVarP(&opts.AliasStrategy, "strategy", "s", "", "alias strategy, random or sequence (overrides SHORTSTORE_ALIAS_STRATEGY)")
	rootCmd.Flags().BoolVarP(&opts.Prompt, "prompt", "p", false, "print a prompt before each command")
	rootCmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress log output")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	// Initialize application
	application, err := app.New(opts)
	if err != nil {
		return err
	}
	defer application.Shutdown()

	// Drive the session (blocks until input ends or the context is canceled)
	return application.Run(ctx)
}
