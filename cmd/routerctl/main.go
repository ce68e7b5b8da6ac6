// Routerctl is a command line client for the SOAP control API of home
// routers that speak the Netgear Genie protocol.
//
// It lists attached devices, reads the traffic meter, and allows or
// blocks devices by MAC address. Router profiles are kept in a YAML
// configuration file; passwords never are.
//
// Usage:
//
//	routerctl [command] [flags]
//
// See 'routerctl --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/routerctl/internal/logging"
	"github.com/muurk/routerctl/internal/router"
	"github.com/muurk/routerctl/internal/ui"
	"github.com/muurk/routerctl/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "routerctl",
	Short: "Home router control utility",
	Long: `A command line client for the SOAP API of Netgear home routers.

Lists attached devices, reads today's traffic meter, and allows or
blocks devices by MAC address. Connection details can be stored as
named profiles; the password is taken from --password, the
ROUTERCTL_PASSWORD environment variable, or a prompt.`,
	Version:       version.Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "routerctl %s\n", version.Full())
	},
}

// printError reports a failed command. Router errors get a failure box
// with troubleshooting advice unless JSON output was requested.
func printError(err error) {
	if outputFormat == formatJSON || !ui.IsTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	var rErr *router.RouterError
	if !errors.As(err, &rErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	ui.NewPrinter(os.Stderr).PrintError(router.GetShortErrorMessage(err), err, router.GetTroubleshootingHint(err))
}
