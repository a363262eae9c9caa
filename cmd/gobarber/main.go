package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/gobarber/web/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔═╗┌─┐╔╗ ┌─┐┬─┐┌┐ ┌─┐┬─┐
  ║ ╦│ │╠╩╗├─┤├┬┘├┴┐├┤ ├┬┘
  ╚═╝└─┘╚═╝┴ ┴┴└─└─┘└─┘┴└─
`

func main() {
	if err := rootCmd().Execute(); err != nil {
		apperrors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gobarber",
		Short: "Web front end for the GoBarber scheduling service",
		Long: `GoBarber serves the sign-in, sign-up, password recovery and
profile flows of the GoBarber web app, with per-session toast
notifications delivered over HTTP and WebSocket.

  • serve   runs the web server against a backend API
  • devapi  runs an in-memory backend for local development`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Config file (default: gobarber.yaml in the working directory)")

	cmd.AddCommand(
		serveCmd(),
		devAPICmd(),
		versionCmd(),
	)
	return cmd
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
