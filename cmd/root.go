package cmd

import (
	"os"

	"coa/internal/errdefs"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeInvalid indicates rejected input: a validation failure or a
	// conflicting registration.
	ExitCodeInvalid = 2
	// ExitCodeNotFound indicates an unknown client or missing tokens.
	ExitCodeNotFound = 3
	// ExitCodeServer indicates the provider rejected a request or could not be reached.
	ExitCodeServer = 4
	// ExitCodePortInUse indicates the callback port is held by another login.
	ExitCodePortInUse = 5
	// ExitCodeIO indicates the credential store could not be read or written.
	ExitCodeIO = 6
)

var (
	configPath string
	logLevel   string
)

// rootCmd represents the base command for the coa application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "coa",
	Short: "Manage Coursera OAuth2 client credentials",
	Long: `coa registers Coursera OAuth2 client applications, obtains tokens for them
through the browser-based authorization code flow and keeps their access
tokens fresh.

Credentials are stored in ~/.coursera unless --config-path or
COA_CONFIG_PATH points elsewhere.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "coa version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errdefs.IsValidation(err), errdefs.IsConflict(err):
		return ExitCodeInvalid
	case errdefs.IsNotFound(err):
		return ExitCodeNotFound
	case errdefs.IsPortInUse(err):
		return ExitCodePortInUse
	case errdefs.IsServer(err):
		return ExitCodeServer
	case errdefs.IsIO(err):
		return ExitCodeIO
	default:
		return ExitCodeError
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", "", "Configuration directory (default $COA_CONFIG_PATH or ~/.coursera)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newVersionCmd())
}
