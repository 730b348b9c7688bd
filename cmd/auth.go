package cmd

import (
	"fmt"

	"coa/internal/errdefs"

	"github.com/spf13/cobra"
)

var authQuiet bool

// authCmd represents the auth command group
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Obtain and manage tokens for registered clients",
	Long: `Obtain and manage OAuth2 tokens for registered clients.

Examples:
  coa auth login demo                  # Authorize demo in the browser
  coa auth login demo --no-browser     # Print the URL instead of opening it
  coa auth status demo                 # Show token state
  coa auth token demo                  # Print a valid access token
  coa auth refresh demo                # Force a token refresh
  coa auth logout demo                 # Remove stored tokens`,
}

// authTokenCmd represents the auth token command
var authTokenCmd = &cobra.Command{
	Use:   "token <client>",
	Short: "Print a valid access token",
	Long: `Print an access token for the client.

The stored token is printed as long as it has not expired. An expired token
is refreshed first and the new token is stored.

Examples:
  curl -H "Authorization: Bearer $(coa auth token demo)" https://api.coursera.org/api/externalBasicProfiles.v1?q=me`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthToken,
}

// authRefreshCmd represents the auth refresh command
var authRefreshCmd = &cobra.Command{
	Use:   "refresh <client>",
	Short: "Force token refresh",
	Long: `Exchange the stored refresh token for a new access token, whether or
not the current one has expired.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthRefresh,
}

// authLogoutCmd represents the auth logout command
var authLogoutCmd = &cobra.Command{
	Use:   "logout <client>",
	Short: "Clear stored tokens",
	Long: `Remove the client's stored tokens. The client stays registered; run
'coa auth login' to authorize it again.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthLogout,
}

// authPrint prints output only if the --quiet flag is not set.
// Use this for progress messages and non-essential output.
func authPrint(cmd *cobra.Command, format string, args ...interface{}) {
	if !authQuiet {
		printf(cmd, format, args...)
	}
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authTokenCmd)
	authCmd.AddCommand(authRefreshCmd)
	authCmd.AddCommand(authLogoutCmd)

	authCmd.PersistentFlags().BoolVarP(&authQuiet, "quiet", "q", false, "Suppress progress messages")
}

func runAuthToken(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	defer application.Close()

	services := application.Services()
	client, err := services.Registry.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	token, err := services.Tokens.GetAccessToken(cmd.Context(), client.Name)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return fmt.Errorf("%w; run 'coa auth login %s' first", err, client.Name)
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func runAuthRefresh(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	defer application.Close()

	services := application.Services()
	client, err := services.Registry.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if _, err := services.Refresher.Refresh(cmd.Context(), client.Name); err != nil {
		return err
	}

	rec, err := services.Tokens.Read(cmd.Context(), client.Name)
	if err != nil {
		return err
	}
	authPrint(cmd, "%s Refreshed access token for %s (expires %s)\n", checkMark(), client.Name, rec.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	defer application.Close()

	services := application.Services()
	client, err := services.Registry.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if err := services.Tokens.Delete(cmd.Context(), client.Name); err != nil {
		if errdefs.IsNotFound(err) {
			authPrint(cmd, "No stored tokens for %s\n", client.Name)
			return nil
		}
		return err
	}

	authPrint(cmd, "%s Logged out %s\n", checkMark(), client.Name)
	return nil
}
