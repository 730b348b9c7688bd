package cmd

import (
	"fmt"
	"time"

	"coa/internal/errdefs"
	"coa/internal/formatting"

	"github.com/spf13/cobra"
)

var statusOutput string

// authStatusCmd represents the auth status command
var authStatusCmd = &cobra.Command{
	Use:   "status <client>",
	Short: "Show authentication status",
	Long: `Show whether the client has stored tokens, when its access token expires
and whether a refresh token is available. Token values are never printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthStatus,
}

func init() {
	authStatusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table, json, yaml)")
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(statusOutput, false)
	if err != nil {
		return err
	}

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

	status := formatting.TokenStatus{Client: client.Name}
	rec, err := services.Tokens.Read(cmd.Context(), client.Name)
	switch {
	case err == nil:
		status = formatting.NewTokenStatus(rec, time.Now(), services.Tokens.Location(client.Name))
	case !errdefs.IsNotFound(err):
		return err
	}

	out, err := formatter.FormatTokenStatus(status)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
