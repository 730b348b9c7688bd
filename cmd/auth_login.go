package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coa/internal/authflow"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var loginNoBrowser bool

// authLoginCmd represents the auth login command
var authLoginCmd = &cobra.Command{
	Use:   "login <client>",
	Short: "Authorize a client in the browser",
	Long: `Run the OAuth2 authorization code flow for a registered client.

The authorize URL is opened in the browser and a local listener waits for
Coursera's redirect on the registered callback port. The redirect is handled
once; the code it carries is exchanged for tokens which are then stored.

Only one login can wait for its redirect at a time. There is no timeout;
press Ctrl+C to give up.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthLogin,
}

func init() {
	authLoginCmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false, "Print the authorize URL instead of opening a browser")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	var opts []authflow.Option
	if loginNoBrowser {
		opts = append(opts, authflow.WithBrowserOpener(nil))
	}

	application, err := newApplication(cmd, opts...)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flow, err := application.Services().Coordinator.Start(ctx, args[0])
	if err != nil {
		return err
	}
	defer flow.Close()

	if loginNoBrowser {
		authPrint(cmd, "Open the following URL to authorize %s:\n\n  %s\n\n", flow.ClientName, flow.AuthURL)
	} else {
		authPrint(cmd, "Opening browser to authorize %s.\nIf it does not open, visit:\n\n  %s\n\n", flow.ClientName, flow.AuthURL)
	}

	var s *spinner.Spinner
	if !authQuiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
		s.Suffix = " Waiting for the redirect on " + application.Settings().CallbackBase()
		s.Start()
	}

	rec, err := flow.Wait(ctx)
	if s != nil {
		s.Stop()
	}
	if err != nil {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		return err
	}

	authPrint(cmd, "%s Authorized %s (access token expires %s)\n", checkMark(), rec.ClientName, rec.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}
