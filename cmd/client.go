package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Client flags
var (
	clientID          string
	clientSecretKey   string
	clientScope       string
	clientOutput      string
	clientShowSecrets bool
)

// clientCmd represents the client command group
var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage registered OAuth2 clients",
	Long: `Manage the OAuth2 client applications coa can authorize.

Each client is registered under a local name together with the client ID and
secret key issued by Coursera. Names and client IDs are unique; either can be
used to look a client up.

Examples:
  coa client add demo --client-id abc --secret-key s3cr3t
  coa client add biz --client-id def --secret-key s3cr3t --scope view_profile,access_business_api
  coa client list
  coa client get demo -o yaml
  coa client delete demo`,
}

var clientAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a client",
	Long: `Register a client application.

The scope defaults to view_profile. Requesting access_business_api always
includes view_profile as well.`,
	Args: cobra.ExactArgs(1),
	RunE: runClientAdd,
}

var clientGetCmd = &cobra.Command{
	Use:   "get <name|client-id>",
	Short: "Show a registered client",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientGet,
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered clients",
	Args:  cobra.NoArgs,
	RunE:  runClientList,
}

var clientDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a registered client",
	Long: `Remove a registered client by name.

Stored tokens are kept; use 'coa auth logout <name>' to remove them.`,
	Args: cobra.ExactArgs(1),
	RunE: runClientDelete,
}

func init() {
	rootCmd.AddCommand(clientCmd)
	clientCmd.AddCommand(clientAddCmd)
	clientCmd.AddCommand(clientGetCmd)
	clientCmd.AddCommand(clientListCmd)
	clientCmd.AddCommand(clientDeleteCmd)

	clientAddCmd.Flags().StringVar(&clientID, "client-id", "", "Client ID issued by Coursera")
	clientAddCmd.Flags().StringVar(&clientSecretKey, "secret-key", "", "Secret key issued by Coursera")
	clientAddCmd.Flags().StringVar(&clientScope, "scope", "", "Requested scope: view_profile (default) or view_profile,access_business_api")

	for _, c := range []*cobra.Command{clientGetCmd, clientListCmd} {
		c.Flags().StringVarP(&clientOutput, "output", "o", "table", "Output format (table, json, yaml)")
		c.Flags().BoolVar(&clientShowSecrets, "show-secrets", false, "Print secret keys in full")
	}
}

func runClientAdd(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	defer application.Close()

	client, err := application.Services().Registry.Add(cmd.Context(), args[0], clientID, clientSecretKey, clientScope)
	if err != nil {
		return err
	}

	printf(cmd, "%s Registered client %s (client ID %s, scope %s)\n", checkMark(), client.Name, client.ClientID, client.Scope)
	return nil
}

func runClientGet(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(clientOutput, clientShowSecrets)
	if err != nil {
		return err
	}

	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	defer application.Close()

	client, err := application.Services().Registry.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out, err := formatter.FormatClient(client)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func runClientList(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(clientOutput, clientShowSecrets)
	if err != nil {
		return err
	}

	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	defer application.Close()

	clients, err := application.Services().Registry.List(cmd.Context())
	if err != nil {
		return err
	}

	out, err := formatter.FormatClients(clients)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func runClientDelete(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.Services().Registry.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}

	printf(cmd, "%s Deleted client %s\n", checkMark(), args[0])
	return nil
}
