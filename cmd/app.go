package cmd

import (
	"fmt"

	"coa/internal/app"
	"coa/internal/authflow"
	"coa/internal/formatting"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// newApplication bootstraps the application from the global flags. Logs go
// to the command's error stream so that stdout stays machine-readable.
func newApplication(cmd *cobra.Command, flowOpts ...authflow.Option) (*app.Application, error) {
	return app.NewApplication(app.NewConfig(configPath, logLevel, cmd.ErrOrStderr()), flowOpts...)
}

// newFormatter validates the --output flag and creates a formatter for it.
func newFormatter(output string, showSecrets bool) (formatting.Formatter, error) {
	format, err := formatting.ParseFormat(output)
	if err != nil {
		return nil, err
	}
	return formatting.NewFactory().CreateFormatter(formatting.Options{
		Format:      format,
		Color:       format == formatting.FormatTable,
		ShowSecrets: showSecrets,
	}), nil
}

// checkMark is printed in front of successful results.
func checkMark() string {
	return text.FgGreen.Sprint("✓")
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
