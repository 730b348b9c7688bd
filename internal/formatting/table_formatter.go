package formatting

import (
	"fmt"
	"time"

	"coa/internal/registry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{
		options: options,
	}
}

// FormatClients formats clients as a table
func (f *TableFormatter) FormatClients(clients []registry.ClientConfig) (string, error) {
	if len(clients) == 0 {
		return f.formatEmptyMessage("No clients registered"), nil
	}

	t := f.createTable()
	t.AppendHeader(table.Row{f.header("NAME"), f.header("CLIENT ID"), f.header("SECRET"), f.header("SCOPE")})
	for _, v := range clientViews(clients, f.options.ShowSecrets) {
		t.AppendRow(table.Row{v.Name, v.ClientID, v.SecretKey, v.Scope})
	}
	return t.Render() + "\n", nil
}

// FormatClient formats a single client as key-value pairs
func (f *TableFormatter) FormatClient(client registry.ClientConfig) (string, error) {
	v := NewClientView(client, f.options.ShowSecrets)

	t := f.createTable()
	t.AppendHeader(table.Row{f.header("KEY"), f.header("VALUE")})
	t.AppendRows([]table.Row{
		{f.key("name"), v.Name},
		{f.key("clientId"), v.ClientID},
		{f.key("secretKey"), v.SecretKey},
		{f.key("scope"), v.Scope},
	})
	return t.Render() + "\n", nil
}

// FormatTokenStatus formats token status as key-value pairs
func (f *TableFormatter) FormatTokenStatus(status TokenStatus) (string, error) {
	t := f.createTable()
	t.AppendHeader(table.Row{f.header("KEY"), f.header("VALUE")})
	t.AppendRow(table.Row{f.key("client"), status.Client})

	switch {
	case !status.Authenticated:
		t.AppendRow(table.Row{f.key("status"), f.paint(text.FgYellow, "Not authenticated")})
	case status.Expired:
		t.AppendRow(table.Row{f.key("status"), f.paint(text.FgYellow, "Expired (refreshed on next use)")})
	default:
		t.AppendRow(table.Row{f.key("status"), f.paint(text.FgGreen, "Authenticated")})
	}

	if !status.ExpiresAt.IsZero() {
		t.AppendRow(table.Row{f.key("expires"), FormatExpiryWithDirection(status.ExpiresAt, time.Now())})
	}
	if status.Authenticated {
		refresh := f.paint(text.FgGreen, "Available")
		if !status.HasRefreshToken {
			refresh = f.paint(text.FgRed, "Missing")
		}
		t.AppendRow(table.Row{f.key("refresh"), refresh})
	}
	if status.Location != "" {
		t.AppendRow(table.Row{f.key("location"), status.Location})
	}
	return t.Render() + "\n", nil
}

// GetOptions returns the current formatter options
func (f *TableFormatter) GetOptions() Options {
	return f.options
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) header(s string) string {
	return f.paint(text.FgHiCyan, s)
}

func (f *TableFormatter) key(s string) string {
	return f.paint(text.FgHiCyan, s)
}

func (f *TableFormatter) paint(c text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return c.Sprint(s)
}

// formatEmptyMessage formats empty result messages
func (f *TableFormatter) formatEmptyMessage(message string) string {
	return f.paint(text.FgYellow, message) + "\n"
}

// FormatExpiryWithDirection renders t relative to now, e.g.
// "2024-01-02 15:04:05 (in 29m)" or "... (3m ago)".
func FormatExpiryWithDirection(t, now time.Time) string {
	d := t.Sub(now).Round(time.Second)
	stamp := t.Local().Format("2006-01-02 15:04:05")
	if d >= 0 {
		return fmt.Sprintf("%s (in %s)", stamp, d)
	}
	return fmt.Sprintf("%s (%s ago)", stamp, -d)
}
