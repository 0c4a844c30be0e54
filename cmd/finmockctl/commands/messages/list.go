package messages

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/finwire/finmock/cmd/finmockctl/cmdutil"
	"github.com/finwire/finmock/internal/cli/output"
	"github.com/finwire/finmock/pkg/apiclient"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent messages",
	Long: `List the most recent audit entries in chronological order.

Examples:
  # List the last 50 messages (server default)
  finmockctl messages list

  # List the last 10 messages
  finmockctl messages list --limit 10

  # List as JSON
  finmockctl messages list -o json`,
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 0, "Maximum entries to return (default: server default)")
}

// MessageTable renders audit entries as a table.
type MessageTable []apiclient.AuditEntry

// Headers implements TableRenderer.
func (mt MessageTable) Headers() []string {
	return []string{"ID", "TIME", "SESSION", "DIR", "TYPE", "SEQ", "PREVIEW"}
}

// Rows implements TableRenderer.
func (mt MessageTable) Rows() [][]string {
	rows := make([][]string, 0, len(mt))
	for _, entry := range mt {
		rows = append(rows, []string{
			shortID(entry.ID),
			entry.Timestamp.Local().Format("15:04:05"),
			entry.SessionID,
			entry.Direction,
			cmdutil.EmptyOr(detailString(entry.Details, "msg_type"), "-"),
			cmdutil.EmptyOr(detailString(entry.Details, "sequence_number"), "-"),
			truncate(entry.Preview, 48),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	list, err := client.Messages(listLimit)
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}

	if err := cmdutil.PrintOutput(os.Stdout, list, len(list.Messages) == 0, "No messages recorded yet.", MessageTable(list.Messages)); err != nil {
		return err
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err == nil && format == output.FormatTable && len(list.Messages) > 0 {
		fmt.Printf("\nShowing %d of %d messages\n", len(list.Messages), list.TotalCount)
	}
	return nil
}

// shortID returns the first UUID group, enough to disambiguate in a table.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// detailString extracts a display string from the parsed-details map.
// Numbers arrive as float64 after JSON decoding.
func detailString(details map[string]any, key string) string {
	if details == nil {
		return ""
	}
	switch v := details[key].(type) {
	case string:
		return v
	case float64:
		return strconv.Itoa(int(v))
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}
