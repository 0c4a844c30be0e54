package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/finwire/finmock/cmd/finmockctl/cmdutil"
	"github.com/finwire/finmock/internal/cli/output"
	"github.com/finwire/finmock/pkg/apiclient"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the state of the connected finmock server.

Shows every known session with its sequence counters, the armed
fault-injection state, and the audit trail size.

Examples:
  # Check status of connected server
  finmockctl status

  # Check a specific server
  finmockctl status --server http://fin-mock:8104

  # Output as JSON
  finmockctl status -o json`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	status, err := client.Status()
	if err != nil {
		return fmt.Errorf("failed to get server status: %w", err)
	}

	// Output based on format
	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	default:
		printStatusTable(cmdutil.GetServerURL(), status)
	}

	return nil
}

func printStatusTable(serverURL string, status *apiclient.Status) {
	fmt.Println()
	fmt.Println("finmock Server Status")
	fmt.Println("=====================")
	fmt.Println()
	fmt.Printf("  Server:      %s\n", serverURL)
	fmt.Printf("  Status:      \033[32m● %s\033[0m\n", status.Status)
	fmt.Printf("  Sessions:    %d\n", status.SessionCount)
	fmt.Printf("  Messages:    %d\n", status.MessageCount)
	fmt.Println()

	fmt.Println("  Fault injection:")
	fmt.Printf("    Mode:      %s\n", cmdutil.EmptyOr(status.ErrorMode, "none"))
	if status.LatencyMS > 0 {
		fmt.Printf("    Latency:   %d ms\n", status.LatencyMS)
	}
	if len(status.IgnoredSequences) > 0 {
		fmt.Printf("    Ignored:   %v\n", status.IgnoredSequences)
	}
	fmt.Println()

	if len(status.SessionDetails) == 0 {
		fmt.Println("  No sessions yet.")
		fmt.Println()
		return
	}

	// Stable ordering for the session table
	ids := make([]string, 0, len(status.SessionDetails))
	for id := range status.SessionDetails {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	table := output.NewTableData("SESSION", "REMOTE", "CONNECTED", "AUTH", "IN SEQ", "OUT SEQ", "LAST ACTIVITY")
	for _, id := range ids {
		sess := status.SessionDetails[id]
		table.AddRow(
			sess.ID,
			sess.RemoteAddr,
			cmdutil.BoolToYesNo(sess.Connected),
			cmdutil.BoolToYesNo(sess.Authenticated),
			fmt.Sprintf("%d", sess.InputSeq),
			fmt.Sprintf("%d", sess.OutputSeq),
			sess.LastActivity.Local().Format("15:04:05"),
		)
	}
	_ = output.PrintTable(os.Stdout, table)
	fmt.Println()
}
