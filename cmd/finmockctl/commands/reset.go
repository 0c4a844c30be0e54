package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finwire/finmock/cmd/finmockctl/cmdutil"
	"github.com/finwire/finmock/internal/cli/prompt"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset server state",
	Long: `Reset the finmock server to a clean slate.

Discards every session with its sequence counters, clears the audit
trail and the message archive, and disarms fault injection. Open
connections stay up; their counters restart from zero.

Examples:
  # Reset with confirmation
  finmockctl reset

  # Reset without confirmation
  finmockctl reset --force`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "Skip confirmation")
}

func runReset(cmd *cobra.Command, args []string) error {
	confirmed, err := prompt.ConfirmWithForce("Reset all server state (sessions, messages, faults)?", resetForce)
	if err != nil {
		return cmdutil.HandleAbort(err)
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	result, err := client.Reset()
	if err != nil {
		return fmt.Errorf("failed to reset server state: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, result, result.Message)
}
