// Package messages implements audit-trail inspection commands for finmockctl.
package messages

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for message inspection.
var Cmd = &cobra.Command{
	Use:   "messages",
	Short: "Inspect the message audit trail",
	Long: `Inspect messages that crossed the FIN wire, in both directions.

Every inbound message and every response is recorded in the audit trail
with a bounded preview. Servers with an archive configured also retain
the full raw wire text, shown by 'messages get'.

Examples:
  # List the most recent messages
  finmockctl messages list

  # Show a single message with its full wire text
  finmockctl messages get 7f3c9a12-5b0e-4c44-9d0a-2f8e6b1c3d4e`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
}
