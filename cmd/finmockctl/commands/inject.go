package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finwire/finmock/cmd/finmockctl/cmdutil"
	"github.com/finwire/finmock/internal/cli/prompt"
	"github.com/finwire/finmock/pkg/apiclient"
)

var (
	injectType      string
	injectLatencyMS int
	injectSequences string
)

var injectCmd = &cobra.Command{
	Use:   "inject",
	Short: "Arm fault injection",
	Long: `Arm a fault mode on the finmock server.

Armed faults apply to the next inbound message (or, for latency and
ignore_sequence, to every matching message until reset).

Error types:
  none             Clear the armed fault mode
  nack_next        NACK the next message with an adversarial reason
  drop_connection  Drop the connection when the next message arrives
  timeout          Stall without responding to the next message
  latency          Delay every response (requires --latency-ms)
  ignore_sequence  Silently swallow specific sequence numbers (requires --sequences)

Examples:
  # NACK the next message
  finmockctl inject --type nack_next

  # Add 750ms to every response
  finmockctl inject --type latency --latency-ms 750

  # Swallow sequences 7 and 9 without acknowledging
  finmockctl inject --type ignore_sequence --sequences 7,9

  # Interactive selection
  finmockctl inject`,
	RunE: runInject,
}

func init() {
	injectCmd.Flags().StringVarP(&injectType, "type", "t", "", "Error type to arm")
	injectCmd.Flags().IntVar(&injectLatencyMS, "latency-ms", 0, "Response delay in milliseconds (for latency)")
	injectCmd.Flags().StringVar(&injectSequences, "sequences", "", "Comma-separated sequence numbers (for ignore_sequence)")
}

func runInject(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	errorType := injectType
	if errorType == "" {
		options := []prompt.SelectOption{
			{Label: "nack_next", Value: "nack_next", Description: "NACK the next message"},
			{Label: "drop_connection", Value: "drop_connection", Description: "Drop the connection on the next message"},
			{Label: "timeout", Value: "timeout", Description: "Stall without responding to the next message"},
			{Label: "latency", Value: "latency", Description: "Delay every response"},
			{Label: "ignore_sequence", Value: "ignore_sequence", Description: "Silently swallow specific sequences"},
			{Label: "none", Value: "none", Description: "Clear the armed fault mode"},
		}
		errorType, err = prompt.Select("Error type", options)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	latency := injectLatencyMS
	if errorType == "latency" && latency == 0 && !cmd.Flags().Changed("latency-ms") {
		latency, err = prompt.InputInt("Latency (ms)", 500)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	sequencesArg := injectSequences
	if errorType == "ignore_sequence" && sequencesArg == "" {
		sequencesArg, err = prompt.InputRequired("Sequences to ignore (comma-separated)")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	sequences, err := cmdutil.ParseSequenceList(sequencesArg)
	if err != nil {
		return err
	}

	req := apiclient.InjectRequest{
		ErrorType: errorType,
		Sequences: sequences,
		LatencyMS: latency,
	}

	result, err := client.InjectError(req)
	if err != nil {
		return fmt.Errorf("failed to arm fault: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, result, result.Message)
}
