package messages

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/finwire/finmock/cmd/finmockctl/cmdutil"
	"github.com/finwire/finmock/internal/cli/output"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a single message",
	Long: `Show a single audit entry by id, including the full raw wire text
when the server archives messages.

Examples:
  # Show a message
  finmockctl messages get 7f3c9a12-5b0e-4c44-9d0a-2f8e6b1c3d4e

  # Show as JSON
  finmockctl messages get 7f3c9a12-5b0e-4c44-9d0a-2f8e6b1c3d4e -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	detail, err := client.Message(args[0])
	if err != nil {
		return fmt.Errorf("failed to get message: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, detail)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, detail)
	default:
		pairs := [][2]string{
			{"ID", detail.ID},
			{"Time", detail.Timestamp.Local().Format("2006-01-02 15:04:05")},
			{"Session", detail.SessionID},
			{"Direction", detail.Direction},
			{"Duplicate", cmdutil.BoolToYesNo(detail.Duplicate)},
		}
		if err := output.SimpleTable(os.Stdout, pairs); err != nil {
			return err
		}

		if len(detail.Details) > 0 {
			keys := make([]string, 0, len(detail.Details))
			for k := range detail.Details {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			fmt.Println("\nParsed fields:")
			for _, k := range keys {
				fmt.Printf("  %-22s %v\n", k+":", detail.Details[k])
			}
		}

		if detail.Raw != "" {
			fmt.Println("\nRaw message:")
			fmt.Println(detail.Raw)
		} else {
			fmt.Println("\nPreview:")
			fmt.Println(detail.Preview)
		}
	}

	return nil
}
