package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/qrave1/CallRelay/internal/domain/quality"
)

var reportAsJSON bool

var reportCmd = &cobra.Command{
	Use:   "report <samples.json>",
	Short: "Print call quality report for collected samples",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := reportFromFile(args[0], time.Now())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		if reportAsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")

			return enc.Encode(report)
		}

		_, err = fmt.Fprint(out, report.Summary())
		return err
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportAsJSON, "json", false, "print report as JSON")
}

func reportFromFile(path string, now time.Time) (quality.Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return quality.Report{}, fmt.Errorf("read samples: %w", err)
	}

	var samples quality.Samples
	if err = json.Unmarshal(raw, &samples); err != nil {
		return quality.Report{}, fmt.Errorf("decode samples: %w", err)
	}

	report, err := quality.Score(samples, now)
	if err != nil {
		return quality.Report{}, fmt.Errorf("score samples: %w", err)
	}

	return report, nil
}
