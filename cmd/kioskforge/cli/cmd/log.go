// cmd/kioskforge/cli/cmd/log.go
package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/archfrog/KioskForge/internal/engine"
)

var (
	logMinSeverity string
	logFormat      string
	logRunID       string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show journaled run reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		journal, err := openJournal()
		if err != nil {
			return err
		}
		defer journal.Close()

		var report *engine.Report
		if logRunID != "" {
			report, err = journal.Get(logRunID)
		} else {
			report, err = journal.Latest()
		}
		if err != nil {
			return err
		}
		if report == nil {
			return fmt.Errorf("no matching run in the journal")
		}

		filtered := *report
		filtered.Steps = filterSteps(report.Steps, logMinSeverity)
		return printReport(&filtered, logFormat)
	},
}

func init() {
	logCmd.Flags().StringVar(&logMinSeverity, "min-severity", "info",
		"Lowest step outcome to show: info, warn (retried or failed), or error")
	logCmd.Flags().StringVar(&logFormat, "format", "text", "Output format: text, json, or yaml")
	logCmd.Flags().StringVar(&logRunID, "run", "", "Run id to show instead of the latest run")
	rootCmd.AddCommand(logCmd)
}

func filterSteps(steps []engine.StepOutcome, minSeverity string) []engine.StepOutcome {
	keep := func(s engine.StepOutcome) bool {
		switch minSeverity {
		case "warn":
			return s.State == engine.StateFailed || s.Attempts > 1
		case "error":
			return s.State == engine.StateFailed
		default:
			return true
		}
	}
	var out []engine.StepOutcome
	for _, s := range steps {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func printReport(report *engine.Report, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	case "text":
		fmt.Printf("run %s on %s: success=%v (%s)\n",
			report.ID, report.Hostname, report.Success,
			report.Finished.Sub(report.Started).Round(time.Millisecond))
		for _, s := range report.Steps {
			line := fmt.Sprintf("  [%s] %s: %s", s.State, s.Module, s.Description)
			if s.Attempts > 1 {
				line += fmt.Sprintf(" (attempts=%d)", s.Attempts)
			}
			if s.Error != "" {
				line += " - " + s.Error
			}
			fmt.Println(line)
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}
