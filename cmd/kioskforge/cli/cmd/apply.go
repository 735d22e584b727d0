// cmd/kioskforge/cli/cmd/apply.go
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/archfrog/KioskForge/internal/config"
	"github.com/archfrog/KioskForge/internal/engine"
	"github.com/archfrog/KioskForge/internal/netcheck"
)

var applyCmd = &cobra.Command{
	Use:   "apply <file.kiosk>",
	Short: "Validate a kiosk configuration and forge the machine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		cfg, findings := loadAndValidate(args[0])
		printFindings(findings)
		if config.HasErrors(findings) {
			return fmt.Errorf("configuration has errors, not applying")
		}

		// Not everybody can reach the router that assigned our address.
		log.Trace(cmd.Context(), "forging kiosk (takes between 10 and 30 minutes)",
			zap.String("lan_ip", netcheck.LanIP()))

		opts := []engine.Option{}
		if journal, err := openJournal(); err == nil {
			defer journal.Close()
			opts = append(opts, engine.WithJournal(journal))
		} else {
			log.Warn("run journal unavailable", zap.Error(err))
		}

		e := engine.New(log.Zap(), newRunner(), opts...)
		report, err := e.Run(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if !report.Success {
			for _, f := range report.Failures() {
				log.Warn("step failed", zap.String("module", f.Module),
					zap.String("step", f.Description), zap.String("error", f.Error))
			}
			return fmt.Errorf("run %s finished with failures", report.ID)
		}
		log.Info("kiosk forged", zap.String("run_id", report.ID))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

// loadAndValidate parses and validates a .kiosk file, merging parse findings
// and validation findings into one list.
func loadAndValidate(path string) (*config.Configuration, []config.Finding) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, []config.Finding{{Severity: config.Error, Message: err.Error()}}
	}
	cfg, findings := config.Load(string(text))
	findings = append(findings, config.Validate(cfg)...)
	return cfg, findings
}

func printFindings(findings []config.Finding) {
	for _, f := range findings {
		fmt.Println(f)
	}
}

func openJournal() (*engine.Journal, error) {
	path := viper.GetString("journal")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return engine.OpenJournal(path)
}
