// cmd/kioskforge/cli/cmd/upgrade.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/archfrog/KioskForge/internal/config"
	"github.com/archfrog/KioskForge/internal/engine"
	"github.com/archfrog/KioskForge/internal/maintenance"
	"github.com/archfrog/KioskForge/internal/module"
	"github.com/archfrog/KioskForge/internal/netcheck"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade [file.kiosk]",
	Short: "Run the daily maintenance routine once",
	Long: `Runs the daily maintenance routine: vacuum logs, refresh snaps and
packages when online, then apply the configured power policy. Invoked by cron
at the configured upgrade_time; reads the persisted configuration unless a
file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		path := module.ConfigPath
		if len(args) == 1 {
			path = args[0]
		}
		cfg, findings := loadAndValidate(path)
		printFindings(findings)
		if config.HasErrors(findings) {
			return fmt.Errorf("configuration has errors, not upgrading")
		}

		m := &maintenance.Maintainer{
			Log:    log.Zap(),
			Engine: engine.New(log.Zap(), newRunner()),
			Prober: netcheck.NewProber(),
			LogDir: viper.GetString("log_dir"),
		}
		log.Trace(cmd.Context(), "daily maintenance starting",
			zap.String("log_dir", m.LogDir))
		return m.RunDaily(cmd.Context(), maintenance.PlanFromConfig(cfg))
	},
}

func init() {
	rootCmd.AddCommand(upgradeCmd)
}
