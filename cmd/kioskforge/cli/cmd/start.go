// cmd/kioskforge/cli/cmd/start.go
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/archfrog/KioskForge/internal/config"
	"github.com/archfrog/KioskForge/internal/module"
	"github.com/archfrog/KioskForge/internal/netcheck"
)

// startCmd runs once per boot from the autologin user's .bash_profile. For
// web kiosks it hands over to X (which runs 'kioskforge session' from the
// Openbox autostart); for cli kiosks it supervises the configured command.
var startCmd = &cobra.Command{
	Use:    "start",
	Short:  "Start the kiosk session for the logged-in user",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		cfg, findings := loadAndValidate(module.ConfigPath)
		if config.HasErrors(findings) {
			printFindings(findings)
			return fmt.Errorf("persisted configuration has errors")
		}
		log.Info("starting kiosk session",
			zap.String("type", cfg.Str("type")),
			zap.String("lan_ip", netcheck.LanIP()))

		runner := newRunner()
		ctx := cmd.Context()

		if cfg.Str("type") == "web" {
			if res, err := runner.Run(ctx, "startx"); err != nil {
				return err
			} else if !res.Ok() {
				return fmt.Errorf("startx failed: %s", res.Output)
			}
			return nil
		}

		// cli kiosks: restart the command when it exits, with a pause so a
		// crashing command cannot spin the machine at 100%.
		for ctx.Err() == nil {
			res, err := runner.Run(ctx, cfg.Str("command"))
			if err != nil {
				return err
			}
			log.Warn("kiosk command exited, restarting",
				zap.Int("status", res.Status))
			time.Sleep(5 * time.Second)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
