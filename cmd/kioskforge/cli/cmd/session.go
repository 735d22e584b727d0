// cmd/kioskforge/cli/cmd/session.go
package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/archfrog/KioskForge/internal/config"
	"github.com/archfrog/KioskForge/internal/module"
	"github.com/archfrog/KioskForge/internal/sysexec"
)

// sessionCmd runs inside the X session, launched from the Openbox autostart
// script: it applies the display and audio settings that need a running X
// server, then supervises the browser.
var sessionCmd = &cobra.Command{
	Use:    "session",
	Short:  "Configure the X session and supervise the kiosk browser",
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

		runner := newRunner()
		ctx := cmd.Context()

		// The display is rotated here (the touch panel is X's business, done
		// at forge time) because xrandr needs a running server.
		if rot := cfg.Str("screen_rotation"); rot != "none" {
			orientation := map[string]string{"left": "left", "right": "right", "flip": "inverted"}[rot]
			runner.Run(ctx, "xrandr --orientation "+orientation)
		}
		runner.Run(ctx, "xset s off")
		runner.Run(ctx, "xset -dpms")

		if cfg.Str("sound_card") != "none" {
			runner.Run(ctx, fmt.Sprintf("pactl set-sink-volume @DEFAULT_SINK@ %d%%", cfg.Nat("sound_level")))
			runner.Run(ctx, "pactl set-sink-mute @DEFAULT_SINK@ 0")
		}

		idle := time.Duration(cfg.Nat("idle_timeout")) * time.Second
		browser := "chromium --kiosk --noerrdialogs --disable-infobars " + cfg.Str("command")

		for ctx.Err() == nil {
			log.Info("launching browser", zap.String("url", cfg.Str("command")))
			superviseBrowser(ctx, runner, browser, idle)
			log.Warn("browser exited, restarting")
			time.Sleep(2 * time.Second)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

// superviseBrowser runs the browser until it exits. With an idle timeout, the
// X idle time is polled and the browser killed once a visitor has walked
// away, so the next one finds the start page instead of the last session.
func superviseBrowser(ctx context.Context, runner sysexec.Runner, browser string, idle time.Duration) {
	done := make(chan struct{})
	go func() {
		runner.Run(ctx, browser)
		close(done)
	}()

	if idle <= 0 {
		<-done
		return
	}

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := runner.Run(ctx, "xprintidle")
			if err != nil || !res.Ok() {
				continue
			}
			if d, err := parseIdle(strings.TrimSpace(res.Output)); err == nil && d >= idle {
				runner.Run(ctx, "pkill -f chromium")
			}
		}
	}
}

// parseIdle converts xprintidle output (milliseconds) to a duration.
func parseIdle(output string) (time.Duration, error) {
	ms, err := strconv.Atoi(output)
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}
