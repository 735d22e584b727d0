// cmd/kioskforge/cli/cmd/serve.go
package cmd

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/archfrog/KioskForge/internal/config"
	"github.com/archfrog/KioskForge/internal/discovery"
	"github.com/archfrog/KioskForge/internal/metrics"
	"github.com/archfrog/KioskForge/internal/module"
	"github.com/archfrog/KioskForge/internal/status"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the status API and answer discovery probes",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		journal, err := openJournal()
		if err != nil {
			return err
		}
		defer journal.Close()

		metrics.Register()

		hostname, _ := os.Hostname()
		responder := &discovery.Responder{
			Log:      log.Zap(),
			Hostname: hostname,
			Comment:  kioskComment(),
		}
		if err := responder.Listen(fmt.Sprintf(":%d", discovery.Port)); err != nil {
			return err
		}
		go func() {
			if err := responder.Serve(cmd.Context()); err != nil {
				log.Error("discovery responder stopped", err)
			}
		}()

		gin.SetMode(gin.ReleaseMode)
		router := status.NewRouter(journal, version)
		addr := fmt.Sprintf(":%d", viper.GetInt("status_port"))
		log.Info("status server listening",
			zap.String("addr", addr), zap.Int("discovery_port", discovery.Port))
		return router.Run(addr)
	},
}

func init() {
	serveCmd.Flags().Int("port", 8787, "TCP port of the status API")
	viper.BindPFlag("status_port", serveCmd.Flags().Lookup("port"))
	rootCmd.AddCommand(serveCmd)
}

// kioskComment reads the operator's comment from the applied configuration;
// it is the human-readable half of a discovery reply.
func kioskComment() string {
	text, err := os.ReadFile(module.ConfigPath)
	if err != nil {
		return ""
	}
	cfg, _ := config.Load(string(text))
	return cfg.Str("comment")
}
