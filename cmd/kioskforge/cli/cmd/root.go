// cmd/kioskforge/cli/cmd/root.go
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/archfrog/KioskForge/internal/logger"
	"github.com/archfrog/KioskForge/internal/maintenance"
	"github.com/archfrog/KioskForge/internal/sysexec"
)

var (
	version = "v1.0.0"
)

// rootCmd is the base command for the KioskForge CLI.
var rootCmd = &cobra.Command{
	Use:   "kioskforge",
	Short: "KioskForge kiosk provisioning",
	Long: `KioskForge turns a stock Ubuntu Server machine into a locked-down
kiosk: it validates a .kiosk configuration, applies it module by module on
first boot, and keeps the machine upgraded and clean every day thereafter.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Use 'kioskforge --help' to see available commands")
	},
}

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Println("Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().String("journal", "/var/lib/kioskforge/runs.db", "Path to the run journal database")
	rootCmd.PersistentFlags().String("log-dir", maintenance.DefaultLogDir, "Directory pruned by the daily log vacuum")
	rootCmd.PersistentFlags().Bool("service", false, "Log as JSON for journald instead of the console encoder")

	viper.SetEnvPrefix("KIOSKFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.BindPFlag("journal", rootCmd.PersistentFlags().Lookup("journal"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("service", rootCmd.PersistentFlags().Lookup("service"))
}

// newLogger builds the process logger from the persistent flags.
func newLogger() (*logger.Logger, error) {
	env := "console"
	if viper.GetBool("service") {
		env = "service"
	}
	return logger.New(env)
}

// newRunner is the production system seam, with dpkg forced noninteractive
// for every child process the pipeline starts.
func newRunner() *sysexec.Exec {
	return &sysexec.Exec{Env: []string{"DEBIAN_FRONTEND=noninteractive"}}
}
