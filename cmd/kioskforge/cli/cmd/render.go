// cmd/kioskforge/cli/cmd/render.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archfrog/KioskForge/internal/config"
	"github.com/archfrog/KioskForge/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render <file.kiosk> <dir>",
	Short: "Render the configuration into install-medium shell scripts",
	Long: `Writes one standalone, rerunnable shell script per module plus a
driver script and the configuration itself into the target directory. The
medium writer copies that directory onto the first-boot partition.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, findings := loadAndValidate(args[0])
		printFindings(findings)
		if config.HasErrors(findings) {
			return fmt.Errorf("configuration has errors, not rendering")
		}
		if err := render.Render(cfg, args[1]); err != nil {
			return err
		}
		fmt.Printf("Rendered install scripts into %s\n", args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
