// cmd/kioskforge/cli/cmd/verify.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archfrog/KioskForge/internal/config"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file.kiosk>",
	Short: "Validate a kiosk configuration and print all findings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, findings := loadAndValidate(args[0])
		printFindings(findings)
		if config.HasErrors(findings) {
			return fmt.Errorf("configuration has errors")
		}
		fmt.Println("Configuration is valid.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
