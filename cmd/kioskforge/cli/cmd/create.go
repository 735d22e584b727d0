// cmd/kioskforge/cli/cmd/create.go
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/archfrog/KioskForge/internal/config"
)

var createCmd = &cobra.Command{
	Use:   "create <file.kiosk>",
	Short: "Create a kiosk configuration file with default settings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("refusing to overwrite existing file: %s", path)
		}
		if err := os.WriteFile(path, []byte(config.Default().Serialize()), 0o600); err != nil {
			return err
		}
		fmt.Printf("Created %s - edit it and run 'kioskforge verify %s'\n", path, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}
