// cmd/kioskforge/cli/cmd/discover.go
package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/archfrog/KioskForge/internal/discovery"
)

var discoverWindow time.Duration

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find KioskForge kiosks on the local network",
	RunE: func(cmd *cobra.Command, args []string) error {
		kiosks, err := discovery.Discover(cmd.Context(), discoverWindow)
		if err != nil {
			return err
		}
		if len(kiosks) == 0 {
			fmt.Println("No kiosks found.")
			return nil
		}
		sort.Slice(kiosks, func(i, j int) bool { return kiosks[i].Address < kiosks[j].Address })
		for _, k := range kiosks {
			fmt.Printf("%-15s  %-20s  %s\n", k.Address, k.Hostname, k.Comment)
		}
		return nil
	},
}

func init() {
	discoverCmd.Flags().DurationVar(&discoverWindow, "window", 5*time.Second,
		"How long to wait for replies")
	rootCmd.AddCommand(discoverCmd)
}
