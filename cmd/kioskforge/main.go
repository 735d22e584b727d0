package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/archfrog/KioskForge/cmd/kioskforge/cli/cmd"
)

func init() {
	// Optional; settings normally come from flags and KIOSKFORGE_* variables.
	_ = godotenv.Load("/etc/kioskforge/.env")
}

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
