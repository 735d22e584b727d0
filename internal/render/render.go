// Package render turns a module catalog into standalone POSIX shell scripts
// for the install medium. The scripts carry the same precondition guards as
// the in-process steps, so an interrupted first boot can simply run again.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/archfrog/KioskForge/internal/config"
	"github.com/archfrog/KioskForge/internal/module"
)

const header = `#!/bin/sh
# Generated by KioskForge. DO NOT EDIT!
set -eu
export DEBIAN_FRONTEND=noninteractive
`

// Render writes one numbered script per applicable module plus a driver
// script and the serialized configuration into dir. The driver invokes the
// module scripts in catalog order and stops on the first failure, leaving the
// remaining scripts for the next boot.
func Render(cfg *config.Configuration, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var names []string
	index := 0
	for _, m := range module.Catalog() {
		if !m.AppliesWhen(cfg) {
			continue
		}
		index++
		name := fmt.Sprintf("%02d-%s.sh", index, m.ID())
		if err := writeScript(filepath.Join(dir, name), m.ID(), m.Plan(cfg)); err != nil {
			return fmt.Errorf("render %s: %w", m.ID(), err)
		}
		names = append(names, name)
	}

	if err := writeDriver(filepath.Join(dir, "kioskforge-setup.sh"), names); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "kiosk.kiosk"), []byte(cfg.Serialize()), 0o600)
}

func writeScript(path, id string, steps []module.Step) error {
	var b strings.Builder
	b.WriteString(header)
	fmt.Fprintf(&b, "# Module: %s\n", id)
	for _, step := range steps {
		fmt.Fprintf(&b, "\necho '%s'\n", strings.ReplaceAll(step.Description, "'", "'\\''"))
		b.WriteString(step.Script)
		if !strings.HasSuffix(step.Script, "\n") {
			b.WriteString("\n")
		}
	}
	return os.WriteFile(path, []byte(b.String()), 0o755)
}

func writeDriver(path string, names []string) error {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("# Runs every module script in order; rerunnable after interruption.\n")
	b.WriteString("cd \"$(dirname \"$0\")\"\n")
	for _, name := range names {
		fmt.Fprintf(&b, "sh ./%s\n", name)
	}
	b.WriteString("sync\n")
	return os.WriteFile(path, []byte(b.String()), 0o755)
}
