package module

import (
	"context"
	"fmt"

	"github.com/archfrog/KioskForge/internal/config"
	"github.com/archfrog/KioskForge/internal/sysexec"
)

// Swap allocates a swap file so a memory-hungry browser degrades instead of
// triggering the OOM killer. The swap file itself is the idempotence guard:
// once it exists, allocation and formatting are skipped.
type Swap struct{}

func (Swap) ID() string { return "swap" }

func (Swap) AppliesWhen(cfg *config.Configuration) bool {
	return cfg.Nat("swap_size") > 0
}

func (Swap) Plan(cfg *config.Configuration) []Step {
	size := cfg.Nat("swap_size")
	alloc := Step{
		Description: "Allocating swap file.",
		Idempotent:  true,
		Retry:       NoRetry(),
		Do: func(ctx context.Context, r sysexec.Runner) error {
			// mkswap must never touch an existing (possibly active) file.
			if exists, _ := r.Stat("/swapfile"); exists {
				return nil
			}
			for _, line := range []string{
				fmt.Sprintf("fallocate -l %dG /swapfile", size),
				"chmod 600 /swapfile",
				"mkswap /swapfile",
			} {
				if err := runChecked(ctx, r, line); err != nil {
					return err
				}
			}
			return nil
		},
		Script: fmt.Sprintf(
			"[ -e /swapfile ] || { fallocate -l %dG /swapfile; chmod 600 /swapfile; mkswap /swapfile; }", size),
	}
	return []Step{
		alloc,
		AppendOnce(
			"Creating '/etc/fstab' entry for the new swap file.",
			"/etc/fstab",
			"/swapfile",
			"/swapfile\tnone\tswap\tsw\t0\t0",
		),
	}
}
