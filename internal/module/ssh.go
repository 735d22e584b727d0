package module

import (
	"github.com/archfrog/KioskForge/internal/config"
)

// SSH installs the OpenSSH server and hardens it. Key-only access is enforced
// only when a public key is configured; otherwise the operator still needs the
// password to get in after first boot.
type SSH struct{}

func (SSH) ID() string { return "ssh" }

func (SSH) AppliesWhen(cfg *config.Configuration) bool { return true }

func (SSH) Plan(cfg *config.Configuration) []Step {
	steps := []Step{
		Apt("Installing OpenSSH server.", "apt-get install -y openssh-server"),
	}
	if key := cfg.Str("ssh_key"); key != "" {
		steps = append(steps,
			AppendOnce(
				"Installing public SSH key in user's home directory.",
				homeDir(cfg)+"/.ssh/authorized_keys",
				key,
				key,
			),
			ReplaceText(
				"Disabling root login using SSH.",
				"/etc/ssh/sshd_config",
				"#PermitRootLogin prohibit-password",
				"PermitRootLogin no",
			),
			ReplaceText(
				"Disabling password authentication (requiring private SSH key to log in).",
				"/etc/ssh/sshd_config",
				"#PasswordAuthentication yes",
				"PasswordAuthentication no",
			),
		)
	}
	steps = append(steps, ReplaceText(
		"Disabling empty SSH password login.",
		"/etc/ssh/sshd_config",
		"#PermitEmptyPasswords no",
		"PermitEmptyPasswords no",
	))
	return steps
}
