package module

import (
	"fmt"

	"github.com/archfrog/KioskForge/internal/config"
)

// UserFiles copies a folder of operator-supplied content from the install
// medium into the user's home directory. Used by kiosks that display local
// files instead of a remote site.
type UserFiles struct{}

func (UserFiles) ID() string { return "userfiles" }

func (UserFiles) AppliesWhen(cfg *config.Configuration) bool {
	return cfg.Str("user_folder") != ""
}

func (UserFiles) Plan(cfg *config.Configuration) []Step {
	folder := cfg.Str("user_folder")
	src := mediumDir(cfg) + "/" + folder
	dst := homeDir(cfg) + "/" + folder
	user := cfg.Str("user_name")
	return []Step{
		Guarded("Copying user content folder from the install medium.", dst,
			fmt.Sprintf("cp -pR %s %s", src, dst)),
		Command("Setting ownership of the copied user content.",
			fmt.Sprintf("chown -R %s:%s %s", user, user, dst), true),
		Command("Making the copied user content world-readable.",
			"chmod -R a+rX "+dst, true),
	}
}
