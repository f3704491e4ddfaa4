package node

import (
	"log/slog"
	"strings"
)

// Role is the coarse classification of a node derived from its package name.
// Downstream orchestration treats parents and children differently; this
// package only assigns the label.
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

func (r Role) String() string { return string(r) }

// Classify maps a package name onto a Role using a case-sensitive suffix
// rule: "core" wins over "child", and anything else defaults to parent with
// a warning so a violated naming convention is at least visible in the logs.
// Classify is total; there is no failure mode.
func Classify(name string, log *slog.Logger) Role {
	switch {
	case strings.HasSuffix(name, "core"):
		return RoleParent
	case strings.HasSuffix(name, "child"):
		return RoleChild
	default:
		if log == nil {
			log = slog.Default()
		}
		log.Warn("package name ends in neither 'core' nor 'child', defaulting to parent", "name", name)
		return RoleParent
	}
}
