package identity

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Identity describes one running instance of the service as declared by its
// package metadata file. UUID is stable across restarts once persisted.
type Identity struct {
	Name    string
	Version string
	UUID    string
	Server  string
}

// Load reads the package metadata file at path and extracts the identity
// fields from key = "value" lines. It is a narrow line scanner on purpose,
// not a TOML parser: the first matching line per key wins and keys that
// never appear yield empty strings.
func Load(path string) (Identity, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Identity{}, fmt.Errorf("read package file %s: %w", path, err)
	}
	var id Identity
	for _, raw := range strings.Split(string(b), "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case id.Name == "" && strings.HasPrefix(line, "name ="):
			id.Name = quoted(line)
		case id.Version == "" && strings.HasPrefix(line, "version ="):
			id.Version = quoted(line)
		case id.UUID == "" && strings.HasPrefix(line, "uuid ="):
			id.UUID = quoted(line)
		case id.Server == "" && strings.HasPrefix(line, "server ="):
			id.Server = quoted(line)
		}
	}
	return id, nil
}

// quoted returns the text between the first pair of double quotes, or "".
func quoted(line string) string {
	parts := strings.SplitN(line, `"`, 3)
	if len(parts) < 3 {
		return ""
	}
	return parts[1]
}

// PatchUUID rewrites the package file in place, replacing an existing
// uuid = "..." line with the new value and keeping every other line
// verbatim, including the indentation of the uuid line itself.
// It reports patched=false when the file contains no uuid line at all;
// in that case nothing is written and the uuid only lives in memory.
func PatchUUID(path, newUUID string) (bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read package file %s: %w", path, err)
	}
	var sb strings.Builder
	patched := false
	for _, line := range strings.Split(strings.TrimSuffix(string(b), "\n"), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "uuid =") {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			sb.WriteString(fmt.Sprintf("%suuid = %q\n", indent, newUUID))
			patched = true
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if !patched {
		return false, nil
	}
	mode := fs.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(sb.String()), mode); err != nil {
		return false, fmt.Errorf("write package file %s: %w", path, err)
	}
	return true, nil
}

// EnsureUUID assigns a freshly generated v4 UUID when id.UUID is empty and
// persists it back into the package file. Persistence failure is not fatal:
// the process keeps the in-memory value, which will not survive a restart,
// so the uuid is echoed at error level for manual recovery.
func EnsureUUID(path string, id *Identity, log *slog.Logger) {
	if id.UUID != "" {
		return
	}
	if log == nil {
		log = slog.Default()
	}
	id.UUID = uuid.NewString()
	log.Info("no uuid found in package file, generated a new one", "uuid", id.UUID)
	patched, err := PatchUUID(path, id.UUID)
	if err != nil {
		log.Error("failed to persist uuid into package file", "path", path, "error", err)
		log.Error(fmt.Sprintf("please add manually: uuid = %q", id.UUID))
		return
	}
	if !patched {
		log.Warn("package file has no uuid line to patch; this identity will not survive a restart",
			"path", path, "uuid", id.UUID)
		return
	}
	log.Info("patched uuid into package file", "path", path, "uuid", id.UUID)
}
