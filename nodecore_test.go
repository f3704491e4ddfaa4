package nodecore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// The facade test drives a full boot-shaped flow against the schema file
// shipped in config/main.sql.
func TestFacadeRegistrationFlow(t *testing.T) {
	pkg := filepath.Join(t.TempDir(), "package.toml")
	err := os.WriteFile(pkg, []byte("name = \"widget-core\"\nversion = \"1.0.0\"\nuuid = \"\"\nserver = \"us-east\"\n"), 0o644)
	if err != nil {
		t.Fatalf("write package file: %v", err)
	}

	ident, err := LoadIdentity(pkg)
	if err != nil {
		t.Fatalf("load identity: %v", err)
	}
	EnsureUUID(pkg, &ident, nil)
	if ident.UUID == "" {
		t.Fatalf("expected generated uuid")
	}
	if Classify(ident.Name, nil) != RoleParent {
		t.Fatalf("widget-core must classify as parent")
	}

	st, err := OpenStore(filepath.Join(t.TempDir(), "main.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	if err := st.ApplySchema(ctx, "config/main.sql"); err != nil {
		t.Fatalf("apply shipped schema: %v", err)
	}
	if err := st.ApplySchema(ctx, "config/main.sql"); err != nil {
		t.Fatalf("shipped schema must be idempotent: %v", err)
	}

	reg := NewRegistry(st, nil)
	id, err := reg.Register(ctx, ident)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected node id 1 on empty store, got %d", id)
	}
	again, err := reg.Register(ctx, ident)
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if again != id {
		t.Fatalf("re-registration must reuse id %d, got %d", id, again)
	}

	if err := reg.SetStatus(ctx, ident.UUID, "running"); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := reg.LogEvent(ctx, id, "info", "node started", ""); err != nil {
		t.Fatalf("log event: %v", err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	c, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if c.Store.Schema != "config/main.sql" {
		t.Fatalf("unexpected schema default: %q", c.Store.Schema)
	}
}
