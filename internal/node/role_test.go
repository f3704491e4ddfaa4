package node

import (
	"log/slog"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		want Role
	}{
		{"x-core", RoleParent},
		{"x-child", RoleChild},
		{"x", RoleParent},
		{"core", RoleParent},
		{"child", RoleChild},
		{"", RoleParent},
		{"X-CORE", RoleParent}, // suffix match is case-sensitive; falls through to default
	}
	for _, c := range cases {
		if got := Classify(c.name, slog.Default()); got != c.want {
			t.Fatalf("Classify(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if Classify("anything", nil) != RoleParent {
			t.Fatalf("default classification must be parent")
		}
	}
}
