package policy

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	return path
}

func TestLoadCatalog_PreservesDocumentOrder(t *testing.T) {
	path := writeDoc(t, `policies:
  zebra:
    summary: last alphabetically, first in the document
  alpha:
    summary: first alphabetically
  middle: {}
`)
	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}

	want := []string{"zebra", "alpha", "middle"}
	keys := cat.Keys()
	if len(keys) != len(want) {
		t.Fatalf("Keys len = %d, want %d", len(keys), len(want))
	}
	for i, key := range want {
		if keys[i] != key {
			t.Errorf("Keys[%d] = %q, want %q", i, keys[i], key)
		}
	}
}

func TestLoadCatalog_SummaryDefaultsToKey(t *testing.T) {
	path := writeDoc(t, `policies:
  documented:
    summary: has a summary
  bare: {}
  empty_summary:
    summary: ""
`)
	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}

	if got := cat.Summary("documented"); got != "has a summary" {
		t.Errorf("Summary(documented) = %q", got)
	}
	if got := cat.Summary("bare"); got != "bare" {
		t.Errorf("Summary(bare) = %q, want the key itself", got)
	}
	if got := cat.Summary("empty_summary"); got != "empty_summary" {
		t.Errorf("Summary(empty_summary) = %q, want the key itself", got)
	}
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	cat, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error, got: %v", err)
	}
	if cat.Len() != 0 {
		t.Errorf("Len = %d, want 0", cat.Len())
	}
}

func TestLoadCatalog_NoPoliciesSection(t *testing.T) {
	path := writeDoc(t, "other: thing\n")
	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}
	if cat.Len() != 0 {
		t.Errorf("Len = %d, want 0", cat.Len())
	}
}

func TestLoadCatalog_NotAMapping(t *testing.T) {
	path := writeDoc(t, "- a\n- b\n")
	if _, err := LoadCatalog(path); err == nil {
		t.Error("expected error for non-mapping document")
	}
}

func TestLoadCatalog_Entry(t *testing.T) {
	path := writeDoc(t, `policies:
  charter:
    summary: charter summary
    severity: high
`)
	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}
	entry, ok := cat.Entry("charter")
	if !ok {
		t.Fatal("Entry(charter) not found")
	}
	if entry.Fields["severity"] != "high" {
		t.Errorf("Fields[severity] = %v, want high", entry.Fields["severity"])
	}
	if _, ok := cat.Entry("absent"); ok {
		t.Error("Entry(absent) should not be found")
	}
}

func TestLoadEnvironment(t *testing.T) {
	path := writeDoc(t, `environment:
  name: staging
  tier: pre-prod
`)
	env, err := LoadEnvironment(path)
	if err != nil {
		t.Fatalf("LoadEnvironment returned error: %v", err)
	}
	if env["name"] != "staging" {
		t.Errorf("env[name] = %v, want staging", env["name"])
	}
}

func TestLoadEnvironment_Missing(t *testing.T) {
	env, err := LoadEnvironment(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error, got: %v", err)
	}
	if len(env) != 0 {
		t.Errorf("env = %v, want empty", env)
	}
}

func TestLoadEnvironment_EmptyDocument(t *testing.T) {
	path := writeDoc(t, "")
	env, err := LoadEnvironment(path)
	if err != nil {
		t.Fatalf("empty document should not error, got: %v", err)
	}
	if len(env) != 0 {
		t.Errorf("env = %v, want empty", env)
	}
}
