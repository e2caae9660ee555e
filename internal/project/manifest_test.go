package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse_FlatManifest(t *testing.T) {
	m, err := Parse(`
# a comment
[package]
name = "demo"
version = "0.2.1"
compiler = ">=0.30.0"
`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if m.Name != "demo" || m.Version != "0.2.1" || m.Compiler != ">=0.30.0" {
		t.Errorf("unexpected manifest: %+v", m)
	}
}

func TestParse_RejectsMalformedLine(t *testing.T) {
	if _, err := Parse("name demo"); err == nil {
		t.Fatal("expected an error for a line without `=`")
	}
}

func TestParse_RejectsBadVersion(t *testing.T) {
	_, err := Parse(`version = "not-a-version"`)
	if err == nil || !strings.Contains(err.Error(), "invalid project version") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckCompiler_ConstraintSatisfied(t *testing.T) {
	m := &Manifest{Name: "demo", Compiler: ">=0.30.0, <1.0.0"}
	if err := m.CheckCompiler("0.34.0"); err != nil {
		t.Errorf("constraint should pass: %v", err)
	}
}

func TestCheckCompiler_ConstraintViolated(t *testing.T) {
	m := &Manifest{Name: "demo", Compiler: ">=1.0.0"}
	err := m.CheckCompiler("0.34.0")
	if err == nil || !strings.Contains(err.Error(), "requires compiler") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckCompiler_EmptyConstraintAcceptsAnything(t *testing.T) {
	m := &Manifest{Name: "demo"}
	if err := m.CheckCompiler("0.0.1"); err != nil {
		t.Errorf("empty constraint must accept any version: %v", err)
	}
}

func TestFind_WalksUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	manifest := filepath.Join(root, ManifestName)
	if err := os.WriteFile(manifest, []byte(`name = "demo"`), 0644); err != nil {
		t.Fatal(err)
	}

	found, ok := Find(nested)
	if !ok || found != manifest {
		t.Errorf("Find = %q, %v; want %q", found, ok, manifest)
	}
}

func TestFind_NoManifest(t *testing.T) {
	if _, ok := Find(t.TempDir()); ok {
		t.Error("Find must report absence in a bare directory")
	}
}
