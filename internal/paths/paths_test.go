package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveWithFlag(t *testing.T) {
	root := t.TempDir()
	pp, err := Resolve(root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	checks := map[string]string{
		pp.ConfigFile:   filepath.Join(root, "cutline.yaml"),
		pp.DocumentFile: filepath.Join(root, "project.json"),
		pp.MetaDir:      filepath.Join(root, ".cutline"),
		pp.JournalFile:  filepath.Join(root, ".cutline", "journal.db"),
		pp.LogsDir:      filepath.Join(root, "logs"),
	}
	for got, want := range checks {
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	}
}

func TestResolveRelativeFlag(t *testing.T) {
	pp, err := Resolve("some/project")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !filepath.IsAbs(pp.Root) {
		t.Fatalf("expected absolute root, got %s", pp.Root)
	}
}

func TestEnsureMetaDirs(t *testing.T) {
	pp := newProjectPaths(filepath.Join(t.TempDir(), "proj"))
	if err := pp.EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot: %v", err)
	}
	if err := pp.EnsureMetaDirs(); err != nil {
		t.Fatalf("EnsureMetaDirs: %v", err)
	}
	for _, dir := range []string{pp.Root, pp.MetaDir, pp.LogsDir} {
		ok, err := DirExists(dir)
		if err != nil || !ok {
			t.Errorf("DirExists(%s) = %v, %v", dir, ok, err)
		}
	}
}

func TestInitialized(t *testing.T) {
	pp := newProjectPaths(t.TempDir())
	ok, err := pp.Initialized()
	if err != nil || ok {
		t.Fatalf("empty dir Initialized = %v, %v", ok, err)
	}
	if err := os.WriteFile(pp.DocumentFile, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	ok, err = pp.Initialized()
	if err != nil || !ok {
		t.Fatalf("Initialized = %v, %v after writing document", ok, err)
	}
	if isFile, _ := FileExists(pp.Root); isFile {
		t.Error("directory reported as file")
	}
}
