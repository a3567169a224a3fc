package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProjectPaths captures canonical locations for a cutline project.
type ProjectPaths struct {
	Root         string
	ConfigFile   string
	DocumentFile string
	MetaDir      string
	JournalFile  string
	LogsDir      string
}

// Resolve determines the project root using the optional --project flag or the
// current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return newProjectPaths(root), nil
}

func newProjectPaths(root string) ProjectPaths {
	metaDir := filepath.Join(root, ".cutline")
	return ProjectPaths{
		Root:         root,
		ConfigFile:   filepath.Join(root, "cutline.yaml"),
		DocumentFile: filepath.Join(root, "project.json"),
		MetaDir:      metaDir,
		JournalFile:  filepath.Join(metaDir, "journal.db"),
		LogsDir:      filepath.Join(root, "logs"),
	}
}

// EnsureRoot makes sure the project root exists on disk.
func (p ProjectPaths) EnsureRoot() error {
	if err := os.MkdirAll(p.Root, 0o755); err != nil {
		return fmt.Errorf("create project root: %w", err)
	}
	return nil
}

// EnsureMetaDirs creates the logs directory and the hidden .cutline
// metadata directory.
func (p ProjectPaths) EnsureMetaDirs() error {
	for _, dir := range []string{p.MetaDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Initialized reports whether the project has a config or document file.
func (p ProjectPaths) Initialized() (bool, error) {
	for _, f := range []string{p.ConfigFile, p.DocumentFile} {
		ok, err := FileExists(f)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
