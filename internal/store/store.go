package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cutline/internal/timeline"
)

// FormatVersion is written into every project file.
const FormatVersion = 1

// projectFile is the on-disk envelope around a document.
type projectFile struct {
	Version     int               `json:"version"`
	SavedAt     time.Time         `json:"saved_at"`
	Fingerprint string            `json:"fingerprint"`
	Document    timeline.Document `json:"document"`
}

// ErrCorrupt is returned when a project file exists but cannot be trusted.
var ErrCorrupt = errors.New("corrupt project file")

// Load reads the document at path. A missing file yields a fresh document
// from e. Unlike a cache, a project is never silently discarded: a file that
// fails to parse or whose fingerprint does not match returns ErrCorrupt.
func Load(path string, e *timeline.Engine) (timeline.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return e.NewDocument(), nil
		}
		return timeline.Document{}, fmt.Errorf("read project: %w", err)
	}

	var pf projectFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return timeline.Document{}, fmt.Errorf("%w %s: %v", ErrCorrupt, path, err)
	}
	if pf.Version > FormatVersion {
		return timeline.Document{}, fmt.Errorf("project %s has format version %d, newer than supported %d", path, pf.Version, FormatVersion)
	}
	if pf.Fingerprint != "" && pf.Fingerprint != Fingerprint(pf.Document) {
		return timeline.Document{}, fmt.Errorf("%w %s: fingerprint mismatch", ErrCorrupt, path)
	}

	doc, err := e.Dispatch(e.NewDocument(), timeline.SetState{Document: pf.Document})
	if err != nil {
		return timeline.Document{}, fmt.Errorf("load project: %w", err)
	}
	return doc, nil
}

// Save writes doc atomically to path.
func Save(path string, doc timeline.Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(projectFile{
		Version:     FormatVersion,
		SavedAt:     time.Now().UTC(),
		Fingerprint: Fingerprint(doc),
		Document:    doc,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
