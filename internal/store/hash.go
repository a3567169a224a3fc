package store

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"cutline/internal/timeline"
)

// contentInput is the canonical structure hashed for a document. Playback,
// scroll and selection state are left out so they never change the result.
type contentInput struct {
	Tracks   []timeline.Track `json:"tracks"`
	Duration float64          `json:"duration"`
	Zoom     float64          `json:"zoom"`
	FPS      float64          `json:"fps"`
}

// Fingerprint returns a deterministic hash of the edit content of doc.
func Fingerprint(doc timeline.Document) string {
	return hashJSON(contentInput{
		Tracks:   doc.Tracks,
		Duration: doc.Duration,
		Zoom:     doc.Zoom,
		FPS:      doc.FPS,
	})
}

func hashJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Should never happen with known struct types.
		return fmt.Sprintf("sha256:error-%v", err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("sha256:%x", sum)
}
