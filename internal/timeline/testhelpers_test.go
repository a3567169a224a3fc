package timeline

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

// newTestEngine returns an engine with deterministic ids and timestamps.
func newTestEngine(opts ...Option) *Engine {
	n := 0
	base := []Option{
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("gen-%d", n)
		}),
		WithClock(func() time.Time { return time.Unix(1700000000, 0) }),
	}
	return NewEngine(append(base, opts...)...)
}

func mustDispatch(t *testing.T, e *Engine, doc Document, cmds ...Command) Document {
	t.Helper()
	for _, cmd := range cmds {
		var err error
		doc, err = e.Dispatch(doc, cmd)
		if err != nil {
			t.Fatalf("dispatch %s: %v", cmd.Type(), err)
		}
	}
	return doc
}

func f64(v float64) *float64 { return &v }

func videoTrack(id string) AddTrack {
	return AddTrack{Track: Track{ID: id, Name: id, Type: KindVideo, IsVisible: true}}
}

func audioTrack(id string) AddTrack {
	return AddTrack{Track: Track{ID: id, Name: id, Type: KindAudio, IsVisible: true}}
}

func clipAt(trackID, id string, start, end float64) AddClip {
	return AddClip{TrackID: trackID, Clip: ClipSpec{
		ID:            id,
		StartTime:     f64(start),
		EndTime:       f64(end),
		MediaOffset:   f64(start),
		MediaDuration: f64(end - start),
	}}
}

func mustClip(t *testing.T, doc Document, id string) Clip {
	t.Helper()
	c, ok := doc.Clip(id)
	if !ok {
		t.Fatalf("clip %q not found", id)
	}
	return c
}

func tracksJSON(t *testing.T, doc Document) string {
	t.Helper()
	data, err := json.Marshal(doc.Tracks)
	if err != nil {
		t.Fatalf("marshal tracks: %v", err)
	}
	return string(data)
}

func assertSorted(t *testing.T, doc Document) {
	t.Helper()
	for _, tr := range doc.Tracks {
		for i := 1; i < len(tr.Clips); i++ {
			if tr.Clips[i-1].StartTime > tr.Clips[i].StartTime {
				t.Fatalf("track %s not sorted: %s@%v before %s@%v", tr.ID,
					tr.Clips[i-1].ID, tr.Clips[i-1].StartTime, tr.Clips[i].ID, tr.Clips[i].StartTime)
			}
		}
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
