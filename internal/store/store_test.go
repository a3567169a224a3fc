package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cutline/internal/timeline"
)

func sampleDocument(t *testing.T, e *timeline.Engine) timeline.Document {
	t.Helper()
	start, end := 0.0, 10.0
	doc, err := e.DispatchAll(e.NewDocument(),
		timeline.AddTrack{Track: timeline.Track{ID: "v1", Type: timeline.KindVideo}},
		timeline.AddClip{TrackID: "v1", Clip: timeline.ClipSpec{ID: "c1", StartTime: &start, EndTime: &end}},
		timeline.SplitClip{TrackID: "v1", ClipID: "c1", Time: 4},
	)
	if err != nil {
		t.Fatalf("build document: %v", err)
	}
	return doc
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	e := timeline.NewEngine()
	doc, err := Load(filepath.Join(t.TempDir(), "project.json"), e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Tracks) != 0 {
		t.Errorf("expected no tracks, got %d", len(doc.Tracks))
	}
	if doc.History.CurrentIndex != -1 {
		t.Errorf("expected empty history, cursor %d", doc.History.CurrentIndex)
	}
	if doc.Zoom != 1 || doc.FPS != 30 {
		t.Errorf("view defaults = %v/%v", doc.Zoom, doc.FPS)
	}
}

func TestLoadCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.json")
	if err := os.WriteFile(path, []byte("{invalid json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path, timeline.NewEngine())
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	e := timeline.NewEngine()
	doc := sampleDocument(t, e)
	path := filepath.Join(t.TempDir(), "nested", "project.json")

	if err := Save(path, doc); err != nil {
		t.Fatalf("save error: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	loaded, err := Load(path, e)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if Fingerprint(loaded) != Fingerprint(doc) {
		t.Error("fingerprint changed across save/load")
	}
	if len(loaded.History.Entries) != len(doc.History.Entries) || loaded.History.CurrentIndex != doc.History.CurrentIndex {
		t.Fatalf("history = %d@%d, want %d@%d", len(loaded.History.Entries), loaded.History.CurrentIndex,
			len(doc.History.Entries), doc.History.CurrentIndex)
	}

	// History survives the round trip and still undoes.
	undone, err := e.Dispatch(loaded, timeline.Undo{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := undone.Clip("c1"); !ok {
		t.Error("undo after reload did not restore the unsplit clip")
	}
}

func TestLoadDetectsTampering(t *testing.T) {
	e := timeline.NewEngine()
	path := filepath.Join(t.TempDir(), "project.json")
	if err := Save(path, sampleDocument(t, e)); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	tampered := strings.Replace(string(data), `"endTime": 10`, `"endTime": 11`, 1)
	if tampered == string(data) {
		t.Fatal("fixture did not contain the expected field")
	}
	if err := os.WriteFile(path, []byte(tampered), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path, e); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
}

func TestFingerprintIgnoresViewState(t *testing.T) {
	e := timeline.NewEngine()
	doc := sampleDocument(t, e)
	moved, err := e.DispatchAll(doc,
		timeline.SetCurrentTime{Time: 7},
		timeline.SetPlaying{Playing: true},
		timeline.SelectClips{ClipIDs: []string{"c1-2"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	if Fingerprint(moved) != Fingerprint(doc) {
		t.Error("view state changed the fingerprint")
	}

	zoomed, err := e.Dispatch(doc, timeline.SetZoom{Zoom: 3})
	if err != nil {
		t.Fatal(err)
	}
	if Fingerprint(zoomed) == Fingerprint(doc) {
		t.Error("zoom change should alter the fingerprint")
	}
	if !strings.HasPrefix(Fingerprint(doc), "sha256:") {
		t.Errorf("fingerprint = %q", Fingerprint(doc))
	}
}
