package timeline

import (
	"reflect"
)

// TrackMeta is the non-content part of a track.
type TrackMeta struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Type      ClipKind `json:"type" yaml:"type"`
	IsVisible bool     `json:"isVisible" yaml:"is_visible"`
	IsMuted   bool     `json:"isMuted" yaml:"is_muted"`
}

func metaOf(t Track) TrackMeta {
	return TrackMeta{ID: t.ID, Name: t.Name, Type: t.Type, IsVisible: t.IsVisible, IsMuted: t.IsMuted}
}

// ClipPut places Clip on TrackID, replacing any clip with the same id.
type ClipPut struct {
	TrackID string `json:"trackId" yaml:"track_id"`
	Clip    Clip   `json:"clip" yaml:"clip"`
}

// ClipRef addresses a clip on a track.
type ClipRef struct {
	TrackID string `json:"trackId" yaml:"track_id"`
	ClipID  string `json:"clipId" yaml:"clip_id"`
}

// TransitionSet replaces a track's transition list.
type TransitionSet struct {
	TrackID     string       `json:"trackId" yaml:"track_id"`
	Transitions []Transition `json:"transitions" yaml:"transitions"`
}

// Delta is a set of field-level assignments that moves a document from one
// state to another. History entries hold one in each direction.
type Delta struct {
	TrackDeletes []string            `json:"trackDeletes,omitempty" yaml:"track_deletes,omitempty"`
	TrackPuts    []Track             `json:"trackPuts,omitempty" yaml:"track_puts,omitempty"`
	TrackMetas   []TrackMeta         `json:"trackMetas,omitempty" yaml:"track_metas,omitempty"`
	ClipDeletes  []ClipRef           `json:"clipDeletes,omitempty" yaml:"clip_deletes,omitempty"`
	ClipPuts     []ClipPut           `json:"clipPuts,omitempty" yaml:"clip_puts,omitempty"`
	ClipOrder    map[string][]string `json:"clipOrder,omitempty" yaml:"clip_order,omitempty"`
	Transitions  []TransitionSet     `json:"transitions,omitempty" yaml:"transitions,omitempty"`
	TrackOrder   []string            `json:"trackOrder,omitempty" yaml:"track_order,omitempty"`
	Zoom         *float64            `json:"zoom,omitempty" yaml:"zoom,omitempty"`
	FPS          *float64            `json:"fps,omitempty" yaml:"fps,omitempty"`
}

// Empty reports whether the delta changes nothing.
func (d Delta) Empty() bool {
	return len(d.TrackDeletes) == 0 && len(d.TrackPuts) == 0 && len(d.TrackMetas) == 0 &&
		len(d.ClipDeletes) == 0 && len(d.ClipPuts) == 0 && len(d.ClipOrder) == 0 &&
		len(d.Transitions) == 0 && d.TrackOrder == nil &&
		d.Zoom == nil && d.FPS == nil
}

// diff computes the forward and inverse deltas between before and after.
func diff(before, after Document) (forward, inverse Delta) {
	beforeIdx := make(map[string]int, len(before.Tracks))
	for i, t := range before.Tracks {
		beforeIdx[t.ID] = i
	}
	afterIdx := make(map[string]int, len(after.Tracks))
	for i, t := range after.Tracks {
		afterIdx[t.ID] = i
	}

	for _, t := range after.Tracks {
		if _, ok := beforeIdx[t.ID]; !ok {
			forward.TrackPuts = append(forward.TrackPuts, t.Clone())
			inverse.TrackDeletes = append(inverse.TrackDeletes, t.ID)
		}
	}
	for _, t := range before.Tracks {
		bi, ok := afterIdx[t.ID]
		if !ok {
			forward.TrackDeletes = append(forward.TrackDeletes, t.ID)
			inverse.TrackPuts = append(inverse.TrackPuts, t.Clone())
			continue
		}
		diffTrack(t, after.Tracks[bi], &forward, &inverse)
	}

	if !sameIDs(trackIDs(before.Tracks), trackIDs(after.Tracks)) {
		forward.TrackOrder = trackIDs(after.Tracks)
		inverse.TrackOrder = trackIDs(before.Tracks)
	}
	if before.Zoom != after.Zoom {
		forward.Zoom, inverse.Zoom = ptr(after.Zoom), ptr(before.Zoom)
	}
	if before.FPS != after.FPS {
		forward.FPS, inverse.FPS = ptr(after.FPS), ptr(before.FPS)
	}
	return forward, inverse
}

func diffTrack(before, after Track, forward, inverse *Delta) {
	if metaOf(before) != metaOf(after) {
		forward.TrackMetas = append(forward.TrackMetas, metaOf(after))
		inverse.TrackMetas = append(inverse.TrackMetas, metaOf(before))
	}

	beforeClips := make(map[string]Clip, len(before.Clips))
	for _, c := range before.Clips {
		beforeClips[c.ID] = c
	}
	afterClips := make(map[string]struct{}, len(after.Clips))
	for _, c := range after.Clips {
		afterClips[c.ID] = struct{}{}
		prev, ok := beforeClips[c.ID]
		switch {
		case !ok:
			forward.ClipPuts = append(forward.ClipPuts, ClipPut{TrackID: after.ID, Clip: c.Clone()})
			inverse.ClipDeletes = append(inverse.ClipDeletes, ClipRef{TrackID: after.ID, ClipID: c.ID})
		case !reflect.DeepEqual(prev, c):
			forward.ClipPuts = append(forward.ClipPuts, ClipPut{TrackID: after.ID, Clip: c.Clone()})
			inverse.ClipPuts = append(inverse.ClipPuts, ClipPut{TrackID: before.ID, Clip: prev.Clone()})
		}
	}
	for _, c := range before.Clips {
		if _, ok := afterClips[c.ID]; !ok {
			forward.ClipDeletes = append(forward.ClipDeletes, ClipRef{TrackID: before.ID, ClipID: c.ID})
			inverse.ClipPuts = append(inverse.ClipPuts, ClipPut{TrackID: before.ID, Clip: c.Clone()})
		}
	}

	if bo, ao := clipIDs(before.Clips), clipIDs(after.Clips); !sameIDs(bo, ao) {
		if forward.ClipOrder == nil {
			forward.ClipOrder = map[string][]string{}
			inverse.ClipOrder = map[string][]string{}
		}
		forward.ClipOrder[after.ID] = ao
		inverse.ClipOrder[before.ID] = bo
	}

	if !reflect.DeepEqual(before.Transitions, after.Transitions) {
		forward.Transitions = append(forward.Transitions, TransitionSet{TrackID: after.ID, Transitions: cloneTransitions(after.Transitions)})
		inverse.Transitions = append(inverse.Transitions, TransitionSet{TrackID: before.ID, Transitions: cloneTransitions(before.Transitions)})
	}
}

// apply patches doc in place. Entries that address tracks no longer present
// are skipped so later unrelated edits survive.
func (d Delta) apply(doc *Document) {
	if len(d.TrackDeletes) > 0 {
		gone := toSet(d.TrackDeletes)
		kept := doc.Tracks[:0]
		for _, t := range doc.Tracks {
			if _, ok := gone[t.ID]; !ok {
				kept = append(kept, t)
			}
		}
		doc.Tracks = kept
	}
	for _, t := range d.TrackPuts {
		if i := doc.trackIndex(t.ID); i >= 0 {
			doc.Tracks[i] = t.Clone()
		} else {
			doc.Tracks = append(doc.Tracks, t.Clone())
		}
	}
	for _, m := range d.TrackMetas {
		if i := doc.trackIndex(m.ID); i >= 0 {
			t := &doc.Tracks[i]
			t.Name, t.Type, t.IsVisible, t.IsMuted = m.Name, m.Type, m.IsVisible, m.IsMuted
		}
	}

	touched := map[string]struct{}{}
	for _, ref := range d.ClipDeletes {
		i := doc.trackIndex(ref.TrackID)
		if i < 0 {
			continue
		}
		t := &doc.Tracks[i]
		if ci := t.clipIndex(ref.ClipID); ci >= 0 {
			t.Clips = append(t.Clips[:ci], t.Clips[ci+1:]...)
		}
		touched[t.ID] = struct{}{}
	}
	for _, put := range d.ClipPuts {
		i := doc.trackIndex(put.TrackID)
		if i < 0 {
			continue
		}
		t := &doc.Tracks[i]
		if ci := t.clipIndex(put.Clip.ID); ci >= 0 {
			t.Clips[ci] = put.Clip.Clone()
		} else {
			t.Clips = append(t.Clips, put.Clip.Clone())
		}
		touched[t.ID] = struct{}{}
	}
	for id := range d.ClipOrder {
		touched[id] = struct{}{}
	}
	for id := range touched {
		i := doc.trackIndex(id)
		if i < 0 {
			continue
		}
		t := &doc.Tracks[i]
		if order, ok := d.ClipOrder[id]; ok {
			t.Clips = reorderClips(t.Clips, order)
		}
		t.sortClips()
	}

	for _, set := range d.Transitions {
		if i := doc.trackIndex(set.TrackID); i >= 0 {
			doc.Tracks[i].Transitions = cloneTransitions(set.Transitions)
		}
	}
	if d.TrackOrder != nil {
		doc.Tracks = reorderTracks(doc.Tracks, d.TrackOrder)
	}
	if d.Zoom != nil {
		doc.Zoom = *d.Zoom
	}
	if d.FPS != nil {
		doc.FPS = *d.FPS
	}
}

// reorderClips arranges clips to follow order; clips not named keep their
// relative order after the named ones.
func reorderClips(clips []Clip, order []string) []Clip {
	out := make([]Clip, 0, len(clips))
	placed := make([]bool, len(clips))
	byID := make(map[string]int, len(clips))
	for i, c := range clips {
		byID[c.ID] = i
	}
	for _, id := range order {
		if i, ok := byID[id]; ok && !placed[i] {
			out = append(out, clips[i])
			placed[i] = true
		}
	}
	for i, c := range clips {
		if !placed[i] {
			out = append(out, c)
		}
	}
	return out
}

func reorderTracks(tracks []Track, order []string) []Track {
	out := make([]Track, 0, len(tracks))
	placed := make([]bool, len(tracks))
	byID := make(map[string]int, len(tracks))
	for i, t := range tracks {
		byID[t.ID] = i
	}
	for _, id := range order {
		if i, ok := byID[id]; ok && !placed[i] {
			out = append(out, tracks[i])
			placed[i] = true
		}
	}
	for i, t := range tracks {
		if !placed[i] {
			out = append(out, t)
		}
	}
	return out
}

func cloneTransitions(in []Transition) []Transition {
	if in == nil {
		return nil
	}
	out := make([]Transition, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

func trackIDs(tracks []Track) []string {
	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return ids
}

func clipIDs(clips []Clip) []string {
	ids := make([]string, len(clips))
	for i, c := range clips {
		ids[i] = c.ID
	}
	return ids
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func ptr[T any](v T) *T {
	return &v
}
