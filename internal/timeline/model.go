package timeline

import "sort"

// ClipKind discriminates the clip variants. A track's Type uses the same values.
type ClipKind string

const (
	KindVideo   ClipKind = "video"
	KindAudio   ClipKind = "audio"
	KindCaption ClipKind = "caption"
)

// Valid reports whether k names a known clip variant.
func (k ClipKind) Valid() bool {
	switch k {
	case KindVideo, KindAudio, KindCaption:
		return true
	}
	return false
}

// Bounds is the snapshot of a clip's placement taken at creation or split time.
type Bounds struct {
	StartTime     float64 `json:"startTime" yaml:"start_time"`
	EndTime       float64 `json:"endTime" yaml:"end_time"`
	MediaOffset   float64 `json:"mediaOffset" yaml:"media_offset"`
	MediaDuration float64 `json:"mediaDuration" yaml:"media_duration"`
}

// Handles are the current offsets into the source media at the two trim edges.
type Handles struct {
	StartPosition float64 `json:"startPosition" yaml:"start_position"`
	EndPosition   float64 `json:"endPosition" yaml:"end_position"`
}

// Transform positions a video clip inside the frame.
type Transform struct {
	Scale    float64 `json:"scale" yaml:"scale"`
	Rotation float64 `json:"rotation" yaml:"rotation"`
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Opacity  float64 `json:"opacity" yaml:"opacity"`
}

// VideoClip holds the video-only fields.
type VideoClip struct {
	Src       string     `json:"src" yaml:"src"`
	Transform *Transform `json:"transform,omitempty" yaml:"transform,omitempty"`
}

// AudioClip holds the audio-only fields.
type AudioClip struct {
	Src     string  `json:"src" yaml:"src"`
	Volume  float64 `json:"volume" yaml:"volume"`
	IsMuted bool    `json:"isMuted" yaml:"is_muted"`
}

// Caption is a single timed line of a caption clip.
type Caption struct {
	Text      string  `json:"text" yaml:"text"`
	StartTime float64 `json:"startTime" yaml:"start_time"`
	EndTime   float64 `json:"endTime" yaml:"end_time"`
	Speaker   string  `json:"speaker,omitempty" yaml:"speaker,omitempty"`
}

// CaptionClip holds the caption-only fields.
type CaptionClip struct {
	Text     string    `json:"text" yaml:"text"`
	Captions []Caption `json:"captions,omitempty" yaml:"captions,omitempty"`
}

// Clip is a placed segment on a track. Exactly one of Video, Audio or Caption
// is set, matching Kind.
type Clip struct {
	ID            string   `json:"id" yaml:"id"`
	Kind          ClipKind `json:"kind" yaml:"kind"`
	Name          string   `json:"name,omitempty" yaml:"name,omitempty"`
	StartTime     float64  `json:"startTime" yaml:"start_time"`
	EndTime       float64  `json:"endTime" yaml:"end_time"`
	MediaOffset   float64  `json:"mediaOffset" yaml:"media_offset"`
	MediaDuration float64  `json:"mediaDuration" yaml:"media_duration"`
	InitialBounds Bounds   `json:"initialBounds" yaml:"initial_bounds"`
	Handles       Handles  `json:"handles" yaml:"handles"`
	Layer         int      `json:"layer" yaml:"layer"`

	Video   *VideoClip   `json:"video,omitempty" yaml:"video,omitempty"`
	Audio   *AudioClip   `json:"audio,omitempty" yaml:"audio,omitempty"`
	Caption *CaptionClip `json:"caption,omitempty" yaml:"caption,omitempty"`
}

// Duration returns the clip's length on the timeline.
func (c Clip) Duration() float64 {
	return c.EndTime - c.StartTime
}

// Clone returns a deep copy of the clip.
func (c Clip) Clone() Clip {
	out := c
	if c.Video != nil {
		v := *c.Video
		if c.Video.Transform != nil {
			tr := *c.Video.Transform
			v.Transform = &tr
		}
		out.Video = &v
	}
	if c.Audio != nil {
		a := *c.Audio
		out.Audio = &a
	}
	if c.Caption != nil {
		cc := *c.Caption
		cc.Captions = append([]Caption(nil), c.Caption.Captions...)
		out.Caption = &cc
	}
	return out
}

// shift moves the clip along the timeline and through its source media by
// delta seconds. Duration fields are left untouched.
func (c *Clip) shift(delta float64) {
	c.StartTime += delta
	c.EndTime += delta
	c.MediaOffset += delta
	c.Handles.StartPosition += delta
	c.Handles.EndPosition += delta
	c.InitialBounds.StartTime += delta
	c.InitialBounds.EndTime += delta
	c.InitialBounds.MediaOffset += delta
}

// Transition blends two adjacent clips on the same track.
type Transition struct {
	ID       string             `json:"id" yaml:"id"`
	Type     string             `json:"type" yaml:"type"`
	ClipAID  string             `json:"clipAId" yaml:"clip_a_id"`
	ClipBID  string             `json:"clipBId" yaml:"clip_b_id"`
	Duration float64            `json:"duration" yaml:"duration"`
	Params   map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
}

// Clone returns a deep copy of the transition.
func (t Transition) Clone() Transition {
	out := t
	if t.Params != nil {
		out.Params = make(map[string]float64, len(t.Params))
		for k, v := range t.Params {
			out.Params[k] = v
		}
	}
	return out
}

// Track is an ordered lane of clips of a single kind.
type Track struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Type        ClipKind     `json:"type" yaml:"type"`
	Clips       []Clip       `json:"clips" yaml:"clips"`
	Transitions []Transition `json:"transitions" yaml:"transitions"`
	IsVisible   bool         `json:"isVisible" yaml:"is_visible"`
	IsMuted     bool         `json:"isMuted" yaml:"is_muted"`
}

// Clone returns a deep copy of the track.
func (t Track) Clone() Track {
	out := t
	if t.Clips != nil {
		out.Clips = make([]Clip, len(t.Clips))
		for i, c := range t.Clips {
			out.Clips[i] = c.Clone()
		}
	}
	if t.Transitions != nil {
		out.Transitions = make([]Transition, len(t.Transitions))
		for i, tr := range t.Transitions {
			out.Transitions[i] = tr.Clone()
		}
	}
	return out
}

func (t *Track) clipIndex(id string) int {
	for i := range t.Clips {
		if t.Clips[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Track) transitionIndex(id string) int {
	for i := range t.Transitions {
		if t.Transitions[i].ID == id {
			return i
		}
	}
	return -1
}

// sortClips orders clips by start time. Ties keep their relative order.
func (t *Track) sortClips() {
	sort.SliceStable(t.Clips, func(i, j int) bool {
		return t.Clips[i].StartTime < t.Clips[j].StartTime
	})
}

// dropTransitionsFor removes transitions that reference any of the given clips.
func (t *Track) dropTransitionsFor(clipIDs ...string) {
	if len(t.Transitions) == 0 {
		return
	}
	gone := make(map[string]struct{}, len(clipIDs))
	for _, id := range clipIDs {
		gone[id] = struct{}{}
	}
	kept := t.Transitions[:0]
	for _, tr := range t.Transitions {
		_, a := gone[tr.ClipAID]
		_, b := gone[tr.ClipBID]
		if !a && !b {
			kept = append(kept, tr)
		}
	}
	t.Transitions = kept
}

// RippleEntry is per-clip bookkeeping for ripple extension gestures.
type RippleEntry struct {
	InitialExtensionDone bool `json:"initialExtensionDone" yaml:"initial_extension_done"`
}

// Document is the full editable project state.
type Document struct {
	Tracks   []Track `json:"tracks" yaml:"tracks"`
	Duration float64 `json:"duration" yaml:"duration"`

	CurrentTime float64 `json:"currentTime" yaml:"current_time"`
	IsPlaying   bool    `json:"isPlaying" yaml:"is_playing"`
	Zoom        float64 `json:"zoom" yaml:"zoom"`
	FPS         float64 `json:"fps" yaml:"fps"`
	ScrollX     float64 `json:"scrollX" yaml:"scroll_x"`
	ScrollY     float64 `json:"scrollY" yaml:"scroll_y"`
	IsDragging  bool    `json:"isDragging" yaml:"is_dragging"`
	Error       string  `json:"error,omitempty" yaml:"error,omitempty"`

	SelectedClipIDs []string `json:"selectedClipIds" yaml:"selected_clip_ids"`
	SelectedTrackID string   `json:"selectedTrackId,omitempty" yaml:"selected_track_id,omitempty"`

	History     History                `json:"history" yaml:"history"`
	RippleState map[string]RippleEntry `json:"rippleState,omitempty" yaml:"ripple_state,omitempty"`
}

// NewDocument returns an empty document with the given view defaults.
func NewDocument(zoom, fps float64) Document {
	return Document{
		Zoom:            zoom,
		FPS:             fps,
		SelectedClipIDs: []string{},
		History:         History{CurrentIndex: -1},
	}
}

// Clone returns a deep copy. History entries are shared: they are never
// modified after being recorded.
func (d Document) Clone() Document {
	out := d
	if d.Tracks != nil {
		out.Tracks = make([]Track, len(d.Tracks))
		for i, t := range d.Tracks {
			out.Tracks[i] = t.Clone()
		}
	}
	out.SelectedClipIDs = append([]string{}, d.SelectedClipIDs...)
	out.History.Entries = append([]HistoryEntry(nil), d.History.Entries...)
	if d.RippleState != nil {
		out.RippleState = make(map[string]RippleEntry, len(d.RippleState))
		for k, v := range d.RippleState {
			out.RippleState[k] = v
		}
	}
	return out
}

func (d *Document) trackIndex(id string) int {
	for i := range d.Tracks {
		if d.Tracks[i].ID == id {
			return i
		}
	}
	return -1
}

// FindClip locates a clip by id across all tracks.
func (d Document) FindClip(id string) (trackIdx, clipIdx int, ok bool) {
	for ti := range d.Tracks {
		if ci := d.Tracks[ti].clipIndex(id); ci >= 0 {
			return ti, ci, true
		}
	}
	return -1, -1, false
}

// Track returns the track with the given id.
func (d Document) Track(id string) (Track, bool) {
	if i := d.trackIndex(id); i >= 0 {
		return d.Tracks[i], true
	}
	return Track{}, false
}

// Clip returns the clip with the given id from any track.
func (d Document) Clip(id string) (Clip, bool) {
	ti, ci, ok := d.FindClip(id)
	if !ok {
		return Clip{}, false
	}
	return d.Tracks[ti].Clips[ci], true
}

// ContentEnd returns the maximum end time of any clip.
func (d Document) ContentEnd() float64 {
	end := 0.0
	for _, t := range d.Tracks {
		for _, c := range t.Clips {
			if c.EndTime > end {
				end = c.EndTime
			}
		}
	}
	return end
}

// syncDuration raises Duration to cover every clip.
func (d *Document) syncDuration() {
	if end := d.ContentEnd(); end > d.Duration {
		d.Duration = end
	}
}
