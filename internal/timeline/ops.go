package timeline

import (
	"fmt"
)

func (e *Engine) addTrack(doc *Document, c AddTrack) error {
	t := c.Track.Clone()
	if t.ID == "" {
		t.ID = e.newID()
	}
	if doc.trackIndex(t.ID) >= 0 {
		return &EditError{Kind: KindDuplicateID, Op: CmdAddTrack, ID: t.ID, Msg: "track already exists"}
	}
	if err := validateTrack(CmdAddTrack, t, doc); err != nil {
		return err
	}
	if t.Clips == nil {
		t.Clips = []Clip{}
	}
	if t.Transitions == nil {
		t.Transitions = []Transition{}
	}
	t.sortClips()
	doc.Tracks = append(doc.Tracks, t)
	return nil
}

func validateTrack(op CommandType, t Track, doc *Document) error {
	if !t.Type.Valid() {
		return invalidArg(op, "track %q has unknown type %q", t.ID, t.Type)
	}
	seen := map[string]struct{}{}
	for _, c := range t.Clips {
		if c.Kind != t.Type {
			return &EditError{Kind: KindTypeMismatch, Op: op, ID: c.ID,
				Msg: fmt.Sprintf("%s clip on %s track", c.Kind, t.Type)}
		}
		if _, dup := seen[c.ID]; dup {
			return &EditError{Kind: KindDuplicateID, Op: op, ID: c.ID, Msg: "clip id repeated in track"}
		}
		seen[c.ID] = struct{}{}
		if doc != nil {
			if _, _, ok := doc.FindClip(c.ID); ok {
				return &EditError{Kind: KindDuplicateID, Op: op, ID: c.ID, Msg: "clip already exists"}
			}
		}
	}
	return nil
}

func (e *Engine) updateTrack(doc *Document, c UpdateTrack) error {
	i := doc.trackIndex(c.TrackID)
	if i < 0 {
		return notFound(CmdUpdateTrack, "track", c.TrackID)
	}
	t := &doc.Tracks[i]
	if c.Name != nil {
		t.Name = *c.Name
	}
	if c.IsVisible != nil {
		t.IsVisible = *c.IsVisible
	}
	if c.IsMuted != nil {
		t.IsMuted = *c.IsMuted
	}
	return nil
}

func (e *Engine) removeTrack(doc *Document, c RemoveTrack) error {
	i := doc.trackIndex(c.TrackID)
	if i < 0 {
		return notFound(CmdRemoveTrack, "track", c.TrackID)
	}
	for _, clip := range doc.Tracks[i].Clips {
		delete(doc.RippleState, clip.ID)
	}
	doc.Tracks = append(doc.Tracks[:i], doc.Tracks[i+1:]...)
	if doc.SelectedTrackID == c.TrackID {
		doc.SelectedTrackID = ""
	}
	return nil
}

func (e *Engine) moveTrack(doc *Document, c MoveTrack) error {
	i := doc.trackIndex(c.TrackID)
	if i < 0 {
		return notFound(CmdMoveTrack, "track", c.TrackID)
	}
	to := c.Index
	if to < 0 {
		to = 0
	}
	if to > len(doc.Tracks)-1 {
		to = len(doc.Tracks) - 1
	}
	if to == i {
		return nil
	}
	t := doc.Tracks[i]
	rest := append(doc.Tracks[:i:i], doc.Tracks[i+1:]...)
	out := make([]Track, 0, len(doc.Tracks))
	out = append(out, rest[:to]...)
	out = append(out, t)
	out = append(out, rest[to:]...)
	doc.Tracks = out
	return nil
}

func (e *Engine) setTracks(doc *Document, c SetTracks) error {
	seenTracks := map[string]struct{}{}
	seenClips := map[string]struct{}{}
	tracks := make([]Track, 0, len(c.Tracks))
	for _, src := range c.Tracks {
		t := src.Clone()
		if t.ID == "" {
			t.ID = e.newID()
		}
		if _, dup := seenTracks[t.ID]; dup {
			return &EditError{Kind: KindDuplicateID, Op: CmdSetTracks, ID: t.ID, Msg: "track id repeated"}
		}
		seenTracks[t.ID] = struct{}{}
		if err := validateTrack(CmdSetTracks, t, nil); err != nil {
			return err
		}
		for _, clip := range t.Clips {
			if _, dup := seenClips[clip.ID]; dup {
				return &EditError{Kind: KindDuplicateID, Op: CmdSetTracks, ID: clip.ID, Msg: "clip id repeated"}
			}
			seenClips[clip.ID] = struct{}{}
		}
		tracks = append(tracks, t)
	}
	doc.Tracks = tracks
	normalize(doc)
	return nil
}

func (e *Engine) addClip(doc *Document, c AddClip) error {
	ti := doc.trackIndex(c.TrackID)
	if ti < 0 {
		return notFound(CmdAddClip, "track", c.TrackID)
	}
	track := &doc.Tracks[ti]
	clip, err := e.buildClip(c.Clip, track.Type)
	if err != nil {
		return err
	}
	if other, _, ok := doc.FindClip(clip.ID); ok && other != ti {
		return &EditError{Kind: KindDuplicateID, Op: CmdAddClip, ID: clip.ID, Msg: "clip exists on another track"}
	}
	if ci := track.clipIndex(clip.ID); ci >= 0 {
		track.Clips = append(track.Clips[:ci], track.Clips[ci+1:]...)
	}
	if err := e.checkPlacement(CmdAddClip, track, clip); err != nil {
		return err
	}
	track.Clips = append(track.Clips, clip)
	track.sortClips()
	return nil
}

// buildClip fills defaults for a clip spec and checks it against the track type.
func (e *Engine) buildClip(spec ClipSpec, trackType ClipKind) (Clip, error) {
	kind := spec.Kind
	if kind == "" {
		kind = trackType
	}
	id := spec.ID
	if id == "" {
		id = e.newID()
	}
	if kind != trackType {
		return Clip{}, &EditError{Kind: KindTypeMismatch, Op: CmdAddClip, ID: id,
			Msg: fmt.Sprintf("%s clip on %s track", kind, trackType)}
	}
	if err := checkPayload(CmdAddClip, id, kind, spec.Video, spec.Audio, spec.Caption); err != nil {
		return Clip{}, err
	}

	start := deref(spec.StartTime, 0)
	end := start + deref(spec.Duration, deref(spec.MediaDuration, 0))
	if spec.EndTime != nil {
		end = *spec.EndTime
	}
	offset := deref(spec.MediaOffset, 0)
	mediaDur := deref(spec.MediaDuration, end-start)
	if err := checkFinite(start, end, offset, mediaDur); err != nil {
		return Clip{}, &EditError{Kind: KindInvalidArgument, Op: CmdAddClip, ID: id, Msg: err.(*EditError).Msg}
	}
	if start < 0 || offset < 0 || mediaDur < 0 {
		return Clip{}, &EditError{Kind: KindInvalidArgument, Op: CmdAddClip, ID: id, Msg: "negative time value"}
	}
	if end <= start {
		return Clip{}, &EditError{Kind: KindInvalidArgument, Op: CmdAddClip, ID: id,
			Msg: fmt.Sprintf("end time %v must be after start time %v", end, start)}
	}

	clip := Clip{
		ID:            id,
		Kind:          kind,
		Name:          spec.Name,
		StartTime:     start,
		EndTime:       end,
		MediaOffset:   offset,
		MediaDuration: mediaDur,
		Layer:         spec.Layer,
		InitialBounds: Bounds{StartTime: start, EndTime: end, MediaOffset: offset, MediaDuration: mediaDur},
		Handles:       Handles{StartPosition: offset, EndPosition: offset + (end - start)},
	}
	if spec.InitialBounds != nil {
		clip.InitialBounds = *spec.InitialBounds
	}
	if spec.Handles != nil {
		clip.Handles = *spec.Handles
	}
	switch kind {
	case KindVideo:
		clip.Video = &VideoClip{}
		if spec.Video != nil {
			clip.Video = spec.Video
		}
	case KindAudio:
		clip.Audio = &AudioClip{Volume: 1}
		if spec.Audio != nil {
			clip.Audio = spec.Audio
		}
	case KindCaption:
		clip.Caption = &CaptionClip{}
		if spec.Caption != nil {
			clip.Caption = spec.Caption
		}
	}
	return clip.Clone(), nil
}

// checkPayload rejects variant payloads that do not belong to kind.
func checkPayload(op CommandType, id string, kind ClipKind, v *VideoClip, a *AudioClip, c *CaptionClip) error {
	var wrong ClipKind
	switch kind {
	case KindVideo:
		if a != nil {
			wrong = KindAudio
		} else if c != nil {
			wrong = KindCaption
		}
	case KindAudio:
		if v != nil {
			wrong = KindVideo
		} else if c != nil {
			wrong = KindCaption
		}
	case KindCaption:
		if v != nil {
			wrong = KindVideo
		} else if a != nil {
			wrong = KindAudio
		}
	default:
		return invalidArg(op, "unknown clip kind %q", kind)
	}
	if wrong != "" {
		return &EditError{Kind: KindTypeMismatch, Op: op, ID: id,
			Msg: fmt.Sprintf("%s payload on %s clip", wrong, kind)}
	}
	return nil
}

// checkPlacement rejects clip if it overlaps another clip on its layer.
func (e *Engine) checkPlacement(op CommandType, track *Track, clip Clip) error {
	if !e.limits.RejectOverlaps {
		return nil
	}
	for _, other := range track.Clips {
		if other.ID == clip.ID || other.Layer != clip.Layer {
			continue
		}
		if Overlaps(clip.StartTime, clip.EndTime, other.StartTime, other.EndTime) {
			return &EditError{Kind: KindInvariantViolation, Op: op, ID: clip.ID,
				Msg: fmt.Sprintf("overlaps clip %q on layer %d", other.ID, clip.Layer)}
		}
	}
	return nil
}

func (e *Engine) updateClip(doc *Document, c UpdateClip) error {
	ti := doc.trackIndex(c.TrackID)
	if ti < 0 {
		return notFound(CmdUpdateClip, "track", c.TrackID)
	}
	track := &doc.Tracks[ti]
	ci := track.clipIndex(c.ClipID)
	if ci < 0 {
		return notFound(CmdUpdateClip, "clip", c.ClipID)
	}
	clip := track.Clips[ci].Clone()
	f := c.Fields
	if err := checkPayload(CmdUpdateClip, clip.ID, clip.Kind, f.Video, f.Audio, f.Caption); err != nil {
		return err
	}
	if f.Name != nil {
		clip.Name = *f.Name
	}
	clip.StartTime = deref(f.StartTime, clip.StartTime)
	clip.EndTime = deref(f.EndTime, clip.EndTime)
	clip.MediaOffset = deref(f.MediaOffset, clip.MediaOffset)
	clip.MediaDuration = deref(f.MediaDuration, clip.MediaDuration)
	if f.InitialBounds != nil {
		clip.InitialBounds = *f.InitialBounds
	}
	if f.Handles != nil {
		clip.Handles = *f.Handles
	}
	if f.Layer != nil {
		clip.Layer = *f.Layer
	}
	if f.Video != nil {
		clip.Video = f.Video
	}
	if f.Audio != nil {
		clip.Audio = f.Audio
	}
	if f.Caption != nil {
		clip.Caption = f.Caption
	}
	if err := checkFinite(clip.StartTime, clip.EndTime, clip.MediaOffset, clip.MediaDuration); err != nil {
		return &EditError{Kind: KindInvalidArgument, Op: CmdUpdateClip, ID: clip.ID, Msg: err.(*EditError).Msg}
	}
	if clip.StartTime < 0 || clip.EndTime <= clip.StartTime {
		return &EditError{Kind: KindInvalidArgument, Op: CmdUpdateClip, ID: clip.ID,
			Msg: fmt.Sprintf("invalid span [%v, %v)", clip.StartTime, clip.EndTime)}
	}
	track.Clips[ci] = clip.Clone()
	track.sortClips()
	return nil
}

func (e *Engine) removeClip(doc *Document, c RemoveClip) error {
	ti := doc.trackIndex(c.TrackID)
	if ti < 0 {
		return notFound(CmdRemoveClip, "track", c.TrackID)
	}
	track := &doc.Tracks[ti]
	ci := track.clipIndex(c.ClipID)
	if ci < 0 {
		return notFound(CmdRemoveClip, "clip", c.ClipID)
	}
	track.Clips = append(track.Clips[:ci], track.Clips[ci+1:]...)
	track.dropTransitionsFor(c.ClipID)
	delete(doc.RippleState, c.ClipID)
	return nil
}

func (e *Engine) rippleDeleteClip(doc *Document, c RippleDeleteClip) error {
	ti := doc.trackIndex(c.TrackID)
	if ti < 0 {
		return notFound(CmdRippleDeleteClip, "track", c.TrackID)
	}
	track := &doc.Tracks[ti]
	ci := track.clipIndex(c.ClipID)
	if ci < 0 {
		return notFound(CmdRippleDeleteClip, "clip", c.ClipID)
	}
	removed := track.Clips[ci]
	track.Clips = append(track.Clips[:ci], track.Clips[ci+1:]...)
	track.dropTransitionsFor(c.ClipID)
	delete(doc.RippleState, c.ClipID)
	cascade(track, removed.EndTime, -removed.Duration(), "")
	return nil
}

// cascade shifts every clip on track starting at or after from by delta,
// skipping the clip named skip, then re-sorts.
func cascade(track *Track, from, delta float64, skip string) {
	if delta == 0 {
		return
	}
	for i := range track.Clips {
		c := &track.Clips[i]
		if c.ID == skip || c.StartTime < from {
			continue
		}
		c.shift(delta)
	}
	track.sortClips()
}

func (e *Engine) moveClip(doc *Document, c MoveClip) error {
	si := doc.trackIndex(c.SourceTrackID)
	if si < 0 {
		return notFound(CmdMoveClip, "source track", c.SourceTrackID)
	}
	ti := doc.trackIndex(c.TargetTrackID)
	if ti < 0 {
		return notFound(CmdMoveClip, "target track", c.TargetTrackID)
	}
	if err := checkFinite(c.NewTime); err != nil {
		return invalidArg(CmdMoveClip, "non-finite time %v", c.NewTime)
	}
	source := &doc.Tracks[si]
	ci := source.clipIndex(c.ClipID)
	if ci < 0 {
		return notFound(CmdMoveClip, "clip", c.ClipID)
	}
	target := &doc.Tracks[ti]
	clip := source.Clips[ci].Clone()
	if clip.Kind != target.Type {
		return &EditError{Kind: KindTypeMismatch, Op: CmdMoveClip, ID: clip.ID,
			Msg: fmt.Sprintf("%s clip on %s track", clip.Kind, target.Type)}
	}

	desiredStart := c.NewTime
	if desiredStart < 0 {
		desiredStart = 0
	}
	clip.shift(desiredStart - clip.StartTime)
	if err := e.checkPlacement(CmdMoveClip, target, clip); err != nil {
		return err
	}

	if si == ti {
		source.Clips[ci] = clip
	} else {
		source.Clips = append(source.Clips[:ci], source.Clips[ci+1:]...)
		source.dropTransitionsFor(clip.ID)
		target.Clips = append(target.Clips, clip)
	}
	source.sortClips()
	target.sortClips()
	return nil
}

func (e *Engine) splitClip(doc *Document, c SplitClip) error {
	ti := doc.trackIndex(c.TrackID)
	if ti < 0 {
		return notFound(CmdSplitClip, "track", c.TrackID)
	}
	track := &doc.Tracks[ti]
	ci := track.clipIndex(c.ClipID)
	if ci < 0 {
		return notFound(CmdSplitClip, "clip", c.ClipID)
	}
	if err := checkFinite(c.Time); err != nil {
		return invalidArg(CmdSplitClip, "non-finite time %v", c.Time)
	}
	orig := track.Clips[ci]
	at := c.Time
	if !(orig.StartTime < at && at < orig.EndTime) {
		return nil
	}

	firstID, secondID := orig.ID+"-1", orig.ID+"-2"
	for _, id := range []string{firstID, secondID} {
		if _, _, ok := doc.FindClip(id); ok {
			return &EditError{Kind: KindDuplicateID, Op: CmdSplitClip, ID: id, Msg: "split id already in use"}
		}
	}

	ref := referenceBounds(orig)
	origOffset, origDuration := ref.MediaOffset, ref.MediaDuration
	firstDur := at - orig.StartTime

	first := orig.Clone()
	first.ID = firstID
	first.EndTime = at
	first.MediaOffset = origOffset
	first.MediaDuration = origDuration
	first.Handles = Handles{StartPosition: origOffset, EndPosition: origOffset + firstDur}
	first.InitialBounds = Bounds{StartTime: orig.StartTime, EndTime: at, MediaOffset: origOffset, MediaDuration: origDuration}

	second := orig.Clone()
	second.ID = secondID
	second.StartTime = at
	second.MediaOffset = origOffset + firstDur
	second.MediaDuration = origDuration
	second.Handles = Handles{StartPosition: origOffset + firstDur, EndPosition: origOffset + origDuration}
	second.InitialBounds = Bounds{StartTime: at, EndTime: orig.EndTime, MediaOffset: origOffset + firstDur, MediaDuration: origDuration}

	switch orig.Kind {
	case KindCaption:
		if orig.Caption != nil {
			first.Caption.Captions, second.Caption.Captions = splitCaptions(orig.Caption.Captions, at)
		}
	case KindVideo, KindAudio:
		// Media payloads are shared by both halves.
	}

	clips := make([]Clip, 0, len(track.Clips)+1)
	clips = append(clips, track.Clips[:ci]...)
	clips = append(clips, first, second)
	clips = append(clips, track.Clips[ci+1:]...)
	track.Clips = clips
	track.sortClips()

	for i := range track.Transitions {
		tr := &track.Transitions[i]
		if tr.ClipAID == orig.ID {
			tr.ClipAID = secondID
		}
		if tr.ClipBID == orig.ID {
			tr.ClipBID = firstID
		}
	}

	doc.SelectedClipIDs = []string{firstID}
	if doc.RippleState == nil {
		doc.RippleState = map[string]RippleEntry{}
	}
	delete(doc.RippleState, orig.ID)
	doc.RippleState[firstID] = RippleEntry{}
	doc.RippleState[secondID] = RippleEntry{}
	return nil
}

// splitCaptions partitions timed caption lines at the cut, clipping lines
// that straddle it.
func splitCaptions(lines []Caption, at float64) (before, after []Caption) {
	for _, l := range lines {
		if l.StartTime < at {
			b := l
			if b.EndTime > at {
				b.EndTime = at
			}
			before = append(before, b)
		}
		if l.EndTime > at {
			a := l
			if a.StartTime < at {
				a.StartTime = at
			}
			after = append(after, a)
		}
	}
	return before, after
}

// referenceBounds returns the clip's initial bounds, falling back to its
// current placement when none were recorded.
func referenceBounds(c Clip) Bounds {
	if c.InitialBounds == (Bounds{}) {
		return Bounds{StartTime: c.StartTime, EndTime: c.EndTime, MediaOffset: c.MediaOffset, MediaDuration: c.MediaDuration}
	}
	return c.InitialBounds
}

func (e *Engine) addTransition(doc *Document, c AddTransition) error {
	ta, ca, ok := doc.FindClip(c.ClipAID)
	if !ok {
		return notFound(CmdAddTransition, "clip", c.ClipAID)
	}
	track := &doc.Tracks[ta]
	cb := track.clipIndex(c.ClipBID)
	if cb < 0 {
		return notFound(CmdAddTransition, "clip on the same track", c.ClipBID)
	}
	if err := checkFinite(c.Duration); err != nil {
		return invalidArg(CmdAddTransition, "non-finite duration %v", c.Duration)
	}
	a, b := track.Clips[ca], track.Clips[cb]
	if !IsAdjacent(a.EndTime, b.StartTime, e.limits.AdjacencyTolerance) {
		e.logger.Printf("timeline: transition %s/%s skipped: clips not adjacent (%.3f -> %.3f)", a.ID, b.ID, a.EndTime, b.StartTime)
		return nil
	}

	id := c.ID
	if id == "" {
		id = e.newID()
	}
	for _, t := range doc.Tracks {
		if t.transitionIndex(id) >= 0 {
			return &EditError{Kind: KindDuplicateID, Op: CmdAddTransition, ID: id, Msg: "transition already exists"}
		}
	}
	kind := c.Kind
	if kind == "" {
		kind = "dissolve"
	}
	tr := Transition{
		ID:       id,
		Type:     kind,
		ClipAID:  a.ID,
		ClipBID:  b.ID,
		Duration: e.clampTransition(c.Duration),
	}
	if len(c.Params) > 0 {
		tr.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			tr.Params[k] = v
		}
	}
	track.Transitions = append(track.Transitions, tr)
	return nil
}

func (e *Engine) clampTransition(d float64) float64 {
	if d == 0 {
		d = e.limits.DefaultTransitionDuration
	}
	return Clamp(d, e.limits.MinTransitionDuration, e.limits.MaxTransitionDuration)
}

func findTransition(doc *Document, id string) (*Track, int) {
	for i := range doc.Tracks {
		if ti := doc.Tracks[i].transitionIndex(id); ti >= 0 {
			return &doc.Tracks[i], ti
		}
	}
	return nil, -1
}

func (e *Engine) updateTransition(doc *Document, c UpdateTransition) error {
	track, i := findTransition(doc, c.TransitionID)
	if track == nil {
		return notFound(CmdUpdateTransition, "transition", c.TransitionID)
	}
	tr := &track.Transitions[i]
	if c.Kind != nil {
		tr.Type = *c.Kind
	}
	if c.Duration != nil {
		if err := checkFinite(*c.Duration); err != nil {
			return invalidArg(CmdUpdateTransition, "non-finite duration %v", *c.Duration)
		}
		tr.Duration = e.clampTransition(*c.Duration)
	}
	if len(c.Params) > 0 {
		if tr.Params == nil {
			tr.Params = make(map[string]float64, len(c.Params))
		}
		for k, v := range c.Params {
			tr.Params[k] = v
		}
	}
	return nil
}

func (e *Engine) removeTransition(doc *Document, c RemoveTransition) error {
	track, i := findTransition(doc, c.TransitionID)
	if track == nil {
		return notFound(CmdRemoveTransition, "transition", c.TransitionID)
	}
	track.Transitions = append(track.Transitions[:i], track.Transitions[i+1:]...)
	return nil
}

func deref(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
