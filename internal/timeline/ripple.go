package timeline

import (
	"math"
)

func (e *Engine) trimClip(doc *Document, c TrimClip) error {
	ti, ci, ok := doc.FindClip(c.ClipID)
	if !ok {
		return notFound(CmdTrimClip, "clip", c.ClipID)
	}
	for _, p := range []*float64{c.StartTime, c.EndTime} {
		if p != nil {
			if err := checkFinite(*p); err != nil {
				return invalidArg(CmdTrimClip, "non-finite time %v", *p)
			}
		}
	}
	track := &doc.Tracks[ti]

	switch {
	case c.EndTime != nil:
		return e.trimEnd(doc, track, ci, *c.EndTime, c.Ripple, c.Handles)
	case c.StartTime != nil:
		return e.trimStart(track, ci, *c.StartTime, c.Ripple, c.Handles)
	case c.Handles != nil:
		track.Clips[ci].Handles = *c.Handles
	}
	return nil
}

// trimEnd moves the right edge of track.Clips[ci]. Extension is capped by
// the media still available after the clip's offset, measured against the
// clip's initial bounds so repeated trims do not erode the range.
func (e *Engine) trimEnd(doc *Document, track *Track, ci int, requested float64, ripple bool, handles *Handles) error {
	clip := track.Clips[ci]
	oldEnd := clip.EndTime
	ref := referenceBounds(clip)

	effectiveMax := (ref.MediaOffset + ref.MediaDuration) - clip.MediaOffset
	maxEnd := clip.StartTime + effectiveMax
	minEnd := clip.StartTime + e.limits.MinClipDuration

	var newEnd float64
	if requested > oldEnd {
		newEnd = math.Max(oldEnd, math.Min(requested, maxEnd))
	} else {
		newEnd = math.Max(requested, minEnd)
	}

	clip.EndTime = newEnd
	if handles != nil {
		clip.Handles = *handles
	} else {
		clip.Handles = Handles{StartPosition: clip.MediaOffset, EndPosition: clip.MediaOffset + (newEnd - clip.StartTime)}
	}

	if !ripple {
		if err := e.checkPlacement(CmdTrimClip, track, clip); err != nil {
			return err
		}
		track.Clips[ci] = clip
		track.sortClips()
		return nil
	}

	track.Clips[ci] = clip
	cascade(track, oldEnd, newEnd-oldEnd, clip.ID)
	if newEnd > oldEnd {
		if doc.RippleState == nil {
			doc.RippleState = map[string]RippleEntry{}
		}
		doc.RippleState[clip.ID] = RippleEntry{InitialExtensionDone: true}
	}
	return nil
}

// trimStart moves the left edge of track.Clips[ci]. Without ripple the edge
// and the media in-point move together and the floor is the earliest media
// the clip was created with. With ripple the clip keeps its timeline start,
// only the in-point slides, and downstream clips absorb the length change.
// Either way the in-point stays within the clip's initial media range.
func (e *Engine) trimStart(track *Track, ci int, requested float64, ripple bool, handles *Handles) error {
	clip := track.Clips[ci]
	oldStart, oldEnd := clip.StartTime, clip.EndTime
	ref := referenceBounds(clip)

	minLeft := 0.0
	if !ripple {
		minLeft = math.Max(0, oldStart-(clip.MediaOffset-ref.MediaOffset))
	}
	maxStart := oldEnd - e.limits.MinClipDuration
	newStart := Clamp(requested, minLeft, maxStart)
	delta := newStart - oldStart
	// The in-point never slides before the media the clip was created with.
	if floor := math.Min(0, math.Max(ref.MediaOffset, 0)-clip.MediaOffset); delta < floor {
		delta = floor
	}
	if delta == 0 {
		return nil
	}
	clip.MediaOffset += delta

	if !ripple {
		clip.StartTime = oldStart + delta
		clip.Handles = Handles{StartPosition: clip.MediaOffset, EndPosition: clip.MediaOffset + (clip.EndTime - clip.StartTime)}
		if handles != nil {
			clip.Handles = *handles
		}
		if err := e.checkPlacement(CmdTrimClip, track, clip); err != nil {
			return err
		}
		track.Clips[ci] = clip
		track.sortClips()
		return nil
	}

	mediaEnd := ref.MediaOffset + ref.MediaDuration
	clip.EndTime = math.Min(oldEnd-delta, clip.StartTime+(mediaEnd-clip.MediaOffset))
	clip.Handles = Handles{StartPosition: clip.MediaOffset, EndPosition: clip.MediaOffset + (clip.EndTime - clip.StartTime)}
	if handles != nil {
		clip.Handles = *handles
	}
	track.Clips[ci] = clip
	cascade(track, oldEnd, clip.EndTime-oldEnd, clip.ID)
	return nil
}
