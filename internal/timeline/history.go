package timeline

import "time"

// DefaultMaxHistorySize bounds the number of history entries kept.
const DefaultMaxHistorySize = 100

// HistoryEntry records one undoable edit.
type HistoryEntry struct {
	Description  string      `json:"description" yaml:"description"`
	Command      CommandType `json:"command" yaml:"command"`
	Forward      Delta       `json:"forwardDelta" yaml:"forward_delta"`
	Inverse      Delta       `json:"inverseDelta" yaml:"inverse_delta"`
	Timestamp    time.Time   `json:"timestamp" yaml:"timestamp"`
	IsCheckpoint bool        `json:"isCheckpoint" yaml:"is_checkpoint"`
}

// History is the linear undo/redo log. CurrentIndex is -1 when empty.
type History struct {
	Entries      []HistoryEntry `json:"entries" yaml:"entries"`
	CurrentIndex int            `json:"currentIndex" yaml:"current_index"`
}

// HistoryState is the position of the cursor within the log.
type HistoryState string

const (
	HistoryIdle   HistoryState = "idle"
	HistoryAtHead HistoryState = "at_head"
	HistoryMid    HistoryState = "mid"
)

// State classifies the cursor position.
func (h History) State() HistoryState {
	switch {
	case len(h.Entries) == 0:
		return HistoryIdle
	case h.CurrentIndex >= len(h.Entries)-1:
		return HistoryAtHead
	default:
		return HistoryMid
	}
}

// CanUndo reports whether Undo would change the document.
func (h History) CanUndo() bool {
	return h.CurrentIndex > 0 && h.CurrentIndex < len(h.Entries)
}

// CanRedo reports whether Redo would change the document.
func (h History) CanRedo() bool {
	return h.CurrentIndex < len(h.Entries)-1
}

// push truncates the redo branch, appends entry and enforces max.
func (h *History) push(entry HistoryEntry, max int) {
	if max <= 0 {
		max = DefaultMaxHistorySize
	}
	keep := h.CurrentIndex + 1
	if keep < 0 {
		keep = 0
	}
	if keep > len(h.Entries) {
		keep = len(h.Entries)
	}
	entries := make([]HistoryEntry, keep, keep+1)
	copy(entries, h.Entries[:keep])
	entries = append(entries, entry)
	if over := len(entries) - max; over > 0 {
		entries = entries[over:]
	}
	h.Entries = entries
	h.CurrentIndex = len(entries) - 1
}

var nonUndoable = map[CommandType]bool{
	CmdSetCurrentTime:   true,
	CmdSetPlaying:       true,
	CmdSetScrollX:       true,
	CmdSetScrollY:       true,
	CmdSetDragging:      true,
	CmdSetError:         true,
	CmdSelectClips:      true,
	CmdSetSelectedTrack: true,
	CmdSetDuration:      true,
	CmdClearState:       true,
	CmdSetState:         true,
	CmdUndo:             true,
	CmdRedo:             true,
	CmdClearHistory:     true,
}

var checkpoints = map[CommandType]bool{
	CmdAddTrack:         true,
	CmdRemoveTrack:      true,
	CmdMoveTrack:        true,
	CmdSetTracks:        true,
	CmdAddClip:          true,
	CmdRemoveClip:       true,
	CmdRippleDeleteClip: true,
	CmdSplitClip:        true,
	CmdMoveClip:         true,
}

// IsUndoable reports whether dispatching t records a history entry.
func IsUndoable(t CommandType) bool {
	return KnownCommand(t) && !nonUndoable[t]
}

// IsCheckpoint reports whether t is a structural edit.
func IsCheckpoint(t CommandType) bool {
	return checkpoints[t]
}

// Describe returns the history label for a command type.
func Describe(t CommandType) string {
	switch t {
	case CmdAddTrack:
		return "Add track"
	case CmdUpdateTrack:
		return "Update track"
	case CmdRemoveTrack:
		return "Remove track"
	case CmdMoveTrack:
		return "Move track"
	case CmdSetTracks:
		return "Replace tracks"
	case CmdAddClip:
		return "Add clip"
	case CmdUpdateClip:
		return "Update clip"
	case CmdRemoveClip:
		return "Remove clip"
	case CmdRippleDeleteClip:
		return "Ripple delete clip"
	case CmdMoveClip:
		return "Move clip"
	case CmdSplitClip:
		return "Split clip"
	case CmdTrimClip:
		return "Trim clip"
	case CmdAddTransition:
		return "Add transition"
	case CmdUpdateTransition:
		return "Update transition"
	case CmdRemoveTransition:
		return "Remove transition"
	case CmdSetZoom:
		return "Change zoom"
	case CmdSetFPS:
		return "Change FPS"
	default:
		return string(t)
	}
}

// undo steps the cursor back one entry, applying its inverse to the current
// document. Entry 0 is the baseline and is never undone. Duration is not part
// of any delta; it only grows to cover the restored content. It reports
// whether anything changed.
func undo(doc *Document) bool {
	h := &doc.History
	if h.CurrentIndex <= 0 || h.CurrentIndex >= len(h.Entries) {
		return false
	}
	prevSelection := doc.SelectedClipIDs
	h.Entries[h.CurrentIndex].Inverse.apply(doc)
	h.CurrentIndex--
	doc.syncDuration()
	reconcileSelection(doc, prevSelection)
	return true
}

// redo re-applies the entry after the cursor.
func redo(doc *Document) bool {
	h := &doc.History
	if h.CurrentIndex >= len(h.Entries)-1 {
		return false
	}
	prevSelection := doc.SelectedClipIDs
	h.Entries[h.CurrentIndex+1].Forward.apply(doc)
	h.CurrentIndex++
	doc.syncDuration()
	reconcileSelection(doc, prevSelection)
	return true
}

// reconcileSelection keeps the previously selected clips that still exist.
// When none survive it falls back to the first clip of the first track that
// has any, or to an empty selection.
func reconcileSelection(doc *Document, prev []string) {
	kept := make([]string, 0, len(prev))
	for _, id := range prev {
		if _, _, ok := doc.FindClip(id); ok {
			kept = append(kept, id)
		}
	}
	if len(kept) > 0 {
		doc.SelectedClipIDs = kept
		return
	}
	for _, t := range doc.Tracks {
		if len(t.Clips) > 0 {
			doc.SelectedClipIDs = []string{t.Clips[0].ID}
			return
		}
	}
	doc.SelectedClipIDs = []string{}
}
