package tui

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"cutline/internal/timeline"
)

const zoomFactor = 1.25

// Editor applies commands to a live document.
type Editor interface {
	Dispatch(ctx context.Context, cmd timeline.Command) (timeline.Document, error)
}

// TransitionPreset is what the transition key inserts.
type TransitionPreset struct {
	Kind     string
	Duration float64
	Params   map[string]float64
}

// EditorOptions tunes the interactive editor.
type EditorOptions struct {
	Title          string
	UnitsPerColumn float64

	// Step is how far, in seconds, the playhead and trims move per key press.
	Step       float64
	Transition TransitionPreset
	Keys       *KeyMap
}

// EditorModel is a keyboard-driven timeline editor. Every edit goes through
// the Editor, so the model only ever shows documents the engine produced.
type EditorModel struct {
	ctx    context.Context
	editor Editor
	doc    timeline.Document
	opts   EditorOptions
	keys   KeyMap
	help   help.Model

	status   string
	err      error
	busy     bool
	width    int
	quitting bool
}

// NewEditorModel returns an editor showing doc.
func NewEditorModel(ctx context.Context, ed Editor, doc timeline.Document, opts EditorOptions) EditorModel {
	if opts.UnitsPerColumn <= 0 {
		opts.UnitsPerColumn = 10
	}
	if opts.Step <= 0 {
		opts.Step = 1
	}
	if opts.Transition.Kind == "" {
		opts.Transition.Kind = "dissolve"
	}
	if opts.Transition.Duration <= 0 {
		opts.Transition.Duration = 1
	}
	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	return EditorModel{
		ctx:    ctx,
		editor: ed,
		doc:    doc,
		opts:   opts,
		keys:   keys,
		help:   help.New(),
		width:  80,
	}
}

// Document returns the last document the editor received.
func (m EditorModel) Document() timeline.Document {
	return m.doc
}

// Err returns the last rejected edit, if any.
func (m EditorModel) Err() error {
	return m.err
}

// Init satisfies the tea.Model interface.
func (m EditorModel) Init() tea.Cmd {
	if m.selectedClip() == nil {
		if clips := orderedClips(m.doc); len(clips) > 0 {
			return m.dispatchCmd(timeline.SelectClips{ClipIDs: []string{clips[0].id}})
		}
	}
	return nil
}

// Update satisfies the tea.Model interface.
func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case dispatchedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.err = nil
		m.doc = msg.doc
		m.status = timeline.Describe(msg.cmd.Type())
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Help) {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		if m.busy {
			return m, nil
		}
		cmd, note := m.commandFor(msg)
		if note != "" {
			m.status = note
			m.err = nil
		}
		if cmd == nil {
			return m, nil
		}
		m.busy = true
		return m, m.dispatchCmd(cmd)
	}
	return m, nil
}

// commandFor maps a key press to an edit. A non-empty note explains why a
// recognised key produced no command.
func (m EditorModel) commandFor(msg tea.KeyMsg) (timeline.Command, string) {
	doc := m.doc
	sel := m.selectedClip()

	switch {
	case key.Matches(msg, m.keys.Left):
		t := doc.CurrentTime - m.opts.Step
		if t < 0 {
			t = 0
		}
		return timeline.SetCurrentTime{Time: t}, ""
	case key.Matches(msg, m.keys.Right):
		return timeline.SetCurrentTime{Time: doc.CurrentTime + m.opts.Step}, ""
	case key.Matches(msg, m.keys.NextClip), key.Matches(msg, m.keys.PrevClip):
		clips := orderedClips(doc)
		if len(clips) == 0 {
			return nil, "no clips"
		}
		step := 1
		if key.Matches(msg, m.keys.PrevClip) {
			step = -1
		}
		next := 0
		if sel != nil {
			for i, c := range clips {
				if c.id == sel.id {
					next = (i + step + len(clips)) % len(clips)
					break
				}
			}
		}
		return timeline.SelectClips{ClipIDs: []string{clips[next].id}}, ""
	case key.Matches(msg, m.keys.ZoomIn):
		return timeline.SetZoom{Zoom: doc.Zoom * zoomFactor}, ""
	case key.Matches(msg, m.keys.ZoomOut):
		return timeline.SetZoom{Zoom: doc.Zoom / zoomFactor}, ""
	case key.Matches(msg, m.keys.Undo):
		if !doc.History.CanUndo() {
			return nil, "nothing to undo"
		}
		return timeline.Undo{}, ""
	case key.Matches(msg, m.keys.Redo):
		if !doc.History.CanRedo() {
			return nil, "nothing to redo"
		}
		return timeline.Redo{}, ""
	}

	clipKeys := []key.Binding{m.keys.Split, m.keys.TrimIn, m.keys.TrimOut, m.keys.Remove, m.keys.RippleDel, m.keys.Transition}
	if !key.Matches(msg, clipKeys...) {
		return nil, ""
	}
	if sel == nil {
		return nil, "select a clip first (tab)"
	}

	switch {
	case key.Matches(msg, m.keys.Split):
		if doc.CurrentTime <= sel.clip.StartTime || doc.CurrentTime >= sel.clip.EndTime {
			return nil, "playhead is outside the selected clip"
		}
		return timeline.SplitClip{TrackID: sel.trackID, ClipID: sel.id, Time: doc.CurrentTime}, ""
	case key.Matches(msg, m.keys.TrimIn):
		end := sel.clip.EndTime - m.opts.Step
		return timeline.TrimClip{ClipID: sel.id, Ripple: true, EndTime: &end}, ""
	case key.Matches(msg, m.keys.TrimOut):
		end := sel.clip.EndTime + m.opts.Step
		return timeline.TrimClip{ClipID: sel.id, Ripple: true, EndTime: &end}, ""
	case key.Matches(msg, m.keys.Remove):
		return timeline.RemoveClip{TrackID: sel.trackID, ClipID: sel.id}, ""
	case key.Matches(msg, m.keys.RippleDel):
		return timeline.RippleDeleteClip{TrackID: sel.trackID, ClipID: sel.id}, ""
	case key.Matches(msg, m.keys.Transition):
		nextID := followingClip(doc, sel)
		if nextID == "" {
			return nil, "no clip after the selection"
		}
		p := m.opts.Transition
		return timeline.AddTransition{
			ClipAID:  sel.id,
			ClipBID:  nextID,
			Kind:     p.Kind,
			Duration: p.Duration,
			Params:   p.Params,
		}, ""
	}
	return nil, ""
}

func (m EditorModel) dispatchCmd(cmd timeline.Command) tea.Cmd {
	ctx, ed := m.ctx, m.editor
	if ctx == nil {
		ctx = context.Background()
	}
	return func() tea.Msg {
		doc, err := ed.Dispatch(ctx, cmd)
		return dispatchedMsg{cmd: cmd, doc: doc, err: err}
	}
}

// clipRef locates a clip within a document.
type clipRef struct {
	id      string
	trackID string
	clip    timeline.Clip
}

func (m EditorModel) selectedClip() *clipRef {
	for _, id := range m.doc.SelectedClipIDs {
		if ti, ci, ok := m.doc.FindClip(id); ok {
			t := m.doc.Tracks[ti]
			return &clipRef{id: id, trackID: t.ID, clip: t.Clips[ci]}
		}
	}
	return nil
}

// orderedClips lists clips track by track, each track in time order.
func orderedClips(doc timeline.Document) []clipRef {
	var out []clipRef
	for _, t := range doc.Tracks {
		start := len(out)
		for _, c := range t.Clips {
			out = append(out, clipRef{id: c.ID, trackID: t.ID, clip: c})
		}
		part := out[start:]
		sort.SliceStable(part, func(i, j int) bool { return part[i].clip.StartTime < part[j].clip.StartTime })
	}
	return out
}

// followingClip returns the id of the next clip on sel's track.
func followingClip(doc timeline.Document, sel *clipRef) string {
	best := ""
	bestStart := 0.0
	t, ok := doc.Track(sel.trackID)
	if !ok {
		return ""
	}
	for _, c := range t.Clips {
		if c.ID == sel.id || c.StartTime < sel.clip.StartTime {
			continue
		}
		if best == "" || c.StartTime < bestStart {
			best, bestStart = c.ID, c.StartTime
		}
	}
	return best
}

// View satisfies the tea.Model interface.
func (m EditorModel) View() string {
	if m.quitting {
		return ""
	}
	var selected string
	if sel := m.selectedClip(); sel != nil {
		selected = sel.id
	}

	title := m.opts.Title
	if title == "" {
		title = "cutline"
	}
	header := fmt.Sprintf("%s  %s / %s  zoom %.2fx  %g fps  %s",
		TitleStyle.Render(title),
		FormatTimecode(m.doc.CurrentTime),
		FormatTimecode(m.doc.Duration),
		m.doc.Zoom,
		m.doc.FPS,
		historyLabel(m.doc.History),
	)

	body := RenderTimeline(m.doc, selected, m.opts.UnitsPerColumn, m.width)

	var footer string
	switch {
	case m.err != nil:
		footer = errorLineStyle.Render("✗ " + m.err.Error())
	case m.busy:
		footer = infoLineStyle.Render("…")
	case m.status != "":
		footer = infoLineStyle.Render(m.status)
	}
	if sel := m.selectedClip(); sel != nil {
		info := fmt.Sprintf("%s on %s  %s → %s", sel.id, sel.trackID,
			FormatTimecode(sel.clip.StartTime), FormatTimecode(sel.clip.EndTime))
		if footer != "" {
			footer = info + "  " + footer
		} else {
			footer = info
		}
	}

	return header + "\n\n" + body + "\n" + footer + "\n\n" + m.help.View(m.keys) + "\n"
}

func historyLabel(h timeline.History) string {
	if len(h.Entries) == 0 {
		return "no history"
	}
	return fmt.Sprintf("history %d/%d", h.CurrentIndex, len(h.Entries)-1)
}
