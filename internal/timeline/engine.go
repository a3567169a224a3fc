package timeline

import (
	"io"
	"log"
	"time"

	"github.com/google/uuid"
)

// Limits are the tunable constants the engine enforces.
type Limits struct {
	MaxHistorySize            int
	MinTransitionDuration     float64
	MaxTransitionDuration     float64
	DefaultTransitionDuration float64
	MinClipDuration           float64
	AdjacencyTolerance        float64
	RejectOverlaps            bool
	DefaultZoom               float64
	DefaultFPS                float64
}

// DefaultLimits returns the stock editing limits.
func DefaultLimits() Limits {
	return Limits{
		MaxHistorySize:            DefaultMaxHistorySize,
		MinTransitionDuration:     0.5,
		MaxTransitionDuration:     5.0,
		DefaultTransitionDuration: 1.0,
		MinClipDuration:           MinClipDuration,
		AdjacencyTolerance:        DefaultAdjacencyTolerance,
		RejectOverlaps:            true,
		DefaultZoom:               1,
		DefaultFPS:                30,
	}
}

// Event describes a finished dispatch.
type Event struct {
	Command     CommandType
	Description string
	// Recorded is true when the dispatch added a history entry.
	Recorded bool
	// Changed is false for no-ops such as undo at the start of history.
	Changed bool
	Err     error
}

// Observer is notified after every dispatch, successful or not.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }

// Engine applies commands to documents. It holds no document state, so one
// engine may serve any number of independent documents.
type Engine struct {
	limits    Limits
	logger    *log.Logger
	newID     func() string
	now       func() time.Time
	observers []Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimits overrides the default limits.
func WithLimits(l Limits) Option {
	return func(e *Engine) { e.limits = l }
}

// WithLogger sends debug output to logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithIDGenerator replaces the uuid-based id generator.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithClock replaces time.Now for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// NewEngine builds an engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		limits: DefaultLimits(),
		logger: log.New(io.Discard, "", 0),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.limits.MinClipDuration <= 0 {
		e.limits.MinClipDuration = MinClipDuration
	}
	if e.limits.AdjacencyTolerance <= 0 {
		e.limits.AdjacencyTolerance = DefaultAdjacencyTolerance
	}
	return e
}

// Limits returns the engine's limits.
func (e *Engine) Limits() Limits {
	return e.limits
}

// NewDocument returns an empty document using the engine's view defaults.
func (e *Engine) NewDocument() Document {
	return NewDocument(e.limits.DefaultZoom, e.limits.DefaultFPS)
}

// Dispatch applies cmd to doc and returns the resulting document. doc is
// never modified. On error the returned document is doc itself.
func (e *Engine) Dispatch(doc Document, cmd Command) (Document, error) {
	if cmd == nil {
		return doc, invalidArg("", "nil command")
	}
	typ := cmd.Type()
	next := doc.Clone()
	event := Event{Command: typ, Description: Describe(typ)}

	switch cmd.(type) {
	case Undo:
		event.Changed = undo(&next)
	case Redo:
		event.Changed = redo(&next)
	case ClearHistory:
		event.Changed = len(next.History.Entries) > 0
		next.History = History{CurrentIndex: -1}
	default:
		if err := e.apply(&next, cmd); err != nil {
			e.logger.Printf("timeline: %s rejected: %v", typ, err)
			event.Err = err
			e.notify(event)
			return doc, err
		}
		next.syncDuration()
		event.Changed = true
		if IsUndoable(typ) {
			event.Recorded = e.record(doc, &next, typ)
			event.Changed = event.Recorded
		}
	}

	e.logger.Printf("timeline: %s changed=%v recorded=%v history=%d/%d",
		typ, event.Changed, event.Recorded, next.History.CurrentIndex, len(next.History.Entries))
	e.notify(event)
	return next, nil
}

// Resolve fills generated ids into cmd so that dispatching the result and
// replaying it later produce the same document.
func (e *Engine) Resolve(cmd Command) Command {
	switch c := cmd.(type) {
	case AddTrack:
		if c.Track.ID == "" {
			c.Track.ID = e.newID()
		}
		return c
	case AddClip:
		if c.Clip.ID == "" {
			c.Clip.ID = e.newID()
		}
		return c
	case AddTransition:
		if c.ID == "" {
			c.ID = e.newID()
		}
		return c
	case SetTracks:
		tracks := make([]Track, len(c.Tracks))
		copy(tracks, c.Tracks)
		for i := range tracks {
			if tracks[i].ID == "" {
				tracks[i].ID = e.newID()
			}
		}
		c.Tracks = tracks
		return c
	}
	return cmd
}

// DispatchAll applies cmds in order, stopping at the first error.
func (e *Engine) DispatchAll(doc Document, cmds ...Command) (Document, error) {
	for _, cmd := range cmds {
		var err error
		doc, err = e.Dispatch(doc, cmd)
		if err != nil {
			return doc, err
		}
	}
	return doc, nil
}

func (e *Engine) record(before Document, after *Document, typ CommandType) bool {
	forward, inverse := diff(before, *after)
	if forward.Empty() {
		return false
	}
	after.History.push(HistoryEntry{
		Description:  Describe(typ),
		Command:      typ,
		Forward:      forward,
		Inverse:      inverse,
		Timestamp:    e.now(),
		IsCheckpoint: IsCheckpoint(typ),
	}, e.limits.MaxHistorySize)
	return true
}

func (e *Engine) notify(ev Event) {
	for _, o := range e.observers {
		o.Observe(ev)
	}
}

func (e *Engine) apply(doc *Document, cmd Command) error {
	switch c := cmd.(type) {
	case AddTrack:
		return e.addTrack(doc, c)
	case UpdateTrack:
		return e.updateTrack(doc, c)
	case RemoveTrack:
		return e.removeTrack(doc, c)
	case MoveTrack:
		return e.moveTrack(doc, c)
	case SetTracks:
		return e.setTracks(doc, c)
	case AddClip:
		return e.addClip(doc, c)
	case UpdateClip:
		return e.updateClip(doc, c)
	case RemoveClip:
		return e.removeClip(doc, c)
	case RippleDeleteClip:
		return e.rippleDeleteClip(doc, c)
	case MoveClip:
		return e.moveClip(doc, c)
	case SplitClip:
		return e.splitClip(doc, c)
	case TrimClip:
		return e.trimClip(doc, c)
	case AddTransition:
		return e.addTransition(doc, c)
	case UpdateTransition:
		return e.updateTransition(doc, c)
	case RemoveTransition:
		return e.removeTransition(doc, c)
	case SetZoom:
		if err := checkFinite(c.Zoom); err != nil || c.Zoom <= 0 {
			return invalidArg(CmdSetZoom, "zoom must be a positive number, got %v", c.Zoom)
		}
		doc.Zoom = c.Zoom
	case SetFPS:
		if err := checkFinite(c.FPS); err != nil || c.FPS <= 0 {
			return invalidArg(CmdSetFPS, "fps must be a positive number, got %v", c.FPS)
		}
		doc.FPS = c.FPS
	default:
		return e.applyView(doc, cmd)
	}
	return nil
}

// applyView handles the commands that never enter history.
func (e *Engine) applyView(doc *Document, cmd Command) error {
	switch c := cmd.(type) {
	case SelectClips:
		doc.SelectedClipIDs = append([]string{}, c.ClipIDs...)
	case SetSelectedTrack:
		doc.SelectedTrackID = c.TrackID
	case SetCurrentTime:
		if err := checkFinite(c.Time); err != nil || c.Time < 0 {
			return invalidArg(CmdSetCurrentTime, "time must be a non-negative number, got %v", c.Time)
		}
		doc.CurrentTime = c.Time
	case SetPlaying:
		doc.IsPlaying = c.Playing
	case SetScrollX:
		if err := checkFinite(c.X); err != nil {
			return invalidArg(CmdSetScrollX, "non-finite scroll %v", c.X)
		}
		doc.ScrollX = c.X
	case SetScrollY:
		if err := checkFinite(c.Y); err != nil {
			return invalidArg(CmdSetScrollY, "non-finite scroll %v", c.Y)
		}
		doc.ScrollY = c.Y
	case SetDragging:
		doc.IsDragging = c.Dragging
	case SetError:
		doc.Error = c.Error
	case SetDuration:
		if err := checkFinite(c.Duration); err != nil || c.Duration < 0 {
			return invalidArg(CmdSetDuration, "duration must be a non-negative number, got %v", c.Duration)
		}
		doc.Duration = c.Duration
		if end := doc.ContentEnd(); end > doc.Duration {
			doc.Duration = end
		}
	case ClearState:
		*doc = e.NewDocument()
	case SetState:
		next := c.Document.Clone()
		normalize(&next)
		*doc = next
	default:
		return invalidArg(cmd.Type(), "unsupported command")
	}
	return nil
}

// normalize repairs a document supplied from outside: nil slices, clip order
// and an out of range history cursor.
func normalize(doc *Document) {
	for i := range doc.Tracks {
		t := &doc.Tracks[i]
		if t.Clips == nil {
			t.Clips = []Clip{}
		}
		if t.Transitions == nil {
			t.Transitions = []Transition{}
		}
		t.sortClips()
	}
	if doc.SelectedClipIDs == nil {
		doc.SelectedClipIDs = []string{}
	}
	h := &doc.History
	if h.CurrentIndex >= len(h.Entries) || h.CurrentIndex < -1 {
		h.CurrentIndex = len(h.Entries) - 1
	}
	if len(h.Entries) == 0 {
		h.CurrentIndex = -1
	}
	doc.syncDuration()
}
