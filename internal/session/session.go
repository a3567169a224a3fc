package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"

	"cutline/internal/journal"
	"cutline/internal/store"
	"cutline/internal/timeline"
)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("session closed")

// Recorder receives one record per dispatch. *journal.Journal satisfies it.
type Recorder interface {
	Append(ctx context.Context, rec journal.Record) (int64, error)
}

// Session owns one document and applies commands to it one at a time on its
// own goroutine. Callers never see a partially applied edit.
type Session struct {
	id       string
	engine   *timeline.Engine
	logger   *log.Logger
	recorder Recorder
	savePath string

	reqs      chan request
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

type request struct {
	ctx   context.Context
	cmd   timeline.Command
	reply chan result
}

type result struct {
	doc timeline.Document
	err error
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sends session logging to logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder journals every dispatch to r.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithSavePath writes the document to path after every dispatch that
// changes its content or history.
func WithSavePath(path string) Option {
	return func(s *Session) { s.savePath = path }
}

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// New starts a session that owns doc.
func New(e *timeline.Engine, doc timeline.Document, opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		engine:  e,
		logger:  log.New(io.Discard, "", 0),
		reqs:    make(chan request),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run(doc)
	return s
}

// ID returns the session id written into journal records.
func (s *Session) ID() string {
	return s.id
}

// Engine returns the engine the session dispatches through.
func (s *Session) Engine() *timeline.Engine {
	return s.engine
}

// Dispatch applies cmd and returns the resulting document. Generated ids are
// filled in before the command is applied and journaled. If ctx ends while
// waiting for the result the edit may still have been applied.
func (s *Session) Dispatch(ctx context.Context, cmd timeline.Command) (timeline.Document, error) {
	if cmd == nil {
		return timeline.Document{}, fmt.Errorf("dispatch: nil command")
	}
	return s.do(ctx, cmd)
}

// Document returns a snapshot of the current document.
func (s *Session) Document(ctx context.Context) (timeline.Document, error) {
	return s.do(ctx, nil)
}

// Close stops the session goroutine. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	<-s.stopped
	return nil
}

func (s *Session) do(ctx context.Context, cmd timeline.Command) (timeline.Document, error) {
	req := request{ctx: ctx, cmd: cmd, reply: make(chan result, 1)}
	select {
	case s.reqs <- req:
	case <-s.done:
		return timeline.Document{}, ErrClosed
	case <-ctx.Done():
		return timeline.Document{}, ctx.Err()
	}

	select {
	case res := <-req.reply:
		return res.doc, res.err
	case <-ctx.Done():
		return timeline.Document{}, ctx.Err()
	}
}

func (s *Session) run(doc timeline.Document) {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			return
		case req := <-s.reqs:
			if req.cmd == nil {
				req.reply <- result{doc: doc.Clone()}
				continue
			}
			next, err := s.apply(req.ctx, doc, req.cmd)
			if err == nil {
				doc = next
			}
			req.reply <- result{doc: next.Clone(), err: err}
		}
	}
}

func (s *Session) apply(ctx context.Context, doc timeline.Document, cmd timeline.Command) (timeline.Document, error) {
	cmd = s.engine.Resolve(cmd)
	before := store.Fingerprint(doc)
	next, err := s.engine.Dispatch(doc, cmd)
	after := store.Fingerprint(next)

	if err != nil {
		s.logger.Printf("session %s: %s rejected: %v", s.id, cmd.Type(), err)
	}

	// Persistence runs even if the caller has gone away: the edit is applied.
	persistCtx := context.WithoutCancel(ctx)
	if s.recorder != nil {
		rec, recErr := journal.NewRecord(s.id, cmd, next, after, err)
		if recErr == nil {
			_, recErr = s.recorder.Append(persistCtx, rec)
		}
		if recErr != nil {
			s.logger.Printf("session %s: journal %s: %v", s.id, cmd.Type(), recErr)
		}
	}

	if err == nil && s.savePath != "" && (before != after || historyMoved(doc, next)) {
		if saveErr := store.Save(s.savePath, next); saveErr != nil {
			s.logger.Printf("session %s: save %s: %v", s.id, s.savePath, saveErr)
		}
	}
	return next, err
}

func historyMoved(a, b timeline.Document) bool {
	return a.History.CurrentIndex != b.History.CurrentIndex || len(a.History.Entries) != len(b.History.Entries)
}
