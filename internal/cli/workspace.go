package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"cutline/internal/config"
	"cutline/internal/journal"
	"cutline/internal/logx"
	"cutline/internal/paths"
	"cutline/internal/session"
	"cutline/internal/store"
	"cutline/internal/timeline"
)

// workspace bundles everything a command needs to edit a project: the
// resolved paths, the config, a logger, the journal and a live session.
type workspace struct {
	paths   paths.ProjectPaths
	cfg     config.Config
	logger  *log.Logger
	engine  *timeline.Engine
	journal *journal.Journal
	session *session.Session

	logCloser io.Closer
}

// openWorkspace loads the project at the --project directory. The document
// comes from the project file; the session journals and saves every edit.
func openWorkspace(ctx context.Context) (*workspace, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return nil, err
	}
	ok, err := pp.Initialized()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no cutline project at %s (run `cutline init` first)", pp.Root)
	}
	if err := pp.EnsureMetaDirs(); err != nil {
		return nil, err
	}

	cfg, err := loadConfig(pp)
	if err != nil {
		return nil, err
	}

	logger, closer, err := logx.New(pp, verbose)
	if err != nil {
		return nil, err
	}
	ws := &workspace{paths: pp, cfg: cfg, logger: logger, logCloser: closer}

	ws.engine = newEngine(cfg, logger)

	doc, err := store.Load(pp.DocumentFile, ws.engine)
	if err != nil {
		ws.Close()
		if errors.Is(err, store.ErrCorrupt) {
			return nil, fmt.Errorf("%w (run `cutline journal replay --rebuild` to recover)", err)
		}
		return nil, err
	}

	ws.journal, err = journal.Open(pp.JournalFile, logger)
	if err != nil {
		ws.Close()
		return nil, err
	}

	ws.session = session.New(ws.engine, doc,
		session.WithLogger(logger),
		session.WithRecorder(ws.journal),
		session.WithSavePath(pp.DocumentFile),
	)
	logger.Printf("cutline: opened %s (session %s)", pp.Root, ws.session.ID())
	return ws, nil
}

func loadConfig(pp paths.ProjectPaths) (config.Config, error) {
	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return config.Config{}, err
	}
	for _, r := range cfg.Validate() {
		if r.Level == "error" {
			return config.Config{}, fmt.Errorf("invalid config %s: %s", pp.ConfigFile, r.Message)
		}
	}
	return cfg, nil
}

func newEngine(cfg config.Config, logger *log.Logger) *timeline.Engine {
	return timeline.NewEngine(
		timeline.WithLimits(cfg.Limits()),
		timeline.WithLogger(logger),
	)
}

func (ws *workspace) dispatch(ctx context.Context, cmd timeline.Command) (timeline.Document, error) {
	return ws.session.Dispatch(ctx, cmd)
}

func (ws *workspace) document(ctx context.Context) (timeline.Document, error) {
	return ws.session.Document(ctx)
}

// Close stops the session before closing the journal it writes to.
func (ws *workspace) Close() error {
	var errs []error
	if ws.session != nil {
		errs = append(errs, ws.session.Close())
	}
	if ws.journal != nil {
		errs = append(errs, ws.journal.Close())
	}
	if ws.logCloser != nil {
		errs = append(errs, ws.logCloser.Close())
	}
	return errors.Join(errs...)
}
