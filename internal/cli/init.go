package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cutline/internal/config"
	"cutline/internal/journal"
	"cutline/internal/logx"
	"cutline/internal/paths"
	"cutline/internal/store"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a cutline project",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}

	return cmd
}

func resolveInitDir(projectFlag string, args []string) (string, error) {
	if projectFlag != "" {
		return projectFlag, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	if len(args) > 0 {
		if args[0] == "." {
			return cwd, nil
		}
		return filepath.Join(cwd, args[0]), nil
	}

	return nextAvailableDir(cwd)
}

func nextAvailableDir(base string) (string, error) {
	for i := 1; ; i++ {
		candidate := filepath.Join(base, fmt.Sprintf("cutline-%d", i))
		exists, err := paths.DirExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := resolveInitDir(projectDir, args)
	if err != nil {
		return err
	}

	pp, err := paths.Resolve(dir)
	if err != nil {
		return err
	}

	if err := pp.EnsureRoot(); err != nil {
		return err
	}
	if err := pp.EnsureMetaDirs(); err != nil {
		return err
	}

	logger, closer, err := logx.New(pp, verbose)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Printf("cutline init: project=%s", pp.Root)

	created := make([]string, 0, 3)

	if err := ensureConfig(pp, &created, logger); err != nil {
		return err
	}
	if err := ensureDocument(pp, &created, logger); err != nil {
		return err
	}
	if err := ensureJournal(pp, &created, logger); err != nil {
		return err
	}

	if len(created) == 0 {
		cmd.Printf("Project already initialized at %s\n", pp.Root)
		return nil
	}

	cmd.Printf("Initialized project at %s\n", pp.Root)
	for _, entry := range created {
		cmd.Printf("  created %s\n", entry)
	}

	return nil
}

func ensureConfig(pp paths.ProjectPaths, created *[]string, logger Logger) error {
	exists, err := paths.FileExists(pp.ConfigFile)
	if err != nil {
		return fmt.Errorf("check config: %w", err)
	}
	if exists {
		logger.Printf("config exists: %s", pp.ConfigFile)
		return nil
	}

	cfg := config.Default()
	cfg.ApplyDefaults()
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(pp.ConfigFile, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	logger.Printf("created config: %s", pp.ConfigFile)
	*created = append(*created, filepath.Base(pp.ConfigFile))
	return nil
}

func ensureDocument(pp paths.ProjectPaths, created *[]string, logger Logger) error {
	exists, err := paths.FileExists(pp.DocumentFile)
	if err != nil {
		return fmt.Errorf("check project file: %w", err)
	}
	if exists {
		logger.Printf("project file exists: %s", pp.DocumentFile)
		return nil
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return err
	}
	engine := newEngine(cfg, logx.Discard())
	if err := store.Save(pp.DocumentFile, engine.NewDocument()); err != nil {
		return err
	}
	logger.Printf("created project file: %s", pp.DocumentFile)
	*created = append(*created, filepath.Base(pp.DocumentFile))
	return nil
}

func ensureJournal(pp paths.ProjectPaths, created *[]string, logger *log.Logger) error {
	exists, err := paths.FileExists(pp.JournalFile)
	if err != nil {
		return fmt.Errorf("check journal: %w", err)
	}
	j, err := journal.Open(pp.JournalFile, logger)
	if err != nil {
		return err
	}
	if err := j.Close(); err != nil {
		return err
	}
	if !exists {
		logger.Printf("created journal: %s", pp.JournalFile)
		rel, _ := filepath.Rel(pp.Root, pp.JournalFile)
		*created = append(*created, rel)
	}
	return nil
}

// Logger keeps the subset of log.Logger used locally, enabling easy testing.
type Logger interface {
	Printf(format string, v ...any)
}
