package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/internal/boardfile"
	"github.com/amonks/kanban/internal/config"
	"github.com/amonks/kanban/internal/ids"
	"github.com/amonks/kanban/internal/logging"
	"github.com/amonks/kanban/internal/paths"
	"github.com/amonks/kanban/internal/ui"
	"github.com/amonks/kanban/participation"
	"github.com/sirupsen/logrus"
)

// boardSession is a board loaded from disk for the duration of one command.
type boardSession struct {
	dir      *boardfile.Dir
	cfg      *config.Config
	log      *logrus.Logger
	store    *board.Store
	requests *participation.Manager
}

func resolveBoardDir() (string, error) {
	return paths.ResolveWithDefault(boardDirFlag, paths.DefaultBoardDir)
}

// loadEnv resolves the board directory and builds its config and logger.
func loadEnv() (*boardfile.Dir, *config.Config, *logrus.Logger, error) {
	path, err := resolveBoardDir()
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	level := cfg.Log.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	logger, err := logging.New(level, os.Stderr)
	if err != nil {
		return nil, nil, nil, err
	}
	return boardfile.Open(path), cfg, logger, nil
}

func newBoardSession(dir *boardfile.Dir, cfg *config.Config, logger *logrus.Logger, stored *boardfile.Board) (*boardSession, error) {
	opts := cfg.StoreOptions()
	opts.Logger = logger.WithField("board", dir.Path())
	store, err := board.NewStore(stored.Snapshot, opts)
	if err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}

	requests := participation.New(store, participation.Options{
		Logger: logger.WithField("board", dir.Path()),
		Dedupe: cfg.Participation.Dedupe,
	})
	requests.Restore(stored.Requests)
	requests.Watch(store)

	return &boardSession{dir: dir, cfg: cfg, log: logger, store: store, requests: requests}, nil
}

// readBoard loads the board for a command that does not change it.
func readBoard() (*boardSession, error) {
	dir, cfg, logger, err := loadEnv()
	if err != nil {
		return nil, err
	}
	stored, err := dir.Load()
	if err != nil {
		return nil, err
	}
	return newBoardSession(dir, cfg, logger, stored)
}

// updateBoard loads the board under the directory lock, runs fn, and saves
// whatever the store and request queue hold afterwards.
func updateBoard(fn func(s *boardSession) error) error {
	dir, cfg, logger, err := loadEnv()
	if err != nil {
		return err
	}
	return dir.Update(func(stored *boardfile.Board) error {
		session, err := newBoardSession(dir, cfg, logger, stored)
		if err != nil {
			return err
		}
		if err := fn(session); err != nil {
			return err
		}
		stored.Snapshot = session.store.Snapshot()
		stored.Requests = session.requests.Pending()
		return nil
	})
}

// resolveTask finds a task by ID or unique ID prefix, ignoring case.
func (s *boardSession) resolveTask(ref string) (board.Task, error) {
	state := s.store.State()
	byLower := make(map[string]string, len(state.Tasks))
	for id := range state.Tasks {
		byLower[strings.ToLower(id)] = id
	}
	id, err := matchID(byLower, ref, "task")
	if err != nil {
		return board.Task{}, fmt.Errorf("%w: %s", board.ErrTaskNotFound, err)
	}
	return state.Tasks[id], nil
}

// resolveCategory finds a category by ID, name, or unique ID prefix.
func (s *boardSession) resolveCategory(ref string) (board.Category, error) {
	state := s.store.State()
	if category, ok := state.Categories[ref]; ok {
		return category, nil
	}
	for _, category := range state.OrderedCategories() {
		if strings.EqualFold(category.Name, strings.TrimSpace(ref)) {
			return category, nil
		}
	}
	byLower := make(map[string]string, len(state.Categories))
	for id := range state.Categories {
		byLower[strings.ToLower(id)] = id
	}
	id, err := matchID(byLower, ref, "category")
	if err != nil {
		return board.Category{}, fmt.Errorf("%w: %s", board.ErrCategoryNotFound, err)
	}
	return state.Categories[id], nil
}

func matchID(byLower map[string]string, ref, noun string) (string, error) {
	normalized := make([]string, 0, len(byLower))
	for lower := range byLower {
		normalized = append(normalized, lower)
	}
	sort.Strings(normalized)

	match, found, ambiguous := ids.MatchPrefixNormalized(normalized, strings.TrimSpace(ref))
	if ambiguous {
		return "", fmt.Errorf("%s id prefix %q is ambiguous", noun, ref)
	}
	if !found {
		return "", fmt.Errorf("no %s matches %q", noun, ref)
	}
	return byLower[match], nil
}

// highlighter highlights task and category IDs by their unique prefixes.
func (s *boardSession) highlighter() (map[string]int, func(string) string) {
	state := s.store.State()
	all := make([]string, 0, len(state.Tasks)+len(state.Categories))
	for id := range state.Tasks {
		all = append(all, id)
	}
	for id := range state.Categories {
		all = append(all, id)
	}
	lengths := ui.UniqueIDPrefixLengths(all)
	return lengths, logHighlighter(lengths, ui.HighlightID)
}
