// Package boardfile persists a board directory: JSONL files for categories,
// tasks, history and participation requests plus a small meta.json.
package boardfile

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/participation"
)

const (
	// CategoriesFile holds one category per line, in display order.
	CategoriesFile = "categories.jsonl"

	// TasksFile holds one task per line.
	TasksFile = "tasks.jsonl"

	// HistoryFile holds one history entry per line, oldest first.
	HistoryFile = "history.jsonl"

	// RequestsFile holds the pending participation requests, oldest first.
	RequestsFile = "requests.jsonl"

	// MetaFile holds the filter and history index.
	MetaFile = "meta.json"

	lockFile = "board.lock"

	// FormatVersion is written to meta.json.
	FormatVersion = 1

	maxJSONLineBytes = 64 * 1024 * 1024
)

var (
	// ErrNoBoard indicates the directory has not been initialized.
	ErrNoBoard = errors.New("no board found (run 'kanban init')")

	// ErrBoardExists indicates Init was called on an initialized directory.
	ErrBoardExists = errors.New("board already exists")
)

// Meta is the contents of meta.json.
type Meta struct {
	Version       int          `json:"version"`
	CurrentFilter board.Filter `json:"currentFilter"`
	HistoryIndex  int          `json:"historyIndex"`
}

// Board is everything stored in a board directory.
type Board struct {
	Snapshot board.Snapshot
	Requests []participation.Request
}

// Dir is a board directory on disk.
type Dir struct {
	path string
}

// Open returns the board directory at path. It does not touch the filesystem.
func Open(path string) *Dir {
	return &Dir{path: path}
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

func (d *Dir) file(name string) string {
	return filepath.Join(d.path, name)
}

// Exists reports whether the directory holds a board.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.file(MetaFile))
	return err == nil
}

// Init writes a new board. It fails with ErrBoardExists if one is already there.
func (d *Dir) Init(snap board.Snapshot) error {
	return d.withLock(func() error {
		if d.Exists() {
			return fmt.Errorf("%w in %s", ErrBoardExists, d.path)
		}
		return d.save(&Board{Snapshot: snap})
	})
}

// Load reads the board.
func (d *Dir) Load() (*Board, error) {
	if !d.Exists() {
		return nil, fmt.Errorf("%w in %s", ErrNoBoard, d.path)
	}

	var meta Meta
	data, err := os.ReadFile(d.file(MetaFile))
	if err != nil {
		return nil, fmt.Errorf("read meta file: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("unmarshal meta: %w", err)
	}
	if meta.Version > FormatVersion {
		return nil, fmt.Errorf("board format version %d is newer than supported version %d", meta.Version, FormatVersion)
	}

	categories, err := readJSONL[board.Category](d.file(CategoriesFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", CategoriesFile, err)
	}
	tasks, err := readJSONL[board.Task](d.file(TasksFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", TasksFile, err)
	}
	history, err := readJSONL[board.Entry](d.file(HistoryFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", HistoryFile, err)
	}
	requests, err := readJSONL[participation.Request](d.file(RequestsFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", RequestsFile, err)
	}

	return &Board{
		Snapshot: board.Snapshot{
			Tasks:         nonNil(tasks),
			Categories:    nonNil(categories),
			CurrentFilter: meta.CurrentFilter,
			History:       nonNil(history),
			HistoryIndex:  meta.HistoryIndex,
		},
		Requests: requests,
	}, nil
}

// Save writes the board, replacing each file atomically.
func (d *Dir) Save(b *Board) error {
	return d.withLock(func() error {
		return d.save(b)
	})
}

// Update atomically reads, modifies, and writes the board with file locking.
func (d *Dir) Update(fn func(b *Board) error) error {
	return d.withLock(func() error {
		b, err := d.Load()
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}
		return d.save(b)
	})
}

func (d *Dir) save(b *Board) error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("create board dir: %w", err)
	}

	snap := b.Snapshot
	if err := writeJSONL(d.file(CategoriesFile), snap.Categories); err != nil {
		return fmt.Errorf("write %s: %w", CategoriesFile, err)
	}
	if err := writeJSONL(d.file(TasksFile), snap.Tasks); err != nil {
		return fmt.Errorf("write %s: %w", TasksFile, err)
	}
	if err := writeJSONL(d.file(HistoryFile), snap.History); err != nil {
		return fmt.Errorf("write %s: %w", HistoryFile, err)
	}
	if err := writeJSONL(d.file(RequestsFile), b.Requests); err != nil {
		return fmt.Errorf("write %s: %w", RequestsFile, err)
	}

	filter := snap.CurrentFilter
	if filter == "" {
		filter = board.FilterAll
	}
	meta := Meta{Version: FormatVersion, CurrentFilter: filter, HistoryIndex: snap.HistoryIndex}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	// meta.json is written last so a board only "exists" once it is complete.
	return writeFileAtomic(d.file(MetaFile), append(data, '\n'))
}

// withLock executes fn while holding an exclusive lock on the board's lock file.
func (d *Dir) withLock(fn func() error) error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("create board dir: %w", err)
	}

	f, err := os.OpenFile(d.file(lockFile), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	return fn()
}

func readJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return readJSONLFromReader[T](f)
}

func readJSONLFromReader[T any](reader io.Reader) ([]T, error) {
	var items []T
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxJSONLineBytes)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var item T
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("parse line %d: %w", lineNum, err)
		}
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return items, nil
}

func writeJSONL[T any](path string, items []T) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	for i, item := range items {
		if err := encoder.Encode(item); err != nil {
			return fmt.Errorf("encode item %d: %w", i, err)
		}
	}
	return writeFileAtomic(path, buf.Bytes())
}

// writeFileAtomic replaces path via a temp file and rename. Unchanged
// contents are not rewritten.
func writeFileAtomic(path string, data []byte) error {
	if existing, err := os.ReadFile(path); err == nil {
		if bytes.Equal(existing, data) {
			return nil
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmpFile.Name()
	_, err = tmpFile.Write(data)
	if err1 := tmpFile.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
