package cliloc

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report the load result.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOpener replaces the function used to open the resource file.
func WithOpener(open OpenFunc) Option {
	return func(s *Store) {
		if open != nil {
			s.open = open
		}
	}
}

// snapshot is what a load produced: a table, or the reason there is none.
type snapshot struct {
	table *Table
	err   error
}

// Store is the handle to one resource file. The file is decoded on the
// first call to Init or any Resolve method and the resulting table is
// shared by every later caller; concurrent first calls decode it once.
type Store struct {
	path   string
	open   OpenFunc
	logger *slog.Logger

	mu    sync.Mutex
	state atomic.Pointer[snapshot]
}

// NewStore returns a Store for the resource file at path. No I/O happens
// until the table is first needed.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		open:   openResource,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the resource file path.
func (s *Store) Path() string {
	return s.path
}

// Init loads the table if that has not happened yet and returns the load
// error. ErrUnavailable means the file does not exist.
func (s *Store) Init() error {
	return s.snapshot().err
}

// MustInit is Init that panics on failure, for use during startup.
func (s *Store) MustInit() {
	if err := s.Init(); err != nil {
		panic(err)
	}
}

// Reload decodes the file again and replaces the table. Callers holding the
// previous table keep a consistent view of it.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.build()
	s.state.Store(snap)
	return snap.err
}

// Table returns the decoded table, loading it on first use.
func (s *Store) Table() (*Table, error) {
	snap := s.snapshot()
	return snap.table, snap.err
}

// Loaded reports whether a table is available.
func (s *Store) Loaded() bool {
	return s.snapshot().err == nil
}

func (s *Store) snapshot() *snapshot {
	if snap := s.state.Load(); snap != nil {
		return snap
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snap := s.state.Load(); snap != nil {
		return snap
	}
	snap := s.build()
	s.state.Store(snap)
	return snap
}

func (s *Store) build() *snapshot {
	start := time.Now()
	log := s.logger.With("path", s.path)

	rc, err := s.open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !errors.Is(err, ErrUnavailable) {
			err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		if errors.Is(err, ErrUnavailable) {
			log.Warn("localization file not found")
		} else {
			log.Error("localization file could not be opened", "error", err)
		}
		return &snapshot{err: err}
	}
	defer rc.Close()

	table := Decode(rc)
	if table.Outcome() != OutcomeComplete {
		log.Warn("localization file ended early",
			"outcome", table.Outcome().String(),
			"entries", table.Len(),
			"error", table.Err())
	}
	log.Info("localization file loaded",
		"entries", table.Len(),
		"duplicates", table.Duplicates(),
		"elapsed", time.Since(start))

	return &snapshot{table: table}
}

// Resolve returns the stored text for id without substitution. When the
// file could not be loaded the text is NotLoadedText.
func (s *Store) Resolve(id int32) (string, Status) {
	snap := s.snapshot()
	if snap.err != nil {
		return NotLoadedText, StatusNotLoaded
	}
	entry, ok := snap.table.Lookup(id)
	if !ok {
		return "", StatusNotFound
	}
	return entry.Text, StatusFound
}

// ResolveArgs returns the text for id with its placeholders filled from the
// tab-delimited args. See Substitute for the rules. An empty args is the
// same as Resolve.
func (s *Store) ResolveArgs(id int32, args string) (string, Status) {
	text, status := s.Resolve(id)
	if status != StatusFound || args == "" {
		return text, status
	}
	return Substitute(text, args, s.lookup), StatusFound
}

// Text is ResolveArgs for display: the resolved text, NotLoadedText, or the
// empty string when id has no entry.
func (s *Store) Text(id int32, args string) string {
	text, _ := s.ResolveArgs(id, args)
	return text
}

// lookup resolves cross-references for Substitute.
func (s *Store) lookup(id int32) (string, bool) {
	text, status := s.Resolve(id)
	if status != StatusFound {
		s.logger.Debug("localization reference not resolved",
			"path", s.path,
			"id", id,
			"status", status.String())
		return "", false
	}
	return text, true
}
