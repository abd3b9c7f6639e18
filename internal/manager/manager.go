// Package manager owns the tag index of one workspace root: it decides when
// the external generator runs, when the tag file is read into memory, and
// whether the in-memory store may be searched.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mesdx/tagnav/internal/tagfile"
	"github.com/mesdx/tagnav/internal/tags"
)

const (
	// DefaultTagFileName is the tag file written into the workspace root.
	DefaultTagFileName = "ctags.tmp"
	// DefaultMaxTagFileBytes bounds the size of a tag file that may be loaded.
	DefaultMaxTagFileBytes int64 = 50 * 1024 * 1024
)

var (
	ErrIndexMissing    = errors.New("tag file not found, generate it first")
	ErrIndexTooLarge   = errors.New("tag file too large")
	ErrIndexLoadFailed = errors.New("tag file load failed")
	ErrGenerateFailed  = errors.New("tag generation failed")
	ErrIndexNotReady   = errors.New("tag index is not loaded yet")
	ErrRootChanged     = errors.New("workspace root changed")
	ErrClosed          = errors.New("manager closed")
)

// Generator produces the tag file inside dir.
type Generator interface {
	Generate(ctx context.Context, dir string) error
}

// LineReader streams a file line by line. It returns the first error from
// reading or from fn.
type LineReader interface {
	ReadLines(ctx context.Context, path string, fn func(line string) error) error
}

// FileSystem answers existence and size questions about the tag file.
type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
}

// Notifier receives fire-and-forget user messages.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

// Options configures a Manager. Zero values fall back to defaults.
type Options struct {
	TagFileName     string
	MaxTagFileBytes int64

	Generator Generator
	Reader    LineReader
	FS        FileSystem
	Notifier  Notifier

	// Workspace returns the currently active root. It is consulted before
	// every operation; a different answer than last time resets the index.
	// Nil means the root passed to Open never changes.
	Workspace func() string

	// OnTransition is called with the manager lock held on every status
	// change. It must not call back into the Manager.
	OnTransition func(from, to Status)
}

type osFS struct{}

func (osFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

type nopNotifier struct{}

func (nopNotifier) Info(string)  {}
func (nopNotifier) Error(string) {}

// fileStamp identifies the tag file contents a store was loaded from.
type fileStamp struct {
	size    int64
	modTime time.Time
}

func stampOf(info os.FileInfo) fileStamp {
	return fileStamp{size: info.Size(), modTime: info.ModTime()}
}

// Manager is the tag index lifecycle for one workspace root at a time.
type Manager struct {
	opts Options

	mu       sync.Mutex
	root     string
	tagPath  string
	status   Status
	store    *tags.Store
	loaded   fileStamp
	inflight *Completion
	// epoch increments whenever the index is invalidated so that work
	// started for an older root or session cannot publish its result.
	epoch  uint64
	closed bool
}

// Open creates a Manager for root. Nothing is generated or loaded until
// requested.
func Open(root string, opts Options) *Manager {
	if opts.TagFileName == "" {
		opts.TagFileName = DefaultTagFileName
	}
	if opts.MaxTagFileBytes <= 0 {
		opts.MaxTagFileBytes = DefaultMaxTagFileBytes
	}
	if opts.Reader == nil {
		opts.Reader = tagfile.Reader{}
	}
	if opts.FS == nil {
		opts.FS = osFS{}
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}

	m := &Manager{opts: opts}
	m.resetLocked(root)
	return m
}

// Close discards the index. Requests still in flight finish but their
// results are dropped.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.epoch++
	m.setStatusLocked(StatusEmpty)
	m.store = nil
	m.inflight = nil
	return nil
}

// SwitchRoot makes root the active workspace root. Switching to a different
// root discards the current index regardless of its status.
func (m *Manager) SwitchRoot(root string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || root == m.root {
		return
	}
	m.resetLocked(root)
}

// Root returns the active workspace root.
func (m *Manager) Root() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncRootLocked()
	return m.root
}

// TagPath returns the on-disk tag file path for the active root.
func (m *Manager) TagPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncRootLocked()
	return m.tagPath
}

// Status returns the current index status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncRootLocked()
	return m.status
}

// Store returns the loaded store, or nil unless the status is Loaded.
func (m *Manager) Store() *tags.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncRootLocked()
	if !m.status.Searchable() {
		return nil
	}
	return m.store
}

// RequestGenerate runs the external generator and then loads its output.
//
// While a generation or load is already running no new work starts; the
// returned Completion is the one already in flight.
func (m *Manager) RequestGenerate(ctx context.Context) *Completion {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return completed(Result{}, ErrClosed)
	}
	m.syncRootLocked()

	switch m.status {
	case StatusGenerating, StatusGeneratedOnDisk, StatusLoading:
		return m.inflight
	case StatusEmpty, StatusLoaded:
	}

	c := newCompletion()
	m.inflight = c
	m.setStatusLocked(StatusGenerating)
	epoch, root, tagPath := m.epoch, m.root, m.tagPath

	m.opts.Notifier.Info("Generating tag file...")
	log.Printf("generate: start root=%s", root)
	go m.generate(context.WithoutCancel(ctx), c, epoch, root, tagPath)
	return c
}

// RequestLoad reads the on-disk tag file into memory.
//
// A loaded index completes immediately without reading; a request in flight
// is joined. A missing tag file is reported synchronously with
// ErrIndexMissing.
func (m *Manager) RequestLoad(ctx context.Context) (*Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	m.syncRootLocked()

	switch m.status {
	case StatusGenerating, StatusGeneratedOnDisk, StatusLoading:
		return m.inflight, nil
	case StatusLoaded:
		return completed(Result{Root: m.root, Lines: m.store.Len(), Bytes: m.loaded.size, Cached: true}, nil), nil
	case StatusEmpty:
	}

	if _, err := m.opts.FS.Stat(m.tagPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrIndexMissing, m.tagPath)
		}
		return nil, fmt.Errorf("stat tag file: %w", err)
	}

	c := newCompletion()
	m.inflight = c
	m.setStatusLocked(StatusLoading)
	epoch, root, tagPath := m.epoch, m.root, m.tagPath

	go func() {
		start := time.Now()
		res, err := m.load(context.WithoutCancel(ctx), epoch, root, tagPath)
		res.Duration = time.Since(start)
		c.finish(res, err)
	}()
	return c, nil
}

// Search matches query against the loaded store. See tags.Search for the
// query syntax.
func (m *Manager) Search(query string) ([]string, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	m.syncRootLocked()
	status, store := m.status, m.store
	m.mu.Unlock()

	if !status.Searchable() {
		return nil, fmt.Errorf("%w (status: %s)", ErrIndexNotReady, status)
	}
	return tags.Search(query, store)
}

// Refresh drops a loaded store whose tag file has changed on disk since it
// was loaded. It reports whether the index was invalidated. Nothing happens
// while a request is in flight.
func (m *Manager) Refresh() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.syncRootLocked()
	if m.status != StatusLoaded {
		return false
	}
	info, err := m.opts.FS.Stat(m.tagPath)
	if err == nil && stampOf(info) == m.loaded {
		return false
	}
	log.Printf("refresh: tag file changed, dropping index for %s", m.root)
	m.epoch++
	m.store = tags.NewStore(m.root)
	m.loaded = fileStamp{}
	m.setStatusLocked(StatusEmpty)
	return true
}

func (m *Manager) generate(ctx context.Context, c *Completion, epoch uint64, root, tagPath string) {
	start := time.Now()

	var err error
	if m.opts.Generator == nil {
		err = errors.New("no generator configured")
	} else {
		err = m.opts.Generator.Generate(ctx, root)
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		c.finish(Result{Root: root}, ErrRootChanged)
		return
	}
	if err != nil {
		m.inflight = nil
		m.setStatusLocked(StatusEmpty)
		m.mu.Unlock()
		log.Printf("generate: %s: %v", root, err)
		m.opts.Notifier.Error(fmt.Sprintf("Tag generation failed: %v", err))
		c.finish(Result{Root: root, Duration: time.Since(start)}, fmt.Errorf("%w: %v", ErrGenerateFailed, err))
		return
	}
	m.setStatusLocked(StatusGeneratedOnDisk)
	m.setStatusLocked(StatusLoading)
	m.mu.Unlock()

	m.opts.Notifier.Info("Tag generation completed. Loading the tag file...")
	res, err := m.load(ctx, epoch, root, tagPath)
	res.Generated = true
	res.Duration = time.Since(start)
	c.finish(res, err)
}

// load reads tagPath into a fresh store and publishes it if the epoch is
// still current. The caller has already moved the status to Loading.
func (m *Manager) load(ctx context.Context, epoch uint64, root, tagPath string) (Result, error) {
	res := Result{Root: root}

	info, err := m.opts.FS.Stat(tagPath)
	if err != nil {
		if os.IsNotExist(err) {
			err = fmt.Errorf("%w: %s", ErrIndexMissing, tagPath)
		} else {
			err = fmt.Errorf("%w: %v", ErrIndexLoadFailed, err)
		}
		return res, m.failLoad(epoch, err, false, "Cannot read tag file. Run generate first.")
	}
	res.Bytes = info.Size()

	if info.Size() > m.opts.MaxTagFileBytes {
		limitMB := m.opts.MaxTagFileBytes / 1024 / 1024
		err := fmt.Errorf("%w: %d bytes exceeds %d MB", ErrIndexTooLarge, info.Size(), limitMB)
		return res, m.failLoad(epoch, err, false,
			fmt.Sprintf("Can't load a tag file larger than %dMB. Loading has been cancelled.", limitMB))
	}

	store := tags.NewStore(root)
	err = m.opts.Reader.ReadLines(ctx, tagPath, func(line string) error {
		store.Add(line)
		return nil
	})
	if err != nil {
		return res, m.failLoad(epoch, fmt.Errorf("%w: %v", ErrIndexLoadFailed, err), true, "Error on loading tag info.")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return res, ErrRootChanged
	}
	m.store = store
	m.loaded = stampOf(info)
	m.inflight = nil
	m.setStatusLocked(StatusLoaded)
	res.Lines = store.Len()
	log.Printf("load: %s: %d tags", tagPath, store.Len())
	return res, nil
}

// failLoad returns the manager to Empty after a failed load. With discard
// the previous store is dropped as well.
func (m *Manager) failLoad(epoch uint64, err error, discard bool, notice string) error {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return ErrRootChanged
	}
	m.inflight = nil
	if discard {
		m.store = tags.NewStore(m.root)
		m.loaded = fileStamp{}
	}
	m.setStatusLocked(StatusEmpty)
	m.mu.Unlock()

	log.Printf("load: %v", err)
	m.opts.Notifier.Error(notice)
	return err
}

// syncRootLocked resets the index if the active workspace moved.
func (m *Manager) syncRootLocked() {
	if m.opts.Workspace == nil || m.closed {
		return
	}
	if active := m.opts.Workspace(); active != m.root {
		m.resetLocked(active)
	}
}

func (m *Manager) resetLocked(root string) {
	if m.root != "" {
		log.Printf("workspace root changed: %s -> %s", m.root, root)
	}
	m.root = root
	m.tagPath = filepath.Join(root, m.opts.TagFileName)
	m.store = tags.NewStore(root)
	m.loaded = fileStamp{}
	m.inflight = nil
	m.epoch++
	m.setStatusLocked(StatusEmpty)
}

func (m *Manager) setStatusLocked(to Status) {
	from := m.status
	m.status = to
	if from != to && m.opts.OnTransition != nil {
		m.opts.OnTransition(from, to)
	}
}
