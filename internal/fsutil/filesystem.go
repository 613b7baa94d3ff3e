// Package fsutil is the file access seam used by the Takeout reader, the
// config loader and the report writers. Tests swap in MemoryFileSystem.
package fsutil

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileSystem is the subset of file operations the tool needs.
type FileSystem interface {
	// Open opens the named file for reading.
	Open(name string) (fs.File, error)

	// Create creates or truncates the named file, creating missing parent
	// directories. Contents are visible once the writer is closed.
	Create(name string) (io.WriteCloser, error)

	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	Stat(name string) (fs.FileInfo, error)
}

// OSFileSystem implements FileSystem on the local disk.
type OSFileSystem struct{}

func (OSFileSystem) Open(name string) (fs.File, error) {
	return os.Open(name)
}

func (OSFileSystem) Create(name string) (io.WriteCloser, error) {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(name)
}

func (OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (OSFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

// MemoryFileSystem keeps files in a map keyed by cleaned path. Directories
// are implicit. Safe for concurrent use.
type MemoryFileSystem struct {
	mu    sync.RWMutex
	files map[string]memEntry
}

type memEntry struct {
	data []byte
	mode os.FileMode
}

// NewMemoryFileSystem returns an empty in-memory filesystem.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{files: make(map[string]memEntry)}
}

func (m *MemoryFileSystem) lookup(op, name string) (string, memEntry, error) {
	name = filepath.Clean(name)
	m.mu.RLock()
	e, ok := m.files[name]
	m.mu.RUnlock()
	if !ok {
		return name, e, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	return name, e, nil
}

func (m *MemoryFileSystem) store(name string, data []byte, perm os.FileMode) {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.mu.Lock()
	m.files[filepath.Clean(name)] = memEntry{data: cp, mode: perm}
	m.mu.Unlock()
}

// Open returns a reader over a snapshot of the file.
func (m *MemoryFileSystem) Open(name string) (fs.File, error) {
	name, e, err := m.lookup("open", name)
	if err != nil {
		return nil, err
	}
	return &memReader{Reader: bytes.NewReader(e.data), info: entryInfo(name, e)}, nil
}

// Create truncates name immediately and stores the written bytes on Close.
func (m *MemoryFileSystem) Create(name string) (io.WriteCloser, error) {
	m.store(name, nil, 0o644)
	return &memWriter{fs: m, name: name}, nil
}

func (m *MemoryFileSystem) ReadFile(name string) ([]byte, error) {
	_, e, err := m.lookup("read", name)
	if err != nil {
		return nil, err
	}
	cp := make([]byte, len(e.data))
	copy(cp, e.data)
	return cp, nil
}

func (m *MemoryFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	m.store(name, data, perm)
	return nil
}

func (m *MemoryFileSystem) Stat(name string) (fs.FileInfo, error) {
	name, e, err := m.lookup("stat", name)
	if err != nil {
		return nil, err
	}
	return entryInfo(name, e), nil
}

type memReader struct {
	*bytes.Reader
	info fs.FileInfo
}

func (r *memReader) Stat() (fs.FileInfo, error) { return r.info, nil }
func (r *memReader) Close() error               { return nil }

type memWriter struct {
	fs     *MemoryFileSystem
	name   string
	buf    bytes.Buffer
	closed bool
}

func (w *memWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fs.ErrClosed
	}
	return w.buf.Write(p)
}

func (w *memWriter) Close() error {
	if w.closed {
		return fs.ErrClosed
	}
	w.closed = true
	w.fs.store(w.name, w.buf.Bytes(), 0o644)
	return nil
}

type memInfo struct {
	name string
	size int64
	mode os.FileMode
}

func entryInfo(name string, e memEntry) fs.FileInfo {
	return memInfo{name: filepath.Base(name), size: int64(len(e.data)), mode: e.mode}
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() os.FileMode  { return i.mode }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return false }
func (i memInfo) Sys() any           { return nil }
