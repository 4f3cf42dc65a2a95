package emitter

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/toyz/delegen/internal/errors"
	"github.com/toyz/delegen/internal/models"
)

// Sink opens output channels for generated units. Each Create is paired
// with exactly one Close on the returned writer.
type Sink interface {
	Create(dir, fileName, origin string) (io.WriteCloser, error)
}

// Aborter is implemented by writers that can discard what was written
type Aborter interface {
	Abort() error
}

// FileSink writes units to disk atomically and records which source file
// each output depends on.
type FileSink struct {
	mu           sync.Mutex
	dependencies map[string]string // output path -> origin
	written      []string
	unchanged    []string
}

// NewFileSink creates a file sink
func NewFileSink() *FileSink {
	return &FileSink{dependencies: make(map[string]string)}
}

// Create returns a writer that buffers the unit and replaces the target file on Close
func (s *FileSink) Create(dir, fileName, origin string) (io.WriteCloser, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.WrapFileSystemError("stat", dir, err)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.FileSystemErrorCode, "output directory is not a directory").
			WithContext("path", dir)
	}
	return &atomicFile{sink: s, path: filepath.Join(dir, fileName), origin: origin}, nil
}

// Dependencies returns a copy of the output -> origin map
func (s *FileSink) Dependencies() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	deps := make(map[string]string, len(s.dependencies))
	for k, v := range s.dependencies {
		deps[k] = v
	}
	return deps
}

// Written returns the files whose content changed, sorted
func (s *FileSink) Written() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedCopy(s.written)
}

// Unchanged returns the files that already had the generated content, sorted
func (s *FileSink) Unchanged() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedCopy(s.unchanged)
}

func (s *FileSink) record(path, origin string, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dependencies[path] = origin
	if changed {
		s.written = append(s.written, path)
	} else {
		s.unchanged = append(s.unchanged, path)
	}
}

// atomicFile buffers writes and publishes them with a rename on Close
type atomicFile struct {
	sink    *FileSink
	path    string
	origin  string
	buf     bytes.Buffer
	closed  bool
	aborted bool
}

func (f *atomicFile) Write(p []byte) (int, error) {
	if f.closed || f.aborted {
		return 0, os.ErrClosed
	}
	return f.buf.Write(p)
}

func (f *atomicFile) Abort() error {
	f.aborted = true
	f.buf.Reset()
	return nil
}

func (f *atomicFile) Close() error {
	if f.closed {
		return os.ErrClosed
	}
	f.closed = true
	if f.aborted {
		return nil
	}

	content := f.buf.Bytes()
	existing, err := os.ReadFile(f.path)
	switch {
	case err == nil && bytes.Equal(existing, content):
		f.sink.record(f.path, f.origin, false)
		return nil
	case err == nil && !models.HasGeneratedHeader(existing):
		return errors.Newf(errors.FileSystemErrorCode, "refusing to overwrite '%s': it was not generated by delegen", f.path).
			WithContext("operation", "overwrite").
			WithContext("path", f.path).
			WithSuggestion("Rename the existing file or choose another file_suffix")
	case err != nil && !os.IsNotExist(err):
		return errors.WrapFileSystemError("read", f.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".delegen-*.tmp")
	if err != nil {
		return errors.WrapFileSystemError("create", f.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WrapFileSystemError("write", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.WrapFileSystemError("close", f.path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return errors.WrapFileSystemError("chmod", f.path, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return errors.WrapFileSystemError("rename", f.path, err)
	}

	f.sink.record(f.path, f.origin, true)
	return nil
}

// MemorySink keeps units in memory
type MemorySink struct {
	mu    sync.Mutex
	files map[string][]byte
	deps  map[string]string
	opens int
}

// NewMemorySink creates an empty memory sink
func NewMemorySink() *MemorySink {
	return &MemorySink{
		files: make(map[string][]byte),
		deps:  make(map[string]string),
	}
}

// Create returns a writer that stores the unit under dir/fileName on Close
func (s *MemorySink) Create(dir, fileName, origin string) (io.WriteCloser, error) {
	s.mu.Lock()
	s.opens++
	s.mu.Unlock()
	return &memoryFile{sink: s, path: filepath.Join(dir, fileName), origin: origin}, nil
}

// Files returns a copy of every stored unit keyed by path
func (s *MemorySink) Files() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := make(map[string][]byte, len(s.files))
	for k, v := range s.files {
		files[k] = append([]byte(nil), v...)
	}
	return files
}

// Origin returns the origin recorded for path
func (s *MemorySink) Origin(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deps[path]
}

// Opens returns how many outputs were opened
func (s *MemorySink) Opens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens
}

type memoryFile struct {
	sink    *MemorySink
	path    string
	origin  string
	buf     bytes.Buffer
	aborted bool
}

func (f *memoryFile) Write(p []byte) (int, error) {
	return f.buf.Write(p)
}

func (f *memoryFile) Abort() error {
	f.aborted = true
	return nil
}

func (f *memoryFile) Close() error {
	if f.aborted {
		return nil
	}
	f.sink.mu.Lock()
	defer f.sink.mu.Unlock()
	f.sink.files[f.path] = f.buf.Bytes()
	f.sink.deps[f.path] = f.origin
	return nil
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
