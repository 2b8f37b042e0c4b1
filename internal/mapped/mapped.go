package mapped

import (
	"fmt"
	"os"

	"golang.org/x/exp/mmap"
)

// File provides memory-mapped read access to a file
type File struct {
	reader *mmap.ReaderAt
	size   int64
	path   string
}

// Open opens a file with memory mapping
func Open(path string) (*File, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		reader.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return &File{
		reader: reader,
		size:   info.Size(),
		path:   path,
	}, nil
}

// ReadAt reads len(p) bytes at offset
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	return f.reader.ReadAt(p, off)
}

// Size returns the mapped size
func (f *File) Size() int64 {
	return f.size
}

// Path returns the file path
func (f *File) Path() string {
	return f.path
}

// Close releases the mapping; safe to call more than once
func (f *File) Close() error {
	if f.reader == nil {
		return nil
	}
	err := f.reader.Close()
	f.reader = nil
	return err
}

// Remap re-opens the mapping so it covers the file's current content.
// Used after the file grows or is replaced at the same path.
func (f *File) Remap() error {
	info, err := os.Stat(f.path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", f.path, err)
	}

	reader, err := mmap.Open(f.path)
	if err != nil {
		return fmt.Errorf("remap %s: %w", f.path, err)
	}

	if f.reader != nil {
		f.reader.Close()
	}
	f.reader = reader
	f.size = info.Size()
	return nil
}

// Range reads bytes from start to end, clamped to the mapped size
func (f *File) Range(start, end int64) ([]byte, error) {
	if end > f.size {
		end = f.size
	}
	if start >= end {
		return nil, nil
	}

	buf := make([]byte, end-start)
	if _, err := f.reader.ReadAt(buf, start); err != nil {
		return nil, fmt.Errorf("read %s [%d:%d]: %w", f.path, start, end, err)
	}
	return buf, nil
}
