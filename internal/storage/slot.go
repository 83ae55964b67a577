package storage

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// ErrSlotEmpty means the slot has never been written.
var ErrSlotEmpty = errors.Base("storage slot is empty")

// Slot is a single durable key-value cell holding the serialized counters.
type Slot interface {
	Read() ([]byte, error)
	Write(data []byte) error
}

// MemorySlot keeps the value in process memory.
type MemorySlot struct {
	mu     sync.Mutex
	data   []byte
	set    bool
	err    error
	writes int
}

// FailWrites makes every later Write return err. A nil err clears it.
func (s *MemorySlot) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Writes returns the number of successful writes.
func (s *MemorySlot) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Read returns a copy of the stored value.
func (s *MemorySlot) Read() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), s.data...), nil
}

// Write replaces the stored value.
func (s *MemorySlot) Write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.data = append([]byte(nil), data...)
	s.set = true
	s.writes++
	return nil
}

// FileSlot stores the value in a single file, replaced atomically on write.
type FileSlot struct {
	Path string
}

// Read returns the file contents, or ErrSlotEmpty when the file is missing.
func (s FileSlot) Read() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSlotEmpty
		}
		return nil, errors.Errorf("read slot: %w", err)
	}
	return data, nil
}

// Write creates parent directories, writes a temp file and renames it over the slot.
func (s FileSlot) Write(data []byte) error {
	if strings.TrimSpace(s.Path) == "" {
		return errors.New("slot path is empty")
	}
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Errorf("create slot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return errors.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Errorf("write slot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Errorf("close slot: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Errorf("replace slot: %w", err)
	}
	return nil
}
