package memory

import (
	"context"
	"sync"

	"github.com/fixora/archive/application/port/outbound"
)

// memoryLog is one generation of a named log. A log removed and created
// again under the same name is a new memoryLog.
type memoryLog struct {
	lines []string
}

// MemoryLogStorage keeps logs in process memory
type MemoryLogStorage struct {
	mu   sync.RWMutex
	logs map[string]*memoryLog
}

// NewMemoryLogStorage creates an empty in-memory storage
func NewMemoryLogStorage() *MemoryLogStorage {
	return &MemoryLogStorage{logs: make(map[string]*memoryLog)}
}

func (s *MemoryLogStorage) Open(_ context.Context, name string) (outbound.LogHandle, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, exists := s.logs[name]
	if !exists {
		log = &memoryLog{lines: []string{}}
		s.logs[name] = log
	}
	return &memoryHandle{storage: s, name: name, log: log}, !exists, nil
}

func (s *MemoryLogStorage) ReadLines(_ context.Context, name string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log, exists := s.logs[name]
	if !exists {
		return nil, outbound.ErrLogNotFound
	}
	out := make([]string, len(log.lines))
	copy(out, log.lines)
	return out, nil
}

func (s *MemoryLogStorage) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.logs[name]
	return exists, nil
}

// Remove drops a log behind the back of its open handles
func (s *MemoryLogStorage) Remove(name string) {
	s.mu.Lock()
	delete(s.logs, name)
	s.mu.Unlock()
}

// current reports whether log is still the live generation of name.
// Callers hold s.mu.
func (s *MemoryLogStorage) current(name string, log *memoryLog) bool {
	live, exists := s.logs[name]
	return exists && live == log
}

type memoryHandle struct {
	storage *MemoryLogStorage
	name    string
	log     *memoryLog
	closed  bool
}

func (h *memoryHandle) AppendLine(_ context.Context, line string) error {
	if h.closed {
		return outbound.ErrLogClosed
	}

	h.storage.mu.Lock()
	defer h.storage.mu.Unlock()

	if !h.storage.current(h.name, h.log) {
		return outbound.ErrLogRemoved
	}
	h.log.lines = append(h.log.lines, line)
	return nil
}

func (h *memoryHandle) Delete(_ context.Context) error {
	h.storage.mu.Lock()
	defer h.storage.mu.Unlock()

	if !h.storage.current(h.name, h.log) {
		return outbound.ErrLogNotFound
	}
	delete(h.storage.logs, h.name)
	h.closed = true
	return nil
}

func (h *memoryHandle) Close() error {
	h.closed = true
	return nil
}
