package archive

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fixora/archive/application/port/outbound"
	"github.com/fixora/archive/domain"
	"github.com/fixora/archive/domain/entity"
	apperr "github.com/fixora/archive/domain/error"
	"github.com/fixora/archive/infrastructure/service/logger"
)

// Archiver opens append-only change logs on a LogStorage
type Archiver struct {
	storage outbound.LogStorage
	clock   outbound.Clock
	logger  logger.Logger
}

// NewArchiver creates a new Archiver
func NewArchiver(storage outbound.LogStorage, clock outbound.Clock, log logger.Logger) *Archiver {
	return &Archiver{
		storage: storage,
		clock:   clock,
		logger:  log,
	}
}

// Open binds a log to the identity (kind, label). A creation entry is written
// only when nothing is stored for the identity yet; existing entries are kept.
func (a *Archiver) Open(ctx context.Context, kind, label string) (*Log, error) {
	if strings.TrimSpace(kind) == "" {
		return nil, apperr.ErrInvalidArgument("archive kind is required")
	}
	if label == "" {
		return nil, apperr.ErrInvalidArgument("archive label is required")
	}

	id := domain.NewIdentity(kind, label)
	name := id.StorageName()

	handle, created, err := a.storage.Open(ctx, name)
	if err != nil {
		a.logger.Error(ctx, "Failed to open archive", err, map[string]interface{}{"storage": name})
		return nil, apperr.ErrStorageOpen(name, err)
	}

	l := &Log{
		id:      id,
		handle:  handle,
		storage: a.storage,
		clock:   a.clock,
		logger:  a.logger.WithFields(map[string]interface{}{"storage": name}),
	}

	if created {
		if err := l.Append(ctx, id.CreationMessage()); err != nil {
			// leave no storage without its creation entry
			_ = handle.Delete(ctx)
			return nil, err
		}
	}

	logger.LogArchiveEvent(ctx, a.logger, "opened", name, true, map[string]interface{}{
		"created": created,
	})
	return l, nil
}

// OpenArchive opens the log for id as an entity.Archive
func (a *Archiver) OpenArchive(ctx context.Context, id domain.Identity) (entity.Archive, error) {
	l, err := a.Open(ctx, id.Kind, id.Label)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// History reads back every entry stored for id without opening it for writing
func (a *Archiver) History(ctx context.Context, id domain.Identity) ([]domain.Entry, error) {
	return readEntries(ctx, a.storage, id.StorageName())
}

// Log is one open change log. Appends are serialized per Log.
type Log struct {
	mu        sync.Mutex
	id        domain.Identity
	handle    outbound.LogHandle
	storage   outbound.LogStorage
	clock     outbound.Clock
	logger    logger.Logger
	destroyed bool
	closed    bool
}

// Identity returns the identity the log is bound to
func (l *Log) Identity() domain.Identity {
	return l.id
}

// Append writes one timestamped entry. The entry is durable when Append returns nil.
func (l *Log) Append(ctx context.Context, message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	name := l.id.StorageName()
	switch {
	case l.destroyed:
		return apperr.ErrStorageDestroyed(name)
	case l.closed:
		return apperr.ErrStorageClosed(name)
	}

	start := time.Now()
	entry := domain.NewEntry(l.clock.Now(), message)
	if err := l.handle.AppendLine(ctx, entry.Line()); err != nil {
		l.logger.Error(ctx, "Failed to append archive entry", err, map[string]interface{}{
			"removed": errors.Is(err, outbound.ErrLogRemoved),
		})
		return apperr.ErrStorageAppend(name, err)
	}

	logger.LogPerformance(ctx, l.logger, "archive.append", time.Since(start), nil)
	return nil
}

// Entries reads back every entry of the log in append order
func (l *Log) Entries(ctx context.Context) ([]domain.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.destroyed {
		return nil, apperr.ErrStorageDestroyed(l.id.StorageName())
	}
	return readEntries(ctx, l.storage, l.id.StorageName())
}

// Destroy deletes the backing storage. It is irreversible and not itself logged;
// every later Append fails.
func (l *Log) Destroy(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	name := l.id.StorageName()
	switch {
	case l.destroyed:
		return apperr.ErrStorageDestroyed(name)
	case l.closed:
		return apperr.ErrStorageClosed(name)
	}

	if err := l.handle.Delete(ctx); err != nil {
		logger.LogArchiveEvent(ctx, l.logger, "destroyed", name, false, map[string]interface{}{"error": err.Error()})
		return apperr.ErrStorageDelete(name, err)
	}
	l.destroyed = true

	logger.LogArchiveEvent(ctx, l.logger, "destroyed", name, true, nil)
	return nil
}

// Close releases the storage handle. Closing twice is a no-op.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.destroyed {
		l.closed = true
		return nil
	}
	l.closed = true
	if err := l.handle.Close(); err != nil {
		return apperr.ErrStorageRelease(l.id.StorageName(), err)
	}
	return nil
}

func readEntries(ctx context.Context, storage outbound.LogStorage, name string) ([]domain.Entry, error) {
	lines, err := storage.ReadLines(ctx, name)
	if err != nil {
		if errors.Is(err, outbound.ErrLogNotFound) {
			return nil, apperr.ErrNotFound("Archive", name)
		}
		return nil, apperr.ErrStorageRead(name, err)
	}

	entries, err := domain.ParseEntries(lines)
	if err != nil {
		return nil, apperr.ErrStorageRead(name, err)
	}
	return entries, nil
}
