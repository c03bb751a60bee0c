package archive

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fixora/archive/application/port/outbound"
	"github.com/fixora/archive/domain"
	apperr "github.com/fixora/archive/domain/error"
	"github.com/fixora/archive/infrastructure/adapter/memory"
	"github.com/fixora/archive/infrastructure/service/clock"
	"github.com/fixora/archive/infrastructure/service/logger"
)

var testStart = time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)

func newTestArchiver() (*Archiver, *memory.MemoryLogStorage, *clock.FakeClock) {
	storage := memory.NewMemoryLogStorage()
	c := clock.NewFakeClock(testStart)
	return NewArchiver(storage, c, logger.NewNopLogger()), storage, c
}

func messages(entries []domain.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

func TestArchiver_Open_WritesCreationEntryOnce(t *testing.T) {
	ctx := context.Background()
	archiver, _, _ := newTestArchiver()

	first, err := archiver.Open(ctx, "Product", "Bread")
	require.NoError(t, err)
	require.NoError(t, first.Append(ctx, "Current price: 2.5 $"))
	require.NoError(t, first.Close())

	second, err := archiver.Open(ctx, "Product", "Bread")
	require.NoError(t, err)
	defer second.Close()

	entries, err := second.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Product Bread created", "Current price: 2.5 $"}, messages(entries))
}

func TestArchiver_Open_FreshWritesExactlyOneCreationEntry(t *testing.T) {
	ctx := context.Background()
	archiver, storage, _ := newTestArchiver()

	l, err := archiver.Open(ctx, "Customer", "Kate")
	require.NoError(t, err)
	defer l.Close()

	lines, err := storage.ReadLines(ctx, "Customer_Kate")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-06-01 12:00:00 - Customer Kate created"}, lines)
	assert.Equal(t, domain.NewIdentity("Customer", "Kate"), l.Identity())
}

func TestLog_Append_KeepsCallOrderAndClock(t *testing.T) {
	ctx := context.Background()
	archiver, _, c := newTestArchiver()

	l, err := archiver.Open(ctx, "Order", "#101")
	require.NoError(t, err)
	defer l.Close()

	const n = 10
	for i := 0; i < n; i++ {
		c.Advance(time.Duration(i%3) * time.Second)
		require.NoError(t, l.Append(ctx, fmt.Sprintf("entry %d", i)))
	}

	entries, err := l.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, n+1)

	assert.Equal(t, "Order #101 created", entries[0].Message)
	for i := 1; i <= n; i++ {
		assert.Equal(t, fmt.Sprintf("entry %d", i-1), entries[i].Message)
		assert.False(t, entries[i].Timestamp.Before(entries[i-1].Timestamp), "timestamps must not decrease")
	}
	assert.Equal(t, c.Now(), entries[n].Timestamp)
}

func TestLog_Destroy_ThenAppendFails(t *testing.T) {
	ctx := context.Background()
	archiver, storage, _ := newTestArchiver()

	l, err := archiver.Open(ctx, "Customer", "Kate")
	require.NoError(t, err)

	require.NoError(t, l.Destroy(ctx))

	exists, err := storage.Exists(ctx, "Customer_Kate")
	require.NoError(t, err)
	assert.False(t, exists)

	err = l.Append(ctx, "Address has been updated to: somewhere")
	require.Error(t, err)
	assert.True(t, apperr.IsStorageError(err))
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeStorageDestroyed))

	assert.True(t, apperr.IsStorageError(l.Destroy(ctx)))
	assert.NoError(t, l.Close())
}

func TestLog_Append_StorageRemovedConcurrently(t *testing.T) {
	ctx := context.Background()
	archiver, storage, _ := newTestArchiver()

	l, err := archiver.Open(ctx, "Product", "Bread")
	require.NoError(t, err)
	defer l.Close()

	storage.Remove("Product_Bread")

	err = l.Append(ctx, "Price has been updated to: 3 $")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeStorageAppend))
	assert.ErrorIs(t, err, outbound.ErrLogRemoved)
}

func TestLog_Close(t *testing.T) {
	ctx := context.Background()
	archiver, _, _ := newTestArchiver()

	l, err := archiver.Open(ctx, "Product", "Bread")
	require.NoError(t, err)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	err = l.Append(ctx, "late")
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeStorageClosed))

	// closing releases the handle, not the storage
	entries, err := archiver.History(ctx, l.Identity())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLog_Append_SerializesConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	archiver, _, _ := newTestArchiver()

	l, err := archiver.Open(ctx, "Order", "#555")
	require.NoError(t, err)
	defer l.Close()

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, l.Append(ctx, fmt.Sprintf("writer %d", i)))
		}(i)
	}
	wg.Wait()

	entries, err := l.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, writers+1)

	seen := make(map[string]bool)
	for _, e := range entries[1:] {
		seen[e.Message] = true
	}
	assert.Len(t, seen, writers)
}

func TestArchiver_Open_InvalidIdentity(t *testing.T) {
	archiver, _, _ := newTestArchiver()

	_, err := archiver.Open(context.Background(), "", "Bread")
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeInvalidArgument))

	_, err = archiver.Open(context.Background(), "Product", "")
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeInvalidArgument))
}

func TestArchiver_History_Unknown(t *testing.T) {
	archiver, _, _ := newTestArchiver()

	_, err := archiver.History(context.Background(), domain.NewIdentity("Product", "Nothing"))
	assert.True(t, apperr.IsNotFound(err))
}

func TestArchiver_OpenArchive(t *testing.T) {
	archiver, _, _ := newTestArchiver()

	a, err := archiver.OpenArchive(context.Background(), domain.NewIdentity("Product", "Milk"))
	require.NoError(t, err)
	assert.Equal(t, "Product_Milk", a.Identity().StorageName())
	assert.NoError(t, a.Close())

	a, err = archiver.OpenArchive(context.Background(), domain.NewIdentity("", "Milk"))
	assert.Error(t, err)
	assert.Nil(t, a)
}

type mockLogStorage struct {
	mock.Mock
}

func (m *mockLogStorage) Open(ctx context.Context, name string) (outbound.LogHandle, bool, error) {
	args := m.Called(ctx, name)
	handle, _ := args.Get(0).(outbound.LogHandle)
	return handle, args.Bool(1), args.Error(2)
}

func (m *mockLogStorage) ReadLines(ctx context.Context, name string) ([]string, error) {
	args := m.Called(ctx, name)
	lines, _ := args.Get(0).([]string)
	return lines, args.Error(1)
}

func (m *mockLogStorage) Exists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

type mockLogHandle struct {
	mock.Mock
}

func (m *mockLogHandle) AppendLine(ctx context.Context, line string) error {
	return m.Called(ctx, line).Error(0)
}

func (m *mockLogHandle) Delete(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockLogHandle) Close() error {
	return m.Called().Error(0)
}

func TestArchiver_Open_StorageFailure(t *testing.T) {
	ctx := context.Background()
	storage := new(mockLogStorage)
	storage.On("Open", ctx, "Product_Bread").Return(nil, false, errors.New("permission denied"))

	archiver := NewArchiver(storage, clock.NewFakeClock(testStart), logger.NewNopLogger())
	_, err := archiver.Open(ctx, "Product", "Bread")

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeStorageOpen))
	storage.AssertExpectations(t)
}

func TestArchiver_Open_CreationEntryFailureRemovesStorage(t *testing.T) {
	ctx := context.Background()
	handle := new(mockLogHandle)
	handle.On("AppendLine", ctx, "2024-06-01 12:00:00 - Product Bread created").Return(errors.New("disk full"))
	handle.On("Delete", ctx).Return(nil)

	storage := new(mockLogStorage)
	storage.On("Open", ctx, "Product_Bread").Return(handle, true, nil)

	archiver := NewArchiver(storage, clock.NewFakeClock(testStart), logger.NewNopLogger())
	_, err := archiver.Open(ctx, "Product", "Bread")

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeStorageAppend))
	handle.AssertExpectations(t)
}

func TestLog_Destroy_Failure(t *testing.T) {
	ctx := context.Background()
	handle := new(mockLogHandle)
	handle.On("Delete", ctx).Return(errors.New("read-only file system"))

	storage := new(mockLogStorage)
	storage.On("Open", ctx, "Customer_Kate").Return(handle, false, nil)

	archiver := NewArchiver(storage, clock.NewFakeClock(testStart), logger.NewNopLogger())
	l, err := archiver.Open(ctx, "Customer", "Kate")
	require.NoError(t, err)

	err = l.Destroy(ctx)
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeStorageDelete))

	// the log stays usable after a failed destroy
	handle.On("AppendLine", ctx, mock.AnythingOfType("string")).Return(nil)
	assert.NoError(t, l.Append(ctx, "still here"))
}

func TestArchiver_History_ReadFailure(t *testing.T) {
	ctx := context.Background()
	storage := new(mockLogStorage)
	storage.On("ReadLines", ctx, "Product_Bread").Return(nil, errors.New("i/o timeout"))

	archiver := NewArchiver(storage, clock.NewFakeClock(testStart), logger.NewNopLogger())
	_, err := archiver.History(ctx, domain.NewIdentity("Product", "Bread"))

	assert.True(t, apperr.HasCode(err, apperr.ErrCodeStorageRead))
}
