package region

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jostojic/quotescreen/internal/domain"
	"github.com/jostojic/quotescreen/internal/ports"
)

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()

	assert.Equal(t, int64(12110), l.Size())
	assert.Equal(t, 119, l.MaxQuoteLen())
}

func TestNewLayout(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		slotSize int
		wantErr  bool
	}{
		{"stock", 100, 120, false},
		{"max capacity", 255, 64, false},
		{"zero capacity", 0, 120, true},
		{"capacity beyond count byte", 256, 120, true},
		{"slot too small", 10, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLayout(tt.capacity, tt.slotSize)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsInvalidInput(err))
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestLayout_SlotOffset(t *testing.T) {
	l := DefaultLayout()

	off, err := l.SlotOffset(0)
	require.NoError(t, err)
	assert.Equal(t, int64(OffsetQuotes), off)

	off, err = l.SlotOffset(99)
	require.NoError(t, err)
	assert.Equal(t, int64(110+99*120), off)
	assert.LessOrEqual(t, off+int64(l.SlotSize), l.Size())

	_, err = l.SlotOffset(100)
	assert.True(t, domain.IsIndexOutOfRange(err))

	_, err = l.SlotOffset(-1)
	assert.True(t, domain.IsIndexOutOfRange(err))
}

func TestCString(t *testing.T) {
	buf := EncodeCString("abc", 8)
	assert.Equal(t, []byte{'a', 'b', 'c', 0, 0, 0, 0, 0}, buf)

	s, ok := DecodeCString(buf)
	assert.True(t, ok)
	assert.Equal(t, "abc", s)

	_, ok = DecodeCString([]byte("no-terminator"))
	assert.False(t, ok)
}

func TestMemory_Bounds(t *testing.T) {
	m := NewMemory(16)

	_, err := m.WriteAt([]byte("0123456789abcdef"), 0)
	require.NoError(t, err)

	_, err = m.WriteAt([]byte("x"), 16)
	require.Error(t, err)

	_, err = m.ReadAt(make([]byte, 4), 14)
	require.Error(t, err)

	buf := make([]byte, 4)
	_, err = m.ReadAt(buf, 12)
	require.NoError(t, err)
	assert.Equal(t, "cdef", string(buf))
}

func TestMemory_InjectedFailures(t *testing.T) {
	m := NewMemory(8)
	m.WriteErr = errors.New("worn out")
	m.SyncErr = errors.New("flush failed")

	_, err := m.WriteAt([]byte("a"), 0)
	require.EqualError(t, err, "worn out")
	require.EqualError(t, m.Sync(), "flush failed")
	assert.Zero(t, m.Syncs())
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	kinds := []string{KindMemory, KindFile, KindMmap}
	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			path := filepath.Join(dir, kind+".bin")

			m, err := Open(kind, path, 64)
			require.NoError(t, err)
			t.Cleanup(func() { _ = m.Close() })

			assert.Equal(t, int64(64), m.Size())
			roundTrip(t, m)
		})
	}

	_, err := Open("flash", "", 64)
	require.Error(t, err)
}

func roundTrip(t *testing.T, m ports.Medium) {
	t.Helper()

	_, err := m.WriteAt([]byte("hello"), 10)
	require.NoError(t, err)
	require.NoError(t, m.Sync())

	buf := make([]byte, 5)
	_, err = m.ReadAt(buf, 10)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	_, err = m.WriteAt([]byte("overflow"), 60)
	require.Error(t, err)
}

func TestOpenFile_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.bin")

	f, err := OpenFile(path, 32)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{7}, 31)
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(32), info.Size())

	f, err = OpenFile(path, 32)
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 1)
	_, err = f.ReadAt(buf, 31)
	require.NoError(t, err)
	assert.Equal(t, byte(7), buf[0])
	assert.Equal(t, path, f.Path())
}

// replaceByRename writes a region whose count byte is count next to path
// and renames it over path, the way an editor or sync tool saves.
func replaceByRename(t *testing.T, path string, size int64, count byte) {
	t.Helper()

	content := make([]byte, size)
	content[OffsetCount] = count

	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, content, 0o600))
	require.NoError(t, os.Rename(tmp, path))
}

func readCount(t *testing.T, m ports.Medium) byte {
	t.Helper()

	buf := make([]byte, 1)
	_, err := m.ReadAt(buf, OffsetCount)
	require.NoError(t, err)

	return buf[0]
}

func TestFile_ReopenAfterRename(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.bin")

	f, err := OpenFile(path, 200)
	require.NoError(t, err)
	defer f.Close()

	changed, err := f.Reopen()
	require.NoError(t, err)
	assert.False(t, changed, "nothing replaced the file yet")

	replaceByRename(t, path, 200, 7)
	assert.Equal(t, byte(0), readCount(t, f), "the old file is still held")

	changed, err = f.Reopen()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, byte(7), readCount(t, f))

	_, err = f.WriteAt([]byte{3}, OffsetCount)
	require.NoError(t, err)
	require.NoError(t, f.Sync())

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte(3), onDisk[OffsetCount], "writes go to the new file")
}

func TestFile_ReopenWhileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.bin")

	f, err := OpenFile(path, 200)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, os.Remove(path))

	changed, err := f.Reopen()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestCredentials_RoundTrip(t *testing.T) {
	m := NewMemory(DefaultLayout().Size())

	_, configured, err := ReadCredentials(m)
	require.NoError(t, err)
	assert.False(t, configured)

	creds := Credentials{SSID: "home", Password: "hunter22"}
	require.NoError(t, WriteCredentials(m, creds))
	assert.Equal(t, 2, m.Syncs())

	got, configured, err := ReadCredentials(m)
	require.NoError(t, err)
	assert.True(t, configured)
	assert.Equal(t, creds, got)

	raw := m.Bytes()
	assert.Equal(t, byte(ConfiguredMarker), raw[OffsetConfigured])
	assert.Equal(t, "home", string(raw[OffsetSSID:OffsetSSID+4]))
	assert.Zero(t, raw[OffsetSSID+4])
}

func TestCredentials_Validate(t *testing.T) {
	long := strings.Repeat("x", MaxCredentialLen+1)

	tests := []struct {
		name  string
		creds Credentials
		field string
	}{
		{"empty ssid", Credentials{SSID: " "}, "ssid"},
		{"ssid too long", Credentials{SSID: long}, "ssid"},
		{"password too long", Credentials{SSID: "a", Password: long}, "password"},
		{"nul in password", Credentials{SSID: "a", Password: "a\x00b"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()

			var validation *domain.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
		})
	}

	exact := Credentials{SSID: strings.Repeat("s", MaxCredentialLen), Password: strings.Repeat("p", MaxCredentialLen)}
	require.NoError(t, exact.Validate())
}

func TestWriteCredentials_StorageFailure(t *testing.T) {
	m := NewMemory(DefaultLayout().Size())
	m.WriteErr = errors.New("bad block")

	err := WriteCredentials(m, Credentials{SSID: "home"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageWrite)
}

func TestCredentials_LogValueRedactsPassword(t *testing.T) {
	v := Credentials{SSID: "home", Password: "secret"}.LogValue()
	assert.NotContains(t, v.String(), "secret")
	assert.Contains(t, v.String(), "home")
}

func TestWatcher_NotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "region.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 8), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32

	w := NewWatcher(path, 20*time.Millisecond, nil)
	done := make(chan error, 1)

	go func() {
		done <- w.Run(ctx, func(context.Context) { calls.Add(1) })
	}()

	// Give the watcher time to register.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.bin"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("changed!"), 0o600))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_NotifiesOnRenameReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "region.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 200), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32

	w := NewWatcher(path, 20*time.Millisecond, nil)
	done := make(chan error, 1)

	go func() {
		done <- w.Run(ctx, func(context.Context) { calls.Add(1) })
	}()

	time.Sleep(50 * time.Millisecond)

	replaceByRename(t, path, 200, 2)

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
