package diskspace

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsNonPositiveUsable(t *testing.T) {
	_, err := New(t.TempDir(), 0)
	require.Error(t, err)
}

func TestNewRejectsMissingDirectory(t *testing.T) {
	_, err := New("/no/such/directory/at/all", 10)
	require.Error(t, err)
}

func TestAllocateReleaseConservation(t *testing.T) {
	d, err := New(t.TempDir(), 10)
	require.NoError(t, err)

	got := d.Allocate(4)
	assert.Equal(t, 4, got)
	assert.Equal(t, 6, d.GetFree())

	d.Release(4)
	assert.Equal(t, 10, d.GetFree())
}

func TestAllocateCapsToAvailable(t *testing.T) {
	d, err := New(t.TempDir(), 5)
	require.NoError(t, err)

	got := d.Allocate(100)
	assert.Equal(t, 5, got)
	assert.Equal(t, 0, d.GetFree())
}

func TestAllocateBlocksUntilRelease(t *testing.T) {
	d, err := New(t.TempDir(), 1)
	require.NoError(t, err)

	d.Allocate(1)
	require.Equal(t, 0, d.GetFree())

	var wg sync.WaitGroup
	wg.Add(1)
	var got int
	go func() {
		defer wg.Done()
		got = d.Allocate(1)
	}()

	time.Sleep(20 * time.Millisecond)
	d.Release(1)
	wg.Wait()
	assert.Equal(t, 1, got)
}

func TestConcurrentAllocateReleaseNeverExceedsUsable(t *testing.T) {
	d, err := New(t.TempDir(), 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := d.Allocate(1)
			time.Sleep(time.Millisecond)
			d.Release(got)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, d.GetFree())
}
