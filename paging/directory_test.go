package paging_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xy2iii/dominos/paging"
)

// bumpAllocator is a trivial PhysicalAllocator for tests: frames are
// just monotonically increasing page-aligned offsets, freed frames
// are reused LIFO.
type bumpAllocator struct {
	mu   sync.Mutex
	next uintptr
	free []uintptr
}

func (a *bumpAllocator) AllocFrame() (uintptr, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n := len(a.free); n > 0 {
		f := a.free[n-1]
		a.free = a.free[:n-1]
		return f, nil
	}
	f := a.next
	a.next += paging.PageSize
	return f, nil
}

func (a *bumpAllocator) FreeFrame(frame uintptr) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.free = append(a.free, frame)
	return nil
}

func TestSplitJoin_RoundTrips(t *testing.T) {
	addr := paging.Join(5, 17, 300)
	pd, pt, off := paging.Split(addr)
	assert.Equal(t, 5, pd)
	assert.Equal(t, 17, pt)
	assert.Equal(t, 300, off)
}

func TestIsUserAddr_SplitsAtSharedBoundary(t *testing.T) {
	assert.False(t, paging.IsUserAddr(0))
	assert.False(t, paging.IsUserAddr(paging.NumSharedEntries-1))
	assert.True(t, paging.IsUserAddr(paging.NumSharedEntries))
}

func TestAddressSpace_MapResolveUnmap(t *testing.T) {
	alloc := &bumpAllocator{}
	as, err := paging.PageDirectoryCreate(alloc, nil)
	require.NoError(t, err)

	virt := paging.Join(paging.NumSharedEntries, 0, 0)
	phys, err := alloc.AllocFrame()
	require.NoError(t, err)

	require.NoError(t, as.MapPage(virt, phys, paging.FlagWritable|paging.FlagUser))
	assert.True(t, as.IsUserAddr(virt))

	got, err := as.Resolve(virt + 42)
	require.NoError(t, err)
	assert.Equal(t, phys+42, got)

	require.NoError(t, as.UnmapPage(virt))
	_, err = as.Resolve(virt)
	assert.ErrorIs(t, err, paging.ErrNotMapped)
}

func TestAddressSpace_MapZoneUnmapZone(t *testing.T) {
	alloc := &bumpAllocator{}
	as, err := paging.PageDirectoryCreate(alloc, nil)
	require.NoError(t, err)

	virtStart := paging.Join(paging.NumSharedEntries, 0, 0)
	virtEnd := virtStart + 4*paging.PageSize
	physStart, err := alloc.AllocFrame()
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := alloc.AllocFrame()
		require.NoError(t, err)
	}

	require.NoError(t, as.MapZone(virtStart, virtEnd, physStart, paging.FlagWritable))

	for i := uintptr(0); i < 4; i++ {
		got, err := as.Resolve(virtStart + i*paging.PageSize)
		require.NoError(t, err)
		assert.Equal(t, physStart+i*paging.PageSize, got)
	}

	require.NoError(t, as.UnmapZone(virtStart, virtEnd))
	for i := uintptr(0); i < 4; i++ {
		_, err := as.Resolve(virtStart + i*paging.PageSize)
		assert.ErrorIs(t, err, paging.ErrNotMapped)
	}
}

func TestAddressSpace_SharedEntriesCopiedFromTemplate(t *testing.T) {
	alloc := &bumpAllocator{}
	template, err := paging.PageDirectoryCreate(alloc, nil)
	require.NoError(t, err)

	sharedVirt := paging.Join(3, 0, 0)
	sharedPhys, err := alloc.AllocFrame()
	require.NoError(t, err)
	require.NoError(t, template.MapPage(sharedVirt, sharedPhys, paging.FlagWritable))

	child, err := paging.PageDirectoryCreate(alloc, template.Directory())
	require.NoError(t, err)

	got, err := child.Resolve(sharedVirt)
	require.NoError(t, err)
	assert.Equal(t, sharedPhys, got)
}

func TestAddressSpace_DestroyFreesOnlyUnsharedFrames(t *testing.T) {
	alloc := &bumpAllocator{}
	as, err := paging.PageDirectoryCreate(alloc, nil)
	require.NoError(t, err)

	virt := paging.Join(paging.NumSharedEntries, 0, 0)
	phys, err := alloc.AllocFrame()
	require.NoError(t, err)
	require.NoError(t, as.MapPage(virt, phys, paging.FlagWritable))

	freeBefore := len(alloc.free)
	require.NoError(t, as.PageDirectoryDestroy())
	assert.Greater(t, len(alloc.free), freeBefore, "destroy must return the page table's frame")
}
