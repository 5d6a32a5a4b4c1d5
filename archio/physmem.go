package archio

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/xy2iii/dominos/paging"
)

// MmapPhysicalAllocator implements paging.PhysicalAllocator by
// partitioning one large anonymous mmap'd region into fixed-size
// frames, tracked with a free list. It stands in for the bare-metal
// frame allocator spec.md keeps out of scope, the same way
// GoroutineEngine stands in for swtch.
type MmapPhysicalAllocator struct {
	mu    sync.Mutex
	arena []byte
	base  uintptr
	free  []uintptr
}

// NewMmapPhysicalAllocator reserves numFrames*PageSize bytes of
// anonymous memory and carves it into free frames.
func NewMmapPhysicalAllocator(numFrames int) (*MmapPhysicalAllocator, error) {
	size := numFrames * paging.PageSize
	arena, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("archio: mmap physical arena: %w", err)
	}
	base := uintptr(0)
	if len(arena) > 0 {
		base = uintptr(unsafe.Pointer(&arena[0]))
	}
	a := &MmapPhysicalAllocator{arena: arena, base: base}
	for i := numFrames - 1; i >= 0; i-- {
		a.free = append(a.free, base+uintptr(i*paging.PageSize))
	}
	return a, nil
}

func (a *MmapPhysicalAllocator) AllocFrame() (uintptr, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := len(a.free)
	if n == 0 {
		return 0, paging.ErrNoFrames
	}
	frame := a.free[n-1]
	a.free = a.free[:n-1]
	return frame, nil
}

func (a *MmapPhysicalAllocator) FreeFrame(frame uintptr) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.free = append(a.free, frame)
	return nil
}

// Close releases the underlying mmap'd arena. No outstanding frame may
// be used after Close returns.
func (a *MmapPhysicalAllocator) Close() error {
	return unix.Munmap(a.arena)
}

var _ paging.PhysicalAllocator = (*MmapPhysicalAllocator)(nil)
