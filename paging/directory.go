package paging

import (
	"errors"
	"sync"
)

// ErrNotMapped is returned by Resolve when the requested virtual
// address has no current mapping. UnmapPage does not return it:
// unmapping an address that was never mapped succeeds.
var ErrNotMapped = errors.New("paging: address not mapped")

// AddressSpace is one process's page directory plus the allocator it
// draws frames from. The shared entries (indices < NumSharedEntries)
// are copied by value from a template directory at creation and are
// never freed by this AddressSpace; every other entry is owned and
// torn down by PageDirectoryDestroy.
type AddressSpace struct {
	mu    sync.Mutex
	dir   *PageDirectory
	alloc PhysicalAllocator
}

// PageDirectoryCreate allocates a new AddressSpace, copying the first
// NumSharedEntries entries from shared — the kernel's own mappings —
// so every process sees the same kernel view regardless of which
// address space is active.
func PageDirectoryCreate(alloc PhysicalAllocator, shared *PageDirectory) (*AddressSpace, error) {
	frame, err := alloc.AllocFrame()
	if err != nil {
		return nil, err
	}
	dir := &PageDirectory{}
	if shared != nil {
		copy(dir.entries[:NumSharedEntries], shared.entries[:NumSharedEntries])
	}
	as := &AddressSpace{dir: dir, alloc: alloc}
	_ = frame // the directory's own backing frame; nothing else tracks it in this hosted model
	return as, nil
}

// PageDirectoryDestroy frees every page table and frame this
// AddressSpace owns outright (index >= NumSharedEntries), leaving the
// shared range untouched since some other AddressSpace still
// references those frames.
func (as *AddressSpace) PageDirectoryDestroy() error {
	as.mu.Lock()
	defer as.mu.Unlock()
	for i := NumSharedEntries; i < numPDEntries; i++ {
		pde := &as.dir.entries[i]
		if !pde.present {
			continue
		}
		if err := as.alloc.FreeFrame(pde.frame); err != nil {
			return err
		}
		*pde = pdEntry{}
	}
	return nil
}

// Directory returns the underlying PageDirectory, for use as the
// shared template passed to a later PageDirectoryCreate call.
func (as *AddressSpace) Directory() *PageDirectory {
	as.mu.Lock()
	defer as.mu.Unlock()
	return as.dir
}

// IsUserAddr reports whether addr is mapped, and present, within this
// AddressSpace's unshared (process-owned) range.
func (as *AddressSpace) IsUserAddr(addr uintptr) bool {
	as.mu.Lock()
	defer as.mu.Unlock()
	pdIndex, ptIndex, _ := Split(addr)
	if !IsUserAddr(pdIndex) {
		return false
	}
	pde := &as.dir.entries[pdIndex]
	if !pde.present {
		return false
	}
	return pde.table.entries[ptIndex].present
}

// MapPage maps virt to phys with the given flags, allocating a new
// page table for virt's page-directory slot if one doesn't already
// exist there.
func (as *AddressSpace) MapPage(virt, phys uintptr, flags Flags) error {
	as.mu.Lock()
	defer as.mu.Unlock()
	return as.mapPageLocked(virt, phys, flags)
}

func (as *AddressSpace) mapPageLocked(virt, phys uintptr, flags Flags) error {
	pdIndex, ptIndex, _ := Split(virt)
	pde := &as.dir.entries[pdIndex]
	if !pde.present {
		frame, err := as.alloc.AllocFrame()
		if err != nil {
			return err
		}
		pde.table = &PageTable{}
		pde.frame = frame
		pde.flags = flags
		pde.present = true
	}
	pde.table.entries[ptIndex] = entry{frame: phys, flags: flags, present: true}
	return nil
}

// UnmapPage clears virt's mapping, if any. It is not an error to
// unmap an address that was never mapped.
func (as *AddressSpace) UnmapPage(virt uintptr) error {
	as.mu.Lock()
	defer as.mu.Unlock()
	pdIndex, ptIndex, _ := Split(virt)
	pde := &as.dir.entries[pdIndex]
	if !pde.present {
		return nil
	}
	pde.table.entries[ptIndex] = entry{}
	return nil
}

// Resolve translates a mapped virtual address to its backing physical
// address, or returns ErrNotMapped.
func (as *AddressSpace) Resolve(virt uintptr) (uintptr, error) {
	as.mu.Lock()
	defer as.mu.Unlock()
	pdIndex, ptIndex, offset := Split(virt)
	pde := &as.dir.entries[pdIndex]
	if !pde.present {
		return 0, ErrNotMapped
	}
	pte := pde.table.entries[ptIndex]
	if !pte.present {
		return 0, ErrNotMapped
	}
	return pte.frame + uintptr(offset), nil
}

// MapZone maps the page-aligned range [virtStart, virtEnd) to an
// equally sized physical range starting at physStart, one page at a
// time. Both zones must already be page-aligned and the same size.
func (as *AddressSpace) MapZone(virtStart, virtEnd, physStart uintptr, flags Flags) error {
	if (virtEnd-virtStart)%PageSize != 0 {
		return errors.New("paging: zone size must be a multiple of PageSize")
	}
	as.mu.Lock()
	defer as.mu.Unlock()
	for off := uintptr(0); off < virtEnd-virtStart; off += PageSize {
		if err := as.mapPageLocked(virtStart+off, physStart+off, flags); err != nil {
			return err
		}
	}
	return nil
}

// UnmapZone unmaps every page in the page-aligned range [virtStart, virtEnd).
func (as *AddressSpace) UnmapZone(virtStart, virtEnd uintptr) error {
	as.mu.Lock()
	defer as.mu.Unlock()
	for off := uintptr(0); off < virtEnd-virtStart; off += PageSize {
		pdIndex, ptIndex, _ := Split(virtStart + off)
		pde := &as.dir.entries[pdIndex]
		if pde.present {
			pde.table.entries[ptIndex] = entry{}
		}
	}
	return nil
}
