// Package paging implements the two-level x86-style virtual memory
// layout: a page directory of page tables, each covering a 4KiB page.
// Every AddressSpace shares its first NumSharedEntries page-directory
// entries (the kernel's own mappings) with every other AddressSpace,
// and owns the rest outright.
//
// This package depends on a PhysicalAllocator collaborator for raw
// frames — it never calls into an OS allocator directly — so a hosted
// build can back it with an mmap'd arena (see archio) while a future
// bare-metal build backs it with the kernel's own frame allocator.
package paging
