package alloc

import (
	"errors"
	"fmt"
)

// ErrNotRunStart is returned by Free when the offset does not point at the
// first page of a live allocation.
var ErrNotRunStart = errors.New("alloc: offset is not the start of an allocation")

type pageStatus uint8

const (
	pageFree pageStatus = iota
	// pageOccupied marks the last (or only) page of a run.
	pageOccupied
	// pageContinued marks a page whose run continues into the next page.
	pageContinued
)

// VirtualAllocator hands out page-granular regions of a virtual address range.
// It does not own any memory; callers map offsets onto their own buffers.
// It is not safe for concurrent use.
type VirtualAllocator struct {
	size     int
	pageSize int
	pages    []pageStatus
	used     int
}

// NewVirtualAllocator creates an allocator covering size bytes. The page size
// is the smallest multiple of alignment that is at least minPageSize.
func NewVirtualAllocator(size, alignment, minPageSize int) *VirtualAllocator {
	if alignment <= 0 {
		alignment = 1
	}
	pageSize := ceilDiv(max(minPageSize, 1), alignment) * alignment

	a := &VirtualAllocator{pageSize: pageSize}
	a.Resize(size)
	return a
}

// Size returns the virtual size in bytes, always a whole number of pages.
func (a *VirtualAllocator) Size() int { return a.size }

// PageSize returns the allocation granularity in bytes.
func (a *VirtualAllocator) PageSize() int { return a.pageSize }

// PageCount returns the number of tracked pages.
func (a *VirtualAllocator) PageCount() int { return len(a.pages) }

// AllocatedPages returns the number of pages held by live allocations.
func (a *VirtualAllocator) AllocatedPages() int { return a.used }

// Allocate reserves enough whole pages for size bytes using a first-fit scan.
// It returns false when no free run is large enough; the caller is expected to
// Resize and retry.
func (a *VirtualAllocator) Allocate(size int) (offset int, ok bool) {
	need := max(ceilDiv(size, a.pageSize), 1)

	start, run := -1, 0
	for i, st := range a.pages {
		if st != pageFree {
			start, run = -1, 0
			continue
		}
		if start < 0 {
			start = i
		}
		run++
		if run == need {
			break
		}
	}
	if start < 0 || run < need {
		return 0, false
	}

	last := start + need - 1
	for i := start; i < last; i++ {
		a.pages[i] = pageContinued
	}
	a.pages[last] = pageOccupied
	a.used += need

	return start * a.pageSize, true
}

// Free releases the run that was allocated starting at offset.
func (a *VirtualAllocator) Free(offset int) error {
	if offset < 0 || offset%a.pageSize != 0 {
		return fmt.Errorf("free %d: %w", offset, ErrNotRunStart)
	}
	first := offset / a.pageSize
	if first >= len(a.pages) || a.pages[first] == pageFree {
		return fmt.Errorf("free %d: %w", offset, ErrNotRunStart)
	}
	// A continuation page right before us means offset sits inside a run.
	if first > 0 && a.pages[first-1] == pageContinued {
		return fmt.Errorf("free %d: %w", offset, ErrNotRunStart)
	}

	for i := first; i < len(a.pages); i++ {
		st := a.pages[i]
		a.pages[i] = pageFree
		a.used--
		if st != pageContinued {
			break
		}
	}
	return nil
}

// Resize grows the page table to cover newSize bytes, rounded up to whole
// pages. Shrinking is ignored so live allocations are never truncated.
func (a *VirtualAllocator) Resize(newSize int) {
	count := ceilDiv(max(newSize, 0), a.pageSize)
	if count > len(a.pages) {
		grown := make([]pageStatus, count)
		copy(grown, a.pages)
		a.pages = grown
	}
	a.size = len(a.pages) * a.pageSize
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
