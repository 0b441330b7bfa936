// Package mem implements the heap a game lives in.
//
// The firmware hands out a single contiguous region and never grows it, so
// all dynamic allocations of a session must fit into one arena sized at
// startup. Allocation failure is not survivable and escalates through the
// arena's fail hook.
//
// The arena is not safe for concurrent use. All access must happen from the
// callback dispatch thread, which is the only execution context the firmware
// provides.
package mem

import (
	"unsafe"

	"github.com/clktmr/playdate/debug"
)

// Each block starts with a segment header, followed directly by the data
// area. The list is ordered by address, neighboring free segments are always
// merged.
type segment struct {
	next, prev *segment
	size       uintptr // including the header
	state      uintptr
}

const (
	segFree uintptr = 0xf4ee
	segLive uintptr = 0x11fe
)

const headerSize = unsafe.Sizeof(segment{})

// Smallest alignment handed out. Also the granularity of segment sizes,
// which keeps header addresses aligned on 32bit and 64bit hosts alike.
const MinAlign = 16

type Arena struct {
	head *segment
	fail func(size, align uintptr)

	size uintptr // total usable bytes including headers
	used uintptr
}

// NewArena initializes an arena inside buf. The fail hook is called when a
// request cannot be satisfied; it is expected not to return. If it does
// return, the failed allocation yields nil. A nil hook panics instead.
func NewArena(buf []byte, fail func(size, align uintptr)) *Arena {
	start := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	end := alignDown(start+uintptr(len(buf)), MinAlign)
	start = alignUp(start, MinAlign)
	if end-start < headerSize+MinAlign {
		panic("mem: arena buffer too small")
	}
	if fail == nil {
		fail = func(size, align uintptr) {
			panic("mem: arena exhausted")
		}
	}

	head := (*segment)(unsafe.Pointer(start))
	*head = segment{size: end - start, state: segFree}
	return &Arena{head: head, fail: fail, size: end - start}
}

// Claim obtains a region of the given size from the firmware's realloc and
// builds an arena in it. The region is never returned.
func Claim(realloc func(ptr unsafe.Pointer, size uintptr) unsafe.Pointer, size uintptr, fail func(size, align uintptr)) *Arena {
	p := realloc(nil, size)
	if p == nil {
		if fail != nil {
			fail(size, MinAlign)
		}
		panic("mem: claim failed")
	}
	return NewArena(unsafe.Slice((*byte)(p), size), fail)
}

// Alloc returns a pointer to size bytes aligned to align, which must be a
// power of two. The memory is not zeroed. A zero size returns nil without
// touching the arena.
func (a *Arena) Alloc(size, align uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	debug.Assert(align&(align-1) == 0, "mem: alignment not a power of two")
	if align < MinAlign {
		align = MinAlign
	}

	var best *segment
	var bestData uintptr
	bestFit := ^uintptr(0)
	for s := a.head; s != nil; s = s.next {
		if s.state != segFree {
			continue
		}
		start := uintptr(unsafe.Pointer(s))
		data := alignUp(start+headerSize, align)
		// A front gap needs room for the fragment's own header.
		for data-start > headerSize && data-start < 2*headerSize {
			data += align
		}
		need := alignUp(data+size-start, MinAlign)
		if need > s.size {
			continue
		}
		if fit := s.size - need; fit < bestFit {
			best, bestData, bestFit = s, data, fit
			if fit == 0 {
				break
			}
		}
	}
	if best == nil {
		a.fail(size, align)
		return nil
	}

	s := best
	start := uintptr(unsafe.Pointer(s))
	if frontLen := bestData - headerSize - start; frontLen > 0 {
		// Carve the alignment gap off into its own free segment and
		// let s become the allocated one behind it.
		alloc := (*segment)(unsafe.Pointer(bestData - headerSize))
		*alloc = segment{next: s.next, prev: s, size: s.size - frontLen, state: segFree}
		if s.next != nil {
			s.next.prev = alloc
		}
		s.next = alloc
		s.size = frontLen
		s = alloc
	}
	total := alignUp(headerSize+size, MinAlign)
	if s.size-total >= headerSize+MinAlign {
		rest := (*segment)(unsafe.Pointer(uintptr(unsafe.Pointer(s)) + total))
		*rest = segment{next: s.next, prev: s, size: s.size - total, state: segFree}
		if s.next != nil {
			s.next.prev = rest
		}
		s.next = rest
		s.size = total
	}
	s.state = segLive
	a.used += s.size

	if debug.Enabled {
		a.check()
	}
	return unsafe.Pointer(uintptr(unsafe.Pointer(s)) + headerSize)
}

// Free returns a block obtained from Alloc to the arena. Freeing nil is a
// no-op.
func (a *Arena) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	s := (*segment)(unsafe.Pointer(uintptr(p) - headerSize))
	debug.Assert(s.state == segLive, "mem: free of invalid pointer")
	s.state = segFree
	a.used -= s.size

	if n := s.next; n != nil && n.state == segFree {
		s.size += n.size
		s.next = n.next
		if n.next != nil {
			n.next.prev = s
		}
	}
	if p := s.prev; p != nil && p.state == segFree {
		p.size += s.size
		p.next = s.next
		if s.next != nil {
			s.next.prev = p
		}
	}

	if debug.Enabled {
		a.check()
	}
}

// Size returns the total number of usable bytes, headers included.
func (a *Arena) Size() uintptr { return a.size }

// Used returns the number of bytes currently allocated, headers included.
func (a *Arena) Used() uintptr { return a.used }

func (a *Arena) check() {
	var total uintptr
	for s := a.head; s != nil; s = s.next {
		debug.Assert(s.state == segFree || s.state == segLive,
			"mem: corrupted segment header")
		debug.Assert(s.next == nil || s.next.prev == s,
			"mem: broken segment links")
		debug.Assert(s.next == nil ||
			uintptr(unsafe.Pointer(s))+s.size == uintptr(unsafe.Pointer(s.next)),
			"mem: segment sizes don't add up")
		debug.Assert(s.next == nil || s.state == segLive || s.next.state == segLive,
			"mem: neighboring free segments not merged")
		total += s.size
	}
	debug.Assert(total == a.size, "mem: leaked segment bytes")
}

func alignUp(p, align uintptr) uintptr {
	return (p + align - 1) &^ (align - 1)
}

func alignDown(p, align uintptr) uintptr {
	return p &^ (align - 1)
}
