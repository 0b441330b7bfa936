package mem

import "unsafe"

// New allocates a zeroed value of type T in the arena.
func New[T any](a *Arena) *T {
	var t T
	p := (*T)(a.Alloc(unsafe.Sizeof(t), unsafe.Alignof(t)))
	if p != nil {
		*p = t
	}
	return p
}

// MakeSlice allocates a zeroed slice in the arena. Note that growing it with
// append() allocates on the Go heap instead, leaving the arena block behind.
func MakeSlice[T any](a *Arena, length int) []T {
	if length == 0 {
		return nil
	}
	var t T
	p := a.Alloc(uintptr(length)*unsafe.Sizeof(t), unsafe.Alignof(t))
	if p == nil {
		return nil
	}
	s := unsafe.Slice((*T)(p), length)
	clear(s)
	return s
}

// FreeSlice returns a slice obtained from MakeSlice to the arena.
func FreeSlice[T any](a *Arena, s []T) {
	if len(s) == 0 {
		return
	}
	a.Free(unsafe.Pointer(unsafe.SliceData(s)))
}

// Bytes reinterprets an allocated block as a byte slice.
func Bytes(p unsafe.Pointer, n int) []byte {
	return unsafe.Slice((*byte)(p), n)
}
