// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the accounting of driver owned memory
package pp2

import (
	"fmt"
	"sync"
	"unsafe"

	"k8s.io/klog/v2"
)

// MemType : a named allocation domain for driver control structures.
// A non zero Limit caps the bytes that may be in use at once; allocations
// beyond it fail with ErrNoMemory.
type MemType struct {
	Name  string
	Limit uint64

	mu     sync.Mutex
	inUse  uint64
	allocs int
}

func NewMemType(name string, limit uint64) *MemType {
	return &MemType{Name: name, Limit: limit}
}

// InUse returns the bytes currently allocated from this domain.
func (m *MemType) InUse() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inUse
}

// Allocations returns the number of arrays currently allocated from this domain.
func (m *MemType) Allocations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allocs
}

func (m *MemType) reserve(size uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Limit != 0 && m.inUse+size > m.Limit {
		return fmt.Errorf("%w: %s: %d bytes requested, %d of %d in use", ErrNoMemory, m.Name, size, m.inUse, m.Limit)
	}
	m.inUse += size
	m.allocs++
	return nil
}

func (m *MemType) unreserve(size uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if size > m.inUse || m.allocs == 0 {
		panic(fmt.Errorf("pp2: %s: freeing %d bytes with %d in use", m.Name, size, m.inUse))
	}
	m.inUse -= size
	m.allocs--
}

// mallocArray returns a zeroed array of n elements accounted to m.
func mallocArray[T any](m *MemType, n int) ([]T, error) {
	var zero T
	if n <= 0 {
		return nil, fmt.Errorf("%w: %s: invalid element count %d", ErrNoMemory, m.Name, n)
	}
	size := uint64(n) * uint64(unsafe.Sizeof(zero))
	if err := m.reserve(size); err != nil {
		return nil, err
	}
	klog.V(DBG_LVL_DETAIL).InfoS("pp2.mallocArray", "type", m.Name, "count", n, "bytes", size)
	return make([]T, n), nil
}

func freeArray[T any](m *MemType, a []T) {
	var zero T
	size := uint64(len(a)) * uint64(unsafe.Sizeof(zero))
	klog.V(DBG_LVL_DETAIL).InfoS("pp2.freeArray", "type", m.Name, "count", len(a), "bytes", size)
	m.unreserve(size)
}
