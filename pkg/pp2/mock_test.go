// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package pp2

import (
	"errors"
	"fmt"
)

// access : one register access seen by a mockRegion
type access struct {
	Write bool
	Off   uint32
	Val   uint32
	Ord   Ordering
}

func wr(off, val uint32, o Ordering) access {
	return access{Write: true, Off: off, Val: val, Ord: o}
}

// mockRegion is a register file in a map. It records every access in order.
type mockRegion struct {
	size   uint32
	regs   map[uint32]uint32
	log    []access
	closed int
	stuck  map[uint32]bool // offsets whose access faults
}

func newMockRegion(size uint32) *mockRegion {
	return &mockRegion{size: size, regs: make(map[uint32]uint32)}
}

func (r *mockRegion) check(offset uint32) {
	if offset%4 != 0 || offset+4 > r.size {
		panic(fmt.Sprintf("mock region: bad offset 0x%x", offset))
	}
	if r.stuck[offset] {
		panic(fmt.Sprintf("mock region: access to 0x%x faulted", offset))
	}
}

func (r *mockRegion) Read32(offset uint32, o Ordering) uint32 {
	r.check(offset)
	r.log = append(r.log, access{Off: offset, Val: r.regs[offset], Ord: o})
	return r.regs[offset]
}

func (r *mockRegion) Write32(offset uint32, value uint32, o Ordering) {
	r.check(offset)
	r.regs[offset] = value
	r.log = append(r.log, wr(offset, value, o))
}

func (r *mockRegion) Close() error {
	r.closed++
	return nil
}

// writes returns the recorded writes, reads dropped.
func (r *mockRegion) writes() []access {
	var w []access
	for _, a := range r.log {
		if a.Write {
			w = append(w, a)
		}
	}
	return w
}

// writesIn returns the recorded writes with an offset in [lo, hi).
func (r *mockRegion) writesIn(lo, hi uint32) []access {
	var w []access
	for _, a := range r.writes() {
		if a.Off >= lo && a.Off < hi {
			w = append(w, a)
		}
	}
	return w
}

func (r *mockRegion) reset() {
	r.log = nil
}

// mockDevice hands out two mock regions sized like the real windows.
type mockDevice struct {
	name    string
	hid     string
	base    *mockRegion
	iface   *mockRegion
	failMap map[int]bool
	maps    int
}

func newMockDevice(name string) *mockDevice {
	return &mockDevice{
		name:    name,
		hid:     MVPP2_ACPI_HID,
		base:    newMockRegion(MVPP2_MAX_THREADS * MVPP22_ADDR_SPACE_SZ),
		iface:   newMockRegion(0xb000),
		failMap: make(map[int]bool),
	}
}

func (d *mockDevice) Name() string       { return d.name }
func (d *mockDevice) HardwareID() string { return d.hid }

func (d *mockDevice) MapRegion(index int) (Region, error) {
	if d.failMap[index] {
		return nil, errors.New("mock: no such region")
	}
	d.maps++
	switch index {
	case MVPP2_BASE_REGION:
		return d.base, nil
	case MVPP2_IFACE_REGION:
		return d.iface, nil
	}
	return nil, errors.New("mock: no such region")
}

// open returns the number of regions mapped and not closed yet.
func (d *mockDevice) open() int {
	return d.maps - d.base.closed - d.iface.closed
}

// failingParser returns a partial table set and an error.
type failingParser struct {
	allocShadow bool
}

func (p failingParser) DefaultInit(mem *MemType, c *Controller) (ParserTables, error) {
	var t ParserTables
	if p.allocShadow {
		s, err := mallocArray[PrsShadow](mem, MVPP2_PRS_TCAM_SRAM_SIZE)
		if err != nil {
			return t, err
		}
		t.Shadow = s
	}
	return t, errors.New("parser: tcam stuck")
}

type failingClassifier struct{}

func (failingClassifier) Init(c *Controller) error {
	return errors.New("classifier: flow table stuck")
}

type errThreads struct{}

func (errThreads) NumThreads() (int, error) {
	return 0, errors.New("affinity unavailable")
}

// attachedController returns a Ready controller on a mock device.
func attachedController(threads int) (*Controller, *mockDevice, error) {
	c, err := NewController(Config{Threads: FixedThreads(threads)})
	if err != nil {
		return nil, nil, err
	}
	dev := newMockDevice("f2000000.ethernet")
	return c, dev, c.Attach(dev)
}
