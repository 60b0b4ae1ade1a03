// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements register regions mapped from the physical memory device
package pp2

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
	"k8s.io/klog/v2"
)

// Device : the platform handle a controller attaches to
type Device interface {
	Name() string
	HardwareID() string
	// MapRegion maps register region index. Unmapping is Region.Close.
	MapRegion(index int) (Region, error)
}

// DevMemDevice : a controller reached through /dev/mem at fixed physical addresses
type DevMemDevice struct {
	DevName string
	HID     string
	Regions []RegionSpec
	MemPath string
}

// NewDevMemDevice returns the /dev/mem device described by a board profile.
func NewDevMemDevice(b BoardProfile) *DevMemDevice {
	name := b.Device
	if name == "" {
		name = b.Name
	}
	return &DevMemDevice{
		DevName: name,
		HID:     MVPP2_ACPI_HID,
		Regions: b.Regions,
		MemPath: "/dev/mem",
	}
}

func (d *DevMemDevice) Name() string       { return d.DevName }
func (d *DevMemDevice) HardwareID() string { return d.HID }

func (d *DevMemDevice) MapRegion(index int) (Region, error) {
	if index < 0 || index >= len(d.Regions) {
		return nil, fmt.Errorf("%w: %s has no region %d", ErrNoSuchResource, d.DevName, index)
	}
	spec := d.Regions[index]
	if spec.Size <= 0 || spec.Size%4 != 0 {
		return nil, fmt.Errorf("%w: %s region %d: invalid size 0x%x", ErrNoSuchResource, d.DevName, index, spec.Size)
	}
	if err := spec.checkFlush(); err != nil {
		return nil, fmt.Errorf("%w: %s region %d: %v", ErrNoSuchResource, d.DevName, index, err)
	}

	pageSize := int64(os.Getpagesize())
	alignedBaseAddr := spec.Base &^ (pageSize - 1)
	delta := int(spec.Base - alignedBaseAddr)
	bufSize := int((int64(delta+spec.Size) + pageSize - 1) &^ (pageSize - 1))

	memPath := d.MemPath
	if memPath == "" {
		memPath = "/dev/mem"
	}
	f, err := os.OpenFile(memPath, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s region %d: %v", ErrNoSuchResource, d.DevName, index, err)
	}
	klog.V(DBG_LVL_INFO).Infof("pp2.MapRegion: %s region %d phyaddr 0x%X size 0x%X", d.DevName, index, alignedBaseAddr, bufSize)
	mmap, err := unix.Mmap(int(f.Fd()), alignedBaseAddr, bufSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s region %d: mmap: %v", ErrNoSuchResource, d.DevName, index, err)
	}

	r := &mmioRegion{
		name:         fmt.Sprintf("%s/%d", d.DevName, index),
		mmap:         mmap,
		regs:         mmap[delta : delta+spec.Size],
		flush:        spec.Flush,
		dev_mem_file: f,
	}
	klog.V(DBG_LVL_BASIC).Infof("pp2.MapRegion: %s mapped", r.name)
	return r, nil
}

type mmioRegion struct {
	name         string
	mmap         []byte   // page aligned mapping around the region
	regs         []byte   // the register region inside mmap
	flush        uint32   // offset read to drain posted writes
	dev_mem_file *os.File // this holds the file pointer to the memory device
}

// Every access is a single 32-bit atomic load or store, so the compiler can
// neither merge, split nor drop it.
func (r *mmioRegion) word(offset uint32) *uint32 {
	if offset%4 != 0 || int(offset)+4 > len(r.regs) {
		panic(fmt.Errorf("pp2: %s: register offset 0x%x outside region of 0x%x bytes", r.name, offset, len(r.regs)))
	}
	return (*uint32)(unsafe.Pointer(&r.regs[offset]))
}

func (r *mmioRegion) Read32(offset uint32, o Ordering) uint32 {
	return atomic.LoadUint32(r.word(offset))
}

func (r *mmioRegion) Write32(offset uint32, value uint32, o Ordering) {
	atomic.StoreUint32(r.word(offset), value)
	if o == Ordered {
		atomic.LoadUint32(r.word(r.flush))
	}
}

func (r *mmioRegion) Close() error {
	if r.mmap == nil {
		return nil
	}
	err := unix.Munmap(r.mmap)
	r.mmap, r.regs = nil, nil
	if cerr := r.dev_mem_file.Close(); err == nil {
		err = cerr
	}
	klog.V(DBG_LVL_BASIC).Infof("pp2.Region.Close: %s unmapped", r.name)
	return err
}
