// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the register window accessors of the packet processor
package pp2

import (
	"fmt"

	"k8s.io/klog/v2"
)

// Ordering : memory ordering requested for a register access
type Ordering uint8

const (
	// Relaxed accesses reach the device exactly once but a write may still be
	// posted in the interconnect when the call returns.
	Relaxed Ordering = iota
	// Ordered writes are followed by a read of the region flush register, so
	// this write and every earlier one on the region have landed on return.
	// Reads are never posted, so both orderings issue the same single load.
	Ordered
)

func (o Ordering) String() string {
	if o == Ordered {
		return "ordered"
	}
	return "relaxed"
}

// Region : a mapped register window. Offsets are in bytes, 32-bit aligned.
type Region interface {
	Read32(offset uint32, o Ordering) uint32
	Write32(offset uint32, value uint32, o Ordering)
	Close() error
}

type u32field struct {
	offset   int
	bitwidth int
}

func (u u32field) mask() uint32 {
	return (1<<u.bitwidth - 1) << u.offset
}

func (u u32field) read(reg uint32) uint32 {
	return (reg >> u.offset) & (1<<u.bitwidth - 1)
}

func (u u32field) write(reg *uint32, val uint32) {
	*reg = (*reg &^ u.mask()) | ((val << u.offset) & u.mask())
}

func (u u32field) val(val uint32) uint32 {
	var reg uint32
	u.write(&reg, val)
	return reg
}

// ThreadOffset returns the byte offset of a register inside the window of the given thread.
func ThreadOffset(thread uint, offset uint32) uint32 {
	return uint32(thread)*MVPP22_ADDR_SPACE_SZ + offset
}

// Read a global register of the base region
func (c *Controller) Read(offset uint32) uint32 {
	return c.regRead(c.base.get(), offset, Ordered)
}

// Write a global register of the base region
func (c *Controller) Write(offset uint32, data uint32) {
	c.regWrite(c.base.get(), offset, data, Ordered)
}

// WriteRelaxed writes a global register without draining the write.
func (c *Controller) WriteRelaxed(offset uint32, data uint32) {
	c.regWrite(c.base.get(), offset, data, Relaxed)
}

// ThreadRead reads a per-thread register, or a global register that has to be
// routed through a thread window. See ThreadRegisters.
func (c *Controller) ThreadRead(thread uint, offset uint32, o Ordering) uint32 {
	c.checkThread(thread)
	return c.regRead(c.base.get(), ThreadOffset(thread, offset), o)
}

// ThreadWrite writes a per-thread register, or a thread routed global register.
func (c *Controller) ThreadWrite(thread uint, offset uint32, data uint32, o Ordering) {
	c.checkThread(thread)
	c.regWrite(c.base.get(), ThreadOffset(thread, offset), data, o)
}

func (c *Controller) ifaceRead(offset uint32) uint32 {
	return c.regRead(c.iface.get(), offset, Ordered)
}

func (c *Controller) ifaceWrite(offset uint32, data uint32) {
	c.regWrite(c.iface.get(), offset, data, Ordered)
}

func (c *Controller) checkThread(thread uint) {
	if thread >= MVPP2_MAX_THREADS {
		panic(fmt.Errorf("pp2: thread %d out of range, max %d", thread, MVPP2_MAX_THREADS))
	}
}

func (c *Controller) regRead(r Region, offset uint32, o Ordering) uint32 {
	if r == nil {
		panic(fmt.Errorf("pp2: read 0x%x on unmapped region", offset))
	}
	v := r.Read32(offset, o)
	klog.V(DBG_LVL_DEEP_DETAIL).Infof("pp2.read: offset 0x%X value 0x%X %s", offset, v, o)
	return v
}

func (c *Controller) regWrite(r Region, offset uint32, data uint32, o Ordering) {
	if r == nil {
		panic(fmt.Errorf("pp2: write 0x%x on unmapped region", offset))
	}
	klog.V(DBG_LVL_DEEP_DETAIL).Infof("pp2.write: offset 0x%X value 0x%X %s", offset, data, o)
	r.Write32(offset, data, o)
}

// ThreadRegClass : how a register relates to the thread windows
type ThreadRegClass string

const (
	// Each thread has its own copy of the register.
	PerThread ThreadRegClass = "per-thread"
	// A global register that must be accessed through the same thread window
	// as the per-thread register it relates to.
	ThreadRouted ThreadRegClass = "thread-routed"
)

// ThreadRegister : one entry of the thread window classification table
type ThreadRegister struct {
	Name      string
	Offset    uint32
	Class     ThreadRegClass
	RelatedTo string
}

// ThreadRegisters lists the registers callers must reach through ThreadRead
// and ThreadWrite. Indexed registers are listed at index 0. Every register not
// listed here is global and goes through Read and Write.
var ThreadRegisters = []ThreadRegister{
	{"MVPP2_BM_VIRT_ALLOC_REG", MVPP2_BM_VIRT_ALLOC_REG, PerThread, ""},
	{"MVPP22_BM_ADDR_HIGH_ALLOC", MVPP22_BM_ADDR_HIGH_ALLOC, PerThread, ""},
	{"MVPP22_BM_ADDR_HIGH_RLS_REG", MVPP22_BM_ADDR_HIGH_RLS_REG, PerThread, ""},
	{"MVPP2_BM_VIRT_RLS_REG", MVPP2_BM_VIRT_RLS_REG, PerThread, ""},
	{"MVPP2_ISR_RX_TX_CAUSE_REG", MVPP2_ISR_RX_TX_CAUSE_REG_0, PerThread, ""},
	{"MVPP2_ISR_RX_TX_MASK_REG", MVPP2_ISR_RX_TX_MASK_REG_0, PerThread, ""},
	{"MVPP2_TXQ_NUM_REG", MVPP2_TXQ_NUM_REG, PerThread, ""},
	{"MVPP2_AGGR_TXQ_UPDATE_REG", MVPP2_AGGR_TXQ_UPDATE_REG, PerThread, ""},
	{"MVPP2_TXQ_RSVD_REQ_REG", MVPP2_TXQ_RSVD_REQ_REG, PerThread, ""},
	{"MVPP2_TXQ_RSVD_RSLT_REG", MVPP2_TXQ_RSVD_RSLT_REG, PerThread, ""},
	{"MVPP2_TXQ_SENT_REG", MVPP2_TXQ_SENT_REG_BASE, PerThread, ""},
	{"MVPP2_RXQ_NUM_REG", MVPP2_RXQ_NUM_REG, PerThread, ""},
	{"MVPP2_BM_PHY_ALLOC_REG", MVPP2_BM_PHY_ALLOC_REG_BASE, ThreadRouted, "MVPP2_BM_VIRT_ALLOC_REG"},
	{"MVPP2_BM_PHY_RLS_REG", MVPP2_BM_PHY_RLS_REG_BASE, ThreadRouted, "MVPP2_BM_VIRT_RLS_REG"},
	{"MVPP2_RXQ_THRESH_REG", MVPP2_RXQ_THRESH_REG, ThreadRouted, "MVPP2_RXQ_NUM_REG"},
	{"MVPP2_RXQ_DESC_ADDR_REG", MVPP2_RXQ_DESC_ADDR_REG, ThreadRouted, "MVPP2_RXQ_NUM_REG"},
	{"MVPP2_RXQ_DESC_SIZE_REG", MVPP2_RXQ_DESC_SIZE_REG, ThreadRouted, "MVPP2_RXQ_NUM_REG"},
	{"MVPP2_RXQ_INDEX_REG", MVPP2_RXQ_INDEX_REG, ThreadRouted, "MVPP2_RXQ_NUM_REG"},
	{"MVPP2_TXQ_PENDING_REG", MVPP2_TXQ_PENDING_REG, ThreadRouted, "MVPP2_TXQ_NUM_REG"},
	{"MVPP2_TXQ_DESC_ADDR_REG", MVPP2_TXQ_DESC_ADDR_REG, ThreadRouted, "MVPP2_TXQ_NUM_REG"},
	{"MVPP2_TXQ_DESC_SIZE_REG", MVPP2_TXQ_DESC_SIZE_REG, ThreadRouted, "MVPP2_TXQ_NUM_REG"},
	{"MVPP2_TXQ_INDEX_REG", MVPP2_TXQ_INDEX_REG, ThreadRouted, "MVPP2_TXQ_NUM_REG"},
	{"MVPP2_TXQ_PREF_BUF_REG", MVPP2_TXQ_PREF_BUF_REG, ThreadRouted, "MVPP2_TXQ_NUM_REG"},
}

// LookupThreadRegister returns the classification of a register offset, if it
// is reached through a thread window.
func LookupThreadRegister(offset uint32) (ThreadRegister, bool) {
	for _, r := range ThreadRegisters {
		if r.Offset == offset {
			return r, true
		}
	}
	return ThreadRegister{}, false
}
