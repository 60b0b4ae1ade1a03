// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the buffer manager pool table and pool initialization
package pp2

import (
	"fmt"

	"k8s.io/klog/v2"
)

// BMPoolClass : packet size and buffer count of one pool class
type BMPoolClass struct {
	PktSize int `json:"pktSize"`
	BufNum  int `json:"bufNum"`
}

// BMPoolTable : the size class table, indexed by BMPoolID. It is a value:
// every controller keeps its own copy taken at attach time.
type BMPoolTable [MVPP2_BM_POOLS_NUM]BMPoolClass

// DefaultBMPoolTable returns the short, long and jumbo classes.
func DefaultBMPoolTable() BMPoolTable {
	var t BMPoolTable
	// Short pool
	t[MVPP2_BM_SHORT] = BMPoolClass{PktSize: MVPP2_BM_SHORT_PKT_SIZE, BufNum: MVPP2_BM_SHORT_BUF_NUM}
	// Long pool
	t[MVPP2_BM_LONG] = BMPoolClass{PktSize: MVPP2_BM_LONG_PKT_SIZE, BufNum: MVPP2_BM_LONG_BUF_NUM}
	// Jumbo pool
	t[MVPP2_BM_JUMBO] = BMPoolClass{PktSize: MVPP2_BM_JUMBO_PKT_SIZE, BufNum: MVPP2_BM_JUMBO_BUF_NUM}
	return t
}

// Lookup returns the packet size and buffer count of a pool class.
func (t BMPoolTable) Lookup(id BMPoolID) (pktSize int, bufNum int, err error) {
	if id < 0 || id >= MVPP2_BM_POOLS_NUM {
		return 0, 0, fmt.Errorf("pp2: unknown pool class %d", id)
	}
	return t[id].PktSize, t[id].BufNum, nil
}

// bmPoolSizeBytes is the size of a pool's buffer pointer area. It is sized for
// the largest pool the hardware takes, whatever the class buffer count.
func bmPoolSizeBytes() int {
	return 2 * 8 * MVPP2_BM_POOL_SIZE_MAX
}

// SetPoolTable installs the size class table. Replacing it with different
// classes while pools are allocated is refused.
func (c *Controller) SetPoolTable(t BMPoolTable) error {
	if c.bmPools.Held() && t != c.pools {
		return ErrPoolsInService
	}
	c.pools = t
	return nil
}

// PoolTable returns the size class table in use.
func (c *Controller) PoolTable() BMPoolTable {
	return c.pools
}

// bmSilence masks and acknowledges every pool interrupt so no stale event can
// fire once pools are allocated.
func (c *Controller) bmSilence() {
	last := int(MVPP2_BM_POOLS_NUM) - 1
	for i := 0; i <= last; i++ {
		// Mask BM all interrupts
		c.WriteRelaxed(MVPP2_BM_INTR_MASK_REG(i), 0)
		// Clear BM cause register
		if i == last {
			c.Write(MVPP2_BM_INTR_CAUSE_REG(i), 0)
		} else {
			c.WriteRelaxed(MVPP2_BM_INTR_CAUSE_REG(i), 0)
		}
	}
}

func (c *Controller) bmInit() error {
	c.bmSilence()

	pools, err := mallocArray[BMPool](c.mem, int(MVPP2_BM_POOLS_NUM))
	if err != nil {
		return fmt.Errorf("bm pools: %w", err)
	}
	for i := range pools {
		id := BMPoolID(i)
		pktSize, bufNum, _ := c.pools.Lookup(id)
		pools[i] = BMPool{
			ID:        id,
			PktSize:   pktSize,
			BufNum:    bufNum,
			SizeBytes: bmPoolSizeBytes(),
		}
		klog.V(DBG_LVL_DETAIL).InfoS("pp2.bmInit", "pool", id.String(), "pktSize", pktSize, "bufNum", bufNum, "sizeBytes", pools[i].SizeBytes)
	}
	mem := c.mem
	c.bmPools.hold(pools, func(p []BMPool) { freeArray(mem, p) })
	return nil
}

// BMPools returns the pool control blocks, nil before attach.
func (c *Controller) BMPools() []BMPool {
	return c.bmPools.get()
}
