// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the aggregated TX queue control blocks
package pp2

import (
	"fmt"

	"k8s.io/klog/v2"
)

// aggrTxqsInit allocates one aggregated queue per thread.
// TODO: allocate the descriptor rings and program MVPP2_AGGR_TXQ_DESC_ADDR_REG once DMA memory is available.
func (c *Controller) aggrTxqsInit() error {
	if c.nthreads <= 0 || c.nthreads > MVPP2_MAX_THREADS {
		return fmt.Errorf("%w: %d threads", ErrCapabilityExceeded, c.nthreads)
	}
	txqs, err := mallocArray[AggrTxQueue](c.mem, c.nthreads)
	if err != nil {
		return fmt.Errorf("aggr txqs: %w", err)
	}
	for i := range txqs {
		txq := &txqs[i]
		txq.ID = i
		txq.Size = MVPP2_AGGR_TXQ_SIZE
		txq.LastDesc = txq.Size - 1
		// The index register is not cleared by reset, start from where the hardware is.
		txq.NextDescToProc = c.Read(MVPP2_AGGR_TXQ_INDEX_REG(i))
		klog.V(DBG_LVL_DETAIL).InfoS("pp2.aggrTxqsInit", "txq", i, "nextDescToProc", txq.NextDescToProc)
	}
	mem := c.mem
	c.aggrTxqs.hold(txqs, func(q []AggrTxQueue) { freeArray(mem, q) })
	return nil
}

// AggrTxqs returns the aggregated queue control blocks, nil before attach.
func (c *Controller) AggrTxqs() []AggrTxQueue {
	return c.aggrTxqs.get()
}
