// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the RX/TX FIFO partitioning across ports
package pp2

import "k8s.io/klog/v2"

// FifoPartition : the FIFO budget given to one port
type FifoPartition struct {
	RxData   uint32 `json:"rxData"`   // bytes
	RxAttr   uint32 `json:"rxAttr"`   // bytes
	TxData   uint32 `json:"txData"`   // KB
	TxThresh uint32 `json:"txThresh"` // bytes
}

// FifoPartitionFor returns the partition of a port. The split is fixed by port
// index, as it has to be set before any link is negotiated:
// port 0 is the only 10G capable port, port 1 does 2.5G, the others 1G.
// The total TX FIFO is 19KB and a 10G port needs 10KB of it.
func FifoPartitionFor(port int) FifoPartition {
	p := FifoPartition{
		RxData:   MVPP2_RX_FIFO_PORT_DATA_SIZE_4KB,
		RxAttr:   MVPP2_RX_FIFO_PORT_ATTR_SIZE_4KB,
		TxData:   MVPP22_TX_FIFO_DATA_SIZE_3KB,
		TxThresh: MVPP2_TX_FIFO_THRESHOLD_3KB,
	}
	switch port {
	case 0:
		p.RxData = MVPP2_RX_FIFO_PORT_DATA_SIZE_32KB
		p.RxAttr = MVPP2_RX_FIFO_PORT_ATTR_SIZE_32KB
		p.TxData = MVPP22_TX_FIFO_DATA_SIZE_10KB
		p.TxThresh = MVPP2_TX_FIFO_THRESHOLD_10KB
	case 1:
		p.RxData = MVPP2_RX_FIFO_PORT_DATA_SIZE_8KB
		p.RxAttr = MVPP2_RX_FIFO_PORT_ATTR_SIZE_8KB
	}
	return p
}

// rxFifoInit sets every port's RX sizes, then commits them with the init strobe.
func (c *Controller) rxFifoInit() {
	for port := 0; port < MVPP2_MAX_PORTS; port++ {
		p := FifoPartitionFor(port)
		c.WriteRelaxed(MVPP2_RX_DATA_FIFO_SIZE_REG(port), p.RxData)
		c.WriteRelaxed(MVPP2_RX_ATTR_FIFO_SIZE_REG(port), p.RxAttr)
	}
	c.WriteRelaxed(MVPP2_RX_MIN_PKT_SIZE_REG, MVPP2_RX_FIFO_PORT_MIN_PKT)
	c.Write(MVPP2_RX_FIFO_INIT_REG, 0x1)
}

func (c *Controller) txFifoInit() {
	for port := 0; port < MVPP2_MAX_PORTS; port++ {
		p := FifoPartitionFor(port)
		c.WriteRelaxed(MVPP22_TX_FIFO_SIZE_REG(port), p.TxData)
		c.Write(MVPP22_TX_FIFO_THRESH_REG(port), p.TxThresh)
	}
}

func (c *Controller) fifoInit() {
	c.rxFifoInit()
	c.txFifoInit()
	klog.V(DBG_LVL_INFO).InfoS("pp2.fifoInit", "ports", MVPP2_MAX_PORTS)
}

// ReprogramFIFOs partitions the FIFOs again on an attached controller.
// Safe to call from several goroutines.
func (c *Controller) ReprogramFIFOs() error {
	if !c.base.Held() {
		return ErrNotAttached
	}
	c.globalMu.Lock()
	defer c.globalMu.Unlock()
	c.fifoInit()
	return nil
}
