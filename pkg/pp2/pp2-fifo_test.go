// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package pp2

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestFifoPartitionFor(t *testing.T) {
	tests := []struct {
		port int
		want FifoPartition
	}{
		{0, FifoPartition{RxData: 0x8000, RxAttr: 0x200, TxData: 10, TxThresh: 10*1024 - 256}},
		{1, FifoPartition{RxData: 0x2000, RxAttr: 0x80, TxData: 3, TxThresh: 3*1024 - 256}},
		{2, FifoPartition{RxData: 0x1000, RxAttr: 0x40, TxData: 3, TxThresh: 3*1024 - 256}},
		{3, FifoPartition{RxData: 0x1000, RxAttr: 0x40, TxData: 3, TxThresh: 3*1024 - 256}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FifoPartitionFor(tt.port), "port %d", tt.port)
	}
}

func TestFifoBudget(t *testing.T) {
	var rx, tx uint32
	for port := 0; port < MVPP2_MAX_PORTS; port++ {
		p := FifoPartitionFor(port)
		rx += p.RxData
		tx += p.TxData
		assert.Less(t, p.TxThresh, p.TxData*1024)
	}
	assert.Equal(t, uint32(48*1024), rx)
	assert.Equal(t, uint32(19), tx)
}

func TestFifoInitSequence(t *testing.T) {
	c, dev := mappedController(t)
	c.fifoInit()

	want := []access{
		wr(MVPP2_RX_DATA_FIFO_SIZE_REG(0), 0x8000, Relaxed),
		wr(MVPP2_RX_ATTR_FIFO_SIZE_REG(0), 0x200, Relaxed),
		wr(MVPP2_RX_DATA_FIFO_SIZE_REG(1), 0x2000, Relaxed),
		wr(MVPP2_RX_ATTR_FIFO_SIZE_REG(1), 0x80, Relaxed),
		wr(MVPP2_RX_DATA_FIFO_SIZE_REG(2), 0x1000, Relaxed),
		wr(MVPP2_RX_ATTR_FIFO_SIZE_REG(2), 0x40, Relaxed),
		wr(MVPP2_RX_DATA_FIFO_SIZE_REG(3), 0x1000, Relaxed),
		wr(MVPP2_RX_ATTR_FIFO_SIZE_REG(3), 0x40, Relaxed),
		wr(MVPP2_RX_MIN_PKT_SIZE_REG, MVPP2_RX_FIFO_PORT_MIN_PKT, Relaxed),
		wr(MVPP2_RX_FIFO_INIT_REG, 0x1, Ordered),
		wr(MVPP22_TX_FIFO_SIZE_REG(0), 0xa, Relaxed),
		wr(MVPP22_TX_FIFO_THRESH_REG(0), 0x2700, Ordered),
		wr(MVPP22_TX_FIFO_SIZE_REG(1), 0x3, Relaxed),
		wr(MVPP22_TX_FIFO_THRESH_REG(1), 0xb00, Ordered),
		wr(MVPP22_TX_FIFO_SIZE_REG(2), 0x3, Relaxed),
		wr(MVPP22_TX_FIFO_THRESH_REG(2), 0xb00, Ordered),
		wr(MVPP22_TX_FIFO_SIZE_REG(3), 0x3, Relaxed),
		wr(MVPP22_TX_FIFO_THRESH_REG(3), 0xb00, Ordered),
	}
	if diff := cmp.Diff(want, dev.base.writes()); diff != "" {
		t.Errorf("fifoInit writes mismatch (-want +got):\n%s", diff)
	}
}

func TestReprogramFIFOsIsIdempotent(t *testing.T) {
	c, dev := mappedController(t)
	assert.NoError(t, c.ReprogramFIFOs())
	first := dev.base.writes()
	dev.base.reset()
	assert.NoError(t, c.ReprogramFIFOs())
	assert.Empty(t, cmp.Diff(first, dev.base.writes()))
}
