// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package pp2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBMPoolTable(t *testing.T) {
	tbl := DefaultBMPoolTable()
	tests := []struct {
		id      BMPoolID
		name    string
		pktSize int
		bufNum  int
	}{
		{MVPP2_BM_SHORT, "short", 320, 2048},
		{MVPP2_BM_LONG, "long", 1856, 1024},
		{MVPP2_BM_JUMBO, "jumbo", 10048, 512},
	}
	for _, tt := range tests {
		pktSize, bufNum, err := tbl.Lookup(tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.name, tt.id.String())
		assert.Equal(t, tt.pktSize, pktSize, tt.name)
		assert.Equal(t, tt.bufNum, bufNum, tt.name)
	}

	_, _, err := tbl.Lookup(MVPP2_BM_POOLS_NUM)
	assert.Error(t, err)
	_, _, err = tbl.Lookup(-1)
	assert.Error(t, err)
	assert.Equal(t, "unknown", MVPP2_BM_POOLS_NUM.String())
}

func TestBMPoolSizeBytes(t *testing.T) {
	assert.Equal(t, 16*(16*1024-32), bmPoolSizeBytes())
}

func TestBMSilence(t *testing.T) {
	c, dev := mappedController(t)
	c.bmSilence()
	assert.Equal(t, []access{
		wr(MVPP2_BM_INTR_MASK_REG(0), 0, Relaxed),
		wr(MVPP2_BM_INTR_CAUSE_REG(0), 0, Relaxed),
		wr(MVPP2_BM_INTR_MASK_REG(1), 0, Relaxed),
		wr(MVPP2_BM_INTR_CAUSE_REG(1), 0, Relaxed),
		wr(MVPP2_BM_INTR_MASK_REG(2), 0, Relaxed),
		wr(MVPP2_BM_INTR_CAUSE_REG(2), 0, Ordered),
	}, dev.base.writes())
}

func TestBMInit(t *testing.T) {
	c, _ := mappedController(t)
	require.NoError(t, c.SetPoolTable(DefaultBMPoolTable()))
	require.NoError(t, c.bmInit())

	pools := c.BMPools()
	require.Len(t, pools, int(MVPP2_BM_POOLS_NUM))
	for i, p := range pools {
		assert.Equal(t, BMPoolID(i), p.ID)
		assert.Equal(t, bmPoolSizeBytes(), p.SizeBytes)
	}
	assert.Equal(t, MVPP2_BM_LONG_PKT_SIZE, pools[MVPP2_BM_LONG].PktSize)
	assert.Equal(t, MVPP2_BM_JUMBO_BUF_NUM, pools[MVPP2_BM_JUMBO].BufNum)

	c.bmPools.Release()
	assert.Nil(t, c.BMPools())
	assert.Zero(t, c.mem.InUse())
}

func TestBMInitNoMemory(t *testing.T) {
	c, _ := mappedController(t)
	c.mem.Limit = 1
	err := c.bmInit()
	assert.ErrorIs(t, err, ErrNoMemory)
	assert.False(t, c.bmPools.Held())
}

func TestSetPoolTable(t *testing.T) {
	c, _ := mappedController(t)
	custom := DefaultBMPoolTable()
	custom[MVPP2_BM_SHORT].BufNum = 4096
	require.NoError(t, c.SetPoolTable(custom))
	assert.Equal(t, custom, c.PoolTable())

	require.NoError(t, c.bmInit())
	assert.Equal(t, 4096, c.BMPools()[MVPP2_BM_SHORT].BufNum)

	// Same table is accepted, a different one is refused while pools exist.
	assert.NoError(t, c.SetPoolTable(custom))
	assert.ErrorIs(t, c.SetPoolTable(DefaultBMPoolTable()), ErrPoolsInService)
	assert.Equal(t, custom, c.PoolTable())

	c.bmPools.Release()
	assert.NoError(t, c.SetPoolTable(DefaultBMPoolTable()))
}

func TestPoolTablesAreIndependent(t *testing.T) {
	a, _ := mappedController(t)
	b, _ := mappedController(t)
	custom := DefaultBMPoolTable()
	custom[MVPP2_BM_JUMBO].PktSize = 9000
	require.NoError(t, a.SetPoolTable(custom))
	require.NoError(t, b.SetPoolTable(DefaultBMPoolTable()))
	assert.Equal(t, 9000, a.PoolTable()[MVPP2_BM_JUMBO].PktSize)
	assert.Equal(t, MVPP2_BM_JUMBO_PKT_SIZE, b.PoolTable()[MVPP2_BM_JUMBO].PktSize)
}
