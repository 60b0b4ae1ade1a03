// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the AXI bridge (bus coherency) programming
package pp2

import "k8s.io/klog/v2"

// axiAttr builds an attribute register value from a cache code and a domain.
func axiAttr(cache, domain uint32) uint32 {
	return MVPP22_AXI_ATTR_CACHE.val(cache) | MVPP22_AXI_ATTR_DOMAIN.val(domain)
}

// axiCode builds a transaction code register value from a cache code and a domain.
func axiCode(cache, domain uint32) uint32 {
	return MVPP22_AXI_CODE_CACHE.val(cache) | MVPP22_AXI_CODE_DOMAIN.val(domain)
}

// axiInit must run before any queue or pool is handed to the hardware: their
// state machines latch these attributes.
func (c *Controller) axiInit() {
	c.WriteRelaxed(MVPP22_BM_ADDR_HIGH_RLS_REG, 0x0)

	rdval := axiAttr(MVPP22_AXI_CODE_CACHE_RD_CACHE, MVPP22_AXI_CODE_DOMAIN_OUTER_DOM)
	wrval := axiAttr(MVPP22_AXI_CODE_CACHE_WR_CACHE, MVPP22_AXI_CODE_DOMAIN_OUTER_DOM)

	// BM
	c.WriteRelaxed(MVPP22_AXI_BM_WR_ATTR_REG, wrval)
	c.WriteRelaxed(MVPP22_AXI_BM_RD_ATTR_REG, rdval)

	// Descriptors
	c.WriteRelaxed(MVPP22_AXI_AGGRQ_DESCR_RD_ATTR_REG, rdval)
	c.WriteRelaxed(MVPP22_AXI_TXQ_DESCR_WR_ATTR_REG, wrval)
	c.WriteRelaxed(MVPP22_AXI_TXQ_DESCR_RD_ATTR_REG, rdval)
	c.WriteRelaxed(MVPP22_AXI_RXQ_DESCR_WR_ATTR_REG, wrval)

	// Buffer data
	c.WriteRelaxed(MVPP22_AXI_TX_DATA_RD_ATTR_REG, rdval)
	c.WriteRelaxed(MVPP22_AXI_RX_DATA_WR_ATTR_REG, wrval)

	normal := axiCode(MVPP22_AXI_CODE_CACHE_NON_CACHE, MVPP22_AXI_CODE_DOMAIN_SYSTEM)
	c.WriteRelaxed(MVPP22_AXI_RD_NORMAL_CODE_REG, normal)
	c.WriteRelaxed(MVPP22_AXI_WR_NORMAL_CODE_REG, normal)

	c.WriteRelaxed(MVPP22_AXI_RD_SNOOP_CODE_REG, axiCode(MVPP22_AXI_CODE_CACHE_RD_CACHE, MVPP22_AXI_CODE_DOMAIN_OUTER_DOM))
	c.Write(MVPP22_AXI_WR_SNOOP_CODE_REG, axiCode(MVPP22_AXI_CODE_CACHE_WR_CACHE, MVPP22_AXI_CODE_DOMAIN_OUTER_DOM))

	klog.V(DBG_LVL_INFO).InfoS("pp2.axiInit", "rdattr", hex(rdval), "wrattr", hex(wrval), "normal", hex(normal))
}

// ReprogramCoherency runs the AXI bridge programming again on an attached
// controller. Safe to call from several goroutines.
func (c *Controller) ReprogramCoherency() error {
	if !c.base.Held() {
		return ErrNotAttached
	}
	c.globalMu.Lock()
	defer c.globalMu.Unlock()
	c.axiInit()
	return nil
}
