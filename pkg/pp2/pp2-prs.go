// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the parser default initialization
package pp2

import (
	"fmt"

	"k8s.io/klog/v2"
)

// ParserTables : the software tables owned by the parser. The controller
// keeps them and frees them on detach.
type ParserTables struct {
	Shadow      []PrsShadow
	DoubleVlans []bool
}

// Parser : default initialization of the header parser. On error the tables
// returned so far are still handed over, so the caller can free them.
type Parser interface {
	DefaultInit(mem *MemType, c *Controller) (ParserTables, error)
}

// DefaultParser clears the TCAM and points every port at the first lookup.
// Protocol entries are programmed by the port layer.
type DefaultParser struct{}

func (DefaultParser) DefaultInit(mem *MemType, c *Controller) (ParserTables, error) {
	var t ParserTables

	// Enable tcam table
	c.Write(MVPP2_PRS_TCAM_CTRL_REG, MVPP2_PRS_TCAM_EN_MASK)

	// Clear all tcam and sram entries
	for index := uint32(0); index < MVPP2_PRS_TCAM_SRAM_SIZE; index++ {
		c.WriteRelaxed(MVPP2_PRS_TCAM_IDX_REG, index)
		for i := 0; i < MVPP2_PRS_TCAM_WORDS; i++ {
			c.WriteRelaxed(MVPP2_PRS_TCAM_DATA_REG(i), 0)
		}
		c.WriteRelaxed(MVPP2_PRS_SRAM_IDX_REG, index)
		for i := 0; i < MVPP2_PRS_SRAM_WORDS; i++ {
			c.WriteRelaxed(MVPP2_PRS_SRAM_DATA_REG(i), 0)
		}
	}

	// Invalidate all tcam entries
	for index := uint32(0); index < MVPP2_PRS_TCAM_SRAM_SIZE; index++ {
		c.WriteRelaxed(MVPP2_PRS_TCAM_IDX_REG, index)
		c.WriteRelaxed(MVPP2_PRS_TCAM_DATA_REG(MVPP2_PRS_TCAM_INV_WORD), MVPP2_PRS_TCAM_INV_MASK)
	}

	shadow, err := mallocArray[PrsShadow](mem, MVPP2_PRS_TCAM_SRAM_SIZE)
	if err != nil {
		return t, fmt.Errorf("prs shadow: %w", err)
	}
	t.Shadow = shadow

	dbl, err := mallocArray[bool](mem, MVPP2_PRS_DBL_VLANS_MAX)
	if err != nil {
		return t, fmt.Errorf("prs double vlans: %w", err)
	}
	t.DoubleVlans = dbl

	// Always start from lookup = 0
	for port := 0; port < MVPP2_MAX_PORTS; port++ {
		prsHwPortInit(c, port, MVPP2_PRS_LU_MH, MVPP2_PRS_PORT_LU_MAX, 0)
	}

	klog.V(DBG_LVL_INFO).InfoS("pp2.DefaultParser.DefaultInit", "entries", MVPP2_PRS_TCAM_SRAM_SIZE)
	return t, nil
}

// prsHwPortInit sets the first lookup, the lookup limit and the initial
// header offset of a port.
func prsHwPortInit(c *Controller, port int, luFirst, luMax, offset uint32) {
	val := c.Read(MVPP2_PRS_INIT_LOOKUP_REG)
	MVPP2_PRS_PORT_LU(port).write(&val, luFirst)
	c.Write(MVPP2_PRS_INIT_LOOKUP_REG, val)

	val = c.Read(MVPP2_PRS_MAX_LOOP_REG(port))
	MVPP2_PRS_MAX_LOOP(port).write(&val, luMax)
	c.Write(MVPP2_PRS_MAX_LOOP_REG(port), val)

	val = c.Read(MVPP2_PRS_INIT_OFFS_REG(port))
	MVPP2_PRS_INIT_OFF(port).write(&val, offset)
	c.Write(MVPP2_PRS_INIT_OFFS_REG(port), val)
}

func (c *Controller) prsInit() error {
	t, err := c.cfg.Parser.DefaultInit(c.mem, c)
	mem := c.mem
	if t.Shadow != nil {
		c.prsShadow.hold(t.Shadow, func(s []PrsShadow) { freeArray(mem, s) })
	}
	if t.DoubleVlans != nil {
		c.prsDoubleVlans.hold(t.DoubleVlans, func(d []bool) { freeArray(mem, d) })
	}
	if err != nil {
		return fmt.Errorf("%w: parser: %v", ErrCollaborator, err)
	}
	return nil
}

// ParserShadow returns the parser shadow table, nil before attach.
func (c *Controller) ParserShadow() []PrsShadow {
	return c.prsShadow.get()
}
