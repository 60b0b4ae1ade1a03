// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the classifier default initialization
package pp2

import (
	"fmt"

	"k8s.io/klog/v2"
)

// Classifier : default initialization of the flow classifier
type Classifier interface {
	Init(c *Controller) error
}

// DefaultClassifier enables the classifier with empty flow and lookup tables.
type DefaultClassifier struct{}

func (DefaultClassifier) Init(c *Controller) error {
	// Enable classifier
	c.Write(MVPP2_CLS_MODE_REG, MVPP2_CLS_MODE_ACTIVE_MASK)

	// Clear classifier flow table
	for index := uint32(0); index < MVPP2_CLS_FLOWS_TBL_SIZE; index++ {
		c.WriteRelaxed(MVPP2_CLS_FLOW_INDEX_REG, index)
		c.WriteRelaxed(MVPP2_CLS_FLOW_TBL0_REG, 0)
		c.WriteRelaxed(MVPP2_CLS_FLOW_TBL1_REG, 0)
		c.WriteRelaxed(MVPP2_CLS_FLOW_TBL2_REG, 0)
	}

	// Clear classifier lookup table, both ways
	for index := uint32(0); index < MVPP2_CLS_LKP_TBL_SIZE; index++ {
		for way := uint32(0); way < 2; way++ {
			c.WriteRelaxed(MVPP2_CLS_LKP_INDEX_REG, way<<MVPP2_CLS_LKP_INDEX_WAY_OFFS|index)
			c.WriteRelaxed(MVPP2_CLS_LKP_TBL_REG, 0)
		}
	}

	// Every port looks up way 0
	c.Write(MVPP2_CLS_PORT_WAY_REG, 0)

	klog.V(DBG_LVL_INFO).InfoS("pp2.DefaultClassifier.Init", "flows", MVPP2_CLS_FLOWS_TBL_SIZE, "lookups", MVPP2_CLS_LKP_TBL_SIZE)
	return nil
}

func (c *Controller) clsInit() error {
	if err := c.cfg.Classifier.Init(c); err != nil {
		return fmt.Errorf("%w: classifier: %v", ErrCollaborator, err)
	}
	return nil
}
