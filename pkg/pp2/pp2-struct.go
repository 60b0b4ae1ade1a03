// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the PPv2.2 register map and the driver owned control
// structures, based on the Marvell Armada 7K/8K packet processor layout.
package pp2

// Register regions, in the order the platform lists them.
const (
	MVPP2_BASE_REGION  = 0 // packet processor control plane
	MVPP2_IFACE_REGION = 1 // GOP/SMI interface configuration
)

// HwVersion : The packet processor revision
type HwVersion string

// List of packet processor revisions
const (
	MVPP21 HwVersion = "PPv2.1"
	MVPP22 HwVersion = "PPv2.2"
	MVPP23 HwVersion = "PPv2.3"
)

// ACPI hardware id of the PPv2.2 controller
const MVPP2_ACPI_HID = "MRVL0110"

// PCI SIG vendor id registered to Marvell
const MVPP2_VENDOR_ID = "11ab"

// Threads
const (
	MVPP2_MAX_THREADS    = 9       // independent register windows the hardware decodes
	MVPP22_ADDR_SPACE_SZ = 0x10000 // stride between two thread windows
)

// Ports
const MVPP2_MAX_PORTS = 4

// Version register, read only. Used as the flush register of the base region.
const MVPP2_VER_ID_REG = 0x50b0

// RX FIFO registers
const (
	MVPP2_RX_DATA_FIFO_SIZE_REG_BASE = 0x00
	MVPP2_RX_ATTR_FIFO_SIZE_REG_BASE = 0x20
	MVPP2_RX_MIN_PKT_SIZE_REG        = 0x60
	MVPP2_RX_FIFO_INIT_REG           = 0x64
)

func MVPP2_RX_DATA_FIFO_SIZE_REG(port int) uint32 {
	return MVPP2_RX_DATA_FIFO_SIZE_REG_BASE + 4*uint32(port)
}

func MVPP2_RX_ATTR_FIFO_SIZE_REG(port int) uint32 {
	return MVPP2_RX_ATTR_FIFO_SIZE_REG_BASE + 4*uint32(port)
}

// RX FIFO sizes, in bytes
const (
	MVPP2_RX_FIFO_PORT_DATA_SIZE_32KB = 0x8000
	MVPP2_RX_FIFO_PORT_DATA_SIZE_8KB  = 0x2000
	MVPP2_RX_FIFO_PORT_DATA_SIZE_4KB  = 0x1000
	MVPP2_RX_FIFO_PORT_ATTR_SIZE_32KB = 0x200
	MVPP2_RX_FIFO_PORT_ATTR_SIZE_8KB  = 0x80
	MVPP2_RX_FIFO_PORT_ATTR_SIZE_4KB  = 0x40
	MVPP2_RX_FIFO_PORT_MIN_PKT        = 0x80
)

// TX FIFO registers
const (
	MVPP22_TX_FIFO_THRESH_REG_BASE = 0x8840
	MVPP22_TX_FIFO_SIZE_REG_BASE   = 0x8860
)

func MVPP22_TX_FIFO_THRESH_REG(port int) uint32 {
	return MVPP22_TX_FIFO_THRESH_REG_BASE + 4*uint32(port)
}

func MVPP22_TX_FIFO_SIZE_REG(port int) uint32 {
	return MVPP22_TX_FIFO_SIZE_REG_BASE + 4*uint32(port)
}

// TX FIFO sizes, in KB units. Thresholds are in bytes.
const (
	MVPP22_TX_FIFO_DATA_SIZE_10KB = 0xa
	MVPP22_TX_FIFO_DATA_SIZE_3KB  = 0x3
	MVPP2_TX_FIFO_THRESHOLD_MIN   = 256
	MVPP2_TX_FIFO_THRESHOLD_10KB  = MVPP22_TX_FIFO_DATA_SIZE_10KB*1024 - MVPP2_TX_FIFO_THRESHOLD_MIN
	MVPP2_TX_FIFO_THRESHOLD_3KB   = MVPP22_TX_FIFO_DATA_SIZE_3KB*1024 - MVPP2_TX_FIFO_THRESHOLD_MIN
)

// Allow cache snoop for transmitted packets
const MVPP2_TX_SNOOP_REG = 0x8800

// AXI bridge attribute registers
const (
	MVPP22_AXI_BM_WR_ATTR_REG          = 0x4100
	MVPP22_AXI_BM_RD_ATTR_REG          = 0x4104
	MVPP22_AXI_AGGRQ_DESCR_RD_ATTR_REG = 0x4110
	MVPP22_AXI_TXQ_DESCR_WR_ATTR_REG   = 0x4114
	MVPP22_AXI_TXQ_DESCR_RD_ATTR_REG   = 0x4118
	MVPP22_AXI_RXQ_DESCR_WR_ATTR_REG   = 0x411c
	MVPP22_AXI_RX_DATA_WR_ATTR_REG     = 0x4120
	MVPP22_AXI_TX_DATA_RD_ATTR_REG     = 0x4130
	MVPP22_AXI_RD_NORMAL_CODE_REG      = 0x4150
	MVPP22_AXI_RD_SNOOP_CODE_REG       = 0x4154
	MVPP22_AXI_WR_NORMAL_CODE_REG      = 0x4160
	MVPP22_AXI_WR_SNOOP_CODE_REG       = 0x4164
)

// AXI cache and domain codes
const (
	MVPP22_AXI_CODE_CACHE_NON_CACHE  = 0x3
	MVPP22_AXI_CODE_CACHE_WR_CACHE   = 0x7
	MVPP22_AXI_CODE_CACHE_RD_CACHE   = 0xb
	MVPP22_AXI_CODE_DOMAIN_OUTER_DOM = 2
	MVPP22_AXI_CODE_DOMAIN_SYSTEM    = 3
)

// AXI attribute and code register fields
var (
	MVPP22_AXI_ATTR_CACHE  = u32field{offset: 0, bitwidth: 4}
	MVPP22_AXI_ATTR_DOMAIN = u32field{offset: 12, bitwidth: 2}
	MVPP22_AXI_CODE_CACHE  = u32field{offset: 0, bitwidth: 4}
	MVPP22_AXI_CODE_DOMAIN = u32field{offset: 4, bitwidth: 2}
)

// SMI, in the interface region
const MVPP22_SMI_MISC_CFG_REG = 0x1204

var MVPP22_SMI_POLLING_EN = u32field{offset: 10, bitwidth: 1}

// Aggregated TX queues
const (
	MVPP2_AGGR_TXQ_SIZE           = 256
	MVPP2_AGGR_TXQ_INDEX_REG_BASE = 0x2140
)

func MVPP2_AGGR_TXQ_INDEX_REG(thread int) uint32 {
	return MVPP2_AGGR_TXQ_INDEX_REG_BASE + 4*uint32(thread)
}

// Buffer manager registers
const (
	MVPP2_BM_INTR_CAUSE_REG_BASE = 0x6240
	MVPP2_BM_INTR_MASK_REG_BASE  = 0x6280
	MVPP2_BM_PHY_ALLOC_REG_BASE  = 0x6400
	MVPP2_BM_VIRT_ALLOC_REG      = 0x6440
	MVPP22_BM_ADDR_HIGH_ALLOC    = 0x6444
	MVPP2_BM_PHY_RLS_REG_BASE    = 0x6480
	MVPP2_BM_VIRT_RLS_REG        = 0x64c0
	MVPP22_BM_ADDR_HIGH_RLS_REG  = 0x64c4
)

func MVPP2_BM_INTR_CAUSE_REG(pool int) uint32 {
	return MVPP2_BM_INTR_CAUSE_REG_BASE + 4*uint32(pool)
}

func MVPP2_BM_INTR_MASK_REG(pool int) uint32 {
	return MVPP2_BM_INTR_MASK_REG_BASE + 4*uint32(pool)
}

// Buffer manager pools
const (
	MVPP2_BM_POOL_PTR_ALIGN = 128
	MVPP2_BM_POOL_SIZE_MAX  = 16*1024 - MVPP2_BM_POOL_PTR_ALIGN/4

	MVPP2_BM_SHORT_BUF_NUM = 2048
	MVPP2_BM_LONG_BUF_NUM  = 1024
	MVPP2_BM_JUMBO_BUF_NUM = 512

	MVPP2_BM_SHORT_FRAME_SIZE = 704
	MVPP2_BM_LONG_FRAME_SIZE  = 2240
	MVPP2_BM_JUMBO_FRAME_SIZE = 10432

	MVPP2_NET_SKB_PAD     = 64
	MVPP2_SKB_SHINFO_SIZE = 320

	MVPP2_BM_SHORT_PKT_SIZE = MVPP2_BM_SHORT_FRAME_SIZE - MVPP2_NET_SKB_PAD - MVPP2_SKB_SHINFO_SIZE
	MVPP2_BM_LONG_PKT_SIZE  = MVPP2_BM_LONG_FRAME_SIZE - MVPP2_NET_SKB_PAD - MVPP2_SKB_SHINFO_SIZE
	MVPP2_BM_JUMBO_PKT_SIZE = MVPP2_BM_JUMBO_FRAME_SIZE - MVPP2_NET_SKB_PAD - MVPP2_SKB_SHINFO_SIZE
)

// BMPoolID : The buffer manager pool class
type BMPoolID int

// List of pool classes
const (
	MVPP2_BM_SHORT BMPoolID = iota
	MVPP2_BM_LONG
	MVPP2_BM_JUMBO
	MVPP2_BM_POOLS_NUM
)

func (p BMPoolID) String() string {
	switch p {
	case MVPP2_BM_SHORT:
		return "short"
	case MVPP2_BM_LONG:
		return "long"
	case MVPP2_BM_JUMBO:
		return "jumbo"
	}
	return "unknown"
}

// Parser registers
const (
	MVPP2_PRS_INIT_LOOKUP_REG    = 0x1000
	MVPP2_PRS_INIT_OFFS_REG_BASE = 0x1004
	MVPP2_PRS_MAX_LOOP_REG_BASE  = 0x100c
	MVPP2_PRS_TCAM_IDX_REG       = 0x1100
	MVPP2_PRS_TCAM_DATA_REG_BASE = 0x1104
	MVPP2_PRS_SRAM_IDX_REG       = 0x1200
	MVPP2_PRS_SRAM_DATA_REG_BASE = 0x1204
	MVPP2_PRS_TCAM_CTRL_REG      = 0x1230
	MVPP2_PRS_TCAM_EN_MASK       = 1 << 0
	MVPP2_PRS_TCAM_INV_MASK      = 1 << 31
	MVPP2_PRS_TCAM_SRAM_SIZE     = 256
	MVPP2_PRS_TCAM_WORDS         = 6
	MVPP2_PRS_SRAM_WORDS         = 4
	MVPP2_PRS_TCAM_INV_WORD      = 5
	MVPP2_PRS_DBL_VLANS_MAX      = 100
	MVPP2_PRS_PORT_LU_MAX        = 0xf
	MVPP2_PRS_LU_MH              = 0
)

func MVPP2_PRS_MAX_LOOP_REG(port int) uint32 {
	return MVPP2_PRS_MAX_LOOP_REG_BASE + uint32(port&0x4)
}

func MVPP2_PRS_INIT_OFFS_REG(port int) uint32 {
	return MVPP2_PRS_INIT_OFFS_REG_BASE + uint32(port&0x4)
}

func MVPP2_PRS_TCAM_DATA_REG(word int) uint32 {
	return MVPP2_PRS_TCAM_DATA_REG_BASE + 4*uint32(word)
}

func MVPP2_PRS_SRAM_DATA_REG(word int) uint32 {
	return MVPP2_PRS_SRAM_DATA_REG_BASE + 4*uint32(word)
}

// Per port parser fields
func MVPP2_PRS_PORT_LU(port int) u32field {
	return u32field{offset: port * 4, bitwidth: 8}
}

func MVPP2_PRS_MAX_LOOP(port int) u32field {
	return u32field{offset: (port % 4) * 8, bitwidth: 8}
}

func MVPP2_PRS_INIT_OFF(port int) u32field {
	return u32field{offset: (port % 4) * 8, bitwidth: 6}
}

// Classifier registers
const (
	MVPP2_CLS_MODE_REG           = 0x1800
	MVPP2_CLS_MODE_ACTIVE_MASK   = 1 << 0
	MVPP2_CLS_PORT_WAY_REG       = 0x1810
	MVPP2_CLS_LKP_INDEX_REG      = 0x1814
	MVPP2_CLS_LKP_INDEX_WAY_OFFS = 6
	MVPP2_CLS_LKP_TBL_REG        = 0x1818
	MVPP2_CLS_FLOW_INDEX_REG     = 0x1820
	MVPP2_CLS_FLOW_TBL0_REG      = 0x1824
	MVPP2_CLS_FLOW_TBL1_REG      = 0x1828
	MVPP2_CLS_FLOW_TBL2_REG      = 0x182c
	MVPP2_CLS_FLOWS_TBL_SIZE     = 512
	MVPP2_CLS_LKP_TBL_SIZE       = 64
)

// Per thread queue and interrupt registers
const (
	MVPP2_TXQ_NUM_REG           = 0x2010
	MVPP2_RXQ_NUM_REG           = 0x2040
	MVPP2_RXQ_DESC_ADDR_REG     = 0x2044
	MVPP2_RXQ_DESC_SIZE_REG     = 0x2048
	MVPP2_RXQ_THRESH_REG        = 0x204c
	MVPP2_RXQ_INDEX_REG         = 0x2050
	MVPP2_TXQ_DESC_ADDR_REG     = 0x2084
	MVPP2_TXQ_DESC_SIZE_REG     = 0x2088
	MVPP2_AGGR_TXQ_UPDATE_REG   = 0x2090
	MVPP2_TXQ_INDEX_REG         = 0x2098
	MVPP2_TXQ_PREF_BUF_REG      = 0x209c
	MVPP2_TXQ_PENDING_REG       = 0x20a0
	MVPP2_TXQ_RSVD_REQ_REG      = 0x20b0
	MVPP2_TXQ_RSVD_RSLT_REG     = 0x20b4
	MVPP2_TXQ_SENT_REG_BASE     = 0x3c00
	MVPP2_ISR_RX_TX_CAUSE_REG_0 = 0x5480
	MVPP2_ISR_RX_TX_MASK_REG_0  = 0x54a0
)

// AggrTxQueue : the control block of a TX ring not bound to a port. One per thread.
type AggrTxQueue struct {
	ID             int    `json:"id"`
	Size           int    `json:"size"`
	LastDesc       int    `json:"lastDesc"`
	NextDescToProc uint32 `json:"nextDescToProc"`
}

// BMPool : the control block of one buffer manager pool
type BMPool struct {
	ID        BMPoolID `json:"id"`
	PktSize   int      `json:"pktSize"`
	BufNum    int      `json:"bufNum"`
	SizeBytes int      `json:"sizeBytes"`
}

// PrsShadow : software copy of a parser TCAM/SRAM entry
type PrsShadow struct {
	Valid  bool
	Finish bool
	Lu     int
	Udf    int
	Ri     uint32
	RiMask uint32
}
