// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the API functions of the pp2 library: controller
// attach and detach.
package pp2

import (
	"errors"
	"fmt"
	"sync"

	"k8s.io/klog/v2"
)

const (
	DBG_LVL_DEFAULT     = iota //0
	DBG_LVL_BASIC              //1
	DBG_LVL_INFO               //2
	DBG_LVL_DETAIL             //3
	DBG_LVL_DEEP_DETAIL        //4
)

var (
	// A register region could not be mapped.
	ErrNoSuchResource = errors.New("no such resource")
	// More execution contexts than the hardware has register windows.
	ErrCapabilityExceeded = errors.New("thread count exceeds hardware capability")
	// No execution context was found.
	ErrInvalidThreadCount = errors.New("invalid thread count")
	// A control structure could not be allocated.
	ErrNoMemory = errors.New("out of memory")
	// Parser or classifier default initialization failed.
	ErrCollaborator = errors.New("collaborator initialization failed")
	// The pool size class table cannot change while pools are allocated.
	ErrPoolsInService = errors.New("buffer manager pools in service")
	ErrNotAttached    = errors.New("controller not attached")
	ErrAttached       = errors.New("controller already attached")
	ErrNotImplemented = errors.New("not implemented")
)

// Step : one step of the attach sequence
type Step int

const (
	StepMapBase Step = iota + 1
	StepMapIface
	StepBoard
	StepPoolTable
	StepThreads
	StepCoherency
	StepPhyPolling
	StepAggrTxqs
	StepFifo
	StepTxSnoop
	StepBMPools
	StepParser
	StepClassifier
)

func (s Step) String() string {
	switch s {
	case StepMapBase:
		return "map-base"
	case StepMapIface:
		return "map-iface"
	case StepBoard:
		return "board"
	case StepPoolTable:
		return "pool-table"
	case StepThreads:
		return "threads"
	case StepCoherency:
		return "coherency"
	case StepPhyPolling:
		return "phy-polling"
	case StepAggrTxqs:
		return "aggr-txqs"
	case StepFifo:
		return "fifo"
	case StepTxSnoop:
		return "tx-snoop"
	case StepBMPools:
		return "bm-pools"
	case StepParser:
		return "parser"
	case StepClassifier:
		return "classifier"
	}
	return "unknown"
}

// AttachError : the step attach stopped at and why
type AttachError struct {
	Step Step
	Err  error
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("pp2 attach: %s: %v", e.Step, e.Err)
}

func (e *AttachError) Unwrap() error {
	return e.Err
}

// State : the attach progress of a controller
type State string

const (
	Unattached         State = "unattached"
	ResourcesMapped    State = "resources-mapped"
	HardwareConfigured State = "hardware-configured"
	Ready              State = "ready"
)

// Controller : one packet processor instance. It owns the mapped regions and
// every control structure derived from them.
type Controller struct {
	cfg   Config
	mem   *MemType
	dev   Device
	state State

	base  owned[Region]
	iface owned[Region]

	hwVersion   HwVersion
	maxPortRxqs int
	tclk        uint32
	pools       BMPoolTable
	nthreads    int

	aggrTxqs       owned[[]AggrTxQueue]
	bmPools        owned[[]BMPool]
	prsShadow      owned[[]PrsShadow]
	prsDoubleVlans owned[[]bool]

	// serializes global register sequences run after attach
	globalMu sync.Mutex
}

// NewController returns an unattached controller.
func NewController(cfg Config) (*Controller, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &Controller{cfg: cfg, mem: cfg.Mem, state: Unattached}, nil
}

// resources lists every owned resource in release order.
func (c *Controller) resources() []releaser {
	return []releaser{
		&c.prsDoubleVlans,
		&c.prsShadow,
		&c.bmPools,
		&c.aggrTxqs,
		&c.base,
		&c.iface,
	}
}

// Held returns the number of resources the controller currently owns.
func (c *Controller) Held() int {
	n := 0
	for _, r := range c.resources() {
		if r.Held() {
			n++
		}
	}
	return n
}

func (c *Controller) State() State         { return c.state }
func (c *Controller) NumThreads() int      { return c.nthreads }
func (c *Controller) HwVersion() HwVersion { return c.hwVersion }
func (c *Controller) MaxPortRxqs() int     { return c.maxPortRxqs }
func (c *Controller) Tclk() uint32         { return c.tclk }

func (c *Controller) mapRegion(dev Device, index int, o *owned[Region]) error {
	r, err := dev.MapRegion(index)
	if err != nil {
		if !errors.Is(err, ErrNoSuchResource) {
			err = fmt.Errorf("%w: region %d: %v", ErrNoSuchResource, index, err)
		}
		return err
	}
	if r == nil {
		return fmt.Errorf("%w: region %d", ErrNoSuchResource, index)
	}
	o.hold(r, func(r Region) {
		if err := r.Close(); err != nil {
			klog.ErrorS(err, "pp2: region release", "device", dev.Name(), "region", index)
		}
	})
	return nil
}

// Attach brings the controller from reset to the state the datapath expects.
// It is all or nothing: on error every resource acquired so far has been
// released and the controller is Unattached again.
func (c *Controller) Attach(dev Device) (err error) {
	if c.state != Unattached {
		return ErrAttached
	}
	c.dev = dev
	step := StepMapBase
	defer func() {
		if p := recover(); p != nil {
			klog.ErrorS(nil, "pp2: attach panicked, releasing resources", "device", dev.Name(), "step", step.String(), "panic", p)
			c.release()
			c.cfg.Metrics.observeAttach(step, fmt.Errorf("panic: %v", p))
			panic(p)
		}
		if err != nil {
			err = &AttachError{Step: step, Err: err}
			klog.ErrorS(err, "pp2: attach failed, releasing resources", "device", dev.Name(), "step", step.String())
			c.release()
		}
		c.cfg.Metrics.observeAttach(step, err)
	}()

	klog.V(DBG_LVL_BASIC).InfoS("pp2.Attach", "device", dev.Name(), "board", c.cfg.Board.Name)

	if err = c.mapRegion(dev, MVPP2_BASE_REGION, &c.base); err != nil {
		return err
	}

	step = StepMapIface
	if err = c.mapRegion(dev, MVPP2_IFACE_REGION, &c.iface); err != nil {
		return err
	}
	c.state = ResourcesMapped

	step = StepBoard
	c.hwVersion = c.cfg.Board.HwVersion
	c.maxPortRxqs = c.cfg.Board.MaxPortRxqs
	c.tclk = c.cfg.Board.Tclk

	step = StepPoolTable
	if err = c.SetPoolTable(c.cfg.Pools); err != nil {
		return err
	}

	step = StepThreads
	if c.nthreads, err = c.cfg.Threads.NumThreads(); err != nil {
		return fmt.Errorf("%w: thread count: %v", ErrNoSuchResource, err)
	}
	if c.nthreads <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidThreadCount, c.nthreads)
	}
	if c.nthreads > MVPP2_MAX_THREADS {
		return fmt.Errorf("%w: %d threads, hardware has %d register windows", ErrCapabilityExceeded, c.nthreads, MVPP2_MAX_THREADS)
	}
	klog.V(DBG_LVL_BASIC).InfoS("pp2.Attach", "threads", c.nthreads)

	if err = c.configureHardware(&step); err != nil {
		return err
	}
	c.state = HardwareConfigured

	step = StepParser
	if err = c.prsInit(); err != nil {
		return err
	}

	step = StepClassifier
	if err = c.clsInit(); err != nil {
		return err
	}

	c.state = Ready
	klog.V(DBG_LVL_BASIC).InfoS("pp2.Attach: controller ready", "device", dev.Name(), "aggrTxqs", len(c.AggrTxqs()), "bmPools", len(c.BMPools()))
	return nil
}

// configureHardware runs the steps that program registers shared by all
// controllers. step tracks the one in progress.
func (c *Controller) configureHardware(step *Step) error {
	c.globalMu.Lock()
	defer c.globalMu.Unlock()

	*step = StepCoherency
	c.axiInit()

	*step = StepPhyPolling
	c.disablePhyPolling()

	*step = StepAggrTxqs
	if err := c.aggrTxqsInit(); err != nil {
		return err
	}

	*step = StepFifo
	c.fifoInit()

	*step = StepTxSnoop
	// Allow cache snoop when transmitting packets
	c.Write(MVPP2_TX_SNOOP_REG, 0x1)

	*step = StepBMPools
	return c.bmInit()
}

// disablePhyPolling stops the hardware from polling the PHYs over SMI.
func (c *Controller) disablePhyPolling() {
	val := c.ifaceRead(MVPP22_SMI_MISC_CFG_REG)
	MVPP22_SMI_POLLING_EN.write(&val, 0)
	c.ifaceWrite(MVPP22_SMI_MISC_CFG_REG, val)
}

// AttachPorts is where port bring-up will hook in once the controller is Ready.
// TODO: discover the GOP ports, program the per-port RXQ/TXQ descriptor rings and
// the parser protocol entries.
func (c *Controller) AttachPorts() error {
	if c.state != Ready {
		return ErrNotAttached
	}
	return ErrNotImplemented
}

func (c *Controller) release() {
	for _, r := range c.resources() {
		r.Release()
	}
	c.nthreads = 0
	c.hwVersion = ""
	c.maxPortRxqs = 0
	c.tclk = 0
	c.state = Unattached
}

// Detach releases whatever the controller holds. It never fails and may be
// called any number of times, attached or not.
func (c *Controller) Detach() error {
	held := c.Held()
	c.release()
	name := ""
	if c.dev != nil {
		name = c.dev.Name()
	}
	c.dev = nil
	c.cfg.Metrics.observeDetach()
	klog.V(DBG_LVL_BASIC).InfoS("pp2.Detach", "device", name, "released", held)
	return nil
}

// ControllerInfo : a printable snapshot of a controller
type ControllerInfo struct {
	Device      string                         `json:"device"`
	State       State                          `json:"state"`
	HwVersion   HwVersion                      `json:"hwVersion"`
	MaxPortRxqs int                            `json:"maxPortRxqs"`
	Tclk        uint32                         `json:"tclk"`
	Threads     int                            `json:"threads"`
	AggrTxqs    []AggrTxQueue                  `json:"aggrTxqs"`
	BMPools     []BMPool                       `json:"bmPools"`
	Fifo        [MVPP2_MAX_PORTS]FifoPartition `json:"fifo"`
	MemInUse    uint64                         `json:"memInUse"`
}

func (c *Controller) Info() ControllerInfo {
	info := ControllerInfo{
		State:       c.state,
		HwVersion:   c.hwVersion,
		MaxPortRxqs: c.maxPortRxqs,
		Tclk:        c.tclk,
		Threads:     c.nthreads,
		AggrTxqs:    c.AggrTxqs(),
		BMPools:     c.BMPools(),
		MemInUse:    c.mem.InUse(),
	}
	if c.dev != nil {
		info.Device = c.dev.Name()
	}
	for port := range info.Fifo {
		info.Fifo[port] = FifoPartitionFor(port)
	}
	return info
}

// Wrapper function to shorten int to hex convertion call
func hex(a any) string {
	return fmt.Sprintf("%X", a)
}
