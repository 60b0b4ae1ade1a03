// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the driver surface: device matching, per device attach and detach
package pp2

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"syscall"

	"k8s.io/klog/v2"
)

// Driver : one controller per attached device, keyed by device name.
// All controllers share the driver's memory domain and metrics.
type Driver struct {
	cfg   Config
	mu    sync.Mutex
	softc map[string]*Controller
}

func NewDriver(cfg Config) (*Driver, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &Driver{cfg: cfg, softc: make(map[string]*Controller)}, nil
}

// Match accepts the devices whose hardware ID is the PPv2.2 ACPI HID.
func (d *Driver) Match(dev Device) error {
	if dev.HardwareID() != MVPP2_ACPI_HID {
		return fmt.Errorf("%w: %s: hardware id %q", ErrNoSuchResource, dev.Name(), dev.HardwareID())
	}
	klog.V(DBG_LVL_INFO).InfoS("pp2.Match", "device", dev.Name(), "hid", dev.HardwareID())
	return nil
}

// Attach matches dev and brings up a controller for it.
func (d *Driver) Attach(dev Device) error {
	if err := d.Match(dev); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.softc[dev.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrAttached, dev.Name())
	}
	c, err := NewController(d.cfg)
	if err != nil {
		return err
	}
	if err := c.Attach(dev); err != nil {
		return err
	}
	d.softc[dev.Name()] = c
	return nil
}

// Detach releases the controller of dev. Detaching a device that is not
// attached is not an error.
func (d *Driver) Detach(dev Device) error {
	d.mu.Lock()
	c, ok := d.softc[dev.Name()]
	delete(d.softc, dev.Name())
	d.mu.Unlock()
	if !ok {
		return nil
	}
	return c.Detach()
}

// Controller returns the controller attached for a device name.
func (d *Driver) Controller(name string) (*Controller, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.softc[name]
	return c, ok
}

// Devices returns the names of the attached devices, sorted.
func (d *Driver) Devices() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.softc))
	for name := range d.softc {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Errno maps an attach or detach error onto the errno a module lifecycle
// hook would return.
func Errno(err error) syscall.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrNoMemory):
		return syscall.ENOMEM
	case errors.Is(err, ErrNoSuchResource),
		errors.Is(err, ErrCapabilityExceeded),
		errors.Is(err, ErrInvalidThreadCount):
		return syscall.ENXIO
	case errors.Is(err, ErrAttached), errors.Is(err, ErrPoolsInService):
		return syscall.EBUSY
	case errors.Is(err, ErrNotImplemented):
		return syscall.ENOSYS
	}
	return syscall.EIO
}
