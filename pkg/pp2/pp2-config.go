// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the board profile and controller configuration
package pp2

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ghodss/yaml"
	"k8s.io/klog/v2"
)

// RegionSpec : physical location of one register region
type RegionSpec struct {
	Base  int64  `json:"base"`
	Size  int    `json:"size"`
	Flush uint32 `json:"flush,omitempty"` // offset read back to drain ordered writes
}

// checkFlush verifies the flush register is a register of the region.
func (r RegionSpec) checkFlush() error {
	if r.Flush%4 != 0 || int64(r.Flush)+4 > int64(r.Size) {
		return fmt.Errorf("flush register 0x%x outside region of 0x%x bytes", r.Flush, r.Size)
	}
	return nil
}

// BoardProfile : the per board constants fixed at attach time
type BoardProfile struct {
	Name        string       `json:"name"`
	HwVersion   HwVersion    `json:"hwVersion"`
	MaxPortRxqs int          `json:"maxPortRxqs"`
	Tclk        uint32       `json:"tclk"`
	Device      string       `json:"device,omitempty"` // name in /proc/iomem
	Regions     []RegionSpec `json:"regions,omitempty"`
}

// DefaultBoardProfile returns the profile of the MACCHIATObin (Armada 8040, CP0).
func DefaultBoardProfile() BoardProfile {
	return BoardProfile{
		Name:        "macchiatobin",
		HwVersion:   MVPP22,
		MaxPortRxqs: 32,
		Tclk:        333333333,
		Device:      "f2000000.ethernet",
		Regions: []RegionSpec{
			{Base: 0xf2000000, Size: 0x100000, Flush: MVPP2_VER_ID_REG},
			{Base: 0xf2129000, Size: 0xb000, Flush: MVPP22_SMI_MISC_CFG_REG},
		},
	}
}

func (b *BoardProfile) validate() error {
	if b.HwVersion != MVPP22 {
		return fmt.Errorf("board %q: unsupported hardware version %q, only %s is supported", b.Name, b.HwVersion, MVPP22)
	}
	if b.MaxPortRxqs <= 0 {
		return fmt.Errorf("board %q: invalid maxPortRxqs %d", b.Name, b.MaxPortRxqs)
	}
	if b.Tclk == 0 {
		return fmt.Errorf("board %q: tclk is not set", b.Name)
	}
	for i, r := range b.Regions {
		if r.Size <= 0 || r.Size%4 != 0 {
			return fmt.Errorf("board %q: region %d: invalid size 0x%x", b.Name, i, r.Size)
		}
		if err := r.checkFlush(); err != nil {
			return fmt.Errorf("board %q: region %d: %v", b.Name, i, err)
		}
	}
	return nil
}

// LoadBoardProfile reads a YAML board profile. Fields not present keep the
// values of DefaultBoardProfile.
func LoadBoardProfile(path string) (BoardProfile, error) {
	b := DefaultBoardProfile()
	data, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	if err := yaml.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("board profile %s: %w", path, err)
	}
	if err := b.validate(); err != nil {
		return b, err
	}
	klog.V(DBG_LVL_INFO).InfoS("pp2.LoadBoardProfile", "path", path, "profile", b)
	return b, nil
}

// FindIomemRegions returns the register regions the kernel lists for a device
// name in /proc/iomem, in listing order.
func FindIomemRegions(device string) ([]RegionSpec, error) {
	f, err := os.Open("/proc/iomem")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseIomem(f, device)
}

// parseIomem scans lines such as "  f2000000-f20fffff : f2000000.ethernet"
func parseIomem(r io.Reader, device string) ([]RegionSpec, error) {
	var regions []RegionSpec
	fileScanner := bufio.NewScanner(r)
	fileScanner.Split(bufio.ScanLines)
	for fileScanner.Scan() {
		rng, name, cut := strings.Cut(fileScanner.Text(), " : ")
		if !cut || strings.TrimSpace(name) != device {
			continue
		}
		start, end, cut := strings.Cut(strings.TrimSpace(rng), "-")
		if !cut {
			continue
		}
		s, err := strconv.ParseUint(start, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("iomem: %q: %w", fileScanner.Text(), err)
		}
		e, err := strconv.ParseUint(end, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("iomem: %q: %w", fileScanner.Text(), err)
		}
		if e < s {
			return nil, fmt.Errorf("iomem: %q: end before start", fileScanner.Text())
		}
		regions = append(regions, RegionSpec{Base: int64(s), Size: int(e - s + 1)})
	}
	if err := fileScanner.Err(); err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("%w: %s not found in iomem", ErrNoSuchResource, device)
	}
	klog.V(DBG_LVL_INFO).InfoS("pp2.parseIomem", "device", device, "regions", regions)
	return regions, nil
}

// Config : everything a controller needs besides the device itself
type Config struct {
	Board      BoardProfile
	Pools      BMPoolTable   // zero value selects DefaultBMPoolTable
	Threads    ThreadCounter // nil selects OnlineCPUs
	Mem        *MemType      // nil selects an unlimited "pp2" domain
	Parser     Parser        // nil selects DefaultParser
	Classifier Classifier    // nil selects DefaultClassifier
	Metrics    *Metrics      // optional
}

func (cfg *Config) normalize() error {
	if cfg.Board.HwVersion == "" {
		cfg.Board = DefaultBoardProfile()
	}
	if err := cfg.Board.validate(); err != nil {
		return err
	}
	if cfg.Pools == (BMPoolTable{}) {
		cfg.Pools = DefaultBMPoolTable()
	}
	if cfg.Threads == nil {
		cfg.Threads = OnlineCPUs{}
	}
	if cfg.Mem == nil && cfg.Metrics != nil {
		cfg.Mem = cfg.Metrics.Mem
	}
	if cfg.Mem == nil {
		cfg.Mem = NewMemType("pp2", 0)
	}
	if cfg.Parser == nil {
		cfg.Parser = DefaultParser{}
	}
	if cfg.Classifier == nil {
		cfg.Classifier = DefaultClassifier{}
	}
	return nil
}
