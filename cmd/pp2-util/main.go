// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Seagate/pp2-lib/pkg/pp2"

	"github.com/jaypipes/pcidb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"
)

var Version = "1.0.0"

// This variable is filled in during the linker step - -ldflags "-X main.buildTime=`date -u '+%Y-%m-%dT%H:%M:%S'`"
var buildTime = ""

var helptxt = `
pp2-util is a command line tool to bring up a Marvell PPv2.2 packet processor from userspace and display its state.

Usage:
./pp2-util [--version] [--help] [--board=FILE] [--iomem] [--threads=N] [--info] [--fifo] [--pools] [--attach] [--metrics=ADDR] [--verbosity=0]

Which:
	version       : Print the version of this application and exit
	help          : Print the help text and exit
	board=FILE    : Load the board profile from a YAML file instead of the built-in MACCHIATObin profile
	iomem         : Take the register regions of the board device from /proc/iomem
	threads=N     : Number of register windows to set up, 0 counts the CPUs this process may run on
	info          : Print the board profile and the controller vendor to stdout
	fifo          : Print the per port FIFO partition to stdout
	pools         : Print the buffer manager pool classes to stdout
	attach        : Attach the controller through /dev/mem, print its state and detach. Needs root
	metrics=ADDR  : With --attach, serve metrics on ADDR and stay attached until interrupted
	verbosity     : Set the log level verbosity, where 0 is no longing and 4 is very verbose
`

const (
	DefaultVerbosity = "0" // Default log level
)

type Settings struct {
	Version   bool   // Print the version of this application and exit if true
	Verbosity string // The log level verbosity, where 0 is no longing and 4 is very verbose
	Help      bool   // Print the help text and exit
	Board     string // Board profile file
	Iomem     bool   // Discover the register regions from /proc/iomem
	Threads   int    // Register windows to set up, 0 for the online CPU count
	Info      bool   // Print the board profile and vendor
	Fifo      bool   // Print the FIFO partition
	Pools     bool   // Print the pool classes
	Attach    bool   // Attach, print and detach the controller
	Metrics   string // Metrics listen address
}

// InitContext: initialize the configuration data using command line args
func (s *Settings) InitContext(args []string, ctx context.Context) (error, context.Context) {

	newContext := ctx

	flags := flag.NewFlagSet(args[0], flag.ExitOnError)

	var (
		version   = flags.Bool("version", false, "Display version and exit")
		verbosity = flags.String("verbosity", DefaultVerbosity, "Log level verbosity")
		help      = flags.Bool("help", false, "Print the help text")
		board     = flags.String("board", "", "Board profile YAML file")
		iomem     = flags.Bool("iomem", false, "Take the register regions from /proc/iomem")
		threads   = flags.Int("threads", 0, "Number of register windows, 0 for the online CPU count")
		info      = flags.Bool("info", false, "Print the board profile and the controller vendor")
		fifo      = flags.Bool("fifo", false, "Print the per port FIFO partition")
		pools     = flags.Bool("pools", false, "Print the buffer manager pool classes")
		attach    = flags.Bool("attach", false, "Attach the controller, print its state and detach")
		metrics   = flags.String("metrics", "", "Serve metrics on this address while attached")
	)

	err := flags.Parse(args[1:])
	if err != nil {
		return err, newContext
	}

	// Update the configuration object with the parsed values
	s.Version = *version
	s.Verbosity = *verbosity
	s.Help = *help
	s.Board = *board
	s.Iomem = *iomem
	s.Threads = *threads
	s.Info = *info
	s.Fifo = *fifo
	s.Pools = *pools
	s.Attach = *attach
	s.Metrics = *metrics

	if len(args) == 1 {
		s.Help = true
	}

	return nil, newContext
}

func PrintTableToStdout(table any, prefix, indent string) {
	s, _ := json.MarshalIndent(table, prefix, indent)
	fmt.Print(string(s), "\n")
}

// vendorName returns the PCI SIG name of the controller vendor.
func vendorName() string {
	db, err := pcidb.New()
	if err != nil {
		klog.V(2).InfoS("pp2-util: pci database unavailable", "err", err)
		return "Unkown Vendor"
	}
	vendor, ok := db.Vendors[pp2.MVPP2_VENDOR_ID]
	if !ok {
		return "Unkown Vendor"
	}
	return vendor.Name
}

func loadBoard(settings Settings) (pp2.BoardProfile, error) {
	board := pp2.DefaultBoardProfile()
	if settings.Board != "" {
		var err error
		if board, err = pp2.LoadBoardProfile(settings.Board); err != nil {
			return board, err
		}
	}
	if settings.Iomem {
		regions, err := pp2.FindIomemRegions(board.Device)
		if err != nil {
			return board, err
		}
		// The flush registers are not listed by the kernel, keep the profile ones.
		for i := range regions {
			if i < len(board.Regions) {
				regions[i].Flush = board.Regions[i].Flush
			}
		}
		board.Regions = regions
	}
	return board, nil
}

func attach(ctx context.Context, settings Settings, board pp2.BoardProfile) error {
	mem := pp2.NewMemType("pp2", 0)
	cfg := pp2.Config{Board: board, Mem: mem}
	if settings.Threads > 0 {
		cfg.Threads = pp2.FixedThreads(settings.Threads)
	}
	reg := prometheus.NewRegistry()
	cfg.Metrics = pp2.NewMetrics(reg, mem)

	drv, err := pp2.NewDriver(cfg)
	if err != nil {
		return err
	}
	dev := pp2.NewDevMemDevice(board)
	if err := drv.Attach(dev); err != nil {
		var ae *pp2.AttachError
		if errors.As(err, &ae) {
			fmt.Printf("Attach failed at step %s (errno %d)\n", ae.Step, pp2.Errno(err))
		}
		return err
	}
	defer drv.Detach(dev)

	c, _ := drv.Controller(dev.Name())
	fmt.Printf("\nController %s:\n", dev.Name())
	PrintTableToStdout(c.Info(), "   ", "   ")

	if settings.Metrics != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: settings.Metrics, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				klog.ErrorS(err, "pp2-util: metrics server")
			}
		}()
		fmt.Printf("\nServing metrics on %s, interrupt to detach\n", settings.Metrics)
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}
	return nil
}

func main() {

	// Extract settings and initialize context using command line args
	settings := Settings{}
	ctx := context.Background()
	var err error
	err, ctx = settings.InitContext(os.Args, ctx)

	if err != nil {
		fmt.Printf("ERROR: parsing parameters, err=%v\n", err)
		os.Exit(1)
	}

	// Set verbosity level according to the 'verbosity' flag
	var l klog.Level
	l.Set(settings.Verbosity)

	// pp2-util banner
	args := strings.Join(os.Args[1:], " ")
	klog.V(1).InfoS("pp2-util", "args", args)
	klog.V(2).InfoS("pp2-util", "settings", settings)

	if settings.Version {
		fmt.Println("[] pp2-util", "version", Version, "build", buildTime)
		os.Exit(0)
	}

	if settings.Help {
		fmt.Print(helptxt)
		os.Exit(0)
	}

	board, err := loadBoard(settings)
	if err != nil {
		fmt.Printf("ERROR: board profile, err=%v\n", err)
		os.Exit(1)
	}

	if settings.Info {
		fmt.Printf("\nBoard profile:\n")
		PrintTableToStdout(board, "   ", "   ")
		fmt.Printf("\nController: %s (%s), vendor %s\n", board.HwVersion, pp2.MVPP2_ACPI_HID, vendorName())
	}

	if settings.Fifo {
		prFmt := "%6s | %10s | %10s | %10s | %12s \n"
		fmt.Printf("\nFIFO partition of the %d ports:\n", pp2.MVPP2_MAX_PORTS)
		fmt.Printf(prFmt, "Port", "RX data", "RX attr", "TX data", "TX thresh")
		for port := 0; port < pp2.MVPP2_MAX_PORTS; port++ {
			p := pp2.FifoPartitionFor(port)
			fmt.Printf(prFmt, fmt.Sprint(port), fmt.Sprintf("0x%X", p.RxData), fmt.Sprintf("0x%X", p.RxAttr), fmt.Sprintf("%dKB", p.TxData), fmt.Sprint(p.TxThresh))
		}
	}

	if settings.Pools {
		prFmt := "%6s | %10s | %10s \n"
		tbl := pp2.DefaultBMPoolTable()
		fmt.Printf("\nBuffer manager pool classes:\n")
		fmt.Printf(prFmt, "Pool", "Pkt size", "Buffers")
		for id := pp2.BMPoolID(0); id < pp2.MVPP2_BM_POOLS_NUM; id++ {
			pktSize, bufNum, _ := tbl.Lookup(id)
			fmt.Printf(prFmt, id.String(), fmt.Sprint(pktSize), fmt.Sprint(bufNum))
		}
	}

	if settings.Attach {
		if settings.Metrics != "" {
			var stop context.CancelFunc
			ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
		}
		if err := attach(ctx, settings, board); err != nil {
			fmt.Printf("ERROR: attach, err=%v\n", err)
			os.Exit(1)
		}
	}
}
