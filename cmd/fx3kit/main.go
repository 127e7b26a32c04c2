// Command fx3kit scans for fx3lafw-compatible logic analyzers, installs
// firmware on blank devices and optionally opens them.
//
// Usage:
//
//	fx3kit [-conn BUS.ADDR] [-fwdir DIR] [-renum-timeout D] [-open] [-v 1]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang/glog"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/openbench/go-fx3kit/driver"
	"github.com/openbench/go-fx3kit/ezusb"
	"github.com/openbench/go-fx3kit/firmware"
	"github.com/openbench/go-fx3kit/usb"
)

var (
	conn         = flag.String("conn", "", "only scan the device at BUS.ADDR")
	fwDir        = flag.String("fwdir", "", "extra directory to search for firmware images")
	renumTimeout = flag.Duration("renum-timeout", driver.DefaultRenumTimeout, "how long to wait for a device to renumerate")
	openDevices  = flag.Bool("open", false, "open every found device and report its samplerates")
)

// glogLogger forwards driver logging to glog. Debug output lands on the
// -v=1 verbosity level.
type glogLogger struct{}

func (glogLogger) Debug(msg string, keysAndValues ...interface{}) {
	if glog.V(1) {
		glog.InfoDepth(1, append([]interface{}{msg}, keysAndValues...)...)
	}
}

func (glogLogger) Info(msg string, keysAndValues ...interface{}) {
	glog.InfoDepth(1, append([]interface{}{msg}, keysAndValues...)...)
}

func (glogLogger) Error(msg string, keysAndValues ...interface{}) {
	glog.ErrorDepth(1, append([]interface{}{msg}, keysAndValues...)...)
}

// installBar renders firmware upload progress. A new bar is started for
// every image, sized once the first chunk reports the total.
type installBar struct {
	bar *pb.ProgressBar
}

func (b *installBar) update(p ezusb.Progress) {
	if b.bar == nil {
		b.bar = pb.New(p.TotalBytes).SetUnits(pb.U_BYTES)
		b.bar.Prefix("firmware")
		b.bar.ShowTimeLeft = false
		b.bar.Start()
	}
	b.bar.Set(p.BytesWritten)
	if p.BytesWritten >= p.TotalBytes {
		b.bar.Finish()
		b.bar = nil
	}
}

func run(ctx context.Context) error {
	bus := usb.NewBus()
	defer bus.Close()

	var dirs []string
	if *fwDir != "" {
		dirs = append(dirs, *fwDir)
	}
	loader := firmware.NewDirLoader(dirs...)

	bar := &installBar{}
	drv := driver.New(bus, loader,
		driver.WithLogger(glogLogger{}),
		driver.WithRenumTimeout(*renumTimeout),
		driver.WithInstallProgress(bar.update),
	)

	devices, err := drv.Scan(ctx, *conn)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if len(devices) == 0 {
		fmt.Println("no devices found")
		return nil
	}

	for _, dev := range devices {
		serial := dev.Serial
		if serial == "" {
			serial = "-"
		}
		fmt.Printf("%s: %s %s (serial %s, %d channel groups)\n",
			dev.ConnectionID, dev.Vendor, dev.Model, serial, len(dev.Groups))

		if !*openDevices {
			continue
		}
		if err := dev.Open(ctx); err != nil {
			glog.Errorf("open %s: %v", dev.ConnectionID, err)
			continue
		}
		rates, err := dev.List(driver.KeySamplerate)
		if err == nil {
			fmt.Printf("  samplerates: %d supported\n", len(rates.([]uint64)))
		}
		if connID, err := dev.Get(driver.KeyConn); err == nil {
			fmt.Printf("  connected at %v\n", connID)
		}
		if err := dev.Close(); err != nil {
			glog.Errorf("close %s: %v", dev.ConnectionID, err)
		}
	}
	return nil
}

func main() {
	flag.Parse()
	defer glog.Flush()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx); err != nil {
		glog.Errorf("%v", err)
		os.Exit(1)
	}
}
