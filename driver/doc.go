// Package driver implements the device lifecycle of fx3kit logic analyzers:
// discovery, firmware installation, renumeration recovery, open/claim/close
// and the configuration plane.
//
// # Lifecycle
//
// A Scan enumerates attached USB devices, rejects implausible VID/PID pairs
// without opening them, reads string descriptors through a transient open,
// and matches the result against a static profile table. A device that
// already presents the firmware's USB identity is ready to open; a blank
// device gets the profile's firmware uploaded and is expected to drop off
// the bus and reappear under a new address.
//
// Open drives that reappearance: after a fixed settle delay it polls the bus
// for a device on the same physical port path, bounded by a configurable
// timeout, then claims the interface. The port path is the device's stable
// identity; the bus address changes across renumeration and the sentinel
// PendingAddress marks it unknown.
//
// # Usage
//
//	drv := driver.New(bus, loader,
//	    driver.WithLogger(logger),
//	    driver.WithRenumTimeout(5*time.Second),
//	)
//	devices, err := drv.Scan(ctx, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range devices {
//	    if err := d.Open(ctx); err != nil {
//	        log.Printf("%s: %v", d.Model, err)
//	        continue
//	    }
//	    defer d.Close()
//	}
//
// # Concurrency
//
// Everything is synchronous and blocking; the renumeration wait is a polling
// loop with sleeps, interruptible via context between sleeps only. The
// driver provides no internal locking: the host guarantees one lifecycle
// call in flight per device.
package driver
