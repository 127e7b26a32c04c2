package driver

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PendingAddress marks a device whose address is not yet known because it
// has not reappeared on the bus since its firmware upload.
const PendingAddress = 0xff

// Status is the lifecycle state of a logical device.
type Status int

const (
	// StatusInitializing: matched during scan, firmware state being resolved
	StatusInitializing Status = iota

	// StatusInactive: firmware present, device closed and ready to open
	StatusInactive

	// StatusActive: device open with the interface claimed
	StatusActive
)

func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusInactive:
		return "inactive"
	case StatusActive:
		return "active"
	default:
		return "unknown"
	}
}

// ChannelType distinguishes logic from analog channels.
type ChannelType int

const (
	ChannelLogic ChannelType = iota
	ChannelAnalog
)

// Channel is a single acquisition channel.
type Channel struct {
	Index   int
	Type    ChannelType
	Name    string
	Enabled bool
}

// ChannelGroup is a named group of channels. All logic channels share one
// "Logic" group; every analog channel gets a group of its own.
type ChannelGroup struct {
	Name     string
	Channels []*Channel
}

// Device is a logical device produced by a scan. It is not safe for
// concurrent use; the host serializes lifecycle calls per device.
type Device struct {
	// Display identity from the matched profile and the device itself
	Vendor       string
	Model        string
	ModelVersion string
	Serial       string

	// ConnectionID is the physical port path, stable across renumeration
	ConnectionID string

	// Status is the current lifecycle state
	Status Status

	// Groups is the channel layout derived from the profile capabilities
	Groups []*ChannelGroup

	drv     *Driver
	profile *Profile

	samplerates   []uint64
	curSamplerate uint64
	limitSamples  uint64
	captureRatio  uint64

	// fwUpdated is when firmware was installed this session; zero means
	// no upload occurred and no renumeration wait is due
	fwUpdated time.Time

	busNum  uint8
	address uint8
	handle  Handle
}

// Profile returns the matched profile.
func (d *Device) Profile() *Profile {
	return d.profile
}

// channelLayout derives the channel groups from profile capabilities.
func channelLayout(caps Caps) []*ChannelGroup {
	logic := &ChannelGroup{Name: "Logic"}
	for i := 0; i < caps.LogicChannels(); i++ {
		logic.Channels = append(logic.Channels, &Channel{
			Index:   i,
			Type:    ChannelLogic,
			Name:    fmt.Sprintf("D%d", i),
			Enabled: true,
		})
	}
	groups := []*ChannelGroup{logic}

	for i := 0; i < caps.AnalogChannels(); i++ {
		name := fmt.Sprintf("A%d", i)
		ch := &Channel{
			Index:   caps.LogicChannels() + i,
			Type:    ChannelAnalog,
			Name:    name,
			Enabled: true,
		}
		groups = append(groups, &ChannelGroup{Name: name, Channels: []*Channel{ch}})
	}
	return groups
}

// Open opens the device and claims its interface.
//
// If firmware was installed during the scan the device is expected to have
// vanished and to reappear under a new address: Open sleeps a fixed settle
// delay, then polls the bus for a device on the same port path until the
// configured renumeration timeout. Without a firmware upload a single open
// attempt is made and its failure is terminal.
//
// The context is only consulted between poll sleeps, never mid-transfer.
func (d *Device) Open(ctx context.Context) error {
	if d.handle != nil {
		return &InvariantError{Op: "open", Reason: "device already open"}
	}

	if !d.fwUpdated.IsZero() {
		if err := d.waitRenumerate(ctx); err != nil {
			return err
		}
	} else {
		d.drv.logInfo("firmware upload was not needed")
		if err := d.attach(); err != nil {
			return &OpenError{Err: err}
		}
	}

	if err := d.handle.ClaimInterface(d.drv.config.Interface); err != nil {
		switch {
		case errors.Is(err, ErrInterfaceBusy):
			d.drv.logError("unable to claim USB interface, another program or driver has already claimed it")
		case errors.Is(err, ErrDeviceGone):
			d.drv.logError("device has been disconnected")
		default:
			d.drv.logError("unable to claim interface", "error", err)
		}
		d.handle.Close()
		d.handle = nil
		return &ClaimError{Err: err}
	}

	d.Status = StatusActive

	if d.curSamplerate == 0 {
		// Samplerate has never been set; default to the slowest one.
		d.curSamplerate = d.samplerates[0]
	}

	return nil
}

// waitRenumerate drives the post-upload polling loop.
func (d *Device) waitRenumerate(ctx context.Context) error {
	clock := d.drv.config.Clock

	d.drv.logInfo("waiting for device to reset")
	clock.Sleep(renumSettleDelay)

	for {
		err := d.attach()
		if err == nil {
			d.drv.logInfo("device came back",
				"waited", clock.Now().Sub(d.fwUpdated).String())
			return nil
		}

		if cerr := ctx.Err(); cerr != nil {
			return fmt.Errorf("cancelled: %w", cerr)
		}
		clock.Sleep(renumPollInterval)

		elapsed := clock.Now().Sub(d.fwUpdated)
		d.drv.logDebug("waited for renumeration", "elapsed", elapsed.String())
		if elapsed >= d.drv.config.RenumTimeout {
			d.drv.logError("device failed to renumerate")
			return &RenumTimeoutError{Waited: elapsed, Last: err}
		}
	}
}

// attach re-resolves the device on the bus by port path, not by address,
// since the address changes across renumeration, and opens it.
func (d *Device) attach() error {
	refs, err := d.drv.bus.Devices()
	if err != nil {
		return fmt.Errorf("enumerate devices: %w", err)
	}

	for _, ref := range refs {
		desc := ref.Desc()
		if desc.Vendor != d.profile.VendorID || desc.Product != d.profile.ProductID {
			continue
		}
		if desc.Port != d.ConnectionID {
			continue
		}

		h, err := ref.Open()
		if err != nil {
			return fmt.Errorf("open device %d.%d: %w", desc.Bus, desc.Address, err)
		}
		d.handle = h
		d.busNum = desc.Bus
		d.address = desc.Address
		return nil
	}

	return fmt.Errorf("no device on port %s", d.ConnectionID)
}

// Close releases the claimed interface and closes the handle. Closing a
// device that is not open is a lifecycle bug upstream and reported loudly
// as *InvariantError, never silently ignored.
func (d *Device) Close() error {
	if d.handle == nil {
		return &InvariantError{Op: "close", Reason: "device is not open"}
	}

	d.drv.logInfo("closing device",
		"conn", fmt.Sprintf("%d.%d", d.busNum, d.address),
		"port", d.ConnectionID,
		"interface", d.drv.config.Interface,
	)

	if err := d.handle.ReleaseInterface(d.drv.config.Interface); err != nil {
		d.drv.logError("release interface", "error", err)
	}
	err := d.handle.Close()
	d.handle = nil
	d.Status = StatusInactive

	return err
}
