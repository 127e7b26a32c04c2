// Package usb implements the driver package's bus capability on top of
// gousb/libusb.
package usb

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/gousb"

	"github.com/openbench/go-fx3kit/driver"
)

// controlTimeout bounds every control transfer, firmware chunks included.
const controlTimeout = 100 * time.Millisecond

// usbConfiguration is the configuration selected when claiming.
const usbConfiguration = 1

// Bus adapts a gousb context to driver.Bus.
type Bus struct {
	ctx *gousb.Context
}

// NewBus creates a Bus backed by a fresh libusb context.
func NewBus() *Bus {
	return &Bus{ctx: gousb.NewContext()}
}

// Close releases the libusb context. All handles must be closed first.
func (b *Bus) Close() error {
	return b.ctx.Close()
}

// Devices enumerates all attached devices without opening any of them.
func (b *Bus) Devices() ([]driver.DeviceRef, error) {
	var refs []driver.DeviceRef
	// The visitor always declines, so OpenDevices only walks descriptors.
	_, err := b.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		refs = append(refs, &deviceRef{bus: b, desc: *desc})
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	return refs, nil
}

type deviceRef struct {
	bus  *Bus
	desc gousb.DeviceDesc
}

func (r *deviceRef) Desc() driver.Desc {
	return driver.Desc{
		Vendor:  uint16(r.desc.Vendor),
		Product: uint16(r.desc.Product),
		Bus:     uint8(r.desc.Bus),
		Address: uint8(r.desc.Address),
		Port:    portPath(&r.desc),
	}
}

// portPath renders the physical topology as "bus.port.port...", the identity
// that survives renumeration.
func portPath(desc *gousb.DeviceDesc) string {
	parts := make([]string, 0, len(desc.Path)+1)
	parts = append(parts, strconv.Itoa(desc.Bus))
	for _, p := range desc.Path {
		parts = append(parts, strconv.Itoa(p))
	}
	return strings.Join(parts, ".")
}

// Open re-resolves the device by bus/address and opens it. Kernel drivers
// are detached automatically, as a blank device may have usbtest or similar
// bound to it.
func (r *deviceRef) Open() (driver.Handle, error) {
	devs, err := r.bus.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Bus == r.desc.Bus && desc.Address == r.desc.Address
	})
	if err != nil && len(devs) == 0 {
		return nil, fmt.Errorf("open device %d.%d: %w", r.desc.Bus, r.desc.Address, err)
	}
	if len(devs) == 0 {
		return nil, fmt.Errorf("device %d.%d no longer present", r.desc.Bus, r.desc.Address)
	}
	for _, extra := range devs[1:] {
		extra.Close()
	}

	dev := devs[0]
	dev.ControlTimeout = controlTimeout
	if err := dev.SetAutoDetach(true); err != nil {
		glog.V(1).Infof("auto-detach not supported for %d.%d: %v", r.desc.Bus, r.desc.Address, err)
	}

	return &handle{dev: dev}, nil
}

type handle struct {
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
}

func (h *handle) Manufacturer() (string, error) { return h.dev.Manufacturer() }
func (h *handle) Product() (string, error)      { return h.dev.Product() }
func (h *handle) SerialNumber() (string, error) { return h.dev.SerialNumber() }

func (h *handle) Control(rType, request uint8, val, idx uint16, data []byte) (int, error) {
	return h.dev.Control(rType, request, val, idx, data)
}

// ClaimInterface selects configuration 1 and claims the interface. gousb
// errors are mapped onto the driver's sentinel errors so callers can
// classify busy vs. disconnected.
func (h *handle) ClaimInterface(number int) error {
	cfg, err := h.dev.Config(usbConfiguration)
	if err != nil {
		return fmt.Errorf("set configuration %d: %w", usbConfiguration, mapUSBError(err))
	}
	intf, err := cfg.Interface(number, 0)
	if err != nil {
		cfg.Close()
		return fmt.Errorf("claim interface %d: %w", number, mapUSBError(err))
	}
	h.cfg = cfg
	h.intf = intf
	return nil
}

func (h *handle) ReleaseInterface(number int) error {
	if h.intf == nil {
		return fmt.Errorf("interface %d is not claimed", number)
	}
	h.intf.Close()
	h.intf = nil
	err := h.cfg.Close()
	h.cfg = nil
	return err
}

func (h *handle) Close() error {
	if h.intf != nil {
		h.intf.Close()
		h.intf = nil
	}
	if h.cfg != nil {
		h.cfg.Close()
		h.cfg = nil
	}
	return h.dev.Close()
}

func mapUSBError(err error) error {
	switch {
	case errors.Is(err, gousb.ErrorBusy):
		return driver.ErrInterfaceBusy
	case errors.Is(err, gousb.ErrorNoDevice):
		return driver.ErrDeviceGone
	default:
		return err
	}
}
