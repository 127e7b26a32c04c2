package driver

import (
	"fmt"
	"strconv"
	"strings"
)

// Desc is the part of a USB device descriptor the driver needs, plus the
// device's bus topology.
type Desc struct {
	// Vendor and Product are the USB VID/PID
	Vendor  uint16
	Product uint16

	// Bus and Address are the current bus number and device address.
	// The address changes when the device renumerates.
	Bus     uint8
	Address uint8

	// Port is the physical port path ("bus.port.port..."). Unlike the
	// address it survives renumeration, so it is the identity the driver
	// uses to re-find a device.
	Port string
}

// Bus enumerates currently attached USB devices. Implemented by the usb
// package over gousb and by fakes in tests.
type Bus interface {
	Devices() ([]DeviceRef, error)
}

// DeviceRef is a reference to an attached device that can be opened.
type DeviceRef interface {
	Desc() Desc
	Open() (Handle, error)
}

// Handle is an open device. Claim errors must wrap ErrInterfaceBusy or
// ErrDeviceGone where the transport can tell those conditions apart.
type Handle interface {
	Manufacturer() (string, error)
	Product() (string, error)
	SerialNumber() (string, error)
	Control(rType, request uint8, val, idx uint16, data []byte) (int, error)
	ClaimInterface(number int) error
	ReleaseInterface(number int) error
	Close() error
}

// connSpec is a parsed "bus.address" connection filter.
type connSpec struct {
	bus     uint8
	address uint8
}

func (s *connSpec) matches(desc Desc) bool {
	return desc.Bus == s.bus && desc.Address == s.address
}

// parseConnSpec parses an optional connection filter of the form
// "bus.address" (decimal). An empty string means no filter.
func parseConnSpec(conn string) (*connSpec, error) {
	if conn == "" {
		return nil, nil
	}
	parts := strings.Split(conn, ".")
	if len(parts) != 2 {
		return nil, &ArgumentError{Key: KeyConn, Value: conn, Reason: "want bus.address"}
	}
	bus, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return nil, &ArgumentError{Key: KeyConn, Value: conn, Reason: fmt.Sprintf("bad bus number: %v", err)}
	}
	address, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return nil, &ArgumentError{Key: KeyConn, Value: conn, Reason: fmt.Sprintf("bad address: %v", err)}
	}
	return &connSpec{bus: uint8(bus), address: uint8(address)}, nil
}
