package driver

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Shared test doubles for the driver package.

// fakeClock advances instantly on Sleep and records every sleep.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

// fakeTransfer records one control transfer.
type fakeTransfer struct {
	rType   uint8
	request uint8
	val     uint16
	idx     uint16
	data    []byte
}

// fakeHandle is an open device handle backed by canned strings.
type fakeHandle struct {
	manufacturer string
	product      string
	serial       string

	manufacturerErr error
	productErr      error
	serialErr       error

	controlErr error
	claimErr   error

	transfers []fakeTransfer
	claims    []int
	releases  []int
	closes    int
}

func (h *fakeHandle) Manufacturer() (string, error) {
	return h.manufacturer, h.manufacturerErr
}

func (h *fakeHandle) Product() (string, error) {
	return h.product, h.productErr
}

func (h *fakeHandle) SerialNumber() (string, error) {
	return h.serial, h.serialErr
}

func (h *fakeHandle) Control(rType, request uint8, val, idx uint16, data []byte) (int, error) {
	if h.controlErr != nil {
		return 0, h.controlErr
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	h.transfers = append(h.transfers, fakeTransfer{rType, request, val, idx, buf})
	return len(data), nil
}

func (h *fakeHandle) ClaimInterface(number int) error {
	if h.claimErr != nil {
		return h.claimErr
	}
	h.claims = append(h.claims, number)
	return nil
}

func (h *fakeHandle) ReleaseInterface(number int) error {
	h.releases = append(h.releases, number)
	return nil
}

func (h *fakeHandle) Close() error {
	h.closes++
	return nil
}

// fakeRef is an enumerated-but-not-open device.
type fakeRef struct {
	desc    Desc
	handle  *fakeHandle
	openErr error
	opens   int
}

func (r *fakeRef) Desc() Desc { return r.desc }

func (r *fakeRef) Open() (Handle, error) {
	r.opens++
	if r.openErr != nil {
		return nil, r.openErr
	}
	return r.handle, nil
}

// fakeBus serves a possibly call-dependent device list and records when each
// enumeration happened on the fake clock.
type fakeBus struct {
	devices  func(call int) []DeviceRef
	err      error
	clock    *fakeClock
	calls    int
	callTime []time.Time
}

func staticBus(refs ...DeviceRef) *fakeBus {
	return &fakeBus{devices: func(int) []DeviceRef { return refs }}
}

func (b *fakeBus) Devices() ([]DeviceRef, error) {
	b.calls++
	if b.clock != nil {
		b.callTime = append(b.callTime, b.clock.now)
	}
	if b.err != nil {
		return nil, b.err
	}
	return b.devices(b.calls), nil
}

// fakeLoader serves firmware images from a map.
type fakeLoader struct {
	files map[string][]byte
	err   error
}

func (l *fakeLoader) Firmware(name string, maxSize int64) ([]byte, error) {
	if l.err != nil {
		return nil, l.err
	}
	data, ok := l.files[name]
	if !ok {
		return nil, fmt.Errorf("firmware %q not found", name)
	}
	return data, nil
}

// fx3ImageBytes builds a minimal FX3 container: signature, one segment of
// payload at addr, trailing checksum word.
func fx3ImageBytes(addr uint32, payload []byte) []byte {
	buf := []byte{'C', 'Y', 0x00, 0xb0}
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(len(payload)/4))
	binary.LittleEndian.PutUint32(hdr[4:], addr)
	buf = append(buf, hdr[:]...)
	buf = append(buf, payload...)
	return append(buf, 0, 0, 0, 0)
}

// Descriptors and handles for the profiles used throughout the tests.

func fx3KitDesc(bus, address uint8) Desc {
	return Desc{
		Vendor:  0x04b4,
		Product: 0x00f3,
		Bus:     bus,
		Address: address,
		Port:    fmt.Sprintf("%d.4.1", bus),
	}
}

func flashedHandle(serial string) *fakeHandle {
	return &fakeHandle{manufacturer: "sigrok", product: "fx3lafw", serial: serial}
}

func blankHandle() *fakeHandle {
	return &fakeHandle{manufacturer: "Cypress", product: "WestBridge", serial: "0000"}
}

func testLoader() *fakeLoader {
	return &fakeLoader{files: map[string][]byte{
		"fx3lafw-cypress-fx3.fw":   fx3ImageBytes(0x100, []byte{1, 2, 3, 4, 5, 6, 7, 8}),
		"fx2lafw-saleae-logic.fw":  {0x02, 0x09, 0x01},
		"fx2lafw-cwav-usbeeax.fw":  {0x02, 0x09, 0x02},
		"fx2lafw-sigrok-fx2-8ch.fw": {0x02, 0x09, 0x03},
	}}
}

func newTestDriver(bus Bus, opts ...Option) (*Driver, *fakeClock) {
	clock := newFakeClock()
	if fb, ok := bus.(*fakeBus); ok {
		fb.clock = clock
	}
	opts = append([]Option{WithClock(clock)}, opts...)
	return New(bus, testLoader(), opts...), clock
}
