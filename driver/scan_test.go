package driver

import (
	"context"
	"errors"
	"testing"
)

func TestScanFlashedDevice(t *testing.T) {
	ref := &fakeRef{desc: fx3KitDesc(2, 5), handle: flashedHandle("SN001")}
	dr, _ := newTestDriver(staticBus(ref))

	devices, err := dr.Scan(context.Background(), "")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("got %d devices, want 1", len(devices))
	}

	d := devices[0]
	if d.Status != StatusInactive {
		t.Errorf("Status = %v, want %v", d.Status, StatusInactive)
	}
	if d.Vendor != "Cypress" || d.Model != "SuperSpeed Explorer Kit" {
		t.Errorf("identity = %s %s, want profile names", d.Vendor, d.Model)
	}
	if d.Serial != "SN001" {
		t.Errorf("Serial = %q, want %q", d.Serial, "SN001")
	}
	if d.ConnectionID != "2.4.1" {
		t.Errorf("ConnectionID = %q, want %q", d.ConnectionID, "2.4.1")
	}
	if !d.fwUpdated.IsZero() {
		t.Error("fwUpdated set for an already-flashed device")
	}

	conn, err := d.Get(KeyConn)
	if err != nil {
		t.Fatalf("Get(KeyConn) error = %v", err)
	}
	if conn != "2.5" {
		t.Errorf("Get(KeyConn) = %v, want 2.5", conn)
	}

	// The transient string-descriptor handle must be closed again.
	if ref.opens != 1 || ref.handle.closes != 1 {
		t.Errorf("opens/closes = %d/%d, want 1/1", ref.opens, ref.handle.closes)
	}
	if len(ref.handle.transfers) != 0 {
		t.Errorf("flashed device got %d transfers, want none", len(ref.handle.transfers))
	}
}

func TestScanChannelLayout(t *testing.T) {
	ref := &fakeRef{desc: fx3KitDesc(1, 2), handle: flashedHandle("S")}
	dr, _ := newTestDriver(staticBus(ref))

	devices, err := dr.Scan(context.Background(), "")
	if err != nil || len(devices) != 1 {
		t.Fatalf("Scan() = %v devices, error %v", len(devices), err)
	}

	groups := devices[0].Groups
	if len(groups) != 1 {
		t.Fatalf("got %d channel groups, want 1", len(groups))
	}
	if groups[0].Name != "Logic" {
		t.Errorf("group name = %q, want Logic", groups[0].Name)
	}
	if len(groups[0].Channels) != 32 {
		t.Errorf("got %d logic channels, want 32", len(groups[0].Channels))
	}
	if groups[0].Channels[31].Name != "D31" {
		t.Errorf("last channel = %q, want D31", groups[0].Channels[31].Name)
	}
}

func TestScanAnalogChannelGroups(t *testing.T) {
	// USBee AX: 8 logic channels plus one analog channel in its own group.
	ref := &fakeRef{
		desc:   Desc{Vendor: 0x08a9, Product: 0x0014, Bus: 1, Address: 3, Port: "1.2"},
		handle: flashedHandle("AX"),
	}
	dr, _ := newTestDriver(staticBus(ref))

	devices, err := dr.Scan(context.Background(), "")
	if err != nil || len(devices) != 1 {
		t.Fatalf("Scan() = %v devices, error %v", len(devices), err)
	}

	groups := devices[0].Groups
	if len(groups) != 2 {
		t.Fatalf("got %d channel groups, want 2", len(groups))
	}
	if len(groups[0].Channels) != 8 {
		t.Errorf("got %d logic channels, want 8", len(groups[0].Channels))
	}
	analog := groups[1]
	if analog.Name != "A0" || len(analog.Channels) != 1 {
		t.Fatalf("analog group = %q with %d channels, want A0 with 1", analog.Name, len(analog.Channels))
	}
	if analog.Channels[0].Type != ChannelAnalog || analog.Channels[0].Index != 8 {
		t.Errorf("analog channel = %+v, want analog type at index 8", analog.Channels[0])
	}
}

func TestScanUploadsFirmwareToBlankDevice(t *testing.T) {
	ref := &fakeRef{desc: fx3KitDesc(1, 7), handle: blankHandle()}
	dr, clock := newTestDriver(staticBus(ref))

	devices, err := dr.Scan(context.Background(), "")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("got %d devices, want 1", len(devices))
	}

	d := devices[0]
	if d.Status != StatusInitializing {
		t.Errorf("Status = %v, want %v", d.Status, StatusInitializing)
	}
	if d.fwUpdated != clock.now {
		t.Errorf("fwUpdated = %v, want scan time %v", d.fwUpdated, clock.now)
	}
	if d.address != PendingAddress {
		t.Errorf("address = %d, want the PendingAddress sentinel", d.address)
	}
	if _, err := d.Get(KeyConn); !errors.Is(err, ErrPendingRenumeration) {
		t.Errorf("Get(KeyConn) error = %v, want ErrPendingRenumeration", err)
	}

	// One transient open for strings, one for the upload; both closed.
	if ref.opens != 2 || ref.handle.closes != 2 {
		t.Errorf("opens/closes = %d/%d, want 2/2", ref.opens, ref.handle.closes)
	}

	// The FX3 test image holds one 8-byte segment at 0x100.
	if len(ref.handle.transfers) != 1 {
		t.Fatalf("got %d transfers, want 1", len(ref.handle.transfers))
	}
	tr := ref.handle.transfers[0]
	if tr.request != 0xa0 || tr.val != 0x0100 || tr.idx != 0 || len(tr.data) != 8 {
		t.Errorf("upload transfer = %+v, want A0 write of 8 bytes at 0x100", tr)
	}
}

func TestScanSkipsImplausibleWithoutOpening(t *testing.T) {
	stranger := &fakeRef{
		desc:   Desc{Vendor: 0x1234, Product: 0x5678, Bus: 1, Address: 2, Port: "1.1"},
		handle: flashedHandle("X"),
	}
	dr, _ := newTestDriver(staticBus(stranger))

	devices, err := dr.Scan(context.Background(), "")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(devices) != 0 {
		t.Errorf("got %d devices, want 0", len(devices))
	}
	if stranger.opens != 0 {
		t.Errorf("implausible device was opened %d times", stranger.opens)
	}
}

func TestScanStringFailureSkipsDeviceOnly(t *testing.T) {
	broken := &fakeRef{desc: fx3KitDesc(1, 2), handle: flashedHandle("A")}
	broken.handle.productErr = errors.New("pipe error")
	good := &fakeRef{desc: fx3KitDesc(1, 3), handle: flashedHandle("B")}

	dr, _ := newTestDriver(staticBus(broken, good))

	devices, err := dr.Scan(context.Background(), "")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(devices) != 1 || devices[0].Serial != "B" {
		t.Fatalf("got %d devices, want only the healthy one", len(devices))
	}
	// The handle of the skipped device must still be freed.
	if broken.handle.closes != 1 {
		t.Errorf("skipped device handle closes = %d, want 1", broken.handle.closes)
	}
}

func TestScanConnFilter(t *testing.T) {
	first := &fakeRef{desc: fx3KitDesc(1, 4), handle: flashedHandle("A")}
	second := &fakeRef{desc: fx3KitDesc(1, 9), handle: flashedHandle("B")}
	dr, _ := newTestDriver(staticBus(first, second))

	devices, err := dr.Scan(context.Background(), "1.9")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(devices) != 1 || devices[0].Serial != "B" {
		t.Fatalf("conn filter matched %d devices, want only 1.9", len(devices))
	}
	if first.opens != 0 {
		t.Error("filtered-out device was opened")
	}
}

func TestScanConnFilterMalformed(t *testing.T) {
	dr, _ := newTestDriver(staticBus())

	for _, conn := range []string{"nonsense", "1.2.3", "1.bad", "999.1"} {
		if _, err := dr.Scan(context.Background(), conn); err == nil {
			t.Errorf("Scan(%q) succeeded, want error", conn)
		}
	}
}

func TestScanInstallFailureKeepsDegradedDevice(t *testing.T) {
	// The upload fails, but the device must still be surfaced so one bad
	// device cannot hide others; it stays pending with no fwUpdated.
	broken := &fakeRef{desc: fx3KitDesc(1, 2), handle: blankHandle()}
	broken.handle.controlErr = errors.New("stall")
	good := &fakeRef{desc: fx3KitDesc(1, 3), handle: flashedHandle("OK")}

	dr, _ := newTestDriver(staticBus(broken, good))

	devices, err := dr.Scan(context.Background(), "")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}

	degraded := devices[0]
	if !degraded.fwUpdated.IsZero() {
		t.Error("fwUpdated set although the upload failed")
	}
	if degraded.address != PendingAddress {
		t.Errorf("address = %d, want the PendingAddress sentinel", degraded.address)
	}
}

func TestScanMissingFirmwareFile(t *testing.T) {
	ref := &fakeRef{desc: fx3KitDesc(1, 2), handle: blankHandle()}
	clock := newFakeClock()
	dr := New(staticBus(ref), &fakeLoader{files: map[string][]byte{}}, WithClock(clock))

	devices, err := dr.Scan(context.Background(), "")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("got %d devices, want 1 (degraded)", len(devices))
	}
	if !devices[0].fwUpdated.IsZero() {
		t.Error("fwUpdated set although no firmware was loaded")
	}
	// No upload handle should even have been opened.
	if ref.opens != 1 {
		t.Errorf("opens = %d, want 1 (strings only)", ref.opens)
	}
}

func TestScanProfileStringConstraints(t *testing.T) {
	profiles := []Profile{
		{
			VendorID: 0x16d0, ProductID: 0x0498,
			Vendor: "Braintechnology", Model: "USB-LPS",
			Firmware:        "fx2lafw-braintechnology-usb-lps.fw",
			Caps:            Cap16Bit,
			USBManufacturer: "braintechnology",
			USBProduct:      "usb-lps",
		},
	}
	desc := Desc{Vendor: 0x16d0, Product: 0x0498, Bus: 1, Address: 2, Port: "1.1"}

	t.Run("mismatching strings rejected", func(t *testing.T) {
		ref := &fakeRef{desc: desc, handle: flashedHandle("X")}
		dr, _ := newTestDriver(staticBus(ref), WithProfiles(profiles))

		devices, err := dr.Scan(context.Background(), "")
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if len(devices) != 0 {
			t.Errorf("got %d devices, want 0", len(devices))
		}
	})

	t.Run("matching strings accepted", func(t *testing.T) {
		ref := &fakeRef{desc: desc, handle: &fakeHandle{
			manufacturer: "braintechnology", product: "usb-lps", serial: "42",
		}}
		dr, _ := newTestDriver(staticBus(ref), WithProfiles(profiles))

		devices, err := dr.Scan(context.Background(), "")
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if len(devices) != 1 || devices[0].Model != "USB-LPS" {
			t.Fatalf("got %d devices, want the USB-LPS", len(devices))
		}
	})
}

func TestScanBusError(t *testing.T) {
	bus := staticBus()
	bus.err = errors.New("no usb context")
	dr, _ := newTestDriver(bus)

	if _, err := dr.Scan(context.Background(), ""); err == nil {
		t.Fatal("Scan() succeeded, want error")
	}
}
