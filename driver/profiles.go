package driver

// Profile is a static, read-only description of a supported device: its
// pre-firmware USB identity, display names, firmware file and capabilities.
type Profile struct {
	// VendorID and ProductID identify the blank (pre-firmware) device
	VendorID  uint16
	ProductID uint16

	// Vendor, Model and ModelVersion are display names
	Vendor       string
	Model        string
	ModelVersion string

	// Firmware is the firmware file name resolved through the loader
	Firmware string

	// Caps are the device capabilities
	Caps Caps

	// USBManufacturer and USBProduct, when non-empty, must additionally
	// match the device's string descriptors exactly. This disambiguates
	// VID/PID pairs shared between unrelated boards.
	USBManufacturer string
	USBProduct      string
}

// Profiles is the default table of supported devices. Table order is the
// tie-break when a VID/PID pair is ambiguous: the first matching entry wins.
var Profiles = []Profile{
	// Cypress SuperSpeed Explorer Kit (CYUSB3KIT-003)
	{
		VendorID: 0x04b4, ProductID: 0x00f3,
		Vendor: "Cypress", Model: "SuperSpeed Explorer Kit",
		Firmware: "fx3lafw-cypress-fx3.fw",
		Caps:     CapFX3 | Cap32Bit,
	},
	// Cypress FX2 eval boards (DVK), blank EEPROM
	{
		VendorID: 0x04b4, ProductID: 0x8613,
		Vendor: "Cypress", Model: "FX2 eval board",
		Firmware: "fx2lafw-cypress-fx2.fw",
		Caps:     Cap16Bit,
	},
	// Saleae Logic and compatibles
	{
		VendorID: 0x0925, ProductID: 0x3881,
		Vendor: "Saleae", Model: "Logic",
		Firmware: "fx2lafw-saleae-logic.fw",
		Caps:     Cap16Bit,
	},
	// CWAV USBee AX
	{
		VendorID: 0x08a9, ProductID: 0x0014,
		Vendor: "CWAV", Model: "USBee AX",
		Firmware: "fx2lafw-cwav-usbeeax.fw",
		Caps:     CapAnalog,
	},
	// sigrok FX2 LA (8ch)
	{
		VendorID: 0x1d50, ProductID: 0x608c,
		Vendor: "sigrok", Model: "FX2 LA (8ch)",
		Firmware: "fx2lafw-sigrok-fx2-8ch.fw",
		Caps:     0,
	},
	// sigrok FX2 LA (16ch)
	{
		VendorID: 0x1d50, ProductID: 0x608d,
		Vendor: "sigrok", Model: "FX2 LA (16ch)",
		Firmware: "fx2lafw-sigrok-fx2-16ch.fw",
		Caps:     Cap16Bit,
	},
	// Braintechnology USB-LPS, identified by its string descriptors
	{
		VendorID: 0x16d0, ProductID: 0x0498,
		Vendor: "Braintechnology", Model: "USB-LPS",
		Firmware:        "fx2lafw-braintechnology-usb-lps.fw",
		Caps:            Cap16Bit,
		USBManufacturer: "braintechnology",
		USBProduct:      "usb-lps",
	},
}

// plausible is a fast VID/PID reject applied before any string-descriptor
// I/O, since reading strings requires opening the device.
func plausible(profiles []Profile, vendor, product uint16) bool {
	for i := range profiles {
		if profiles[i].VendorID == vendor && profiles[i].ProductID == product {
			return true
		}
	}
	return false
}

// matchProfile resolves the first profile matching the descriptor and string
// descriptors. Optional string constraints must match exactly.
func matchProfile(profiles []Profile, vendor, product uint16, manufacturer, productStr string) *Profile {
	for i := range profiles {
		p := &profiles[i]
		if p.VendorID != vendor || p.ProductID != product {
			continue
		}
		if p.USBManufacturer != "" && p.USBManufacturer != manufacturer {
			continue
		}
		if p.USBProduct != "" && p.USBProduct != productStr {
			continue
		}
		return p
	}
	return nil
}
