// Package ezusb implements the firmware load protocol of Cypress EZ-USB
// (FX2/FX3 class) controllers.
//
// # Protocol
//
// A blank EZ-USB controller enumerates with its boot loader, which accepts a
// single vendor request, Firmware Load (0xA0). Each host-to-device transfer
// writes its payload into the controller's memory at the address carried in
// the setup packet: the 16-bit value field holds the low half of the address,
// the 16-bit index field the high half. Transfers are bounded to 4 KiB, so
// images are sliced into chunks.
//
// On FX2-class parts the 8051 core must be held in reset while code is
// written. Writing 1 to the CPUCS register (0xE600) via the same vendor
// request asserts reset; writing 0 releases it and starts the firmware.
// FX3-class parts sequence their own reset and must not be touched.
//
// After a successful upload the device drops off the bus and re-enumerates
// under its firmware identity; the driver package handles that wait.
//
// # Usage
//
//	img, err := firmware.Parse(data, firmware.FormatFX3)
//	if err != nil {
//	    return err
//	}
//	inst := ezusb.New(handle)
//	if err := inst.Install(ctx, img); err != nil {
//	    return err
//	}
//
// # Error Handling
//
// There are no retries: a stalled device mid-upload is in an indeterminate
// state, so the first failed transfer aborts the install with *TransferError
// and the device must be re-scanned.
package ezusb
