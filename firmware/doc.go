// Package firmware provides parsing and loading of fx3kit firmware images.
//
// # Image Formats
//
// Two container formats exist, selected by the device class:
//
// Legacy (FX2-class) images have no internal structure. The whole file is a
// single blob loaded at address 0 of the device's internal RAM. Because the
// upload protocol carries the load address in a 16-bit field, legacy images
// are bounded to 64 KiB.
//
// FX3-class images are self-describing:
//
//	[' C'][' Y'][ctl][0xB0]          4-byte signature
//	[len LE32][addr LE32][payload]   segment, repeated; len counts 32-bit words
//	[checksum LE32]                  trailing checksum word (optional)
//
// The segment list terminates either by exact exhaustion of the file or at a
// final 4-byte checksum word, which is skipped rather than uploaded. An image
// whose segment header or payload runs past the end of the file is rejected
// as truncated.
//
// # Usage
//
// Load and parse an image:
//
//	loader := firmware.NewDirLoader("/usr/share/fx3kit/firmware")
//	data, err := loader.Firmware("fx3lafw-cypress-fx3.fw", firmware.MaxFX3Size)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	img, err := firmware.Parse(data, firmware.FormatFX3)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, seg := range img.Segments {
//	    fmt.Printf("segment: %d bytes at 0x%08X\n", len(seg.Data), seg.Addr)
//	}
//
// # Error Handling
//
// Parse and Firmware return structured error types:
//   - SignatureError: buffer does not start with the FX3 signature
//   - TruncatedError: segment header or payload runs past end of file
//   - NotFoundError: named resource missing from all search directories
//   - TooLargeError: file exceeds the format's size bound
package firmware
