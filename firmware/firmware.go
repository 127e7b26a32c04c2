package firmware

// Format selects the firmware container sub-format.
type Format int

const (
	// FormatLegacy is the FX2-class format: the entire file is one opaque
	// blob loaded verbatim at address 0.
	FormatLegacy Format = iota

	// FormatFX3 is the FX3-class format: a 4-byte signature followed by
	// addressed segments and a trailing checksum word.
	FormatFX3
)

func (f Format) String() string {
	switch f {
	case FormatLegacy:
		return "legacy"
	case FormatFX3:
		return "fx3"
	default:
		return "unknown"
	}
}

// Maximum image sizes per format. Legacy images are bounded to 64 KiB because
// the upload protocol carries the load address in the 16-bit value field of
// the setup packet.
const (
	MaxLegacySize = 64 << 10
	MaxFX3Size    = 536 << 10
)

// SignatureLength is the length of the FX3 image signature in bytes.
const SignatureLength = 4

// Image represents a parsed firmware container.
type Image struct {
	// Format is the container sub-format the image was parsed as
	Format Format

	// Segments are the addressed payload regions, in file order.
	// The trailing checksum word of an FX3 image is never included.
	Segments []*Segment
}

// Segment is a single contiguous region of firmware to be loaded at a
// target address in the device's memory space.
type Segment struct {
	// Addr is the target load address
	Addr uint32

	// Data is the payload to load at Addr
	Data []byte
}

// Size returns the total payload size of the image in bytes.
func (img *Image) Size() int {
	n := 0
	for _, seg := range img.Segments {
		n += len(seg.Data)
	}
	return n
}
