package firmware

import (
	"encoding/binary"
	"fmt"
)

// Parse parses a raw firmware buffer as the given container format.
//
// Legacy images have no structure: the whole buffer becomes a single segment
// at address 0. FX3 images carry a 4-byte signature, a sequence of segments
// (each a 4-byte little-endian length in 32-bit words, a 4-byte little-endian
// target address, then the payload) and terminate either by exact exhaustion
// or with a trailing 4-byte checksum word, which is skipped.
//
// Example:
//
//	data, err := loader.Firmware("fx3lafw-cypress-fx3.fw", firmware.MaxFX3Size)
//	if err != nil {
//	    return err
//	}
//	img, err := firmware.Parse(data, firmware.FormatFX3)
func Parse(data []byte, format Format) (*Image, error) {
	switch format {
	case FormatLegacy:
		return parseLegacy(data), nil
	case FormatFX3:
		return parseFX3(data)
	default:
		return nil, fmt.Errorf("unknown firmware format %d", int(format))
	}
}

func parseLegacy(data []byte) *Image {
	img := &Image{Format: FormatLegacy}
	if len(data) == 0 {
		return img
	}
	seg := &Segment{Addr: 0, Data: make([]byte, len(data))}
	copy(seg.Data, data)
	img.Segments = []*Segment{seg}
	return img
}

func parseFX3(data []byte) (*Image, error) {
	if len(data) < SignatureLength ||
		data[0] != 'C' || data[1] != 'Y' || data[3] != 0xb0 {
		err := &SignatureError{}
		copy(err.Got[:], data)
		return nil, err
	}

	img := &Image{Format: FormatFX3}
	offset := SignatureLength
	for offset < len(data) {
		if offset+4 == len(data) {
			// Trailing checksum word; not part of any segment.
			offset += 4
			break
		}
		if len(data) < offset+8 {
			return nil, &TruncatedError{
				Offset:  offset,
				Need:    8,
				Have:    len(data) - offset,
				Segment: len(img.Segments),
			}
		}

		// Length field counts 32-bit words.
		length := int64(binary.LittleEndian.Uint32(data[offset:])) << 2
		offset += 4
		addr := binary.LittleEndian.Uint32(data[offset:])
		offset += 4

		if length > int64(len(data)-offset) {
			return nil, &TruncatedError{
				Offset:  offset,
				Need:    int(length),
				Have:    len(data) - offset,
				Segment: len(img.Segments),
			}
		}

		seg := &Segment{Addr: addr, Data: make([]byte, length)}
		copy(seg.Data, data[offset:offset+int(length)])
		img.Segments = append(img.Segments, seg)
		offset += int(length)
	}

	return img, nil
}
