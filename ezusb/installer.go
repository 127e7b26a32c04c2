package ezusb

import (
	"context"
	"fmt"

	"github.com/openbench/go-fx3kit/firmware"
)

// Vendor request and register addresses of the EZ-USB boot loader.
const (
	// reqFirmwareLoad is the "Firmware Load" vendor request (A0). A write
	// with this request stores the payload at the address carried in the
	// value (low 16 bits) and index (high 16 bits) fields.
	reqFirmwareLoad = 0xa0

	// cpucsAddr is the CPUCS register; bit 0 holds the 8051 core in reset
	cpucsAddr = 0xe600

	// requestTypeVendorOut is bmRequestType for a host-to-device vendor request
	requestTypeVendorOut = 0x40
)

// MaxChunkSize is the upper bound on a single firmware control transfer.
const MaxChunkSize = 4 * 1024

// ControlWriter issues USB control transfers to a device. *gousb.Device and
// the driver package's Handle both satisfy it.
type ControlWriter interface {
	Control(rType, request uint8, val, idx uint16, data []byte) (int, error)
}

// Installer uploads a parsed firmware image to an EZ-USB device.
//
// A single Installer drives a single install attempt; any transfer failure is
// terminal and the device must be re-scanned before another attempt.
type Installer struct {
	dev    ControlWriter
	config Config
}

// New creates an Installer for the given device.
//
// Example:
//
//	inst := ezusb.New(handle,
//	    ezusb.WithLogger(logger),
//	    ezusb.WithProgress(progressFunc),
//	)
func New(dev ControlWriter, opts ...Option) *Installer {
	if dev == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Installer{
		dev:    dev,
		config: cfg,
	}
}

// Install uploads the image segment by segment.
//
// Legacy images are bracketed by CPU reset control transfers: reset is
// asserted before the upload and released after, so the loaded firmware
// starts once the core leaves reset. FX3-class images manage the reset
// internally and must not be toggled externally.
//
// There is no retry and no partial-success reporting: the first failed
// transfer aborts the install with *TransferError, leaving the device in an
// indeterminate state. The context is only consulted between transfers,
// never mid-transfer.
func (in *Installer) Install(ctx context.Context, img *firmware.Image) error {
	if img == nil {
		return fmt.Errorf("image cannot be nil")
	}

	legacy := img.Format == firmware.FormatLegacy

	if legacy {
		if err := in.setReset(true); err != nil {
			return err
		}
	}

	total := img.Size()
	written := 0
	for i, seg := range img.Segments {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		n, err := in.uploadSegment(ctx, seg, func(done int) {
			in.reportProgress(Progress{
				Segment:       i,
				TotalSegments: len(img.Segments),
				BytesWritten:  written + done,
				TotalBytes:    total,
			})
		})
		written += n
		if err != nil {
			return err
		}

		in.logDebug("uploaded segment",
			"segment", i,
			"addr", fmt.Sprintf("0x%08X", seg.Addr),
			"bytes", len(seg.Data),
		)
	}

	if legacy {
		if err := in.setReset(false); err != nil {
			return err
		}
	}

	in.logInfo("firmware upload done", "segments", len(img.Segments), "bytes", written)

	return nil
}

// uploadSegment writes one segment in chunks of at most the configured chunk
// size. Chunks are pure byte slices of the segment; concatenated they
// reproduce the segment exactly. Even an empty segment issues one transfer,
// matching the boot loader's tolerance for zero-length writes.
func (in *Installer) uploadSegment(ctx context.Context, seg *firmware.Segment, done func(int)) (int, error) {
	offset := 0
	for {
		n := len(seg.Data) - offset
		if n > in.config.ChunkSize {
			n = in.config.ChunkSize
		}

		addr := seg.Addr + uint32(offset)
		_, err := in.dev.Control(requestTypeVendorOut, reqFirmwareLoad,
			uint16(addr&0xffff), uint16(addr>>16), seg.Data[offset:offset+n])
		if err != nil {
			return offset, &TransferError{Stage: StageUpload, Addr: addr, Err: err}
		}

		offset += n
		done(offset)

		if offset >= len(seg.Data) {
			return offset, nil
		}
		if err := ctx.Err(); err != nil {
			return offset, fmt.Errorf("cancelled: %w", err)
		}
	}
}

// setReset writes the CPUCS register to hold or release the CPU reset line.
func (in *Installer) setReset(hold bool) error {
	buf := []byte{0}
	stage := StageResetRelease
	if hold {
		buf[0] = 1
		stage = StageResetAssert
	}

	in.logDebug("setting CPU reset mode", "hold", hold)

	_, err := in.dev.Control(requestTypeVendorOut, reqFirmwareLoad, cpucsAddr, 0, buf)
	if err != nil {
		return &TransferError{Stage: stage, Addr: cpucsAddr, Err: err}
	}
	return nil
}

func (in *Installer) reportProgress(progress Progress) {
	if in.config.Progress != nil {
		in.config.Progress(progress)
	}
}

func (in *Installer) logDebug(msg string, keysAndValues ...interface{}) {
	if in.config.Logger != nil {
		in.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (in *Installer) logInfo(msg string, keysAndValues ...interface{}) {
	if in.config.Logger != nil {
		in.config.Logger.Info(msg, keysAndValues...)
	}
}
