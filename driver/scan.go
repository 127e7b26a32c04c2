package driver

import (
	"context"
	"fmt"

	"github.com/openbench/go-fx3kit/ezusb"
	"github.com/openbench/go-fx3kit/firmware"
)

// deviceStrings are the string descriptors read during a scan.
type deviceStrings struct {
	manufacturer string
	product      string
	serial       string
}

// Scan enumerates attached devices, matches them against the profile table
// and uploads firmware to blank ones.
//
// conn optionally restricts the scan to one device, given as "bus.address".
//
// Devices that already run the firmware come back StatusInactive with their
// real bus address, ready to open. Blank devices get a firmware upload and
// the PendingAddress sentinel; upload failure is logged, not fatal to the
// scan. The device still appears in the result (degraded) so one bad
// device cannot hide the others, and a re-scan is needed to retry it.
func (dr *Driver) Scan(ctx context.Context, conn string) ([]*Device, error) {
	spec, err := parseConnSpec(conn)
	if err != nil {
		return nil, err
	}

	refs, err := dr.bus.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}

	var devices []*Device
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return devices, fmt.Errorf("cancelled: %w", err)
		}

		desc := ref.Desc()
		if spec != nil && !spec.matches(desc) {
			continue
		}
		if !plausible(dr.config.Profiles, desc.Vendor, desc.Product) {
			continue
		}
		if desc.Port == "" {
			continue
		}

		strs, ok := dr.readStrings(ref, desc)
		if !ok {
			continue
		}

		prof := matchProfile(dr.config.Profiles, desc.Vendor, desc.Product,
			strs.manufacturer, strs.product)
		if prof == nil {
			continue
		}

		d := &Device{
			Vendor:       prof.Vendor,
			Model:        prof.Model,
			ModelVersion: prof.ModelVersion,
			Serial:       strs.serial,
			ConnectionID: desc.Port,
			Status:       StatusInitializing,
			Groups:       channelLayout(prof.Caps),
			drv:          dr,
			profile:      prof,
			samplerates:  ratesFor(prof.Caps),
		}

		hasFirmware := strs.manufacturer == dr.config.FirmwareManufacturer &&
			strs.product == dr.config.FirmwareProduct

		if hasFirmware {
			// Already runs the firmware, so record the real address.
			dr.logDebug("found an fx3kit device",
				"conn", fmt.Sprintf("%d.%d", desc.Bus, desc.Address))
			d.Status = StatusInactive
			d.busNum = desc.Bus
			d.address = desc.Address
		} else {
			if err := dr.installFirmware(ctx, ref, prof); err != nil {
				dr.logError("firmware upload failed",
					"conn", fmt.Sprintf("%d.%d", desc.Bus, desc.Address),
					"error", err,
				)
			} else {
				// Store when this device's firmware was updated.
				d.fwUpdated = dr.config.Clock.Now()
			}
			// The device is about to vanish and reappear under a
			// new address.
			d.busNum = desc.Bus
			d.address = PendingAddress
		}

		devices = append(devices, d)
	}

	return devices, nil
}

// readStrings transiently opens the device to read its string descriptors.
// A failed read is a warning, but the device must be skipped since matching
// requires the strings. The handle is closed on every path.
func (dr *Driver) readStrings(ref DeviceRef, desc Desc) (deviceStrings, bool) {
	var strs deviceStrings

	h, err := ref.Open()
	if err != nil {
		dr.logError("failed to open potential device",
			"vid", fmt.Sprintf("%04x", desc.Vendor),
			"pid", fmt.Sprintf("%04x", desc.Product),
			"error", err,
		)
		return strs, false
	}
	defer h.Close()

	if strs.manufacturer, err = h.Manufacturer(); err != nil {
		dr.logError("failed to get manufacturer string descriptor", "error", err)
		return strs, false
	}
	if strs.product, err = h.Product(); err != nil {
		dr.logError("failed to get product string descriptor", "error", err)
		return strs, false
	}
	if strs.serial, err = h.SerialNumber(); err != nil {
		dr.logError("failed to get serial number string descriptor", "error", err)
		return strs, false
	}

	return strs, true
}

// installFirmware loads, parses and uploads the profile's firmware through a
// transient handle.
func (dr *Driver) installFirmware(ctx context.Context, ref DeviceRef, prof *Profile) error {
	format := firmware.FormatLegacy
	maxSize := int64(firmware.MaxLegacySize)
	if prof.Caps.FX3() {
		format = firmware.FormatFX3
		maxSize = firmware.MaxFX3Size
	}

	data, err := dr.loader.Firmware(prof.Firmware, maxSize)
	if err != nil {
		return err
	}
	img, err := firmware.Parse(data, format)
	if err != nil {
		return err
	}

	h, err := ref.Open()
	if err != nil {
		return fmt.Errorf("open device for upload: %w", err)
	}
	defer h.Close()

	dr.logInfo("uploading firmware", "file", prof.Firmware)

	opts := []ezusb.Option{}
	if dr.config.Logger != nil {
		opts = append(opts, ezusb.WithLogger(dr.config.Logger))
	}
	if dr.config.InstallProgress != nil {
		opts = append(opts, ezusb.WithProgress(dr.config.InstallProgress))
	}

	return ezusb.New(h, opts...).Install(ctx, img)
}
