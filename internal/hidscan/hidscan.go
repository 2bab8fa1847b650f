// Package hidscan walks Linux USB device descriptor files under
// /dev/bus/usb to answer a single question cheaply: is a device with a
// given vendor/product id currently plugged in, and on which bus/device
// node does it live. It does not open, claim, or read from the device —
// that belongs to internal/transport, which opens the device by
// vendor/product id on its own and performs full interrupt-endpoint I/O
// through gousb/libusb.
package hidscan

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

const (
	// DefaultBusDir is the root of the Linux usbfs tree.
	DefaultBusDir = "/dev/bus/usb"

	descTypeDevice = 1
)

type deviceDesc struct {
	Length            uint8
	DescriptorType    uint8
	USB               uint16
	DeviceClass       uint8
	DeviceSubClass    uint8
	DeviceProtocol    uint8
	MaxPacketSize     uint8
	Vendor            uint16
	Product           uint16
	Revision          uint16
	ManufacturerIndex uint8
	ProductIndex      uint8
	SerialIndex       uint8
	NumConfigurations uint8
}

// Location identifies a matched device's position in the usbfs tree.
type Location struct {
	VendorID  uint16
	ProductID uint16
	Bus       int
	Device    int
	Path      string
}

var reDevBusDevice = regexp.MustCompile(`/(\d+)/(\d+)$`)

// Find searches dir recursively for the first device descriptor matching
// vendorID/productID. It returns (Location{}, false, nil) if nothing
// matched, a non-nil error only on an unexpected I/O failure walking the
// tree (a missing dir is treated as "not found", not an error, since the
// device simply being unplugged is the common case).
func Find(dir string, vendorID, productID uint16) (Location, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Location{}, false, nil
		}
		return Location{}, false, fmt.Errorf("hidscan: read %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			loc, ok, err := Find(path, vendorID, productID)
			if err != nil {
				return Location{}, false, err
			}
			if ok {
				return loc, true, nil
			}
			continue
		}

		desc, ok, err := readDeviceDescriptor(path)
		if err != nil {
			// Unreadable descriptor files are common (permissions,
			// transient disconnects) and not fatal to the scan.
			continue
		}
		if !ok || desc.Vendor != vendorID || desc.Product != productID {
			continue
		}

		loc := Location{VendorID: desc.Vendor, ProductID: desc.Product, Path: path}
		if matches := reDevBusDevice.FindStringSubmatch(path); len(matches) >= 3 {
			loc.Bus, _ = strconv.Atoi(matches[1])
			loc.Device, _ = strconv.Atoi(matches[2])
		}
		return loc, true, nil
	}
	return Location{}, false, nil
}

// Present reports whether a device with the given vendor/product id is
// currently enumerated, without opening it.
func Present(vendorID, productID uint16) bool {
	_, ok, err := Find(DefaultBusDir, vendorID, productID)
	return ok && err == nil
}

// readDeviceDescriptor reads just the leading USB device descriptor (the
// first 18-byte record) from a usbfs device node, ignoring the
// configuration/interface/endpoint descriptors that follow it — those are
// only needed by the ioctl transport this package replaces.
func readDeviceDescriptor(path string) (deviceDesc, bool, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return deviceDesc{}, false, err
	}
	if len(f) < 2 {
		return deviceDesc{}, false, nil
	}
	length := int(f[0])
	descriptorType := f[1]
	if descriptorType != descTypeDevice || length > len(f) {
		return deviceDesc{}, false, nil
	}

	var desc deviceDesc
	if err := binary.Read(bytes.NewReader(f[:length]), binary.LittleEndian, &desc); err != nil {
		return deviceDesc{}, false, err
	}
	return desc, true, nil
}
