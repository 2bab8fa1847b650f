package hidscan

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func writeDeviceNode(t *testing.T, path string, vendor, product uint16) {
	t.Helper()
	desc := deviceDesc{
		Length:         18,
		DescriptorType: descTypeDevice,
		Vendor:         vendor,
		Product:        product,
	}
	buf := make([]byte, 18)
	buf[0] = desc.Length
	buf[1] = desc.DescriptorType
	binary.LittleEndian.PutUint16(buf[8:10], desc.Vendor)
	binary.LittleEndian.PutUint16(buf[10:12], desc.Product)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestFindMatchesVendorProduct(t *testing.T) {
	root := t.TempDir()
	writeDeviceNode(t, filepath.Join(root, "001", "005"), 0x0200, 0x1000)

	loc, ok, err := Find(root, 0x0200, 0x1000)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !ok {
		t.Fatal("expected a match")
	}
	if loc.Bus != 1 || loc.Device != 5 {
		t.Fatalf("expected bus=1 device=5, got %+v", loc)
	}
}

func TestFindNoMatch(t *testing.T) {
	root := t.TempDir()
	writeDeviceNode(t, filepath.Join(root, "001", "002"), 0x1234, 0x5678)

	_, ok, err := Find(root, 0x0200, 0x1000)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if ok {
		t.Fatal("expected no match")
	}
}

func TestFindMissingDirIsNotAnError(t *testing.T) {
	_, ok, err := Find(filepath.Join(t.TempDir(), "does-not-exist"), 0x0200, 0x1000)
	if err != nil {
		t.Fatalf("expected no error for missing dir, got %v", err)
	}
	if ok {
		t.Fatal("expected no match")
	}
}
