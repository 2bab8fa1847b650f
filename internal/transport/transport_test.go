package transport

import "testing"

// Opening a real Device requires hardware, so these only cover the
// compile-time constants the rest of the codebase relies on.

func TestDeviceIdentity(t *testing.T) {
	if VendorID != 0x0200 {
		t.Fatalf("unexpected vendor id %#x", VendorID)
	}
	if ProductID != 0x1000 {
		t.Fatalf("unexpected product id %#x", ProductID)
	}
}

func TestTimeoutsAreOrdered(t *testing.T) {
	if ReadTimeout >= WriteTimeout {
		t.Fatalf("expected read timeout (%s) shorter than write timeout (%s)", ReadTimeout, WriteTimeout)
	}
}
