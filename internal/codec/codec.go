// Package codec implements the Redragon SS-550 wire protocol: framed
// commands sent to interrupt endpoint 0x01, raw chunked image data, and
// keypress reports read back from endpoint 0x82.
//
// All multi-byte sizes on the wire are big-endian; every framed command is
// padded to a fixed 517-byte packet, and every raw chunk is padded to 512
// bytes, matching the device firmware's expectations exactly.
package codec

import "fmt"

const (
	// PacketSize is the payload size of a single USB report, excluding the
	// CRT prefix.
	PacketSize = 512
	// FramedSize is the total size of a framed command packet (prefix +
	// payload, zero-padded).
	FramedSize = len(cmdPrefix) + PacketSize

	// ButtonImageSize is the fixed width/height, in pixels, of a rendered
	// key image.
	ButtonImageSize = 100

	// MinKeyID and MaxKeyID bound the logical key numbering.
	MinKeyID = 1
	MaxKeyID = 15
)

// cmdPrefix is the "CRT\0\0" framing header prepended to every framed
// command.
var cmdPrefix = [5]byte{0x43, 0x52, 0x54, 0x00, 0x00}

var (
	cmdLIG = [5]byte{0x4C, 0x49, 0x47, 0x00, 0x00}
	cmdCLE = [6]byte{0x43, 0x4C, 0x45, 0x00, 0x00, 0x00}
	cmdDIS = [5]byte{0x44, 0x49, 0x53, 0x00, 0x00}
	cmdSTP = [5]byte{0x53, 0x54, 0x50, 0x00, 0x00}
	cmdBAT = [3]byte{0x42, 0x41, 0x54}
)

// frame builds a framed 517-byte command packet: the CRT prefix, the
// supplied payload, then zero padding to FramedSize.
func frame(payload []byte) []byte {
	if len(payload) > PacketSize {
		panic(fmt.Sprintf("codec: payload of %d bytes exceeds packet size %d", len(payload), PacketSize))
	}
	pkt := make([]byte, FramedSize)
	copy(pkt, cmdPrefix[:])
	copy(pkt[len(cmdPrefix):], payload)
	return pkt
}

// SizeToBytes encodes n as 4 big-endian bytes.
func SizeToBytes(n uint32) [4]byte {
	return [4]byte{
		byte(n >> 24),
		byte(n >> 16),
		byte(n >> 8),
		byte(n),
	}
}

// BytesToSize decodes 4 big-endian bytes to a uint32.
func BytesToSize(b [4]byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// Brightness converts a 0..=100 percentage into the device's 0..=64 level,
// per spec.md's floor(percent * 0.64) rule.
func Brightness(percent int) byte {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return byte(float64(percent) * 0.64)
}

// SetBrightness builds the LIG framed command.
func SetBrightness(percent int) []byte {
	payload := append(append([]byte{}, cmdLIG[:]...), Brightness(percent))
	return frame(payload)
}

// ClearAll builds the CLE framed command that clears every key image.
func ClearAll() []byte {
	payload := append(append([]byte{}, cmdCLE[:]...), 0xFF)
	return frame(payload)
}

// WakeDisplay builds the DIS framed command.
func WakeDisplay() []byte {
	return frame(cmdDIS[:])
}

// Commit builds the STP framed command that commits queued imagery.
func Commit() []byte {
	return frame(cmdSTP[:])
}

// AnnounceImage builds the BAT framed command announcing an upload of size
// bytes to the given logical key.
func AnnounceImage(size int, keyID int) ([]byte, error) {
	if keyID < MinKeyID || keyID > MaxKeyID {
		return nil, fmt.Errorf("codec: key id %d out of range [%d,%d]", keyID, MinKeyID, MaxKeyID)
	}
	if size < 0 {
		return nil, fmt.Errorf("codec: negative image size")
	}
	sizeBytes := SizeToBytes(uint32(size))
	payload := make([]byte, 0, len(cmdBAT)+len(sizeBytes)+1)
	payload = append(payload, cmdBAT[:]...)
	payload = append(payload, sizeBytes[:]...)
	payload = append(payload, byte(keyID))
	return frame(payload), nil
}

// ChunkRaw splits data into fixed 512-byte chunks, zero-padding the final
// chunk. The total length returned is always ceil(len(data)/PacketSize) *
// PacketSize.
func ChunkRaw(data []byte) [][]byte {
	if len(data) == 0 {
		return nil
	}
	var chunks [][]byte
	for offset := 0; offset < len(data); offset += PacketSize {
		end := offset + PacketSize
		if end > len(data) {
			end = len(data)
		}
		chunk := make([]byte, PacketSize)
		copy(chunk, data[offset:end])
		chunks = append(chunks, chunk)
	}
	return chunks
}

// physicalToLogical maps the raw byte reported by the device firmware for
// each physical key location to its logical key id, per spec.md's fixed
// row layout. Codes not present in this table pass through unchanged.
var physicalToLogical = map[byte]int{
	0x0B: 1, 0x0C: 2, 0x0D: 3, 0x0E: 4, 0x0F: 5,
	0x06: 6, 0x07: 7, 0x08: 8, 0x09: 9, 0x0A: 10,
	0x01: 11, 0x02: 12, 0x03: 13, 0x04: 14, 0x05: 15,
}

// PhysicalToLogical converts a firmware-reported physical key code to its
// logical key id. Unknown codes are returned unchanged, widened to int.
func PhysicalToLogical(physical byte) int {
	if logical, ok := physicalToLogical[physical]; ok {
		return logical
	}
	return int(physical)
}

// KeyEvent is a decoded keypress report.
type KeyEvent struct {
	LogicalKey int
	Pressed    bool
}

// ErrShortReport is returned by ParseKeyEvent when the buffer is too short
// to contain the significant offsets.
var ErrShortReport = fmt.Errorf("codec: keypress report shorter than 11 bytes")

// ParseKeyEvent decodes an inbound keypress report read from endpoint
// 0x82. Byte 9 is the physical key code, byte 10 is the press/release
// state (1 = press, 0 = release).
func ParseKeyEvent(report []byte) (KeyEvent, error) {
	if len(report) < 11 {
		return KeyEvent{}, ErrShortReport
	}
	return KeyEvent{
		LogicalKey: PhysicalToLogical(report[9]),
		Pressed:    report[10] == 1,
	}, nil
}
