// Package frame - self-delimiting checksummed frame for the audio link.
//
// On air:
//
//	Preamble | Length(2) | Payload(0-1024) | CRC16(2) | Postamble
//
// Preamble is 16 idle (mark) bits and the sync word 0x2D 0xD4.
// Every byte after the preamble start is UART framed: start bit 0, 8 data bits MSB first, stop bit 1.
// Length and CRC are big endian. CRC16/XMODEM covers Length and Payload.
package frame

import (
	"encoding/binary"

	"github.com/sigurn/crc16"
	"github.com/tonecfg/tonecfg/pkg/bits"
	"github.com/tonecfg/tonecfg/pkg/payload"
)

const (
	LengthSize     = 2
	ChecksumSize   = 2
	MaxPayloadSize = 1024

	PreambleIdleBits  = 16
	PreambleMinIdle   = 8 // receiver AGC may eat the first bits
	PostambleIdleBits = 12
)

var SyncWord = []byte{0x2D, 0xD4}

// Preamble - fixed sync pattern, the same for all frames
var Preamble = append(bits.Idle(PreambleIdleBits), bits.UART(SyncWord...)...)

// ChecksumParams - CRC-16/XMODEM: poly 0x1021, init 0x0000, no reflection, xorout 0x0000
var ChecksumParams = crc16.CRC16_XMODEM

var table = crc16.MakeTable(ChecksumParams)

func Checksum(b []byte) uint16 {
	return crc16.Checksum(b, table)
}

// Frame is read only after Encode or Decode
type Frame struct {
	length   uint16
	payload  []byte
	checksum uint16
}

// Encode serializes a validated payload, it doesn't check anything itself.
// Payloads over MaxPayloadSize are impossible after payload.Validate.
func Encode(c *payload.Config) *Frame {
	return FromBytes(payload.Marshal(c))
}

// FromBytes builds a frame around raw payload bytes
func FromBytes(b []byte) *Frame {
	if len(b) > MaxPayloadSize {
		b = b[:MaxPayloadSize]
	}

	f := &Frame{
		length:  uint16(len(b)),
		payload: append([]byte(nil), b...),
	}
	f.checksum = Checksum(f.header(f.payload))
	return f
}

func (f *Frame) header(p []byte) []byte {
	b := make([]byte, LengthSize, LengthSize+len(p))
	binary.BigEndian.PutUint16(b, f.length)
	return append(b, p...)
}

func (f *Frame) Length() int {
	return int(f.length)
}

func (f *Frame) Checksum() uint16 {
	return f.checksum
}

// PayloadBytes returns a copy
func (f *Frame) PayloadBytes() []byte {
	return append([]byte(nil), f.payload...)
}

// Payload parses the payload bytes, the result is not validated
func (f *Frame) Payload() (*payload.Config, error) {
	return payload.Unmarshal(f.payload)
}

// Bytes - Length | Payload | Checksum
func (f *Frame) Bytes() []byte {
	b := f.header(f.payload)
	return binary.BigEndian.AppendUint16(b, f.checksum)
}

// Bits - full on air sequence with preamble and postamble
func (f *Frame) Bits() bits.Sequence {
	b := f.Bytes()

	w := bits.NewWriter(len(Preamble) + len(b)*bits.CellSize + PostambleIdleBits)
	w.WriteBits(Preamble)
	w.WriteBytes(b)
	w.WriteBits(bits.Idle(PostambleIdleBits))
	return w.Sequence()
}

// BitLen - len(f.Bits()) without building it
func (f *Frame) BitLen() int {
	return len(Preamble) + (LengthSize+int(f.length)+ChecksumSize)*bits.CellSize + PostambleIdleBits
}

func (f *Frame) Equal(other *Frame) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.length == other.length && f.checksum == other.checksum &&
		string(f.payload) == string(other.payload)
}
