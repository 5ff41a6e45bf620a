package frame

import (
	"errors"
	"fmt"

	"github.com/tonecfg/tonecfg/pkg/bits"
)

type Kind byte

const (
	KindPreambleNotFound Kind = iota + 1
	KindChecksumMismatch
	KindTruncatedFrame
	KindFraming
)

var (
	ErrPreambleNotFound = errors.New("frame: preamble not found")
	ErrChecksumMismatch = errors.New("frame: checksum mismatch")
	ErrTruncatedFrame   = errors.New("frame: truncated")
	ErrFraming          = errors.New("frame: framing error")
)

func (k Kind) String() string {
	switch k {
	case KindPreambleNotFound:
		return "PreambleNotFound"
	case KindChecksumMismatch:
		return "ChecksumMismatch"
	case KindTruncatedFrame:
		return "TruncatedFrame"
	case KindFraming:
		return "Framing"
	}
	return "Unknown"
}

// DecodeError - the frame can't be accepted. All kinds are channel problems,
// replaying the audio is the way to recover.
type DecodeError struct {
	Kind   Kind
	Offset int // bit offset of the sync word, -1 if not found
	Msg    string
}

func (e *DecodeError) Error() string {
	if e.Msg == "" {
		return e.Unwrap().Error()
	}
	return fmt.Sprintf("%s: %s", e.Unwrap(), e.Msg)
}

func (e *DecodeError) Unwrap() error {
	switch e.Kind {
	case KindPreambleNotFound:
		return ErrPreambleNotFound
	case KindChecksumMismatch:
		return ErrChecksumMismatch
	case KindTruncatedFrame:
		return ErrTruncatedFrame
	}
	return ErrFraming
}

// Decode looks for the preamble and returns the first frame that passes the checksum.
// When no candidate is valid the error of the first candidate is returned.
// Decode is pure: the same input gives the same result.
func Decode(seq bits.Sequence) (*Frame, error) {
	sync := Preamble[PreambleIdleBits:]

	var first error

	for from := 0; ; {
		i := seq.Index(sync, from)
		if i < 0 {
			break
		}
		from = i + 1

		if seq.RunBefore(i, bits.Mark) < PreambleMinIdle {
			continue
		}

		f, err := decodeAt(seq, i, i+len(sync))
		if err == nil {
			return f, nil
		}

		if first == nil {
			first = err
		}
	}

	if first == nil {
		return nil, &DecodeError{Kind: KindPreambleNotFound, Offset: -1}
	}

	return nil, first
}

func decodeAt(seq bits.Sequence, offset, pos int) (*Frame, error) {
	fail := func(err error, msg string) error {
		kind := KindFraming
		if errors.Is(err, bits.ErrShort) {
			kind = KindTruncatedFrame
		}
		return &DecodeError{Kind: kind, Offset: offset, Msg: msg}
	}

	r := bits.NewReader(seq[pos:])

	length, err := r.ReadUint16()
	if err != nil {
		return nil, fail(err, "length")
	}

	if length > MaxPayloadSize {
		return nil, &DecodeError{
			Kind: KindFraming, Offset: offset, Msg: fmt.Sprintf("length %d over %d", length, MaxPayloadSize),
		}
	}

	p, err := r.ReadBytes(int(length))
	if err != nil {
		return nil, fail(err, fmt.Sprintf("payload of %d bytes", length))
	}

	checksum, err := r.ReadUint16()
	if err != nil {
		return nil, fail(err, "checksum")
	}

	f := &Frame{length: length, payload: p, checksum: checksum}

	if calc := Checksum(f.header(p)); calc != checksum {
		return nil, &DecodeError{
			Kind: KindChecksumMismatch, Offset: offset, Msg: fmt.Sprintf("calculated %04X, received %04X", calc, checksum),
		}
	}

	return f, nil
}
