package bits

import "errors"

// CellSize - bits on air per UART framed byte
const CellSize = 10

var (
	ErrShort   = errors.New("bits: sequence too short")
	ErrFraming = errors.New("bits: bad start or stop bit")
)

type Reader struct {
	seq Sequence
	pos int
}

func NewReader(s Sequence) *Reader {
	return &Reader{seq: s}
}

//goland:noinspection GoStandardMethods
func (r *Reader) ReadByte() (byte, error) {
	if r.pos+CellSize > len(r.seq) {
		return 0, ErrShort
	}

	cell := r.seq[r.pos : r.pos+CellSize]
	if cell[0] != Space || cell[CellSize-1] != Mark {
		return 0, ErrFraming
	}

	var b byte
	for _, bit := range cell[1:9] {
		b = b<<1 | bit&1
	}

	r.pos += CellSize
	return b, nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	hi, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	lo, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (r *Reader) ReadBytes(n int) ([]byte, error) {
	// check the whole size first, so truncation is reported before framing
	if r.pos+n*CellSize > len(r.seq) {
		return nil, ErrShort
	}

	b := make([]byte, n)
	for i := range b {
		var err error
		if b[i], err = r.ReadByte(); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Left returns the count of bits not read yet.
func (r *Reader) Left() int {
	return len(r.seq) - r.pos
}

func (r *Reader) Pos() int {
	return r.pos
}
