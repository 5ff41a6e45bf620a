package bits

// Writer builds a Sequence with UART byte framing:
// start bit (0), 8 data bits MSB first, stop bit (1).
type Writer struct {
	seq Sequence
}

func NewWriter(capacity int) *Writer {
	return &Writer{seq: make(Sequence, 0, capacity)}
}

func (w *Writer) WriteBit(b byte) {
	w.seq = append(w.seq, b&1)
}

func (w *Writer) WriteBits(s Sequence) {
	w.seq = append(w.seq, s...)
}

//goland:noinspection GoStandardMethods
func (w *Writer) WriteByte(b byte) {
	w.seq = append(w.seq, Space)
	for i := 7; i >= 0; i-- {
		w.seq = append(w.seq, (b>>i)&1)
	}
	w.seq = append(w.seq, Mark)
}

func (w *Writer) WriteBytes(b []byte) {
	for _, v := range b {
		w.WriteByte(v)
	}
}

func (w *Writer) WriteUint16(v uint16) {
	w.WriteByte(byte(v >> 8))
	w.WriteByte(byte(v))
}

func (w *Writer) Sequence() Sequence {
	return w.seq
}

// UART returns the framed bits of b.
func UART(b ...byte) Sequence {
	w := NewWriter(len(b) * CellSize)
	w.WriteBytes(b)
	return w.Sequence()
}
