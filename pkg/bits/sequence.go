package bits

// Sequence is an ordered run of symbols, one bit per element (0 or 1).
type Sequence []byte

const (
	Space byte = 0
	Mark  byte = 1
)

// Idle returns n mark bits (line idle state).
func Idle(n int) Sequence {
	s := make(Sequence, n)
	for i := range s {
		s[i] = Mark
	}
	return s
}

func (s Sequence) String() string {
	b := make([]byte, len(s))
	for i, v := range s {
		b[i] = '0' + v&1
	}
	return string(b)
}

// Parse converts "0110..." back to a Sequence, other chars are skipped.
func Parse(s string) Sequence {
	seq := make(Sequence, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			seq = append(seq, Space)
		case '1':
			seq = append(seq, Mark)
		}
	}
	return seq
}

// Index returns the position of the first occurrence of sub at or after from, or -1.
func (s Sequence) Index(sub Sequence, from int) int {
	for i := from; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)].Equal(sub) {
			return i
		}
	}
	return -1
}

func (s Sequence) Equal(other Sequence) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// RunBefore counts consecutive bits equal to v that end right before pos.
func (s Sequence) RunBefore(pos int, v byte) (n int) {
	for i := pos - 1; i >= 0 && s[i] == v; i-- {
		n++
	}
	return
}
