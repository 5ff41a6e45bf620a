package pcm

func LittleEndian(src []int16) []byte {
	var i int
	dst := make([]byte, len(src)*2)
	for _, sample := range src {
		dst[i] = byte(sample)
		i++
		dst[i] = byte(sample >> 8)
		i++
	}
	return dst
}

func FromLittleEndian(src []byte) []int16 {
	var i, j int
	n := len(src) &^ 1
	dst := make([]int16, n/2)
	for i < n {
		lo := src[i]
		i++
		hi := src[i]
		i++
		dst[j] = int16(hi)<<8 | int16(lo)
		j++
	}
	return dst
}

// PeaksRMS - level of a tone from the average of its peaks
func PeaksRMS(samples []int16) int16 {
	// RMS of sine wave = peak / sqrt2
	// https://en.wikipedia.org/wiki/Root_mean_square
	var peaks, peaksSum int64
	var prevSample int16
	var prevUp bool

	for i, sample := range samples {
		up := sample >= prevSample

		if i >= 2 && up != prevUp {
			if prevSample >= 0 {
				peaksSum += int64(prevSample)
			} else {
				peaksSum -= int64(prevSample)
			}
			peaks++
		}

		prevSample = sample
		prevUp = up
	}

	if peaks == 0 {
		return 0
	}

	return int16(peaksSum / peaks)
}
