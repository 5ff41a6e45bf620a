// Package pcm - signed 16 bit linear PCM helpers
package pcm

import "math"

// FromFloat converts [-1, 1] samples to s16, out of range values are clipped
func FromFloat(src []float64) []int16 {
	dst := make([]int16, len(src))
	for i, v := range src {
		v = math.Round(v * math.MaxInt16)
		switch {
		case v > math.MaxInt16:
			v = math.MaxInt16
		case v < math.MinInt16:
			v = math.MinInt16
		}
		dst[i] = int16(v)
	}
	return dst
}

func ToFloat(src []int16) []float64 {
	dst := make([]float64, len(src))
	for i, v := range src {
		dst[i] = float64(v) / math.MaxInt16
	}
	return dst
}

// Downmix averages interleaved channels to mono
func Downmix(src []int16, channels int) []int16 {
	if channels <= 1 {
		return src
	}

	dst := make([]int16, len(src)/channels)
	for i := range dst {
		var sum int32
		for _, v := range src[i*channels : (i+1)*channels] {
			sum += int32(v)
		}
		dst[i] = int16(sum / int32(channels))
	}
	return dst
}

// DBFS converts s16 level to decibels relative to full scale
func DBFS(level int16) float64 {
	if level <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(float64(level)/math.MaxInt16)
}
