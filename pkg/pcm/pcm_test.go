package pcm

import (
	"encoding/hex"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromFloat(t *testing.T) {
	s := FromFloat([]float64{0, 1, -1, 0.5, 2, -2})
	require.Equal(t, []int16{0, 32767, -32767, 16384, 32767, -32768}, s)

	f := ToFloat([]int16{0, 32767, -32767})
	require.Equal(t, []float64{0, 1, -1}, f)
}

func TestDownmix(t *testing.T) {
	require.Equal(t, []int16{15, -5}, Downmix([]int16{10, 20, -10, 0}, 2))
	require.Equal(t, []int16{1, 2}, Downmix([]int16{1, 2}, 1))
}

func TestLittleEndian(t *testing.T) {
	b := LittleEndian([]int16{0x0102, -2})
	require.Equal(t, "0201feff", hex.EncodeToString(b))
	require.Equal(t, []int16{0x0102, -2}, FromLittleEndian(b))

	// odd tail byte is dropped
	require.Equal(t, []int16{0x0102}, FromLittleEndian([]byte{2, 1, 9}))
}

func TestPeaksRMS(t *testing.T) {
	samples := make([]int16, 441)
	for i := range samples {
		samples[i] = int16(10000 * math.Sin(2*math.Pi*1000*float64(i)/44100))
	}

	rms := PeaksRMS(samples)
	require.InDelta(t, 10000, int(rms), 300)
	require.Equal(t, int16(0), PeaksRMS(make([]int16, 10)))
}

func TestDBFS(t *testing.T) {
	require.Equal(t, 0.0, DBFS(32767))
	require.InDelta(t, -6.02, DBFS(16384), 0.01)
	require.True(t, math.IsInf(DBFS(0), -1))
}
