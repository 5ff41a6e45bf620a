package fsk

import (
	"time"

	"github.com/tonecfg/tonecfg/pkg/pcm"
)

// Waveform - mono samples in [-1, 1]
type Waveform struct {
	SampleRate int
	Samples    []float64
}

func FromPCM(sampleRate int, samples []int16) *Waveform {
	return &Waveform{SampleRate: sampleRate, Samples: pcm.ToFloat(samples)}
}

func (w *Waveform) PCM() []int16 {
	return pcm.FromFloat(w.Samples)
}

func (w *Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(w.Samples)) * time.Second / time.Duration(w.SampleRate)
}
