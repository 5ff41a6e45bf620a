// Package fsk - binary FSK modulator and demodulator for the audio link
package fsk

import (
	"math"
	"runtime"

	"github.com/tonecfg/tonecfg/pkg/bits"
	"github.com/tonecfg/tonecfg/pkg/frame"
	"golang.org/x/sync/errgroup"
)

// Modulate renders the frame bits, p must be valid
func Modulate(f *frame.Frame, p Params) *Waveform {
	return ModulateBits(f.Bits(), p)
}

// ModulateBits renders each bit as a tone burst with raised cosine edges.
// Copies are separated by Gap rounded up to whole symbols, so all copies share symbol timing.
func ModulateBits(seq bits.Sequence, p Params) *Waveform {
	sps := p.symbolLen(p.SampleRate)
	size := symbolStart(len(seq), sps)

	gap := 0
	if p.Gap > 0 {
		symbols := math.Ceil(p.Gap.Seconds() * p.SymbolRate)
		gap = symbolStart(int(symbols), sps)
	}

	repeat := p.repeat()
	samples := make([]float64, repeat*size+(repeat-1)*gap)

	render(samples[:size], seq, p, sps)

	for i := 1; i < repeat; i++ {
		copy(samples[i*(size+gap):], samples[:size])
	}

	return &Waveform{SampleRate: p.SampleRate, Samples: samples}
}

func symbolStart(i int, sps float64) int {
	return int(math.Round(float64(i) * sps))
}

// render splits symbols between workers, every sample is written by one worker only
func render(dst []float64, seq bits.Sequence, p Params, sps float64) {
	workers := runtime.GOMAXPROCS(0)
	chunk := (len(seq) + workers - 1) / workers
	if chunk < 64 {
		chunk = 64
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for from := 0; from < len(seq); from += chunk {
		from, to := from, from+chunk
		if to > len(seq) {
			to = len(seq)
		}
		g.Go(func() error {
			for i := from; i < to; i++ {
				renderSymbol(dst[symbolStart(i, sps):symbolStart(i+1, sps)], seq[i], p)
			}
			return nil
		})
	}

	_ = g.Wait()
}

func renderSymbol(dst []float64, bit byte, p Params) {
	freq := p.SpaceFrequency
	if bit == bits.Mark {
		freq = p.MarkFrequency
	}

	w := 2 * math.Pi * freq / float64(p.SampleRate)
	n := len(dst)
	ramp := int(p.Ramp * float64(n))

	for k := range dst {
		v := p.Amplitude * math.Sin(w*float64(k))

		switch {
		case k < ramp:
			v *= 0.5 * (1 - math.Cos(math.Pi*float64(k)/float64(ramp)))
		case k >= n-ramp:
			v *= 0.5 * (1 - math.Cos(math.Pi*float64(n-1-k)/float64(ramp)))
		}

		dst[k] = v
	}
}
