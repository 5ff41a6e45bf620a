package fsk

import (
	"math"

	"github.com/tonecfg/tonecfg/pkg/bits"
)

const (
	squelchRatio = 0.1
	squelchFloor = 1e-4

	coreFrom = 0.15 // symbol core, away from the ramps
	coreTo   = 0.85

	votes       = 3
	timingSteps = 32
)

// Demodulate converts audio back to bits. Decisions compare mark and space energy,
// so the result does not depend on the input level.
// Leading silence is skipped. Carrier loss ends the sequence, except with p.Repeat > 1
// where silence between copies is bridged.
func Demodulate(w *Waveform, p Params) bits.Sequence {
	sampleRate := w.SampleRate
	if sampleRate <= 0 {
		sampleRate = p.SampleRate
	}

	d := &demodulator{
		x:     removeDC(w.Samples),
		sps:   p.symbolLen(sampleRate),
		mark:  coefficient(p.MarkFrequency, sampleRate),
		space: coefficient(p.SpaceFrequency, sampleRate),
	}

	if len(d.x) == 0 || d.sps < votes {
		return nil
	}

	d.threshold = math.Max(squelchRatio*d.peak(), squelchFloor)

	return d.slice(d.timing(), p.repeat() > 1)
}

type demodulator struct {
	x   []float64
	sps float64

	mark, space float64 // goertzel coefficients

	threshold float64
}

// core of the i-th symbol for timing offset, nil if it is outside the signal
func (d *demodulator) core(offset float64, i int) []float64 {
	start := offset + float64(i)*d.sps
	from := int(start + coreFrom*d.sps)
	to := int(start + coreTo*d.sps)
	if from < 0 || to > len(d.x) {
		return nil
	}
	return d.x[from:to]
}

// peak RMS of symbol core sized windows
func (d *demodulator) peak() (peak float64) {
	size := int((coreTo - coreFrom) * d.sps)
	step := size / 4
	if step < 1 {
		step = 1
	}
	for i := 0; i+size <= len(d.x); i += step {
		if v := rms(d.x[i : i+size]); v > peak {
			peak = v
		}
	}
	return
}

// timing selects the symbol offset with the best mark/space contrast
func (d *demodulator) timing() (best float64) {
	bestScore := -1.0

	for step := 0; step < timingSteps; step++ {
		offset := float64(step) * d.sps / timingSteps

		var score float64
		for i := -1; ; i++ {
			core := d.core(offset, i)
			if core == nil {
				if i < 0 {
					continue
				}
				break
			}
			if rms(core) < d.threshold {
				continue
			}
			m, s := goertzel(core, d.mark), goertzel(core, d.space)
			if m+s > 0 {
				score += math.Abs(m-s) / (m + s)
			}
		}

		if score > bestScore {
			best, bestScore = offset, score
		}
	}

	return
}

func (d *demodulator) slice(offset float64, bridge bool) bits.Sequence {
	var seq bits.Sequence

	for i := -1; ; i++ {
		core := d.core(offset, i)
		if core == nil {
			if i < 0 {
				continue
			}
			break
		}

		if rms(core) < d.threshold {
			if seq != nil && !bridge {
				break
			}
			continue
		}

		seq = append(seq, d.decide(core))
	}

	return seq
}

// decide - majority vote of sub windows
func (d *demodulator) decide(core []float64) byte {
	size := len(core) / votes

	var marks int
	for i := 0; i < votes; i++ {
		sub := core[i*size : (i+1)*size]
		if goertzel(sub, d.mark) > goertzel(sub, d.space) {
			marks++
		}
	}

	if marks*2 > votes {
		return bits.Mark
	}
	return bits.Space
}

func coefficient(freq float64, sampleRate int) float64 {
	return 2 * math.Cos(2*math.Pi*freq/float64(sampleRate))
}

// goertzel returns signal power at the coefficient frequency
func goertzel(x []float64, coeff float64) float64 {
	var s1, s2 float64
	for _, v := range x {
		s1, s2 = v+coeff*s1-s2, s1
	}
	return s1*s1 + s2*s2 - coeff*s1*s2
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func removeDC(src []float64) []float64 {
	if len(src) == 0 {
		return nil
	}

	var mean float64
	for _, v := range src {
		mean += v
	}
	mean /= float64(len(src))

	dst := make([]float64, len(src))
	for i, v := range src {
		dst[i] = v - mean
	}
	return dst
}
