package fsk

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Params of the binary FSK link. Mark is bit 1, space is bit 0.
type Params struct {
	SampleRate     int           `yaml:"sample_rate" json:"sample_rate"`
	SymbolRate     float64       `yaml:"symbol_rate" json:"symbol_rate"` // baud
	MarkFrequency  float64       `yaml:"mark" json:"mark"`
	SpaceFrequency float64       `yaml:"space" json:"space"`
	Amplitude      float64       `yaml:"amplitude" json:"amplitude"`
	Ramp           float64       `yaml:"ramp" json:"ramp"` // rise and fall time, share of a symbol
	Repeat         int           `yaml:"repeat" json:"repeat"`
	Gap            time.Duration `yaml:"gap" json:"gap"` // silence between copies
}

// DefaultParams - Bell 202 tone pair at 50 baud
func DefaultParams() Params {
	return Params{
		SampleRate:     44100,
		SymbolRate:     50,
		MarkFrequency:  1200,
		SpaceFrequency: 2200,
		Amplitude:      0.5,
		Ramp:           0.1,
		Repeat:         1,
	}
}

// sample rates of the vendor device families
var presets = map[string]int{
	"ls2": 16000,
	"pro": 44100,
	"lsx": 48000,
}

var ErrUnknownPreset = errors.New("fsk: unknown device preset")

// Preset returns DefaultParams with the sample rate of a device family
func Preset(name string) (Params, error) {
	p := DefaultParams()
	if name == "" {
		return p, nil
	}
	rate, ok := presets[name]
	if !ok {
		return p, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	p.SampleRate = rate
	return p, nil
}

func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Limits keep a rendered waveform in memory bounds
const (
	MaxSampleRate = 192000
	MinSymbolRate = 10
	MaxRepeat     = 10
	MaxGap        = 10 * time.Second
)

func (p Params) Validate() error {
	switch {
	case p.SampleRate <= 0 || p.SampleRate > MaxSampleRate:
		return fmt.Errorf("fsk: wrong sample rate %d", p.SampleRate)
	case p.SymbolRate < MinSymbolRate:
		return fmt.Errorf("fsk: wrong symbol rate %g", p.SymbolRate)
	case p.SymbolRate > float64(p.SampleRate)/8:
		return fmt.Errorf("fsk: symbol rate %g is too high for %d Hz", p.SymbolRate, p.SampleRate)
	}

	nyquist := float64(p.SampleRate) / 2
	for _, f := range []float64{p.MarkFrequency, p.SpaceFrequency} {
		if f <= 0 || f >= nyquist {
			return fmt.Errorf("fsk: tone %g Hz is outside (0, %g)", f, nyquist)
		}
	}

	switch {
	case p.MarkFrequency == p.SpaceFrequency:
		return errors.New("fsk: mark and space tones are equal")
	case math.Abs(p.MarkFrequency-p.SpaceFrequency) < p.SymbolRate:
		return fmt.Errorf("fsk: tone spacing is less than symbol rate %g", p.SymbolRate)
	case p.Amplitude <= 0 || p.Amplitude > 1:
		return fmt.Errorf("fsk: amplitude %g is outside (0, 1]", p.Amplitude)
	case p.Ramp < 0 || p.Ramp > 0.5:
		return fmt.Errorf("fsk: ramp %g is outside [0, 0.5]", p.Ramp)
	case p.Repeat < 0 || p.Repeat > MaxRepeat:
		return fmt.Errorf("fsk: wrong repeat %d, max %d", p.Repeat, MaxRepeat)
	case p.Gap < 0 || p.Gap > MaxGap:
		return fmt.Errorf("fsk: wrong gap %s", p.Gap)
	}

	return nil
}

// symbolLen in samples, may be fractional
func (p Params) symbolLen(sampleRate int) float64 {
	return float64(sampleRate) / p.SymbolRate
}

func (p Params) repeat() int {
	if p.Repeat < 1 {
		return 1
	}
	return p.Repeat
}
