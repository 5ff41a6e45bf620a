package fsk

import "github.com/tonecfg/tonecfg/pkg/frame"

// Receive demodulates audio and decodes the first valid frame
func Receive(w *Waveform, p Params) (*frame.Frame, error) {
	return frame.Decode(Demodulate(w, p))
}
