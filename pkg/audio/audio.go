// Package audio - output to the device and input from a microphone
package audio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/tonecfg/tonecfg/pkg/fsk"
	"github.com/tonecfg/tonecfg/pkg/pcm"
	"github.com/tonecfg/tonecfg/pkg/wav"
)

type Sink interface {
	Play(ctx context.Context, w *fsk.Waveform) error
}

type Source interface {
	// Record returns up to d of audio, empty waveform if nothing was heard
	Record(ctx context.Context, d time.Duration) (*fsk.Waveform, error)
}

var ErrEmpty = errors.New("audio: no samples")

func WriteWAV(w io.Writer, wf *fsk.Waveform) error {
	return wav.Write(w, wf.SampleRate, wf.PCM())
}

// ReadWAV reads 16 bit PCM, stereo is downmixed to mono
func ReadWAV(r io.Reader) (*fsk.Waveform, error) {
	a, err := wav.Read(r)
	if err != nil {
		return nil, err
	}
	samples := pcm.Downmix(a.Samples, int(a.Channels))
	return fsk.FromPCM(int(a.SampleRate), samples), nil
}

func EncodeWAV(wf *fsk.Waveform) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 44+2*len(wf.Samples)))
	_ = WriteWAV(buf, wf)
	return buf.Bytes()
}

// Level in dBFS by average peaks, -inf for silence
func Level(wf *fsk.Waveform) float64 {
	return pcm.DBFS(pcm.PeaksRMS(wf.PCM()))
}

type FileSink struct {
	Path string
}

func (s *FileSink) Play(ctx context.Context, w *fsk.Waveform) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(s.Path, EncodeWAV(w), 0644)
}

type FileSource struct {
	Path string
}

// Record reads the whole file, d limits the result if positive
func (s *FileSource) Record(ctx context.Context, d time.Duration) (*fsk.Waveform, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	w, err := ReadWAV(f)
	if err != nil {
		return nil, err
	}

	return Trim(w, d), nil
}

// Trim waveform to d, d <= 0 keeps everything
func Trim(w *fsk.Waveform, d time.Duration) *fsk.Waveform {
	if d <= 0 {
		return w
	}
	if n := int(d.Seconds() * float64(w.SampleRate)); n < len(w.Samples) {
		return &fsk.Waveform{SampleRate: w.SampleRate, Samples: w.Samples[:n]}
	}
	return w
}
