package audio

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/tonecfg/tonecfg/pkg/fsk"
)

// Loopback connects Sink to Source in memory with the impairments of
// a speaker to microphone path
type Loopback struct {
	Gain    float64       // 0 means 1
	Offset  float64       // DC offset
	Noise   float64       // gaussian noise deviation
	Silence time.Duration // before the signal
	Cut     float64       // share of the signal that is heard, 0 means all
	Seed    int64

	mu    sync.Mutex
	queue []*fsk.Waveform
	ready chan struct{}
}

func (l *Loopback) Play(ctx context.Context, w *fsk.Waveform) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	heard := l.impair(w)

	l.mu.Lock()
	l.queue = append(l.queue, heard)
	l.signal()
	l.mu.Unlock()

	return nil
}

// Record returns the next played waveform or empty waveform after d
func (l *Loopback) Record(ctx context.Context, d time.Duration) (*fsk.Waveform, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		l.mu.Lock()
		if len(l.queue) > 0 {
			w := l.queue[0]
			l.queue = l.queue[1:]
			l.mu.Unlock()
			return w, nil
		}
		if l.ready == nil {
			l.ready = make(chan struct{})
		}
		ready := l.ready
		l.mu.Unlock()

		select {
		case <-ready:
		case <-timer.C:
			return &fsk.Waveform{}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// signal wakes up waiting Record, must be called under lock
func (l *Loopback) signal() {
	if l.ready != nil {
		close(l.ready)
		l.ready = nil
	}
}

func (l *Loopback) impair(w *fsk.Waveform) *fsk.Waveform {
	src := w.Samples
	if l.Cut > 0 && l.Cut < 1 {
		src = src[:int(l.Cut*float64(len(src)))]
	}

	gain := l.Gain
	if gain == 0 {
		gain = 1
	}

	rnd := rand.New(rand.NewSource(l.Seed))

	lead := int(l.Silence.Seconds() * float64(w.SampleRate))
	dst := make([]float64, lead+len(src))
	copy(dst[lead:], src)

	for i, v := range dst {
		v = v*gain + l.Offset
		if l.Noise > 0 {
			v += rnd.NormFloat64() * l.Noise
		}
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		dst[i] = v
	}

	return &fsk.Waveform{SampleRate: w.SampleRate, Samples: dst}
}
