// Package simulator - hardware free stand-in for the device,
// it hears audio and moves its session like the real firmware should.
package simulator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tonecfg/tonecfg/pkg/audio"
	"github.com/tonecfg/tonecfg/pkg/frame"
	"github.com/tonecfg/tonecfg/pkg/fsk"
	"github.com/tonecfg/tonecfg/pkg/payload"
	"github.com/tonecfg/tonecfg/pkg/probe"
	"github.com/tonecfg/tonecfg/pkg/session"
)

type Handler func(step session.Step, s session.Session)

type Device struct {
	Params fsk.Params

	// Reachability checks the RTMP endpoint on apply, probe.RTMP by default
	Reachability func(ctx context.Context, url string) error

	Log zerolog.Logger

	mu       sync.Mutex
	session  session.Session
	history  session.History
	handlers []Handler
}

func NewDevice(p fsk.Params) *Device {
	return &Device{
		Params:       p,
		Reachability: probe.RTMP,
		Log:          zerolog.Nop(),
		session:      session.New(),
	}
}

func (d *Device) Session() session.Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session
}

func (d *Device) History() session.History {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append(session.History(nil), d.history...)
}

func (d *Device) OnTransition(handler Handler) {
	d.mu.Lock()
	d.handlers = append(d.handlers, handler)
	d.mu.Unlock()
}

// Fire applies any event, handlers are called after the session is updated
func (d *Device) Fire(ev session.Event) error {
	d.mu.Lock()
	prev := d.session
	next, err := session.Transition(prev, ev)
	if err != nil {
		d.mu.Unlock()
		d.Log.Debug().Err(err).Str("id", prev.ID).Msg("[simulator] ignore event")
		return err
	}

	step := session.Step{From: prev.State, Event: ev.Name(), To: next.State}
	d.session = next
	d.history = append(d.history, step)
	handlers := append([]Handler(nil), d.handlers...)
	d.mu.Unlock()

	event := d.Log.Info()
	if next.Reason != "" && next.Reason != prev.Reason {
		event = event.Str("reason", next.Reason)
	}
	event.Str("id", next.ID).Msgf("[simulator] %s", step)

	for _, handler := range handlers {
		handler(step, next)
	}

	return nil
}

func (d *Device) Enable() error {
	return d.Fire(session.EnableProvisioning{})
}

// Hear passes audio to the device. Undecodable audio or invalid payload
// keeps the device listening, the reason is stored in the session.
func (d *Device) Hear(w *fsk.Waveform) error {
	c, err := Receive(w, d.Params)
	if err != nil {
		return d.Fire(session.FrameRejected{Err: err})
	}
	return d.Fire(session.FrameReceived{Payload: c})
}

// Listen records from the source, no frame during timeout fires Timeout
func (d *Device) Listen(ctx context.Context, src audio.Source, timeout time.Duration) error {
	if s := d.Session(); s.State != session.Listening {
		return d.Fire(session.Timeout{}) // returns invalid transition
	}

	w, err := src.Record(ctx, timeout)
	if err != nil {
		return err
	}

	c, err := Receive(w, d.Params)
	switch {
	case err == nil:
		return d.Fire(session.FrameReceived{Payload: c})
	case errors.Is(err, frame.ErrPreambleNotFound):
		return d.Fire(session.Timeout{})
	default:
		return d.Fire(session.FrameRejected{Err: err})
	}
}

// Apply the received payload. RTSP always succeeds, RTMP needs reachable endpoint.
func (d *Device) Apply(ctx context.Context) error {
	s := d.Session()
	if s.State != session.Configuring {
		return d.Fire(session.Applied{}) // returns invalid transition
	}

	if endpoint, ok := s.Payload.Endpoint(); ok && s.Payload.Mode() == payload.ModeRTMPPublish {
		if err := d.Reachability(ctx, endpoint.URL); err != nil {
			return d.Fire(session.ApplyFailed{Reason: err.Error()})
		}
	}

	return d.Fire(session.Applied{})
}

func (d *Device) Retry() error {
	return d.Fire(session.Retry{})
}

func (d *Device) Reset() error {
	return d.Fire(session.Reset{})
}

// Receive decodes audio to a validated payload
func Receive(w *fsk.Waveform, p fsk.Params) (*payload.Config, error) {
	f, err := fsk.Receive(w, p)
	if err != nil {
		return nil, err
	}

	c, err := f.Payload()
	if err != nil {
		return nil, err
	}

	if err = payload.Validate(c); err != nil {
		return nil, err
	}

	return c, nil
}
