package simulate

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"

	"github.com/tonecfg/tonecfg/internal/api/ws"
	"github.com/tonecfg/tonecfg/internal/modem"
	"github.com/tonecfg/tonecfg/pkg/audio"
	"github.com/tonecfg/tonecfg/pkg/session"
	"github.com/tonecfg/tonecfg/pkg/simulator"
)

// WS flow for the web page:
//  1. {"type":"session","value":{"device":"pro"}} - new device, responds with "session"
//  2. {"type":"event","value":{"name":"enable"}}
//  3. {"type":"hear","value":"<base64 WAV>"}
//  4. {"type":"event","value":{"name":"apply"}}
//
// Each transition is pushed as {"type":"transition","value":{"step":...,"session":...}}

var ErrNoSession = errors.New("no session, send session message first")

type deviceKey struct{}

type sessionMsg struct {
	Session session.Session `json:"session"`
	History session.History `json:"history"`
}

type transitionMsg struct {
	Step    session.Step    `json:"step"`
	Session session.Session `json:"session"`
}

func wsSession(tr *ws.Transport, msg *ws.Message) error {
	var req struct {
		Device string `json:"device"`
	}
	if msg.Raw != nil {
		if err := msg.Unmarshal(&req); err != nil {
			return err
		}
	}

	p, err := modem.ParamsFor(req.Device, 0)
	if err != nil {
		return err
	}

	d := simulator.NewDevice(p)
	d.Log = log
	d.OnTransition(func(step session.Step, s session.Session) {
		tr.Write(&ws.Message{Type: "transition", Value: &transitionMsg{Step: step, Session: s}})
	})

	tr.WithContext(func(ctx map[any]any) {
		ctx[deviceKey{}] = d
	})

	s := d.Session()
	log.Debug().Str("id", s.ID).Msg("[simulate] ws session")

	tr.Write(&ws.Message{Type: "session", Value: &sessionMsg{Session: s, History: d.History()}})
	return nil
}

func wsEvent(tr *ws.Transport, msg *ws.Message) error {
	d := device(tr)
	if d == nil {
		return ErrNoSession
	}

	var req struct {
		Name   string `json:"name"`
		Reason string `json:"reason"`
	}
	if err := msg.Unmarshal(&req); err != nil {
		return err
	}

	if req.Name == "apply" {
		ctx, cancel := context.WithCancel(tr.Request.Context())
		defer cancel()
		return d.Apply(ctx)
	}

	ev, err := session.ParseEvent(req.Name, req.Reason)
	if err != nil {
		return err
	}

	return d.Fire(ev)
}

func wsHear(tr *ws.Transport, msg *ws.Message) error {
	d := device(tr)
	if d == nil {
		return ErrNoSession
	}

	b, err := base64.StdEncoding.DecodeString(msg.String())
	if err != nil {
		return err
	}

	w, err := audio.ReadWAV(bytes.NewReader(b))
	if err != nil {
		return err
	}

	return d.Hear(w)
}

func device(tr *ws.Transport) (d *simulator.Device) {
	tr.WithContext(func(ctx map[any]any) {
		d, _ = ctx[deviceKey{}].(*simulator.Device)
	})
	return
}
