// Package session - device side provisioning state machine.
//
//	OFFLINE --enable--> LISTENING --frame_received--> CONFIGURING --applied--> RTSP_SERVING | RTMP_PUBLISHING
//	LISTENING --frame_rejected | timeout--> LISTENING
//	CONFIGURING --apply_failed--> FAILED --retry--> LISTENING
//	RTSP_SERVING | RTMP_PUBLISHING --reset--> OFFLINE
//
// Session is a value owned by the caller, Transition never changes its input.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tonecfg/tonecfg/pkg/payload"
)

type Session struct {
	ID       string          `json:"id"`
	State    State           `json:"state"`
	Payload  *payload.Config `json:"-"`
	Reason   string          `json:"reason,omitempty"`   // last rejected frame or apply failure
	Attempts int             `json:"attempts,omitempty"` // rejected frames and timeouts while listening
}

var ErrInvalidTransition = errors.New("session: invalid transition")

func New() Session {
	return Session{ID: uuid.NewString(), State: Offline}
}

func Transition(s Session, ev Event) (Session, error) {
	if ev == nil {
		return s, fmt.Errorf("%w: no event", ErrInvalidTransition)
	}

	switch s.State {
	case Offline:
		if _, ok := ev.(EnableProvisioning); ok {
			return listening(s), nil
		}

	case Listening:
		switch ev := ev.(type) {
		case FrameReceived:
			if ev.Payload != nil {
				s.State = Configuring
				s.Payload = ev.Payload
				s.Reason = ""
				return s, nil
			}
		case FrameRejected:
			s.Attempts++
			s.Reason = "frame rejected"
			if ev.Err != nil {
				s.Reason = ev.Err.Error()
			}
			return s, nil
		case Timeout:
			s.Attempts++
			s.Reason = "timeout"
			return s, nil
		}

	case Configuring:
		switch ev := ev.(type) {
		case Applied:
			if s.Payload.Mode() == payload.ModeRTMPPublish {
				s.State = RTMPPublishing
			} else {
				s.State = RTSPServing
			}
			return s, nil
		case ApplyFailed:
			s.State = Failed
			s.Reason = ev.Reason
			return s, nil
		}

	case Failed:
		if _, ok := ev.(Retry); ok {
			return listening(s), nil
		}

	case RTSPServing, RTMPPublishing:
		if _, ok := ev.(Reset); ok {
			return Session{ID: s.ID, State: Offline}, nil
		}
	}

	return s, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, ev.Name(), s.State)
}

func listening(s Session) Session {
	return Session{ID: s.ID, State: Listening}
}

// Step of the session history
type Step struct {
	From  State  `json:"from"`
	Event string `json:"event"`
	To    State  `json:"to"`
}

func (s Step) String() string {
	return s.From.String() + " --" + s.Event + "--> " + s.To.String()
}

type History []Step

func (h History) String() string {
	lines := make([]string, len(h))
	for i, step := range h {
		lines[i] = step.String()
	}
	return strings.Join(lines, "\n")
}

// Replay applies events in order and stops on the first invalid one
func Replay(s Session, events ...Event) (Session, History, error) {
	history := make(History, 0, len(events))
	for _, ev := range events {
		next, err := Transition(s, ev)
		if err != nil {
			return s, history, err
		}
		history = append(history, Step{From: s.State, Event: ev.Name(), To: next.State})
		s = next
	}
	return s, history, nil
}
