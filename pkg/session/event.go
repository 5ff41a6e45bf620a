package session

import (
	"fmt"

	"github.com/tonecfg/tonecfg/pkg/payload"
)

// Event is an external input of the session
type Event interface {
	Name() string
}

// EnableProvisioning - operator switches the device to local mode
type EnableProvisioning struct{}

// FrameReceived - a frame decoded and its payload is valid
type FrameReceived struct {
	Payload *payload.Config
}

// FrameRejected - audio was heard but did not decode or validate
type FrameRejected struct {
	Err error
}

// Timeout - nothing decoded during the caller's listen window
type Timeout struct{}

type Applied struct{}

type ApplyFailed struct {
	Reason string
}

type Retry struct{}

type Reset struct{}

func (EnableProvisioning) Name() string { return "enable" }
func (FrameReceived) Name() string      { return "frame_received" }
func (FrameRejected) Name() string      { return "frame_rejected" }
func (Timeout) Name() string            { return "timeout" }
func (Applied) Name() string            { return "applied" }
func (ApplyFailed) Name() string        { return "apply_failed" }
func (Retry) Name() string              { return "retry" }
func (Reset) Name() string              { return "reset" }

// ParseEvent for operator events, reason is used by apply_failed only.
// Frame events come from the decoder and can't be parsed.
func ParseEvent(name, reason string) (Event, error) {
	switch name {
	case "enable":
		return EnableProvisioning{}, nil
	case "timeout":
		return Timeout{}, nil
	case "applied":
		return Applied{}, nil
	case "apply_failed":
		return ApplyFailed{Reason: reason}, nil
	case "retry":
		return Retry{}, nil
	case "reset":
		return Reset{}, nil
	}
	return nil, fmt.Errorf("session: unknown event %q", name)
}
