package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tonecfg/tonecfg/pkg/payload"
)

func rtmpPayload(t *testing.T) *payload.Config {
	c, err := payload.Build(payload.Spec{
		Mode:    payload.ModeRTMPPublish,
		Network: payload.Network{WiFi: &payload.WiFi{SSID: "studio", PSK: "correct horse"}},
		Stream:  &payload.Endpoint{URL: "rtmp://192.168.3.2/live", Key: "cam1"},
	})
	require.Nil(t, err)
	return c
}

func rtspPayload(t *testing.T) *payload.Config {
	c, err := payload.Build(payload.Spec{
		Mode: payload.ModeRTSPServe,
		Network: payload.Network{
			Static: &payload.StaticIP{IP: "192.168.3.16", Mask: "255.255.255.0"},
		},
	})
	require.Nil(t, err)
	return c
}

func TestNew(t *testing.T) {
	s1, s2 := New(), New()
	require.Equal(t, Offline, s1.State)
	require.Len(t, s1.ID, 36)
	require.NotEqual(t, s1.ID, s2.ID)
}

func TestRTMPPublishing(t *testing.T) {
	s, history, err := Replay(New(),
		EnableProvisioning{},
		Timeout{},
		FrameRejected{Err: errors.New("checksum mismatch")},
		FrameReceived{Payload: rtmpPayload(t)},
		Applied{},
	)
	require.Nil(t, err)
	require.Equal(t, RTMPPublishing, s.State)
	require.Equal(t, 2, s.Attempts)
	require.True(t, s.State.Serving())
	require.Len(t, history, 5)
	require.Equal(t, "LISTENING --frame_received--> CONFIGURING", history[3].String())
}

func TestRTSPServing(t *testing.T) {
	s, _, err := Replay(New(), EnableProvisioning{}, FrameReceived{Payload: rtspPayload(t)}, Applied{})
	require.Nil(t, err)
	require.Equal(t, RTSPServing, s.State)

	s, err = Transition(s, Reset{})
	require.Nil(t, err)
	require.Equal(t, Offline, s.State)
	require.Nil(t, s.Payload)
}

func TestFailedRetry(t *testing.T) {
	s, _, err := Replay(New(),
		EnableProvisioning{},
		FrameReceived{Payload: rtmpPayload(t)},
		ApplyFailed{Reason: "endpoint unreachable"},
	)
	require.Nil(t, err)
	require.Equal(t, Failed, s.State)
	require.Equal(t, "endpoint unreachable", s.Reason)

	s, err = Transition(s, Retry{})
	require.Nil(t, err)
	require.Equal(t, Listening, s.State)
	require.Nil(t, s.Payload)
	require.Empty(t, s.Reason)
}

func TestListeningStays(t *testing.T) {
	s, _, err := Replay(New(), EnableProvisioning{}, Timeout{}, Timeout{})
	require.Nil(t, err)
	require.Equal(t, Listening, s.State)
	require.Equal(t, 2, s.Attempts)
	require.Equal(t, "timeout", s.Reason)
}

func TestInvalidTransition(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
	}{
		{"frame while offline", []Event{FrameReceived{Payload: rtspPayload(t)}}},
		{"apply while listening", []Event{EnableProvisioning{}, Applied{}}},
		{"retry while listening", []Event{EnableProvisioning{}, Retry{}}},
		{"enable twice", []Event{EnableProvisioning{}, EnableProvisioning{}}},
		{"empty frame", []Event{EnableProvisioning{}, FrameReceived{}}},
		{"reset while configuring", []Event{EnableProvisioning{}, FrameReceived{Payload: rtspPayload(t)}, Reset{}}},
		{"timeout while serving", []Event{EnableProvisioning{}, FrameReceived{Payload: rtspPayload(t)}, Applied{}, Timeout{}}},
		{"nil event", []Event{nil}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			events := test.events[:len(test.events)-1]
			last := test.events[len(test.events)-1]

			before, _, err := Replay(New(), events...)
			require.Nil(t, err)

			after, err := Transition(before, last)
			require.ErrorIs(t, err, ErrInvalidTransition)
			require.Equal(t, before, after)
		})
	}
}

func TestImmutable(t *testing.T) {
	s := New()
	s2, err := Transition(s, EnableProvisioning{})
	require.Nil(t, err)
	require.Equal(t, Offline, s.State)
	require.Equal(t, Listening, s2.State)
	require.Equal(t, s.ID, s2.ID)
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent("apply_failed", "no route")
	require.Nil(t, err)
	require.Equal(t, ApplyFailed{Reason: "no route"}, ev)

	ev, err = ParseEvent("enable", "")
	require.Nil(t, err)
	require.Equal(t, "enable", ev.Name())

	_, err = ParseEvent("frame_received", "")
	require.NotNil(t, err)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "RTMP_PUBLISHING", RTMPPublishing.String())
	require.Equal(t, "STATE(9)", State(9).String())
}
