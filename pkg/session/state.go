package session

import "fmt"

type State byte

const (
	Offline State = iota
	Listening
	Configuring
	RTSPServing
	RTMPPublishing
	Failed
)

var stateNames = [...]string{
	Offline:        "OFFLINE",
	Listening:      "LISTENING",
	Configuring:    "CONFIGURING",
	RTSPServing:    "RTSP_SERVING",
	RTMPPublishing: "RTMP_PUBLISHING",
	Failed:         "FAILED",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("STATE(%d)", s)
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Serving - device streams with the provisioned config
func (s State) Serving() bool {
	return s == RTSPServing || s == RTMPPublishing
}
