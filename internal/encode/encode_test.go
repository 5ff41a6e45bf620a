package encode

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tonecfg/tonecfg/pkg/audio"
	"github.com/tonecfg/tonecfg/pkg/fsk"
	"github.com/tonecfg/tonecfg/pkg/payload"
	"github.com/tonecfg/tonecfg/pkg/simulator"
)

const rtspYAML = `mode: rtsp
network:
  static:
    ip: 192.168.3.16
    mask: 255.255.255.0
    gateway: 192.168.3.1
    dns: 192.168.3.1
`

func writeFile(t *testing.T, name, data string) string {
	path := filepath.Join(t.TempDir(), name)
	require.Nil(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestEncodeCommand(t *testing.T) {
	path := writeFile(t, "payload.yaml", rtspYAML)
	output := filepath.Join(t.TempDir(), "out.wav")

	err := encodeCommand([]string{path, "-o", output, "-device", "ls2", "-repeat", "1"})
	require.Nil(t, err)

	f, err := os.Open(output)
	require.Nil(t, err)
	defer f.Close()

	w, err := audio.ReadWAV(f)
	require.Nil(t, err)
	require.Equal(t, 16000, w.SampleRate)
	// 948 bits at 50 baud
	require.Equal(t, 18960*time.Millisecond, w.Duration())

	p, err := fsk.Preset("ls2")
	require.Nil(t, err)

	c, err := simulator.Receive(w, p)
	require.Nil(t, err)
	require.Equal(t, "rtsp://192.168.3.16/", c.RTSPURL())
}

func TestEncodeInvalid(t *testing.T) {
	path := writeFile(t, "payload.yaml", rtspYAML+"stream:\n  url: rtmp://example.com/live\n")

	err := encodeCommand([]string{path, "-o", filepath.Join(t.TempDir(), "out.wav")})
	require.ErrorIs(t, err, payload.ErrInconsistentFields)

	err = encodeCommand([]string{path, "-device", "ls9"})
	require.ErrorIs(t, err, fsk.ErrUnknownPreset)

	err = encodeCommand(nil)
	require.NotNil(t, err)
}

func TestAPIEncode(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/encode?device=ls2&repeat=1", bytes.NewBufferString(rtspYAML))
	rr := httptest.NewRecorder()
	apiEncode(rr, r)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "audio/wav", rr.Header().Get("Content-Type"))

	w, err := audio.ReadWAV(rr.Body)
	require.Nil(t, err)
	require.Equal(t, 16000, w.SampleRate)

	p, err := fsk.Preset("ls2")
	require.Nil(t, err)

	c, err := simulator.Receive(w, p)
	require.Nil(t, err)
	require.Equal(t, "rtsp://192.168.3.16/", c.RTSPURL())
}

func TestAPIEncodeInvalid(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/encode", bytes.NewBufferString("mode: rtsp\n"))
	rr := httptest.NewRecorder()
	apiEncode(rr, r)

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var res struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	require.Nil(t, json.NewDecoder(rr.Body).Decode(&res))
	require.Equal(t, "InconsistentFields", res.Kind)

	r = httptest.NewRequest("POST", "/api/encode?repeat=x", bytes.NewBufferString(rtspYAML))
	rr = httptest.NewRecorder()
	apiEncode(rr, r)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	r = httptest.NewRequest("POST", "/api/encode?repeat=1000000", bytes.NewBufferString(rtspYAML))
	rr = httptest.NewRecorder()
	apiEncode(rr, r)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "repeat")

	r = httptest.NewRequest("GET", "/api/encode", nil)
	rr = httptest.NewRecorder()
	apiEncode(rr, r)
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
