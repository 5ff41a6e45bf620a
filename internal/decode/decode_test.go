package decode

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tonecfg/tonecfg/pkg/audio"
	"github.com/tonecfg/tonecfg/pkg/frame"
	"github.com/tonecfg/tonecfg/pkg/fsk"
	"github.com/tonecfg/tonecfg/pkg/payload"
)

func testPayload(t *testing.T) *payload.Config {
	c, err := payload.Build(payload.Spec{
		Mode:    payload.ModeRTMPPublish,
		Network: payload.Network{WiFi: &payload.WiFi{SSID: "studio", PSK: "correct horse"}},
		Stream:  &payload.Endpoint{URL: "rtmp://192.168.3.2/live", Key: "cam1"},
	})
	require.Nil(t, err)
	return c
}

func writeWAV(t *testing.T, w *fsk.Waveform) string {
	path := filepath.Join(t.TempDir(), "audio.wav")
	require.Nil(t, os.WriteFile(path, audio.EncodeWAV(w), 0644))
	return path
}

func TestDecodeCommand(t *testing.T) {
	out := bytes.NewBuffer(nil)
	Output = out
	defer func() { Output = os.Stdout }()

	w := fsk.Modulate(frame.Encode(testPayload(t)), fsk.DefaultParams())
	require.Nil(t, decodeCommand([]string{writeWAV(t, w)}))

	c, err := payload.Parse(out.Bytes())
	require.Nil(t, err)
	require.True(t, testPayload(t).Equal(c))
}

func TestDecodeTruncated(t *testing.T) {
	Output = bytes.NewBuffer(nil)
	defer func() { Output = os.Stdout }()

	w := fsk.Modulate(frame.Encode(testPayload(t)), fsk.DefaultParams())
	w.Samples = w.Samples[:len(w.Samples)/3]

	err := decodeCommand([]string{writeWAV(t, w)})
	require.ErrorIs(t, err, frame.ErrTruncatedFrame)
	require.Contains(t, err.Error(), "TruncatedFrame")
}

func TestDecodeSilence(t *testing.T) {
	w := &fsk.Waveform{SampleRate: 44100, Samples: make([]float64, 44100)}

	f, c, err := Decode(w, fsk.DefaultParams())
	require.Nil(t, f)
	require.Nil(t, c)
	require.ErrorIs(t, err, frame.ErrPreambleNotFound)
	require.Equal(t, "PreambleNotFound", Kind(err))
}

func TestResult(t *testing.T) {
	spec := testPayload(t).Spec()
	spec.Network.WiFi.SSID = ""
	f := frame.FromBytes(payload.Marshal(payload.New(spec)))

	f2, c, err := Decode(fsk.Modulate(f, fsk.DefaultParams()), fsk.DefaultParams())
	require.ErrorIs(t, err, payload.ErrInvalidField)

	r := NewResult(f2, c, err)
	require.Equal(t, "InvalidField", r.Kind)
	require.Equal(t, f.Length(), r.Length)
	require.NotNil(t, r.Payload)
	require.Equal(t, payload.ModeRTMPPublish, r.Payload.Mode)
}

func TestAPIDecode(t *testing.T) {
	w := fsk.Modulate(frame.Encode(testPayload(t)), fsk.DefaultParams())

	r := httptest.NewRequest("POST", "/api/decode", bytes.NewReader(audio.EncodeWAV(w)))
	rr := httptest.NewRecorder()
	apiDecode(rr, r)

	require.Equal(t, http.StatusOK, rr.Code)

	var res Result
	require.Nil(t, json.NewDecoder(rr.Body).Decode(&res))
	require.Empty(t, res.Error)
	require.NotNil(t, res.Payload)
	require.Equal(t, "studio", res.Payload.Network.WiFi.SSID)
	require.Equal(t, frame.Encode(testPayload(t)).Length(), res.Length)
}

func TestAPIDecodeTruncated(t *testing.T) {
	w := fsk.Modulate(frame.Encode(testPayload(t)), fsk.DefaultParams())
	w.Samples = w.Samples[:len(w.Samples)/3]

	r := httptest.NewRequest("POST", "/api/decode", bytes.NewReader(audio.EncodeWAV(w)))
	rr := httptest.NewRecorder()
	apiDecode(rr, r)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var res Result
	require.Nil(t, json.NewDecoder(rr.Body).Decode(&res))
	require.Equal(t, "TruncatedFrame", res.Kind)
	require.Nil(t, res.Payload)

	r = httptest.NewRequest("POST", "/api/decode", bytes.NewBufferString("not a wav"))
	rr = httptest.NewRecorder()
	apiDecode(rr, r)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
