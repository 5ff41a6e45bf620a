package shell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuoteSplit(t *testing.T) {
	s := `
python "-c" 'import time
print("time", time.time())'
`
	require.Equal(t, []string{"python", "-c", "import time\nprint(\"time\", time.time())"}, QuoteSplit(s))

	s = `aplay -q -D "plughw:CARD=Headphones,DEV=0" -t wav -`
	require.Equal(t, []string{"aplay", "-q", "-D", "plughw:CARD=Headphones,DEV=0", "-t", "wav", "-"}, QuoteSplit(s))

	require.Nil(t, QuoteSplit(`sh -c "cat > out.wav`))
}

func TestJoin(t *testing.T) {
	args := []string{"sh", "-c", "cat > 'out file.wav'"}
	require.Equal(t, args, QuoteSplit(Join(args...)))
}

func TestTemplate(t *testing.T) {
	s := Template("arecord -r {sample_rate} -d {seconds} {other}", map[string]string{
		"sample_rate": "44100",
		"seconds":     "30",
	})
	require.Equal(t, "arecord -r 44100 -d 30 {other}", s)
}

func TestReplaceVars(t *testing.T) {
	env := map[string]string{"WIFI_PSK": "secret123"}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	require.Equal(t, "psk: secret123", ReplaceVars("psk: ${WIFI_PSK}", lookup))
	require.Equal(t, "ssid: home", ReplaceVars("ssid: ${WIFI_SSID:home}", lookup))
	require.Equal(t, "key: ${STREAM_KEY}", ReplaceVars("key: ${STREAM_KEY}", lookup))
}

func TestNewCommand(t *testing.T) {
	_, err := NewCommand(context.Background(), "  ")
	require.ErrorIs(t, err, ErrEmptyCommand)
}
