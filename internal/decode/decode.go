package decode

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/tonecfg/tonecfg/internal/api"
	"github.com/tonecfg/tonecfg/internal/app"
	"github.com/tonecfg/tonecfg/internal/modem"
	"github.com/tonecfg/tonecfg/pkg/audio"
	"github.com/tonecfg/tonecfg/pkg/frame"
	"github.com/tonecfg/tonecfg/pkg/fsk"
	"github.com/tonecfg/tonecfg/pkg/payload"
)

func Init() {
	var cfg struct {
		Mod struct {
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"listen"`
	}

	cfg.Mod.Timeout = 30 * time.Second

	app.LoadConfig(&cfg)

	listenTimeout = cfg.Mod.Timeout
	log = app.GetLogger("decode")

	app.HandleCommand("decode", "decode <audio.wav> [-device pro]", decodeCommand)
	app.HandleCommand("listen", "listen [-device pro] [-timeout 30s]", listenCommand)

	api.HandleFunc("api/decode", apiDecode)
}

var log zerolog.Logger
var listenTimeout = 30 * time.Second

// Output for decoded payloads
var Output io.Writer = os.Stdout

// Result of decoding audio, Error names the violated rule
type Result struct {
	Payload  *payload.Spec `json:"payload,omitempty"`
	Length   int           `json:"length,omitempty"`
	Checksum string        `json:"checksum,omitempty"`
	Error    string        `json:"error,omitempty"`
	Kind     string        `json:"kind,omitempty"`
}

// Decode audio to a validated payload, the frame is returned when it passed the checksum
func Decode(w *fsk.Waveform, p fsk.Params) (*frame.Frame, *payload.Config, error) {
	f, err := fsk.Receive(w, p)
	if err != nil {
		return nil, nil, err
	}

	c, err := f.Payload()
	if err != nil {
		return f, nil, err
	}

	if err = payload.Validate(c); err != nil {
		return f, c, err
	}

	return f, c, nil
}

func NewResult(f *frame.Frame, c *payload.Config, err error) *Result {
	r := &Result{}
	if f != nil {
		r.Length = f.Length()
		r.Checksum = fmt.Sprintf("%04X", f.Checksum())
	}
	if c != nil {
		spec := c.Spec()
		r.Payload = &spec
	}
	if err != nil {
		r.Error = err.Error()
		r.Kind = Kind(err)
	}
	return r
}

// Kind of the error for users and API clients
func Kind(err error) string {
	var decodeErr *frame.DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr.Kind.String()
	}

	var validationErr *payload.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Kind.String()
	}

	if errors.Is(err, payload.ErrMalformed) {
		return "Malformed"
	}

	return ""
}

func decodeCommand(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	device := fs.String("device", "", "device preset, empty for config value")

	files, err := app.ParseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return app.ErrUsage
	}

	p, err := modem.ParamsFor(*device, 0)
	if err != nil {
		return err
	}

	w, err := (&audio.FileSource{Path: files[0]}).Record(context.Background(), 0)
	if err != nil {
		return err
	}

	return report(w, p)
}

func listenCommand(args []string) error {
	fs := flag.NewFlagSet("listen", flag.ContinueOnError)
	device := fs.String("device", "", "device preset, empty for config value")
	timeout := fs.Duration("timeout", listenTimeout, "record duration")

	files, err := app.ParseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(files) != 0 {
		return app.ErrUsage
	}

	p, err := modem.ParamsFor(*device, 0)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Dur("timeout", *timeout).Msg("[decode] listen")

	w, err := modem.Recorder(p).Record(ctx, *timeout)
	if err != nil {
		return err
	}

	return report(w, p)
}

func report(w *fsk.Waveform, p fsk.Params) error {
	log.Debug().Dur("duration", w.Duration()).Float64("level", audio.Level(w)).Msg("[decode] audio")

	f, c, err := Decode(w, p)
	if c != nil {
		b, err := payload.Dump(c)
		if err != nil {
			return err
		}
		_, _ = Output.Write(b)
	}

	if err != nil {
		if kind := Kind(err); kind != "" {
			return fmt.Errorf("%s: %w", kind, err)
		}
		return err
	}

	log.Info().Int("bytes", f.Length()).Str("checksum", fmt.Sprintf("%04X", f.Checksum())).Msg("[decode] frame")
	return nil
}

// apiDecode reads a WAV body and responds with Result,
// audio that doesn't decode to a valid payload gives 422
func apiDecode(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p, err := modem.ParamsFor(r.URL.Query().Get("device"), 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	wf, err := audio.ReadWAV(io.LimitReader(r.Body, 32<<20))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, c, err := Decode(wf, p)
	res := NewResult(f, c, err)
	if err != nil {
		log.Debug().Err(err).Msg("[decode] api")
		api.ResponseStatusJSON(w, http.StatusUnprocessableEntity, res)
		return
	}

	api.ResponseJSON(w, res)
}
