package encode

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

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
	log = app.GetLogger("encode")

	app.HandleCommand("encode", "encode <payload.yaml> [-o out.wav] [-device pro] [-repeat 3]", encodeCommand)
	app.HandleCommand("play", "play <payload.yaml> [-device pro] [-repeat 3]", playCommand)

	api.HandleFunc("api/encode", apiEncode)
}

var log zerolog.Logger

// Build loads and validates the payload file and renders its audio
func Build(path string, p fsk.Params) (*payload.Config, *frame.Frame, *fsk.Waveform, error) {
	c, err := payload.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}

	if err = payload.Validate(c); err != nil {
		return nil, nil, nil, err
	}

	f := frame.Encode(c)
	return c, f, fsk.Modulate(f, p), nil
}

func encodeCommand(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	output := fs.String("o", "config.wav", "output WAV file, - for stdout")
	device, repeat := modemFlags(fs)

	files, err := app.ParseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return app.ErrUsage
	}

	p, err := modem.ParamsFor(*device, *repeat)
	if err != nil {
		return err
	}

	c, f, w, err := Build(files[0], p)
	if err != nil {
		return err
	}

	if *output == "-" {
		err = audio.WriteWAV(os.Stdout, w)
	} else {
		err = (&audio.FileSink{Path: *output}).Play(context.Background(), w)
	}
	if err != nil {
		return err
	}

	logFrame(c, f, w).Str("output", *output).Msg("[encode] saved")
	return nil
}

func playCommand(args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	device, repeat := modemFlags(fs)

	files, err := app.ParseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return app.ErrUsage
	}

	p, err := modem.ParamsFor(*device, *repeat)
	if err != nil {
		return err
	}

	c, f, w, err := Build(files[0], p)
	if err != nil {
		return err
	}

	// Ctrl+C stops the player, the device will hear a truncated frame
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logFrame(c, f, w).Msg("[encode] play")

	return modem.Player().Play(ctx, w)
}

func modemFlags(fs *flag.FlagSet) (device *string, repeat *int) {
	device = fs.String("device", "", fmt.Sprintf("device preset %v, empty for config value", fsk.Presets()))
	repeat = fs.Int("repeat", 0, "frame copies, 0 for config value")
	return
}

func logFrame(c *payload.Config, f *frame.Frame, w *fsk.Waveform) *zerolog.Event {
	return log.Info().Stringer("payload", c).
		Int("bytes", f.Length()).Int("bits", f.BitLen()).
		Str("checksum", fmt.Sprintf("%04X", f.Checksum())).
		Dur("duration", w.Duration()).Int("sample_rate", w.SampleRate)
}

// apiEncode renders WAV for the POST body:
// curl --data-binary @payload.yaml "http://localhost:1985/api/encode?device=ls2" > config.wav
func apiEncode(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()

	var repeat int
	if s := query.Get("repeat"); s != "" {
		var err error
		if repeat, err = strconv.Atoi(s); err != nil {
			http.Error(w, "wrong repeat: "+s, http.StatusBadRequest)
			return
		}
	}

	p, err := modem.ParamsFor(query.Get("device"), repeat)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := payload.Parse(b)
	if err == nil {
		err = payload.Validate(c)
	}
	if err != nil {
		res := struct {
			Error string `json:"error"`
			Kind  string `json:"kind,omitempty"`
		}{Error: err.Error()}

		var validationErr *payload.ValidationError
		if errors.As(err, &validationErr) {
			res.Kind = validationErr.Kind.String()
		}

		api.ResponseStatusJSON(w, http.StatusBadRequest, res)
		return
	}

	buf := bytes.NewBuffer(nil)
	if err = audio.WriteWAV(buf, fsk.Modulate(frame.Encode(c), p)); err != nil {
		api.Error(w, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="config.wav"`)
	api.Response(w, buf.Bytes(), api.MimeWAV)
}
