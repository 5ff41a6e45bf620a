package simulate

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/tonecfg/tonecfg/internal/api/ws"
	"github.com/tonecfg/tonecfg/internal/app"
	"github.com/tonecfg/tonecfg/internal/encode"
	"github.com/tonecfg/tonecfg/internal/modem"
	"github.com/tonecfg/tonecfg/pkg/audio"
	"github.com/tonecfg/tonecfg/pkg/fsk"
	"github.com/tonecfg/tonecfg/pkg/session"
	"github.com/tonecfg/tonecfg/pkg/simulator"
)

func Init() {
	log = app.GetLogger("simulate")

	app.HandleCommand("simulate", "simulate <payload.yaml> [-cut 0.5] [-noise 0.05] [-gain 0.3] [-unreachable]", simulateCommand)

	ws.HandleFunc("session", wsSession)
	ws.HandleFunc("event", wsEvent)
	ws.HandleFunc("hear", wsHear)
}

var log zerolog.Logger

// Output for the transitions report
var Output io.Writer = os.Stdout

var ErrNotProvisioned = errors.New("device was not provisioned")

type Options struct {
	Channel     *audio.Loopback // speaker to microphone path
	Unreachable bool
	Timeout     time.Duration // listen window, one second by default
}

func simulateCommand(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	device := fs.String("device", "", "device preset, empty for config value")

	opts := Options{Channel: &audio.Loopback{}}
	fs.Float64Var(&opts.Channel.Cut, "cut", 0, "share of the audio the device hears, 0 for all")
	fs.Float64Var(&opts.Channel.Noise, "noise", 0, "noise level")
	fs.Float64Var(&opts.Channel.Gain, "gain", 0.3, "microphone gain")
	fs.DurationVar(&opts.Channel.Silence, "silence", 300*time.Millisecond, "silence before the audio")
	fs.BoolVar(&opts.Unreachable, "unreachable", false, "RTMP endpoint is unreachable")

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

	c, _, w, err := encode.Build(files[0], p)
	if err != nil {
		return err
	}

	log.Debug().Stringer("payload", c).Msg("[simulate] play")

	d := simulator.NewDevice(p)
	d.Log = log

	s, err := Run(context.Background(), d, w, opts)

	fmt.Fprintln(Output, d.History())

	if err != nil {
		return err
	}

	if !s.State.Serving() {
		return fmt.Errorf("%w: %s: %s", ErrNotProvisioned, s.State, s.Reason)
	}

	if url := s.Payload.RTSPURL(); url != "" {
		fmt.Fprintln(Output, "stream:", url)
	}

	return nil
}

// Run the whole exchange: enable, play, listen, apply
func Run(ctx context.Context, d *simulator.Device, w *fsk.Waveform, opts Options) (session.Session, error) {
	if opts.Unreachable {
		d.Reachability = func(context.Context, string) error {
			return errors.New("endpoint unreachable")
		}
	} else {
		d.Reachability = func(context.Context, string) error { return nil }
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second
	}

	if err := d.Enable(); err != nil {
		return d.Session(), err
	}

	mic := opts.Channel
	if mic == nil {
		mic = &audio.Loopback{}
	}
	if err := mic.Play(ctx, w); err != nil {
		return d.Session(), err
	}

	if err := d.Listen(ctx, mic, timeout); err != nil {
		return d.Session(), err
	}

	if d.Session().State == session.Configuring {
		if err := d.Apply(ctx); err != nil {
			return d.Session(), err
		}
	}

	return d.Session(), nil
}
