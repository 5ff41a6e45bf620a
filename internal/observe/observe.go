package observe

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tonecfg/tonecfg/internal/app"
	"github.com/tonecfg/tonecfg/pkg/probe"
)

func Init() {
	var cfg struct {
		Mod struct {
			Timeout time.Duration `yaml:"timeout"`
			Service string        `yaml:"service"`
		} `yaml:"probe"`
	}

	cfg.Mod.Timeout = 3 * time.Second
	cfg.Mod.Service = probe.DefaultService

	app.LoadConfig(&cfg)

	timeout = cfg.Mod.Timeout
	service = cfg.Mod.Service
	log = app.GetLogger("observe")

	app.HandleCommand("observe", "observe <rtsp|rtmp url> | -discover [-service _rtsp._tcp]", observeCommand)
}

var log zerolog.Logger
var timeout = 3 * time.Second
var service = probe.DefaultService

var Output io.Writer = os.Stdout

func observeCommand(args []string) error {
	fs := flag.NewFlagSet("observe", flag.ContinueOnError)
	discover := fs.Bool("discover", false, "browse mDNS for devices")
	fs.StringVar(&service, "service", service, "mDNS service")
	fs.DurationVar(&timeout, "timeout", timeout, "discover duration")

	urls, err := app.ParseFlags(fs, args)
	if err != nil {
		return err
	}

	ctx := context.Background()

	if *discover {
		devices, err := probe.Discover(ctx, service, timeout)
		if err != nil {
			return err
		}
		for _, d := range devices {
			fmt.Fprintln(Output, d.URL(), d.Host)
			urls = append(urls, d.URL())
		}
	}

	if len(urls) == 0 {
		if *discover {
			return fmt.Errorf("no %s devices found", service)
		}
		return app.ErrUsage
	}

	var failed int
	for _, rawURL := range urls {
		if err = Probe(ctx, rawURL); err != nil {
			log.Warn().Err(err).Str("url", rawURL).Msg("[observe]")
			failed++
			continue
		}
		fmt.Fprintln(Output, "OK", rawURL)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d probes failed", failed, len(urls))
	}
	return nil
}

// Probe checks the stream depending on the URL scheme
func Probe(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}

	switch {
	case strings.HasPrefix(u.Scheme, "rtsp"):
		return probe.RTSP(ctx, rawURL)
	case strings.HasPrefix(u.Scheme, "rtmp"):
		return probe.RTMP(ctx, rawURL)
	}

	return fmt.Errorf("%w: %s", probe.ErrUnsupportedScheme, u.Scheme)
}
