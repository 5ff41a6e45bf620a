package modem

import (
	"github.com/rs/zerolog"
	"github.com/tonecfg/tonecfg/internal/app"
	"github.com/tonecfg/tonecfg/pkg/audio"
	"github.com/tonecfg/tonecfg/pkg/fsk"
)

// DefaultRepeat - the vendor app plays the config three times
const DefaultRepeat = 3

func Init() {
	var pre struct {
		Mod struct {
			Device string `yaml:"device"`
		} `yaml:"modem"`
	}

	app.LoadConfig(&pre)

	log = app.GetLogger("modem")

	p, err := fsk.Preset(pre.Mod.Device)
	if err != nil {
		log.Warn().Err(err).Strs("presets", fsk.Presets()).Msg("[modem] device")
	}
	p.Repeat = DefaultRepeat

	// explicit values override the device preset
	var cfg struct {
		Mod   *fsk.Params `yaml:"modem"`
		Audio struct {
			Player   string `yaml:"player"`
			Recorder string `yaml:"recorder"`
		} `yaml:"audio"`
	}

	cfg.Mod = &p
	cfg.Audio.Player = audio.DefaultPlayer
	cfg.Audio.Recorder = audio.DefaultRecorder

	app.LoadConfig(&cfg)

	if err = p.Validate(); err != nil {
		log.Error().Err(err).Msg("[modem] params, use defaults")
		p = fsk.DefaultParams()
		p.Repeat = DefaultRepeat
	}

	params = p
	player = cfg.Audio.Player
	recorder = cfg.Audio.Recorder

	log.Debug().Int("sample_rate", p.SampleRate).Float64("baud", p.SymbolRate).
		Float64("mark", p.MarkFrequency).Float64("space", p.SpaceFrequency).Msg("[modem] params")
}

var log zerolog.Logger

var params = defaultParams()
var player = audio.DefaultPlayer
var recorder = audio.DefaultRecorder

func defaultParams() fsk.Params {
	p := fsk.DefaultParams()
	p.Repeat = DefaultRepeat
	return p
}

func Params() fsk.Params {
	return params
}

// ParamsFor returns config params with the device sample rate and repeat count,
// empty device and zero repeat keep config values
func ParamsFor(device string, repeat int) (fsk.Params, error) {
	p := params

	if device != "" {
		preset, err := fsk.Preset(device)
		if err != nil {
			return p, err
		}
		p.SampleRate = preset.SampleRate
	}

	if repeat > 0 {
		p.Repeat = repeat
	}

	return p, p.Validate()
}

func Player() audio.Sink {
	return &audio.CommandSink{Command: player}
}

func Recorder(p fsk.Params) audio.Source {
	return &audio.CommandSource{Command: recorder, SampleRate: p.SampleRate}
}
