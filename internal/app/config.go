package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tonecfg/tonecfg/pkg/shell"
	"github.com/tonecfg/tonecfg/pkg/yaml"
)

// LoadConfig fills v from every config in command line order,
// so a later -config overrides only the keys it has.
func LoadConfig(v any) {
	for _, src := range configs {
		if err := yaml.Unmarshal(src.data, v); err != nil {
			Logger.Warn().Err(err).Str("config", src.name).Msg("[app] read config")
		}
	}
}

// EnvConfig - config path when there is no -config flag
const EnvConfig = "TONECFG_CONFIG"

const defaultConfig = "tonecfg.yaml"

type flagConfig []string

func (c *flagConfig) String() string {
	return strings.Join(*c, " ")
}

func (c *flagConfig) Set(value string) error {
	*c = append(*c, value)
	return nil
}

type source struct {
	name string // file path or the flag value itself
	data []byte
}

var configs []source

func initConfig(confs flagConfig) {
	explicit := confs != nil
	if !explicit {
		if s := os.Getenv(EnvConfig); s != "" {
			confs, explicit = flagConfig{s}, true
		} else {
			confs = flagConfig{defaultConfig}
		}
	}

	for _, conf := range confs {
		switch {
		case conf == "":
		case conf[0] == '{':
			// raw YAML or JSON: -config '{modem: {device: ls2}}'
			configs = append(configs, source{name: "flag", data: []byte(conf)})
		case isConfString(conf):
			data, err := parseConfString(conf)
			if err != nil {
				Logger.Warn().Err(err).Str("config", conf).Msg("[app] parse config")
				continue
			}
			configs = append(configs, source{name: conf, data: data})
		default:
			if ConfigPath == "" {
				ConfigPath = conf
			}

			data, err := os.ReadFile(conf)
			if err != nil {
				// the default file is optional
				if explicit {
					Logger.Warn().Err(err).Msg("[app] read config")
				}
				continue
			}

			// secrets like wifi psk may stay in the environment
			data = []byte(shell.ReplaceEnvVars(string(data)))
			configs = append(configs, source{name: conf, data: data})
		}
	}

	if ConfigPath == "" {
		return
	}

	if abs, err := filepath.Abs(ConfigPath); err == nil {
		ConfigPath = abs
	}
	Info["config_path"] = ConfigPath
}

// isConfString for `section.key=value`, file names have no '=' before the first dot
func isConfString(s string) bool {
	i := strings.IndexByte(s, '=')
	return i > 0 && strings.IndexByte(s[:i], '.') > 0
}

// parseConfString turns `modem.repeat=3` into `modem: {repeat: 3}`.
// The value keeps its YAML type, so numbers and durations reach int fields,
// anything YAML can't read stays a plain string: `api.listen=:1985`.
func parseConfString(s string) ([]byte, error) {
	i := strings.IndexByte(s, '=')
	keys := strings.Split(s[:i], ".")

	var value any
	if err := yaml.Unmarshal([]byte(s[i+1:]), &value); err != nil {
		value = s[i+1:]
	}

	for j := len(keys) - 1; j >= 0; j-- {
		value = map[string]any{keys[j]: value}
	}

	return yaml.Encode(value, 2)
}
