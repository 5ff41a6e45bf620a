package app

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/tonecfg/tonecfg/pkg/yaml"
)

func TestParseConfString(t *testing.T) {
	b, err := parseConfString("modem.repeat=3")
	require.Nil(t, err)
	require.Equal(t, "modem:\n  repeat: 3\n", string(b))

	b, err = parseConfString("audio.player=aplay -q -D plughw:1 -t wav -")
	require.Nil(t, err)

	var cfg struct {
		Audio struct {
			Player string `yaml:"player"`
		} `yaml:"audio"`
	}
	require.Nil(t, yaml.Unmarshal(b, &cfg))
	require.Equal(t, "aplay -q -D plughw:1 -t wav -", cfg.Audio.Player)

	require.True(t, isConfString("log.api=trace"))
	require.False(t, isConfString("tonecfg.yaml"))
	require.False(t, isConfString("level=debug"))
	require.False(t, isConfString("./conf=old/tonecfg.yaml"))
}

func TestInitConfig(t *testing.T) {
	defer func() { configs, ConfigPath = nil, "" }()

	path := filepath.Join(t.TempDir(), "tonecfg.yaml")
	t.Setenv("TONECFG_DEVICE", "lsx")
	require.Nil(t, os.WriteFile(path, []byte("modem:\n  device: ${TONECFG_DEVICE}\n  repeat: 1\n"), 0644))

	initConfig(flagConfig{path, "modem.repeat=3", `{api: {listen: ":1985"}}`, ""})
	require.Len(t, configs, 3)
	require.Equal(t, path, ConfigPath)

	var cfg struct {
		Modem struct {
			Device string `yaml:"device"`
			Repeat int    `yaml:"repeat"`
		} `yaml:"modem"`
		API struct {
			Listen string `yaml:"listen"`
		} `yaml:"api"`
	}
	LoadConfig(&cfg)

	require.Equal(t, "lsx", cfg.Modem.Device)
	require.Equal(t, 3, cfg.Modem.Repeat) // last config wins
	require.Equal(t, ":1985", cfg.API.Listen)
}

func TestMissingConfig(t *testing.T) {
	defer func() { configs, ConfigPath = nil, "" }()

	t.Setenv(EnvConfig, "")

	initConfig(nil)
	require.Empty(t, configs)
	require.True(t, strings.HasSuffix(ConfigPath, "tonecfg.yaml"))
	require.True(t, filepath.IsAbs(ConfigPath))
}

func TestEnvConfig(t *testing.T) {
	defer func() { configs, ConfigPath = nil, "" }()

	path := filepath.Join(t.TempDir(), "studio.yaml")
	require.Nil(t, os.WriteFile(path, []byte("listen:\n  timeout: 5s\n"), 0644))
	t.Setenv(EnvConfig, path)

	initConfig(nil)
	require.Equal(t, path, ConfigPath)

	var cfg struct {
		Listen struct {
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"listen"`
	}
	LoadConfig(&cfg)
	require.Equal(t, 5*time.Second, cfg.Listen.Timeout)
}

func TestCircularBuffer(t *testing.T) {
	buf := newBuffer(2)

	_, _ = buf.Write([]byte("hello"))
	_, _ = buf.Write([]byte("world"))
	require.Equal(t, "helloworld", string(buf.Bytes()))

	// overflow drops the oldest chunk
	_, _ = buf.Write(bytes.Repeat([]byte{'a'}, chunkSize))
	_, _ = buf.Write(bytes.Repeat([]byte{'b'}, chunkSize))
	b := buf.Bytes()
	require.Len(t, b, 2*chunkSize)
	require.Equal(t, byte('a'), b[0])

	buf.Reset()
	require.Empty(t, buf.Bytes())
}

func TestGetLogger(t *testing.T) {
	defer func(mod map[string]string) { modules = mod }(modules)

	modules = map[string]string{"level": "info", "api": "trace", "simulate": "wrong"}
	MemoryLog.Reset()
	Logger = newLogger(modules, nil)

	require.Equal(t, zerolog.TraceLevel, GetLogger("api").GetLevel())
	require.Equal(t, zerolog.InfoLevel, GetLogger("encode").GetLevel())
	require.Equal(t, zerolog.InfoLevel, GetLogger("simulate").GetLevel())

	log := GetLogger("encode")
	log.Debug().Msg("hidden")
	log.Info().Msg("[encode] saved")
	require.Contains(t, string(MemoryLog.Bytes()), `"message":"[encode] saved"`)
	require.NotContains(t, string(MemoryLog.Bytes()), "hidden")
}

func TestRunArgs(t *testing.T) {
	var got []string
	HandleCommand("test", "test <file> [-n 1]", func(args []string) error {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		n := fs.Int("n", 0, "")
		pos, err := ParseFlags(fs, args)
		if err != nil {
			return err
		}
		if len(pos) != 1 {
			return ErrUsage
		}
		if *n < 0 {
			return errors.New("negative")
		}
		got = pos
		return nil
	})
	defer delete(commands, "test")

	out := bytes.NewBuffer(nil)
	flag.CommandLine.SetOutput(out)
	defer flag.CommandLine.SetOutput(nil)

	require.Equal(t, 0, RunArgs([]string{"test", "file.yaml", "-n", "2"}))
	require.Equal(t, "file.yaml", got[0])

	require.Equal(t, 2, RunArgs([]string{"test"}))
	require.Contains(t, out.String(), "usage: tonecfg test <file>")

	require.Equal(t, 1, RunArgs([]string{"test", "file.yaml", "-n", "-1"}))
	require.Equal(t, 2, RunArgs([]string{"unknown"}))
	require.Equal(t, 2, RunArgs(nil))
}

func TestParseFlags(t *testing.T) {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	o := fs.String("o", "", "")
	repeat := fs.Int("repeat", 1, "")

	pos, err := ParseFlags(fs, []string{"-repeat", "3", "payload.yaml", "-o", "out.wav", "extra"})
	require.Nil(t, err)
	require.Equal(t, []string{"payload.yaml", "extra"}, pos)
	require.Equal(t, "out.wav", *o)
	require.Equal(t, 3, *repeat)
}
