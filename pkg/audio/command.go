package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/tonecfg/tonecfg/pkg/fsk"
	"github.com/tonecfg/tonecfg/pkg/shell"
)

const (
	DefaultPlayer   = "aplay -q -t wav -"
	DefaultRecorder = "arecord -q -t wav -f S16_LE -c 1 -r {sample_rate} -d {seconds} -"
)

// CommandSink pipes WAV to the player stdin.
// Context cancel kills the player, the device hears a cut off frame.
type CommandSink struct {
	Command string
}

func (s *CommandSink) Play(ctx context.Context, w *fsk.Waveform) error {
	cmd, err := shell.NewCommand(ctx, s.Command)
	if err != nil {
		return err
	}
	defer cmd.Close()

	cmd.Stdin = bytes.NewReader(EncodeWAV(w))

	stderr := bytes.NewBuffer(nil)
	cmd.Stderr = stderr

	if err = cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return commandError(shell.Join(cmd.Args...), err, stderr)
	}

	return nil
}

// CommandSource reads WAV from the recorder stdout.
// Command supports {sample_rate} and {seconds} placeholders.
type CommandSource struct {
	Command    string
	SampleRate int
}

func (s *CommandSource) Record(ctx context.Context, d time.Duration) (*fsk.Waveform, error) {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		seconds = 1
	}

	line := shell.Template(s.Command, map[string]string{
		"sample_rate": strconv.Itoa(s.SampleRate),
		"seconds":     strconv.Itoa(seconds),
	})

	// recorder should stop itself, kill it if it doesn't
	ctx, cancel := context.WithTimeout(ctx, d+2*time.Second)
	defer cancel()

	cmd, err := shell.NewCommand(ctx, line)
	if err != nil {
		return nil, err
	}
	defer cmd.Close()

	stdout := bytes.NewBuffer(nil)
	stderr := bytes.NewBuffer(nil)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	runErr := cmd.Run()

	// killed recorder may still leave usable audio
	if stdout.Len() > 0 {
		if w, err := ReadWAV(stdout); err == nil {
			return Trim(w, d), nil
		}
	}

	if runErr != nil {
		return nil, commandError(shell.Join(cmd.Args...), runErr, stderr)
	}
	return nil, ErrEmpty
}

func commandError(name string, err error, stderr *bytes.Buffer) error {
	if stderr.Len() > 0 {
		return fmt.Errorf("audio: %s: %w: %s", name, err, bytes.TrimSpace(stderr.Bytes()))
	}
	var exitErr interface{ ExitCode() int }
	if errors.As(err, &exitErr) {
		return fmt.Errorf("audio: %s exit code %d: %w", name, exitErr.ExitCode(), err)
	}
	return fmt.Errorf("audio: %s: %w", name, err)
}
