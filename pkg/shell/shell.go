package shell

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kballard/go-shellquote"
)

// QuoteSplit splits the command line like sh does, nil for unbalanced quotes
func QuoteSplit(s string) []string {
	args, err := shellquote.Split(s)
	if err != nil {
		return nil
	}
	return args
}

// Join quotes args back to one line, for logs
func Join(args ...string) string {
	return shellquote.Join(args...)
}

// Template replaces {name} placeholders, unknown names are kept as is:
// "arecord -r {sample_rate}" => "arecord -r 44100"
func Template(s string, values map[string]string) string {
	for k, v := range values {
		s = strings.ReplaceAll(s, "{"+k+"}", v)
	}
	return s
}

func RunUntilSignal() os.Signal {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	return <-sigs
}
