package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"sort"
	"time"
)

var Version = "0.3.0"
var UserAgent = "tonecfg/" + Version

var ConfigPath string
var Info = map[string]any{
	"version": Version,
}

// Args - command line without global flags, Args[0] is the command name
var Args []string

func Init() {
	var confs flagConfig
	var version bool

	flag.Var(&confs, "config", "tonecfg config (path to file, raw text or key.name=value), support multiple")
	flag.BoolVar(&version, "version", false, "Print the version of the application and exit")
	flag.Usage = usage
	flag.Parse()

	if version {
		fmt.Printf("tonecfg version %s%s %s/%s\n", Version, revision(), runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	Args = flag.Args()

	initConfig(confs)
	initLogger()

	platform := fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
	Logger.Debug().Str("version", Version).Str("platform", platform).Msg("tonecfg")

	if ConfigPath != "" {
		Logger.Debug().Str("path", ConfigPath).Msg("config")
	}
}

func revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}

	var rev string
	var vcsTime time.Time
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			rev = setting.Value
			if len(rev) > 7 {
				rev = rev[:7]
			}
		case "vcs.time":
			vcsTime, _ = time.Parse(time.RFC3339, setting.Value)
		}
	}

	if rev == "" {
		return ""
	}
	return " (" + rev + " " + vcsTime.Local().Format(time.DateOnly) + ")"
}

type Command struct {
	Name  string
	Usage string
	Run   func(args []string) error
}

var commands = map[string]*Command{}

// ErrUsage - wrong arguments, command usage is printed and exit code is 2
var ErrUsage = errors.New("wrong arguments")

// HandleCommand registers a sub command, usage is "name <args>" for help output
func HandleCommand(name, usage string, run func(args []string) error) {
	commands[name] = &Command{Name: name, Usage: usage, Run: run}
}

// Run executes command from Args and returns process exit code
func Run() int {
	return RunArgs(Args)
}

func RunArgs(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	cmd := commands[args[0]]
	if cmd == nil {
		fmt.Fprintf(flag.CommandLine.Output(), "unknown command: %s\n", args[0])
		usage()
		return 2
	}

	err := cmd.Run(args[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUsage), errors.Is(err, flag.ErrHelp):
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(flag.CommandLine.Output(), "%s\n", err)
		}
		fmt.Fprintf(flag.CommandLine.Output(), "usage: tonecfg %s\n", cmd.Usage)
		return 2
	default:
		Logger.Error().Err(err).Msgf("[%s]", cmd.Name)
		return 1
	}
}

// ParseFlags allows flags after positional arguments: encode payload.yaml -o out.wav
func ParseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if args = fs.Args(); len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "usage: tonecfg [-config file]... <command> [args]\n\ncommands:\n")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(out, "  %s\n", commands[name].Usage)
	}

	fmt.Fprintf(out, "\nflags:\n")
	flag.PrintDefaults()
}
