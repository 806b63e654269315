package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"themekit/internal/config"
	"themekit/internal/debug"
	"themekit/internal/persist"
)

const usage = `usage: themekit [flags] <command>

commands:
  list          list registered themes
  current       print the selected theme
  set <id>      select a theme
  next          advance to the next theme
  forget        clear the saved selection
  saved         show saved selections
  pick          choose a theme interactively

flags:
`

func main() {
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}

	settings, err := config.Controller()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		os.Exit(1)
	}

	versionFlag := flag.Bool("version", false, "Print version information and exit")
	providerFlag := flag.String("provider", settings.ProviderID, "Provider id scoping the saved selection")
	storeFlag := flag.String("store", settings.StoreBackend, "Selection store backend (file, sqlite, memory)")
	storePathFlag := flag.String("store-path", settings.StorePath, "Path of the selection store")
	formatFlag := flag.String("format", config.GetString(config.KeyOutputFormat), "Output style (rich, plain)")
	debugFlag := flag.Bool("debug", config.GetBool(config.KeyDebug), "Write a debug log to ~/.themekit/debug.log")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *versionFlag {
		printVersion(os.Stdout)
		os.Exit(0)
	}

	visited := map[string]struct{}{}
	flag.CommandLine.Visit(func(f *flag.Flag) {
		visited[f.Name] = struct{}{}
	})
	opts := computeRuntimeOptions(settings, runtimeFlags{
		provider:  providerFlag,
		store:     storeFlag,
		storePath: storePathFlag,
		format:    formatFlag,
		debug:     debugFlag,
	}, visited)

	if err := debug.Init(opts.debug); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: debug log unavailable: %v\n", err)
	}
	defer debug.Close()
	if debug.Enabled() {
		if path, err := debug.GetLogPath(); err == nil {
			fmt.Fprintf(os.Stderr, "Debug log: %s\n", path)
		}
	}
	debug.Logf("themekit %s: provider=%s store=%s args=%v", Version, opts.ProviderID, opts.StoreBackend, flag.Args())

	env := environment{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		openStore: persist.Open,
		program: func(m tea.Model) programRunner {
			return tea.NewProgram(m, tea.WithAltScreen())
		},
		copyText: clipboard.WriteAll,
		profile:  termenv.ColorProfile(),
		dark:     termenv.HasDarkBackground(),
	}
	if err := run(context.Background(), opts, flag.Args(), env); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		debug.Close()
		os.Exit(1)
	}
}

type programRunner interface {
	Run() (tea.Model, error)
}

type programFactory func(tea.Model) programRunner

// environment carries the process-level dependencies of run.
type environment struct {
	stdout    io.Writer
	stderr    io.Writer
	openStore func(backend, path string) (persist.Store, error)
	program   programFactory
	copyText  func(string) error
	profile   termenv.Profile
	dark      bool
}

type runtimeFlags struct {
	provider  *string
	store     *string
	storePath *string
	format    *string
	debug     *bool
}

type runtimeOptions struct {
	config.ControllerSettings
	format string
	debug  bool
}

func computeRuntimeOptions(settings config.ControllerSettings, flags runtimeFlags, visited map[string]struct{}) runtimeOptions {
	opts := runtimeOptions{
		ControllerSettings: settings,
		format:             strings.TrimSpace(config.GetString(config.KeyOutputFormat)),
		debug:              config.GetBool(config.KeyDebug),
	}
	if flagWasExplicitlySet("provider", visited) {
		opts.ProviderID = strings.TrimSpace(*flags.provider)
	}
	if flagWasExplicitlySet("store", visited) {
		opts.StoreBackend = strings.ToLower(strings.TrimSpace(*flags.store))
	}
	if flagWasExplicitlySet("store-path", visited) {
		opts.StorePath = strings.TrimSpace(*flags.storePath)
	}
	if flagWasExplicitlySet("format", visited) {
		opts.format = strings.TrimSpace(*flags.format)
	}
	if flagWasExplicitlySet("debug", visited) {
		opts.debug = *flags.debug
	}
	return opts
}

func flagWasExplicitlySet(name string, visited map[string]struct{}) bool {
	_, ok := visited[name]
	return ok
}
