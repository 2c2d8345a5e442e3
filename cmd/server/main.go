package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/promptstudiohq/prompt-studio/api"
	"github.com/promptstudiohq/prompt-studio/internal/config"
	"github.com/promptstudiohq/prompt-studio/internal/store"
)

const defaultAddr = ":8080"

// Seams for tests.
var (
	osExit                 = os.Exit
	stderrWriter io.Writer = os.Stderr

	loadConfig = config.Load
	openStore  = store.Open
	newServer  = api.NewServer
	runServer  = (*api.Server).Run
)

type serverOptions struct {
	addr       string
	configPath string
}

func main() {
	osExit(runMain(os.Args[1:]))
}

func parseFlags(args []string) (serverOptions, error) {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(stderrWriter)

	var opts serverOptions
	fs.StringVar(&opts.addr, "addr", defaultAddr, "listen address")
	fs.StringVar(&opts.configPath, "config", config.DefaultPath, "path to config file")
	return opts, fs.Parse(args)
}

func runMain(args []string) int {
	opts, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if err := serve(opts); err != nil {
		fmt.Fprintf(stderrWriter, "prompt-studio-server: %v\n", err)
		return 1
	}
	return 0
}

func serve(opts serverOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	srv, err := newServer(cfg, st)
	if err != nil {
		return err
	}
	return runServer(srv, opts.addr)
}
