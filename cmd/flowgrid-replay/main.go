package main

import (
	"flag"
	"fmt"
	"os"

	"flowgrid/internal/app"
	"flowgrid/internal/replay"
	"flowgrid/internal/sims/flow"
)

func main() {
	var (
		grid     = flag.String("grid", "", "standalone grid config YAML replacing the script's config")
		frames   = flag.Bool("frames", true, "print an ASCII frame after every step")
		logLevel = flag.String("log-level", "warn", "logrus level")
		sim      = flag.String("sim", "", "override the script's simulation variant")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] script.yaml\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := app.NewLogger(os.Stderr, *logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	script, err := replay.Load(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	if *sim != "" {
		script.Sim = *sim
	}
	if *grid != "" {
		cfg, err := flow.LoadConfig(*grid)
		if err != nil {
			log.Fatal(err)
		}
		script.Grid = &cfg
	}

	runner := replay.Runner{Out: os.Stdout, Log: log, Frames: *frames}
	if _, err := runner.Run(script); err != nil {
		log.Fatal(err)
	}
}
