package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"flowgrid/internal/app"
	"flowgrid/internal/replay"
)

func main() {
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	sample := flag.Duration("sample", 100*time.Millisecond, "virtual time between observations")
	sims := flag.String("sims", "flow,flow-guarded", "comma separated variants")
	flowDelays := flag.String("flow-delays", "1s,2s,3s", "comma separated flow delays")
	autoDisables := flag.String("auto-disables", "5s,10s,20s", "comma separated auto-disable delays")
	top := flag.Int("top", 5, "results to print")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] script.yaml\n", os.Args[0])
		os.Exit(2)
	}

	log, err := app.NewLogger(os.Stderr, "info")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	script, err := replay.Load(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	fd, err := parseDurations(*flowDelays)
	if err != nil {
		log.Fatal(err)
	}
	ad, err := parseDurations(*autoDisables)
	if err != nil {
		log.Fatal(err)
	}

	scenarios := replay.Grid(strings.Split(*sims, ","), fd, ad)
	fmt.Printf("Sweeping %d scenarios (%d workers, until %s)\n", len(scenarios), *workers, script.End())

	start := time.Now()
	all := replay.Sweep(script, scenarios, *workers, *sample)
	elapsed := time.Since(start)

	fmt.Printf("\nTop %d results (elapsed %s):\n", *top, elapsed.Round(time.Millisecond))
	for i := 0; i < len(all) && i < *top; i++ {
		res := all[i]
		if res.Err != nil {
			fmt.Printf("%2d) error=%v %s\n", i+1, res.Err, res.Scenario)
			continue
		}
		exit := "never"
		if res.ExitReached {
			exit = res.ExitAt.String()
		}
		fmt.Printf("%2d) exit=%s peak=%d skipped=%d %s\n", i+1, exit, res.PeakFlowing, res.Skipped, res.Scenario)
	}
}

func parseDurations(list string) ([]time.Duration, error) {
	var out []time.Duration
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := time.ParseDuration(part)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", part, err)
		}
		out = append(out, d)
	}
	return out, nil
}
