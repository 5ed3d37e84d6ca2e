package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"pcbcam/pkg/cfg"
	"pcbcam/pkg/job"
	"pcbcam/pkg/logger"

	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "job config file (default: ./pcbcam.yaml if present)")
	copper := flags.String("copper", "", "Gerber copper layer to isolate")
	edge := flags.String("edge", "", "Gerber outline layer to cut out")
	drill := flags.String("drill", "", "Excellon drill file")
	mirrorAxis := flags.String("mirror", "none", "mirror the flag layers about the board center: x, y or none")
	optimizeOrder := flags.Bool("optimize", false, "reorder drills and isolation passes to shorten rapids")
	verbose := flags.BoolP("verbose", "v", false, "log skipped input lines")
	flags.Float64("feed", cfg.FeedRate, "cutting feed rate in mm/min")
	flags.Float64("travel-z", cfg.TravelZ, "safe height for rapids in mm")
	flags.Int("spindle", cfg.SpindleSpeed, "spindle speed in rpm")
	flags.String("strategy", cfg.Strategy, "optimizer: exhaustive or indexed")
	flags.StringP("out", "o", cfg.OutputDir, "output directory")
	flags.String("report", cfg.Report, "report file name in the output directory, empty to skip")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags]\n", os.Args[0])
		flags.PrintDefaults()
	}
	flags.Parse(os.Args[1:])

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	v, err := cfg.Load(*configPath)
	if err != nil {
		log.Fatalf("config error: %s", err)
	}
	for key, name := range map[string]string{
		cfg.KeyFeedRate:     "feed",
		cfg.KeyTravelZ:      "travel-z",
		cfg.KeySpindleSpeed: "spindle",
		cfg.KeyStrategy:     "strategy",
		cfg.KeyOutputDir:    "out",
		cfg.KeyReport:       "report",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			log.Fatalf("flag error: %s", err)
		}
	}

	c, err := job.ConfigFrom(v)
	if err != nil {
		log.Fatalf("config error: %s", err)
	}
	for _, l := range []job.Layer{
		{Name: "B_Cu", Kind: job.Copper, Path: *copper},
		{Name: "Edge_Cuts", Kind: job.Edge, Path: *edge},
		{Name: "Drill", Kind: job.Drill, Path: *drill},
	} {
		if l.Path == "" {
			continue
		}
		l.Mirror = *mirrorAxis
		l.Optimize = *optimizeOrder
		c.Layers = append(c.Layers, l)
	}
	if len(c.Layers) == 0 {
		flags.Usage()
		os.Exit(2)
	}

	if c.OutputDir != "" {
		if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
			log.Fatalf("output error: %s", err)
		}
	}

	out, err := job.Run(c)
	if err != nil {
		log.Fatalf("job error: %s", err)
	}
	for _, l := range out.Report.Layers {
		fmt.Printf("%-12s %-6s %5d toolpaths %7.1f mm travel  %s\n", l.Name, l.Kind, l.Toolpaths, l.Travel, l.Output)
	}
}
