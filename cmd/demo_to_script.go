package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"replaytab/internal/demo"
	"replaytab/internal/log"
	"replaytab/internal/script"
)

func main() {
	var (
		demoFile    = flag.String("demo", "", "Path to the demo file")
		startTick   = flag.Int("start-tick", 0, "First tick to capture")
		endTick     = flag.Int("end-tick", -1, "Last tick to capture (-1 for end of demo)")
		outputFile  = flag.String("output", "", "Output YAML file path (prints to stdout if not specified)")
		name        = flag.String("name", "Captured Demo", "Script name")
		description = flag.String("desc", "Auto-generated script from a demo", "Script description")
		verbosity   = flag.Int("verbosity", log.Silent, "0 silent, 1 lifecycle, 2 every record")
	)
	flag.Parse()
	log.Configure(*verbosity, os.Stderr)

	if *demoFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -demo is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := capture(ctx, *demoFile, *startTick, *endTick)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error capturing demo: %v\n", err)
		os.Exit(1)
	}
	s.Name = *name
	s.Description = *description

	if *outputFile == "" {
		if err := script.Encode(os.Stdout, s); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing script: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := writeScriptToFile(s, *outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing script file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated script with %d steps: %s\n", len(s.Steps), *outputFile)
}

func capture(ctx context.Context, path string, from, to int) (*script.Script, error) {
	src, err := demo.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	log.Info("Capturing demo", "demo", path, "start_tick", from, "end_tick", to)
	return script.Capture(ctx, src, from, to)
}

func writeScriptToFile(s *script.Script, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := script.Encode(file, s); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
