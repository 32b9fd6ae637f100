package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"buoy/pkg/resource"
)

func main() {
	width := flag.Float64("w", 1280, "viewport width in pixels")
	height := flag.Float64("h", 800, "viewport height in pixels")
	output := flag.String("o", "output.png", "output PNG file path")
	scroll := flag.Float64("scroll", 0, "vertical scroll offset in pixels")
	verbose := flag.Bool("v", false, "log controller activity")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: buoy [flags] <file-or-url>\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	target := flag.Arg(0)

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	markup, err := resource.Load(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", target, err)
		os.Exit(1)
	}

	session := resource.NewSession(markup, resource.SessionConfig{
		Width:  *width,
		Height: *height,
		Logger: logger,
	})
	defer session.Close()

	if *scroll > 0 {
		session.SetScroll(*scroll)
	}

	if err := session.RenderPNG(*output); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving PNG: %v\n", err)
		os.Exit(1)
	}

	bp := session.Controller().Breakpoint()
	fmt.Printf("Rendered %s to %s (%.0fx%.0f, %s)\n", target, *output, *width, *height, bp)
}
