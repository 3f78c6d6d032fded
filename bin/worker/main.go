package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/playwright-community/playwright-go"

	"pixeldiff/internal/callback"
	"pixeldiff/internal/capture"
	"pixeldiff/internal/config"
	diffimage "pixeldiff/internal/diff/image"
	"pixeldiff/internal/imageio"
	"pixeldiff/internal/runnable"
	"pixeldiff/internal/storage"
	"pixeldiff/internal/worker"
)

type headers []string

func (h *headers) String() string {
	return strings.Join(*h, ", ")
}

func (h *headers) Set(value string) error {
	*h = append(*h, value)
	return nil
}

func main() {
	var storageURL string
	var prefix string
	var diffFormat string
	var threshold float64
	var includeAA bool
	var alpha float64
	var concurrency int
	var maskSelectors string
	var chromeDevtoolsProtocolURL string
	var callbackURL string
	var callbackTimeout time.Duration
	var schedule string
	var debug bool
	var headers headers
	flag.StringVar(&storageURL, "storage-url", config.EnvOrDefault("STORAGE_URL", config.EnvOrDefault("DIRECTORY", "/tmp")), "Artifact destination (a directory or s3://bucket/prefix)")
	flag.StringVar(&prefix, "prefix", config.EnvOrDefault("PREFIX", ""), "Key prefix for uploaded artifacts")
	flag.StringVar(&diffFormat, "diff-format", config.EnvOrDefault("DIFF_FORMAT", "png"), "Diff image format (png, jpeg, bmp or tiff)")
	flag.Float64Var(&threshold, "threshold", config.EnvOrDefault("THRESHOLD", diffimage.DefaultOptions().Threshold), "Matching threshold between 0 and 1")
	flag.BoolVar(&includeAA, "include-aa", config.EnvOrDefault("INCLUDE_AA", false), "Detect anti-aliased pixels and exclude them from the count")
	flag.Float64Var(&alpha, "alpha", config.EnvOrDefault("ALPHA", diffimage.DefaultOptions().Alpha), "Opacity of unchanged pixels in the diff image")
	flag.IntVar(&concurrency, "concurrency", config.EnvOrDefault("CONCURRENCY", 0), "Scan workers (0 uses every CPU)")
	flag.StringVar(&maskSelectors, "mask-selectors", config.EnvOrDefault("MASK_SELECTORS", ""), "Comma-separated list of CSS selectors to mask during capture")
	flag.StringVar(&chromeDevtoolsProtocolURL, "chrome-devtools-protocol-url", config.EnvOrDefault("CHROME_DEVTOOLS_PROTOCOL_URL", ""), "Connect to existing browser via Chrome DevTools Protocol URL (e.g., http://localhost:9222)")
	flag.StringVar(&callbackURL, "callback-url", config.EnvOrDefault("CALLBACK_URL", ""), "Callback URL to send results to")
	flag.DurationVar(&callbackTimeout, "callback-timeout", config.EnvOrDefault("CALLBACK_TIMEOUT", time.Second), "Timeout for the whole callback exchange")
	flag.StringVar(&schedule, "schedule", config.EnvOrDefault("SCHEDULE", ""), "Cron expression to repeat the snapshot on (e.g., '*/30 * * * *')")
	flag.BoolVar(&debug, "debug", config.EnvOrDefault("DEBUG", false), "Enable debug logging")
	flag.Var(&headers, "H", "Add HTTP header (can be used multiple times, e.g., -H 'Accept: text/html' -H 'Authorization: Bearer token')")

	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		log.Fatalf("usage: %s [flags] <baseline url> <target url>", os.Args[0])
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer stop()

	logger, err := runnable.NewLogger(os.Stderr, debug)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	format, err := imageio.ParseFormatStrict(diffFormat)
	if err != nil {
		log.Fatalf("Invalid diff format: %v", err)
	}

	options, err := worker.NewOptions(threshold, includeAA, alpha, concurrency)
	if err != nil {
		log.Fatalf("Invalid diff options: %v", err)
	}

	s, err := storage.ForURL(ctx, storageURL)
	if err != nil {
		log.Fatalf("Failed to create storage backend: %v", err)
	}

	c := capture.DefaultPlaywrightConfig()
	if chromeDevtoolsProtocolURL != "" {
		c.ChromeDevtoolsProtocolURL = chromeDevtoolsProtocolURL
	} else if err := playwright.Install(&playwright.RunOptions{
		Browsers: []string{"chromium"},
	}); err != nil {
		log.Fatalf("Failed to install playwright browsers: %v", err)
	}

	capturer, err := capture.NewPlaywrightCapturer(ctx, c)
	if err != nil {
		log.Fatalf("Failed to initialize capturer: %v", err)
	}
	defer capturer.Close()

	w := &worker.Worker{
		Capturer:       capturer,
		Storage:        s,
		Prefix:         prefix,
		Options:        options,
		DiffFormat:     format,
		CaptureOptions: capture.NewCaptureOptions(headers, maskSelectors),
		Logger:         logger,
	}

	handle := func(ctx context.Context, output *worker.Output) error {
		if callbackURL != "" {
			return callback.NewClient(callbackTimeout).Send(ctx, callbackURL, output)
		}
		j, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(j))
		return nil
	}

	if schedule != "" {
		parsed, err := worker.ParseSchedule(schedule)
		if err != nil {
			capturer.Close()
			log.Fatalf("Invalid schedule: %v", err)
		}
		if err := w.Schedule(ctx, parsed, args[0], args[1], handle); err != nil && !errors.Is(err, context.Canceled) {
			capturer.Close()
			log.Fatalf("Scheduler stopped: %v", err)
		}
		return
	}

	output, err := w.Process(ctx, args[0], args[1])
	if err != nil {
		capturer.Close()
		log.Fatalf("Failed to process snapshot: %v", err)
	}
	if err := handle(ctx, output); err != nil {
		capturer.Close()
		log.Fatalf("Failed to deliver result: %v", err)
	}
}
