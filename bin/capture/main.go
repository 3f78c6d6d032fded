package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"pixeldiff/internal/capture"
	"pixeldiff/internal/config"
	"pixeldiff/internal/storage"
)

type SnapshotResult struct {
	ScreenshotPath string `json:"screenshotPath"`
}

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
	var maskSelectors string
	var delay time.Duration
	var viewportWidth int
	var viewportHeight int
	var fullPage bool
	var userAgent string
	var chromeDevtoolsProtocolURL string
	var headers headers
	flag.StringVar(&storageURL, "storage-url", config.EnvOrDefault("STORAGE_URL", config.EnvOrDefault("DIRECTORY", "/tmp")), "Output location (a directory or s3://bucket/prefix)")
	flag.StringVar(&maskSelectors, "mask-selectors", config.EnvOrDefault("MASK_SELECTORS", ""), "Comma-separated list of CSS selectors to mask during capture")
	flag.DurationVar(&delay, "delay", config.EnvOrDefault("DELAY", 3*time.Second), "Delay before capturing")
	flag.IntVar(&viewportWidth, "viewport-width", config.EnvOrDefault("VIEWPORT_WIDTH", 1920), "Viewport width in pixels")
	flag.IntVar(&viewportHeight, "viewport-height", config.EnvOrDefault("VIEWPORT_HEIGHT", 1080), "Viewport height in pixels")
	flag.BoolVar(&fullPage, "full-page", config.EnvOrDefault("FULL_PAGE", true), "Capture the whole scrollable page")
	flag.StringVar(&userAgent, "user-agent", config.EnvOrDefault("USER_AGENT", ""), "User-Agent string to use for requests")
	flag.StringVar(&chromeDevtoolsProtocolURL, "chrome-devtools-protocol-url", config.EnvOrDefault("CHROME_DEVTOOLS_PROTOCOL_URL", ""), "Connect to existing browser via Chrome DevTools Protocol URL (e.g., http://localhost:9222)")
	flag.Var(&headers, "H", "Add HTTP header (can be used multiple times, e.g., -H 'Accept: text/html' -H 'Authorization: Bearer token')")

	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		log.Fatalf("url not specified")
	}
	url := args[0]

	ctx := context.Background()

	s, err := storage.ForURL(ctx, storageURL)
	if err != nil {
		log.Fatalf("Failed to create storage backend: %v", err)
	}

	c := capture.DefaultPlaywrightConfig()
	if delay > 0 {
		c.Delay = delay
	}
	if chromeDevtoolsProtocolURL != "" {
		c.ChromeDevtoolsProtocolURL = chromeDevtoolsProtocolURL
	}
	if display := os.Getenv("DISPLAY"); display != "" {
		c.Headless = false
	}
	if viewportWidth > 0 {
		c.ViewportWidth = viewportWidth
	}
	if viewportHeight > 0 {
		c.ViewportHeight = viewportHeight
	}
	if userAgent != "" {
		c.UserAgent = userAgent
	}
	c.FullPage = fullPage

	capturer, err := capture.NewPlaywrightCapturer(ctx, c)
	if err != nil {
		log.Fatalf("Failed to create capturer: %v", err)
	}
	defer capturer.Close()

	result, err := capturer.Capture(ctx, url, capture.NewCaptureOptions(headers, maskSelectors))
	if err != nil {
		capturer.Close()
		log.Fatalf("Failed to capture screenshot: %v", err)
	}

	h := sha256.Sum256([]byte(url))
	key := fmt.Sprintf("snapshot/capture/%s/%s.png", hex.EncodeToString(h[:])[:16], time.Now().Format("20060102150405"))

	path, err := s.Put(ctx, key, result.Screenshot)
	if err != nil {
		capturer.Close()
		log.Fatalf("Failed to upload: %v", err)
	}

	if err := json.NewEncoder(os.Stdout).Encode(SnapshotResult{
		ScreenshotPath: path,
	}); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}
