package main

import (
	"context"
	"flag"
	"log"

	"pixeldiff/internal/config"
	"pixeldiff/internal/runnable"
	"pixeldiff/internal/storage"
)

func main() {
	var archiveURL string
	flag.StringVar(&archiveURL, "archive-url", config.EnvOrDefault("ARCHIVE_URL", ""), "Directory or s3://bucket/prefix to keep every diff image in")
	flag.BoolVar(&runnable.Debug, "debug", config.EnvOrDefault("DEBUG", false), "Enable text logs and pprof handlers")
	flag.Parse()

	ctx := context.Background()

	var archive storage.Storage
	if archiveURL != "" {
		s, err := storage.ForURL(ctx, archiveURL)
		if err != nil {
			log.Fatalf("Failed to create storage backend: %v", err)
		}
		archive = s
	}

	server := runnable.NewServer(archive)
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
