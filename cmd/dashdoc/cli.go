package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/dashdoc"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Catalog *dashdoc.Catalog
	Builder *Builder
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"c" type:"path" help:"Catalog configuration file (default: dashdoc.yaml in . or ~/.dashdoc)"`
	Verbose bool   `short:"v" help:"Log every fetch and index entry"`

	List     ListCmd     `cmd:"" help:"List the docsets in the catalog"`
	Classify ClassifyCmd `cmd:"" help:"Show the index entry type of a title"`
	Build    BuildCmd    `cmd:"" help:"Crawl and package docsets"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// ClassifyCmd is the "classify" subcommand.
type ClassifyCmd struct {
	Titles []string `arg:"" help:"TOC titles to classify"`
}

// BuildCmd is the "build" subcommand.
type BuildCmd struct {
	Names    []string      `arg:"" optional:"" help:"Docset titles or identifiers (default: all)"`
	Output   string        `short:"o" type:"path" help:"Output directory (default from config, else .)"`
	CacheDir string        `type:"path" help:"Cache TOC documents in this directory"`
	Browser  bool          `short:"b" help:"Fetch pages with a headless browser"`
	Timeout  time.Duration `default:"60s" help:"Per-request timeout"`
	Rate     float64       `help:"Requests per second per host (0: config value, else unlimited)"`
	Jobs     int           `short:"j" default:"1" help:"Docsets built concurrently"`
}
