package main

import (
	"context"
	"io"

	"github.com/wikivault/wikivault"
	"github.com/wikivault/wikivault/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx         context.Context
	Stdout      io.Writer
	Stderr      io.Writer
	Config      *wikivault.Config
	Documents   wikivault.DocumentService
	Checkpoints wikivault.CheckpointService
	Engine      *crawl.Engine
	Extractor   wikivault.Extractor
	Converter   wikivault.Converter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config string `short:"c" default:"wikivault.yaml" help:"Path to the YAML configuration file"`

	Crawl  CrawlCmd  `cmd:"" help:"Crawl the configured wiki, resuming from the last checkpoint"`
	Status StatusCmd `cmd:"" help:"Show checkpoint position and document counts"`
	Reset  ResetCmd  `cmd:"" help:"Clear the checkpoint so the next crawl starts fresh"`
	Export ExportCmd `cmd:"" help:"Export stored documents as Markdown files"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Verbose bool `short:"v" help:"Enable debug logging"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct{}

// ResetCmd is the "reset" subcommand.
type ResetCmd struct {
	Force bool `help:"Confirm clearing the checkpoint"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Dir string `short:"d" default:"./export" help:"Output directory for Markdown files"`
}
