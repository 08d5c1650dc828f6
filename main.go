package main

import (
	"github.com/shelfward/shelfward/internal/config"
	"github.com/shelfward/shelfward/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	cfg := config.NewConfig()
	entrypoint.Run(cfg, Version)
}
