package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/bloodlink/internal/flagx"
)

// parseFlags overlays cfg with command-line flags.
//
//	-a string   API base URL
//	-s string   chat server URL
//	-d string   local data file
//	-v          verbose (debug) logging
//
// Only these flags are picked out of args; the rest belong to other
// loaders.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-d", "-v"})

	fs := flag.NewFlagSet("bloodlink", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.ChatBaseURL, "s", cfg.ChatBaseURL, "chat server URL")
	fs.StringVar(&cfg.DataFile, "d", cfg.DataFile, "local data file")
	verbose := fs.Bool("v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	return nil
}
