// Package config provides functionality for managing configuration
// options for the client using command-line flags, environment variables
// and an optional JSON file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"
)

// Options holds the configuration values for the client.
type Options struct {
	// RegistryURL is the base URL of the patient registry service.
	RegistryURL string

	// TimeoutSeconds bounds each registry request.
	TimeoutSeconds int

	// RedisAddr selects the redis cache backend; empty runs in-memory.
	RedisAddr string

	// StalenessSeconds overrides the cache staleness window; zero keeps
	// the default.
	StalenessSeconds int

	// Config is the path to the config file.
	Config string
}

// Timeout returns the request timeout as a duration.
func (o *Options) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// Staleness returns the staleness override as a duration, zero when unset.
func (o *Options) Staleness() time.Duration {
	return time.Duration(o.StalenessSeconds) * time.Second
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.RegistryURL, "url", "http://localhost:8080", "registry service base URL")
	flag.IntVar(&options.TimeoutSeconds, "timeout", 10, "request timeout in seconds")
	flag.StringVar(&options.RedisAddr, "redis", "", "redis address for the cache backend (empty for in-memory)")
	flag.IntVar(&options.StalenessSeconds, "staleness", 0, "cache staleness window in seconds (0 for default)")
	flag.StringVar(&options.Config, "config", "", "path to config file")
	flag.StringVar(&options.Config, "c", "", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct
// containing the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if url := os.Getenv("REGISTRY_URL"); url != "" {
		options.RegistryURL = url
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		options.RedisAddr = addr
	}

	return options
}
