// Package config reads server settings from flags, falling back to CHESS_*
// environment variables and then to the development defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr             string
	AllowOrigins     []string
	DataDir          string
	Strict           bool
	MatchInterval    time.Duration
	WSReadBufferSize int
}

func Default() Config {
	return Config{
		Addr:             ":3000",
		AllowOrigins:     []string{"http://localhost:5173"},
		Strict:           false,
		MatchInterval:    time.Second,
		WSReadBufferSize: 1024,
	}
}

// Load parses args (without the program name) over the environment.
func Load(args []string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Default()

	if v := getenv("CHESS_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("CHESS_ALLOW_ORIGINS"); v != "" {
		cfg.AllowOrigins = splitList(v)
	}
	if v := getenv("CHESS_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := getenv("CHESS_STRICT"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("CHESS_STRICT: %w", err)
		}
		cfg.Strict = strict
	}
	if v := getenv("CHESS_MATCH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("CHESS_MATCH_INTERVAL: %w", err)
		}
		cfg.MatchInterval = d
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	origins := fs.String("origins", strings.Join(cfg.AllowOrigins, ","), "comma-separated allowed CORS origins")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "game archive directory (empty keeps it in memory)")
	fs.BoolVar(&cfg.Strict, "strict", cfg.Strict, "reject moves that leave the mover's king in check")
	fs.DurationVar(&cfg.MatchInterval, "match-interval", cfg.MatchInterval, "matchmaking poll interval")
	fs.IntVar(&cfg.WSReadBufferSize, "ws-buffer", cfg.WSReadBufferSize, "websocket read/write buffer size")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.AllowOrigins = splitList(*origins)

	if cfg.MatchInterval <= 0 {
		return Config{}, fmt.Errorf("match interval must be positive, got %s", cfg.MatchInterval)
	}
	return cfg, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
