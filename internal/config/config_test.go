package config

import (
	"testing"
	"time"

	"github.com/benbeisheim/chess-backend/internal/testutil"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, env(nil))
	testutil.RequireNoError(t, err)
	testutil.AssertEqual(t, cfg, Default())
}

func TestLoadEnvironment(t *testing.T) {
	cfg, err := Load(nil, env(map[string]string{
		"CHESS_ADDR":           ":8080",
		"CHESS_ALLOW_ORIGINS":  "http://a.test, http://b.test",
		"CHESS_DATA_DIR":       "/var/lib/chess",
		"CHESS_STRICT":         "true",
		"CHESS_MATCH_INTERVAL": "250ms",
	}))
	testutil.RequireNoError(t, err)

	want := Default()
	want.Addr = ":8080"
	want.AllowOrigins = []string{"http://a.test", "http://b.test"}
	want.DataDir = "/var/lib/chess"
	want.Strict = true
	want.MatchInterval = 250 * time.Millisecond
	testutil.AssertEqual(t, cfg, want)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	cfg, err := Load(
		[]string{"-addr", ":9000", "-strict=false", "-origins", "http://c.test"},
		env(map[string]string{"CHESS_ADDR": ":8080", "CHESS_STRICT": "1"}),
	)
	testutil.RequireNoError(t, err)
	testutil.AssertEqual(t, cfg.Addr, ":9000")
	testutil.AssertEqual(t, cfg.Strict, false)
	testutil.AssertEqual(t, cfg.AllowOrigins, []string{"http://c.test"})
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"bad strict", nil, map[string]string{"CHESS_STRICT": "maybe"}},
		{"bad interval", nil, map[string]string{"CHESS_MATCH_INTERVAL": "soon"}},
		{"zero interval", []string{"-match-interval", "0s"}, nil},
		{"unknown flag", []string{"-nope"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.args, env(tt.env)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}
