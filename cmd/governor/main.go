package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/danielpatrickdp/agent-governor/internal/config"
	"github.com/danielpatrickdp/agent-governor/internal/cycle"
	"github.com/danielpatrickdp/agent-governor/internal/store"
)

// #region main

// governor reads one cycle request per line from stdin as JSON and writes
// one decision record per line to stdout. Logs go to stderr.
func main() {
	dbPath := envOr("GOVERNOR_DB", "governor.db")
	configPath := os.Getenv("GOVERNOR_CONFIG")
	profileName := os.Getenv("GOVERNOR_PROFILE")

	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel(),
		TimeFormat: time.TimeOnly,
	}))

	profile := config.Default()
	if configPath != "" {
		var err error
		profile, err = config.Load(configPath, profileName)
		if err != nil {
			log.Error("load config", "path", configPath, "err", err)
			os.Exit(1)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		log.Error("open store", "path", dbPath, "err", err)
		os.Exit(1)
	}
	defer db.Close()

	runner := cycle.NewRunner(db, profile, log)
	log.Info("governor ready", "db", dbPath, "config", configPath)

	enc := json.NewEncoder(os.Stdout)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var in cycle.Input
		if err := json.Unmarshal(line, &in); err != nil {
			log.Error("bad request line", "err", err)
			writeError(enc, "", fmt.Sprintf("parse request: %v", err))
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		res, err := runner.RunCycle(ctx, in)
		cancel()
		if err != nil {
			log.Error("cycle failed", "agent_id", in.AgentID, "err", err)
			writeError(enc, in.AgentID, err.Error())
			continue
		}

		if err := enc.Encode(res); err != nil {
			log.Error("write response", "err", err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Error("read stdin", "err", err)
		os.Exit(1)
	}
}

// #endregion main

// #region helpers

type errorLine struct {
	AgentID string `json:"agent_id,omitempty"`
	Error   string `json:"error"`
}

func writeError(enc *json.Encoder, agentID, msg string) {
	_ = enc.Encode(errorLine{AgentID: agentID, Error: msg})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func logLevel() slog.Level {
	switch os.Getenv("GOVERNOR_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// #endregion helpers
