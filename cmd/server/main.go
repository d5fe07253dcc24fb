// Command server loads a board and card-type config and serves the game over HTTP.
package main

import (
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"grid_tactics/internal/config"
	"grid_tactics/internal/httpx"
)

func main() {
	// .env is optional; real environment wins.
	_ = godotenv.Load()

	addr := flag.String("addr", getenv("GT_ADDR", ":8080"), "listen address")
	cfgPath := flag.String("config", getenv("GT_CONFIG", "configs/example.yaml"), "board and card-type config")
	level := flag.String("log-level", getenv("GT_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	jsonLogs := flag.Bool("log-json", getenb("GT_LOG_JSON", false), "emit JSON logs instead of console output")
	flag.Parse()

	setupLogging(*level, *jsonLogs)

	cfg, err := config.Load(*cfgPath)
	fatalIf(err, "load config")
	session, err := cfg.Build()
	fatalIf(err, "build session")
	defer session.Close()

	log.Info().
		Str("config", *cfgPath).
		Int("width", cfg.Board.Width).
		Int("height", cfg.Board.Height).
		Int("cards", len(cfg.Cards)).
		Str("phase", session.Turns.CurrentPhase().String()).
		Msg("session ready")

	srv := httpx.NewServer(session)
	fatalIf(srv.Listen(*addr), "http")
}

func setupLogging(level string, asJSON bool) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if !asJSON {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenb(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func fatalIf(err error, label string) {
	if err != nil {
		log.Fatal().Err(err).Msg(label)
	}
}
