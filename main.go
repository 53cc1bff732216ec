package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/auth"
	"github.com/robalobadob/hangman/internal/database"
	"github.com/robalobadob/hangman/internal/httpserver"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/telemetry"
	"github.com/robalobadob/hangman/internal/words"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if getEnv("LOG_PRETTY", "") == "1" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if tc := telemetry.ConfigFromEnv(os.Getenv); tc.Enabled() {
		shutdown, err := telemetry.Setup(ctx, tc)
		if err != nil {
			log.Warn().Err(err).Msg("telemetry setup failed, running without traces")
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					log.Warn().Err(err).Msg("telemetry shutdown")
				}
			}()
		}
	}

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load dictionary")
	}

	db, err := database.Open(getEnv("DB_PATH", "./data/hangman.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	au := auth.NewService(db, auth.ConfigFromEnv(os.Getenv))
	srv := httpserver.New(store.NewMemoryStore(), db, au, words.Default(), httpserver.Config{
		MaxGuesses:      getEnvInt("DEFAULT_MAX_GUESSES", 7),
		DailyMaxGuesses: getEnvInt("DAILY_MAX_GUESSES", 6),
		DailySalt:       getEnv("DAILY_SALT", "local_dev_salt"),
		ClientOrigin:    getEnv("CLIENT_ORIGIN", "http://localhost:5173"),

		GameTTL:           getEnvDuration("GAME_TTL", 24*time.Hour),
		FinishedRetention: getEnvDuration("GAME_RETENTION", 10*time.Minute),
	})

	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting hangman server")
	if err := srv.Start(ctx, ":"+port); err != nil {
		log.Error().Err(err).Msg("server exited")
		return
	}
	log.Info().Msg("server stopped")
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
