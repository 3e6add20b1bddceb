package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/saeidalz13/battleship-solo/api"
	"github.com/saeidalz13/battleship-solo/db"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
)

func main() {
	if os.Getenv("STAGE") != api.StageProd {
		if err := godotenv.Load(".env"); err != nil {
			log.Warn().Err(err).Msg("no .env file loaded")
		}
	}

	stage := os.Getenv("STAGE")
	if stage != api.StageDev && stage != api.StageProd {
		panic("stage must be either dev or prod")
	}

	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if stage == api.StageDev {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		panic(err)
	}

	opts := []api.Option{
		api.WithPort(port),
		api.WithStage(stage),
		api.WithTokenSecret(os.Getenv("MATCH_TOKEN_SECRET")),
		api.WithAllowedOrigins(strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",")...),
	}

	// analytics are optional, the game runs without a database
	if psqlUrl := os.Getenv("DATABASE_URL"); psqlUrl != "" {
		opts = append(opts, api.WithDb(db.MustConnectToDb(psqlUrl)))
	}

	if seedEnv := os.Getenv("RAND_SEED"); seedEnv != "" {
		seed, err := strconv.ParseInt(seedEnv, 10, 64)
		if err != nil {
			panic(err)
		}
		opts = append(opts, api.WithRandSeed(seed))
	}

	if botName := os.Getenv("BOT_NAME"); botName != "" {
		opts = append(opts, api.WithMatchOptions(mb.WithPlayerNames(mb.DefaultHumanName, botName)))
	}

	server := api.NewServer(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go server.CleanupPeriodically(ctx)

	log.Fatal().Err(server.Start()).Msg("server stopped")
}
