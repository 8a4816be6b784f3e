// Command heimdalld runs the matching engine and derivatives core behind
// the demo TCP gateway.
package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"heimdall/internal/config"
	"heimdall/internal/engine"
	"heimdall/internal/gateway"
	"heimdall/internal/perp"
	"heimdall/internal/pricescalar"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	minPrice, err := pricescalar.FromString(cfg.Book.MinPrice)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid book.min_price")
	}
	maxPrice, err := pricescalar.FromString(cfg.Book.MaxPrice)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid book.max_price")
	}
	maxQty, err := pricescalar.FromString(cfg.Book.MaxQuantity)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid book.max_quantity")
	}

	book := engine.NewOrderBook(minPrice, maxPrice, maxQty).WithLogger(log)
	oracle := perp.NewOraclePrice(pricescalar.FromInt(1000))

	srv := gateway.New(cfg.Gateway.ListenAddr, book, oracle, rand.New(rand.NewSource(1)), cfg.Gateway.WorkerCount, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("gateway exited")
	}
}
