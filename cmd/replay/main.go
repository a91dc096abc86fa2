package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"kestrel/internal/common"
	"kestrel/internal/engine"
	"kestrel/internal/script"
)

// tradeLogger prints every match to the console log.
type tradeLogger struct{}

func (tradeLogger) ReportTrade(trade common.Trade) {
	log.Info().
		Str("trade", trade.ID).
		Uint64("buy", uint64(trade.BuyID)).
		Uint64("sell", uint64(trade.SellID)).
		Int32("price", int32(trade.Price)).
		Uint64("quantity", uint64(trade.Quantity)).
		Msg("trade")
}

func main() {
	file := flag.String("file", "", "Script file to replay (compulsory)")
	verbose := flag.Bool("verbose", false, "Log every trade as it prints")
	cutoffStr := flag.String("cutoff", "16:00", "Daily good-for-day cutoff (HH:MM)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *file == "" {
		fmt.Println("Error: -file is compulsory.")
		flag.Usage()
		os.Exit(1)
	}

	cutoff, err := parseCutoff(*cutoffStr)
	if err != nil {
		log.Fatal().Err(err).Msg("bad -cutoff")
	}

	actions, result, err := script.ParseFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("unable to parse script")
	}

	cfg := engine.Config{Cutoff: &cutoff}
	if *verbose {
		cfg.Reporter = tradeLogger{}
	}
	eng := engine.New(cfg)
	defer func() {
		if err := eng.Close(); err != nil {
			log.Error().Err(err).Msg("engine shutdown")
		}
	}()

	trades := 0
	for _, action := range actions {
		switch action.Type {
		case script.Add:
			done, err := eng.AddOrder(common.NewOrder(
				action.OrderType, action.OrderID, action.Side,
				action.Price, action.Quantity,
			))
			if err != nil {
				log.Fatal().Err(err).Uint64("id", uint64(action.OrderID)).Msg("add rejected")
			}
			trades += len(done)
		case script.Modify:
			done, err := eng.ModifyOrder(action.OrderID, action.Side, action.Price, action.Quantity)
			if err != nil {
				log.Fatal().Err(err).Uint64("id", uint64(action.OrderID)).Msg("modify rejected")
			}
			trades += len(done)
		case script.Cancel:
			eng.CancelOrder(action.OrderID)
		}
	}

	depth := eng.Snapshot()
	size := eng.Size()

	log.Info().
		Int("trades", trades).
		Int("orders", size).
		Int("bid_levels", len(depth.Bids)).
		Int("ask_levels", len(depth.Asks)).
		Msg("replay complete")

	if size != result.Total ||
		len(depth.Bids) != result.BidLevels ||
		len(depth.Asks) != result.AskLevels {
		log.Error().
			Int("want_orders", result.Total).
			Int("want_bid_levels", result.BidLevels).
			Int("want_ask_levels", result.AskLevels).
			Msg("final book does not match script result")
		os.Exit(1)
	}
}

func parseCutoff(str string) (engine.Cutoff, error) {
	parts := strings.Split(str, ":")
	if len(parts) != 2 {
		return engine.Cutoff{}, fmt.Errorf("cutoff %q: want HH:MM", str)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return engine.Cutoff{}, fmt.Errorf("cutoff hour %q", parts[0])
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return engine.Cutoff{}, fmt.Errorf("cutoff minute %q", parts[1])
	}
	return engine.Cutoff{Hour: hour, Minute: minute}, nil
}
