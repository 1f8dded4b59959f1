package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/keyshop-casino/internal/shared/logger"
	"github.com/radieske/keyshop-casino/internal/sim"
	"github.com/radieske/keyshop-casino/internal/wagering"
)

func main() {
	var (
		rounds   = flag.Int("rounds", 100000, "rodadas por jogo")
		seed     = flag.Uint64("seed", uint64(time.Now().UnixNano()), "semente do PCG (repetível)")
		stake    = flag.Int64("stake", 10, "stake por rodada")
		game     = flag.String("game", "both", "roulette | slots | both")
		kind     = flag.String("kind", string(wagering.KindColor), "tipo de aposta da roleta")
		selector = flag.String("selector", "red", "seletor da aposta da roleta")
		paytable = flag.String("paytable", os.Getenv("PAYTABLE_PATH"), "YAML da tabela (vazio = padrão)")
		env      = flag.String("env", "local", "ambiente do logger")
	)
	flag.Parse()

	log, err := logger.New("casino-sim", *env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	table := wagering.DefaultPaytable()
	if *paytable != "" {
		if table, err = wagering.LoadPaytable(*paytable); err != nil {
			log.Fatal("paytable", zap.String("path", *paytable), zap.Error(err))
		}
	}

	cfg := sim.Config{
		Rounds: *rounds,
		Seed:   *seed,
		Stake:  *stake,
		Bet:    sim.RouletteBet{Kind: wagering.BetKind(*kind), Selector: *selector},
	}
	log.Info("simulation starting",
		zap.Int("rounds", cfg.Rounds),
		zap.Uint64("seed", cfg.Seed),
		zap.Int64("stake", cfg.Stake),
		zap.String("game", *game),
	)

	ctx := context.Background()
	var reports []sim.Report
	if *game == "roulette" || *game == "both" {
		rep, err := sim.Roulette(ctx, table, cfg)
		if err != nil {
			log.Fatal("roulette simulation", zap.Error(err))
		}
		log.Info("roulette done",
			zap.String("bet", *kind+":"+*selector),
			zap.Float64("rtp", rep.RTP),
			zap.Float64("expectedRtp", rep.Expected),
			zap.Float64("maxPocketDeviation", rep.MaxPocketDeviation()),
		)
		reports = append(reports, rep)
	}
	if *game == "slots" || *game == "both" {
		rep, err := sim.Slots(ctx, table, cfg)
		if err != nil {
			log.Fatal("slots simulation", zap.Error(err))
		}
		log.Info("slots done",
			zap.Float64("rtp", rep.RTP),
			zap.Float64("expectedRtp", rep.Expected),
			zap.Ints("lineHits", rep.LineHits),
		)
		reports = append(reports, rep)
	}
	if len(reports) == 0 {
		log.Fatal("unknown game", zap.String("game", *game))
	}

	// relatório completo em JSON no stdout; logs vão para stderr
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		log.Fatal("encode report", zap.Error(err))
	}
}
