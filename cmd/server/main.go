package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/AnDev002/cpotrade/params"
	"github.com/AnDev002/cpotrade/pkg/api"
	"github.com/AnDev002/cpotrade/pkg/app/core/account"
	"github.com/AnDev002/cpotrade/pkg/app/core/funding"
	"github.com/AnDev002/cpotrade/pkg/app/core/market"
	"github.com/AnDev002/cpotrade/pkg/app/spot"
	"github.com/AnDev002/cpotrade/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv("") // "" means load from .env in current directory

	// Setup logging (write to both console and file)
	logger, err := util.NewLoggerWithFile(cfg.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.LogFile)

	// ---- Markets ----
	pairs := market.NewRegistry()
	cpoOgn, err := market.NewPair("CPO-OGN", string(account.CPO), string(account.OGN), market.PairParams{
		MaxPrice:    cfg.Trading.MaxPrice,
		MaxOrderQty: cfg.Trading.MaxOrderQty,
	})
	if err != nil {
		sugar.Fatalw("pair_init_failed", "err", err)
	}
	if err := pairs.Register(cpoOgn); err != nil {
		sugar.Fatalw("pair_register_failed", "err", err)
	}

	// ---- Accounts + Engine ----
	accounts := account.NewManager()
	clock := util.RealClock{}

	engine := spot.NewEngine(pairs, accounts, clock, sugar)
	engine.HistoryLimit = cfg.Trading.TradeHistoryLimit

	// ---- Funding desk ----
	desk := funding.NewDesk(accounts, cfg.Funding.WithdrawFee, clock)

	sugar.Infow("engine_initialized",
		"pairs", pairs.Count(),
		"max_price", cfg.Trading.MaxPrice,
		"max_order_qty", cfg.Trading.MaxOrderQty,
		"withdraw_fee", cfg.Funding.WithdrawFee)

	// ---- API Server ----
	apiServer := api.NewServer(engine, desk, cfg.API.AllowedOrigins)

	// Hook engine to API server: broadcast trades when they execute
	engine.OnTrade = func(t spot.Trade) {
		apiServer.BroadcastTrade(t)
	}

	go func() {
		sugar.Infow("api_server_starting", "addr", cfg.API.Addr)
		if err := apiServer.Start(cfg.API.Addr); err != nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	sugar.Info("shutting down")
}
