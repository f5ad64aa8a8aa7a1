package params

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type API struct {
	Addr           string
	AllowedOrigins []string
}

type Trading struct {
	// MaxOrderQty and MaxPrice bound every submitted order.
	MaxOrderQty decimal.Decimal
	MaxPrice    decimal.Decimal

	// TradeHistoryLimit caps retained trades per pair for the history API.
	TradeHistoryLimit int
}

type Funding struct {
	// WithdrawFee is a flat fee charged in the withdrawn asset when a
	// withdrawal is approved.
	WithdrawFee decimal.Decimal
}

type Config struct {
	API     API
	Trading Trading
	Funding Funding
	LogFile string
}

func Default() Config {
	return Config{
		API: API{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:3001"},
		},
		Trading: Trading{
			MaxOrderQty:       decimal.NewFromInt(1_000_000),
			MaxPrice:          decimal.NewFromInt(100),
			TradeHistoryLimit: 1000,
		},
		Funding: Funding{
			WithdrawFee: decimal.NewFromInt(1),
		},
		LogFile: "data/server.log",
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	// Try to load .env file (optional - won't fail if not exists)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load() // loads .env from current directory
	}

	if addr := os.Getenv("API_ADDR"); addr != "" {
		cfg.API.Addr = addr
	}
	if origins := os.Getenv("API_ALLOWED_ORIGINS"); origins != "" {
		cfg.API.AllowedOrigins = strings.Split(origins, ",")
	}

	if qty := os.Getenv("TRADING_MAX_ORDER_QTY"); qty != "" {
		if d, err := decimal.NewFromString(qty); err == nil && d.IsPositive() {
			cfg.Trading.MaxOrderQty = d
		}
	}
	if price := os.Getenv("TRADING_MAX_PRICE"); price != "" {
		if d, err := decimal.NewFromString(price); err == nil && d.IsPositive() {
			cfg.Trading.MaxPrice = d
		}
	}
	if limit := os.Getenv("TRADING_HISTORY_LIMIT"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			cfg.Trading.TradeHistoryLimit = n
		}
	}

	if fee := os.Getenv("FUNDING_WITHDRAW_FEE"); fee != "" {
		if d, err := decimal.NewFromString(fee); err == nil && !d.IsNegative() {
			cfg.Funding.WithdrawFee = d
		}
	}

	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		cfg.LogFile = logFile
	}

	return cfg
}
