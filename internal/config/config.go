package config

import (
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/GooferByte/positions/internal/position"
	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Port             string
	DBURL            string
	UseInMemoryStore bool
	// PriceTTL is how long latest quotes are cached. Zero disables caching.
	PriceTTL    time.Duration
	Environment string
	LogLevel    string
	// ShareScale encodes share counts as integers (1000000 = six decimals).
	ShareScale int64
	// WeightDenominator is the weight of a full (100%) classification.
	WeightDenominator int64
	// MinorUnitDigits is the number of decimals of the currency's minor unit.
	MinorUnitDigits int32
}

// Load reads configuration from environment variables. A .env file is loaded
// if present to simplify local development. We look in bin/.env so the file
// can live alongside a built binary, and fall back to .env in the project
// root for compatibility.
func Load() Config {
	loadDotEnv()

	cfg := Config{
		Port:              getString("PORT", "8080"),
		DBURL:             getString("DATABASE_URL", ""),
		PriceTTL:          getDurationMinutes("PRICE_TTL_MINUTES", 60),
		Environment:       getString("ENVIRONMENT", "local"),
		LogLevel:          getString("LOG_LEVEL", ""),
		ShareScale:        getPositiveInt("SHARE_SCALE", position.DefaultScale.Shares),
		WeightDenominator: getPositiveInt("WEIGHT_DENOMINATOR", position.DefaultScale.Weight),
		MinorUnitDigits:   int32(getIntInRange("MINOR_UNIT_DIGITS", 2, 0, 18)),
	}

	cfg.UseInMemoryStore = cfg.DBURL == ""
	return cfg
}

// Scale returns the fixed-point factors the valuation engine works with.
func (c Config) Scale() position.Scale {
	return position.Scale{Shares: c.ShareScale, Weight: c.WeightDenominator}
}

func loadDotEnv() {
	candidates := []string{
		filepath.Join("bin", ".env"),
		".env",
	}

	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		candidates = append([]string{
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "bin", ".env"),
		}, candidates...)
	}

	for _, path := range candidates {
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getPositiveInt(key string, fallback int64) int64 {
	return getIntInRange(key, fallback, 1, math.MaxInt64)
}

// getIntInRange reads an integer in [lo, hi], falling back when unset or out
// of range.
func getIntInRange(key string, fallback, lo, hi int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil || n < lo || n > hi {
		log.Printf("invalid value %q for %s, using fallback %d", val, key, fallback)
		return fallback
	}
	return n
}

// getDurationMinutes reads a non-negative number of minutes. Zero is kept.
func getDurationMinutes(key string, fallback int) time.Duration {
	return time.Duration(getIntInRange(key, int64(fallback), 0, math.MaxInt32)) * time.Minute
}
