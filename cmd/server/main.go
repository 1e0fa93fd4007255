package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/GooferByte/positions/internal/config"
	"github.com/GooferByte/positions/internal/http"
	"github.com/GooferByte/positions/internal/logger"
	"github.com/GooferByte/positions/internal/pricing"
	"github.com/GooferByte/positions/internal/repository"
	"github.com/GooferByte/positions/internal/repository/memory"
	"github.com/GooferByte/positions/internal/repository/postgres"
	"github.com/GooferByte/positions/internal/service"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Environment, cfg.LogLevel)
	priceSvc := pricing.NewRandomPriceService(cfg.PriceTTL)

	var repoImpl repository.TransactionRepository
	if cfg.UseInMemoryStore {
		log.Warn("DATABASE_URL not set, using in-memory store. Data will reset on restart.")
		repoImpl = memory.New()
	} else {
		db, err := sql.Open("postgres", cfg.DBURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to postgres")
		}
		if err := db.Ping(); err != nil {
			log.WithError(err).Fatal("postgres ping failed")
		}
		pg := postgres.New(db)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = pg.Migrate(ctx)
		cancel()
		if err != nil {
			log.WithError(err).Fatal("postgres migration failed")
		}
		repoImpl = pg
		defer db.Close()
		log.Info("connected to postgres")
	}

	scale := cfg.Scale()
	positionSvc := service.NewPositionService(repoImpl, priceSvc, scale, cfg.MinorUnitDigits, log)
	router := http.Router(positionSvc, http.Display{ShareScale: scale.Shares, MinorUnitDigits: cfg.MinorUnitDigits}, log)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.WithFields(logrus.Fields{
		"shareScale":        scale.Shares,
		"weightDenominator": scale.Weight,
	}).Infof("position valuation service listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}
