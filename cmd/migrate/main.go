package main

import (
	"flag"
	"fmt"
	"os"

	"payment-facilitator/config"
	pgStorage "payment-facilitator/internal/adapter/storage/postgres"
	"payment-facilitator/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a config file")
	down := flag.Bool("down", false, "roll back every applied migration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	if *down {
		err = pgStorage.RollbackMigrations(cfg.Database.DSN(), log)
	} else {
		err = pgStorage.RunMigrations(cfg.Database.DSN(), log)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
