package main

import (
	"flag"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/equitix/exchange-core/config"
	"github.com/equitix/exchange-core/pkg/infra"
	"go.uber.org/zap"
)

func main() {
	var configFile string
	var source string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.StringVar(&source, "source", "file://migrations", "Migration source")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}
	if cfg.EngineDB == nil {
		panic("engine_db is not configured")
	}

	if err := infra.Migrate(source, cfg.EngineDB.MigrationConnURL); err != nil {
		panic(err)
	}
	zap.S().Info("migration done")
}
