package main

import (
	"embed"

	"github.com/ghuser/contractflow/pkg/config"
	"github.com/ghuser/contractflow/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := migrator.RunMigrations(cfg.DefinitionDatabaseURL, MigrationsFS, migrator.WithVersionTable("goose_contract_version")); err != nil {
		panic(err)
	}
}
