package main

import (
	"github.com/iliyamo/healthsync/internal/config"
	"github.com/iliyamo/healthsync/internal/database"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(app *Context) error {
	cfg := config.LoadDB()
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	return database.Migrate(app.Ctx, db, database.Migrations(), app.Log)
}
