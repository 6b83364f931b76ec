package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/cmskeeper/internal/cmsctl"
	"github.com/dmitrijs2005/cmskeeper/internal/logging"
	"github.com/dmitrijs2005/cmskeeper/internal/server"
	"github.com/dmitrijs2005/cmskeeper/internal/server/config"
	"github.com/dmitrijs2005/cmskeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cmskeeper/internal/server/services"
)

func main() {

	cmd, err := cmsctl.Parse(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()
	cfg := config.LoadConfig()

	rm := repomanager.NewPostgresRepositoryManager()
	db, err := server.OpenDatabase(ctx, cfg.DatabaseDSN, rm)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	if err := cmd.ReadPassword(os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}

	// No mail is sent when creating a user.
	users := services.NewUserService(db, rm, nil, logging.New(cfg.LogLevel))
	if err := cmd.Execute(ctx, users, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}

}
