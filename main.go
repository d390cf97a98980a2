package main

import (
	"github.com/lifecheck/lifecheck/config"
	"github.com/lifecheck/lifecheck/models"
	"github.com/lifecheck/lifecheck/routes"
	"github.com/lifecheck/lifecheck/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.CheckIn{})

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
