package main

import (
	"context"
	"log"

	"github.com/bierclub/bier/internal/server"
	"github.com/bierclub/bier/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.MustLoad()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
