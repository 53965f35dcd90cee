package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/filekeeper/internal/server"
	"github.com/dmitrijs2005/filekeeper/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		// a server that cannot open its database or storage root must not
		// come up looking healthy
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
