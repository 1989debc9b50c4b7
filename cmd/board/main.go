package main

import (
	"context"
	"log"
	"os"

	"postboard/internal/board/cli"
	"postboard/internal/board/config"
	"postboard/internal/buildinfo"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
