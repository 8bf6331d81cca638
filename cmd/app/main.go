package main

import (
	"context"
	"flag"
	"log"

	"CoinPulse/internal/di"
	"CoinPulse/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	once := flag.Bool("once", false, "run a single monitoring tick and exit")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if *once {
		if err := app.RunOnce(context.Background()); err != nil {
			log.Fatalf("tick failed: %v", err)
		}
		return
	}

	if err := app.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
