package main

import (
	"context"
	"log"

	"github.com/synkro/logistics-core/internal/app"
	"github.com/synkro/logistics-core/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	a, err := app.Build(context.Background(), cfg)
	if err != nil {
		log.Fatalf("build orchestrator app: %v", err)
	}

	if err := a.Run(); err != nil {
		log.Fatalf("orchestrator app exited with error: %v", err)
	}
}
