package main

import (
	"log"

	"agentgate/internal/config"
	httpinfra "agentgate/internal/infra/http"
)

func main() {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	srv := httpinfra.NewServer(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
