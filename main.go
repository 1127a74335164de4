package main

import (
	"log"
	"os"

	"orgbot/bot"
	"orgbot/config"
	"orgbot/handlers"
	"orgbot/keepalive"
	"orgbot/utils/database/records"
	"orgbot/utils/database/registrations"
	"orgbot/utils/database/tickets"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	recordDB, err := records.Init("./data/records.db")
	if err != nil {
		log.Fatalf("Error initializing record database: %v", err)
	}
	regDB, err := registrations.Init("./data/registrations.db")
	if err != nil {
		log.Fatalf("Error initializing registration database: %v", err)
	}
	ticketDB, err := tickets.Init("./data/tickets.db")
	if err != nil {
		log.Fatalf("Error initializing ticket database: %v", err)
	}

	b, err := bot.New(cfg,
		records.NewStore(recordDB),
		registrations.NewStore(regDB),
		tickets.NewStore(ticketDB))
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	handlers.Register(b)
	keepalive.Start(cfg.KeepAliveAddr)

	b.Run()

	defer b.Close()
}
