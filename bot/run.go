package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"orgbot/utils"
)

func (b *Bot) Run() {
	if err := b.Session.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	b.RefreshCommands()

	// Bring the listing panels back in sync with their sources before any
	// sweep or interaction can touch them.
	if b.BlacklistListing != nil {
		if err := b.BlacklistListing.Refresh(); err != nil {
			log.Printf("Failed to refresh blacklist listing at startup: %v", err)
			utils.LogWarn(b.Session, b.Config.LogChannelID, "System", "Startup",
				fmt.Sprintf("Blacklist listing refresh failed: %v", err))
		}
	}
	if b.RosterListing != nil {
		if err := b.RosterListing.Refresh(); err != nil {
			log.Printf("Failed to refresh roster listing at startup: %v", err)
			utils.LogWarn(b.Session, b.Config.LogChannelID, "System", "Startup",
				fmt.Sprintf("Roster listing refresh failed: %v", err))
		}
	}

	b.scheduler.Start()

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	utils.LogInfo(b.Session, b.Config.LogChannelID, "System", "Startup", "Bot has started successfully.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}
