package ticket

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"orgbot/lifecycle"
	"orgbot/utils"
)

const (
	PanelTitle = "Support Tickets"
	panelColor = 0x553c9a
)

// Panel is the fixed message members click to open a ticket.
func Panel() lifecycle.Message {
	return lifecycle.Message{
		Title: PanelTitle,
		Description: "Need to talk to staff privately? Open a ticket and a " +
			"dedicated channel is created for you. One open ticket per member.",
		Color: panelColor,
		Buttons: []lifecycle.Button{
			{CustomID: "ticket:open", Label: "Open Ticket", Emoji: "🎫", Style: lifecycle.ButtonPrimary},
		},
	}
}

// openModal collects the category and subject of a new ticket.
func openModal() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		utils.TextInputRow("type", "Ticket type", "support, report, question...", discordgo.TextInputShort, true),
		utils.TextInputRow("reason", "What do you need?", "", discordgo.TextInputParagraph, true),
	}
}

// Opening is the first message of a ticket channel, carrying the close
// button.
func Opening(t string, ownerID, reason, staffRoleID string) lifecycle.Message {
	return lifecycle.Message{
		Title: fmt.Sprintf("Ticket: %s", t),
		Description: fmt.Sprintf("<@%s> opened this ticket. <@&%s> will be with you shortly.\n\n**Subject:** %s",
			ownerID, staffRoleID, reason),
		Color: panelColor,
		Buttons: []lifecycle.Button{
			{CustomID: "ticket:close", Label: "Close Ticket", Emoji: "🔒", Style: lifecycle.ButtonDanger},
		},
	}
}
