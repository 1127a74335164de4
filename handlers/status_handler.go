package handlers

import (
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"orgbot/bot"
	"orgbot/model"
)

// StatusHandler answers /status with host metrics and the bot's own state.
func StatusHandler(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	cpuCount, _ := cpu.Counts(true)
	cpuPercent, _ := cpu.Percent(0, false)
	vm, _ := mem.VirtualMemory()
	hostInfo, _ := host.Info()

	cpuUsage := "n/a"
	if len(cpuPercent) > 0 {
		cpuUsage = fmt.Sprintf("%.1f%%", cpuPercent[0])
	}

	activeAbsences := countActive(b, model.KindAbsence)
	activeSanctions := 0
	if sanctions, err := b.Records.ListSanctions(); err == nil {
		activeSanctions = len(sanctions)
	}
	blacklisted := countActive(b, model.KindBlacklist)

	embed := &discordgo.MessageEmbed{
		Title: "Bot Status",
		Color: 0x5865F2, // Discord Blurple
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS", Value: fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion), Inline: true},
			{Name: "🐹 Go", Value: runtime.Version(), Inline: true},
			{Name: "⏳ Uptime", Value: time.Since(b.StartTime).Round(time.Second).String(), Inline: true},
			{Name: "🔼 CPUs", Value: fmt.Sprintf("%d", cpuCount), Inline: true},
			{Name: "🔥 CPU Usage", Value: cpuUsage, Inline: true},
			{Name: "🧠 Memory", Value: fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024), Inline: true},
			{Name: "⏱️ WebSocket Latency", Value: s.HeartbeatLatency().String(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "🏖️ Active Absences", Value: fmt.Sprintf("%d", activeAbsences), Inline: true},
			{Name: "⚖️ Active Sanctions", Value: fmt.Sprintf("%d", activeSanctions), Inline: true},
			{Name: "🚫 Blacklisted", Value: fmt.Sprintf("%d", blacklisted), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Status as of %s", time.Now().Format("15:04")),
		},
	}

	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func countActive(b *bot.Bot, kind model.RecordKind) int {
	records, err := b.Manager.ListActive(kind)
	if err != nil {
		return 0
	}
	return len(records)
}
