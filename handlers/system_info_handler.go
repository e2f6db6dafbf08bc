package handlers

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"score-bot/bot"
	"score-bot/utils/database"
)

var startedAt = time.Now()

func handleAbout(ctx context.Context, b *bot.Bot, _ *discordgo.InteractionCreate) (*discordgo.MessageEmbed, error) {
	cpuCount, _ := cpu.CountsWithContext(ctx, true)
	cpuPercent, _ := cpu.PercentWithContext(ctx, 0, false)
	usage := 0.0
	if len(cpuPercent) > 0 {
		usage = cpuPercent[0]
	}
	var memory string
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		memory = fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024)
	}
	var osVersion, kernel string
	if info, err := host.InfoWithContext(ctx); err == nil {
		osVersion = info.Platform + " " + info.PlatformVersion
		kernel = info.KernelVersion
	}

	guilds, err := database.Guilds(ctx, b.DB)
	if err != nil {
		return nil, err
	}

	return &discordgo.MessageEmbed{
		Title: "System information",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS", Value: orDash(osVersion), Inline: true},
			{Name: "🔧 Kernel", Value: orDash(kernel), Inline: true},
			{Name: "🐹 Go", Value: runtime.Version(), Inline: true},
			{Name: "🔼 CPUs", Value: fmt.Sprint(cpuCount), Inline: true},
			{Name: "🔥 CPU usage", Value: fmt.Sprintf("%.1f%%", usage), Inline: true},
			{Name: "🧠 Memory", Value: orDash(memory), Inline: true},
			{Name: "🗃️ Database", Value: b.DB.Driver(), Inline: true},
			{Name: "⏱️ Latency", Value: b.Session.HeartbeatLatency().String(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprint(runtime.NumGoroutine()), Inline: true},
			{Name: "🌍 Servers", Value: fmt.Sprint(len(guilds)), Inline: true},
			{Name: "⏳ Uptime", Value: time.Since(startedAt).Truncate(time.Second).String(), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "System monitor · " + time.Now().Format("15:04"),
		},
	}, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
