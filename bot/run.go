package bot

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"score-bot/utils"
)

// Run opens the gateway, registers commands, starts the scheduler and blocks
// until the process is signalled.
func (b *Bot) Run() error {
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if !b.GetConfig().DisableCommandUnregister {
		slog.Info("unregistering guild commands")
		guilds, err := b.Platform.Guilds(b.ctx)
		if err != nil {
			slog.Warn("could not fetch guilds", "err", err)
		}
		for _, guildID := range guilds {
			b.UnregisterCommands(guildID)
		}
	}

	if err := b.RefreshCommands(); err != nil {
		return err
	}

	b.scheduler.Start()

	slog.Info("bot is now running, press CTRL-C to exit")
	utils.LogInfo(b.Session, b.GetConfig().LogChannelID, "System", "Startup", "Bot has started successfully.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
	return nil
}
