package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"score-bot/commands"
	"score-bot/config"
	"score-bot/model"
	"score-bot/scanner"
	"score-bot/scoring"
	"score-bot/utils/database"
)

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	config             atomic.Pointer[model.Config]
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	DB                 *database.DB
	Platform           *Platform
	Engine             *scoring.Engine
	Cleaner            *scanner.Cleaner
	scheduler          *Scheduler
	ctx                context.Context
	cancel             context.CancelFunc
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load()
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func (b *Bot) GetDB() *database.DB {
	return b.DB
}

func (b *Bot) GetEngine() *scoring.Engine {
	return b.Engine
}

// Context is cancelled when the bot shuts down.
func (b *Bot) Context() context.Context {
	return b.ctx
}

func New(cfg *model.Config, db *database.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildEmojis |
		discordgo.IntentsGuildMessageReactions
	dg.StateEnabled = false
	// Each event runs in its own goroutine.
	dg.SyncEvents = false

	platform := NewPlatform(dg)
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bot{
		Session:  dg,
		DB:       db,
		Platform: platform,
		Engine:   scoring.New(db, platform, scoring.Options{DefaultCooldown: cfg.DefaultCooldown}),
		Cleaner:  scanner.NewCleaner(db, platform, cfg.CleanRate),
		ctx:      ctx,
		cancel:   cancel,
	}
	b.config.Store(cfg)
	b.scheduler = NewScheduler(b)
	return b, nil
}

func (b *Bot) Close() {
	slog.Info("gracefully shutting down")
	b.cancel()
	b.scheduler.Stop()
	if err := b.Session.Close(); err != nil {
		slog.Warn("closing session failed", "err", err)
	}
}

func (b *Bot) appID() string {
	if id := b.GetConfig().AppID; id != "" {
		return id
	}
	if b.Session.State != nil && b.Session.State.User != nil {
		return b.Session.State.User.ID
	}
	return ""
}

// RefreshCommands overwrites the global application commands.
func (b *Bot) RefreshCommands() error {
	cmds := commands.GenerateCommands()
	slog.Info("registering commands", "count", len(cmds))
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.appID(), "", cmds)
	if err != nil {
		return fmt.Errorf("cannot register commands: %w", err)
	}
	b.RegisteredCommands = registered
	return nil
}

// UnregisterCommands removes guild-scoped commands left by older deployments.
func (b *Bot) UnregisterCommands(guildID string) {
	_, err := b.Session.ApplicationCommandBulkOverwrite(b.appID(), guildID, []*discordgo.ApplicationCommand{})
	if err != nil {
		slog.Warn("cannot unregister guild commands", "guild", guildID, "err", err)
	}
}

// ReloadConfig reloads settings that can change at runtime. The store and
// token stay as they were opened.
func (b *Bot) ReloadConfig() error {
	slog.Info("reloading configuration")
	newCfg, err := config.Load()
	if err != nil {
		return err
	}
	old := b.GetConfig()
	newCfg.BotToken = old.BotToken
	newCfg.DatabaseDriver = old.DatabaseDriver
	newCfg.DatabaseURL = old.DatabaseURL
	b.config.Store(newCfg)
	slog.Info("configuration reloaded")
	return nil
}
