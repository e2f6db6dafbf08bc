package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"score-bot/model"
	"score-bot/utils"
	"score-bot/utils/database"
)

// Outcome describes what happened to a reaction event.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeRecorded
	OutcomeDuplicate
	OutcomeCooldown
	OutcomeRemoved
	OutcomeGranted
	OutcomeRevoked
	OutcomeSlotExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeRecorded:
		return "recorded"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeCooldown:
		return "cooldown"
	case OutcomeRemoved:
		return "removed"
	case OutcomeGranted:
		return "granted"
	case OutcomeRevoked:
		return "revoked"
	case OutcomeSlotExhausted:
		return "slot_exhausted"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Options configure an Engine.
type Options struct {
	// DefaultCooldown applies to reactors without a role cooldown.
	DefaultCooldown time.Duration
	Clock           clockwork.Clock
}

// Engine turns reaction events into ledger rows, role changes and
// moderation actions. It is safe for concurrent use; every event is
// expected to be handled on its own goroutine.
type Engine struct {
	db              *database.DB
	resolver        *database.Resolver
	modules         *database.ModuleCache
	platform        model.Platform
	cooldowns       *utils.CooldownTracker
	defaultCooldown time.Duration
}

// New creates an engine over db and platform.
func New(db *database.DB, platform model.Platform, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Engine{
		db:              db,
		resolver:        database.NewResolver(db),
		modules:         database.NewModuleCache(db),
		platform:        platform,
		cooldowns:       utils.NewCooldownTracker(opts.Clock),
		defaultCooldown: opts.DefaultCooldown,
	}
}

// Resolver exposes the identity resolver used by the engine.
func (e *Engine) Resolver() *database.Resolver { return e.resolver }

// Modules exposes the module cache used by the engine.
func (e *Engine) Modules() *database.ModuleCache { return e.modules }

// DB exposes the store used by the engine.
func (e *Engine) DB() *database.DB { return e.db }

// PruneCooldowns forgets cooldown stamps older than maxAge.
func (e *Engine) PruneCooldowns(maxAge time.Duration) int {
	return e.cooldowns.Prune(maxAge)
}

// ReactionAdd dispatches a reaction-add event. Reactions on reaction-role
// messages go to the allocator and are always retracted; everything else is
// scored when the score module is enabled.
func (e *Engine) ReactionAdd(ctx context.Context, r model.Reaction) (Outcome, error) {
	outcome, err := e.reactionAdd(ctx, r)
	ReactionsTotal.WithLabelValues("add", outcome.String()).Inc()
	return outcome, err
}

func (e *Engine) reactionAdd(ctx context.Context, r model.Reaction) (Outcome, error) {
	emoji, ok, err := e.resolver.FindEmoji(ctx, r.GuildID, r.Emoji)
	if err != nil || !ok {
		return OutcomeIgnored, err
	}
	guild, err := e.resolver.Guild(ctx, r.GuildID)
	if err != nil {
		return OutcomeIgnored, err
	}
	modules, err := e.modules.Get(ctx, guild)
	if err != nil {
		return OutcomeIgnored, model.WrapStore("load modules", err)
	}

	if modules.ReactionRoles {
		message, ok, err := e.resolver.FindMessage(ctx, r.GuildID, r.ChannelID, r.MessageID)
		if err != nil {
			return OutcomeIgnored, err
		}
		if ok {
			mapped, err := database.HasReactionRoles(ctx, e.db, message, emoji)
			if err != nil {
				return OutcomeIgnored, model.WrapStore("check reaction roles", err)
			}
			if mapped {
				return e.allocate(ctx, r, message, emoji)
			}
		}
	}

	if !modules.Score {
		return OutcomeIgnored, nil
	}

	reactor := r.Member
	if reactor == nil {
		reactor, err = e.platform.Member(ctx, r.GuildID, r.UserID)
		if err != nil {
			return OutcomeIgnored, model.WrapPlatform("fetch reactor", err)
		}
	}
	if reactor.Bot {
		return OutcomeIgnored, nil
	}
	msg, err := e.platform.Message(ctx, r.ChannelID, r.MessageID)
	if model.IsNotFound(err) {
		return OutcomeIgnored, nil
	}
	if err != nil {
		return OutcomeIgnored, model.WrapPlatform("fetch message", err)
	}

	outcome, err := e.RecordReaction(ctx, Vote{
		GuildID:      r.GuildID,
		ChannelID:    r.ChannelID,
		MessageID:    r.MessageID,
		ReactorID:    r.UserID,
		AuthorID:     msg.AuthorID,
		ReactorRoles: reactor.Roles,
		Emoji:        r.Emoji,
	})
	if outcome == OutcomeCooldown {
		e.retract(ctx, r)
	}
	return outcome, err
}

// ReactionRemove dispatches a reaction-remove event.
func (e *Engine) ReactionRemove(ctx context.Context, r model.Reaction) (Outcome, error) {
	outcome, err := e.reactionRemove(ctx, r)
	ReactionsTotal.WithLabelValues("remove", outcome.String()).Inc()
	return outcome, err
}

func (e *Engine) reactionRemove(ctx context.Context, r model.Reaction) (Outcome, error) {
	enabled, err := e.scoreEnabled(ctx, r.GuildID)
	if err != nil || !enabled {
		return OutcomeIgnored, err
	}
	return e.RemoveReaction(ctx, r.GuildID, r.ChannelID, r.MessageID, r.UserID, r.Emoji)
}

// ReactionRemoveAll dispatches a remove-all event for a message.
func (e *Engine) ReactionRemoveAll(ctx context.Context, guildID, channelID, messageID string) ([]string, error) {
	enabled, err := e.scoreEnabled(ctx, guildID)
	if err != nil || !enabled {
		return nil, err
	}
	users, err := e.RemoveAllReactions(ctx, guildID, channelID, messageID)
	ReactionsTotal.WithLabelValues("remove_all", OutcomeRemoved.String()).Inc()
	return users, err
}

func (e *Engine) scoreEnabled(ctx context.Context, guildID string) (bool, error) {
	guild, ok, err := e.resolver.FindGuild(ctx, guildID)
	if err != nil || !ok {
		return false, err
	}
	modules, err := e.modules.Get(ctx, guild)
	if err != nil {
		return false, model.WrapStore("load modules", err)
	}
	return modules.Score, nil
}

// retract removes the user's reaction. A reaction that is already gone is fine.
func (e *Engine) retract(ctx context.Context, r model.Reaction) {
	err := e.platform.RemoveReaction(ctx, r.ChannelID, r.MessageID, r.Emoji, r.UserID)
	if err != nil && !model.IsNotFound(err) {
		slog.Warn("failed to retract reaction",
			"guild", r.GuildID, "message", r.MessageID, "user", r.UserID, "error", err)
	}
}

// afterScoreChange re-synchronises the holder's level-up roles and
// re-evaluates moderation of the message.
func (e *Engine) afterScoreChange(ctx context.Context, guildID, channelID, messageID string, holders ...string) error {
	var errs []error
	for _, holder := range holders {
		if _, err := e.SyncLevelUpRoles(ctx, guildID, holder); err != nil {
			errs = append(errs, fmt.Errorf("sync level-up roles of %s: %w", holder, err))
		}
	}
	if _, err := e.EvaluateAutoModeration(ctx, guildID, channelID, messageID); err != nil {
		errs = append(errs, fmt.Errorf("auto-moderate %s: %w", messageID, err))
	}
	return errors.Join(errs...)
}
