package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"score-bot/utils/database"
)

const maxConcurrentChecks = 4

// Directory answers what still exists on the platform.
type Directory interface {
	Guilds(ctx context.Context) ([]string, error)
	Roles(ctx context.Context, guildID string) ([]string, error)
	Channels(ctx context.Context, guildID string) ([]string, error)
	Emojis(ctx context.Context, guildID string) ([]string, error)
	HasMember(ctx context.Context, guildID, userID string) (bool, error)
	MessageExists(ctx context.Context, channelID, messageID string) (bool, error)
}

// Report counts what a sweep removed.
type Report struct {
	Guilds   int64
	Users    int64
	Roles    int64
	Channels int64
	Emojis   int64
	Messages int64
	// Slots is the number of reaction-role counters that had drifted.
	Slots int64
}

func (r Report) String() string {
	return fmt.Sprintf("guilds=%d users=%d roles=%d channels=%d emojis=%d messages=%d slots=%d",
		r.Guilds, r.Users, r.Roles, r.Channels, r.Emojis, r.Messages, r.Slots)
}

// Cleaner drops stored state for platform entities that no longer exist.
type Cleaner struct {
	db      *database.DB
	dir     Directory
	limiter *rate.Limiter
}

// NewCleaner paces platform calls to perSecond.
func NewCleaner(db *database.DB, dir Directory, perSecond float64) *Cleaner {
	return &Cleaner{
		db:      db,
		dir:     dir,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Clean sweeps every stored guild. A guild is only removed when the platform
// positively lists the bot's guilds without it.
func (c *Cleaner) Clean(ctx context.Context) (Report, error) {
	var report Report

	if err := c.limiter.Wait(ctx); err != nil {
		return report, err
	}
	current, err := c.dir.Guilds(ctx)
	if err != nil {
		return report, fmt.Errorf("list guilds: %w", err)
	}
	present := make(map[string]bool, len(current))
	for _, id := range current {
		present[id] = true
	}

	stored, err := database.Guilds(ctx, c.db)
	if err != nil {
		return report, err
	}
	for _, g := range stored {
		if !present[g.External] {
			n, err := database.DeleteGuild(ctx, c.db, g.External)
			if err != nil {
				return report, err
			}
			report.Guilds += n
			continue
		}
		if err := c.cleanGuild(ctx, g, &report); err != nil {
			return report, fmt.Errorf("guild %s: %w", g.External, err)
		}
	}

	report.Slots, err = database.ReconcileSlots(ctx, c.db)
	if err != nil {
		return report, err
	}
	slog.Info("cleanup sweep finished", "report", report.String())
	return report, nil
}

func (c *Cleaner) cleanGuild(ctx context.Context, g database.Entity, report *Report) error {
	type list struct {
		fetch  func(context.Context, string) ([]string, error)
		delete func(context.Context, database.Queryer, int64, []string) (int64, error)
		count  *int64
	}
	for _, l := range []list{
		{c.dir.Roles, database.DeleteRolesExcept, &report.Roles},
		{c.dir.Channels, database.DeleteChannelsExcept, &report.Channels},
		{c.dir.Emojis, database.DeleteGuildEmojisExcept, &report.Emojis},
	} {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		keep, err := l.fetch(ctx, g.External)
		if err != nil {
			return err
		}
		n, err := l.delete(ctx, c.db, g.ID, keep)
		if err != nil {
			return err
		}
		*l.count += n
	}

	users, err := c.cleanUsers(ctx, g)
	if err != nil {
		return err
	}
	report.Users += users

	messages, err := c.cleanMessages(ctx, g)
	if err != nil {
		return err
	}
	report.Messages += messages
	return nil
}

func (c *Cleaner) cleanUsers(ctx context.Context, g database.Entity) (int64, error) {
	users, err := database.Users(ctx, c.db, g.ID)
	if err != nil {
		return 0, err
	}
	var removed atomic.Int64
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentChecks)
	for _, u := range users {
		eg.Go(func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			ok, err := c.dir.HasMember(ctx, g.External, u.External)
			if err != nil || ok {
				return err
			}
			err = c.db.InTx(ctx, func(tx *sqlx.Tx) error {
				return database.ForgetUser(ctx, tx, u.ID)
			})
			if err != nil {
				return err
			}
			removed.Add(1)
			return nil
		})
	}
	err = eg.Wait()
	return removed.Load(), err
}

func (c *Cleaner) cleanMessages(ctx context.Context, g database.Entity) (int64, error) {
	messages, err := database.Messages(ctx, c.db, g.ID)
	if err != nil {
		return 0, err
	}
	var removed atomic.Int64
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentChecks)
	for _, m := range messages {
		eg.Go(func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			ok, err := c.dir.MessageExists(ctx, m.ChannelID, m.MessageID)
			if err != nil || ok {
				return err
			}
			if err := database.DeleteMessage(ctx, c.db, m.ID); err != nil {
				return err
			}
			removed.Add(1)
			return nil
		})
	}
	err = eg.Wait()
	return removed.Load(), err
}
