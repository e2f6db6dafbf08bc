package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"score-bot/model"
	"score-bot/scanner"
	"score-bot/scoring"
	"score-bot/tasks"
	"score-bot/utils"
	"score-bot/utils/database"
)

// cooldownRetention bounds how long a stamp can matter.
const cooldownRetention = 24 * time.Hour

// BotProvider defines the methods the scheduler needs from the Bot.
type BotProvider interface {
	GetConfig() *model.Config
	GetDB() *database.DB
	GetSession() *discordgo.Session
	GetEngine() *scoring.Engine
	GetCleaner() *scanner.Cleaner
}

func (b *Bot) GetCleaner() *scanner.Cleaner {
	return b.Cleaner
}

// Scheduler manages all scheduled tasks.
type Scheduler struct {
	bot            BotProvider
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	cooldownTicker *time.Ticker
	boardTicker    *time.Ticker
	sweepHours     []int
}

// NewScheduler creates a new scheduler.
func NewScheduler(bot BotProvider) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		bot:        bot,
		ctx:        ctx,
		cancel:     cancel,
		sweepHours: []int{5},
	}
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	s.wg.Add(3)
	go s.reconcileAtStartup()
	go s.startScheduledTasks()
	go s.startDailyTasks()
}

// Stop terminates all scheduled tasks gracefully.
func (s *Scheduler) Stop() {
	slog.Info("stopping scheduler")
	s.cancel()
	s.wg.Wait()
	slog.Info("scheduler stopped")
}

func (s *Scheduler) reconcileAtStartup() {
	defer s.wg.Done()
	cfg := s.bot.GetConfig()
	n, err := tasks.ReconcileSlots(s.ctx, s.bot.GetDB())
	if err != nil {
		utils.LogError(s.bot.GetSession(), cfg.LogChannelID, "Scheduler", "ReconcileSlots", err)
		return
	}
	if n > 0 {
		utils.LogWarn(s.bot.GetSession(), cfg.LogChannelID, "Scheduler", "ReconcileSlots",
			fmt.Sprintf("%d reaction-role mappings had drifted slot counters", n))
	}
}

func (s *Scheduler) startScheduledTasks() {
	defer s.wg.Done()
	s.cooldownTicker = time.NewTicker(1 * time.Hour)
	defer s.cooldownTicker.Stop()
	s.boardTicker = time.NewTicker(10 * time.Minute)
	defer s.boardTicker.Stop()

	for {
		select {
		case <-s.cooldownTicker.C:
			tasks.PruneCooldowns(s.bot.GetEngine(), cooldownRetention)
		case <-s.boardTicker.C:
			if err := tasks.UpdateLeaderboards(s.ctx, s.bot.GetSession(), s.bot.GetDB()); err != nil {
				utils.LogWarn(s.bot.GetSession(), s.bot.GetConfig().LogChannelID, "Scheduler", "UpdateLeaderboards", err.Error())
			}
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) startDailyTasks() {
	defer s.wg.Done()
	for {
		now := time.Now()
		next := nextRun(now, s.sweepHours)
		slog.Info("next cleanup sweep scheduled", "at", next)
		select {
		case <-time.After(next.Sub(now)):
			s.runSweep()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) runSweep() {
	cfg := s.bot.GetConfig()
	report, err := s.bot.GetCleaner().Clean(s.ctx)
	if err != nil {
		utils.LogError(s.bot.GetSession(), cfg.LogChannelID, "Scheduler", "CleanupSweep", err)
		return
	}
	utils.LogInfo(s.bot.GetSession(), cfg.LogChannelID, "Scheduler", "CleanupSweep", report.String())
}

// nextRun returns the first of hours strictly after now, rolling over to
// the next day.
func nextRun(now time.Time, hours []int) time.Time {
	for _, h := range hours {
		t := time.Date(now.Year(), now.Month(), now.Day(), h, 0, 0, 0, now.Location())
		if now.Before(t) {
			return t
		}
	}
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), hours[0], 0, 0, 0, now.Location())
}
