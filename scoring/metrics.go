package scoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reaction pipeline metrics
var (
	// ReactionsTotal counts processed reaction events by event type and outcome
	ReactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "score_bot_reactions_total",
			Help: "Processed reaction events by event and outcome",
		},
		[]string{"event", "outcome"},
	)

	// RoleChangesTotal counts role grants and revocations by source
	RoleChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "score_bot_role_changes_total",
			Help: "Role changes applied by source (levelup, reaction_role) and action (add, remove)",
		},
		[]string{"source", "action"},
	)

	// ModerationActionsTotal counts automatic pins and deletes
	ModerationActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "score_bot_moderation_actions_total",
			Help: "Automatic moderation actions by action",
		},
		[]string{"action"},
	)

	// SectionWaitSeconds tracks time spent waiting for the reaction-role section
	SectionWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "score_bot_reaction_role_section_wait_seconds",
			Help:    "Time spent waiting for the reaction-role exclusive section",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	// ScoreMovedTotal counts ledger rows reassigned between users
	ScoreMovedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "score_bot_score_moved_total",
			Help: "Ledger rows reassigned between users by reason (gift, pickup)",
		},
		[]string{"reason"},
	)
)
