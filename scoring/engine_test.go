package scoring

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"score-bot/model"
	"score-bot/utils/database"
)

const guildID = "g1"

var (
	upvote   = model.Emoji{Name: "👍"}
	downvote = model.Emoji{Name: "👎"}
)

type harness struct {
	t        *testing.T
	ctx      context.Context
	engine   *Engine
	platform *fakePlatform
	clock    *clockwork.FakeClock
	guild    int64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := &harness{
		t:        t,
		ctx:      context.Background(),
		platform: newFakePlatform(),
		clock:    clockwork.NewFakeClock(),
	}
	h.engine = New(db, h.platform, Options{DefaultCooldown: 60 * time.Second, Clock: h.clock})

	h.guild, err = h.engine.Resolver().Guild(h.ctx, guildID)
	require.NoError(t, err)
	require.NoError(t, h.engine.Modules().Set(h.ctx, h.guild, model.ModuleScore, true))
	require.NoError(t, h.engine.Modules().Set(h.ctx, h.guild, model.ModuleReactionRoles, true))
	h.scoreEmoji(upvote, true)
	h.scoreEmoji(downvote, false)
	return h
}

func (h *harness) scoreEmoji(e model.Emoji, up bool) {
	id, err := h.engine.Resolver().Emoji(h.ctx, guildID, e)
	require.NoError(h.t, err)
	require.NoError(h.t, database.SetScoreEmoji(h.ctx, h.engine.DB(), h.guild, id, up))
}

func (h *harness) role(roleID string) int64 {
	id, err := h.engine.Resolver().Role(h.ctx, guildID, roleID)
	require.NoError(h.t, err)
	return id
}

func (h *harness) react(userID, messageID string, e model.Emoji) Outcome {
	h.t.Helper()
	outcome, err := h.engine.ReactionAdd(h.ctx, model.Reaction{
		GuildID: guildID, ChannelID: "c1", MessageID: messageID, UserID: userID, Emoji: e,
	})
	require.NoError(h.t, err)
	return outcome
}

func (h *harness) score(userID string) int64 {
	h.t.Helper()
	user, ok, err := h.engine.Resolver().FindUser(h.ctx, guildID, userID)
	require.NoError(h.t, err)
	if !ok {
		return 0
	}
	score, err := database.UserScore(h.ctx, h.engine.DB(), user)
	require.NoError(h.t, err)
	return score
}

func TestReactionAddRecordsScore(t *testing.T) {
	h := newHarness(t)
	h.platform.addMember(guildID, "alice")
	h.platform.addMember(guildID, "bob")
	h.platform.addMessage("c1", "m1", "bob")

	assert.Equal(t, OutcomeRecorded, h.react("alice", "m1", upvote))
	assert.Equal(t, int64(1), h.score("bob"))

	assert.Equal(t, OutcomeIgnored, h.react("bob", "m1", upvote), "self reactions do not count")
	assert.Equal(t, OutcomeIgnored, h.react("alice", "m1", model.Emoji{Name: "🎉"}), "unclassified emoji")
	assert.Equal(t, int64(1), h.score("bob"))
}

func TestCooldownEnforcement(t *testing.T) {
	h := newHarness(t)
	h.platform.addMember(guildID, "alice")
	h.platform.addMember(guildID, "bob")
	for _, m := range []string{"m1", "m2", "m3"} {
		h.platform.addMessage("c1", m, "bob")
	}

	assert.Equal(t, OutcomeRecorded, h.react("alice", "m1", upvote))

	h.clock.Advance(30 * time.Second)
	assert.Equal(t, OutcomeCooldown, h.react("alice", "m2", upvote))
	assert.Equal(t, []string{"m2/👍/alice"}, h.platform.retractions())
	assert.Equal(t, int64(1), h.score("bob"), "rejected reaction leaves no ledger row")

	h.clock.Advance(31 * time.Second)
	assert.Equal(t, OutcomeRecorded, h.react("alice", "m3", upvote))
	assert.Equal(t, int64(2), h.score("bob"))
}

func TestRoleCooldownOverridesDefault(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, database.SetCooldown(h.ctx, h.engine.DB(), h.role("trusted"), 5))
	require.NoError(t, database.SetCooldown(h.ctx, h.engine.DB(), h.role("slow"), 600))
	h.platform.addMember(guildID, "alice", "trusted", "slow")
	h.platform.addMember(guildID, "bob")
	h.platform.addMessage("c1", "m1", "bob")
	h.platform.addMessage("c1", "m2", "bob")

	assert.Equal(t, OutcomeRecorded, h.react("alice", "m1", upvote))
	h.clock.Advance(6 * time.Second)
	assert.Equal(t, OutcomeRecorded, h.react("alice", "m2", upvote), "smallest role cooldown applies")
}

func TestReplayedReactionIsNotRetracted(t *testing.T) {
	h := newHarness(t)
	h.platform.addMember(guildID, "alice")
	h.platform.addMember(guildID, "bob")
	h.platform.addMessage("c1", "m1", "bob")

	assert.Equal(t, OutcomeRecorded, h.react("alice", "m1", upvote))
	assert.Equal(t, OutcomeDuplicate, h.react("alice", "m1", upvote))
	assert.Empty(t, h.platform.retractions())
	assert.Equal(t, int64(1), h.score("bob"))
}

func TestReactionRemoveAndRemoveAll(t *testing.T) {
	h := newHarness(t)
	h.platform.addMember(guildID, "alice")
	h.platform.addMember(guildID, "carol")
	h.platform.addMember(guildID, "bob")
	h.platform.addMessage("c1", "m1", "bob")

	h.react("alice", "m1", upvote)
	h.react("carol", "m1", downvote)
	assert.Equal(t, int64(0), h.score("bob"))

	outcome, err := h.engine.ReactionRemove(h.ctx, model.Reaction{
		GuildID: guildID, ChannelID: "c1", MessageID: "m1", UserID: "carol", Emoji: downvote,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeRemoved, outcome)
	assert.Equal(t, int64(1), h.score("bob"))

	outcome, err = h.engine.ReactionRemove(h.ctx, model.Reaction{
		GuildID: guildID, ChannelID: "c1", MessageID: "m1", UserID: "carol", Emoji: downvote,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)

	users, err := h.engine.ReactionRemoveAll(h.ctx, guildID, "c1", "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, users)
	assert.Equal(t, int64(0), h.score("bob"))
}

func TestBotReactionsAreNotScored(t *testing.T) {
	h := newHarness(t)
	h.platform.addBot(guildID, "robot")
	h.platform.addMember(guildID, "alice")
	h.platform.addMember(guildID, "bob")
	h.platform.addMessage("c1", "m1", "bob")
	h.platform.addMessage("c1", "m2", "bob")

	assert.Equal(t, OutcomeIgnored, h.react("robot", "m1", upvote))
	assert.Equal(t, int64(0), h.score("bob"))
	assert.Empty(t, h.platform.retractions())

	_, ok, err := h.engine.Resolver().FindUser(h.ctx, guildID, "robot")
	require.NoError(t, err)
	assert.False(t, ok, "bot reactors leave no trace in the store")

	assert.Equal(t, OutcomeRecorded, h.react("alice", "m2", upvote))
	assert.Equal(t, int64(1), h.score("bob"))
}

func TestDisabledScoreModuleIgnoresReactions(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.engine.Modules().Set(h.ctx, h.guild, model.ModuleScore, false))
	h.platform.addMember(guildID, "alice")
	h.platform.addMessage("c1", "m1", "bob")

	assert.Equal(t, OutcomeIgnored, h.react("alice", "m1", upvote))
	assert.Equal(t, int64(0), h.score("bob"))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "slot_exhausted", OutcomeSlotExhausted.String())
	assert.Equal(t, "outcome(99)", Outcome(99).String())
}
