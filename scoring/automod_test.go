package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"score-bot/utils/database"
)

func (h *harness) threshold(action string, score int64) {
	require.NoError(h.t, database.SetModeration(h.ctx, h.engine.DB(), h.guild, action, &score))
}

func TestCrossed(t *testing.T) {
	assert.True(t, crossed(3, 3))
	assert.True(t, crossed(4, 3))
	assert.False(t, crossed(2, 3))
	assert.True(t, crossed(-3, -3))
	assert.True(t, crossed(-4, -3))
	assert.False(t, crossed(-2, -3))
	assert.True(t, crossed(0, 0))
}

func TestAutoPinHappensOnce(t *testing.T) {
	h := newHarness(t)
	h.threshold(database.ModerationPin, 2)
	h.platform.addMember(guildID, "bob")
	h.platform.addMessage("c1", "m1", "bob")
	for _, u := range []string{"a", "b", "c"} {
		h.platform.addMember(guildID, u)
		h.react(u, "m1", upvote)
	}

	assert.Equal(t, 1, h.platform.pins)

	res, err := h.engine.EvaluateAutoModeration(h.ctx, guildID, "c1", "m1")
	require.NoError(t, err)
	assert.False(t, res.Pinned)
	assert.Equal(t, int64(3), res.Score)
	assert.Equal(t, 1, h.platform.pins)
}

func TestAutoDeleteIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.threshold(database.ModerationDelete, -2)
	h.platform.addMember(guildID, "bob")
	h.platform.addMessage("c1", "m1", "bob")
	for _, u := range []string{"a", "b"} {
		h.platform.addMember(guildID, u)
		h.react(u, "m1", downvote)
	}
	assert.Equal(t, 1, h.platform.deletes)

	for i := 0; i < 3; i++ {
		res, err := h.engine.EvaluateAutoModeration(h.ctx, guildID, "c1", "m1")
		require.NoError(t, err, "a deleted message is not an error")
		assert.False(t, res.Deleted)
	}
	assert.Equal(t, 1, h.platform.deletes)
}

func TestAutoModerationChecksAreIndependent(t *testing.T) {
	h := newHarness(t)
	h.threshold(database.ModerationPin, 1)
	h.threshold(database.ModerationDelete, 1)
	h.platform.addMember(guildID, "bob")
	h.platform.addMember(guildID, "a")
	h.platform.addMessage("c1", "m1", "bob")

	h.react("a", "m1", upvote)
	assert.Equal(t, 1, h.platform.pins)
	assert.Equal(t, 1, h.platform.deletes)
}

func TestAutoModerationWithoutReactions(t *testing.T) {
	h := newHarness(t)
	h.threshold(database.ModerationPin, 0)
	_, err := h.engine.Resolver().Message(h.ctx, guildID, "c1", "m1")
	require.NoError(t, err)
	h.platform.addMessage("c1", "m1", "bob")

	res, err := h.engine.EvaluateAutoModeration(h.ctx, guildID, "c1", "m1")
	require.NoError(t, err)
	assert.False(t, res.Pinned, "messages without score are never moderated")
}
