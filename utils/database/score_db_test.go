package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"score-bot/model"
)

type ledgerFixture struct {
	db       *DB
	guild    int64
	message  int64
	upvote   int64
	downvote int64
	upEmoji  int64
	users    map[string]int64
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	ctx := context.Background()
	db := newTestDB(t)
	r := NewResolver(db)

	f := &ledgerFixture{db: db, users: make(map[string]int64)}
	var err error
	f.guild, err = r.Guild(ctx, "g1")
	require.NoError(t, err)
	f.message, err = r.Message(ctx, "g1", "c1", "m1")
	require.NoError(t, err)

	f.upEmoji, err = r.Emoji(ctx, "g1", model.Emoji{Name: "👍"})
	require.NoError(t, err)
	down, err := r.Emoji(ctx, "g1", model.Emoji{Name: "👎"})
	require.NoError(t, err)
	require.NoError(t, SetScoreEmoji(ctx, db, f.guild, f.upEmoji, true))
	require.NoError(t, SetScoreEmoji(ctx, db, f.guild, down, false))

	var ok bool
	f.upvote, _, ok, err = ScoreEmojiFor(ctx, db, f.guild, f.upEmoji)
	require.NoError(t, err)
	require.True(t, ok)
	f.downvote, _, ok, err = ScoreEmojiFor(ctx, db, f.guild, down)
	require.NoError(t, err)
	require.True(t, ok)

	for _, name := range []string{"alice", "bob", "carol", "dave", "erin", "frank"} {
		f.users[name], err = r.User(ctx, "g1", name)
		require.NoError(t, err)
	}
	return f
}

// messageFor creates a distinct message so one reactor can score many times.
func (f *ledgerFixture) messageFor(t *testing.T, id string) int64 {
	t.Helper()
	m, err := NewResolver(f.db).Message(context.Background(), "g1", "c1", id)
	require.NoError(t, err)
	return m
}

func TestInsertScoreReactionIgnoresReplays(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	inserted, err := InsertScoreReaction(ctx, f.db, f.guild, f.users["alice"], f.users["bob"], f.message, f.upvote)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = InsertScoreReaction(ctx, f.db, f.guild, f.users["alice"], f.users["bob"], f.message, f.upvote)
	require.NoError(t, err)
	assert.False(t, inserted)

	exists, err := ScoreReactionExists(ctx, f.db, f.users["alice"], f.message, f.upvote)
	require.NoError(t, err)
	assert.True(t, exists)

	score, err := UserScore(ctx, f.db, f.users["bob"])
	require.NoError(t, err)
	assert.Equal(t, int64(1), score)
}

func TestMessageScoreAndDelete(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	for _, from := range []string{"alice", "carol", "dave"} {
		_, err := InsertScoreReaction(ctx, f.db, f.guild, f.users[from], f.users["bob"], f.message, f.upvote)
		require.NoError(t, err)
	}
	_, err := InsertScoreReaction(ctx, f.db, f.guild, f.users["erin"], f.users["bob"], f.message, f.downvote)
	require.NoError(t, err)

	score, reactions, err := MessageScore(ctx, f.db, f.message)
	require.NoError(t, err)
	assert.Equal(t, int64(2), score)
	assert.Equal(t, int64(4), reactions)

	holder, ok, err := DeleteScoreReaction(ctx, f.db, f.guild, f.users["alice"], f.message, f.upEmoji)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "bob", holder)

	_, ok, err = DeleteScoreReaction(ctx, f.db, f.guild, f.users["alice"], f.message, f.upEmoji)
	require.NoError(t, err)
	assert.False(t, ok)

	holders, err := DeleteMessageScoreReactions(ctx, f.db, f.message)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, holders)

	_, reactions, err = MessageScore(ctx, f.db, f.message)
	require.NoError(t, err)
	assert.Zero(t, reactions)
}

func TestReassignUpvotesTakesGiftedRowsFirst(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	bob, carol := f.users["bob"], f.users["carol"]

	// Three native upvotes for bob.
	for i, from := range []string{"alice", "dave", "erin"} {
		m := f.messageFor(t, "native"+string(rune('a'+i)))
		_, err := InsertScoreReaction(ctx, f.db, f.guild, f.users[from], bob, m, f.upvote)
		require.NoError(t, err)
	}
	// Two upvotes carol received and gifts to bob.
	for i := 0; i < 2; i++ {
		m := f.messageFor(t, "gift"+string(rune('a'+i)))
		_, err := InsertScoreReaction(ctx, f.db, f.guild, f.users["frank"], carol, m, f.upvote)
		require.NoError(t, err)
	}
	moved, err := ReassignUpvotes(ctx, f.db, carol, bob, 2)
	require.NoError(t, err)
	require.Equal(t, int64(2), moved)

	moved, err = ReassignUpvotes(ctx, f.db, bob, carol, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), moved)

	var natives int
	require.NoError(t, f.db.Get(&natives, `SELECT COUNT(*) FROM score_reactions WHERE user_to = ? AND native`, bob))
	assert.Equal(t, 1, natives)

	upvotes, err := ReceivedUpvotes(ctx, f.db, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(1), upvotes)
}

func TestMinCooldown(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	r := NewResolver(f.db)

	none, err := MinCooldown(ctx, f.db, f.guild, nil)
	require.NoError(t, err)
	assert.False(t, none.Valid)

	slow, err := r.Role(ctx, "g1", "slow")
	require.NoError(t, err)
	fast, err := r.Role(ctx, "g1", "fast")
	require.NoError(t, err)
	require.NoError(t, SetCooldown(ctx, f.db, slow, 120))
	require.NoError(t, SetCooldown(ctx, f.db, fast, 5))

	cd, err := MinCooldown(ctx, f.db, f.guild, []string{"slow", "fast", "other"})
	require.NoError(t, err)
	assert.True(t, cd.Valid)
	assert.Equal(t, int64(5), cd.Int64)

	cd, err = MinCooldown(ctx, f.db, f.guild, []string{"other"})
	require.NoError(t, err)
	assert.False(t, cd.Valid)
}

func TestStatsAndRank(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	for i, from := range []string{"alice", "carol"} {
		m := f.messageFor(t, "s"+string(rune('a'+i)))
		_, err := InsertScoreReaction(ctx, f.db, f.guild, f.users[from], f.users["bob"], m, f.upvote)
		require.NoError(t, err)
	}
	_, err := InsertScoreReaction(ctx, f.db, f.guild, f.users["alice"], f.users["dave"], f.message, f.downvote)
	require.NoError(t, err)

	received, err := ReceivedStats(ctx, f.db, f.users["bob"])
	require.NoError(t, err)
	assert.Equal(t, model.UserScore{Upvotes: 2}, received)

	given, err := GivenStats(ctx, f.db, f.users["alice"])
	require.NoError(t, err)
	assert.Equal(t, model.UserScore{Upvotes: 1, Downvotes: 1}, given)

	rank, err := ScoreRank(ctx, f.db, f.guild, f.users["bob"])
	require.NoError(t, err)
	assert.Equal(t, int64(1), rank)
	rank, err = ScoreRank(ctx, f.db, f.guild, f.users["dave"])
	require.NoError(t, err)
	assert.Equal(t, int64(2), rank)

	emojis, err := ReceivedEmojis(ctx, f.db, f.users["bob"])
	require.NoError(t, err)
	require.Len(t, emojis, 1)
	assert.Equal(t, "👍", emojis[0].Emoji().Name)
	assert.Equal(t, int64(2), emojis[0].Count)
}
