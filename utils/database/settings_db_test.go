package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"score-bot/model"
)

func TestModuleCache(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	guild, err := NewResolver(db).Guild(ctx, "g1")
	require.NoError(t, err)

	cache := NewModuleCache(db)
	m, err := cache.Get(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, model.Modules{}, m, "modules default to disabled")

	require.NoError(t, cache.Set(ctx, guild, model.ModuleScore, true))
	m, err = cache.Get(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, model.Modules{Score: true}, m)

	require.NoError(t, cache.Set(ctx, guild, model.ModuleReactionRoles, true))
	require.NoError(t, cache.Set(ctx, guild, model.ModuleScore, false))
	m, err = cache.Get(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, model.Modules{ReactionRoles: true}, m)

	err = cache.Set(ctx, guild, "music", true)
	require.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestModerationThresholds(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	guild, err := NewResolver(db).Guild(ctx, "g1")
	require.NoError(t, err)

	m, err := Moderation(ctx, db, guild)
	require.NoError(t, err)
	assert.Nil(t, m.Pin)
	assert.Nil(t, m.Delete)

	pin, del := int64(5), int64(-3)
	require.NoError(t, SetModeration(ctx, db, guild, ModerationPin, &pin))
	require.NoError(t, SetModeration(ctx, db, guild, ModerationDelete, &del))
	m, err = Moderation(ctx, db, guild)
	require.NoError(t, err)
	require.NotNil(t, m.Pin)
	require.NotNil(t, m.Delete)
	assert.Equal(t, int64(5), *m.Pin)
	assert.Equal(t, int64(-3), *m.Delete)

	require.NoError(t, SetModeration(ctx, db, guild, ModerationPin, nil))
	m, err = Moderation(ctx, db, guild)
	require.NoError(t, err)
	assert.Nil(t, m.Pin)
	assert.NotNil(t, m.Delete)
}

func TestScoreRolesAndCooldowns(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	r := NewResolver(db)
	guild, err := r.Guild(ctx, "g1")
	require.NoError(t, err)
	veteran, err := r.Role(ctx, "g1", "veteran")
	require.NoError(t, err)
	newbie, err := r.Role(ctx, "g1", "newbie")
	require.NoError(t, err)

	added, err := AddScoreRole(ctx, db, guild, veteran, 10)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = AddScoreRole(ctx, db, guild, veteran, 10)
	require.NoError(t, err)
	assert.False(t, added)
	_, err = AddScoreRole(ctx, db, guild, newbie, 0)
	require.NoError(t, err)

	roles, err := ScoreRoles(ctx, db, guild)
	require.NoError(t, err)
	assert.Equal(t, []model.ScoreRole{{RoleID: "newbie", Score: 0}, {RoleID: "veteran", Score: 10}}, roles)

	n, err := RemoveScoreRole(ctx, db, newbie, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, SetCooldown(ctx, db, veteran, 30))
	require.NoError(t, SetCooldown(ctx, db, veteran, 10))
	cooldowns, err := Cooldowns(ctx, db, guild)
	require.NoError(t, err)
	require.Len(t, cooldowns, 1)
	assert.Equal(t, int64(10), cooldowns[0].Seconds)

	n, err = ResetCooldown(ctx, db, veteran)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDropChannels(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	r := NewResolver(db)
	guild, err := r.Guild(ctx, "g1")
	require.NoError(t, err)

	_, ok, err := RandomDropChannel(ctx, db, guild)
	require.NoError(t, err)
	assert.False(t, ok)

	for _, id := range []string{"c1", "c2"} {
		channel, err := r.Channel(ctx, "g1", id)
		require.NoError(t, err)
		added, err := AddDropChannel(ctx, db, channel)
		require.NoError(t, err)
		assert.True(t, added)
	}

	picked, ok, err := RandomDropChannel(ctx, db, guild)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, []string{"c1", "c2"}, picked)

	_, err = DeleteChannel(ctx, db, "g1", "c1")
	require.NoError(t, err)
	channels, err := DropChannels(ctx, db, guild)
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, channels)
}

func TestDeleteExcept(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	r := NewResolver(db)
	guild, err := r.Guild(ctx, "g1")
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c"} {
		_, err := r.Role(ctx, "g1", id)
		require.NoError(t, err)
		_, err = r.Emoji(ctx, "g1", model.Emoji{ID: id, Name: "e" + id})
		require.NoError(t, err)
	}
	_, err = r.Emoji(ctx, "g1", model.Emoji{Name: "👍"})
	require.NoError(t, err)

	n, err := DeleteRolesExcept(ctx, db, guild, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = DeleteGuildEmojisExcept(ctx, db, guild, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n, "unicode emojis are not owned by the guild")

	_, ok, err := r.FindEmoji(ctx, "g1", model.Emoji{Name: "👍"})
	require.NoError(t, err)
	assert.True(t, ok)
}
