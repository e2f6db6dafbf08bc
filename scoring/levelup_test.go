package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"score-bot/model"
	"score-bot/utils/database"
)

var levels = []model.ScoreRole{
	{RoleID: "member", Score: 0},
	{RoleID: "veteran", Score: 10},
	{RoleID: "warned", Score: -5},
}

func TestTargetRoles(t *testing.T) {
	tests := []struct {
		score int64
		want  []string
	}{
		{score: 12, want: []string{"veteran"}},
		{score: 10, want: []string{"veteran"}},
		{score: 9, want: []string{"member"}},
		{score: 0, want: []string{"member"}},
		{score: -3, want: nil},
		{score: -5, want: []string{"warned"}},
		{score: -50, want: []string{"warned"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.score), func(t *testing.T) {
			got := targetRoles(levels, tt.score)
			var roles []string
			for r := range got {
				roles = append(roles, r)
			}
			assert.ElementsMatch(t, tt.want, roles)
		})
	}
}

func TestTargetRolesSharedThreshold(t *testing.T) {
	got := targetRoles(append(levels, model.ScoreRole{RoleID: "regular", Score: 10}), 11)
	assert.Equal(t, map[string]bool{"veteran": true, "regular": true}, got)
}

func TestLevelUpScenario(t *testing.T) {
	h := newHarness(t)
	for _, l := range levels {
		_, err := database.AddScoreRole(h.ctx, h.engine.DB(), h.guild, h.role(l.RoleID), l.Score)
		require.NoError(t, err)
	}
	h.platform.addMember(guildID, "bob", "member", "warned", "unrelated")

	for i := 0; i < 12; i++ {
		reactor := fmt.Sprintf("fan%d", i)
		message := fmt.Sprintf("m%d", i)
		h.platform.addMember(guildID, reactor)
		h.platform.addMessage("c1", message, "bob")
		require.Equal(t, OutcomeRecorded, h.react(reactor, message, upvote))
	}

	assert.Equal(t, int64(12), h.score("bob"))
	assert.Equal(t, []string{"unrelated", "veteran"}, h.platform.roles(guildID, "bob"))

	diff, err := h.engine.SyncLevelUpRoles(h.ctx, guildID, "bob")
	require.NoError(t, err)
	assert.Empty(t, diff.Added, "already in sync")
	assert.Empty(t, diff.Removed)
}

func TestLevelUpSkipsBotsAndDepartedMembers(t *testing.T) {
	h := newHarness(t)
	_, err := database.AddScoreRole(h.ctx, h.engine.DB(), h.guild, h.role("member"), 0)
	require.NoError(t, err)
	h.platform.addBot(guildID, "robot")

	diff, err := h.engine.SyncLevelUpRoles(h.ctx, guildID, "robot")
	require.NoError(t, err)
	assert.Empty(t, diff.Added)
	assert.Empty(t, h.platform.roles(guildID, "robot"))

	diff, err = h.engine.SyncLevelUpRoles(h.ctx, guildID, "ghost")
	require.NoError(t, err)
	assert.Empty(t, diff.Added)
}
