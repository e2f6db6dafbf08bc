package scoring

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"score-bot/model"
	"score-bot/utils/database"
)

var ticket = model.Emoji{Name: "🎟️"}

// menu maps emoji on message "menu" to roleID with the given capacity.
func (h *harness) menu(emoji model.Emoji, roleID string, capacity *int64) {
	h.t.Helper()
	message, err := h.engine.Resolver().Message(h.ctx, guildID, "c1", "menu")
	require.NoError(h.t, err)
	e, err := h.engine.Resolver().Emoji(h.ctx, guildID, emoji)
	require.NoError(h.t, err)
	require.NoError(h.t, database.AddReactionRole(h.ctx, h.engine.DB(), h.guild, message, e, h.role(roleID), capacity))
	h.platform.addMessage("c1", "menu", "bot")
}

func (h *harness) mapping(holderID string) model.ReactionRole {
	h.t.Helper()
	message, _, err := h.engine.Resolver().FindMessage(h.ctx, guildID, "c1", "menu")
	require.NoError(h.t, err)
	e, _, err := h.engine.Resolver().FindEmoji(h.ctx, guildID, ticket)
	require.NoError(h.t, err)
	holder, _, err := h.engine.Resolver().FindUser(h.ctx, guildID, holderID)
	require.NoError(h.t, err)
	roles, err := database.ReactionRolesFor(h.ctx, h.engine.DB(), message, e, holder)
	require.NoError(h.t, err)
	require.Len(h.t, roles, 1)
	return roles[0]
}

func limit(n int64) *int64 { return &n }

func TestReactionRoleToggle(t *testing.T) {
	h := newHarness(t)
	h.menu(ticket, "vip", limit(1))
	h.platform.addMember(guildID, "alice")
	h.platform.addMember(guildID, "bob")

	assert.Equal(t, OutcomeGranted, h.react("alice", "menu", ticket))
	assert.Equal(t, []string{"vip"}, h.platform.roles(guildID, "alice"))
	assert.Equal(t, int64(0), *h.mapping("alice").Slots)

	assert.Equal(t, OutcomeSlotExhausted, h.react("bob", "menu", ticket))
	assert.Empty(t, h.platform.roles(guildID, "bob"))

	assert.Equal(t, OutcomeRevoked, h.react("alice", "menu", ticket))
	assert.Empty(t, h.platform.roles(guildID, "alice"))
	assert.Equal(t, int64(1), *h.mapping("alice").Slots)

	assert.Len(t, h.platform.retractions(), 3, "reactions on a menu are always retracted")
}

func TestReactionRoleUnlimited(t *testing.T) {
	h := newHarness(t)
	h.menu(ticket, "news", nil)
	for i := 0; i < 5; i++ {
		user := fmt.Sprintf("u%d", i)
		h.platform.addMember(guildID, user)
		assert.Equal(t, OutcomeGranted, h.react(user, "menu", ticket))
	}
	assert.Nil(t, h.mapping("u0").Slots)
}

func TestReactionRoleIgnoresBots(t *testing.T) {
	h := newHarness(t)
	h.menu(ticket, "vip", limit(1))
	h.platform.addBot(guildID, "robot")

	assert.Equal(t, OutcomeIgnored, h.react("robot", "menu", ticket))
	assert.Empty(t, h.platform.retractions())
	assert.Equal(t, int64(1), *h.mapping("robot").Slots)
}

func TestReactionRoleMessagesAreNotScored(t *testing.T) {
	h := newHarness(t)
	h.menu(upvote, "fans", nil)
	h.platform.addMember(guildID, "alice")
	h.platform.addMember(guildID, "bot")

	assert.Equal(t, OutcomeGranted, h.react("alice", "menu", upvote))
	assert.Equal(t, int64(0), h.score("bot"))
}

func TestFailedGrantKeepsSlot(t *testing.T) {
	h := newHarness(t)
	h.menu(ticket, "vip", limit(1))
	h.platform.addMember(guildID, "alice")
	h.platform.addRoleErr = errors.New("missing permissions")

	_, err := h.engine.ReactionAdd(h.ctx, model.Reaction{
		GuildID: guildID, ChannelID: "c1", MessageID: "menu", UserID: "alice", Emoji: ticket,
	})
	var pe *model.PlatformError
	require.ErrorAs(t, err, &pe)

	m := h.mapping("alice")
	assert.Equal(t, int64(1), *m.Slots)
	assert.False(t, m.Held)
}

func TestSlotConservationUnderContention(t *testing.T) {
	const capacity, contenders = 3, 20
	h := newHarness(t)
	h.menu(ticket, "vip", limit(capacity))

	outcomes := make([]Outcome, contenders)
	var g errgroup.Group
	for i := 0; i < contenders; i++ {
		i := i
		user := fmt.Sprintf("u%d", i)
		h.platform.addMember(guildID, user)
		g.Go(func() error {
			var err error
			outcomes[i], err = h.engine.ReactionAdd(h.ctx, model.Reaction{
				GuildID: guildID, ChannelID: "c1", MessageID: "menu", UserID: user, Emoji: ticket,
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	granted := 0
	holders := 0
	for i, o := range outcomes {
		if o == OutcomeGranted {
			granted++
		}
		if len(h.platform.roles(guildID, fmt.Sprintf("u%d", i))) > 0 {
			holders++
		}
	}
	assert.Equal(t, capacity, granted)
	assert.Equal(t, capacity, holders)

	m := h.mapping("u0")
	assert.Equal(t, int64(0), *m.Slots)
	count, err := database.Holders(h.ctx, h.engine.DB(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(capacity), count)
}
