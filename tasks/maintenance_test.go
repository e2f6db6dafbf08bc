package tasks

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"score-bot/model"
	"score-bot/utils/database"
)

type pruner struct{ maxAge time.Duration }

func (p *pruner) PruneCooldowns(maxAge time.Duration) int {
	p.maxAge = maxAge
	return 3
}

func TestPruneCooldowns(t *testing.T) {
	p := &pruner{}
	assert.Equal(t, 3, PruneCooldowns(p, time.Hour))
	assert.Equal(t, time.Hour, p.maxAge)
}

func TestReconcileSlots(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	res := database.NewResolver(db)
	guild, err := res.Guild(ctx, "g")
	require.NoError(t, err)
	message, err := res.Message(ctx, "g", "c", "m")
	require.NoError(t, err)
	emoji, err := res.Emoji(ctx, "g", model.Emoji{Name: "⭐"})
	require.NoError(t, err)
	role, err := res.Role(ctx, "g", "r")
	require.NoError(t, err)
	capacity := int64(2)
	require.NoError(t, database.AddReactionRole(ctx, db, guild, message, emoji, role, &capacity))

	_, err = db.ExecContext(ctx, `UPDATE reaction_roles SET slots = 0`)
	require.NoError(t, err)

	n, err := ReconcileSlots(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = ReconcileSlots(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, n)
}
