package scoring

import (
	"context"
	"time"

	"score-bot/model"
	"score-bot/utils/database"
)

// cooldownFor is the smallest cooldown among roles, or the default when
// none of them has one.
func (e *Engine) cooldownFor(ctx context.Context, guild int64, roles []string) (time.Duration, error) {
	seconds, err := database.MinCooldown(ctx, e.db, guild, roles)
	if err != nil {
		return 0, model.WrapStore("load cooldowns", err)
	}
	if !seconds.Valid {
		return e.defaultCooldown, nil
	}
	return time.Duration(seconds.Int64) * time.Second, nil
}
