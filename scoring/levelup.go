package scoring

import (
	"context"
	"log/slog"
	"slices"

	"score-bot/model"
	"score-bot/utils/database"
)

// RoleDiff lists the roles added to and removed from a member.
type RoleDiff struct {
	Added   []string
	Removed []string
}

// SyncLevelUpRoles makes userID hold exactly the level-up roles matching
// their current score. Members that left the guild and bots are skipped.
func (e *Engine) SyncLevelUpRoles(ctx context.Context, guildID, userID string) (RoleDiff, error) {
	var diff RoleDiff

	guild, ok, err := e.resolver.FindGuild(ctx, guildID)
	if err != nil || !ok {
		return diff, err
	}
	roles, err := database.ScoreRoles(ctx, e.db, guild)
	if err != nil {
		return diff, model.WrapStore("load score roles", err)
	}
	if len(roles) == 0 {
		return diff, nil
	}

	member, err := e.platform.Member(ctx, guildID, userID)
	if model.IsNotFound(err) {
		return diff, nil
	}
	if err != nil {
		return diff, model.WrapPlatform("fetch member", err)
	}
	if member.Bot {
		return diff, nil
	}

	var score int64
	user, ok, err := e.resolver.FindUser(ctx, guildID, userID)
	if err != nil {
		return diff, err
	}
	if ok {
		if score, err = database.UserScore(ctx, e.db, user); err != nil {
			return diff, model.WrapStore("compute score", err)
		}
	}

	target := targetRoles(roles, score)
	handled := make(map[string]bool, len(roles))
	for _, r := range roles {
		handled[r.RoleID] = true
	}

	for role := range target {
		if !member.HasRole(role) {
			diff.Added = append(diff.Added, role)
		}
	}
	slices.Sort(diff.Added)
	for _, role := range member.Roles {
		if handled[role] && !target[role] {
			diff.Removed = append(diff.Removed, role)
		}
	}

	if len(diff.Added) > 0 {
		if err := e.platform.AddRoles(ctx, guildID, userID, diff.Added); err != nil {
			return RoleDiff{}, model.WrapPlatform("add level-up roles", err)
		}
		RoleChangesTotal.WithLabelValues("levelup", "add").Add(float64(len(diff.Added)))
	}
	if len(diff.Removed) > 0 {
		if err := e.platform.RemoveRoles(ctx, guildID, userID, diff.Removed); err != nil {
			return RoleDiff{Added: diff.Added}, model.WrapPlatform("remove level-up roles", err)
		}
		RoleChangesTotal.WithLabelValues("levelup", "remove").Add(float64(len(diff.Removed)))
	}
	if len(diff.Added) > 0 || len(diff.Removed) > 0 {
		slog.Info("level-up roles synchronised", "guild", guildID, "user", userID, "score", score,
			"added", diff.Added, "removed", diff.Removed)
	}
	return diff, nil
}

// targetRoles selects the roles of the threshold with the largest magnitude
// that score has reached on its own side of zero.
func targetRoles(roles []model.ScoreRole, score int64) map[string]bool {
	var best int64
	found := false
	for _, r := range roles {
		reached := (r.Score >= 0 && r.Score <= score) || (r.Score < 0 && r.Score >= score)
		if reached && (!found || abs(r.Score) > abs(best)) {
			best, found = r.Score, true
		}
	}

	target := make(map[string]bool)
	if !found {
		return target
	}
	for _, r := range roles {
		if r.Score == best {
			target[r.RoleID] = true
		}
	}
	return target
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
