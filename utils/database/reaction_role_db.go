package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"score-bot/model"
)

// ClaimResult is the outcome of trying to take a reaction-role slot.
type ClaimResult int

const (
	Claimed ClaimResult = iota
	AlreadyHeld
	NoSlot
)

// slotsFromHolders recomputes remaining capacity from given_roles.
const slotsFromHolders = `
	CASE
		WHEN capacity IS NULL THEN NULL
		WHEN capacity > (SELECT COUNT(*) FROM given_roles g WHERE g.reaction_role = reaction_roles.id)
			THEN capacity - (SELECT COUNT(*) FROM given_roles g WHERE g.reaction_role = reaction_roles.id)
		ELSE 0
	END`

// HasReactionRoles reports whether any reaction-role mapping exists for
// emoji on message.
func HasReactionRoles(ctx context.Context, q Queryer, message, emoji int64) (bool, error) {
	var n int64
	if err := get(ctx, q, &n, `SELECT COUNT(*) FROM reaction_roles WHERE message = ? AND emoji = ?`, message, emoji); err != nil {
		return false, fmt.Errorf("failed to check reaction roles: %w", err)
	}
	return n > 0, nil
}

// ReactionRolesFor returns the mappings of emoji on message together with
// whether holder already holds each of them.
func ReactionRolesFor(ctx context.Context, q Queryer, message, emoji, holder int64) ([]model.ReactionRole, error) {
	var roles []model.ReactionRole
	err := selectAll(ctx, q, &roles, `
		SELECT rr.id, r.role, rr.role AS role_id, rr.capacity, rr.slots,
			EXISTS (SELECT 1 FROM given_roles g WHERE g.reaction_role = rr.id AND g.holder = ?) AS held
		FROM reaction_roles rr
		INNER JOIN roles r ON rr.role = r.id
		WHERE rr.message = ? AND rr.emoji = ?
		ORDER BY rr.id`, holder, message, emoji)
	if err != nil {
		return nil, fmt.Errorf("failed to query reaction roles: %w", err)
	}
	return roles, nil
}

// ClaimSlot records holder as holding reactionRole and, for limited
// mappings, takes one slot. The decrement is conditional so the counter can
// never drop below zero even when evaluations overlap.
func ClaimSlot(ctx context.Context, q Queryer, reactionRole, holder int64, limited bool) (ClaimResult, error) {
	n, err := exec(ctx, q, `INSERT INTO given_roles (holder, reaction_role) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		holder, reactionRole)
	if err != nil {
		return NoSlot, fmt.Errorf("failed to record given role: %w", err)
	}
	if n == 0 {
		return AlreadyHeld, nil
	}
	if !limited {
		return Claimed, nil
	}

	n, err = exec(ctx, q, `UPDATE reaction_roles SET slots = slots - 1 WHERE id = ? AND slots > 0`, reactionRole)
	if err != nil {
		return NoSlot, fmt.Errorf("failed to take slot: %w", err)
	}
	if n == 0 {
		return NoSlot, nil
	}
	return Claimed, nil
}

// ReleaseSlot forgets that holder holds reactionRole and gives its slot back.
// It returns false when holder did not hold the role through the mapping.
func ReleaseSlot(ctx context.Context, q Queryer, reactionRole, holder int64) (bool, error) {
	n, err := exec(ctx, q, `DELETE FROM given_roles WHERE holder = ? AND reaction_role = ?`, holder, reactionRole)
	if err != nil {
		return false, fmt.Errorf("failed to delete given role: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	_, err = exec(ctx, q, `
		UPDATE reaction_roles SET slots = slots + 1
		WHERE id = ? AND slots IS NOT NULL AND slots < capacity`, reactionRole)
	if err != nil {
		return false, fmt.Errorf("failed to release slot: %w", err)
	}
	return true, nil
}

// ReleaseHolderSlots gives back every slot holder occupies, before the user
// row is removed.
func ReleaseHolderSlots(ctx context.Context, q Queryer, holder int64) (int64, error) {
	_, err := exec(ctx, q, `
		UPDATE reaction_roles SET slots = slots + 1
		WHERE slots IS NOT NULL AND slots < capacity
		AND id IN (SELECT reaction_role FROM given_roles WHERE holder = ?)`, holder)
	if err != nil {
		return 0, fmt.Errorf("failed to release holder slots: %w", err)
	}
	n, err := exec(ctx, q, `DELETE FROM given_roles WHERE holder = ?`, holder)
	if err != nil {
		return 0, fmt.Errorf("failed to delete holder given roles: %w", err)
	}
	return n, nil
}

// AddReactionRole creates or updates a mapping. The slot counter of the
// mapping is recomputed from its current holders.
func AddReactionRole(ctx context.Context, db *DB, guild, message, emoji, role int64, capacity *int64) error {
	return db.InTx(ctx, func(tx *sqlx.Tx) error {
		var id int64
		err := get(ctx, tx, &id, `
			INSERT INTO reaction_roles (guild, message, emoji, role, capacity, slots)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (message, emoji, role) DO UPDATE SET capacity = excluded.capacity
			RETURNING id`, guild, message, emoji, role, capacity, capacity)
		if err != nil {
			return fmt.Errorf("failed to upsert reaction role: %w", err)
		}
		if _, err := exec(ctx, tx, `UPDATE reaction_roles SET slots = `+slotsFromHolders+` WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to reset slots: %w", err)
		}
		return nil
	})
}

// RemoveReactionRole deletes a mapping and everything granted through it.
func RemoveReactionRole(ctx context.Context, q Queryer, message, emoji, role int64) (int64, error) {
	n, err := exec(ctx, q, `DELETE FROM reaction_roles WHERE message = ? AND emoji = ? AND role = ?`, message, emoji, role)
	if err != nil {
		return 0, fmt.Errorf("failed to delete reaction role: %w", err)
	}
	return n, nil
}

// ListReactionRoles returns every mapping configured in guild.
func ListReactionRoles(ctx context.Context, q Queryer, guild int64) ([]model.ReactionRoleListing, error) {
	var rows []model.ReactionRoleListing
	err := selectAll(ctx, q, &rows, `
		SELECT c.channel, m.message, COALESCE(e.guild_emoji, '') AS guild_emoji,
			COALESCE(e.unicode, '') AS unicode, r.role, rr.capacity, rr.slots
		FROM reaction_roles rr
		INNER JOIN messages m ON rr.message = m.id
		INNER JOIN channels c ON m.channel = c.id
		INNER JOIN emojis e ON rr.emoji = e.id
		INNER JOIN roles r ON rr.role = r.id
		WHERE rr.guild = ?
		ORDER BY c.channel, m.message, rr.id`, guild)
	if err != nil {
		return nil, fmt.Errorf("failed to list reaction roles: %w", err)
	}
	return rows, nil
}

// ReconcileSlots recomputes every limited slot counter from given_roles and
// returns how many counters changed.
func ReconcileSlots(ctx context.Context, q Queryer) (int64, error) {
	n, err := exec(ctx, q, `
		UPDATE reaction_roles SET slots = `+slotsFromHolders+`
		WHERE capacity IS NOT NULL AND slots IS DISTINCT FROM (`+slotsFromHolders+`)`)
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile slots: %w", err)
	}
	return n, nil
}

// Holders counts the users holding reactionRole through its mapping.
func Holders(ctx context.Context, q Queryer, reactionRole int64) (int64, error) {
	var n int64
	if err := get(ctx, q, &n, `SELECT COUNT(*) FROM given_roles WHERE reaction_role = ?`, reactionRole); err != nil {
		return 0, fmt.Errorf("failed to count holders: %w", err)
	}
	return n, nil
}
