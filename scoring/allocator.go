package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"score-bot/model"
	"score-bot/utils/database"
)

// reactionRoleSection serialises slot evaluation across all tasks.
const reactionRoleSection = "reaction_roles"

// Decision is the allocator's verdict for one mapping.
type Decision int

const (
	Grant Decision = iota
	Revoke
	Reject
)

func (d Decision) String() string {
	switch d {
	case Grant:
		return "grant"
	case Revoke:
		return "revoke"
	default:
		return "reject"
	}
}

// Allocation pairs a mapping with the decision taken for it.
type Allocation struct {
	Mapping  model.ReactionRole
	Decision Decision
}

var errSlotTaken = errors.New("slot taken")

// allocate handles a reaction on a reaction-role message. The reaction is
// retracted so the menu stays clean, except for bots, which are ignored.
func (e *Engine) allocate(ctx context.Context, r model.Reaction, message, emoji int64) (Outcome, error) {
	member := r.Member
	if member == nil {
		var err error
		member, err = e.platform.Member(ctx, r.GuildID, r.UserID)
		if model.IsNotFound(err) {
			return OutcomeIgnored, nil
		}
		if err != nil {
			return OutcomeIgnored, model.WrapPlatform("fetch member", err)
		}
	}
	if member.Bot {
		return OutcomeIgnored, nil
	}
	e.retract(ctx, r)

	holder, err := e.resolver.User(ctx, r.GuildID, r.UserID)
	if err != nil {
		return OutcomeIgnored, err
	}

	allocations, err := e.Evaluate(ctx, member, message, emoji, holder)
	if err != nil {
		return OutcomeIgnored, err
	}

	outcome := OutcomeIgnored
	var errs []error
	for _, a := range allocations {
		got, err := e.apply(ctx, member, holder, a)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		outcome = merge(outcome, got)
	}
	return outcome, errors.Join(errs...)
}

// Evaluate decides, for every mapping of emoji on message, whether member
// should be granted the role, have it revoked or be rejected for lack of a
// slot. Evaluations are serialised through an exclusive section which is
// released before any platform call is made.
func (e *Engine) Evaluate(ctx context.Context, member *model.Member, message, emoji, holder int64) ([]Allocation, error) {
	start := time.Now()
	section, err := e.db.Exclusive(ctx, reactionRoleSection)
	if err != nil {
		return nil, model.WrapStore("acquire reaction-role section", err)
	}
	defer section.Release()
	SectionWaitSeconds.Observe(time.Since(start).Seconds())

	mappings, err := database.ReactionRolesFor(ctx, e.db, message, emoji, holder)
	if err != nil {
		return nil, model.WrapStore("load reaction roles", err)
	}

	allocations := make([]Allocation, 0, len(mappings))
	for _, m := range mappings {
		allocations = append(allocations, Allocation{Mapping: m, Decision: decide(m, member)})
	}

	if err := section.Release(); err != nil {
		slog.Error("failed to release reaction-role section", "error", err)
	}
	return allocations, nil
}

func decide(m model.ReactionRole, member *model.Member) Decision {
	switch {
	case m.Held || member.HasRole(m.RoleID):
		return Revoke
	case !m.Limited() || (m.Slots != nil && *m.Slots > 0):
		return Grant
	default:
		return Reject
	}
}

// apply carries out one allocation. Slot changes and the platform call share
// a transaction, so a failed grant leaves the counter untouched.
func (e *Engine) apply(ctx context.Context, member *model.Member, holder int64, a Allocation) (Outcome, error) {
	m := a.Mapping
	log := slog.With("guild", member.GuildID, "user", member.UserID, "role", m.RoleID)

	switch a.Decision {
	case Grant:
		claimed := false
		err := e.db.InTx(ctx, func(tx *sqlx.Tx) error {
			res, err := database.ClaimSlot(ctx, tx, m.ID, holder, m.Limited())
			if err != nil {
				return model.WrapStore("claim slot", err)
			}
			switch res {
			case database.AlreadyHeld:
				return nil
			case database.NoSlot:
				return errSlotTaken
			}
			if err := e.platform.AddRole(ctx, member.GuildID, member.UserID, m.RoleID); err != nil {
				return model.WrapPlatform("grant role", err)
			}
			claimed = true
			return nil
		})
		if errors.Is(err, errSlotTaken) {
			log.Debug("no slot left")
			return OutcomeSlotExhausted, nil
		}
		if err != nil {
			return OutcomeIgnored, fmt.Errorf("grant reaction role %s: %w", m.RoleID, err)
		}
		if !claimed {
			return OutcomeIgnored, nil
		}
		RoleChangesTotal.WithLabelValues("reaction_role", "add").Inc()
		log.Info("reaction role granted")
		return OutcomeGranted, nil

	case Revoke:
		err := e.db.InTx(ctx, func(tx *sqlx.Tx) error {
			if _, err := database.ReleaseSlot(ctx, tx, m.ID, holder); err != nil {
				return model.WrapStore("release slot", err)
			}
			err := e.platform.RemoveRole(ctx, member.GuildID, member.UserID, m.RoleID)
			if err != nil && !model.IsNotFound(err) {
				return model.WrapPlatform("revoke role", err)
			}
			return nil
		})
		if err != nil {
			return OutcomeIgnored, fmt.Errorf("revoke reaction role %s: %w", m.RoleID, err)
		}
		RoleChangesTotal.WithLabelValues("reaction_role", "remove").Inc()
		log.Info("reaction role revoked")
		return OutcomeRevoked, nil

	default:
		log.Debug("reaction role rejected, no slot left")
		return OutcomeSlotExhausted, nil
	}
}

// merge keeps the most significant outcome of several allocations.
func merge(a, b Outcome) Outcome {
	rank := func(o Outcome) int {
		switch o {
		case OutcomeGranted:
			return 3
		case OutcomeRevoked:
			return 2
		case OutcomeSlotExhausted:
			return 1
		}
		return 0
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}
