package scoring

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"score-bot/model"
)

// fakePlatform is an in-memory guild used by the engine tests.
type fakePlatform struct {
	mu        sync.Mutex
	members   map[string]*model.Member
	messages  map[string]*model.Message
	retracted []string
	pins      int
	deletes   int

	addRoleErr error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		members:  make(map[string]*model.Member),
		messages: make(map[string]*model.Message),
	}
}

func (p *fakePlatform) addMember(guildID, userID string, roles ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.members[guildID+"/"+userID] = &model.Member{GuildID: guildID, UserID: userID, Roles: roles}
}

func (p *fakePlatform) addBot(guildID, userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.members[guildID+"/"+userID] = &model.Member{GuildID: guildID, UserID: userID, Bot: true}
}

func (p *fakePlatform) addMessage(channelID, messageID, authorID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages[channelID+"/"+messageID] = &model.Message{ID: messageID, ChannelID: channelID, AuthorID: authorID}
}

func (p *fakePlatform) roles(guildID, userID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.members[guildID+"/"+userID]
	if !ok {
		return nil
	}
	roles := slices.Clone(m.Roles)
	slices.Sort(roles)
	return roles
}

func (p *fakePlatform) retractions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.retracted)
}

func (p *fakePlatform) Member(_ context.Context, guildID, userID string) (*model.Member, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.members[guildID+"/"+userID]
	if !ok {
		return nil, fmt.Errorf("member %s: %w", userID, model.ErrNotFound)
	}
	cp := *m
	cp.Roles = slices.Clone(m.Roles)
	return &cp, nil
}

func (p *fakePlatform) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return p.AddRoles(ctx, guildID, userID, []string{roleID})
}

func (p *fakePlatform) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return p.RemoveRoles(ctx, guildID, userID, []string{roleID})
}

func (p *fakePlatform) AddRoles(_ context.Context, guildID, userID string, roleIDs []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.addRoleErr != nil {
		return p.addRoleErr
	}
	m, ok := p.members[guildID+"/"+userID]
	if !ok {
		return fmt.Errorf("member %s: %w", userID, model.ErrNotFound)
	}
	for _, r := range roleIDs {
		if !slices.Contains(m.Roles, r) {
			m.Roles = append(m.Roles, r)
		}
	}
	return nil
}

func (p *fakePlatform) RemoveRoles(_ context.Context, guildID, userID string, roleIDs []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.members[guildID+"/"+userID]
	if !ok {
		return fmt.Errorf("member %s: %w", userID, model.ErrNotFound)
	}
	m.Roles = slices.DeleteFunc(m.Roles, func(r string) bool { return slices.Contains(roleIDs, r) })
	return nil
}

func (p *fakePlatform) Message(_ context.Context, channelID, messageID string) (*model.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.messages[channelID+"/"+messageID]
	if !ok {
		return nil, fmt.Errorf("message %s: %w", messageID, model.ErrNotFound)
	}
	cp := *m
	return &cp, nil
}

func (p *fakePlatform) PinMessage(_ context.Context, channelID, messageID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.messages[channelID+"/"+messageID]
	if !ok {
		return fmt.Errorf("message %s: %w", messageID, model.ErrNotFound)
	}
	m.Pinned = true
	p.pins++
	return nil
}

func (p *fakePlatform) DeleteMessage(_ context.Context, channelID, messageID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := channelID + "/" + messageID
	if _, ok := p.messages[key]; !ok {
		return fmt.Errorf("message %s: %w", messageID, model.ErrNotFound)
	}
	delete(p.messages, key)
	p.deletes++
	return nil
}

func (p *fakePlatform) RemoveReaction(_ context.Context, _, messageID string, emoji model.Emoji, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.retracted = append(p.retracted, messageID+"/"+emoji.APIName()+"/"+userID)
	return nil
}

func (p *fakePlatform) EmojiExists(context.Context, string, string) (bool, error) {
	return true, nil
}
