package commands

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var commandName = regexp.MustCompile(`^[-_a-z0-9]{1,32}$`)

func TestGenerateCommands(t *testing.T) {
	seen := map[string]bool{}
	for _, cmd := range GenerateCommands() {
		assert.Regexp(t, commandName, cmd.Name)
		assert.NotEmpty(t, cmd.Description)
		assert.LessOrEqual(t, len(cmd.Description), 100, cmd.Name)
		assert.False(t, seen[cmd.Name], "duplicate command %s", cmd.Name)
		seen[cmd.Name] = true
		for _, opt := range cmd.Options {
			assert.Regexp(t, commandName, opt.Name)
			assert.LessOrEqual(t, len(opt.Description), 100, opt.Name)
		}
	}
	assert.Len(t, seen, 14)
}
