package utils

import (
	"slices"

	"github.com/bwmarrin/discordgo"
)

// Permission levels
const (
	OwnerPermission = "owner"
	AdminPermission = "admin"
	UserPermission  = "user"
)

// CheckPermission returns the highest permission level of the caller. Guild
// permissions are the bitset the platform sends with each interaction.
func CheckPermission(userID string, guildPermissions int64, ownerIDs []string) string {
	if userID != "" && slices.Contains(ownerIDs, userID) {
		return OwnerPermission
	}
	if guildPermissions&(discordgo.PermissionAdministrator|discordgo.PermissionManageGuild) != 0 {
		return AdminPermission
	}
	return UserPermission
}

// Allowed reports whether level satisfies required.
func Allowed(level, required string) bool {
	rank := map[string]int{UserPermission: 0, AdminPermission: 1, OwnerPermission: 2}
	return rank[level] >= rank[required]
}
