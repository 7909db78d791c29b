package identity

import (
	"github.com/challengelist/listd/internal/models"
	"github.com/challengelist/listd/internal/permissions"
)

// UserAccount is the authenticated view of an account, with its effective
// permission set resolved once from its group memberships.
type UserAccount struct {
	Account   models.Account
	effective permissions.Set
}

// NewUserAccount wraps a loaded account. Groups must be preloaded; an
// account with no groups has no capabilities.
func NewUserAccount(account models.Account) *UserAccount {
	masks := make([]permissions.GroupMask, 0, len(account.Groups))
	for _, group := range account.Groups {
		masks = append(masks, permissions.GroupMask{
			Grant:  permissions.Set(group.PermissionsGrant),
			Revoke: permissions.Set(group.PermissionsRevoke),
		})
	}
	return &UserAccount{
		Account:   account,
		effective: permissions.Resolve(masks),
	}
}

// Has reports whether the account holds every required capability.
func (u *UserAccount) Has(required permissions.Set) bool {
	return u.effective.Has(required)
}

// Effective returns the resolved capability set.
func (u *UserAccount) Effective() permissions.Set {
	return u.effective
}

// TopGroupPriority returns the highest priority among the account's
// groups, or zero for an account with no groups.
func (u *UserAccount) TopGroupPriority() int {
	top := 0
	for i, group := range u.Account.Groups {
		if i == 0 || group.Priority > top {
			top = group.Priority
		}
	}
	return top
}

// Display returns the account shaped for API responses, omitting the
// password hash and other private columns.
func (u *UserAccount) Display() map[string]any {
	groups := make([]map[string]any, 0, len(u.Account.Groups))
	for _, group := range u.Account.Groups {
		groups = append(groups, map[string]any{
			"id":       group.ID,
			"name":     group.Name,
			"priority": group.Priority,
		})
	}
	badges := make([]map[string]any, 0, len(u.Account.Badges))
	for _, badge := range u.Account.Badges {
		badges = append(badges, map[string]any{
			"id":    badge.ID,
			"name":  badge.Name,
			"icon":  badge.Icon,
			"color": badge.Color,
		})
	}

	display := map[string]any{
		"id":         u.Account.ID,
		"username":   u.Account.Username,
		"groups":     groups,
		"badges":     badges,
		"created_at": u.Account.CreatedAt,
		"updated_at": u.Account.UpdatedAt,
	}
	if u.Account.Player != nil {
		display["profile"] = map[string]any{
			"id":   u.Account.Player.ID,
			"name": u.Account.Player.Name,
		}
	}
	return display
}
