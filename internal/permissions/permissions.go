package permissions

// Set is a fixed-width bitmask of account capabilities.
type Set uint64

// Capability bits, ordered from most to least privileged.
const (
	// Administrator bypasses every revoke and implies all other bits.
	Administrator Set = 1 << iota
	ManageWebsite
	DeleteAccounts

	ManageAccounts

	ManageGroups
	BanAccounts

	// DeleteChallenges is reserved for list owners.
	DeleteChallenges

	ManageChallenges
	ManagePlayers
	ManageUserGroups
	TimeoutAccounts

	ManageRecords
	ManageSubmitters

	lastBit
)

// All returns the mask with every defined capability bit set.
func All() Set {
	return lastBit - 1
}

// Has reports whether every bit in required is present in s.
func (s Set) Has(required Set) bool {
	return s&required == required
}

// Union returns the combination of s and other.
func (s Set) Union(other Set) Set {
	return s | other
}

// Grant returns s with the given bits added.
func (s Set) Grant(bits Set) Set {
	return s | bits
}

// Revoke returns s with the given bits removed.
func (s Set) Revoke(bits Set) Set {
	return s &^ bits
}

// GroupMask is the grant/revoke contribution of a single group.
type GroupMask struct {
	Grant  Set
	Revoke Set
}

// Resolve computes the effective capability set for a group membership.
//
// Any group granting Administrator short-circuits to the full mask and
// revokes are ignored. Otherwise the result is the union of all grants
// minus the union of all revokes, so the outcome does not depend on group
// order and a revoke in any group wins over a grant in another.
func Resolve(groups []GroupMask) Set {
	var granted, revoked Set
	for _, group := range groups {
		if group.Grant.Has(Administrator) {
			return All()
		}
		granted = granted.Union(group.Grant)
		revoked = revoked.Union(group.Revoke)
	}
	return granted.Revoke(revoked)
}
