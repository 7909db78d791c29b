package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEmptyMembership(t *testing.T) {
	assert.Equal(t, Set(0), Resolve(nil))
	assert.Equal(t, Set(0), Resolve([]GroupMask{}))
}

func TestResolveAdminOverride(t *testing.T) {
	groups := []GroupMask{
		{Grant: ManageRecords, Revoke: 0},
		{Grant: Administrator, Revoke: 0},
		{Grant: 0, Revoke: All()},
	}
	effective := Resolve(groups)
	require.Equal(t, All(), effective)
	assert.True(t, effective.Has(DeleteAccounts))
	assert.True(t, effective.Has(ManageRecords|ManageSubmitters))
}

func TestResolveRevokeWins(t *testing.T) {
	groups := []GroupMask{
		{Grant: ManageChallenges | ManageRecords},
		{Grant: ManagePlayers, Revoke: ManageRecords},
	}
	effective := Resolve(groups)
	assert.True(t, effective.Has(ManageChallenges))
	assert.True(t, effective.Has(ManagePlayers))
	assert.False(t, effective.Has(ManageRecords))
}

func TestResolveOrderIndependent(t *testing.T) {
	a := GroupMask{Grant: ManageChallenges | BanAccounts, Revoke: ManageRecords}
	b := GroupMask{Grant: ManageRecords | ManageSubmitters}
	c := GroupMask{Grant: TimeoutAccounts, Revoke: ManageSubmitters}

	orders := [][]GroupMask{
		{a, b, c},
		{c, b, a},
		{b, a, c},
		{c, a, b},
	}
	want := Resolve(orders[0])
	for _, order := range orders[1:] {
		assert.Equal(t, want, Resolve(order))
	}
}

func TestResolveMonotonicGrantOnly(t *testing.T) {
	base := []GroupMask{
		{Grant: ManageChallenges, Revoke: ManageRecords},
	}
	before := Resolve(base)

	extended := append(base, GroupMask{Grant: ManagePlayers})
	after := Resolve(extended)

	// A grant-only group never removes an existing capability.
	assert.True(t, after.Has(before))
	assert.True(t, after.Has(ManagePlayers))
}

func TestSetOperations(t *testing.T) {
	var s Set
	s = s.Grant(ManageRecords | ManagePlayers)
	assert.True(t, s.Has(ManageRecords))
	assert.True(t, s.Has(ManageRecords|ManagePlayers))
	assert.False(t, s.Has(ManageRecords|ManageGroups))

	s = s.Revoke(ManagePlayers)
	assert.False(t, s.Has(ManagePlayers))

	assert.Equal(t, s.Union(ManageGroups), s|ManageGroups)
	assert.True(t, All().Has(Administrator|ManageSubmitters))
	assert.False(t, All().Has(lastBit))
}
