package db

import (
	"testing"

	"github.com/challengelist/listd/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRejectsEmptyDSN(t *testing.T) {
	_, errOpen := Open("  ")
	require.Error(t, errOpen)
}

func TestMigrateSeedsBuiltinGroups(t *testing.T) {
	conn, errOpen := Open(":memory:")
	require.NoError(t, errOpen)
	require.NoError(t, Migrate(conn))

	var groups []models.Group
	require.NoError(t, conn.Order("priority DESC").Find(&groups).Error)
	require.Len(t, groups, 2)
	assert.Equal(t, "Site Owner", groups[0].Name)
	assert.Equal(t, "Member", groups[1].Name)

	// Seeding is idempotent.
	require.NoError(t, Migrate(conn))
	var count int64
	require.NoError(t, conn.Model(&models.Group{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestDialectHelpers(t *testing.T) {
	conn, errOpen := Open(":memory:")
	require.NoError(t, errOpen)

	assert.True(t, IsSQLite(conn))
	assert.Equal(t, "LOWER(name) LIKE ?", CaseInsensitiveLikeExpr(conn, "name"))
	assert.Equal(t, "%crazy%", NormalizeLikePattern(conn, "%Crazy%"))
}
