package positions

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/challengelist/listd/internal/db"
	"github.com/challengelist/listd/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()

	conn, errOpen := db.Open(":memory:")
	require.NoError(t, errOpen)
	require.NoError(t, db.Migrate(conn))
	return NewEngine(conn), conn
}

func seedList(t *testing.T, engine *Engine, names ...string) []models.Challenge {
	t.Helper()

	player := models.Player{Name: "verifier"}
	require.NoError(t, engine.db.Create(&player).Error)

	out := make([]models.Challenge, 0, len(names))
	for i, name := range names {
		challenge := models.Challenge{
			Name:        name,
			Video:       fmt.Sprintf("https://youtu.be/%s", name),
			FPS:         "Any",
			VerifierID:  player.ID,
			PublisherID: player.ID,
		}
		require.NoError(t, engine.Insert(context.Background(), &challenge, i+1))
		out = append(out, challenge)
	}
	return out
}

func listPositions(t *testing.T, conn *gorm.DB) map[string]int {
	t.Helper()

	var rows []models.Challenge
	require.NoError(t, conn.Order("position ASC").Find(&rows).Error)

	out := make(map[string]int, len(rows))
	for i, row := range rows {
		// Contiguity invariant: positions are exactly 1..N in order.
		require.Equal(t, i+1, row.Position)
		out[row.Name] = row.Position
	}
	return out
}

func TestInsertAppendsAndShifts(t *testing.T) {
	engine, conn := newTestEngine(t)
	challenges := seedList(t, engine, "alpha", "beta", "gamma")

	// Insert at the front shifts everything by one.
	front := models.Challenge{
		Name: "delta", Video: "https://youtu.be/delta", FPS: "Any",
		VerifierID: challenges[0].VerifierID, PublisherID: challenges[0].PublisherID,
	}
	require.NoError(t, engine.Insert(context.Background(), &front, 1))

	positions := listPositions(t, conn)
	assert.Equal(t, 1, positions["delta"])
	assert.Equal(t, 2, positions["alpha"])
	assert.Equal(t, 3, positions["beta"])
	assert.Equal(t, 4, positions["gamma"])

	// Insert at N+1 appends.
	last := models.Challenge{
		Name: "epsilon", Video: "https://youtu.be/epsilon", FPS: "Any",
		VerifierID: challenges[0].VerifierID, PublisherID: challenges[0].PublisherID,
	}
	require.NoError(t, engine.Insert(context.Background(), &last, 5))
	positions = listPositions(t, conn)
	assert.Equal(t, 5, positions["epsilon"])
}

func TestInsertRejectsOutOfRange(t *testing.T) {
	engine, _ := newTestEngine(t)
	challenges := seedList(t, engine, "alpha", "beta", "gamma")

	bad := models.Challenge{
		Name: "omega", Video: "https://youtu.be/omega", FPS: "Any",
		VerifierID: challenges[0].VerifierID, PublisherID: challenges[0].PublisherID,
	}

	var rangeErr *RangeError
	errInsert := engine.Insert(context.Background(), &bad, 0)
	require.ErrorAs(t, errInsert, &rangeErr)

	errInsert = engine.Insert(context.Background(), &bad, 5)
	require.ErrorAs(t, errInsert, &rangeErr)
	assert.Equal(t, 4, rangeErr.Max)
}

func TestRepositionMovesToFront(t *testing.T) {
	engine, conn := newTestEngine(t)
	challenges := seedList(t, engine, "alpha", "beta", "gamma")

	require.NoError(t, engine.Reposition(context.Background(), challenges[2].ID, 1))

	positions := listPositions(t, conn)
	assert.Equal(t, 1, positions["gamma"])
	assert.Equal(t, 2, positions["alpha"])
	assert.Equal(t, 3, positions["beta"])
}

func TestRepositionNoOpAndBounds(t *testing.T) {
	engine, conn := newTestEngine(t)
	challenges := seedList(t, engine, "alpha", "beta", "gamma")

	require.NoError(t, engine.Reposition(context.Background(), challenges[1].ID, 2))
	positions := listPositions(t, conn)
	assert.Equal(t, 2, positions["beta"])

	var rangeErr *RangeError
	errReposition := engine.Reposition(context.Background(), challenges[1].ID, 4)
	require.ErrorAs(t, errReposition, &rangeErr)
	assert.Equal(t, 3, rangeErr.Max)

	errReposition = engine.Reposition(context.Background(), 9999, 1)
	assert.True(t, errors.Is(errReposition, gorm.ErrRecordNotFound))
}

func TestRemoveClosesGapAndCascades(t *testing.T) {
	engine, conn := newTestEngine(t)
	challenges := seedList(t, engine, "alpha", "beta", "gamma")

	record := models.Record{
		ChallengeID: challenges[1].ID,
		PlayerID:    challenges[1].VerifierID,
		Status:      models.RecordStatusApproved,
		Type:        models.RecordTypeVerification,
		Video:       "https://youtu.be/beta",
	}
	require.NoError(t, conn.Create(&record).Error)

	require.NoError(t, engine.Remove(context.Background(), challenges[1].ID))

	positions := listPositions(t, conn)
	assert.Len(t, positions, 2)
	assert.Equal(t, 1, positions["alpha"])
	assert.Equal(t, 2, positions["gamma"])

	var recordCount int64
	require.NoError(t, conn.Model(&models.Record{}).
		Where("challenge_id = ?", challenges[1].ID).Count(&recordCount).Error)
	assert.Zero(t, recordCount)

	errRemove := engine.Remove(context.Background(), challenges[1].ID)
	assert.True(t, errors.Is(errRemove, gorm.ErrRecordNotFound))
}

func TestContiguityAfterMixedOperations(t *testing.T) {
	engine, conn := newTestEngine(t)
	challenges := seedList(t, engine, "a", "b", "c", "d", "e")

	mid := models.Challenge{
		Name: "f", Video: "https://youtu.be/f", FPS: "Any",
		VerifierID: challenges[0].VerifierID, PublisherID: challenges[0].PublisherID,
	}
	require.NoError(t, engine.Insert(context.Background(), &mid, 3))
	require.NoError(t, engine.Reposition(context.Background(), challenges[4].ID, 1))
	require.NoError(t, engine.Remove(context.Background(), challenges[1].ID))
	require.NoError(t, engine.Reposition(context.Background(), mid.ID, 5))

	// listPositions asserts positions are exactly 1..N.
	positions := listPositions(t, conn)
	assert.Len(t, positions, 5)
	assert.Equal(t, 1, positions["e"])
	assert.Equal(t, 5, positions["f"])
}
